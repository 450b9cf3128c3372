package dto

import (
	"github.com/vsinha/quotes/pkg/domain/entities"
)

// ItemRow is one line item with every derived and formatted field a
// printing or PDF consumer needs
type ItemRow struct {
	Index         int
	PartNumber    string
	Description   string
	Quantity      entities.Quantity
	UnitCost      entities.Money
	ListPrice     entities.Money
	LineTotal     entities.Money
	Source        string
	SourceLabel   string
	TaxExempt     bool
	Margin        entities.Margin
	UnitCostText  string
	ListPriceText string
	LineTotalText string
}

// QuoteDocument is the ordered, fully derived view of a quote for export
type QuoteDocument struct {
	ID             entities.QuoteID
	Name           string
	CreatedAt      string
	PONumber       string
	Notes          string
	Rows           []ItemRow
	GrandTotal     entities.Money
	GrandTotalText string
}

// NewQuoteDocument derives the export view of q in item order
func NewQuoteDocument(q *entities.Quote) QuoteDocument {
	doc := QuoteDocument{
		ID:        q.ID,
		Name:      q.Name,
		CreatedAt: q.CreatedAt,
		PONumber:  q.PONumber,
		Notes:     q.Notes,
		Rows:      make([]ItemRow, 0, len(q.Items)),
	}
	for i, it := range q.Items {
		label := it.Source
		if it.TaxExempt {
			label += " (Tax Exempt)"
		}
		doc.Rows = append(doc.Rows, ItemRow{
			Index:         i,
			PartNumber:    it.PartNumber,
			Description:   it.Description,
			Quantity:      it.Quantity,
			UnitCost:      it.UnitCost,
			ListPrice:     it.ListPrice,
			LineTotal:     it.LineTotal,
			Source:        it.Source,
			SourceLabel:   label,
			TaxExempt:     it.TaxExempt,
			Margin:        it.Margin(),
			UnitCostText:  it.UnitCost.Fixed(),
			ListPriceText: it.ListPrice.Fixed(),
			LineTotalText: it.LineTotal.Fixed(),
		})
	}
	doc.GrandTotal = q.Total()
	doc.GrandTotalText = doc.GrandTotal.Currency()
	return doc
}
