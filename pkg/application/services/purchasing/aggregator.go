package purchasing

import (
	"fmt"
	"sort"

	"github.com/vsinha/quotes/pkg/application/dto"
	"github.com/vsinha/quotes/pkg/domain/entities"
	"github.com/vsinha/quotes/pkg/domain/services"
)

// Mode selects how line items are grouped
type Mode int

const (
	// PerQuote merges items within each quote separately
	PerQuote Mode = iota
	// Combined merges items across every quote (legacy report)
	Combined
)

// String method for Mode enum
func (m Mode) String() string {
	switch m {
	case PerQuote:
		return "PerQuote"
	case Combined:
		return "Combined"
	default:
		return "Unknown"
	}
}

// CombinedGroupName labels the single group produced in Combined mode
const CombinedGroupName = "All quotes"

type groupKey struct {
	part   string
	source string
}

// Aggregator merges line items by (part number, supplier) for purchasing.
// It never modifies the quotes it reads.
type Aggregator struct{}

// NewAggregator creates a new purchase aggregator
func NewAggregator() *Aggregator {
	return &Aggregator{}
}

// Build produces a purchase report for quotes in the given mode
func (a *Aggregator) Build(quotes []*entities.Quote, mode Mode) dto.PurchaseReport {
	report := dto.PurchaseReport{Groups: []dto.PurchaseGroup{}}

	if mode == Combined {
		if len(quotes) == 0 {
			return report
		}
		var all []entities.LineItem
		for _, q := range quotes {
			all = append(all, q.Items...)
		}
		report.Groups = append(report.Groups, dto.PurchaseGroup{
			Quote:     CombinedGroupName,
			Parts:     a.Merge(all),
			Suppliers: services.ObservedSupplierStatus(all),
		})
		return report
	}

	for i, q := range quotes {
		group := dto.PurchaseGroup{
			Quote:     quoteLabel(q, i+1),
			Parts:     a.Merge(q.Items),
			Suppliers: services.ObservedSupplierStatus(q.Items),
		}
		if q.PONumber != "" {
			po := q.PONumber
			group.PO = &po
		}
		report.Groups = append(report.Groups, group)
	}
	return report
}

// Merge groups items by trimmed (part number, source), summing quantities,
// keeping the lowest unit cost and list price, and OR-ing the tax-exempt
// flags. Rows are sorted by part number, then source.
func (a *Aggregator) Merge(items []entities.LineItem) []dto.PurchaseRow {
	rows := make(map[groupKey]*dto.PurchaseRow)
	for _, it := range items {
		key := groupKey{part: it.PartKey(), source: it.SupplierKey()}
		row, exists := rows[key]
		if !exists {
			rows[key] = &dto.PurchaseRow{
				PartNumber: key.part,
				Source:     key.source,
				Quantity:   it.Quantity,
				UnitCost:   it.UnitCost,
				ListPrice:  it.ListPrice,
				TaxExempt:  it.TaxExempt,
			}
			continue
		}
		row.Quantity += it.Quantity
		if it.UnitCost.LessThan(row.UnitCost.Decimal) {
			row.UnitCost = it.UnitCost
		}
		if it.ListPrice.LessThan(row.ListPrice.Decimal) {
			row.ListPrice = it.ListPrice
		}
		row.TaxExempt = row.TaxExempt || it.TaxExempt
	}

	merged := make([]dto.PurchaseRow, 0, len(rows))
	for _, row := range rows {
		merged = append(merged, *row)
	}
	sort.Slice(merged, func(i, j int) bool {
		if merged[i].PartNumber != merged[j].PartNumber {
			return merged[i].PartNumber < merged[j].PartNumber
		}
		return merged[i].Source < merged[j].Source
	})
	return merged
}

func quoteLabel(q *entities.Quote, position int) string {
	if q.Name != "" {
		return q.Name
	}
	return fmt.Sprintf("Quote %d (id: %d)", position, q.ID)
}
