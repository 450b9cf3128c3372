package output

import (
	"fmt"
	"io"

	"github.com/vsinha/quotes/pkg/application/dto"
	"github.com/vsinha/quotes/pkg/domain/entities"
	"github.com/vsinha/quotes/pkg/domain/services"
)

// WriteQuoteTable prints the items of a quote followed by its grand total
func WriteQuoteTable(w io.Writer, doc dto.QuoteDocument) {
	fmt.Fprintf(w, "%s (id: %d)\n", doc.Name, doc.ID)
	if doc.PONumber != "" {
		fmt.Fprintf(w, "PO: %s\n", doc.PONumber)
	}
	if doc.Notes != "" {
		fmt.Fprintf(w, "Notes: %s\n", doc.Notes)
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "%-4s %-15s %-25s %-6s %-10s %-10s %-8s %-24s %-10s\n",
		"#", "Part Number", "Description", "Qty", "Unit Cost", "List", "Margin", "Source", "Line Total")
	fmt.Fprintf(w, "%-4s %-15s %-25s %-6s %-10s %-10s %-8s %-24s %-10s\n",
		"----", "---------------", "-------------------------", "------", "----------", "----------", "--------", "------------------------", "----------")

	for _, row := range doc.Rows {
		fmt.Fprintf(w, "%-4d %-15s %-25s %-6d %-10s %-10s %-8s %-24s %-10s\n",
			row.Index,
			row.PartNumber,
			row.Description,
			row.Quantity,
			row.UnitCostText,
			row.ListPriceText,
			row.Margin.String(),
			row.SourceLabel,
			row.LineTotalText)
	}
	fmt.Fprintf(w, "\nTotal: %s\n", doc.GrandTotalText)
}

// WriteQuoteList prints one line per stored quote
func WriteQuoteList(w io.Writer, quotes []*entities.Quote) {
	if len(quotes) == 0 {
		fmt.Fprintln(w, "No saved quotes.")
		return
	}
	fmt.Fprintf(w, "%-12s %-36s %-12s %-6s %-10s\n", "ID", "Name", "Created", "Items", "Total")
	fmt.Fprintf(w, "%-12s %-36s %-12s %-6s %-10s\n",
		"------------", "------------------------------------", "------------", "------", "----------")
	for _, q := range quotes {
		created := q.CreatedAt
		if len(created) > 10 {
			created = created[:10]
		}
		fmt.Fprintf(w, "%-12d %-36s %-12s %-6d %-10s\n",
			q.ID, q.Name, created, len(q.Items), q.Total().Currency())
	}
}

// WriteSuppliers prints the supplier policy of a quote
func WriteSuppliers(w io.Writer, entries []services.SupplierEntry) {
	if len(entries) == 0 {
		fmt.Fprintln(w, "No suppliers on this quote.")
		return
	}
	fmt.Fprintf(w, "%-24s %-10s\n", "Supplier", "Tax Exempt")
	fmt.Fprintf(w, "%-24s %-10s\n", "------------------------", "----------")
	for _, e := range entries {
		fmt.Fprintf(w, "%-24s %-10t\n", e.Name, e.TaxExempt)
	}
}
