package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/vsinha/quotes/pkg/application/dto"
)

const (
	FormatText = "text"
	FormatJSON = "json"
	FormatCSV  = "csv"
)

// minColumnWidth is the narrowest column of the purchase table
const minColumnWidth = 12

// WritePurchaseReport renders report to w in the requested format
func WritePurchaseReport(w io.Writer, report dto.PurchaseReport, format string) error {
	switch format {
	case FormatText, "":
		return writePurchaseText(w, report)
	case FormatJSON:
		return writePurchaseJSON(w, report)
	case FormatCSV:
		return writePurchaseCSV(w, report)
	default:
		return fmt.Errorf("unsupported output format: %s", format)
	}
}

// writePurchaseText prints one table per group
func writePurchaseText(w io.Writer, report dto.PurchaseReport) error {
	if report.Empty() {
		_, err := fmt.Fprintln(w, "No quotes to show.")
		return err
	}

	for _, group := range report.Groups {
		if len(group.Parts) == 0 {
			fmt.Fprintf(w, "\n%s: (no items)\n", group.Quote)
			continue
		}

		fmt.Fprintf(w, "\n%s\n", strings.Repeat("=", 60))
		if group.PO != nil && *group.PO != "" {
			fmt.Fprintf(w, "%s   [PO: %s]\n", group.Quote, *group.PO)
		} else {
			fmt.Fprintf(w, "%s\n", group.Quote)
		}
		fmt.Fprintf(w, "%s\n", strings.Repeat("-", 60))
		writePurchaseTable(w, group.Parts)
	}
	_, err := fmt.Fprintln(w)
	return err
}

func writePurchaseTable(w io.Writer, rows []dto.PurchaseRow) {
	headers := []string{"Part", "Qty", "Source", "Unit Cost", "List Price"}
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = max(len(h), minColumnWidth)
	}
	for _, r := range rows {
		widths[0] = max(widths[0], len(r.PartNumber))
		widths[1] = max(widths[1], len(r.Quantity.String()))
		widths[2] = max(widths[2], len(r.Source))
	}

	line := func(cells ...string) {
		padded := make([]string, len(cells))
		for i, c := range cells {
			padded[i] = fmt.Sprintf("%-*s", widths[i], c)
		}
		fmt.Fprintln(w, strings.Join(padded, "  "))
	}

	line(headers...)
	total := 2 * (len(widths) - 1)
	for _, width := range widths {
		total += width
	}
	fmt.Fprintln(w, strings.Repeat("-", total))

	for _, r := range rows {
		line(r.PartNumber, r.Quantity.String(), r.Source, r.UnitCost.Fixed(), r.ListPrice.Fixed())
	}
}

// writePurchaseJSON prints the groups as a JSON array
func writePurchaseJSON(w io.Writer, report dto.PurchaseReport) error {
	groups := report.Groups
	if groups == nil {
		groups = []dto.PurchaseGroup{}
	}
	jsonData, err := json.MarshalIndent(groups, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	_, err = fmt.Fprintln(w, string(jsonData))
	return err
}

// writePurchaseCSV prints one record per merged row, prefixed with its group
func writePurchaseCSV(w io.Writer, report dto.PurchaseReport) error {
	cw := csv.NewWriter(w)
	header := []string{"quote", "po", "part_number", "source", "quantity", "unit_cost", "list_price", "tax_exempt"}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, group := range report.Groups {
		po := ""
		if group.PO != nil {
			po = *group.PO
		}
		for _, r := range group.Parts {
			record := []string{
				group.Quote,
				po,
				r.PartNumber,
				r.Source,
				r.Quantity.String(),
				r.UnitCost.Fixed(),
				r.ListPrice.Fixed(),
				strconv.FormatBool(r.TaxExempt),
			}
			if err := cw.Write(record); err != nil {
				return fmt.Errorf("failed to write CSV record: %w", err)
			}
		}
	}

	cw.Flush()
	return cw.Error()
}
