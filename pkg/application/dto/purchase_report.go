package dto

import "github.com/vsinha/quotes/pkg/domain/entities"

// PurchaseRow is one merged (part number, supplier) line of a purchase report
type PurchaseRow struct {
	PartNumber string            `json:"part_number"`
	Source     string            `json:"source"`
	Quantity   entities.Quantity `json:"quantity"`
	UnitCost   entities.Money    `json:"unit_cost"`
	ListPrice  entities.Money    `json:"list_price"`
	TaxExempt  bool              `json:"tax_exempt"`
}

// PurchaseGroup is the merged parts list of one quote, or of all quotes combined
type PurchaseGroup struct {
	Quote     string          `json:"quote"`
	PO        *string         `json:"po"`
	Parts     []PurchaseRow   `json:"parts"`
	Suppliers map[string]bool `json:"suppliers"`
}

// PurchaseReport is the full output of a purchasing run
type PurchaseReport struct {
	Groups []PurchaseGroup
}

// Empty reports whether the report contains no groups
func (r PurchaseReport) Empty() bool {
	return len(r.Groups) == 0
}
