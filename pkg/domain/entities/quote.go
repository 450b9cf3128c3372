package entities

import (
	"strings"
	"time"
)

// QuoteID identifies a quote. It is derived from the creation time in whole seconds.
type QuoteID int64

// UnknownSupplier is the supplier key used for items with a blank source
const UnknownSupplier = "<unknown>"

// UnknownPart is the part key used for items with a blank part number
const UnknownPart = "<unknown>"

// CreatedAtLayout matches the ISO-8601 form written by the original data files
const CreatedAtLayout = "2006-01-02T15:04:05.000000-07:00"

var createdAtLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

// SupplierPolicy carries the per-supplier settings of a quote
type SupplierPolicy struct {
	TaxExempt bool `json:"tax_exempt"`
}

// LineItem is one row of a quote
type LineItem struct {
	PartNumber  string   `json:"part_number"`
	Description string   `json:"description"`
	Quantity    Quantity `json:"quantity"`
	UnitCost    Money    `json:"unit_cost"`
	ListPrice   Money    `json:"list_price"`
	Source      string   `json:"source"`
	TaxExempt   bool     `json:"tax_exempt"`
	LineTotal   Money    `json:"line_total"`
}

// NewLineItem builds a line item with its line total computed
func NewLineItem(partNumber, description string, quantity Quantity, unitCost, listPrice Money, source string, taxExempt bool) LineItem {
	return LineItem{
		PartNumber:  partNumber,
		Description: description,
		Quantity:    quantity,
		UnitCost:    unitCost,
		ListPrice:   listPrice,
		Source:      source,
		TaxExempt:   taxExempt,
		LineTotal:   ComputeLineTotal(quantity, unitCost),
	}
}

// SupplierKey returns the trimmed source, or UnknownSupplier when blank
func (li LineItem) SupplierKey() string {
	return SupplierKey(li.Source)
}

// PartKey returns the trimmed part number, or UnknownPart when blank
func (li LineItem) PartKey() string {
	if pn := strings.TrimSpace(li.PartNumber); pn != "" {
		return pn
	}
	return UnknownPart
}

// Margin returns the margin of the item's list price over its unit cost
func (li LineItem) Margin() Margin {
	return ComputeMargin(li.UnitCost, li.ListPrice)
}

// Recompute refreshes the derived line total
func (li *LineItem) Recompute() {
	li.LineTotal = ComputeLineTotal(li.Quantity, li.UnitCost)
}

// Equal reports whether two items carry the same values
func (li LineItem) Equal(other LineItem) bool {
	return li.PartNumber == other.PartNumber &&
		li.Description == other.Description &&
		li.Quantity == other.Quantity &&
		li.UnitCost.Equal(other.UnitCost.Decimal) &&
		li.ListPrice.Equal(other.ListPrice.Decimal) &&
		li.Source == other.Source &&
		li.TaxExempt == other.TaxExempt &&
		li.LineTotal.Equal(other.LineTotal.Decimal)
}

// SupplierKey normalizes a source string into a supplier key
func SupplierKey(source string) string {
	if s := strings.TrimSpace(source); s != "" {
		return s
	}
	return UnknownSupplier
}

// Quote is a named, dated list of line items
type Quote struct {
	ID        QuoteID                   `json:"id"`
	Name      string                    `json:"name"`
	CreatedAt string                    `json:"created_at"`
	PONumber  string                    `json:"po_number,omitempty"`
	Notes     string                    `json:"notes"`
	Items     []LineItem                `json:"items"`
	Suppliers map[string]SupplierPolicy `json:"suppliers,omitempty"`
}

// NewQuote creates an empty quote stamped with now. An empty name falls back to
// "<prefix> YYYY-MM-DD".
func NewQuote(now time.Time, prefix, name string) *Quote {
	now = now.UTC()
	if name == "" {
		name = prefixOrDefault(prefix) + " " + now.Format("2006-01-02")
	}
	return &Quote{
		ID:        QuoteID(now.Unix()),
		Name:      name,
		CreatedAt: now.Format(CreatedAtLayout),
		Items:     []LineItem{},
	}
}

// CreatedTime parses CreatedAt
func (q *Quote) CreatedTime() (time.Time, bool) {
	raw := strings.TrimSpace(q.CreatedAt)
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range createdAtLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Total sums the line totals of every item
func (q *Quote) Total() Money {
	if q == nil {
		return Zero
	}
	total := Zero
	for _, it := range q.Items {
		total = Money{total.Add(it.LineTotal.Decimal)}
	}
	return total
}

// SupplierNames returns the distinct supplier keys referenced by the items, in first-seen order
func (q *Quote) SupplierNames() []string {
	seen := make(map[string]bool)
	var names []string
	for _, it := range q.Items {
		key := it.SupplierKey()
		if !seen[key] {
			seen[key] = true
			names = append(names, key)
		}
	}
	return names
}

// Clone returns a deep copy
func (q *Quote) Clone() *Quote {
	if q == nil {
		return nil
	}
	c := *q
	c.Items = make([]LineItem, len(q.Items))
	copy(c.Items, q.Items)
	if q.Suppliers != nil {
		c.Suppliers = make(map[string]SupplierPolicy, len(q.Suppliers))
		for k, v := range q.Suppliers {
			c.Suppliers[k] = v
		}
	}
	return &c
}

// Equal reports whether two quotes carry the same values
func (q *Quote) Equal(other *Quote) bool {
	if q == nil || other == nil {
		return q == other
	}
	if q.ID != other.ID || q.Name != other.Name || q.CreatedAt != other.CreatedAt ||
		q.PONumber != other.PONumber || q.Notes != other.Notes {
		return false
	}
	if len(q.Items) != len(other.Items) || len(q.Suppliers) != len(other.Suppliers) {
		return false
	}
	for i := range q.Items {
		if !q.Items[i].Equal(other.Items[i]) {
			return false
		}
	}
	for k, v := range q.Suppliers {
		if ov, ok := other.Suppliers[k]; !ok || ov != v {
			return false
		}
	}
	return true
}
