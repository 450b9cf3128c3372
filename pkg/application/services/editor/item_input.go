package editor

import (
	"strings"

	"github.com/vsinha/quotes/pkg/domain/entities"
)

// DefaultQuantity is used when the quantity field is blank or not a non-negative integer
const DefaultQuantity = entities.DefaultQuantity

// ItemInput is the raw, unvalidated content of the item form
type ItemInput struct {
	PartNumber  string
	Description string
	Quantity    string
	UnitCost    string
	ListPrice   string
	Source      string
	// TaxExempt overrides the default taken from the supplier policy (add)
	// or from the item being replaced (edit)
	TaxExempt *bool
}

// Coercions records which numeric fields were replaced by a default
type Coercions struct {
	Quantity  bool
	UnitCost  bool
	ListPrice bool
}

// Any reports whether at least one field was coerced
func (c Coercions) Any() bool {
	return c.Quantity || c.UnitCost || c.ListPrice
}

// Fields lists the coerced field names
func (c Coercions) Fields() []string {
	var fields []string
	if c.Quantity {
		fields = append(fields, "quantity")
	}
	if c.UnitCost {
		fields = append(fields, "unit_cost")
	}
	if c.ListPrice {
		fields = append(fields, "list_price")
	}
	return fields
}

// Bool is a convenience for building ItemInput.TaxExempt
func Bool(v bool) *bool {
	return &v
}

// lineItem converts the form into a line item. Blank numeric fields take their
// default silently; non-numeric ones take the default and are reported.
func (in ItemInput) lineItem(defaultExempt bool) (entities.LineItem, Coercions) {
	var c Coercions

	qty := DefaultQuantity
	if raw := strings.TrimSpace(in.Quantity); raw != "" {
		qty, c.Quantity = entities.ParseQuantity(raw, DefaultQuantity)
	}
	unit := entities.Zero
	if raw := strings.TrimSpace(in.UnitCost); raw != "" {
		unit, c.UnitCost = entities.ParseMoney(raw, entities.Zero)
	}
	list := entities.Zero
	if raw := strings.TrimSpace(in.ListPrice); raw != "" {
		list, c.ListPrice = entities.ParseMoney(raw, entities.Zero)
	}

	exempt := defaultExempt
	if in.TaxExempt != nil {
		exempt = *in.TaxExempt
	}

	item := entities.NewLineItem(
		strings.TrimSpace(in.PartNumber),
		strings.TrimSpace(in.Description),
		qty,
		unit,
		list,
		strings.TrimSpace(in.Source),
		exempt,
	)
	return item, c
}
