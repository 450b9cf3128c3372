package services

import (
	"sort"

	"github.com/vsinha/quotes/pkg/domain/entities"
)

// ApplySupplierPolicy replaces the quote's supplier map with mapping and
// recomputes every item's tax-exempt flag from it. Items whose supplier key is
// absent from mapping become taxable.
func ApplySupplierPolicy(q *entities.Quote, mapping map[string]bool) {
	q.Suppliers = make(map[string]entities.SupplierPolicy, len(mapping))
	for supplier, exempt := range mapping {
		q.Suppliers[supplier] = entities.SupplierPolicy{TaxExempt: exempt}
	}
	for i := range q.Items {
		q.Items[i].TaxExempt = mapping[q.Items[i].SupplierKey()]
	}
}

// SupplierEntry is one supplier referenced by a quote, with its stored policy
type SupplierEntry struct {
	Name      string
	TaxExempt bool
}

// ListSuppliers returns the distinct suppliers referenced by the quote's items,
// sorted by name, each with the policy stored on the quote (false when unset).
func ListSuppliers(q *entities.Quote) []SupplierEntry {
	names := q.SupplierNames()
	sort.Strings(names)
	entries := make([]SupplierEntry, 0, len(names))
	for _, name := range names {
		entries = append(entries, SupplierEntry{Name: name, TaxExempt: q.Suppliers[name].TaxExempt})
	}
	return entries
}

// ObservedSupplierStatus derives tax-exempt status per supplier from the items
// themselves: a supplier is exempt if any of its items is flagged exempt. This
// can disagree with the quote's stored supplier map.
func ObservedSupplierStatus(items []entities.LineItem) map[string]bool {
	status := make(map[string]bool)
	for _, it := range items {
		key := it.SupplierKey()
		status[key] = status[key] || it.TaxExempt
	}
	return status
}
