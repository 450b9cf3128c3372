package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/vsinha/quotes/pkg/domain/entities"
)

// QuoteValidator checks externally supplied quote records
type QuoteValidator struct{}

// NewQuoteValidator creates a new quote validator
func NewQuoteValidator() *QuoteValidator {
	return &QuoteValidator{}
}

// ItemCoercion names the numeric fields of one imported item that held an
// invalid value and were replaced by their default
type ItemCoercion struct {
	Index     int
	Quantity  bool
	UnitCost  bool
	ListPrice bool
}

// ParseImportPayload accepts a JSON object containing an "items" field and
// decodes it as a quote. Missing or null quantities become DefaultQuantity
// and amounts become zero; invalid values take the same defaults and are
// reported. Line totals are always recomputed from the decoded values.
func (v *QuoteValidator) ParseImportPayload(data []byte) (*entities.Quote, []ItemCoercion, error) {
	data = bytes.TrimSpace(data)
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil || fields == nil {
		return nil, nil, entities.ErrInvalidQuotePayload
	}
	if _, ok := fields["items"]; !ok {
		return nil, nil, fmt.Errorf("%w: missing items field", entities.ErrInvalidQuotePayload)
	}

	var q entities.Quote
	if err := json.Unmarshal(data, &q); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", entities.ErrInvalidQuotePayload, err)
	}
	if q.Items == nil {
		q.Items = []entities.LineItem{}
	}

	var rawItems []map[string]json.RawMessage
	if err := json.Unmarshal(fields["items"], &rawItems); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", entities.ErrInvalidQuotePayload, err)
	}

	var coercions []ItemCoercion
	for i := range q.Items {
		c := ItemCoercion{Index: i}
		item := &q.Items[i]
		if i < len(rawItems) {
			raw := rawItems[i]
			item.Quantity, c.Quantity = decodeField(raw["quantity"], entities.DefaultQuantity, entities.DecodeQuantity)
			item.UnitCost, c.UnitCost = decodeField(raw["unit_cost"], entities.Zero, entities.DecodeMoney)
			item.ListPrice, c.ListPrice = decodeField(raw["list_price"], entities.Zero, entities.DecodeMoney)
		}
		item.Recompute()
		if c.Quantity || c.UnitCost || c.ListPrice {
			coercions = append(coercions, c)
		}
	}
	return &q, coercions, nil
}

// decodeField applies def silently to an absent or null field
func decodeField[T any](raw json.RawMessage, def T, decode func([]byte, T) (T, bool)) (T, bool) {
	if trimmed := bytes.TrimSpace(raw); len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return def, false
	}
	return decode(raw, def)
}

// ResolveIDCollision reassigns q.ID to the current timestamp when it collides
// with an id in existing. If the timestamp is itself taken, it is advanced one
// second at a time until unique. Returns true when the id changed.
func (v *QuoteValidator) ResolveIDCollision(existing []*entities.Quote, q *entities.Quote, now time.Time) bool {
	taken := make(map[entities.QuoteID]bool, len(existing))
	for _, e := range existing {
		taken[e.ID] = true
	}
	if !taken[q.ID] {
		return false
	}
	id := entities.QuoteID(now.UTC().Unix())
	for taken[id] {
		id++
	}
	q.ID = id
	return true
}
