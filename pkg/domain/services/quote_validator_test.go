package services

import (
	"errors"
	"testing"
	"time"

	"github.com/vsinha/quotes/pkg/domain/entities"
)

func TestQuoteValidator_ParseImportPayload(t *testing.T) {
	v := NewQuoteValidator()

	invalid := []struct {
		name    string
		payload string
	}{
		{"not json", "hello"},
		{"array", `[{"items": []}]`},
		{"missing items", `{"id": 3, "name": "x"}`},
		{"null", `null`},
	}
	for _, tc := range invalid {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := v.ParseImportPayload([]byte(tc.payload))
			if !errors.Is(err, entities.ErrInvalidQuotePayload) {
				t.Errorf("Expected ErrInvalidQuotePayload, got %v", err)
			}
		})
	}

	q, coercions, err := v.ParseImportPayload([]byte(`{"id": 7, "items": [{"part_number": "A", "quantity": "2", "unit_cost": 3}]}`))
	if err != nil {
		t.Fatalf("Expected valid payload, got %v", err)
	}
	if q.ID != 7 || len(q.Items) != 1 || q.Items[0].Quantity != 2 {
		t.Errorf("Unexpected decoded quote %+v", q)
	}
	if len(coercions) != 0 {
		t.Errorf("Expected no coercions, got %+v", coercions)
	}

	empty, _, err := v.ParseImportPayload([]byte(`{"items": null}`))
	if err != nil {
		t.Fatalf("Expected items:null to be accepted, got %v", err)
	}
	if empty.Items == nil {
		t.Error("Expected non-nil items slice")
	}
}

func TestQuoteValidator_ParseImportPayloadRecomputesItems(t *testing.T) {
	v := NewQuoteValidator()
	payload := `{"items": [
		{"part_number": "A", "quantity": 2, "unit_cost": 5, "line_total": 1},
		{"part_number": "B", "quantity": "abc", "unit_cost": 3, "line_total": 99},
		{"part_number": "C", "unit_cost": "-4", "list_price": null},
		{"part_number": "D", "quantity": -2, "unit_cost": 1.5, "list_price": "n/a"}
	]}`

	q, coercions, err := v.ParseImportPayload([]byte(payload))
	if err != nil {
		t.Fatalf("Expected valid payload, got %v", err)
	}

	expected := []struct {
		qty   entities.Quantity
		total string
	}{
		{2, "10.00"},
		{1, "3.00"},
		{1, "0.00"},
		{1, "1.50"},
	}
	for i, want := range expected {
		it := q.Items[i]
		if it.Quantity != want.qty {
			t.Errorf("item %d: expected quantity %d, got %d", i, want.qty, it.Quantity)
		}
		if it.LineTotal.Fixed() != want.total {
			t.Errorf("item %d: expected line total %s, got %s", i, want.total, it.LineTotal.Fixed())
		}
	}
	if q.Total().Fixed() != "14.50" {
		t.Errorf("Expected total 14.50, got %s", q.Total().Fixed())
	}

	want := []ItemCoercion{
		{Index: 1, Quantity: true},
		{Index: 2, UnitCost: true},
		{Index: 3, Quantity: true, ListPrice: true},
	}
	if len(coercions) != len(want) {
		t.Fatalf("Expected %d coerced items, got %+v", len(want), coercions)
	}
	for i := range want {
		if coercions[i] != want[i] {
			t.Errorf("Expected coercion %+v, got %+v", want[i], coercions[i])
		}
	}
}

func TestQuoteValidator_ResolveIDCollision(t *testing.T) {
	v := NewQuoteValidator()
	now := time.Unix(1700000000, 0)
	existing := []*entities.Quote{{ID: 10}, {ID: 1700000000}, {ID: 1700000001}}

	fresh := &entities.Quote{ID: 11}
	if v.ResolveIDCollision(existing, fresh, now) {
		t.Error("Expected no reassignment for a unique id")
	}
	if fresh.ID != 11 {
		t.Errorf("Expected id unchanged, got %d", fresh.ID)
	}

	dup := &entities.Quote{ID: 10}
	if !v.ResolveIDCollision(existing, dup, now) {
		t.Fatal("Expected reassignment for colliding id")
	}
	if dup.ID != 1700000002 {
		t.Errorf("Expected id advanced past taken timestamps, got %d", dup.ID)
	}
}
