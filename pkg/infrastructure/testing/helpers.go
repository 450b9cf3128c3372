package testing

import (
	"time"

	"github.com/vsinha/quotes/pkg/domain/entities"
	"github.com/vsinha/quotes/pkg/infrastructure/repositories/memory"
)

// FixedNow is the reference clock used by fixtures and session tests
var FixedNow = time.Date(2025, 12, 1, 15, 4, 5, 123456000, time.UTC)

// FixedClock returns a clock that always reports FixedNow
func FixedClock() func() time.Time {
	return func() time.Time { return FixedNow }
}

// SteppingClock returns a clock starting at start that advances by step on every call
func SteppingClock(start time.Time, step time.Duration) func() time.Time {
	current := start.Add(-step)
	return func() time.Time {
		current = current.Add(step)
		return current
	}
}

// BuildSampleQuotes builds the shop scenario used across tests:
// two quotes sharing an Acme bolt line, and an unnamed empty quote.
func BuildSampleQuotes() []*entities.Quote {
	bracketQuote := &entities.Quote{
		ID:        1700000100,
		Name:      "ARCS 2023-11-14 [PO:PO-1001]",
		CreatedAt: "2023-11-14T22:15:00.000000+00:00",
		PONumber:  "PO-1001",
		Notes:     "Bracket rework",
		Items: []entities.LineItem{
			entities.NewLineItem("BOLT-M6", "M6 hex bolt", 100, entities.MustMoney("0.12"), entities.MustMoney("0.20"), "Acme", true),
			entities.NewLineItem("BRKT-22", "Mounting bracket", 4, entities.MustMoney("12.50"), entities.MustMoney("18.00"), "Globex", false),
		},
		Suppliers: map[string]entities.SupplierPolicy{
			"Acme":   {TaxExempt: true},
			"Globex": {TaxExempt: false},
		},
	}

	motorQuote := &entities.Quote{
		ID:        1700000200,
		Name:      "ARCS 2023-11-14",
		CreatedAt: "2023-11-14T22:16:40.000000+00:00",
		Items: []entities.LineItem{
			entities.NewLineItem("BOLT-M6", "M6 hex bolt", 50, entities.MustMoney("0.10"), entities.MustMoney("0.20"), "Acme", false),
			entities.NewLineItem("MTR-900", "Stepper motor", 1, entities.MustMoney("89.00"), entities.MustMoney("0"), "Globex", false),
		},
	}

	emptyQuote := &entities.Quote{
		ID:        1700000300,
		CreatedAt: "2023-11-14T22:18:20.000000+00:00",
		Items:     []entities.LineItem{},
	}

	return []*entities.Quote{bracketQuote, motorQuote, emptyQuote}
}

// BuildSampleRepository returns an in-memory repository seeded with BuildSampleQuotes
func BuildSampleRepository() *memory.QuoteRepository {
	repo := memory.NewQuoteRepository()
	if err := repo.SaveQuotes(BuildSampleQuotes()); err != nil {
		panic(err)
	}
	return repo
}
