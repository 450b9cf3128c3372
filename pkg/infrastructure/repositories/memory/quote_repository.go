package memory

import (
	"github.com/vsinha/quotes/pkg/domain/entities"
	"github.com/vsinha/quotes/pkg/domain/repositories"
)

// QuoteRepository provides in-memory quote storage. It stores deep copies so
// callers cannot mutate persisted state without saving.
type QuoteRepository struct {
	quotes   []entities.Quote
	quoteMap map[entities.QuoteID]int
	saves    int
	failWith error
}

// NewQuoteRepository creates a new in-memory quote repository
func NewQuoteRepository() *QuoteRepository {
	return &QuoteRepository{
		quotes:   []entities.Quote{},
		quoteMap: make(map[entities.QuoteID]int),
	}
}

// Verify interface compliance
var _ repositories.QuoteRepository = (*QuoteRepository)(nil)

// LoadQuotes returns copies of every stored quote in order
func (r *QuoteRepository) LoadQuotes() []*entities.Quote {
	quotes := make([]*entities.Quote, 0, len(r.quotes))
	for i := range r.quotes {
		quotes = append(quotes, r.quotes[i].Clone())
	}
	return quotes
}

// SaveQuotes replaces the stored collection
func (r *QuoteRepository) SaveQuotes(quotes []*entities.Quote) error {
	if r.failWith != nil {
		return r.failWith
	}
	r.quotes = make([]entities.Quote, 0, len(quotes))
	r.quoteMap = make(map[entities.QuoteID]int, len(quotes))
	for _, q := range quotes {
		r.quoteMap[q.ID] = len(r.quotes)
		r.quotes = append(r.quotes, *q.Clone())
	}
	r.saves++
	return nil
}

// GetQuote returns a copy of the last stored quote with the given id
func (r *QuoteRepository) GetQuote(id entities.QuoteID) (*entities.Quote, bool) {
	index, exists := r.quoteMap[id]
	if !exists {
		return nil, false
	}
	return r.quotes[index].Clone(), true
}

// SaveCount reports how many times the collection was written
func (r *QuoteRepository) SaveCount() int {
	return r.saves
}

// FailSaves makes subsequent saves return err; nil restores normal behavior
func (r *QuoteRepository) FailSaves(err error) {
	r.failWith = err
}
