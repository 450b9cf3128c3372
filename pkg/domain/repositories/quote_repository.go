package repositories

import "github.com/vsinha/quotes/pkg/domain/entities"

// QuoteRepository persists the whole quotes collection.
//
// LoadQuotes never fails: implementations fall back to a bundled default
// dataset and finally to an empty collection. SaveQuotes replaces the entire
// collection; the last writer wins.
type QuoteRepository interface {
	LoadQuotes() []*entities.Quote
	SaveQuotes(quotes []*entities.Quote) error
}
