package events

import (
	"strconv"

	"github.com/vsinha/quotes/pkg/domain/entities"
)

const (
	QuoteCreatedEvent  = "quote.created"
	QuoteSavedEvent    = "quote.saved"
	QuoteImportedEvent = "quote.imported"
	QuoteDeletedEvent  = "quote.deleted"

	ItemAddedEvent   = "item.added"
	ItemEditedEvent  = "item.edited"
	ItemDeletedEvent = "item.deleted"

	SuppliersUpdatedEvent = "suppliers.updated"
)

// AllQuoteEvents lists every event type the editor emits
var AllQuoteEvents = []string{
	QuoteCreatedEvent,
	QuoteSavedEvent,
	QuoteImportedEvent,
	QuoteDeletedEvent,
	ItemAddedEvent,
	ItemEditedEvent,
	ItemDeletedEvent,
	SuppliersUpdatedEvent,
}

// StreamFor returns the stream id of a quote
func StreamFor(id entities.QuoteID) string {
	return "quote-" + strconv.FormatInt(int64(id), 10)
}

// QuoteCreated records a fresh, unsaved quote
type QuoteCreated struct {
	Name string `json:"name"`
}

// QuoteSaved records a write of the working quote into the store
type QuoteSaved struct {
	Name       string `json:"name"`
	ItemCount  int    `json:"item_count"`
	StoreCount int    `json:"store_count"`
}

type QuoteImported struct {
	OriginalID entities.QuoteID `json:"original_id"`
	Reassigned bool             `json:"reassigned"`
}

type QuoteDeleted struct {
	Name string `json:"name"`
}

type ItemAdded struct {
	Index int               `json:"index"`
	Item  entities.LineItem `json:"item"`
}

// ItemEdited carries both versions of a replaced item
type ItemEdited struct {
	Index   int               `json:"index"`
	OldItem entities.LineItem `json:"old_item"`
	NewItem entities.LineItem `json:"new_item"`
}

type ItemDeleted struct {
	Index int               `json:"index"`
	Item  entities.LineItem `json:"item"`
}

// SuppliersUpdated carries the policy mapping as requested, including names
// not present on the quote
type SuppliersUpdated struct {
	Policy map[string]bool `json:"policy"`
}

func (QuoteCreated) EventType() string { return QuoteCreatedEvent }
func (QuoteSaved) EventType() string { return QuoteSavedEvent }
func (QuoteImported) EventType() string { return QuoteImportedEvent }
func (QuoteDeleted) EventType() string { return QuoteDeletedEvent }
func (ItemAdded) EventType() string { return ItemAddedEvent }
func (ItemEdited) EventType() string { return ItemEditedEvent }
func (ItemDeleted) EventType() string { return ItemDeletedEvent }
func (SuppliersUpdated) EventType() string { return SuppliersUpdatedEvent }
