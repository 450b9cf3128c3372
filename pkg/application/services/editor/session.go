package editor

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/vsinha/quotes/pkg/application/dto"
	"github.com/vsinha/quotes/pkg/domain/entities"
	"github.com/vsinha/quotes/pkg/domain/repositories"
	"github.com/vsinha/quotes/pkg/domain/services"
	"github.com/vsinha/quotes/pkg/infrastructure/events"
)

// Session owns the quote being edited. At most one quote is current at a time;
// edits apply to the working copy and reach the store only through Save,
// SetSupplierPolicy, Import and DeleteFromStore.
type Session struct {
	repo      repositories.QuoteRepository
	current   *entities.Quote
	clock     func() time.Time
	namer     entities.NameFormatter
	validator *services.QuoteValidator
	journal   events.EventStore
	exporter  Exporter
	logger    *zap.Logger
}

// Exporter writes a single quote to path as a standalone document
type Exporter func(path string, q *entities.Quote) error

// ErrNoExporter is returned by Export when the session has no exporter
var ErrNoExporter = errors.New("no quote exporter configured")

// Option configures a Session
type Option func(*Session)

// WithClock overrides the time source used for ids and timestamps
func WithClock(clock func() time.Time) Option {
	return func(s *Session) {
		s.clock = clock
	}
}

// WithJournal records every change in the given event store
func WithJournal(journal events.EventStore) Option {
	return func(s *Session) {
		s.journal = journal
	}
}

// WithExporter sets the writer used by Export
func WithExporter(exporter Exporter) Option {
	return func(s *Session) {
		s.exporter = exporter
	}
}

// WithLogger sets the session logger
func WithLogger(logger *zap.Logger) Option {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithNamePrefix sets the brand prefix of canonical quote names
func WithNamePrefix(prefix string) Option {
	return func(s *Session) {
		s.namer.Prefix = prefix
	}
}

// NewSession creates an editor session over repo with no current quote
func NewSession(repo repositories.QuoteRepository, opts ...Option) *Session {
	s := &Session{
		repo:      repo,
		clock:     time.Now,
		namer:     entities.NewNameFormatter(entities.DefaultNamePrefix),
		validator: services.NewQuoteValidator(),
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.namer.Now = s.clock
	return s
}

// Current returns the working quote, or nil
func (s *Session) Current() *entities.Quote {
	return s.current
}

// New replaces the working quote with a fresh, unsaved one
func (s *Session) New() *entities.Quote {
	q := entities.NewQuote(s.clock(), s.namer.Prefix, "")
	s.current = q
	s.record(q.ID, events.QuoteCreated{Name: q.Name})
	s.logger.Debug("created quote", zap.Int64("id", int64(q.ID)), zap.String("name", q.Name))
	return q
}

// Close discards the working quote without touching the store
func (s *Session) Close() {
	s.current = nil
}

// SetPONumber sets the purchase order number. A non-empty value with no
// current quote starts a new one.
func (s *Session) SetPONumber(po string) {
	po = strings.TrimSpace(po)
	if s.current == nil {
		if po == "" {
			return
		}
		s.New()
	}
	s.current.PONumber = po
}

// SetNotes replaces the free-text notes of the working quote
func (s *Session) SetNotes(notes string) error {
	if s.current == nil {
		return entities.ErrNoCurrentQuote
	}
	s.current.Notes = notes
	return nil
}

// AddItem appends an item built from in, creating a quote first when none is current.
// Unless in.TaxExempt is set, the item inherits the stored policy of its supplier.
func (s *Session) AddItem(in ItemInput) Coercions {
	if s.current == nil {
		s.New()
	}
	q := s.current

	defaultExempt := q.Suppliers[entities.SupplierKey(in.Source)].TaxExempt
	item, coerced := in.lineItem(defaultExempt)
	q.Items = append(q.Items, item)

	s.logCoercions(coerced)
	s.record(q.ID, events.ItemAdded{Index: len(q.Items) - 1, Item: item})
	return coerced
}

// EditItem replaces the item at index wholesale
func (s *Session) EditItem(index int, in ItemInput) (Coercions, error) {
	if s.current == nil {
		return Coercions{}, entities.ErrNoCurrentQuote
	}
	q := s.current
	if index < 0 || index >= len(q.Items) {
		return Coercions{}, entities.ErrNoSelection
	}

	old := q.Items[index]
	item, coerced := in.lineItem(old.TaxExempt)
	q.Items[index] = item

	s.logCoercions(coerced)
	s.record(q.ID, events.ItemEdited{Index: index, OldItem: old, NewItem: item})
	return coerced, nil
}

// DeleteItem removes the item at index. Returns false, changing nothing, for an invalid index.
func (s *Session) DeleteItem(index int) bool {
	if s.current == nil || index < 0 || index >= len(s.current.Items) {
		return false
	}
	q := s.current
	removed := q.Items[index]
	q.Items = append(q.Items[:index], q.Items[index+1:]...)

	s.record(q.ID, events.ItemDeleted{Index: index, Item: removed})
	return true
}

// Suppliers lists the suppliers referenced by the working quote with their policy
func (s *Session) Suppliers() []services.SupplierEntry {
	if s.current == nil {
		return nil
	}
	return services.ListSuppliers(s.current)
}

// SetSupplierPolicy applies mapping to the working quote and saves it
func (s *Session) SetSupplierPolicy(mapping map[string]bool) error {
	if s.current == nil {
		return entities.ErrNoCurrentQuote
	}
	services.ApplySupplierPolicy(s.current, mapping)

	policy := make(map[string]bool, len(mapping))
	for name, exempt := range mapping {
		policy[name] = exempt
	}
	s.record(s.current.ID, events.SuppliersUpdated{Policy: policy})
	return s.Save()
}

// Save normalizes the working quote's name and writes it into the stored
// collection, replacing any record with the same id.
func (s *Session) Save() error {
	if s.current == nil {
		return entities.ErrNoCurrentQuote
	}
	q := s.current
	q.Name = s.namer.Normalize(q)

	stored := s.repo.LoadQuotes()
	quotes := make([]*entities.Quote, 0, len(stored)+1)
	for _, existing := range stored {
		if existing.ID != q.ID {
			quotes = append(quotes, existing)
		}
	}
	quotes = append(quotes, q.Clone())

	if err := s.repo.SaveQuotes(quotes); err != nil {
		return fmt.Errorf("failed to save quote %q: %w", q.Name, err)
	}

	s.record(q.ID, events.QuoteSaved{
		Name:       q.Name,
		ItemCount:  len(q.Items),
		StoreCount: len(quotes),
	})
	return nil
}

// Open makes a copy of the stored quote with the given id current
func (s *Session) Open(id entities.QuoteID) error {
	for _, q := range s.repo.LoadQuotes() {
		if q.ID == id {
			s.current = q
			return nil
		}
	}
	return fmt.Errorf("quote %d: %w", id, entities.ErrQuoteNotFound)
}

// OpenMostRecent makes the stored quote with the latest creation time current.
// Returns false when the store is empty.
func (s *Session) OpenMostRecent() bool {
	var latest *entities.Quote
	var latestTime time.Time
	for _, q := range s.repo.LoadQuotes() {
		created, _ := q.CreatedTime()
		if latest == nil || created.After(latestTime) {
			latest = q
			latestTime = created
		}
	}
	if latest == nil {
		return false
	}
	s.current = latest
	return true
}

// DeleteFromStore removes a stored quote and persists the collection. The
// working quote is closed when it is the one removed.
func (s *Session) DeleteFromStore(id entities.QuoteID) error {
	stored := s.repo.LoadQuotes()
	quotes := make([]*entities.Quote, 0, len(stored))
	var removed *entities.Quote
	for _, q := range stored {
		if q.ID == id && removed == nil {
			removed = q
			continue
		}
		quotes = append(quotes, q)
	}
	if removed == nil {
		return fmt.Errorf("quote %d: %w", id, entities.ErrQuoteNotFound)
	}

	if err := s.repo.SaveQuotes(quotes); err != nil {
		return fmt.Errorf("failed to delete quote %d: %w", id, err)
	}
	if s.current != nil && s.current.ID == id {
		s.current = nil
	}

	s.record(id, events.QuoteDeleted{Name: removed.Name})
	return nil
}

// ImportCoercion reports the fields of one imported item that were replaced by a default
type ImportCoercion struct {
	Index int
	Coercions
}

// Import validates payload as a single quote, repairs an id collision with
// the stored collection, appends it and persists. The imported quote becomes
// current. Items are normalized like AddItem input: invalid numbers take their
// defaults, reported per item, and line totals are recomputed.
func (s *Session) Import(payload []byte) (*entities.Quote, []ImportCoercion, error) {
	q, repaired, err := s.validator.ParseImportPayload(payload)
	if err != nil {
		return nil, nil, err
	}
	coercions := make([]ImportCoercion, 0, len(repaired))
	for _, r := range repaired {
		c := ImportCoercion{Index: r.Index, Coercions: Coercions{Quantity: r.Quantity, UnitCost: r.UnitCost, ListPrice: r.ListPrice}}
		s.logCoercions(c.Coercions)
		coercions = append(coercions, c)
	}

	quotes := s.repo.LoadQuotes()
	originalID := q.ID
	reassigned := s.validator.ResolveIDCollision(quotes, q, s.clock())
	if reassigned {
		s.logger.Info("reassigned imported quote id",
			zap.Int64("original_id", int64(originalID)),
			zap.Int64("new_id", int64(q.ID)))
	}
	q.Name = s.namer.Normalize(q)

	quotes = append(quotes, q)
	if err := s.repo.SaveQuotes(quotes); err != nil {
		return nil, nil, fmt.Errorf("failed to save imported quote: %w", err)
	}

	s.current = q.Clone()
	s.record(q.ID, events.QuoteImported{OriginalID: originalID, Reassigned: reassigned})
	return q, coercions, nil
}

// Export writes the working quote to path as a standalone JSON document
func (s *Session) Export(path string) error {
	if s.current == nil {
		return entities.ErrNoCurrentQuote
	}
	if s.exporter == nil {
		return ErrNoExporter
	}
	return s.exporter(path, s.current)
}

// SuggestedExportName derives a filesystem-safe file name from the canonical quote name
func (s *Session) SuggestedExportName() string {
	if s.current == nil {
		return ""
	}
	return entities.SafeFilename(s.namer.Normalize(s.current), entities.DefaultFilenameLength) + ".json"
}

// Total sums the working quote's line totals; zero without a quote
func (s *Session) Total() entities.Money {
	return s.current.Total()
}

// Document builds the printable rendering of the working quote
func (s *Session) Document() (dto.QuoteDocument, error) {
	if s.current == nil {
		return dto.QuoteDocument{}, entities.ErrNoCurrentQuote
	}
	return dto.NewQuoteDocument(s.current), nil
}

// Quotes returns the stored collection
func (s *Session) Quotes() []*entities.Quote {
	return s.repo.LoadQuotes()
}

func (s *Session) record(id entities.QuoteID, payload events.Payload) {
	if s.journal == nil {
		return
	}
	stream := events.StreamFor(id)
	if err := s.journal.AppendEvent(stream, events.NewEvent(stream, payload, s.clock())); err != nil {
		s.logger.Warn("failed to record change", zap.String("event", payload.EventType()), zap.Error(err))
	}
}

func (s *Session) logCoercions(c Coercions) {
	if c.Any() {
		s.logger.Debug("coerced item input to defaults", zap.Strings("fields", c.Fields()))
	}
}
