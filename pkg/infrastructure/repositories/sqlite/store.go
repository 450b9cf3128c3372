package sqlite

import (
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"github.com/vsinha/quotes/pkg/domain/entities"
	"github.com/vsinha/quotes/pkg/domain/repositories"
)

// quoteRecord is keyed by its 1-based position in the collection, not by the
// quote id, so a collection holding duplicate ids saves like the JSON store does.
type quoteRecord struct {
	Seq       int64  `gorm:"primaryKey;autoIncrement:false"`
	QuoteID   int64  `gorm:"column:quote_id;not null;index"`
	Name      string `gorm:"not null"`
	CreatedAt string `gorm:"column:created_at;type:text;autoCreateTime:false"`
	PONumber  string
	Notes     string
	Items     []itemRecord     `gorm:"foreignKey:QuoteSeq;constraint:OnDelete:CASCADE"`
	Suppliers []supplierRecord `gorm:"foreignKey:QuoteSeq;constraint:OnDelete:CASCADE"`
}

func (quoteRecord) TableName() string { return "quotes" }

type itemRecord struct {
	ID          uint  `gorm:"primaryKey"`
	QuoteSeq    int64 `gorm:"not null;index"`
	Position    int   `gorm:"not null"`
	PartNumber  string
	Description string
	Quantity    int64
	UnitCost    string `gorm:"not null"`
	ListPrice   string `gorm:"not null"`
	Source      string
	TaxExempt   bool
	LineTotal   string `gorm:"not null"`
}

func (itemRecord) TableName() string { return "quote_items" }

type supplierRecord struct {
	QuoteSeq  int64  `gorm:"primaryKey;autoIncrement:false"`
	Name      string `gorm:"primaryKey"`
	TaxExempt bool
}

func (supplierRecord) TableName() string { return "quote_suppliers" }

// Store keeps the quotes collection in a SQLite database. The collection is
// replaced wholesale on every save, matching the JSON store's semantics.
type Store struct {
	db       *gorm.DB
	fallback repositories.QuoteRepository
	logger   *zap.Logger
}

// Open connects to the database at dsn and migrates the schema. fallback, if
// non-nil, serves loads until the collection has been saved once.
func Open(dsn string, fallback repositories.QuoteRepository, logger *zap.Logger) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: gormlogger.Discard})
	if err != nil {
		return nil, fmt.Errorf("failed to open quotes database: %w", err)
	}
	return New(db, fallback, logger)
}

// New wraps an existing connection
func New(db *gorm.DB, fallback repositories.QuoteRepository, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := db.AutoMigrate(&quoteRecord{}, &itemRecord{}, &supplierRecord{}, &metaRecord{}); err != nil {
		return nil, fmt.Errorf("failed to migrate quotes database: %w", err)
	}
	return &Store{db: db, fallback: fallback, logger: logger}, nil
}

// metaRecord marks that the collection has been written at least once, so an
// intentionally emptied collection is not replaced by the fallback dataset.
type metaRecord struct {
	Name  string `gorm:"primaryKey"`
	Value string
}

func (metaRecord) TableName() string { return "quote_meta" }

const initializedKey = "initialized"

// insertBatchSize bounds rows per INSERT; items carry ten columns each
const insertBatchSize = 200

// Verify interface compliance
var _ repositories.QuoteRepository = (*Store)(nil)

// LoadQuotes reads the full collection in stored order
func (s *Store) LoadQuotes() []*entities.Quote {
	quotes, err := s.load()
	if err == nil {
		s.logger.Debug("loaded quotes from database", zap.Int("count", len(quotes)))
		return quotes
	}
	s.logger.Debug("quotes database not available", zap.Error(err))
	if s.fallback != nil {
		return s.fallback.LoadQuotes()
	}
	return []*entities.Quote{}
}

var errNotInitialized = errors.New("quotes database has not been written yet")

func (s *Store) load() ([]*entities.Quote, error) {
	var meta metaRecord
	if err := s.db.Where("name = ?", initializedKey).Limit(1).Find(&meta).Error; err != nil {
		return nil, err
	}
	if meta.Name == "" {
		return nil, errNotInitialized
	}

	var records []quoteRecord
	err := s.db.
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("position") }).
		Preload("Suppliers").
		Order("seq").
		Find(&records).Error
	if err != nil {
		return nil, err
	}

	quotes := make([]*entities.Quote, 0, len(records))
	for _, rec := range records {
		q, err := rec.toEntity()
		if err != nil {
			return nil, err
		}
		quotes = append(quotes, q)
	}
	return quotes, nil
}

// SaveQuotes replaces every stored quote with quotes in a single transaction
func (s *Store) SaveQuotes(quotes []*entities.Quote) error {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		for _, model := range []interface{}{&supplierRecord{}, &itemRecord{}, &quoteRecord{}} {
			if err := tx.Where("1 = 1").Delete(model).Error; err != nil {
				return err
			}
		}

		var items []itemRecord
		var suppliers []supplierRecord
		records := make([]quoteRecord, 0, len(quotes))
		for pos, q := range quotes {
			rec := fromEntity(q, pos)
			items = append(items, rec.Items...)
			suppliers = append(suppliers, rec.Suppliers...)
			rec.Items, rec.Suppliers = nil, nil
			records = append(records, rec)
		}

		// Batched inserts keep each statement under SQLite's bound-variable limit
		if len(records) > 0 {
			if err := tx.Omit(clause.Associations).CreateInBatches(&records, insertBatchSize).Error; err != nil {
				return err
			}
		}
		if len(items) > 0 {
			if err := tx.CreateInBatches(&items, insertBatchSize).Error; err != nil {
				return err
			}
		}
		if len(suppliers) > 0 {
			if err := tx.CreateInBatches(&suppliers, insertBatchSize).Error; err != nil {
				return err
			}
		}
		return tx.Clauses(clause.OnConflict{UpdateAll: true}).
			Create(&metaRecord{Name: initializedKey, Value: "1"}).Error
	})
	if err != nil {
		s.logger.Error("failed to save quotes", zap.Error(err))
		return fmt.Errorf("failed to save quotes: %w", err)
	}
	s.logger.Info("saved quotes to database", zap.Int("count", len(quotes)))
	return nil
}

// Close releases the underlying connection
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func fromEntity(q *entities.Quote, pos int) quoteRecord {
	seq := int64(pos + 1)
	rec := quoteRecord{
		Seq:       seq,
		QuoteID:   int64(q.ID),
		Name:      q.Name,
		CreatedAt: q.CreatedAt,
		PONumber:  q.PONumber,
		Notes:     q.Notes,
	}
	for i, it := range q.Items {
		rec.Items = append(rec.Items, itemRecord{
			QuoteSeq:    seq,
			Position:    i,
			PartNumber:  it.PartNumber,
			Description: it.Description,
			Quantity:    int64(it.Quantity),
			UnitCost:    it.UnitCost.String(),
			ListPrice:   it.ListPrice.String(),
			Source:      it.Source,
			TaxExempt:   it.TaxExempt,
			LineTotal:   it.LineTotal.String(),
		})
	}
	for name, policy := range q.Suppliers {
		rec.Suppliers = append(rec.Suppliers, supplierRecord{
			QuoteSeq:  seq,
			Name:      name,
			TaxExempt: policy.TaxExempt,
		})
	}
	return rec
}

func (rec quoteRecord) toEntity() (*entities.Quote, error) {
	q := &entities.Quote{
		ID:        entities.QuoteID(rec.QuoteID),
		Name:      rec.Name,
		CreatedAt: rec.CreatedAt,
		PONumber:  rec.PONumber,
		Notes:     rec.Notes,
		Items:     make([]entities.LineItem, 0, len(rec.Items)),
	}
	for _, ir := range rec.Items {
		item := entities.LineItem{
			PartNumber:  ir.PartNumber,
			Description: ir.Description,
			Quantity:    entities.Quantity(ir.Quantity),
			Source:      ir.Source,
			TaxExempt:   ir.TaxExempt,
		}
		var coerced bool
		for _, field := range []struct {
			raw string
			dst *entities.Money
		}{{ir.UnitCost, &item.UnitCost}, {ir.ListPrice, &item.ListPrice}, {ir.LineTotal, &item.LineTotal}} {
			*field.dst, coerced = entities.ParseMoney(field.raw, entities.Zero)
			if coerced {
				return nil, fmt.Errorf("quote %d item %d: invalid amount %q", rec.QuoteID, ir.Position, field.raw)
			}
		}
		q.Items = append(q.Items, item)
	}
	if len(rec.Suppliers) > 0 {
		q.Suppliers = make(map[string]entities.SupplierPolicy, len(rec.Suppliers))
		for _, sr := range rec.Suppliers {
			q.Suppliers[sr.Name] = entities.SupplierPolicy{TaxExempt: sr.TaxExempt}
		}
	}
	return q, nil
}
