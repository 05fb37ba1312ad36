package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/goroku-app/goroku/internal/domain"
)

// quoteRecord is the gorm model backing the quotes table.
type quoteRecord struct {
	ID            int64  `gorm:"primaryKey;autoIncrement"`
	Original      string `gorm:"not null"`
	Interpreted   string
	Official      string `gorm:"not null"`
	Likes         int64  `gorm:"not null;default:0"`
	Reposts       int64  `gorm:"not null;default:0"`
	QuotedReposts int64  `gorm:"not null;default:0"`
	SlotLabel     string
	Curated       bool `gorm:"not null;default:false"`
	CreatedAt     time.Time
}

func (quoteRecord) TableName() string { return "quotes" }

// PostgresStore persists quotes in Postgres, the backend used for shared
// deployments where the quote collection outlives any single host.
type PostgresStore struct {
	db *gorm.DB
}

// NewPostgresStore connects with dsn and migrates the quotes table.
func NewPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	if dsn == "" {
		return nil, errors.New("postgres dsn is required")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	if err := db.WithContext(ctx).AutoMigrate(&quoteRecord{}); err != nil {
		return nil, fmt.Errorf("migrate quotes table: %w", err)
	}

	return &PostgresStore{db: db}, nil
}

// LoadAll implements ports.QuoteStore. Curated entries sort first so the
// stable example sort favors them on score ties.
func (s *PostgresStore) LoadAll(ctx context.Context) ([]domain.Quote, error) {
	var records []quoteRecord
	err := s.db.WithContext(ctx).
		Order("curated DESC, id ASC").
		Find(&records).Error
	if err != nil {
		return nil, domain.NewStoreError("load", err)
	}

	quotes := make([]domain.Quote, len(records))
	for i, r := range records {
		quotes[i] = domain.Quote{
			ID:            r.ID,
			Original:      r.Original,
			Interpreted:   r.Interpreted,
			Official:      r.Official,
			Likes:         r.Likes,
			Reposts:       r.Reposts,
			QuotedReposts: r.QuotedReposts,
			SlotLabel:     r.SlotLabel,
			CreatedAt:     r.CreatedAt,
		}
	}
	return quotes, nil
}

// Append implements ports.QuoteStore.
func (s *PostgresStore) Append(ctx context.Context, q domain.Quote) (int64, error) {
	if err := q.Validate(); err != nil {
		return 0, err
	}

	rec := quoteRecord{
		Original:      q.Original,
		Interpreted:   q.Interpreted,
		Official:      q.Official,
		Likes:         q.Likes,
		Reposts:       q.Reposts,
		QuotedReposts: q.QuotedReposts,
		SlotLabel:     q.SlotLabel,
		CreatedAt:     q.CreatedAt,
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	if err := s.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return 0, domain.NewStoreError("append", err)
	}
	return rec.ID, nil
}

// AdjustLikes implements ports.QuoteStore.
func (s *PostgresStore) AdjustLikes(ctx context.Context, id, delta int64) (int64, error) {
	return s.adjust(ctx, "likes", id, delta)
}

// AdjustReposts implements ports.QuoteStore.
func (s *PostgresStore) AdjustReposts(ctx context.Context, id, delta int64) (int64, error) {
	return s.adjust(ctx, "reposts", id, delta)
}

// AdjustQuotedReposts implements ports.QuoteStore.
func (s *PostgresStore) AdjustQuotedReposts(ctx context.Context, id, delta int64) (int64, error) {
	return s.adjust(ctx, "quoted_reposts", id, delta)
}

// adjust applies delta to one counter column, clamped at zero. column is
// always one of the three fixed counter names, never caller input.
func (s *PostgresStore) adjust(ctx context.Context, column string, id, delta int64) (int64, error) {
	res := s.db.WithContext(ctx).
		Model(&quoteRecord{}).
		Where("id = ?", id).
		Update(column, gorm.Expr(fmt.Sprintf("GREATEST(%s + ?, 0)", column), delta))
	if res.Error != nil {
		return 0, domain.NewStoreError("adjust", res.Error)
	}
	if res.RowsAffected == 0 {
		return 0, domain.NewStoreError("adjust", fmt.Errorf("quote %d not found", id))
	}

	var newValue int64

	err := s.db.WithContext(ctx).
		Model(&quoteRecord{}).
		Select(column).
		Where("id = ?", id).
		Scan(&newValue).Error
	if err != nil {
		return 0, domain.NewStoreError("adjust", err)
	}
	return newValue, nil
}

// Name implements ports.HealthChecker.
func (s *PostgresStore) Name() string { return "postgres-store" }

// Check implements ports.HealthChecker.
func (s *PostgresStore) Check(ctx context.Context) error {
	db, err := s.db.DB()
	if err != nil {
		return err
	}
	return db.PingContext(ctx)
}

// Close closes the underlying connection pool.
func (s *PostgresStore) Close() error {
	db, err := s.db.DB()
	if err != nil {
		return err
	}
	return db.Close()
}
