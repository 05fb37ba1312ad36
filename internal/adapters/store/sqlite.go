package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/goroku-app/goroku/internal/domain"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS quotes (
	id             INTEGER PRIMARY KEY AUTOINCREMENT,
	original       TEXT NOT NULL,
	interpreted    TEXT NOT NULL DEFAULT '',
	official       TEXT NOT NULL,
	likes          INTEGER NOT NULL DEFAULT 0,
	reposts        INTEGER NOT NULL DEFAULT 0,
	quoted_reposts INTEGER NOT NULL DEFAULT 0,
	slot_label     TEXT NOT NULL DEFAULT '',
	curated        INTEGER NOT NULL DEFAULT 0,
	created_at     TIMESTAMP NOT NULL
)`

// SQLiteStore persists quotes in an embedded SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens or creates the database at path and ensures the
// schema exists.
func NewSQLiteStore(ctx context.Context, path string) (*SQLiteStore, error) {
	if path == "" {
		return nil, errors.New("database path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// SQLite does not handle concurrent writers well.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// LoadAll implements ports.QuoteStore. Curated entries sort first so the
// stable example sort favors them on score ties.
func (s *SQLiteStore) LoadAll(ctx context.Context) ([]domain.Quote, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, original, interpreted, official,
		       likes, reposts, quoted_reposts, slot_label, created_at
		FROM quotes
		ORDER BY curated DESC, id ASC`)
	if err != nil {
		return nil, domain.NewStoreError("load", err)
	}
	defer rows.Close()

	var quotes []domain.Quote
	for rows.Next() {
		var q domain.Quote
		if err := rows.Scan(&q.ID, &q.Original, &q.Interpreted, &q.Official,
			&q.Likes, &q.Reposts, &q.QuotedReposts, &q.SlotLabel, &q.CreatedAt); err != nil {
			return nil, domain.NewStoreError("load", err)
		}
		quotes = append(quotes, q)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.NewStoreError("load", err)
	}
	return quotes, nil
}

// Append implements ports.QuoteStore.
func (s *SQLiteStore) Append(ctx context.Context, q domain.Quote) (int64, error) {
	if err := q.Validate(); err != nil {
		return 0, err
	}

	createdAt := q.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO quotes (original, interpreted, official,
		                    likes, reposts, quoted_reposts, slot_label, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		q.Original, q.Interpreted, q.Official,
		q.Likes, q.Reposts, q.QuotedReposts, q.SlotLabel, createdAt)
	if err != nil {
		return 0, domain.NewStoreError("append", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, domain.NewStoreError("append", err)
	}
	return id, nil
}

// AdjustLikes implements ports.QuoteStore.
func (s *SQLiteStore) AdjustLikes(ctx context.Context, id, delta int64) (int64, error) {
	return s.adjust(ctx, "likes", id, delta)
}

// AdjustReposts implements ports.QuoteStore.
func (s *SQLiteStore) AdjustReposts(ctx context.Context, id, delta int64) (int64, error) {
	return s.adjust(ctx, "reposts", id, delta)
}

// AdjustQuotedReposts implements ports.QuoteStore.
func (s *SQLiteStore) AdjustQuotedReposts(ctx context.Context, id, delta int64) (int64, error) {
	return s.adjust(ctx, "quoted_reposts", id, delta)
}

// adjust applies delta to one counter column, clamped at zero. column is
// always one of the three fixed counter names, never caller input.
func (s *SQLiteStore) adjust(ctx context.Context, column string, id, delta int64) (int64, error) {
	query := fmt.Sprintf(`
		UPDATE quotes SET %s = MAX(%s + ?, 0) WHERE id = ?
		RETURNING %s`, column, column, column)

	var newValue int64
	err := s.db.QueryRowContext(ctx, query, delta, id).Scan(&newValue)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, domain.NewStoreError("adjust", fmt.Errorf("quote %d not found", id))
	}
	if err != nil {
		return 0, domain.NewStoreError("adjust", err)
	}
	return newValue, nil
}

// Name implements ports.HealthChecker.
func (s *SQLiteStore) Name() string { return "sqlite-store" }

// Check implements ports.HealthChecker.
func (s *SQLiteStore) Check(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
