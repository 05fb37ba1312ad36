// Package store implements the quote store port over three backends: a
// JSON file, an embedded SQLite database, and Postgres.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/goroku-app/goroku/internal/domain"
)

// fileQuote is the on-disk JSON shape of one quote.
type fileQuote struct {
	ID            int64     `json:"id"`
	Original      string    `json:"original"`
	Interpreted   string    `json:"interpreted,omitempty"`
	Official      string    `json:"official"`
	Likes         int64     `json:"likes"`
	Reposts       int64     `json:"reposts"`
	QuotedReposts int64     `json:"quotedReposts"`
	SlotLabel     string    `json:"slotLabel,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}

// FileStore persists quotes as a JSON array in a single user file, layered
// over an optional read-only base file of curated entries.
//
// LoadAll returns base entries first so the stable example sort favors
// curated content on score ties. When an id appears in both files the user
// entry wins, letting engagement updates shadow a curated original.
type FileStore struct {
	mu       sync.Mutex
	path     string
	basePath string
}

// NewFileStore creates a file store writing to path. basePath may be empty.
func NewFileStore(path, basePath string) (*FileStore, error) {
	if path == "" {
		return nil, errors.New("store path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create store directory: %w", err)
	}
	return &FileStore{path: path, basePath: basePath}, nil
}

// LoadAll implements ports.QuoteStore.
func (s *FileStore) LoadAll(_ context.Context) ([]domain.Quote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	merged, err := s.loadMerged()
	if err != nil {
		return nil, domain.NewStoreError("load", err)
	}

	out := make([]domain.Quote, len(merged))
	for i, q := range merged {
		out[i] = toDomain(q)
	}
	return out, nil
}

// Append implements ports.QuoteStore.
func (s *FileStore) Append(_ context.Context, q domain.Quote) (int64, error) {
	if err := q.Validate(); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	merged, err := s.loadMerged()
	if err != nil {
		return 0, domain.NewStoreError("append", err)
	}

	var maxID int64
	for _, existing := range merged {
		if existing.ID > maxID {
			maxID = existing.ID
		}
	}

	rec := fromDomain(q)
	rec.ID = maxID + 1
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	user, err := readQuoteFile(s.path)
	if err != nil {
		return 0, domain.NewStoreError("append", err)
	}
	user = append(user, rec)

	if err := s.writeUserFile(user); err != nil {
		return 0, domain.NewStoreError("append", err)
	}
	return rec.ID, nil
}

// AdjustLikes implements ports.QuoteStore.
func (s *FileStore) AdjustLikes(ctx context.Context, id, delta int64) (int64, error) {
	return s.adjust(ctx, id, func(q *fileQuote) *int64 { return &q.Likes }, delta)
}

// AdjustReposts implements ports.QuoteStore.
func (s *FileStore) AdjustReposts(ctx context.Context, id, delta int64) (int64, error) {
	return s.adjust(ctx, id, func(q *fileQuote) *int64 { return &q.Reposts }, delta)
}

// AdjustQuotedReposts implements ports.QuoteStore.
func (s *FileStore) AdjustQuotedReposts(ctx context.Context, id, delta int64) (int64, error) {
	return s.adjust(ctx, id, func(q *fileQuote) *int64 { return &q.QuotedReposts }, delta)
}

func (s *FileStore) adjust(_ context.Context, id int64, counter func(*fileQuote) *int64, delta int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, err := readQuoteFile(s.path)
	if err != nil {
		return 0, domain.NewStoreError("adjust", err)
	}

	idx := indexOf(user, id)
	if idx < 0 {
		// The target may live only in the base file. Copy it into the
		// user file so the updated counters shadow the curated entry.
		base, err := readQuoteFile(s.basePath)
		if err != nil {
			return 0, domain.NewStoreError("adjust", err)
		}
		baseIdx := indexOf(base, id)
		if baseIdx < 0 {
			return 0, domain.NewStoreError("adjust", fmt.Errorf("quote %d not found", id))
		}
		user = append(user, base[baseIdx])
		idx = len(user) - 1
	}

	c := counter(&user[idx])
	*c += delta
	if *c < 0 {
		*c = 0
	}
	newValue := *c

	if err := s.writeUserFile(user); err != nil {
		return 0, domain.NewStoreError("adjust", err)
	}
	return newValue, nil
}

// Name implements ports.HealthChecker.
func (s *FileStore) Name() string { return "file-store" }

// Check implements ports.HealthChecker.
func (s *FileStore) Check(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.loadMerged()
	return err
}

// loadMerged returns base entries followed by user entries, with user
// entries replacing base entries that share an id.
func (s *FileStore) loadMerged() ([]fileQuote, error) {
	base, err := readQuoteFile(s.basePath)
	if err != nil {
		return nil, err
	}
	user, err := readQuoteFile(s.path)
	if err != nil {
		return nil, err
	}

	byID := make(map[int64]fileQuote, len(user))
	for _, q := range user {
		byID[q.ID] = q
	}

	merged := make([]fileQuote, 0, len(base)+len(user))
	seen := make(map[int64]bool, len(base))
	for _, q := range base {
		if override, ok := byID[q.ID]; ok {
			q = override
		}
		merged = append(merged, q)
		seen[q.ID] = true
	}
	for _, q := range user {
		if !seen[q.ID] {
			merged = append(merged, q)
		}
	}
	return merged, nil
}

func (s *FileStore) writeUserFile(quotes []fileQuote) error {
	data, err := json.MarshalIndent(quotes, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal quotes: %w", err)
	}

	// Write-then-rename keeps a crash from leaving a half-written file.
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write quotes: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace quotes file: %w", err)
	}
	return nil
}

func readQuoteFile(path string) ([]fileQuote, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var quotes []fileQuote
	if err := json.Unmarshal(data, &quotes); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return quotes, nil
}

func indexOf(quotes []fileQuote, id int64) int {
	for i, q := range quotes {
		if q.ID == id {
			return i
		}
	}
	return -1
}

func toDomain(q fileQuote) domain.Quote {
	return domain.Quote{
		ID:            q.ID,
		Original:      q.Original,
		Interpreted:   q.Interpreted,
		Official:      q.Official,
		Likes:         q.Likes,
		Reposts:       q.Reposts,
		QuotedReposts: q.QuotedReposts,
		SlotLabel:     q.SlotLabel,
		CreatedAt:     q.CreatedAt,
	}
}

func fromDomain(q domain.Quote) fileQuote {
	return fileQuote{
		ID:            q.ID,
		Original:      q.Original,
		Interpreted:   q.Interpreted,
		Official:      q.Official,
		Likes:         q.Likes,
		Reposts:       q.Reposts,
		QuotedReposts: q.QuotedReposts,
		SlotLabel:     q.SlotLabel,
		CreatedAt:     q.CreatedAt,
	}
}
