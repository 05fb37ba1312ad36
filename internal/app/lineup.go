package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/goroku-app/goroku/internal/domain"
	"github.com/goroku-app/goroku/internal/lineup"
	"github.com/goroku-app/goroku/internal/ports"
)

// LineupService serves the deterministic daily lineup, caching the result
// for the remainder of the calendar day.
type LineupService struct {
	store  ports.QuoteStore
	cache  *lineup.Cache
	logger *slog.Logger
	prom   *PromMetrics
	now    func() time.Time
}

// LineupDeps bundles the collaborators for NewLineupService.
type LineupDeps struct {
	Store  ports.QuoteStore
	Logger *slog.Logger
	Prom   *PromMetrics

	// Now overrides the clock, for tests. Defaults to time.Now.
	Now func() time.Time
}

// NewLineupService creates a lineup service with an empty cache.
func NewLineupService(deps LineupDeps) *LineupService {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}

	return &LineupService{
		store:  deps.Store,
		cache:  lineup.NewCache(),
		logger: logger,
		prom:   deps.Prom,
		now:    now,
	}
}

// DailyLineup returns the lineup for the current Tokyo calendar day.
func (s *LineupService) DailyLineup(ctx context.Context) ([]int64, error) {
	return s.ForDate(ctx, lineup.DateKey(s.now()))
}

// ForDate returns the lineup for dateKey, recomputing on cache miss. The
// cached result is authoritative for the whole day; a new dateKey
// supersedes it.
func (s *LineupService) ForDate(ctx context.Context, dateKey string) ([]int64, error) {
	if ids, ok := s.cache.Get(dateKey); ok {
		return ids, nil
	}

	quotes, err := s.store.LoadAll(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "lineup snapshot load failed",
			slog.String("date", dateKey),
			slog.Any("error", err),
		)
		return nil, err
	}

	ids := lineup.Compose(quotes, dateKey, domain.SlotLabels[:])
	s.cache.Put(dateKey, ids)

	if s.prom != nil {
		s.prom.LineupRefreshes.Inc()
	}
	s.logger.InfoContext(ctx, "lineup composed",
		slog.String("date", dateKey),
		slog.Int("size", len(ids)),
	)

	return ids, nil
}
