// Package scheduler runs the daemon-mode loops: the daily lineup refresh
// and the operational HTTP listener.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/goroku-app/goroku/internal/app"
	"github.com/goroku-app/goroku/internal/lineup"
)

// defaultTickInterval is how often the refresher checks for a Tokyo date
// rollover. The lineup itself only recomputes when the date key changes.
const defaultTickInterval = time.Minute

// Refresher keeps the daily lineup warm across date rollovers.
type Refresher struct {
	lineups  *app.LineupService
	logger   *slog.Logger
	interval time.Duration
	now      func() time.Time
}

// RefresherConfig configures a Refresher.
type RefresherConfig struct {
	Lineups  *app.LineupService
	Logger   *slog.Logger
	Interval time.Duration

	// Now overrides the clock, for tests.
	Now func() time.Time
}

// NewRefresher creates a lineup refresher.
func NewRefresher(cfg RefresherConfig) *Refresher {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	interval := cfg.Interval
	if interval <= 0 {
		interval = defaultTickInterval
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	return &Refresher{
		lineups:  cfg.Lineups,
		logger:   logger,
		interval: interval,
		now:      now,
	}
}

// Run composes the lineup immediately and then re-checks on every tick
// until ctx is cancelled. A failed refresh is logged and retried on the
// next tick; the previous day's cached lineup keeps serving meanwhile.
func (r *Refresher) Run(ctx context.Context) error {
	r.logger.InfoContext(ctx, "starting lineup refresher",
		slog.Duration("interval", r.interval),
	)

	lastKey := r.refresh(ctx, "")

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.InfoContext(ctx, "lineup refresher shutting down")
			return ctx.Err()
		case <-ticker.C:
			lastKey = r.refresh(ctx, lastKey)
		}
	}
}

// refresh recomputes the lineup when the Tokyo date moved past lastKey.
// Returns the date key now in effect.
func (r *Refresher) refresh(ctx context.Context, lastKey string) string {
	key := lineup.DateKey(r.now())
	if key == lastKey {
		return lastKey
	}

	if _, err := r.lineups.ForDate(ctx, key); err != nil {
		r.logger.ErrorContext(ctx, "lineup refresh failed",
			slog.String("date", key),
			slog.Any("error", err),
		)
		// Try again next tick.
		return lastKey
	}

	r.logger.InfoContext(ctx, "lineup refreshed", slog.String("date", key))
	return key
}
