package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/clinic-portal/internal/auth"
	"github.com/spec-kit/clinic-portal/internal/observability"
)

// SessionSweeper periodically prunes the session registry outside the
// request path: stale and idle records every tick, plus the once-a-day full
// reset once the boundary hour has been reached.
type SessionSweeper struct {
	sessions *auth.SessionRegistry
	metrics  *observability.Metrics
	interval time.Duration
	logger   *zap.Logger
}

// NewSessionSweeper builds the sweeper.
func NewSessionSweeper(sessions *auth.SessionRegistry, metrics *observability.Metrics, interval time.Duration, logger *zap.Logger) *SessionSweeper {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &SessionSweeper{
		sessions: sessions,
		metrics:  metrics,
		interval: interval,
		logger:   logger,
	}
}

// Start runs the sweep loop until the context is cancelled.
func (w *SessionSweeper) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.logger.Info("session sweeper started", zap.Duration("interval", w.interval))
	for {
		select {
		case <-ctx.Done():
			w.logger.Info("session sweeper stopped")
			return
		case <-ticker.C:
			w.sweep()
		}
	}
}

func (w *SessionSweeper) sweep() {
	removed := w.sessions.CleanupOldSessions()
	removed += w.sessions.ForceDailyReset()
	w.metrics.RecordSessionsSwept(removed)
}
