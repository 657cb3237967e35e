package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// IdleSweeper drops sessions that have not been used since the cutoff.
type IdleSweeper interface {
	SweepIdle(cutoff time.Time) int
}

// SessionSweeper periodically evicts idle configuration sessions.
type SessionSweeper struct {
	sessions    IdleSweeper
	idleTimeout time.Duration
	interval    time.Duration
}

// NewSessionSweeper constructs a SessionSweeper.
func NewSessionSweeper(sessions IdleSweeper, idleTimeout, interval time.Duration) *SessionSweeper {
	return &SessionSweeper{
		sessions:    sessions,
		idleTimeout: idleTimeout,
		interval:    interval,
	}
}

// Start begins the sweep loop until context is canceled.
func (w *SessionSweeper) Start(ctx context.Context) {
	if w.interval <= 0 || w.idleTimeout <= 0 {
		log.Info().Msg("Session sweeper disabled")
		return
	}
	log.Info().Dur("interval", w.interval).Dur("idle_timeout", w.idleTimeout).Msg("Starting session sweeper")

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case now := <-ticker.C:
			w.run(now)
		case <-ctx.Done():
			log.Info().Msg("Session sweeper stopped")
			return
		}
	}
}

func (w *SessionSweeper) run(now time.Time) {
	if n := w.sessions.SweepIdle(now.Add(-w.idleTimeout)); n > 0 {
		log.Info().Int("count", n).Msg("Evicted idle sessions")
	}
}
