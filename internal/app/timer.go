package app

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// DefaultTickInterval is the turn clock resolution
const DefaultTickInterval = time.Second

// tickTimeout bounds a single tick's read and write
const tickTimeout = 5 * time.Second

// TimerAuthority is the only writer of a session's turn clock. It runs on
// the server for as long as the session is live, so the clock keeps going
// when any participant, host included, drops.
type TimerAuthority struct {
	interval time.Duration
	tick     func(context.Context) error
	logger   *slog.Logger

	done     chan struct{}
	stopOnce sync.Once
}

// NewTimerAuthority creates a timer that calls tick every interval once
// Run is started
func NewTimerAuthority(interval time.Duration, tick func(context.Context) error, logger *slog.Logger) *TimerAuthority {
	if interval <= 0 {
		interval = DefaultTickInterval
	}
	return &TimerAuthority{
		interval: interval,
		tick:     tick,
		logger:   logger,
		done:     make(chan struct{}),
	}
}

// Run ticks until Stop is called
func (t *TimerAuthority) Run() {
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-t.done:
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), tickTimeout)
			if err := t.tick(ctx); err != nil {
				t.logger.Warn("timer tick failed", "error", err)
			}
			cancel()
		}
	}
}

// Stop ends the loop. It is safe to call more than once.
func (t *TimerAuthority) Stop() {
	t.stopOnce.Do(func() {
		close(t.done)
	})
}
