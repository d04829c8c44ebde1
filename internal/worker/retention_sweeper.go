// Package worker hosts the background jobs that run outside any request,
// currently only the activity log retention sweep.
package worker

import (
	"context"
	"runtime/debug"
	"time"

	"github.com/rs/zerolog"

	"github.com/orbicityhub/cityhub-api/internal/dto"
)

// Cleaner is the slice of the activity log service the sweeper needs.
type Cleaner interface {
	Cleanup(ctx context.Context) (dto.CleanupResponse, error)
}

// RetentionSweeper periodically bulk-retires activity log entries past the
// retention window. It is constructed explicitly and owns its ticker; there
// is no process-wide scheduler state.
type RetentionSweeper struct {
	ticker  *time.Ticker
	cleaner Cleaner
	logger  zerolog.Logger
	done    chan struct{}
}

// NewRetentionSweeper creates a sweeper firing at the given interval.
func NewRetentionSweeper(interval time.Duration, cleaner Cleaner, logger zerolog.Logger) *RetentionSweeper {
	if interval <= 0 {
		interval = 24 * time.Hour
	}
	return &RetentionSweeper{
		ticker:  time.NewTicker(interval),
		cleaner: cleaner,
		logger:  logger.With().Str("component", "retention_sweeper").Logger(),
		done:    make(chan struct{}),
	}
}

// Start begins the periodic sweep in its own goroutine.
func (w *RetentionSweeper) Start() {
	w.logger.Info().Msg("starting retention sweeper")
	go func() {
		for {
			select {
			case <-w.done:
				return
			case <-w.ticker.C:
				w.sweep()
			}
		}
	}()
}

// Stop halts the ticker and terminates the sweep goroutine.
func (w *RetentionSweeper) Stop() {
	w.logger.Info().Msg("stopping retention sweeper")
	w.ticker.Stop()
	close(w.done)
}

func (w *RetentionSweeper) sweep() {
	defer func() {
		if r := recover(); r != nil {
			w.logger.Error().
				Interface("panic", r).
				Str("stack", string(debug.Stack())).
				Msg("panic recovered in retention sweeper")
		}
	}()

	resp, err := w.cleaner.Cleanup(context.Background())
	if err != nil {
		w.logger.Error().Err(err).Msg("retention sweep failed")
		return
	}
	w.logger.Debug().Int64("deleted", resp.Deleted).Msg("retention sweep completed")
}
