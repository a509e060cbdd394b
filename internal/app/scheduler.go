package app

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Job is a unit of background work run by a scheduler.
type Job interface {
	Name() string
	Run(ctx context.Context) error
}

// FixedDelay runs a job immediately and then again Interval after each run
// completes. Runs never overlap.
type FixedDelay struct {
	Job      Job
	Interval time.Duration
	Log      zerolog.Logger
}

// Run blocks until ctx is cancelled.
func (f FixedDelay) Run(ctx context.Context) {
	log := f.Log.With().Str("job", f.Job.Name()).Logger()
	log.Info().Dur("interval", f.Interval).Msg("scheduler started")

	timer := time.NewTimer(0)
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("scheduler stopped")
			return
		case <-timer.C:
		}
		if err := f.Job.Run(ctx); err != nil {
			log.Error().Err(err).Msg("job run failed")
		}
		timer.Reset(f.Interval)
	}
}
