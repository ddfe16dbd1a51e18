package usecase

import (
	"context"
	"time"

	"newsdigest/internal/ports"
)

// Scheduler wires interval drivers to the pipeline use case: one driver for
// recurring runs, one for the daily retention sweep.
type Scheduler struct {
	runDriver   ports.Scheduler
	sweepDriver ports.Scheduler
	pipeline    *Pipeline
}

// NewScheduler returns a helper to start/stop recurring jobs.
func NewScheduler(runDriver, sweepDriver ports.Scheduler, pipeline *Pipeline) *Scheduler {
	return &Scheduler{runDriver: runDriver, sweepDriver: sweepDriver, pipeline: pipeline}
}

// Start registers pipeline runs and sweeps with their drivers. Job errors
// are already reported through the pipeline's own logging; overlapping runs
// are safe thanks to the store's uniqueness constraint.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.pipeline == nil {
		return nil
	}

	if s.runDriver != nil {
		job := func(time.Time) {
			_, _ = s.pipeline.Run(ctx)
		}
		if err := s.runDriver.Start(ctx, job); err != nil {
			return err
		}
	}

	if s.sweepDriver != nil {
		sweep := func(time.Time) {
			_, _ = s.pipeline.SweepOldAlerts(ctx)
		}
		if err := s.sweepDriver.Start(ctx, sweep); err != nil {
			return err
		}
	}

	return nil
}

// Stop gracefully tears down the underlying drivers.
func (s *Scheduler) Stop(ctx context.Context) error {
	if s.runDriver != nil {
		if err := s.runDriver.Stop(ctx); err != nil {
			return err
		}
	}
	if s.sweepDriver != nil {
		return s.sweepDriver.Stop(ctx)
	}
	return nil
}
