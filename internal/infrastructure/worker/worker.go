// Package worker runs the periodic background jobs next to the HTTP server.
package worker

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Job is a named task run every Interval. A zero Interval disables it.
type Job struct {
	Name     string
	Interval time.Duration
	Run      func(ctx context.Context) error
}

// Runner is a long-lived task that blocks until ctx ends, such as the
// outbox relay.
type Runner interface {
	Start(ctx context.Context) error
}

// Group runs jobs and runners until the context is cancelled.
type Group struct {
	logger  zerolog.Logger
	jobs    []Job
	runners map[string]Runner
}

// NewGroup creates an empty Group.
func NewGroup(logger zerolog.Logger) *Group {
	return &Group{
		logger:  logger.With().Str("component", "worker").Logger(),
		runners: make(map[string]Runner),
	}
}

// Every schedules run under name.
func (g *Group) Every(name string, interval time.Duration, run func(ctx context.Context) error) *Group {
	g.jobs = append(g.jobs, Job{Name: name, Interval: interval, Run: run})
	return g
}

// Add registers a long-lived runner.
func (g *Group) Add(name string, r Runner) *Group {
	g.runners[name] = r
	return g
}

// Run blocks until ctx is cancelled or a runner fails. Job errors are
// logged and the job runs again on its next tick.
func (g *Group) Run(ctx context.Context) error {
	eg, ctx := errgroup.WithContext(ctx)

	for name, r := range g.runners {
		eg.Go(func() error {
			err := r.Start(ctx)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			if err != nil {
				g.logger.Error().Err(err).Str("worker", name).Msg("worker stopped")
			}
			return err
		})
	}

	for _, job := range g.jobs {
		if job.Interval <= 0 {
			g.logger.Info().Str("job", job.Name).Msg("job disabled")
			continue
		}
		eg.Go(func() error {
			g.loop(ctx, job)
			return nil
		})
	}

	return eg.Wait()
}

func (g *Group) loop(ctx context.Context, job Job) {
	log := g.logger.With().Str("job", job.Name).Logger()
	log.Info().Dur("interval", job.Interval).Msg("job scheduled")

	ticker := time.NewTicker(job.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("job stopped")
			return
		case <-ticker.C:
			start := time.Now()
			if err := job.Run(log.WithContext(ctx)); err != nil {
				log.Error().Err(err).Msg("job failed")
				continue
			}
			log.Debug().Dur("took", time.Since(start)).Msg("job finished")
		}
	}
}
