package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron"
)

const sweepTimeout = 30 * time.Second

// Sweeper removes cache entries older than maxAge.
type Sweeper interface {
	Sweep(ctx context.Context, maxAge time.Duration) (int, error)
}

// Reporter is the error telemetry sink.
type Reporter interface {
	Report(ctx context.Context, err error, service string, extra map[string]any)
}

// Scheduler periodically sweeps the enhancement cache.
type Scheduler struct {
	scheduler *gocron.Scheduler
	sweeper   Sweeper
	interval  time.Duration
	maxAge    time.Duration
	reporter  Reporter
	logger    *slog.Logger
}

// New creates a Scheduler. The first sweep runs as soon as it starts.
func New(sweeper Sweeper, interval, maxAge time.Duration, reporter Reporter, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		sweeper:   sweeper,
		interval:  interval,
		maxAge:    maxAge,
		reporter:  reporter,
		logger:    logger,
	}
}

// Start schedules the sweep job and starts the underlying scheduler.
func (s *Scheduler) Start() error {
	interval := s.interval
	if interval <= 0 {
		interval = time.Hour
	}

	if _, err := s.scheduler.Every(interval).SingletonMode().Do(s.sweep); err != nil {
		return err
	}

	s.scheduler.StartAsync()
	s.logger.Info("cache sweep scheduled", "interval", interval, "max_age", s.maxAge)
	return nil
}

// Stop stops the scheduler and cancels any future sweeps.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}

func (s *Scheduler) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
	defer cancel()

	n, err := s.sweeper.Sweep(ctx, s.maxAge)
	if err != nil {
		s.logger.Error("cache sweep failed", "error", err, "removed", n)
		s.reporter.Report(ctx, err, "cache-sweep", map[string]any{
			"max_age": s.maxAge.String(),
			"removed": n,
		})
		return
	}
	s.logger.Debug("cache sweep completed", "removed", n)
}
