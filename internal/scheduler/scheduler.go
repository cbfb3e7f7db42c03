// Package scheduler re-runs the job update on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"
)

// RunFunc is one scheduled run.
type RunFunc func(ctx context.Context) error

// Scheduler wraps robfig/cron. Overlapping ticks are skipped while a run is
// still in progress.
type Scheduler struct {
	cron   *cron.Cron
	spec   string
	run    RunFunc
	logger *slog.Logger
}

func New(spec string, run RunFunc, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	cl := cronLogger{logger: logger}
	return &Scheduler{
		cron:   cron.New(cron.WithLogger(cl), cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl))),
		spec:   spec,
		run:    run,
		logger: logger,
	}
}

// Start registers the run and starts the scheduler. Runs receive ctx.
func (s *Scheduler) Start(ctx context.Context) error {
	_, err := s.cron.AddFunc(s.spec, func() {
		s.logger.Info("scheduled run started")
		if err := s.run(ctx); err != nil {
			s.logger.Error("scheduled run failed", slog.Any("err", err))
			return
		}
		s.logger.Info("scheduled run complete")
	})
	if err != nil {
		return fmt.Errorf("cron.AddFunc: %w", err)
	}

	s.cron.Start()
	s.logger.Info("scheduler started", slog.String("spec", s.spec))

	return nil
}

// Stop halts the scheduler and waits for a run in progress.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.logger.Info("scheduler stopped")
}

// cronLogger adapts slog to cron.Logger.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error("cron: "+msg, append(keysAndValues, "err", err)...)
}
