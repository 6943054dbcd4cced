// Package schedule runs monitoring jobs on a cron schedule.
package schedule

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"

	"github.com/jmylchreest/dropwatch/internal/logger"
)

// Runner wraps a cron scheduler whose jobs share a base context. A job that
// is still running when its next slot fires is skipped.
type Runner struct {
	cron    *cron.Cron
	baseCtx context.Context
}

// New creates a runner. Specs include a leading seconds field.
func New(baseCtx context.Context) *Runner {
	if baseCtx == nil {
		baseCtx = context.Background()
	}
	log := cronLogger{logger.Logger()}
	return &Runner{
		cron: cron.New(
			cron.WithSeconds(),
			cron.WithLogger(log),
			cron.WithChain(cron.Recover(log), cron.SkipIfStillRunning(log)),
		),
		baseCtx: baseCtx,
	}
}

// Add registers job under spec.
func (r *Runner) Add(spec string, job func(context.Context)) (cron.EntryID, error) {
	id, err := r.cron.AddFunc(spec, func() { job(r.baseCtx) })
	if err != nil {
		return 0, fmt.Errorf("invalid schedule %q: %w", spec, err)
	}
	return id, nil
}

// Entries returns the registered entries with their next fire times.
func (r *Runner) Entries() []cron.Entry {
	return r.cron.Entries()
}

// Start begins firing jobs in the background.
func (r *Runner) Start() {
	logger.Info("scheduler started", "entries", len(r.cron.Entries()))
	r.cron.Start()
}

// Stop prevents new runs and waits for running jobs to return.
func (r *Runner) Stop() {
	ctx := r.cron.Stop()
	<-ctx.Done()
	logger.Info("scheduler stopped")
}

// cronLogger adapts slog to cron.Logger.
type cronLogger struct {
	l *slog.Logger
}

func (c cronLogger) Info(msg string, keysAndValues ...any) {
	c.l.Debug("cron: "+msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...any) {
	c.l.Error("cron: "+msg, append([]any{"error", err}, keysAndValues...)...)
}
