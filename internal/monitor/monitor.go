// Package monitor runs the poll loop that turns page captures into a
// continuously updated auction snapshot.
package monitor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"github.com/jmylchreest/dropwatch/internal/auction"
	"github.com/jmylchreest/dropwatch/internal/extract"
	"github.com/jmylchreest/dropwatch/internal/logger"
	"github.com/jmylchreest/dropwatch/internal/page"
)

// ErrPageUnavailable wraps failures that make the page session unusable.
var ErrPageUnavailable = errors.New("results page unavailable")

// Reason describes why a run stopped.
type Reason string

const (
	// ReasonCompleted means every visible auction was finalized.
	ReasonCompleted Reason = "completed"
	// ReasonDeadline means the wall-clock budget ran out.
	ReasonDeadline Reason = "deadline"
	// ReasonCancelled means the context was cancelled.
	ReasonCancelled Reason = "cancelled"
)

// Snapshotter persists the full ledger.
type Snapshotter interface {
	Save(recs []auction.Record) (int64, error)
}

// Options controls loop timing.
type Options struct {
	PollInterval    time.Duration // pause between cycles
	EmptyRetryDelay time.Duration // pause before re-reading an empty page
	MaxDuration     time.Duration // wall-clock budget for the whole run
	ConfirmEnded    bool          // re-read borderline rows before finalizing
	ConfirmDelay    time.Duration // pause before the confirmation re-read
}

// DefaultOptions returns the loop timing used when nothing is configured.
func DefaultOptions() Options {
	return Options{
		PollInterval:    5 * time.Second,
		EmptyRetryDelay: 5 * time.Second,
		MaxDuration:     60 * time.Minute,
		ConfirmEnded:    true,
		ConfirmDelay:    time.Second,
	}
}

// Result summarizes a finished run.
type Result struct {
	RunID     string
	Ledger    *auction.Ledger
	Cycles    int
	Reason    Reason
	StartedAt time.Time
	EndedAt   time.Time
}

// Duration returns how long the run took.
func (r Result) Duration() time.Duration {
	return r.EndedAt.Sub(r.StartedAt)
}

// Monitor drives one source through repeated poll cycles.
type Monitor struct {
	source    page.Source
	extractor *extract.Extractor
	policy    auction.Policy
	snapshot  Snapshotter
	opts      Options

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
	newID func() string
}

// Option customizes a Monitor.
type Option func(*Monitor)

// WithClock replaces the time source.
func WithClock(now func() time.Time) Option {
	return func(m *Monitor) { m.now = now }
}

// WithSleeper replaces the delay function.
func WithSleeper(sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(m *Monitor) { m.sleep = sleep }
}

// New creates a monitor.
func New(src page.Source, ext *extract.Extractor, policy auction.Policy, snap Snapshotter, opts Options, options ...Option) *Monitor {
	m := &Monitor{
		source:    src,
		extractor: ext,
		policy:    policy,
		snapshot:  snap,
		opts:      opts,
		now:       time.Now,
		sleep:     sleepContext,
		newID:     uuid.NewString,
	}
	for _, o := range options {
		o(m)
	}
	return m
}

// cycleStats is what one poll cycle observed.
type cycleStats struct {
	visible int
	parsed  int
	skipped int
	active  int
}

func (s cycleStats) allEnded() bool {
	return s.active == 0 && s.visible > 0 && s.parsed > 0
}

// Run opens the source and polls until every visible auction is finalized,
// the wall-clock budget is spent or ctx is cancelled. The snapshot is written
// after every cycle and once more on exit. The ledger belongs to this run and
// is returned in the result.
//
// An error is returned only when the source becomes unusable or the snapshot
// cannot be written; the result still carries the ledger gathered so far.
func (m *Monitor) Run(ctx context.Context) (Result, error) {
	res := Result{
		RunID:     m.newID(),
		Ledger:    auction.NewLedger(),
		StartedAt: m.now(),
	}
	log := logger.ForRun(res.RunID)

	log.Info("opening results page", "source", m.source.Type())
	if err := m.source.Open(ctx); err != nil {
		res.EndedAt = m.now()
		return res, fmt.Errorf("%w: open: %v", ErrPageUnavailable, err)
	}

	deadline := res.StartedAt.Add(m.opts.MaxDuration)

	for {
		if ctx.Err() != nil {
			log.Warn("monitoring interrupted, saving final snapshot")
			return m.finish(log, res, ReasonCancelled)
		}
		if m.opts.MaxDuration > 0 && m.now().After(deadline) {
			log.Warn("max execution time reached, force saving", "max_duration", m.opts.MaxDuration)
			return m.finish(log, res, ReasonDeadline)
		}

		res.Cycles++
		stats, err := m.cycle(ctx, log, res.Ledger)
		if err != nil {
			if ctx.Err() != nil {
				continue
			}
			res.EndedAt = m.now()
			return res, err
		}

		if stats.allEnded() {
			log.Info("auctions finished, performing final status pass", "cycle", res.Cycles)
			return m.finish(log, res, ReasonCompleted)
		}

		_ = m.sleep(ctx, m.opts.PollInterval)
	}
}

// cycle performs one capture, extract, decide and save pass.
func (m *Monitor) cycle(ctx context.Context, log *slog.Logger, ledger *auction.Ledger) (cycleStats, error) {
	var stats cycleStats

	result, err := m.read(ctx)
	if err != nil {
		return stats, err
	}

	if result.Visible == 0 {
		log.Warn("no domains detected, re-checking", "delay", m.opts.EmptyRetryDelay)
		if err := m.sleep(ctx, m.opts.EmptyRetryDelay); err != nil {
			return stats, err
		}
		if result, err = m.read(ctx); err != nil {
			return stats, err
		}
		if result.Visible == 0 {
			log.Warn("page still empty, re-applying view settings")
			if err := m.source.Reset(ctx); err != nil {
				log.Warn("view settings reset failed", "error", err)
			}
			return stats, nil
		}
	}

	if m.opts.ConfirmEnded {
		m.confirm(ctx, log, ledger, result.Rows)
	}

	stats.visible = result.Visible
	stats.parsed = len(result.Rows)
	stats.skipped = result.Skipped

	date := m.now().Format(auction.DateLayout)
	for _, obs := range result.Rows {
		prev, known := ledger.Get(obs.Domain)
		rec, d := m.policy.Apply(ledger, obs, date)

		if d.Frozen && !(known && prev.Finalized()) {
			log.Info("frozen timer detected, marking finalized", "domain", rec.Domain, "time", rec.RawTime, "stuck", rec.StuckCount)
		}
		if !rec.Finalized() {
			stats.active++
			log.Info("active", "domain", rec.Domain, "price", rec.Price, "time", rec.RawTime)
		}
	}

	size, err := m.save(ledger)
	if err != nil {
		return stats, err
	}

	log.Info("scan complete",
		"visible", stats.visible,
		"parsed", stats.parsed,
		"skipped", stats.skipped,
		"active", stats.active,
		"tracked", ledger.Len(),
		"snapshot", humanize.Bytes(uint64(size)))

	return stats, nil
}

func (m *Monitor) read(ctx context.Context) (extract.Result, error) {
	html, err := m.source.Capture(ctx)
	if err != nil {
		return extract.Result{}, fmt.Errorf("%w: capture: %v", ErrPageUnavailable, err)
	}
	result, err := m.extractor.Extract(html)
	if err != nil {
		return extract.Result{}, fmt.Errorf("%w: %v", ErrPageUnavailable, err)
	}
	return result, nil
}

// confirm re-reads the page once when any row looks ended only because its
// time text is missing, replacing those rows' time text with the re-read.
// Records already settled as Finalized are not worth a re-read.
func (m *Monitor) confirm(ctx context.Context, log *slog.Logger, ledger *auction.Ledger, rows []auction.Observation) {
	var pending []int
	for i, obs := range rows {
		if !auction.IsBorderline(obs.RawTime) {
			continue
		}
		if prev, ok := ledger.Get(obs.Domain); ok && prev.Finalized() && prev.Seen > 1 {
			continue
		}
		pending = append(pending, i)
	}
	if len(pending) == 0 {
		return
	}

	log.Debug("confirming borderline rows", "rows", len(pending), "delay", m.opts.ConfirmDelay)
	if err := m.sleep(ctx, m.opts.ConfirmDelay); err != nil {
		return
	}
	again, err := m.read(ctx)
	if err != nil {
		log.Debug("confirmation re-read failed, keeping first read", "error", err)
		return
	}

	reread := make(map[string]string, len(again.Rows))
	for _, obs := range again.Rows {
		reread[obs.Domain] = obs.RawTime
	}
	for _, i := range pending {
		if t, ok := reread[rows[i].Domain]; ok {
			rows[i].RawTime = t
		}
	}
}

// finish finalizes the whole ledger and writes the last snapshot.
func (m *Monitor) finish(log *slog.Logger, res Result, reason Reason) (Result, error) {
	res.Reason = reason
	changed := res.Ledger.FinalizeAll()

	var err error
	if res.Ledger.Len() > 0 {
		if _, err = m.save(res.Ledger); err != nil {
			log.Error("final snapshot failed", "error", err)
		}
	}

	res.EndedAt = m.now()
	log.Info("monitoring stopped",
		"reason", reason,
		"cycles", res.Cycles,
		"tracked", res.Ledger.Len(),
		"force_finalized", changed,
		"elapsed", res.Duration().Round(time.Second))
	return res, err
}

func (m *Monitor) save(ledger *auction.Ledger) (int64, error) {
	if ledger.Len() == 0 {
		return 0, nil
	}
	size, err := m.snapshot.Save(ledger.Records())
	if err != nil {
		return 0, fmt.Errorf("write snapshot: %w", err)
	}
	return size, nil
}

// sleepContext waits for d or until ctx is done.
func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
