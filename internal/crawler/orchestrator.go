package crawler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"runtime/debug"
	"time"
)

// Unit is one piece of crawl work.
type Unit interface {
	// UnitKey is the primary visited key. It may be empty for listings
	// without a known identifier.
	UnitKey() string
	// UnitURL is the secondary visited key, or empty.
	UnitURL() string
}

// Tracker records which units are done.
type Tracker interface {
	IsVisited(id, url string) bool
	MarkVisited(id, url string) error
}

// EmptyRecorder is implemented by trackers that keep confirmed empty units
// apart from saved ones.
type EmptyRecorder interface {
	MarkEmpty(key string) error
	IsEmpty(key string) bool
}

// Lifecycle is the acquire/release part of the shared fetch session.
type Lifecycle interface {
	Acquire(ctx context.Context) error
	Release() error
}

// Outcome is what a WorkFunc reports for a unit that did not fail.
type Outcome struct {
	// Saved means the unit's artifact is durably stored.
	Saved bool
	// Empty means the unit was confirmed to hold nothing.
	Empty bool
	// Key overrides the unit's key when work resolved a better one.
	Key      string
	Listings int
	Pages    int
	Artifact string
	Hash     string
}

// WorkFunc processes one unit.
type WorkFunc[U Unit] func(ctx context.Context, unit U) (Outcome, error)

// Attempt is one unit of work as recorded by a Recorder.
type Attempt struct {
	Phase    string
	Key      string
	URL      string
	Outcome  string
	Category string
	Error    string
	Listings int
	Pages    int
	Artifact string
	Hash     string
	Started  time.Time
	Duration time.Duration
}

// Attempt outcomes.
const (
	OutcomeSaved  = "saved"
	OutcomeEmpty  = "empty"
	OutcomeFailed = "failed"
)

// Recorder receives every attempt. Recording failures are logged and do
// not affect the run.
type Recorder interface {
	RecordAttempt(ctx context.Context, a Attempt) error
}

// RecorderFunc adapts a function to Recorder.
type RecorderFunc func(ctx context.Context, a Attempt) error

// RecordAttempt implements Recorder.
func (f RecorderFunc) RecordAttempt(ctx context.Context, a Attempt) error {
	return f(ctx, a)
}

// Orchestrator runs a WorkFunc over units.
type Orchestrator[U Unit] struct {
	phase          string
	tracker        Tracker
	session        Lifecycle
	pacer          *Pacer
	recorder       Recorder
	classify       func(error) string
	maxConsecutive int
	limit          int
	shuffle        func(units []U)
	now            func() time.Time
	logger         *slog.Logger
}

// Option configures an Orchestrator.
type Option[U Unit] func(*Orchestrator[U])

// WithSession sets the session acquired for the run and released after it.
func WithSession[U Unit](s Lifecycle) Option[U] {
	return func(o *Orchestrator[U]) {
		o.session = s
	}
}

// WithPacer sets the pacer used between units.
func WithPacer[U Unit](p *Pacer) Option[U] {
	return func(o *Orchestrator[U]) {
		o.pacer = p
	}
}

// WithRecorder sets the attempt recorder.
func WithRecorder[U Unit](r Recorder) Option[U] {
	return func(o *Orchestrator[U]) {
		o.recorder = r
	}
}

// WithClassifier replaces Classify.
func WithClassifier[U Unit](fn func(error) string) Option[U] {
	return func(o *Orchestrator[U]) {
		o.classify = fn
	}
}

// WithMaxConsecutiveFailures stops the run after n failures in a row.
// Zero disables the limit.
func WithMaxConsecutiveFailures[U Unit](n int) Option[U] {
	return func(o *Orchestrator[U]) {
		o.maxConsecutive = n
	}
}

// WithLimit processes at most n pending units per run. Zero means all.
func WithLimit[U Unit](n int) Option[U] {
	return func(o *Orchestrator[U]) {
		o.limit = n
	}
}

// WithShuffle replaces the uniform shuffle of pending units.
func WithShuffle[U Unit](fn func(units []U)) Option[U] {
	return func(o *Orchestrator[U]) {
		o.shuffle = fn
	}
}

// WithClock replaces time.Now.
func WithClock[U Unit](now func() time.Time) Option[U] {
	return func(o *Orchestrator[U]) {
		o.now = now
	}
}

// WithLogger sets the logger.
func WithLogger[U Unit](logger *slog.Logger) Option[U] {
	return func(o *Orchestrator[U]) {
		o.logger = logger
	}
}

// NewOrchestrator creates an Orchestrator for phase.
func NewOrchestrator[U Unit](phase string, tracker Tracker, opts ...Option[U]) *Orchestrator[U] {
	o := &Orchestrator[U]{
		phase:    phase,
		tracker:  tracker,
		classify: Classify,
		shuffle: func(units []U) {
			rand.Shuffle(len(units), func(i, j int) { units[i], units[j] = units[j], units[i] })
		},
		now: time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	return o
}

// Run processes every unit not yet visited.
//
// The returned Summary is always populated. The error is non-nil only when
// the run stopped early: the session could not be acquired, ctx was
// cancelled, or the consecutive failure limit was reached. Individual unit
// failures are counted in the Summary instead.
func (o *Orchestrator[U]) Run(ctx context.Context, units []U, work WorkFunc[U]) (sum Summary, err error) {
	sum = Summary{
		Phase:    o.phase,
		Total:    len(units),
		Failures: make(map[string]int),
		Started:  o.now(),
	}
	defer func() {
		sum.Finished = o.now()
	}()

	pending := o.pending(units, &sum)
	o.logger.Info("starting run",
		"phase", o.phase,
		"total", sum.Total,
		"already_visited", sum.Skipped,
		"water", sum.SkippedEmpty,
		"pending", len(pending),
	)
	if len(pending) == 0 {
		return sum, nil
	}
	o.shuffle(pending)
	if o.limit > 0 && len(pending) > o.limit {
		pending = pending[:o.limit]
	}

	if o.session != nil {
		if err := o.session.Acquire(ctx); err != nil {
			sum.StopReason = "session"
			return sum, fmt.Errorf("failed to acquire session: %w", err)
		}
		defer func() {
			if rerr := o.session.Release(); rerr != nil {
				o.logger.Warn("failed to release session", "error", rerr)
			}
		}()
	}

	consecutive := 0
	for i, unit := range pending {
		if cerr := ctx.Err(); cerr != nil {
			return o.interrupted(sum, cerr)
		}
		if i > 0 && o.pacer != nil {
			d, perr := o.pacer.Wait(ctx)
			if perr != nil {
				return o.interrupted(sum, perr)
			}
			o.logger.Debug("paced", "delay", d)
		}

		o.logProgress(i, len(pending), sum)

		started := o.now()
		outcome, werr := o.do(ctx, work, unit)
		if werr == nil && !outcome.Saved && !outcome.Empty {
			werr = ErrNotSaved
		}
		if werr != nil && ctx.Err() != nil && errors.Is(werr, ctx.Err()) {
			return o.interrupted(sum, ctx.Err())
		}

		sum.Processed++
		attempt := Attempt{
			Phase:    o.phase,
			Key:      unit.UnitKey(),
			URL:      unit.UnitURL(),
			Listings: outcome.Listings,
			Pages:    outcome.Pages,
			Started:  started,
		}
		if outcome.Key != "" {
			attempt.Key = outcome.Key
		}

		if werr == nil {
			werr = o.mark(attempt.Key, attempt.URL, outcome.Empty)
		}

		if werr != nil {
			consecutive++
			category := o.classify(werr)
			sum.Failed++
			sum.Failures[category]++
			attempt.Outcome, attempt.Category, attempt.Error = OutcomeFailed, category, werr.Error()
			o.logger.Warn("unit failed",
				"phase", o.phase,
				"key", attempt.Key,
				"url", attempt.URL,
				"category", category,
				"error", werr,
			)
		} else {
			consecutive = 0
			if outcome.Empty {
				sum.Empty++
				attempt.Outcome = OutcomeEmpty
			} else {
				sum.Saved++
				sum.Listings += outcome.Listings
				attempt.Outcome = OutcomeSaved
				attempt.Artifact, attempt.Hash = outcome.Artifact, outcome.Hash
			}
			o.logger.Info("unit done",
				"phase", o.phase,
				"key", attempt.Key,
				"outcome", attempt.Outcome,
				"listings", outcome.Listings,
			)
		}

		attempt.Duration = o.now().Sub(started)
		o.record(ctx, attempt)

		if o.maxConsecutive > 0 && consecutive >= o.maxConsecutive {
			sum.StopReason = "failures"
			o.logger.Error("stopping run after consecutive failures",
				"phase", o.phase,
				"failures", consecutive,
			)
			return sum, fmt.Errorf("%w: %d in a row", ErrTooManyFailures, consecutive)
		}
	}

	o.logger.Info("run complete",
		"phase", o.phase,
		"processed", sum.Processed,
		"saved", sum.Saved,
		"empty", sum.Empty,
		"failed", sum.Failed,
		"skipped", sum.Skipped,
	)
	return sum, nil
}

// do runs work on unit, turning a panic into a unit failure.
func (o *Orchestrator[U]) do(ctx context.Context, work WorkFunc[U], unit U) (out Outcome, err error) {
	defer func() {
		if r := recover(); r != nil {
			o.logger.Error("unit work panicked",
				"phase", o.phase,
				"key", unit.UnitKey(),
				"panic", r,
				"stack", string(debug.Stack()),
			)
			out, err = Outcome{}, fmt.Errorf("%w: %v", ErrWorkPanic, r)
		}
	}()
	return work(ctx, unit)
}

// pending drops units already visited and counts them.
func (o *Orchestrator[U]) pending(units []U, sum *Summary) []U {
	empties, _ := o.tracker.(EmptyRecorder)

	out := make([]U, 0, len(units))
	for _, u := range units {
		if o.tracker.IsVisited(u.UnitKey(), u.UnitURL()) {
			sum.Skipped++
			if empties != nil && empties.IsEmpty(u.UnitKey()) {
				sum.SkippedEmpty++
			}
			continue
		}
		out = append(out, u)
	}
	return out
}

// mark records a finished unit with the tracker.
func (o *Orchestrator[U]) mark(key, url string, empty bool) error {
	if empty {
		if er, ok := o.tracker.(EmptyRecorder); ok {
			return er.MarkEmpty(key)
		}
	}
	return o.tracker.MarkVisited(key, url)
}

func (o *Orchestrator[U]) record(ctx context.Context, a Attempt) {
	if o.recorder == nil {
		return
	}
	// The journal entry is written even when ctx was cancelled mid-unit.
	if err := o.recorder.RecordAttempt(context.WithoutCancel(ctx), a); err != nil {
		o.logger.Warn("failed to record attempt", "key", a.Key, "error", err)
	}
}

func (o *Orchestrator[U]) interrupted(sum Summary, err error) (Summary, error) {
	sum.Interrupted = true
	sum.StopReason = "interrupted"
	o.logger.Warn("run interrupted",
		"phase", o.phase,
		"processed", sum.Processed,
		"remaining", sum.Remaining(),
	)
	return sum, err
}

func (o *Orchestrator[U]) logProgress(i, total int, sum Summary) {
	elapsed := o.now().Sub(sum.Started)
	attrs := []any{
		"phase", o.phase,
		"unit", i + 1,
		"of", total,
		"elapsed", elapsed.Round(time.Second),
	}
	if sum.Processed > 0 {
		attrs = append(attrs, "eta", estimateRemaining(elapsed, sum.Processed, total-i).Round(time.Second))
	}
	o.logger.Info("progress", attrs...)
}
