// Package pipeline runs the idempotent generation loop: key each course,
// skip what the ledger already holds, render the rest and record successes.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"course-promo/internal/domain"
	"course-promo/internal/ledger"
	"course-promo/internal/logging"
)

// Classifier maps a course to its benefit tier.
type Classifier interface {
	Classify(domain.CourseRecord) domain.BenefitClassification
}

// Renderer produces one artifact kind. It may return zero paths.
type Renderer interface {
	Kind() string
	Render(ctx context.Context, c domain.CourseRecord, cls domain.BenefitClassification) ([]string, error)
}

type Status string

const (
	StatusCompleted Status = "completed"
	StatusSkipped   Status = "skipped"
	StatusFailed    Status = "failed"
)

// Outcome is the result for one input course.
type Outcome struct {
	Key      string
	Title    string
	Status   Status
	Reason   SkipReason
	Files    map[string][]string
	Renderer string // failing renderer, if any
	Err      error
}

// Result summarizes a run. Outcomes follow input order; courses after a
// cancellation have none.
type Result struct {
	RunID    string
	New      int
	Skipped  int
	Failed   int
	Outcomes []Outcome
}

type RunOptions struct {
	// Force clears the ledger before the run so every course is new.
	Force bool
}

type Orchestrator struct {
	store      ledger.Store
	classifier Classifier
	renderers  []Renderer
	log        *zap.Logger
	now        func() time.Time
	newRunID   func() string
}

type Option func(*Orchestrator)

func WithLogger(log *zap.Logger) Option {
	return func(o *Orchestrator) {
		if log != nil {
			o.log = log
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) {
		if now != nil {
			o.now = now
		}
	}
}

// WithRunID fixes the run id recorded on new ledger entries.
func WithRunID(id string) Option {
	return func(o *Orchestrator) {
		o.newRunID = func() string { return id }
	}
}

// New wires an orchestrator. Renderers run in the given order.
func New(store ledger.Store, classifier Classifier, renderers []Renderer, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		store:      store,
		classifier: classifier,
		renderers:  renderers,
		log:        zap.NewNop(),
		now:        time.Now,
		newRunID:   func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Run processes courses sequentially. Render failures are isolated to their
// course; the returned error is reserved for ledger I/O and cancellation.
// The ledger is written once at the end, also when ctx is cancelled midway.
func (o *Orchestrator) Run(ctx context.Context, courses []domain.CourseRecord, opts RunOptions) (Result, error) {
	res := Result{RunID: o.newRunID()}
	log := o.log.With(zap.String(logging.FieldRunID, res.RunID))

	if opts.Force {
		if err := o.store.Reset(ctx); err != nil {
			return res, errors.Wrap(err, "reset ledger")
		}
		log.Info("ledger cleared, regenerating everything")
	}

	seen, err := o.store.Load(ctx)
	if err != nil {
		return res, errors.Wrap(err, "load ledger")
	}
	if seen == nil {
		seen = ledger.Ledger{}
	}

	steps := Plan(courses, seen)
	log.Info("run planned",
		zap.Int(logging.FieldCount, len(steps)),
		zap.Int("pending", Pending(steps)),
		zap.Int("known", len(seen)),
	)

	var runErr error
	for _, st := range steps {
		if err := ctx.Err(); err != nil {
			runErr = err
			break
		}
		out := o.process(ctx, log, st, seen, res.RunID)
		switch out.Status {
		case StatusCompleted:
			res.New++
		case StatusSkipped:
			res.Skipped++
		case StatusFailed:
			res.Failed++
		}
		res.Outcomes = append(res.Outcomes, out)
	}

	// a cancelled run still records what it finished
	saveCtx := ctx
	if runErr != nil {
		saveCtx = context.WithoutCancel(ctx)
	}
	if err := o.store.Save(saveCtx, seen); err != nil {
		return res, errors.CombineErrors(errors.Wrap(err, "save ledger"), runErr)
	}

	log.Info("run finished",
		zap.Int("new", res.New),
		zap.Int("skipped", res.Skipped),
		zap.Int("failed", res.Failed),
	)
	return res, runErr
}

func (o *Orchestrator) process(ctx context.Context, log *zap.Logger, st Step, seen ledger.Ledger, runID string) Outcome {
	out := Outcome{Key: st.Key, Title: st.Course.Title}
	clog := log.With(zap.String(logging.FieldKey, st.Key), zap.String(logging.FieldTitle, st.Course.Title))

	if st.Skip != "" {
		out.Status = StatusSkipped
		out.Reason = st.Skip
		clog.Debug("skipping course", zap.String("reason", string(st.Skip)))
		return out
	}

	files, renderer, err := o.generate(ctx, st.Course)
	if err != nil {
		out.Status = StatusFailed
		out.Renderer = renderer
		out.Err = err
		clog.Error("course generation failed", zap.String(logging.FieldRenderer, renderer), zap.Error(err))
		return out
	}

	seen.Add(ledger.Entry{
		Key:         st.Key,
		Title:       st.Course.Title,
		Period:      st.Course.Period,
		GeneratedAt: ledger.At(o.now()),
		Files:       files,
		RunID:       runID,
	})
	out.Status = StatusCompleted
	out.Files = files
	clog.Info("course generated", zap.Int(logging.FieldCount, countFiles(files)))
	return out
}

// generate classifies once and runs every renderer. A panic is converted to
// an error so one course cannot take the batch down.
func (o *Orchestrator) generate(ctx context.Context, c domain.CourseRecord) (files map[string][]string, renderer string, err error) {
	defer func() {
		if r := recover(); r != nil {
			files = nil
			err = errors.Newf("panic: %s", fmt.Sprint(r))
		}
	}()

	cls := o.classifier.Classify(c)
	files = make(map[string][]string, len(o.renderers))
	for _, r := range o.renderers {
		renderer = r.Kind()
		paths, rerr := r.Render(ctx, c, cls)
		if rerr != nil {
			return nil, renderer, errors.Wrapf(rerr, "render %s", renderer)
		}
		files[renderer] = paths
	}
	return files, "", nil
}

func countFiles(files map[string][]string) int {
	n := 0
	for _, paths := range files {
		n += len(paths)
	}
	return n
}
