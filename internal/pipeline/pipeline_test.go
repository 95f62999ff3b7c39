package pipeline

import (
	"context"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"gocloud.dev/blob/memblob"

	"course-promo/internal/benefits"
	"course-promo/internal/domain"
	"course-promo/internal/ledger"
)

var clock = func() time.Time { return time.Date(2026, 2, 10, 9, 0, 0, 0, time.UTC) }

type spyRenderer struct {
	kind   string
	calls  []string
	failOn string
	panics string
	paths  func(c domain.CourseRecord) []string
	hook   func()
}

func (s *spyRenderer) Kind() string { return s.kind }

func (s *spyRenderer) Render(_ context.Context, c domain.CourseRecord, cls domain.BenefitClassification) ([]string, error) {
	s.calls = append(s.calls, c.Title)
	if s.hook != nil {
		s.hook()
	}
	if c.Title == s.panics {
		panic("boom")
	}
	if c.Title == s.failOn {
		return nil, errors.New("render failed")
	}
	if s.paths != nil {
		return s.paths(c), nil
	}
	return []string{c.Title + "_" + s.kind + ".txt"}, nil
}

func newStore(t *testing.T) *ledger.BlobStore {
	t.Helper()
	bucket := memblob.OpenBucket(nil)
	t.Cleanup(func() { _ = bucket.Close() })
	return ledger.NewBlobStore(bucket, ledger.DocumentName)
}

func course(id, title string) domain.CourseRecord {
	return domain.CourseRecord{CourseID: id, SessionNumber: "1", StartDate: "20260301", EndDate: "20260601", Title: title, TotalHours: 200}
}

func newOrchestrator(store ledger.Store, rs ...Renderer) *Orchestrator {
	return New(store, benefits.NewClassifier(domain.RegionNonCapital), rs, WithClock(clock), WithRunID("run-1"))
}

func TestPlan(t *testing.T) {
	seen := ledger.Ledger{}
	seen.Add(ledger.Entry{Key: "A_1_20260301_20260601"})

	steps := Plan([]domain.CourseRecord{course("A", "a"), course("B", "b"), course("B", "b again")}, seen)
	require.Len(t, steps, 3)
	assert.Equal(t, SkipProcessed, steps[0].Skip)
	assert.Equal(t, SkipReason(""), steps[1].Skip)
	assert.Equal(t, SkipDuplicate, steps[2].Skip)
	assert.Equal(t, 1, Pending(steps))
}

func TestRunIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	r := &spyRenderer{kind: "blog"}
	o := newOrchestrator(store, r)
	courses := []domain.CourseRecord{course("A", "a"), course("B", "b")}

	res, err := o.Run(ctx, courses, RunOptions{})
	require.NoError(t, err)
	assert.Equal(t, 2, res.New)
	assert.Equal(t, 0, res.Skipped)

	res, err = o.Run(ctx, courses, RunOptions{})
	require.NoError(t, err)
	assert.Equal(t, 0, res.New)
	assert.Equal(t, 2, res.Skipped)
	assert.Equal(t, []string{"a", "b"}, r.calls)
	for _, out := range res.Outcomes {
		assert.Equal(t, SkipProcessed, out.Reason)
	}
}

func TestRunIsolatesFailures(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	core, logs := observer.New(zap.ErrorLevel)
	r := &spyRenderer{kind: "blog", failOn: "b"}
	o := New(store, benefits.NewClassifier(domain.RegionNonCapital), []Renderer{r}, WithLogger(zap.New(core)))

	courses := []domain.CourseRecord{course("A", "a"), course("B", "b"), course("C", "c")}
	res, err := o.Run(ctx, courses, RunOptions{})
	require.NoError(t, err)
	assert.Equal(t, 2, res.New)
	assert.Equal(t, 1, res.Failed)
	assert.Equal(t, StatusFailed, res.Outcomes[1].Status)
	assert.Equal(t, "blog", res.Outcomes[1].Renderer)
	assert.Error(t, res.Outcomes[1].Err)

	saved, err := store.Load(ctx)
	require.NoError(t, err)
	assert.True(t, saved.Has("A_1_20260301_20260601"))
	assert.False(t, saved.Has("B_1_20260301_20260601"))
	assert.True(t, saved.Has("C_1_20260301_20260601"))

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "B_1_20260301_20260601", fields["key"])
	assert.Equal(t, "b", fields["title"])
	assert.Equal(t, "blog", fields["renderer"])

	// the failed course is retried on the next run
	r.failOn = ""
	res, err = o.Run(ctx, courses, RunOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, res.New)
	assert.Equal(t, 2, res.Skipped)
}

func TestRunRecoversRendererPanic(t *testing.T) {
	store := newStore(t)
	first := &spyRenderer{kind: "card_news"}
	second := &spyRenderer{kind: "blog", panics: "a"}
	o := newOrchestrator(store, first, second)

	res, err := o.Run(context.Background(), []domain.CourseRecord{course("A", "a"), course("B", "b")}, RunOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, res.New)
	assert.Equal(t, 1, res.Failed)
	assert.Equal(t, "blog", res.Outcomes[0].Renderer)
	assert.Contains(t, res.Outcomes[0].Err.Error(), "boom")
}

func TestRunForceRegenerates(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	r := &spyRenderer{kind: "blog"}
	o := newOrchestrator(store, r)
	courses := []domain.CourseRecord{course("A", "a")}

	_, err := o.Run(ctx, courses, RunOptions{})
	require.NoError(t, err)

	res, err := o.Run(ctx, courses, RunOptions{Force: true})
	require.NoError(t, err)
	assert.Equal(t, 1, res.New)
	assert.Equal(t, []string{"a", "a"}, r.calls)
}

func TestRunSkipsDuplicatesInBatch(t *testing.T) {
	r := &spyRenderer{kind: "blog"}
	o := newOrchestrator(newStore(t), r)

	res, err := o.Run(context.Background(), []domain.CourseRecord{course("A", "a"), course("A", "a")}, RunOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, res.New)
	assert.Equal(t, 1, res.Skipped)
	assert.Equal(t, SkipDuplicate, res.Outcomes[1].Reason)
	assert.Len(t, r.calls, 1)
}

func TestRunEndToEndLedgerEntry(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	blog := &spyRenderer{kind: "blog", paths: func(c domain.CourseRecord) []string {
		return []string{"out/" + c.Title + "_blog.md", "out/" + c.Title + "_blog_naver.html"}
	}}
	empty := &spyRenderer{kind: "card_news", paths: func(domain.CourseRecord) []string { return nil }}
	o := newOrchestrator(store, empty, blog)

	c := domain.CourseRecord{
		CourseID: "C1", SessionNumber: "1", StartDate: "20260301", EndDate: "20260601",
		Title: "AI 영상", Period: "2026.03.01 ~ 2026.06.01", TotalHours: 400,
	}
	res, err := o.Run(ctx, []domain.CourseRecord{c}, RunOptions{})
	require.NoError(t, err)
	assert.Equal(t, "run-1", res.RunID)
	require.Len(t, res.Outcomes, 1)
	assert.Equal(t, "C1_1_20260301_20260601", res.Outcomes[0].Key)

	saved, err := store.Load(ctx)
	require.NoError(t, err)
	e, ok := saved["C1_1_20260301_20260601"]
	require.True(t, ok)
	assert.Equal(t, "AI 영상", e.Title)
	assert.Equal(t, "2026.03.01 ~ 2026.06.01", e.Period)
	assert.True(t, e.GeneratedAt.Equal(clock()))
	assert.Equal(t, "run-1", e.RunID)
	assert.Equal(t, []string{"out/AI 영상_blog.md", "out/AI 영상_blog_naver.html"}, e.Files["blog"])
	files, present := e.Files["card_news"]
	assert.True(t, present)
	assert.Nil(t, files)
}

func TestRunSavesOnCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	store := newStore(t)
	r := &spyRenderer{kind: "blog", hook: cancel}
	o := newOrchestrator(store, r)

	res, err := o.Run(ctx, []domain.CourseRecord{course("A", "a"), course("B", "b")}, RunOptions{})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, res.New)
	assert.Len(t, res.Outcomes, 1)

	saved, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.True(t, saved.Has("A_1_20260301_20260601"))
	assert.False(t, saved.Has("B_1_20260301_20260601"))
}

type brokenStore struct {
	loadErr, saveErr error
}

func (b brokenStore) Load(context.Context) (ledger.Ledger, error) { return nil, b.loadErr }
func (b brokenStore) Save(context.Context, ledger.Ledger) error  { return b.saveErr }
func (b brokenStore) Reset(context.Context) error                { return nil }

func TestRunLedgerFailures(t *testing.T) {
	r := &spyRenderer{kind: "blog"}
	_, err := newOrchestrator(brokenStore{loadErr: errors.New("disk gone")}, r).Run(context.Background(), []domain.CourseRecord{course("A", "a")}, RunOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load ledger")
	assert.Empty(t, r.calls)

	_, err = newOrchestrator(brokenStore{saveErr: errors.New("read-only")}, r).Run(context.Background(), []domain.CourseRecord{course("A", "a")}, RunOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "save ledger")
}
