// Package analysis wires the backend fetcher, the progressive controller and
// the render sink into one run per thread, and replays captured snapshots
// through the same path.
package analysis

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/Sumatoshi-tech/threadlens/pkg/observability"
	"github.com/Sumatoshi-tech/threadlens/pkg/persist"
	"github.com/Sumatoshi-tech/threadlens/pkg/progressive"
	"github.com/Sumatoshi-tech/threadlens/pkg/render"
	"github.com/Sumatoshi-tech/threadlens/pkg/thread"
)

// ErrBiasNotCaptured marks a replayed snapshot whose bias phase never
// completed.
var ErrBiasNotCaptured = errors.New("bias data was not captured")

// Result is the outcome of one run or replay.
type Result struct {
	// Snapshot is nil when the sentiment phase failed.
	Snapshot *persist.Snapshot
	Sink     *render.EChartsSink
	State    progressive.RenderState
}

// Comments returns the most complete comment list, or nil.
func (r *Result) Comments() []thread.Comment {
	if r.Snapshot == nil {
		return nil
	}

	return r.Snapshot.Latest()
}

// Runner runs threads end to end.
type Runner struct {
	Fetcher        progressive.Fetcher
	FallbackToFull bool
	Theme          render.Theme
	Style          render.Style
	Title          string
	Tracer         trace.Tracer
	Logger         *slog.Logger
	// Now stamps snapshots; nil means time.Now.
	Now func() time.Time
}

func (r *Runner) logger() *slog.Logger {
	if r.Logger == nil {
		return observability.Component(slog.Default(), "analysis")
	}

	return observability.Component(r.Logger, "analysis")
}

func (r *Runner) style() render.Style {
	if r.Style == (render.Style{}) {
		return render.DefaultStyle()
	}

	return r.Style
}

func (r *Runner) newController() (*render.EChartsSink, *progressive.Controller) {
	targets := progressive.DefaultTargets()
	sink := render.NewEChartsSink(targets, r.Theme, r.style())
	ctrl := progressive.NewController(sink, targets, progressive.Options{Title: r.Title, Logger: r.Logger})

	return sink, ctrl
}

// Run analyzes threadURL. A bias phase failure is reported through the
// returned error (wrapping progressive.ErrBiasPhase) alongside a usable
// result; a sentiment phase failure leaves Result.Snapshot nil.
func (r *Runner) Run(ctx context.Context, threadURL string) (*Result, error) {
	sink, ctrl := r.newController()
	capture := &capturingFetcher{inner: r.Fetcher}

	pipeline := &progressive.Pipeline{
		Fetcher:        capture,
		Controller:     ctrl,
		FallbackToFull: r.FallbackToFull,
		Tracer:         r.Tracer,
		Logger:         r.logger(),
	}

	sess := progressive.Start(ctx, pipeline, threadURL)
	defer sess.Close()

	comments, err := sess.Wait()

	result := &Result{Sink: sink, State: ctrl.Snapshot()}
	if comments == nil && err != nil {
		return result, err
	}

	now := time.Now
	if r.Now != nil {
		now = r.Now
	}

	snap := &persist.Snapshot{
		Version:    persist.SnapshotVersion,
		URL:        thread.Detect(threadURL).URL,
		Title:      r.Title,
		CapturedAt: now().UTC(),
		Sentiment:  capture.sentimentResult(),
		Notices:    sink.Notices(),
	}

	if err == nil {
		snap.Bias = ctrl.Comments()
	}

	if snap.Sentiment == nil {
		snap.Sentiment = thread.Clone(comments)
	}

	result.Snapshot = snap

	return result, err
}

// Replay renders a captured snapshot through a fresh controller.
func (r *Runner) Replay(ctx context.Context, snap *persist.Snapshot) *Result {
	sink, ctrl := r.newController()

	for _, n := range snap.Notices {
		ctrl.Notice(n)
	}

	ctrl.OnSentimentReady(ctx, snap.Sentiment)

	if snap.HasBias() {
		ctrl.OnBiasReady(ctx, snap.Bias)
	} else {
		ctrl.OnBiasFailed(ctx, ErrBiasNotCaptured)
	}

	return &Result{Snapshot: snap, Sink: sink, State: ctrl.Snapshot()}
}

// capturingFetcher records the sentiment phase result so snapshots can keep
// both phases.
type capturingFetcher struct {
	inner progressive.Fetcher

	mu        sync.Mutex
	sentiment []thread.Comment
}

func (c *capturingFetcher) Sentiment(ctx context.Context, threadURL string) ([]thread.Comment, error) {
	comments, err := c.inner.Sentiment(ctx, threadURL)
	if err == nil {
		c.record(comments)
	}

	return comments, err
}

func (c *capturingFetcher) Bias(ctx context.Context, comments []thread.Comment) ([]thread.Comment, error) {
	return c.inner.Bias(ctx, comments)
}

func (c *capturingFetcher) Full(ctx context.Context, threadURL string) ([]thread.Comment, error) {
	comments, err := c.inner.Full(ctx, threadURL)
	if err == nil {
		c.record(comments)
	}

	return comments, err
}

func (c *capturingFetcher) record(comments []thread.Comment) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.sentiment = thread.Clone(comments)
}

func (c *capturingFetcher) sentimentResult() []thread.Comment {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.sentiment
}
