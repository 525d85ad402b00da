// Package progressive drives the two-phase render of a thread: a fast
// sentiment pass that draws charts immediately, then a bias pass that
// updates them in place.
package progressive

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/Sumatoshi-tech/threadlens/pkg/chartspec"
	"github.com/Sumatoshi-tech/threadlens/pkg/observability"
	"github.com/Sumatoshi-tech/threadlens/pkg/thread"
)

// Charts managed by the controller.
const (
	ChartBar             = chartspec.KindBinBar
	ChartSunburst        = chartspec.KindSunburst
	ChartSentimentLegend = chartspec.KindSentimentLegend
	ChartBiasLegend      = chartspec.KindBiasLegend
	ChartSentimentStack  = chartspec.KindSentimentStack
)

// User-facing status text.
const (
	PendingMessage    = "Loading bias data..."
	BiasFailedNotice  = "Bias analysis unavailable"
	errorPrefixData   = "Error loading data"
	errorPrefixBurst  = "Error loading sunburst"
	drawFailedWarning = "chart draw failed"
)

// pendingCharts get a pending indicator after the sentiment pass.
var pendingCharts = []chartspec.Kind{ChartBar, ChartSunburst, ChartBiasLegend}

// State is the render state of one chart.
type State int

// Chart states.
const (
	StateEmpty State = iota
	StateSentimentOnly
	StateWithBias
)

func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateSentimentOnly:
		return "sentiment-only"
	case StateWithBias:
		return "with-bias"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Target is an opaque handle to a render region owned by a Sink.
type Target string

// Targets maps each chart to its render region. Charts without a target
// are not drawn.
type Targets map[chartspec.Kind]Target

// DefaultTargets names one region per chart after its kind.
func DefaultTargets() Targets {
	targets := make(Targets, len(chartspec.Kinds))
	for _, kind := range chartspec.Kinds {
		targets[kind] = Target(kind)
	}

	return targets
}

// Sink performs side-effecting draw calls. Draw creates a chart, Update
// replaces the spec of an existing chart in place.
type Sink interface {
	Draw(ctx context.Context, target Target, spec chartspec.Spec) error
	Update(ctx context.Context, target Target, spec chartspec.Spec) error
	ShowPending(target Target, msg string)
	ClearPending(target Target)
	ShowError(target Target, msg string)
	Notice(msg string)
}

// ChartState is the observable state of one chart.
type ChartState struct {
	State   State `json:"state"`
	Pending bool  `json:"pending"`
	Errored bool  `json:"errored"`
	Draws   int   `json:"draws"`
	Updates int   `json:"updates"`
}

// RenderState is a point-in-time copy of the controller state.
type RenderState struct {
	Charts   map[chartspec.Kind]ChartState `json:"charts"`
	Comments int                           `json:"comments"`
	Detached bool                          `json:"detached"`
}

// AllWithBias reports whether every chart reached StateWithBias.
func (r RenderState) AllWithBias() bool {
	for _, cs := range r.Charts {
		if cs.State != StateWithBias {
			return false
		}
	}

	return len(r.Charts) > 0
}

// Options configures a Controller.
type Options struct {
	// Title overrides the sunburst root title.
	Title  string
	Logger *slog.Logger
}

// Controller tracks per-chart render state across the two phases. Callbacks
// are serialized; one runs at a time.
type Controller struct {
	mu       sync.Mutex
	sink     Sink
	targets  Targets
	order    []chartspec.Kind
	charts   map[chartspec.Kind]*ChartState
	comments []thread.Comment
	detached bool
	opts     Options
	logger   *slog.Logger
}

// NewController creates a Controller drawing into sink.
func NewController(sink Sink, targets Targets, opts Options) *Controller {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	ctrl := &Controller{
		sink:    sink,
		targets: targets,
		charts:  make(map[chartspec.Kind]*ChartState, len(targets)),
		opts:    opts,
		logger:  observability.Component(logger, "progressive"),
	}

	for _, kind := range chartspec.Kinds {
		if _, ok := targets[kind]; ok {
			ctrl.order = append(ctrl.order, kind)
			ctrl.charts[kind] = &ChartState{}
		}
	}

	return ctrl
}

// OnSentimentReady handles the fast pass. Empty charts other than the bias
// legend are created. Charts that already carry bias are left alone.
func (c *Controller) OnSentimentReady(ctx context.Context, comments []thread.Comment) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.detached {
		return
	}

	// A late fast pass never replaces bias data that is already drawn.
	if c.anyWithBias() {
		c.markPending()
		c.logger.DebugContext(ctx, "sentiment phase ignored after bias", "comments", len(comments))

		return
	}

	c.comments = thread.Clone(comments)
	specs := c.build()

	for _, kind := range c.order {
		cs := c.charts[kind]
		if kind == ChartBiasLegend || cs.State != StateEmpty {
			continue
		}

		if err := c.sink.Draw(ctx, c.targets[kind], specs[kind]); err != nil {
			c.drawFailed(ctx, kind, err)

			continue
		}

		cs.Draws++
		cs.Errored = false
		cs.State = StateSentimentOnly
	}

	c.markPending()
	c.logger.DebugContext(ctx, "sentiment phase applied", "comments", len(comments))
}

func (c *Controller) anyWithBias() bool {
	for _, cs := range c.charts {
		if cs.State == StateWithBias {
			return true
		}
	}

	return false
}

func (c *Controller) markPending() {
	for _, kind := range pendingCharts {
		cs, ok := c.charts[kind]
		if !ok || cs.State == StateWithBias || cs.Pending || cs.Errored {
			continue
		}

		c.sink.ShowPending(c.targets[kind], PendingMessage)
		cs.Pending = true
	}
}

// OnBiasReady handles the bias pass. Every chart ends in StateWithBias:
// rendered charts are updated in place, empty ones are created.
func (c *Controller) OnBiasReady(ctx context.Context, comments []thread.Comment) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.detached {
		return
	}

	c.comments = thread.Clone(comments)
	specs := c.build()

	for _, kind := range c.order {
		cs := c.charts[kind]
		target := c.targets[kind]

		var err error

		if cs.State == StateEmpty {
			err = c.sink.Draw(ctx, target, specs[kind])
		} else {
			err = c.sink.Update(ctx, target, specs[kind])
		}

		if err != nil {
			c.drawFailed(ctx, kind, err)

			continue
		}

		if cs.State == StateEmpty {
			cs.Draws++
		} else {
			cs.Updates++
		}

		cs.Errored = false
		cs.State = StateWithBias

		if cs.Pending {
			c.sink.ClearPending(target)
			cs.Pending = false
		}
	}

	c.logger.DebugContext(ctx, "bias phase applied", "comments", len(comments))
}

// OnSentimentFailed shows an error on every chart that never rendered.
func (c *Controller) OnSentimentFailed(ctx context.Context, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.detached {
		return
	}

	c.logger.WarnContext(ctx, "sentiment phase failed", "error", err)

	for _, kind := range c.order {
		cs := c.charts[kind]
		if cs.State != StateEmpty {
			continue
		}

		c.showError(kind, err)
	}
}

// OnBiasFailed clears pending indicators with a non-fatal notice. Rendered
// charts stay as they are; the bias legend shows the error if it never
// rendered.
func (c *Controller) OnBiasFailed(ctx context.Context, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.detached {
		return
	}

	c.logger.WarnContext(ctx, "bias phase failed", "error", err)
	c.sink.Notice(fmt.Sprintf("%s: %v", BiasFailedNotice, err))

	for _, kind := range c.order {
		cs := c.charts[kind]

		if cs.Pending {
			c.sink.ClearPending(c.targets[kind])
			cs.Pending = false
		}

		if kind == ChartBiasLegend && cs.State == StateEmpty && !cs.Errored {
			c.showError(kind, err)
		}
	}
}

// Notice forwards a status message to the sink unless detached.
func (c *Controller) Notice(msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.detached {
		return
	}

	c.sink.Notice(msg)
}

// Detach turns every later callback into a no-op.
func (c *Controller) Detach() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.detached = true
}

// Comments returns a copy of the list the charts were last built from.
func (c *Controller) Comments() []thread.Comment {
	c.mu.Lock()
	defer c.mu.Unlock()

	return thread.Clone(c.comments)
}

// Snapshot returns the current render state.
func (c *Controller) Snapshot() RenderState {
	c.mu.Lock()
	defer c.mu.Unlock()

	charts := make(map[chartspec.Kind]ChartState, len(c.charts))
	for kind, cs := range c.charts {
		charts[kind] = *cs
	}

	return RenderState{
		Charts:   charts,
		Comments: len(c.comments),
		Detached: c.detached,
	}
}

// Charts lists managed charts in page order.
func (c *Controller) Charts() []chartspec.Kind {
	return slices.Clone(c.order)
}

func (c *Controller) build() chartspec.Set {
	return chartspec.Build(c.comments, chartspec.BuildOptions{Title: c.opts.Title, Logger: c.logger})
}

func (c *Controller) drawFailed(ctx context.Context, kind chartspec.Kind, err error) {
	c.logger.WarnContext(ctx, drawFailedWarning, "chart", string(kind), "error", err)

	// A rendered chart keeps its content; only never-drawn charts show text.
	if c.charts[kind].State == StateEmpty {
		c.showError(kind, err)

		return
	}

	c.sink.Notice(ErrorMessage(kind, err))
}

func (c *Controller) showError(kind chartspec.Kind, err error) {
	cs := c.charts[kind]

	if cs.Pending {
		c.sink.ClearPending(c.targets[kind])
		cs.Pending = false
	}

	c.sink.ShowError(c.targets[kind], ErrorMessage(kind, err))
	cs.Errored = true
}

// ErrorMessage formats the text that replaces a chart region on failure.
func ErrorMessage(kind chartspec.Kind, err error) string {
	prefix := errorPrefixData
	if kind == ChartSunburst {
		prefix = errorPrefixBurst
	}

	return fmt.Sprintf("%s: %v", prefix, err)
}
