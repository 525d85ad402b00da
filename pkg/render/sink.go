package render

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"sync"

	"github.com/Sumatoshi-tech/threadlens/pkg/chartspec"
	"github.com/Sumatoshi-tech/threadlens/pkg/progressive"
)

// Sink errors.
var (
	ErrUnknownTarget = errors.New("unknown render target")
	ErrNotDrawn      = errors.New("chart not drawn")
)

const hintTitle = "Reading this chart"

var sectionSubtitles = map[chartspec.Kind]string{
	chartspec.KindBinBar:          "Comments per sentiment bin, colored by average sentiment",
	chartspec.KindSunburst:        "Reply structure sized by sentiment, highest bias outlined",
	chartspec.KindSentimentLegend: "Thread average against the original post",
	chartspec.KindBiasLegend:      "Per-label bias on a log scale",
	chartspec.KindSentimentStack:  "Negative, neutral and positive share per bin",
}

type slot struct {
	kind     chartspec.Kind
	spec     chartspec.Spec
	chart    Renderable
	revision int
	pending  string
	err      string
}

// EChartsSink keeps the latest drawn chart per target and composes them into
// a page on demand. It is safe for concurrent use.
type EChartsSink struct {
	mu      sync.Mutex
	conv    Converter
	slots   map[progressive.Target]*slot
	order   []progressive.Target
	notices []string
}

// NewEChartsSink creates a sink with one slot per target.
func NewEChartsSink(targets progressive.Targets, theme Theme, style Style) *EChartsSink {
	s := &EChartsSink{
		conv:  Converter{Theme: theme, Style: style},
		slots: make(map[progressive.Target]*slot, len(targets)),
	}

	for _, kind := range chartspec.Kinds {
		target, ok := targets[kind]
		if !ok {
			continue
		}

		s.slots[target] = &slot{kind: kind}
		s.order = append(s.order, target)
	}

	return s
}

// Draw creates the chart for target, replacing anything drawn before.
func (s *EChartsSink) Draw(ctx context.Context, target progressive.Target, spec chartspec.Spec) error {
	return s.put(ctx, target, spec, false)
}

// Update replaces the spec of a drawn chart in place.
func (s *EChartsSink) Update(ctx context.Context, target progressive.Target, spec chartspec.Spec) error {
	return s.put(ctx, target, spec, true)
}

func (s *EChartsSink) put(ctx context.Context, target progressive.Target, spec chartspec.Spec, update bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sl, ok := s.slots[target]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownTarget, target)
	}

	if update && sl.revision == 0 {
		return fmt.Errorf("%w: %s", ErrNotDrawn, target)
	}

	chart, err := s.conv.Chart(string(target), spec)
	if err != nil {
		return fmt.Errorf("convert %s: %w", target, err)
	}

	sl.spec = spec
	sl.chart = chart
	sl.err = ""

	if update {
		sl.revision++
	} else {
		sl.revision = 1
	}

	return nil
}

// ShowPending marks target as waiting for more data.
func (s *EChartsSink) ShowPending(target progressive.Target, msg string) {
	s.withSlot(target, func(sl *slot) { sl.pending = msg })
}

// ClearPending removes the pending marker.
func (s *EChartsSink) ClearPending(target progressive.Target) {
	s.withSlot(target, func(sl *slot) { sl.pending = "" })
}

// ShowError replaces the chart region with msg.
func (s *EChartsSink) ShowError(target progressive.Target, msg string) {
	s.withSlot(target, func(sl *slot) {
		sl.err = msg
		sl.pending = ""
	})
}

// Notice records a page-level message.
func (s *EChartsSink) Notice(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.notices = append(s.notices, msg)
}

func (s *EChartsSink) withSlot(target progressive.Target, fn func(*slot)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sl, ok := s.slots[target]; ok {
		fn(sl)
	}
}

// Notices returns the page-level messages recorded so far.
func (s *EChartsSink) Notices() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return slices.Clone(s.notices)
}

// Revision returns how many times target was drawn or updated since its
// last Draw. Zero means never drawn.
func (s *EChartsSink) Revision(target progressive.Target) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sl, ok := s.slots[target]; ok {
		return sl.revision
	}

	return 0
}

// Page composes the current state into a page.
func (s *EChartsSink) Page(title, description string) *Page {
	s.mu.Lock()
	defer s.mu.Unlock()

	page := NewPage(title, description).WithTheme(s.conv.Theme)
	page.Notices = append(page.Notices, s.notices...)

	for _, target := range s.order {
		sl := s.slots[target]
		if sl.revision == 0 && sl.err == "" && sl.pending == "" {
			continue
		}

		section := Section{
			ID:       string(target),
			Revision: sl.revision,
			Title:    sl.spec.Title,
			Subtitle: sectionSubtitles[sl.kind],
			Pending:  sl.pending,
			Error:    sl.err,
			Hint:     hintFor(sl.spec),
			Chart:    sl.chart,
		}

		if section.Title == "" {
			section.Title = string(sl.kind)
		}

		page.Add(section)
	}

	return page
}

// WritePage renders the current state as HTML to w.
func (s *EChartsSink) WritePage(w io.Writer, title, description string) error {
	return s.Page(title, description).Render(w)
}

func hintFor(spec chartspec.Spec) *Hint {
	if len(spec.Layout.Annotations) == 0 {
		return nil
	}

	items := make([]string, 0, len(spec.Layout.Annotations))
	for _, a := range spec.Layout.Annotations {
		if a.Text != "" {
			items = append(items, a.Text)
		}
	}

	if len(items) == 0 {
		return nil
	}

	return &Hint{Title: hintTitle, Items: items}
}

var _ progressive.Sink = (*EChartsSink)(nil)
