// Package chartspec builds declarative chart descriptions from aggregates.
//
// A Spec says what to draw (traces, axes, overlays) and leaves the drawing to
// a render sink. Builders are pure and accept empty input.
package chartspec

// Kind identifies which chart a Spec describes.
type Kind string

// Chart kinds.
const (
	KindSentimentLegend Kind = "sentiment-legend"
	KindBiasLegend      Kind = "bias-legend"
	KindBinBar          Kind = "bin-bar"
	KindSunburst        Kind = "sunburst"
	KindSentimentStack  Kind = "sentiment-stack"
)

// TraceType is the geometry of a trace.
type TraceType string

// Trace types.
const (
	TraceHeatmap  TraceType = "heatmap"
	TraceBar      TraceType = "bar"
	TraceSunburst TraceType = "sunburst"
)

// ColorStop is one stop of a color scale at an offset in [0, 1].
type ColorStop struct {
	Offset float64 `json:"offset" yaml:"offset"`
	Color  string  `json:"color"  yaml:"color"`
}

// ColorScale maps values in [Min, Max] onto a gradient.
type ColorScale struct {
	Stops []ColorStop `json:"stops" yaml:"stops"`
	Min   float64     `json:"min"   yaml:"min"`
	Max   float64     `json:"max"   yaml:"max"`
}

// Colors returns the stop colors in order.
func (c *ColorScale) Colors() []string {
	out := make([]string, len(c.Stops))
	for i, s := range c.Stops {
		out[i] = s.Color
	}

	return out
}

// Outline is the border drawn around one bar or arc.
type Outline struct {
	Color string  `json:"color" yaml:"color"`
	Width float64 `json:"width" yaml:"width"`
}

// Trace is one data series.
//
// Heatmap traces use Y and Z as a single gradient column. Bar traces use X
// and Y. Sunburst traces use IDs, Labels, Parents and Values. Colors holds
// per-item values mapped through ColorScale; Fill is a constant color.
type Trace struct {
	Type       TraceType   `json:"type"                 yaml:"type"`
	Name       string      `json:"name,omitempty"       yaml:"name,omitempty"`
	X          []string    `json:"x,omitempty"          yaml:"x,omitempty"`
	Y          []float64   `json:"y,omitempty"          yaml:"y,omitempty"`
	Z          []float64   `json:"z,omitempty"          yaml:"z,omitempty"`
	IDs        []string    `json:"ids,omitempty"        yaml:"ids,omitempty"`
	Labels     []string    `json:"labels,omitempty"     yaml:"labels,omitempty"`
	Parents    []string    `json:"parents,omitempty"    yaml:"parents,omitempty"`
	Values     []float64   `json:"values,omitempty"     yaml:"values,omitempty"`
	Colors     []float64   `json:"colors,omitempty"     yaml:"colors,omitempty"`
	Fill       string      `json:"fill,omitempty"       yaml:"fill,omitempty"`
	ColorScale *ColorScale `json:"colorScale,omitempty" yaml:"colorScale,omitempty"`
	Outlines   []Outline   `json:"outlines,omitempty"   yaml:"outlines,omitempty"`
	Hover      []string    `json:"hover,omitempty"      yaml:"hover,omitempty"`
}

// Len returns the number of items in the trace.
func (t *Trace) Len() int {
	switch t.Type {
	case TraceSunburst:
		return len(t.IDs)
	case TraceHeatmap:
		return len(t.Z)
	default:
		return len(t.X)
	}
}

// AxisType is the scale of an axis.
type AxisType string

// Axis types.
const (
	AxisLinear   AxisType = "linear"
	AxisLog      AxisType = "log"
	AxisCategory AxisType = "category"
)

// Axis describes one chart axis.
type Axis struct {
	Type       AxisType  `json:"type"                 yaml:"type"`
	Title      string    `json:"title,omitempty"      yaml:"title,omitempty"`
	Min        float64   `json:"min"                  yaml:"min"`
	Max        float64   `json:"max"                  yaml:"max"`
	Visible    bool      `json:"visible"              yaml:"visible"`
	TickValues []float64 `json:"tickValues,omitempty" yaml:"tickValues,omitempty"`
	TickText   []string  `json:"tickText,omitempty"   yaml:"tickText,omitempty"`
}

// ShapeKind is the geometry of an overlay shape.
type ShapeKind string

// Shape kinds.
const (
	ShapeLine ShapeKind = "line"
	ShapeDot  ShapeKind = "dot"
)

// Shape is an overlay drawn at a data-space Y position across the plot.
type Shape struct {
	Kind  ShapeKind `json:"kind"  yaml:"kind"`
	Y     float64   `json:"y"     yaml:"y"`
	Color string    `json:"color" yaml:"color"`
	Width float64   `json:"width" yaml:"width"`
	// Label links the shape to its annotation.
	Label string `json:"label,omitempty" yaml:"label,omitempty"`
}

// Ref selects the coordinate space of an annotation's Y.
type Ref string

// Coordinate spaces.
const (
	RefPaper Ref = "paper"
	RefAxis  Ref = "axis"
)

// Anchor is the horizontal text anchor.
type Anchor string

// Anchors.
const (
	AnchorLeft   Anchor = "left"
	AnchorCenter Anchor = "center"
	AnchorRight  Anchor = "right"
)

// Annotation is a text label. X is always in paper space.
type Annotation struct {
	X      float64 `json:"x"               yaml:"x"`
	Y      float64 `json:"y"               yaml:"y"`
	YRef   Ref     `json:"yref"            yaml:"yref"`
	Text   string  `json:"text"            yaml:"text"`
	Color  string  `json:"color"           yaml:"color"`
	Anchor Anchor  `json:"anchor"          yaml:"anchor"`
	Angle  float64 `json:"angle,omitempty" yaml:"angle,omitempty"`
}

// Layout holds axes and overlays.
type Layout struct {
	XAxis       Axis         `json:"xaxis"                 yaml:"xaxis"`
	YAxis       Axis         `json:"yaxis"                 yaml:"yaxis"`
	Stacked     bool         `json:"stacked,omitempty"     yaml:"stacked,omitempty"`
	ShowLegend  bool         `json:"showLegend,omitempty"  yaml:"showLegend,omitempty"`
	Shapes      []Shape      `json:"shapes,omitempty"      yaml:"shapes,omitempty"`
	Annotations []Annotation `json:"annotations,omitempty" yaml:"annotations,omitempty"`
}

// Spec is a complete chart description.
type Spec struct {
	Kind   Kind    `json:"kind"   yaml:"kind"`
	Title  string  `json:"title"  yaml:"title"`
	Traces []Trace `json:"traces" yaml:"traces"`
	Layout Layout  `json:"layout" yaml:"layout"`
}

// Empty reports whether the spec carries no data items.
func (s *Spec) Empty() bool {
	for i := range s.Traces {
		if s.Traces[i].Len() > 0 {
			return false
		}
	}

	return true
}
