package render

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"

	"github.com/Sumatoshi-tech/threadlens/pkg/chartspec"
)

// Conversion errors.
var (
	ErrNoTraces         = errors.New("spec has no traces")
	ErrUnsupportedTrace = errors.New("unsupported trace type")
	ErrMalformedTrace   = errors.New("malformed trace")
)

const (
	barLabelRotate   = 45
	scaleSamples     = 11
	stackName        = "sentiment"
	legendLabelDigit = 2
)

// Converter turns specs into go-echarts charts.
type Converter struct {
	Theme Theme
	Style Style
}

// Chart converts spec into a renderable chart bound to chartID.
func (cv Converter) Chart(chartID string, spec chartspec.Spec) (Renderable, error) {
	if len(spec.Traces) == 0 {
		return nil, fmt.Errorf("%s: %w", spec.Kind, ErrNoTraces)
	}

	co := NewChartOpts(cv.Theme)

	switch spec.Traces[0].Type {
	case chartspec.TraceHeatmap:
		return cv.heatmap(co, chartID, spec)
	case chartspec.TraceBar:
		return cv.bar(co, chartID, spec)
	case chartspec.TraceSunburst:
		return cv.sunburst(co, chartID, spec)
	default:
		return nil, fmt.Errorf("%s: %w: %q", spec.Kind, ErrUnsupportedTrace, spec.Traces[0].Type)
	}
}

func (cv Converter) heatmap(co *ChartOpts, chartID string, spec chartspec.Spec) (*charts.HeatMap, error) {
	trace := spec.Traces[0]
	if len(trace.Y) != len(trace.Z) {
		return nil, fmt.Errorf("%s: %w: %d y values, %d z values", spec.Kind, ErrMalformedTrace, len(trace.Y), len(trace.Z))
	}

	labels := make([]string, len(trace.Y))
	data := make([]opts.HeatMapData, len(trace.Y))

	for i, y := range trace.Y {
		labels[i] = axisLabel(spec.Layout.YAxis.Type, y)
		data[i] = opts.HeatMapData{Value: [3]any{0, i, trace.Z[i]}}
	}

	lo, hi := 0.0, 1.0
	if trace.ColorScale != nil {
		lo, hi = trace.ColorScale.Min, trace.ColorScale.Max
	}

	hm := charts.NewHeatMap()
	hm.SetGlobalOptions(
		charts.WithInitializationOpts(co.Init(chartID, cv.Style.LegendWidth, cv.Style.LegendHeight)),
		charts.WithTitleOpts(co.Title(spec.Title, "")),
		charts.WithXAxisOpts(opts.XAxis{Type: "category", Data: []string{""}, Show: opts.Bool(false)}),
		charts.WithYAxisOpts(opts.YAxis{
			Type:      "category",
			Data:      labels,
			Show:      opts.Bool(spec.Layout.YAxis.Visible),
			AxisLabel: &opts.AxisLabel{Color: co.TextColor()},
		}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Calculable: opts.Bool(false),
			Min:        float32(lo),
			Max:        float32(hi),
			InRange:    &opts.VisualMapInRange{Color: sampleScale(trace.ColorScale)},
			Orient:     "horizontal",
			Left:       "center",
			Bottom:     "0",
		}),
	)

	seriesOpts := []charts.SeriesOpts{}

	for _, shape := range spec.Layout.Shapes {
		idx := nearestIndex(trace.Y, shape.Y)
		if idx < 0 {
			continue
		}

		seriesOpts = append(seriesOpts, charts.WithMarkLineNameYAxisItemOpts(opts.MarkLineNameYAxisItem{
			Name:  shape.Label,
			YAxis: labels[idx],
		}))
	}

	if len(spec.Layout.Shapes) > 0 {
		seriesOpts = append(seriesOpts, charts.WithMarkLineStyleOpts(opts.MarkLineStyle{
			Symbol: []string{"none", "circle"},
			Label:  &opts.Label{Show: opts.Bool(true), Formatter: "{b}"},
		}))
	}

	hm.AddSeries(spec.Title, data, seriesOpts...)

	return hm, nil
}

func (cv Converter) bar(co *ChartOpts, chartID string, spec chartspec.Spec) (*charts.Bar, error) {
	x := spec.Traces[0].X

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(co.Init(chartID, cv.Style.Width, cv.Style.Height)),
		charts.WithTitleOpts(co.Title(spec.Title, "")),
		charts.WithTooltipOpts(co.Tooltip("axis")),
		charts.WithGridOpts(co.Grid()),
		charts.WithXAxisOpts(co.CategoryXAxis(x, barLabelRotate, spec.Layout.XAxis.Visible)),
		charts.WithYAxisOpts(co.ValueYAxis(spec.Layout.YAxis.Title)),
	)

	if spec.Layout.ShowLegend {
		bar.SetGlobalOptions(charts.WithLegendOpts(co.Legend()))
	}

	bar.SetXAxis(x)

	for _, trace := range spec.Traces {
		if trace.Type != chartspec.TraceBar || len(trace.Y) != len(trace.X) {
			return nil, fmt.Errorf("%s: %w: bar %q", spec.Kind, ErrMalformedTrace, trace.Name)
		}

		data := make([]opts.BarData, len(trace.Y))
		for i, y := range trace.Y {
			data[i] = opts.BarData{Name: trace.X[i], Value: y, ItemStyle: itemStyle(&trace, i)}
		}

		var seriesOpts []charts.SeriesOpts

		if spec.Layout.Stacked {
			seriesOpts = append(seriesOpts, charts.WithBarChartOpts(opts.BarChart{Stack: stackName}))
		}

		if trace.Fill != "" {
			seriesOpts = append(seriesOpts, charts.WithItemStyleOpts(opts.ItemStyle{Color: trace.Fill}))
		}

		bar.AddSeries(trace.Name, data, seriesOpts...)
	}

	return bar, nil
}

// sunburstNode mirrors the echarts sunburst item, which allows a per-node
// item style.
type sunburstNode struct {
	Name      string          `json:"name"`
	Value     float64         `json:"value"`
	ItemStyle *opts.ItemStyle `json:"itemStyle,omitempty"`
	Children  []*sunburstNode `json:"children,omitempty"`
}

func (cv Converter) sunburst(co *ChartOpts, chartID string, spec chartspec.Spec) (*charts.Sunburst, error) {
	trace := spec.Traces[0]

	n := len(trace.IDs)
	if len(trace.Parents) != n || len(trace.Labels) != n || len(trace.Values) != n {
		return nil, fmt.Errorf("%s: %w: sunburst columns differ in length", spec.Kind, ErrMalformedTrace)
	}

	nodes := make(map[string]*sunburstNode, n)

	for i, id := range trace.IDs {
		nodes[id] = &sunburstNode{Name: trace.Labels[i], Value: trace.Values[i], ItemStyle: itemStyle(&trace, i)}
	}

	roots := make([]*sunburstNode, 0, 1)

	for i, id := range trace.IDs {
		parent, ok := nodes[trace.Parents[i]]
		if trace.Parents[i] == "" || !ok || trace.Parents[i] == id {
			roots = append(roots, nodes[id])

			continue
		}

		parent.Children = append(parent.Children, nodes[id])
	}

	sb := charts.NewSunburst()
	sb.SetGlobalOptions(
		charts.WithInitializationOpts(co.Init(chartID, cv.Style.Width, cv.Style.Height)),
		charts.WithTitleOpts(co.Title(spec.Title, "")),
		charts.WithTooltipOpts(co.Tooltip("item")),
	)

	sb.MultiSeries = append(sb.MultiSeries, charts.SingleSeries{
		Name: spec.Title,
		Type: types.ChartSunburst,
		Data: roots,
	})

	return sb, nil
}

func itemStyle(trace *chartspec.Trace, i int) *opts.ItemStyle {
	style := &opts.ItemStyle{}
	set := false

	if trace.ColorScale != nil && i < len(trace.Colors) {
		style.Color = ColorAt(trace.ColorScale, trace.Colors[i])
		set = true
	}

	if i < len(trace.Outlines) {
		style.BorderColor = normalizeColor(trace.Outlines[i].Color)
		style.BorderWidth = float32(trace.Outlines[i].Width)
		set = true
	}

	if !set {
		return nil
	}

	return style
}

func sampleScale(scale *chartspec.ColorScale) []string {
	if scale == nil {
		return nil
	}

	out := make([]string, scaleSamples)
	for i := range out {
		out[i] = ColorAt(scale, scale.Min+float64(i)/float64(scaleSamples-1)*(scale.Max-scale.Min))
	}

	return out
}

func axisLabel(axisType chartspec.AxisType, v float64) string {
	if axisType == chartspec.AxisLog {
		return fmt.Sprintf("10^%.*f", legendLabelDigit, v)
	}

	return fmt.Sprintf("%.*f", legendLabelDigit, v)
}

func nearestIndex(values []float64, v float64) int {
	best, bestDist := -1, math.Inf(1)

	for i, x := range values {
		if d := math.Abs(x - v); d < bestDist {
			best, bestDist = i, d
		}
	}

	return best
}
