package chartspec

import (
	"fmt"
	"math"

	"github.com/Sumatoshi-tech/threadlens/pkg/aggregate"
	"github.com/Sumatoshi-tech/threadlens/pkg/scalemath"
)

// Gradient resolution.
const (
	sentimentSteps = 101
	biasSteps      = 201
)

// Annotation placement in paper space.
const (
	aboveChart    = 1.07
	belowChart    = -0.07
	opLabelOffset = 0.035
	labelOffset   = 0.04
	labelAngle    = -45
)

var biasTickFractions = []float64{0, 0.2, 0.4, 0.6, 0.8, 1}

// Titles.
const (
	TitleSentimentLegend = "Sentiment"
	TitleBiasLegend      = "Bias"
	TitleBinBar          = "Comment bins"
	TitleSunburst        = "Thread"
	TitleSentimentStack  = "Sentiment by bin"
)

// NoBiasText replaces category dots when no comment carries bias data.
const NoBiasText = "No bias data"

// SentimentLegend builds the vertical sentiment gradient with average and
// OP markers. Markers are omitted for an empty thread.
func SentimentLegend(insight aggregate.Insight) Spec {
	y := make([]float64, sentimentSteps)
	for i := range y {
		y[i] = float64(i) / float64(sentimentSteps-1)
	}

	spec := Spec{
		Kind:  KindSentimentLegend,
		Title: TitleSentimentLegend,
		Traces: []Trace{{
			Type:       TraceHeatmap,
			Y:          y,
			Z:          append([]float64(nil), y...),
			ColorScale: unitSentimentScale(),
		}},
		Layout: Layout{
			XAxis: Axis{Type: AxisLinear, Max: 1},
			YAxis: Axis{Type: AxisLinear, Max: 1},
			Annotations: []Annotation{
				{X: 0.5, Y: belowChart, YRef: RefPaper, Text: "Negative", Color: ColorText, Anchor: AnchorCenter},
				{X: 0.5, Y: aboveChart, YRef: RefPaper, Text: "Positive", Color: ColorText, Anchor: AnchorCenter},
			},
		},
	}

	if insight.Count == 0 {
		return spec
	}

	spec.Layout.Shapes = []Shape{
		{Kind: ShapeLine, Y: insight.Average, Color: ColorAverage, Width: 2, Label: "Avg"},
		{Kind: ShapeLine, Y: insight.OP, Color: ColorOP, Width: 2, Label: "OP"},
	}
	spec.Layout.Annotations = append(spec.Layout.Annotations,
		Annotation{X: 1, Y: insight.Average, YRef: RefAxis, Text: "Avg", Color: ColorAverage, Anchor: AnchorLeft},
		Annotation{X: 0, Y: insight.OP + opLabelOffset, YRef: RefAxis, Text: "OP", Color: ColorOP, Anchor: AnchorRight},
	)

	return spec
}

// BiasLegend builds the logarithmic bias gradient with one dot per bias
// label. Labels whose average exceeds the scale maximum are pinned to the
// top of the axis and drawn in the out-of-range color.
func BiasLegend(profile aggregate.Profile) Spec {
	scale := profile.Scale
	if !(scale.ScaleMax > 0) {
		scale = scalemath.NewBiasScale(nil)
	}

	axis := scale.LogAxis()

	y := make([]float64, biasSteps)
	z := make([]float64, biasSteps)

	for i := range y {
		y[i] = axis.Min + float64(i)/float64(biasSteps-1)*axis.Span()
		z[i] = gradientValue(y[i], scale.ScaleMax)
	}

	ticks := make([]float64, len(biasTickFractions))
	tickText := make([]string, len(biasTickFractions))

	for i, f := range biasTickFractions {
		ticks[i] = axis.Min + f*axis.Span()
		tickText[i] = fmt.Sprintf("10^%.1f", ticks[i])
	}

	style := bandStyles[scale.Band]

	spec := Spec{
		Kind:  KindBiasLegend,
		Title: TitleBiasLegend,
		Traces: []Trace{{
			Type:       TraceHeatmap,
			Y:          y,
			Z:          z,
			ColorScale: BiasScale(scale.Band),
		}},
		Layout: Layout{
			XAxis: Axis{Type: AxisLinear, Max: 1},
			YAxis: Axis{
				Type:       AxisLog,
				Min:        axis.Min,
				Max:        axis.Max,
				Visible:    true,
				TickValues: ticks,
				TickText:   tickText,
			},
			Annotations: []Annotation{
				{X: 0.5, Y: aboveChart, YRef: RefPaper, Text: style.text, Color: style.color, Anchor: AnchorCenter},
				{X: 0.5, Y: belowChart, YRef: RefPaper, Text: "Min Bias", Color: ColorMinBias, Anchor: AnchorCenter},
			},
		},
	}

	if profile.Empty() || len(profile.Averages) == 0 {
		spec.Layout.Annotations = append(spec.Layout.Annotations, Annotation{
			X: 0.5, Y: 0.5, YRef: RefPaper, Text: NoBiasText, Color: ColorText, Anchor: AnchorCenter,
		})

		return spec
	}

	for _, avg := range profile.Averages {
		pos, color := scalemath.LogBias(avg.Average), ColorCategory
		if scale.Exceeds(avg.Average) {
			pos, color = axis.Max, ColorOutOfRange
		}

		spec.Layout.Shapes = append(spec.Layout.Shapes, Shape{Kind: ShapeDot, Y: pos, Color: color, Width: 1, Label: avg.Label})
		spec.Layout.Annotations = append(spec.Layout.Annotations, Annotation{
			X: 0.1, Y: pos - labelOffset, YRef: RefAxis, Text: avg.Label, Color: color, Anchor: AnchorRight, Angle: labelAngle,
		})
	}

	return spec
}

// gradientValue maps a log-axis position back to a bias value normalized
// by the scale maximum, capped at 1.
func gradientValue(logY, scaleMax float64) float64 {
	v := (math.Pow(10, logY) - scalemath.MinBias) / scaleMax

	return math.Max(0, math.Min(v, 1))
}
