package chartspec

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Sumatoshi-tech/threadlens/pkg/aggregate"
	"github.com/Sumatoshi-tech/threadlens/pkg/thread"
)

const (
	opSuffix     = " (OP)"
	hoverBodyLen = 100
)

// BinBar builds one bar per bin: height is the comment count and color the
// average sentiment. The bin holding the thread-wide bias maximum gets the
// highlight outline.
func BinBar(bins []aggregate.BinSummary) Spec {
	trace := Trace{
		Type:       TraceBar,
		Name:       "comments",
		X:          make([]string, 0, len(bins)),
		Y:          make([]float64, 0, len(bins)),
		Colors:     make([]float64, 0, len(bins)),
		Outlines:   make([]Outline, 0, len(bins)),
		Hover:      make([]string, 0, len(bins)),
		ColorScale: SentimentScale(),
	}

	for i := range bins {
		bin := &bins[i]

		label := bin.RepresentativeAuthor
		if bin.ContainsThreadRoot {
			label += opSuffix
		}

		trace.X = append(trace.X, label)
		trace.Y = append(trace.Y, float64(bin.Count))
		trace.Colors = append(trace.Colors, bin.AverageSentiment())
		trace.Outlines = append(trace.Outlines, outline(bin.IsGlobalBiasMax, BarHighlightWidth))
		trace.Hover = append(trace.Hover, BinHover(bin))
	}

	return Spec{
		Kind:   KindBinBar,
		Title:  TitleBinBar,
		Traces: []Trace{trace},
		Layout: Layout{
			XAxis: Axis{Type: AxisCategory, Visible: true},
			YAxis: Axis{Type: AxisLinear, Title: "comments", Visible: true},
		},
	}
}

// SentimentStack builds a stacked bar of sentiment label counts per bin.
func SentimentStack(dist []aggregate.BinDistribution) Spec {
	x := make([]string, len(dist))
	for i, d := range dist {
		x[i] = d.Author
	}

	traces := make([]Trace, 0, len(thread.Labels))

	for _, label := range thread.Labels {
		y := make([]float64, len(dist))
		for i, d := range dist {
			y[i] = float64(d.Counts.Get(label))
		}

		traces = append(traces, Trace{
			Type: TraceBar,
			Name: string(label),
			X:    append([]string(nil), x...),
			Y:    y,
			Fill: LabelColors[string(label)],
		})
	}

	return Spec{
		Kind:   KindSentimentStack,
		Title:  TitleSentimentStack,
		Traces: traces,
		Layout: Layout{
			XAxis:      Axis{Type: AxisCategory, Visible: true},
			YAxis:      Axis{Type: AxisLinear, Title: "comments", Visible: true},
			Stacked:    true,
			ShowLegend: true,
		},
	}
}

// BinHover renders the tooltip lines of one bin.
func BinHover(bin *aggregate.BinSummary) string {
	lines := []string{
		"comment bin author: " + bin.RepresentativeAuthor,
		"total bin score: " + strconv.FormatFloat(bin.RepresentativeScore, 'f', -1, 64),
		"author's comment: " + Excerpt(bin.RepresentativeBody, hoverBodyLen),
		fmt.Sprintf("average sentiment: %.4f", bin.AverageSentiment()),
		"bias: " + FormatBias(bin.RepresentativeBias),
	}

	if local := bin.LocalBiasMax; local != nil && local.Author != bin.RepresentativeAuthor {
		lines = append(lines, fmt.Sprintf("highest bias in bin: %s (%s: %.2e)", local.Author, local.Label, local.Value))
	}

	if bin.IsGlobalBiasMax && bin.LocalBiasMax != nil {
		lines = append(lines, "HIGHEST BIAS IN THREAD: "+bin.LocalBiasMax.Author)
	}

	return strings.Join(lines, "\n")
}

// FormatBias describes the strongest bias label of a comment.
func FormatBias(b thread.Bias) string {
	if !b.Valid {
		return "not available"
	}

	label, value, ok := b.Top()
	if !ok {
		return "none detected"
	}

	return fmt.Sprintf("%s (%.2e)", label, value)
}

// Excerpt truncates text to n runes with an ellipsis.
func Excerpt(text string, n int) string {
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}

	return string(runes[:n]) + "..."
}

func outline(highlight bool, width float64) Outline {
	if highlight {
		return Outline{Color: ColorHighlight, Width: width}
	}

	return Outline{Color: ColorPlainBorder, Width: PlainBorderWidth}
}
