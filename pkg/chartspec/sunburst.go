package chartspec

import (
	"fmt"

	"github.com/Sumatoshi-tech/threadlens/pkg/aggregate"
	"github.com/Sumatoshi-tech/threadlens/pkg/thread"
)

// Sunburst builds one arc per normalized comment. Comments must already be
// normalized so every parent resolves. The arc holding the thread-wide bias
// maximum gets the highlight outline.
func Sunburst(comments []thread.Comment, highest aggregate.HighestBias) Spec {
	n := len(comments)
	trace := Trace{
		Type:       TraceSunburst,
		IDs:        make([]string, 0, n),
		Labels:     make([]string, 0, n),
		Parents:    make([]string, 0, n),
		Values:     make([]float64, 0, n),
		Colors:     make([]float64, 0, n),
		Outlines:   make([]Outline, 0, n),
		Hover:      make([]string, 0, n),
		ColorScale: SentimentScale(),
	}

	maxID := ""
	if highest.Global != nil {
		maxID = highest.Global.CommentID
	}

	for i := range comments {
		c := &comments[i]

		trace.IDs = append(trace.IDs, c.ID)
		trace.Labels = append(trace.Labels, aggregate.AuthorName(c.Author))
		trace.Parents = append(trace.Parents, c.Parent)
		trace.Values = append(trace.Values, c.Score.Weight())
		trace.Colors = append(trace.Colors, c.Sentiment)
		trace.Outlines = append(trace.Outlines, outline(maxID != "" && c.ID == maxID, SunburstHighlightWidth))
		trace.Hover = append(trace.Hover, commentHover(c))
	}

	return Spec{
		Kind:   KindSunburst,
		Title:  TitleSunburst,
		Traces: []Trace{trace},
	}
}

func commentHover(c *thread.Comment) string {
	return fmt.Sprintf("author: %s\nscore: %g\nsentiment: %.4f\nbias: %s\n%s",
		aggregate.AuthorName(c.Author), c.Score.Weight(), c.Sentiment, FormatBias(c.Bias), Excerpt(c.Body, hoverBodyLen))
}
