package chartspec

import (
	"log/slog"

	"github.com/Sumatoshi-tech/threadlens/pkg/aggregate"
	"github.com/Sumatoshi-tech/threadlens/pkg/hierarchy"
	"github.com/Sumatoshi-tech/threadlens/pkg/thread"
)

// Kinds lists every chart in page order.
var Kinds = []Kind{KindBinBar, KindSunburst, KindSentimentLegend, KindBiasLegend, KindSentimentStack}

// Set holds one spec per chart kind.
type Set map[Kind]Spec

// BuildOptions configures Build.
type BuildOptions struct {
	// Title overrides the thread title shown at the sunburst root.
	Title string
	// Logger receives hierarchy repair failures. Nil means slog.Default.
	Logger *slog.Logger
}

// Build runs the whole pipeline for one comment list: aggregation over the
// raw comments, hierarchy repair for the sunburst, and every chart builder.
func Build(comments []thread.Comment, opts BuildOptions) Set {
	analysis := aggregate.Analyze(comments)

	nodes := hierarchy.Normalize(comments, hierarchy.Options{
		SyntheticRoot: true,
		Title:         opts.Title,
	})

	// The sunburst cannot draw an invalid tree; keep the root alone.
	if err := hierarchy.Validate(nodes); err != nil {
		logger := opts.Logger
		if logger == nil {
			logger = slog.Default()
		}

		logger.Warn("hierarchy repair left an invalid tree", "error", err, "comments", len(comments))

		nodes = nodes[:1]
	}

	tree := hierarchy.FilterValid(nodes)

	return Set{
		KindBinBar:          BinBar(analysis.Bins),
		KindSunburst:        Sunburst(tree, aggregate.FindHighestBias(tree)),
		KindSentimentLegend: SentimentLegend(analysis.Insight),
		KindBiasLegend:      BiasLegend(analysis.Profile),
		KindSentimentStack:  SentimentStack(analysis.Distribution),
	}
}
