package backend

import (
	"cmp"
	"context"
	"slices"

	"github.com/Sumatoshi-tech/threadlens/pkg/thread"
)

// DefaultBiasTopN is how many comments are submitted for bias scoring.
const DefaultBiasTopN = 50

// SelectForBias returns the n highest-scored comments, ordered by score
// descending. Equal scores keep input order; missing scores count as zero.
func SelectForBias(comments []thread.Comment, n int) []thread.Comment {
	if n <= 0 || len(comments) == 0 {
		return []thread.Comment{}
	}

	sorted := slices.Clone(comments)
	slices.SortStableFunc(sorted, func(a, b thread.Comment) int {
		return cmp.Compare(scoreOrZero(b.Score), scoreOrZero(a.Score))
	})

	return sorted[:min(n, len(sorted))]
}

func scoreOrZero(s thread.Score) float64 {
	if !s.Valid() {
		return 0
	}

	return s.Float()
}

// MergeBias returns a copy of all in which every comment whose id matches
// an enriched comment carrying a bias object takes that bias. Other comments
// keep whatever bias they had. Inputs are not modified.
func MergeBias(all, enriched []thread.Comment) []thread.Comment {
	byID := make(map[string]thread.Bias, len(enriched))

	for i := range enriched {
		if enriched[i].ID == "" || !enriched[i].Bias.Valid {
			continue
		}

		byID[enriched[i].ID] = enriched[i].Bias
	}

	out := thread.Clone(all)
	if out == nil {
		out = []thread.Comment{}
	}

	for i := range out {
		if bias, ok := byID[out[i].ID]; ok {
			out[i].Bias = bias.Clone()
		}
	}

	return out
}

// Fetcher adapts a Client to the two-phase pipeline.
type Fetcher struct {
	Client *Client
	TopN   int
}

// Sentiment runs the fast pass.
func (f Fetcher) Sentiment(ctx context.Context, threadURL string) ([]thread.Comment, error) {
	return f.Client.FetchSentiment(ctx, threadURL)
}

// Bias enriches the top-N subset of comments and merges the result into the
// full list.
func (f Fetcher) Bias(ctx context.Context, comments []thread.Comment) ([]thread.Comment, error) {
	n := f.TopN
	if n <= 0 {
		n = DefaultBiasTopN
	}

	subset := SelectForBias(comments, n)

	f.Client.logger.InfoContext(ctx, "requesting bias analysis", "selected", len(subset), "total", len(comments))

	enriched, err := f.Client.AddBiasAnalysis(ctx, subset)
	if err != nil {
		return nil, err
	}

	return MergeBias(comments, enriched), nil
}

// Full runs the legacy single-shot pipeline.
func (f Fetcher) Full(ctx context.Context, threadURL string) ([]thread.Comment, error) {
	return f.Client.FetchFull(ctx, threadURL)
}
