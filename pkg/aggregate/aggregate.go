// Package aggregate computes per-bin and per-thread statistics from a
// comment list. Every function is pure: it reads its input and returns a
// freshly built result.
package aggregate

import (
	"math"
	"strings"

	"github.com/Sumatoshi-tech/threadlens/pkg/scalemath"
	"github.com/Sumatoshi-tech/threadlens/pkg/thread"
)

// UnbinnedKey is the bin for comments without an oc_bin_id.
const UnbinnedKey = "Unbinned"

// AnonymousAuthor replaces empty author names.
const AnonymousAuthor = "anonymous"

// BinKey returns the bin a comment belongs to.
func BinKey(c *thread.Comment) string {
	if key := strings.TrimSpace(c.BinID); key != "" {
		return key
	}

	return UnbinnedKey
}

// AuthorName returns the author or AnonymousAuthor.
func AuthorName(author string) string {
	if strings.TrimSpace(author) == "" {
		return AnonymousAuthor
	}

	return author
}

// BiasHit identifies the comment holding a bias maximum.
type BiasHit struct {
	CommentID string  `json:"commentId"`
	Author    string  `json:"author"`
	BinID     string  `json:"binId"`
	Label     string  `json:"label"`
	Value     float64 `json:"value"`
}

// HighestBias holds the thread-wide and per-bin bias maxima.
type HighestBias struct {
	Global *BiasHit           `json:"global"`
	PerBin map[string]BiasHit `json:"perBin"`
}

// FindHighestBias scans each comment's strongest non-"none" label. Only
// positive values qualify, and a later comment must be strictly greater to
// replace an earlier one, so ties keep the first comment encountered.
func FindHighestBias(comments []thread.Comment) HighestBias {
	result := HighestBias{PerBin: make(map[string]BiasHit)}

	for i := range comments {
		c := &comments[i]

		label, value, ok := c.Bias.Top()
		if !ok || !(value > 0) || math.IsInf(value, 0) {
			continue
		}

		hit := BiasHit{
			CommentID: c.ID,
			Author:    AuthorName(c.Author),
			BinID:     BinKey(c),
			Label:     label,
			Value:     value,
		}

		if result.Global == nil || value > result.Global.Value {
			global := hit
			result.Global = &global
		}

		if prev, seen := result.PerBin[hit.BinID]; !seen || value > prev.Value {
			result.PerBin[hit.BinID] = hit
		}
	}

	return result
}

// Insight is the thread-wide sentiment summary, normalized to [0, 1].
type Insight struct {
	Average float64 `json:"average"`
	OP      float64 `json:"op"`
	Count   int     `json:"count"`
	HasOP   bool    `json:"hasOp"`
}

// Neutral is the normalized sentiment midpoint.
const Neutral = 0.5

// SentimentInsight averages sentiment across the thread and locates the
// original post, the first comment with an empty parent_id. Without
// comments or without an OP the respective value is Neutral.
func SentimentInsight(comments []thread.Comment) Insight {
	insight := Insight{Average: Neutral, OP: Neutral, Count: len(comments)}
	if len(comments) == 0 {
		return insight
	}

	var sum float64

	for i := range comments {
		c := &comments[i]
		s := scalemath.NormalizeSentiment(c.Sentiment)
		sum += s

		if !insight.HasOP && c.IsThreadRoot() {
			insight.OP = s
			insight.HasOP = true
		}
	}

	insight.Average = sum / float64(len(comments))

	return insight
}
