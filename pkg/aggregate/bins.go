package aggregate

import (
	"math"

	"github.com/Sumatoshi-tech/threadlens/pkg/thread"
)

// BinSummary aggregates the comments sharing an oc_bin_id.
type BinSummary struct {
	BinID                string      `json:"binId"`
	Count                int         `json:"count"`
	TotalSentiment       float64     `json:"totalSentiment"`
	RepresentativeID     string      `json:"representativeId"`
	RepresentativeAuthor string      `json:"representativeAuthor"`
	RepresentativeBody   string      `json:"representativeBody"`
	RepresentativeScore  float64     `json:"representativeScore"`
	RepresentativeBias   thread.Bias `json:"representativeBias"`
	ContainsThreadRoot   bool        `json:"containsThreadRoot"`
	IsGlobalBiasMax      bool        `json:"isGlobalBiasMax"`
	LocalBiasMax         *BiasHit    `json:"localBiasMax"`
}

// AverageSentiment returns TotalSentiment / Count, or 0 for an empty bin.
func (b *BinSummary) AverageSentiment() float64 {
	if b.Count == 0 {
		return 0
	}

	return b.TotalSentiment / float64(b.Count)
}

// SummarizeByBin groups comments by bin in first-encounter order. A bin's
// representative is the comment whose id equals the bin key, else the first
// comment seen in the bin.
func SummarizeByBin(comments []thread.Comment) []BinSummary {
	byID := make(map[string]int, len(comments))

	for i := range comments {
		if _, seen := byID[comments[i].ID]; !seen {
			byID[comments[i].ID] = i
		}
	}

	highest := FindHighestBias(comments)

	index := make(map[string]int)

	var out []BinSummary

	for i := range comments {
		c := &comments[i]
		key := BinKey(c)

		pos, seen := index[key]
		if !seen {
			rep := c
			if j, ok := byID[key]; ok {
				rep = &comments[j]
			}

			out = append(out, newBinSummary(key, c, rep, highest))
			pos = len(out) - 1
			index[key] = pos
		}

		bin := &out[pos]
		bin.Count++

		if !math.IsNaN(c.Sentiment) && !math.IsInf(c.Sentiment, 0) {
			bin.TotalSentiment += c.Sentiment
		}

		if c.IsThreadRoot() {
			bin.ContainsThreadRoot = true
		}
	}

	return out
}

func newBinSummary(key string, first, rep *thread.Comment, highest HighestBias) BinSummary {
	author := rep.BinAuthor
	if author == "" {
		author = first.BinAuthor
	}

	if author == "" {
		author = rep.Author
	}

	summary := BinSummary{
		BinID:                key,
		RepresentativeID:     rep.ID,
		RepresentativeAuthor: AuthorName(author),
		RepresentativeBody:   rep.Body,
		RepresentativeBias:   rep.Bias.Clone(),
		IsGlobalBiasMax:      highest.Global != nil && highest.Global.BinID == key,
	}

	if rep.Score.Valid() {
		summary.RepresentativeScore = rep.Score.Float()
	}

	if local, ok := highest.PerBin[key]; ok {
		summary.LocalBiasMax = &local
	}

	return summary
}

// Counts tallies sentiment labels.
type Counts struct {
	Negative int `json:"negative"`
	Neutral  int `json:"neutral"`
	Positive int `json:"positive"`
}

// Get returns the tally for one label.
func (c Counts) Get(label thread.SentimentLabel) int {
	switch label {
	case thread.LabelNegative:
		return c.Negative
	case thread.LabelPositive:
		return c.Positive
	default:
		return c.Neutral
	}
}

// Total returns the sum of all tallies.
func (c Counts) Total() int {
	return c.Negative + c.Neutral + c.Positive
}

func (c *Counts) add(label thread.SentimentLabel) {
	switch label {
	case thread.LabelNegative:
		c.Negative++
	case thread.LabelPositive:
		c.Positive++
	default:
		c.Neutral++
	}
}

// BinDistribution is the sentiment label histogram of one bin.
type BinDistribution struct {
	BinID  string `json:"binId"`
	Author string `json:"author"`
	Counts Counts `json:"counts"`
}

// SentimentDistribution tallies sentiment labels per bin in first-encounter
// order. Comments without a label are classified from their score.
func SentimentDistribution(comments []thread.Comment) []BinDistribution {
	index := make(map[string]int)

	var out []BinDistribution

	for _, bin := range SummarizeByBin(comments) {
		index[bin.BinID] = len(out)
		out = append(out, BinDistribution{BinID: bin.BinID, Author: bin.RepresentativeAuthor})
	}

	for i := range comments {
		c := &comments[i]
		out[index[BinKey(c)]].Counts.add(c.Label())
	}

	return out
}
