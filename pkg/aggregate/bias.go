package aggregate

import (
	"maps"
	"slices"
	"strings"

	"github.com/Sumatoshi-tech/threadlens/pkg/scalemath"
	"github.com/Sumatoshi-tech/threadlens/pkg/thread"
)

// LabelAverage is the mean probability of one bias label.
type LabelAverage struct {
	Label   string  `json:"label"`
	Average float64 `json:"average"`
	// AboveScale is set when Average exceeds the profile's scale maximum.
	AboveScale bool `json:"aboveScale"`
}

// Profile is the thread-wide bias distribution.
type Profile struct {
	Averages []LabelAverage      `json:"averages"`
	Count    int                 `json:"count"`
	Scale    scalemath.BiasScale `json:"scale"`
}

// Empty reports whether no comment carried a bias object.
func (p *Profile) Empty() bool {
	return p.Count == 0
}

// Values returns the averages in label order.
func (p *Profile) Values() []float64 {
	out := make([]float64, len(p.Averages))
	for i, a := range p.Averages {
		out[i] = a.Average
	}

	return out
}

// BiasProfile averages each bias label over the comments that carry a bias
// object. Comments without one do not contribute to the divisor. The "none"
// label is excluded. Averages are sorted by label.
func BiasProfile(comments []thread.Comment) Profile {
	totals := make(map[string]float64)
	count := 0

	for i := range comments {
		bias := comments[i].Bias
		if !bias.Valid {
			continue
		}

		count++

		for label, value := range bias.Labels {
			if strings.EqualFold(label, thread.NoneLabel) {
				continue
			}

			totals[label] += value
		}
	}

	profile := Profile{Count: count}

	for _, label := range slices.Sorted(maps.Keys(totals)) {
		profile.Averages = append(profile.Averages, LabelAverage{
			Label:   label,
			Average: totals[label] / float64(count),
		})
	}

	profile.Scale = scalemath.NewBiasScale(profile.Values())

	for i := range profile.Averages {
		profile.Averages[i].AboveScale = profile.Scale.Exceeds(profile.Averages[i].Average)
	}

	return profile
}

// Analysis bundles every aggregate of one comment list.
type Analysis struct {
	Bins         []BinSummary      `json:"bins"`
	Highest      HighestBias       `json:"highestBias"`
	Insight      Insight           `json:"sentiment"`
	Profile      Profile           `json:"bias"`
	Distribution []BinDistribution `json:"distribution"`
}

// Analyze computes all aggregates in one call.
func Analyze(comments []thread.Comment) Analysis {
	return Analysis{
		Bins:         SummarizeByBin(comments),
		Highest:      FindHighestBias(comments),
		Insight:      SentimentInsight(comments),
		Profile:      BiasProfile(comments),
		Distribution: SentimentDistribution(comments),
	}
}
