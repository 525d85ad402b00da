package aggregate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/threadlens/pkg/scalemath"
	"github.com/Sumatoshi-tech/threadlens/pkg/thread"
)

func sampleThread() []thread.Comment {
	return []thread.Comment{
		{ID: "op", ParentID: "", Author: "poster", Body: "Title", Score: 10, Sentiment: 0.6, BinID: "op"},
		{ID: "b1", ParentID: "t1_op", Author: "alice", Body: "first", Score: 4, Sentiment: -0.4, BinID: "b1",
			Bias: thread.NewBias(map[string]float64{"framing": 0.02, "none": 0.9})},
		{ID: "b1r", ParentID: "t1_b1", Author: "bob", Body: "reply", Score: 2, Sentiment: 0.2, BinID: "b1",
			Bias: thread.NewBias(map[string]float64{"framing": 0.4, "loaded": 0.1})},
		{ID: "x", ParentID: "t1_gone", Author: "", Body: "stray", Score: 1, Sentiment: 0},
	}
}

func TestSummarizeByBin(t *testing.T) {
	t.Parallel()

	bins := SummarizeByBin(sampleThread())
	require.Len(t, bins, 3)

	assert.Equal(t, []string{"op", "b1", UnbinnedKey}, []string{bins[0].BinID, bins[1].BinID, bins[2].BinID})

	op := bins[0]
	assert.True(t, op.ContainsThreadRoot)
	assert.Equal(t, 1, op.Count)
	assert.False(t, op.IsGlobalBiasMax)
	assert.Nil(t, op.LocalBiasMax)

	b1 := bins[1]
	assert.Equal(t, 2, b1.Count)
	assert.InDelta(t, -0.2, b1.TotalSentiment, 1e-9)
	assert.InDelta(t, -0.1, b1.AverageSentiment(), 1e-9)
	assert.Equal(t, "alice", b1.RepresentativeAuthor)
	assert.Equal(t, "first", b1.RepresentativeBody)
	assert.InDelta(t, 4.0, b1.RepresentativeScore, 1e-9)
	assert.True(t, b1.RepresentativeBias.Valid)
	assert.True(t, b1.IsGlobalBiasMax)
	require.NotNil(t, b1.LocalBiasMax)
	assert.Equal(t, "bob", b1.LocalBiasMax.Author)
	assert.Equal(t, "framing", b1.LocalBiasMax.Label)
	assert.False(t, b1.ContainsThreadRoot)

	unbinned := bins[2]
	assert.Equal(t, AnonymousAuthor, unbinned.RepresentativeAuthor)
	assert.False(t, unbinned.RepresentativeBias.Valid)
}

func TestSummarizeByBin_RepresentativeFallsBackToFirst(t *testing.T) {
	t.Parallel()

	bins := SummarizeByBin([]thread.Comment{
		{ID: "r1", ParentID: "t1_z", Author: "first", BinID: "missing"},
		{ID: "r2", ParentID: "t1_z", Author: "second", BinID: "missing"},
	})

	require.Len(t, bins, 1)
	assert.Equal(t, "first", bins[0].RepresentativeAuthor)
	assert.Equal(t, "r1", bins[0].RepresentativeID)
}

func TestSummarizeByBin_PrefersBinAuthor(t *testing.T) {
	t.Parallel()

	bins := SummarizeByBin([]thread.Comment{
		{ID: "r1", ParentID: "t1_z", Author: "replier", BinAuthor: "starter", BinID: "z"},
	})

	require.Len(t, bins, 1)
	assert.Equal(t, "starter", bins[0].RepresentativeAuthor)
}

func TestSummarizeByBin_Idempotent(t *testing.T) {
	t.Parallel()

	input := sampleThread()

	first := SummarizeByBin(input)
	second := SummarizeByBin(input)

	assert.Equal(t, first, second)
	assert.Equal(t, sampleThread(), input)
}

func TestSummarizeByBin_Empty(t *testing.T) {
	t.Parallel()

	assert.Empty(t, SummarizeByBin(nil))
}

func TestFindHighestBias(t *testing.T) {
	t.Parallel()

	highest := FindHighestBias(sampleThread())
	require.NotNil(t, highest.Global)
	assert.Equal(t, "b1r", highest.Global.CommentID)
	assert.InDelta(t, 0.4, highest.Global.Value, 1e-9)
	assert.Len(t, highest.PerBin, 1)
}

func TestFindHighestBias_TiesKeepFirst(t *testing.T) {
	t.Parallel()

	highest := FindHighestBias([]thread.Comment{
		{ID: "first", Author: "a", Bias: thread.NewBias(map[string]float64{"x": 0.5})},
		{ID: "second", Author: "b", Bias: thread.NewBias(map[string]float64{"y": 0.5})},
	})

	require.NotNil(t, highest.Global)
	assert.Equal(t, "first", highest.Global.CommentID)
	assert.Equal(t, "first", highest.PerBin[UnbinnedKey].CommentID)
}

func TestFindHighestBias_IgnoresZeroAndNone(t *testing.T) {
	t.Parallel()

	highest := FindHighestBias([]thread.Comment{
		{ID: "a", Bias: thread.NewBias(map[string]float64{"x": 0})},
		{ID: "b", Bias: thread.NewBias(map[string]float64{"NONE": 0.8})},
		{ID: "c"},
	})

	assert.Nil(t, highest.Global)
	assert.Empty(t, highest.PerBin)
}

func TestSentimentInsight(t *testing.T) {
	t.Parallel()

	t.Run("empty", func(t *testing.T) {
		t.Parallel()

		insight := SentimentInsight(nil)
		assert.InDelta(t, 0.5, insight.Average, 1e-9)
		assert.InDelta(t, 0.5, insight.OP, 1e-9)
		assert.Zero(t, insight.Count)
		assert.False(t, insight.HasOP)
	})

	t.Run("with_op", func(t *testing.T) {
		t.Parallel()

		insight := SentimentInsight(sampleThread())
		// (0.8 + 0.3 + 0.6 + 0.5) / 4
		assert.InDelta(t, 0.55, insight.Average, 1e-9)
		assert.InDelta(t, 0.8, insight.OP, 1e-9)
		assert.True(t, insight.HasOP)
		assert.Equal(t, 4, insight.Count)
	})

	t.Run("without_op", func(t *testing.T) {
		t.Parallel()

		insight := SentimentInsight([]thread.Comment{{ID: "a", ParentID: "t1_x", Sentiment: -1}})
		assert.InDelta(t, 0, insight.Average, 1e-9)
		assert.InDelta(t, 0.5, insight.OP, 1e-9)
	})
}

func TestBiasProfile(t *testing.T) {
	t.Parallel()

	profile := BiasProfile(sampleThread())
	assert.Equal(t, 2, profile.Count)
	require.Len(t, profile.Averages, 2)

	assert.Equal(t, "framing", profile.Averages[0].Label)
	assert.InDelta(t, 0.21, profile.Averages[0].Average, 1e-9)
	assert.Equal(t, "loaded", profile.Averages[1].Label)
	assert.InDelta(t, 0.05, profile.Averages[1].Average, 1e-9)

	assert.InDelta(t, 0.21, profile.Scale.Percentile90, 1e-9)
	assert.Equal(t, scalemath.BandHigh, profile.Scale.Band)
	assert.False(t, profile.Averages[0].AboveScale)
}

func TestBiasProfile_ScenarioHighBand(t *testing.T) {
	t.Parallel()

	profile := BiasProfile([]thread.Comment{
		{ID: "a", Bias: thread.NewBias(map[string]float64{"label_x": 0.001, "label_y": 0.3})},
	})

	assert.Equal(t, scalemath.BandHigh, profile.Scale.Band)
	assert.InDelta(t, 0.4615, profile.Scale.ScaleMax, 1e-4)
}

func TestBiasProfile_NoBias(t *testing.T) {
	t.Parallel()

	profile := BiasProfile([]thread.Comment{{ID: "a"}, {ID: "b"}})
	assert.True(t, profile.Empty())
	assert.Empty(t, profile.Averages)
	assert.InDelta(t, scalemath.MinScaleMax, profile.Scale.ScaleMax, 1e-12)
}

func TestSentimentDistribution(t *testing.T) {
	t.Parallel()

	input := sampleThread()
	input[1].SentimentLabel = thread.LabelNegative

	dist := SentimentDistribution(input)
	require.Len(t, dist, 3)

	assert.Equal(t, 1, dist[0].Counts.Positive)
	assert.Equal(t, 1, dist[1].Counts.Get(thread.LabelNegative))
	assert.Equal(t, 1, dist[1].Counts.Get(thread.LabelPositive))
	assert.Equal(t, 2, dist[1].Counts.Total())
	assert.Equal(t, 1, dist[2].Counts.Neutral)
}

func TestAnalyze(t *testing.T) {
	t.Parallel()

	analysis := Analyze(sampleThread())
	assert.Len(t, analysis.Bins, 3)
	assert.NotNil(t, analysis.Highest.Global)
	assert.Equal(t, 2, analysis.Profile.Count)
	assert.Len(t, analysis.Distribution, 3)
}
