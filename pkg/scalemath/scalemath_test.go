package scalemath

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogBias(t *testing.T) {
	t.Parallel()

	assert.InDelta(t, -4.0, LogBias(0), 1e-9)
	assert.InDelta(t, LogFloor, LogBias(-1), 1e-9)
	assert.InDelta(t, LogFloor, LogBias(math.NaN()), 1e-9)
	assert.InDelta(t, math.Log10(1.0001), LogBias(1), 1e-9)
}

func TestPercentile(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		values   []float64
		p        float64
		expected float64
	}{
		{name: "empty", values: nil, p: 0.9, expected: 0},
		{name: "single", values: []float64{0.3}, p: 0.9, expected: 0.3},
		{name: "five_uses_max", values: []float64{0.1, 0.2, 0.3, 0.4, 0.5}, p: 0.1, expected: 0.5},
		{name: "six_floor_index", values: []float64{1, 2, 3, 4, 5, 6}, p: 0.5, expected: 4},
		{name: "ten_p90", values: []float64{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, p: 0.9, expected: 9},
		{name: "p_one_clamped", values: []float64{1, 2, 3, 4, 5, 6}, p: 1, expected: 6},
		{name: "negative_p_clamped", values: []float64{1, 2, 3, 4, 5, 6}, p: -2, expected: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.InDelta(t, tt.expected, Percentile(tt.values, tt.p), 1e-9)
		})
	}
}

func TestPercentile_SmallSampleFallback(t *testing.T) {
	t.Parallel()

	samples := [][]float64{
		{0.2},
		{0.001, 0.3},
		{0, 0, 0.7},
		{0.1, 0.1, 0.2, 0.9},
		{0.05, 0.06, 0.07, 0.08, 0.5},
	}

	for _, s := range samples {
		assert.InDelta(t, s[len(s)-1], Percentile(s, P90), 1e-12)
	}
}

func TestScaleMaxFromPercentile90(t *testing.T) {
	t.Parallel()

	assert.InDelta(t, 0.3/0.65, ScaleMaxFromPercentile90(0.3, 0), 1e-9)
	assert.InDelta(t, 0.5, ScaleMaxFromPercentile90(0.25, 0.5), 1e-9)
	assert.InDelta(t, MinScaleMax, ScaleMaxFromPercentile90(0, TargetFraction), 1e-12)
	assert.InDelta(t, MinScaleMax, ScaleMaxFromPercentile90(-1, TargetFraction), 1e-12)
	assert.InDelta(t, MinScaleMax, ScaleMaxFromPercentile90(math.Inf(1), TargetFraction), 1e-12)
	assert.InDelta(t, MinScaleMax, ScaleMaxFromPercentile90(math.NaN(), TargetFraction), 1e-12)
}

func TestScaleMaxFromPercentile90_StrictlyIncreasing(t *testing.T) {
	t.Parallel()

	prev := ScaleMaxFromPercentile90(1e-9, TargetFraction)

	for p := 1e-8; p < 10; p *= 1.7 {
		cur := ScaleMaxFromPercentile90(p, TargetFraction)
		require.Greater(t, cur, prev, "p90=%g", p)

		prev = cur
	}
}

func TestColorBand(t *testing.T) {
	t.Parallel()

	tests := []struct {
		p90      float64
		expected Band
	}{
		{p90: 0, expected: BandLow},
		{p90: 0.01, expected: BandLow},
		{p90: 0.011, expected: BandMedium},
		{p90: 0.1, expected: BandMedium},
		{p90: 0.3, expected: BandHigh},
		{p90: 0.5, expected: BandHigh},
		{p90: 0.51, expected: BandExtreme},
		{p90: math.NaN(), expected: BandLow},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, ColorBand(tt.p90), "p90=%g", tt.p90)
	}
}

func TestNormalize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		v        float64
		lo, hi   float64
		expected float64
		rng      Range
	}{
		{name: "middle", v: 0, lo: -1, hi: 1, expected: 0.5, rng: InRange},
		{name: "low_end", v: -1, lo: -1, hi: 1, expected: 0, rng: InRange},
		{name: "below", v: -3, lo: -1, hi: 1, expected: 0, rng: Below},
		{name: "above", v: 3, lo: -1, hi: 1, expected: 1, rng: Above},
		{name: "degenerate", v: 3, lo: 1, hi: 1, expected: 0.5, rng: InRange},
		{name: "nan_value", v: math.NaN(), lo: 0, hi: 1, expected: 0.5, rng: InRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, rng := Normalize(tt.v, tt.lo, tt.hi)
			assert.InDelta(t, tt.expected, got, 1e-9)
			assert.Equal(t, tt.rng, rng)
		})
	}

	assert.Equal(t, "above", Above.String())
}

func TestNormalizeSentiment(t *testing.T) {
	t.Parallel()

	assert.InDelta(t, 0.75, NormalizeSentiment(0.5), 1e-9)
	assert.InDelta(t, 1.0, NormalizeSentiment(4), 1e-9)
	assert.InDelta(t, 0.0, NormalizeSentiment(-4), 1e-9)
}

func TestNewBiasScale_HighBand(t *testing.T) {
	t.Parallel()

	scale := NewBiasScale([]float64{0.3, 0.001})

	assert.InDelta(t, 0.3, scale.Percentile90, 1e-9)
	assert.InDelta(t, 0.4615, scale.ScaleMax, 1e-4)
	assert.Equal(t, BandHigh, scale.Band)
	assert.True(t, scale.Exceeds(0.5))
	assert.False(t, scale.Exceeds(0.3))
}

func TestNewBiasScale_Empty(t *testing.T) {
	t.Parallel()

	scale := NewBiasScale(nil)

	assert.InDelta(t, 0, scale.Percentile90, 1e-12)
	assert.InDelta(t, MinScaleMax, scale.ScaleMax, 1e-12)
	assert.Equal(t, BandLow, scale.Band)

	axis := scale.LogAxis()
	assert.InDelta(t, -4.0, axis.Min, 1e-9)
	assert.Greater(t, axis.Span(), 0.0)
}

func TestNewBiasScale_IgnoresNonFinite(t *testing.T) {
	t.Parallel()

	values := []float64{math.NaN(), 0.2, math.Inf(1)}
	scale := NewBiasScale(values)

	assert.InDelta(t, 0.2, scale.Percentile90, 1e-9)
	assert.True(t, math.IsNaN(values[0]), "input must not be modified")
}
