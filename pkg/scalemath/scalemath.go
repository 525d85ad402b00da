// Package scalemath provides the numeric scaling used to map bias and
// sentiment values onto chart axes and color scales.
//
// Every function returns a finite value for any input, so its results can
// be passed straight to a renderer.
package scalemath

import (
	"cmp"
	"math"
	"slices"
)

// MinBias is the floor added before taking a logarithm of a bias value.
// It anchors the bottom of the logarithmic bias axis.
const MinBias = 1e-4

// TargetFraction is the axis height at which the 90th percentile lands.
const TargetFraction = 0.65

// MinScaleMax is the scale maximum used when no positive percentile exists.
const MinScaleMax = 0.01

// P90 is the percentile used for outlier-resistant scaling.
const P90 = 0.9

// smallSample is the size at or below which percentiles fall back to the maximum.
const smallSample = 5

// LogFloor is the bottom of the logarithmic bias axis.
var LogFloor = math.Log10(MinBias)

// LogBias maps a bias probability onto the logarithmic axis. Negative and
// non-finite values are treated as zero.
func LogBias(v float64) float64 {
	if !finite(v) || v < 0 {
		v = 0
	}

	return math.Log10(v + MinBias)
}

// Percentile returns sorted[floor(len*p)] for a non-decreasing slice. For
// five or fewer values it returns the maximum. Returns 0 for an empty slice.
func Percentile(sorted []float64, p float64) float64 {
	count := len(sorted)
	if count == 0 {
		return 0
	}

	if count <= smallSample {
		return slices.Max(sorted)
	}

	if !finite(p) {
		p = 0
	}

	idx := clamp(int(math.Floor(float64(count)*p)), 0, count-1)

	return sorted[idx]
}

// ScaleMaxFromPercentile90 returns the axis maximum that places p90 at the
// target fraction of the axis. A target of zero or less uses TargetFraction.
// Non-positive or non-finite p90 yields MinScaleMax.
func ScaleMaxFromPercentile90(p90, target float64) float64 {
	if !finite(target) || target <= 0 {
		target = TargetFraction
	}

	if !finite(p90) || p90 <= 0 {
		return MinScaleMax
	}

	return p90 / target
}

// Band selects the color palette for a bias distribution.
type Band string

// Color bands.
const (
	BandLow     Band = "low"
	BandMedium  Band = "medium"
	BandHigh    Band = "high"
	BandExtreme Band = "extreme"
)

// Band thresholds on the 90th percentile.
const (
	lowCeiling    = 0.01
	mediumCeiling = 0.1
	highCeiling   = 0.5
)

// ColorBand classifies a 90th percentile value.
func ColorBand(p90 float64) Band {
	switch {
	case !finite(p90) || p90 <= lowCeiling:
		return BandLow
	case p90 <= mediumCeiling:
		return BandMedium
	case p90 <= highCeiling:
		return BandHigh
	default:
		return BandExtreme
	}
}

// Range reports where a value fell relative to a normalization domain.
type Range int

// Range positions.
const (
	InRange Range = iota
	Below
	Above
)

// String implements fmt.Stringer.
func (r Range) String() string {
	switch r {
	case Below:
		return "below"
	case Above:
		return "above"
	default:
		return "in-range"
	}
}

// Normalize maps v from [lo, hi] into [0, 1], pinning values outside the
// domain to the nearest end and reporting which side they fell on. A
// degenerate domain maps everything to 0.5.
func Normalize(v, lo, hi float64) (float64, Range) {
	if !finite(lo) || !finite(hi) || hi <= lo {
		return 0.5, InRange
	}

	switch {
	case math.IsNaN(v):
		return 0.5, InRange
	case v < lo:
		return 0, Below
	case v > hi:
		return 1, Above
	default:
		return (v - lo) / (hi - lo), InRange
	}
}

// Sentiment domain.
const (
	SentimentMin = -1.0
	SentimentMax = 1.0
)

// NormalizeSentiment maps a sentiment in [-1, 1] to [0, 1].
func NormalizeSentiment(s float64) float64 {
	v, _ := Normalize(s, SentimentMin, SentimentMax)

	return v
}

// BiasScale describes how a bias distribution maps onto the legend axis.
type BiasScale struct {
	Percentile90 float64 `json:"percentile90"`
	ScaleMax     float64 `json:"scaleMax"`
	Band         Band    `json:"colorBand"`
}

// NewBiasScale derives the scale for a set of bias values. The input is not
// modified. Non-finite values are ignored.
func NewBiasScale(values []float64) BiasScale {
	sorted := make([]float64, 0, len(values))

	for _, v := range values {
		if finite(v) {
			sorted = append(sorted, v)
		}
	}

	slices.Sort(sorted)

	p90 := Percentile(sorted, P90)

	return BiasScale{
		Percentile90: p90,
		ScaleMax:     ScaleMaxFromPercentile90(p90, TargetFraction),
		Band:         ColorBand(p90),
	}
}

// Axis is a closed interval on a chart axis.
type Axis struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Span returns Max - Min.
func (a Axis) Span() float64 {
	return a.Max - a.Min
}

// LogAxis returns the logarithmic bias axis for a scale maximum.
func (s BiasScale) LogAxis() Axis {
	return Axis{Min: LogFloor, Max: LogBias(s.ScaleMax)}
}

// Exceeds reports whether v lies above the scale maximum.
func (s BiasScale) Exceeds(v float64) bool {
	return v > s.ScaleMax
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func clamp[T cmp.Ordered](val, lo, hi T) T {
	return max(lo, min(val, hi))
}
