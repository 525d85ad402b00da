package chartspec

import "github.com/Sumatoshi-tech/threadlens/pkg/scalemath"

// Marker colors.
const (
	ColorAverage     = "pink"
	ColorOP          = "cyan"
	ColorCategory    = "purple"
	ColorOutOfRange  = "orange"
	ColorHighlight   = "blue"
	ColorPlainBorder = "white"
	ColorText        = "black"
	ColorMinBias     = "lightblue"
)

// Outline widths.
const (
	BarHighlightWidth      = 3.0
	SunburstHighlightWidth = 1.0
	PlainBorderWidth       = 0.5
)

// SentimentScale is the red-yellow-green gradient over [-1, 1].
func SentimentScale() *ColorScale {
	return &ColorScale{
		Stops: []ColorStop{
			{Offset: 0, Color: "red"},
			{Offset: 0.5, Color: "yellow"},
			{Offset: 1, Color: "green"},
		},
		Min: scalemath.SentimentMin,
		Max: scalemath.SentimentMax,
	}
}

// unitSentimentScale is SentimentScale over the normalized [0, 1] domain.
func unitSentimentScale() *ColorScale {
	scale := SentimentScale()
	scale.Min, scale.Max = 0, 1

	return scale
}

var biasStops = map[scalemath.Band][]ColorStop{
	scalemath.BandLow: {
		{Offset: 0, Color: "lightblue"},
		{Offset: 1, Color: "#87CEEB"},
	},
	scalemath.BandMedium: {
		{Offset: 0, Color: "lightblue"},
		{Offset: 0.7, Color: "#E0F6FF"},
		{Offset: 0.85, Color: "#FFE4B5"},
		{Offset: 1, Color: "#FFA07A"},
	},
	scalemath.BandHigh: {
		{Offset: 0, Color: "lightblue"},
		{Offset: 0.5, Color: "#E0F6FF"},
		{Offset: 0.7, Color: "#FFE4B5"},
		{Offset: 0.85, Color: "#FFA07A"},
		{Offset: 1, Color: "#FF6347"},
	},
	scalemath.BandExtreme: {
		{Offset: 0, Color: "lightblue"},
		{Offset: 0.3, Color: "#E0F6FF"},
		{Offset: 0.5, Color: "#FFE4B5"},
		{Offset: 0.7, Color: "#FFA07A"},
		{Offset: 0.85, Color: "#FF6347"},
		{Offset: 1, Color: "red"},
	},
}

// BiasScale returns the gradient for a color band over [0, 1].
func BiasScale(band scalemath.Band) *ColorScale {
	stops, ok := biasStops[band]
	if !ok {
		stops = biasStops[scalemath.BandLow]
	}

	return &ColorScale{Stops: append([]ColorStop(nil), stops...), Min: 0, Max: 1}
}

type bandStyle struct {
	text  string
	color string
}

var bandStyles = map[scalemath.Band]bandStyle{
	scalemath.BandLow:     {text: "Low Range", color: "#4682B4"},
	scalemath.BandMedium:  {text: "Med Range", color: "#FFA07A"},
	scalemath.BandHigh:    {text: "High Range", color: "#FF6347"},
	scalemath.BandExtreme: {text: "High Range", color: "red"},
}

// LabelColors are the stacked-bar fills per sentiment label.
var LabelColors = map[string]string{
	"negative": "#d62728",
	"neutral":  "#bdbdbd",
	"positive": "#2ca02c",
}
