package render

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/Sumatoshi-tech/threadlens/pkg/chartspec"
)

type rgb struct {
	r, g, b float64
}

// CSS names used by the chart palettes.
var namedColors = map[string]rgb{
	"black":     {0, 0, 0},
	"blue":      {0, 0, 255},
	"cyan":      {0, 255, 255},
	"green":     {0, 128, 0},
	"lightblue": {173, 216, 230},
	"orange":    {255, 165, 0},
	"pink":      {255, 192, 203},
	"purple":    {128, 0, 128},
	"red":       {255, 0, 0},
	"white":     {255, 255, 255},
	"yellow":    {255, 255, 0},
}

func parseColor(name string) (rgb, bool) {
	name = strings.ToLower(strings.TrimSpace(name))

	if c, ok := namedColors[name]; ok {
		return c, true
	}

	if len(name) != len("#rrggbb") || name[0] != '#' {
		return rgb{}, false
	}

	v, err := strconv.ParseUint(name[1:], 16, 32)
	if err != nil {
		return rgb{}, false
	}

	return rgb{float64(v >> 16 & 0xff), float64(v >> 8 & 0xff), float64(v & 0xff)}, true
}

func (c rgb) hex() string {
	clamp := func(v float64) int {
		return int(math.Round(math.Max(0, math.Min(255, v))))
	}

	return fmt.Sprintf("#%02x%02x%02x", clamp(c.r), clamp(c.g), clamp(c.b))
}

// ColorAt maps v through scale and returns a hex color. Values outside
// [Min, Max] clamp to the end stops; NaN maps to the midpoint.
func ColorAt(scale *chartspec.ColorScale, v float64) string {
	if scale == nil || len(scale.Stops) == 0 {
		return ""
	}

	t := 0.5
	if span := scale.Max - scale.Min; span > 0 && !math.IsNaN(v) {
		t = math.Max(0, math.Min(1, (v-scale.Min)/span))
	}

	stops := scale.Stops
	if t <= stops[0].Offset {
		return normalizeColor(stops[0].Color)
	}

	for i := 1; i < len(stops); i++ {
		if t > stops[i].Offset {
			continue
		}

		lo, hi := stops[i-1], stops[i]

		a, okA := parseColor(lo.Color)
		b, okB := parseColor(hi.Color)

		if !okA || !okB || hi.Offset <= lo.Offset {
			return hi.Color
		}

		f := (t - lo.Offset) / (hi.Offset - lo.Offset)

		return rgb{
			r: a.r + (b.r-a.r)*f,
			g: a.g + (b.g-a.g)*f,
			b: a.b + (b.b-a.b)*f,
		}.hex()
	}

	return normalizeColor(stops[len(stops)-1].Color)
}

func normalizeColor(name string) string {
	if c, ok := parseColor(name); ok {
		return c.hex()
	}

	return name
}
