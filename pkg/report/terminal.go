// Package report renders a thread analysis as a colored terminal summary.
package report

import (
	"os"
	"strconv"
	"strings"

	"github.com/fatih/color"
)

// Width bounds.
const (
	DefaultWidth = 80
	MinWidth     = 60
	MaxWidth     = 120
)

// Tone selects a terminal color.
type Tone int

// Tones.
const (
	ToneNone Tone = iota
	ToneGreen
	ToneYellow
	ToneRed
	ToneBlue
	ToneGray
)

var toneAttrs = map[Tone]color.Attribute{
	ToneGreen:  color.FgGreen,
	ToneYellow: color.FgYellow,
	ToneRed:    color.FgRed,
	ToneBlue:   color.FgBlue,
	ToneGray:   color.FgHiBlack,
}

// Config holds terminal rendering configuration.
type Config struct {
	Width   int
	NoColor bool
}

// NewConfig reads COLUMNS and NO_COLOR from the environment.
func NewConfig() Config {
	return Config{
		Width:   DetectWidth(),
		NoColor: os.Getenv("NO_COLOR") != "",
	}
}

// DetectWidth returns COLUMNS clamped to [MinWidth, MaxWidth], or
// DefaultWidth when unset or invalid.
func DetectWidth() int {
	width, err := strconv.Atoi(os.Getenv("COLUMNS"))
	if err != nil || width <= 0 {
		return DefaultWidth
	}

	return min(max(width, MinWidth), MaxWidth)
}

// Colorize wraps text in the color for tone.
func (c Config) Colorize(text string, tone Tone) string {
	attr, ok := toneAttrs[tone]
	if !ok || c.NoColor {
		return text
	}

	painter := color.New(attr)
	painter.EnableColor()

	return painter.Sprint(text)
}

// Box drawing characters.
const (
	boxHorizontal       = "─"
	boxHeavyHorizontal  = "━"
	boxHeavyVertical    = "┃"
	boxHeavyTopLeft     = "┏"
	boxHeavyTopRight    = "┓"
	boxHeavyBottomLeft  = "┗"
	boxHeavyBottomRight = "┛"
	progressFilled      = "█"
	progressEmpty       = "░"
	ellipsis            = "..."
	headerPadding       = 1
)

// DrawSeparator draws a thin horizontal line.
func DrawSeparator(width int) string {
	if width <= 0 {
		return ""
	}

	return strings.Repeat(boxHorizontal, width)
}

// DrawHeader draws a heavy-bordered title box with optional right-aligned text.
func DrawHeader(title, right string, width int) string {
	titleLen, rightLen := runeLen(title), runeLen(right)
	width = max(width, titleLen+rightLen+4+headerPadding*2)

	inner := width - 2
	content := inner - headerPadding*2
	gap := max(content-titleLen-rightLen, 1)
	pad := strings.Repeat(" ", headerPadding)

	var sb strings.Builder

	sb.WriteString(boxHeavyTopLeft + strings.Repeat(boxHeavyHorizontal, inner) + boxHeavyTopRight + "\n")
	sb.WriteString(boxHeavyVertical + pad + title + strings.Repeat(" ", gap) + right + pad + boxHeavyVertical + "\n")
	sb.WriteString(boxHeavyBottomLeft + strings.Repeat(boxHeavyHorizontal, inner) + boxHeavyBottomRight)

	return sb.String()
}

// DrawProgressBar draws a bar of width cells filled to value in [0, 1].
func DrawProgressBar(value float64, width int) string {
	value = min(max(value, 0), 1)
	filled := int(value * float64(width))

	return strings.Repeat(progressFilled, filled) + strings.Repeat(progressEmpty, width-filled)
}

// Truncate shortens s to maxWidth runes, ending in "..." when cut.
func Truncate(s string, maxWidth int) string {
	runes := []rune(s)
	if len(runes) <= maxWidth {
		return s
	}

	if maxWidth <= len(ellipsis) {
		return strings.Repeat(".", max(maxWidth, 0))
	}

	return string(runes[:maxWidth-len(ellipsis)]) + ellipsis
}

// PadRight pads s with spaces to width runes.
func PadRight(s string, width int) string {
	if n := runeLen(s); n < width {
		return s + strings.Repeat(" ", width-n)
	}

	return s
}

func runeLen(s string) int {
	return len([]rune(s))
}
