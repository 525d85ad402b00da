package render

import "fmt"

// Theme is a page color theme.
type Theme string

// Themes.
const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// ParseTheme maps a config value onto a Theme.
func ParseTheme(name string) (Theme, error) {
	switch Theme(name) {
	case ThemeLight, ThemeDark:
		return Theme(name), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownTheme, name)
	}
}

// ThemeConfig holds theme-specific styling values.
type ThemeConfig struct {
	// Page.
	Background string
	Surface    string
	Border     string

	// Text.
	TextPrimary string
	TextMuted   string

	// Accent and status.
	Accent      string
	Warning     string
	WarningSoft string
	Error       string
	ErrorSoft   string

	// Chart.
	ChartBackground string
	ChartGrid       string
	ChartAxis       string
	ChartText       string
	ChartTextMuted  string
}

// GetThemeConfig returns the configuration for theme. Unknown themes get
// the light palette.
func GetThemeConfig(theme Theme) ThemeConfig {
	if theme == ThemeDark {
		return darkTheme
	}

	return lightTheme
}

var lightTheme = ThemeConfig{
	Background: "#fafaf9", // stone-50.
	Surface:    "#ffffff",
	Border:     "#e7e5e4", // stone-200.

	TextPrimary: "#1c1917", // stone-900.
	TextMuted:   "#78716c", // stone-500.

	Accent:      "#ff4500", // reddit orange.
	Warning:     "#ca8a04",
	WarningSoft: "#fef9c3",
	Error:       "#dc2626",
	ErrorSoft:   "#fee2e2",

	ChartBackground: "transparent",
	ChartGrid:       "#e7e5e4",
	ChartAxis:       "#a8a29e",
	ChartText:       "#44403c",
	ChartTextMuted:  "#78716c",
}

var darkTheme = ThemeConfig{
	Background: "#0c0a09", // stone-950.
	Surface:    "#1c1917", // stone-900.
	Border:     "#44403c", // stone-700.

	TextPrimary: "#fafaf9",
	TextMuted:   "#a8a29e",

	Accent:      "#ff6a33",
	Warning:     "#eab308",
	WarningSoft: "#422006",
	Error:       "#ef4444",
	ErrorSoft:   "#450a0a",

	ChartBackground: "transparent",
	ChartGrid:       "#44403c",
	ChartAxis:       "#57534e",
	ChartText:       "#d6d3d1",
	ChartTextMuted:  "#a8a29e",
}
