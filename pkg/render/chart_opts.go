package render

import (
	"github.com/go-echarts/go-echarts/v2/opts"
)

// Style holds chart dimensions.
type Style struct {
	Width        string
	Height       string
	LegendWidth  string
	LegendHeight string
}

// DefaultStyle returns the default chart dimensions.
func DefaultStyle() Style {
	return Style{
		Width:        "100%",
		Height:       "420px",
		LegendWidth:  "220px",
		LegendHeight: "360px",
	}
}

// ChartOpts provides themed go-echarts options.
type ChartOpts struct {
	theme ThemeConfig
}

// NewChartOpts creates ChartOpts for theme.
func NewChartOpts(theme Theme) *ChartOpts {
	return &ChartOpts{theme: GetThemeConfig(theme)}
}

// Init returns initialization options bound to a stable chart id.
func (c *ChartOpts) Init(chartID, width, height string) opts.Initialization {
	return opts.Initialization{
		ChartID:         chartID,
		Width:           width,
		Height:          height,
		BackgroundColor: c.theme.ChartBackground,
	}
}

// Title returns title options with themed text colors.
func (c *ChartOpts) Title(title, subtitle string) opts.Title {
	return opts.Title{
		Title:         title,
		Subtitle:      subtitle,
		Left:          "center",
		TitleStyle:    &opts.TextStyle{Color: c.theme.ChartText},
		SubtitleStyle: &opts.TextStyle{Color: c.theme.ChartTextMuted},
	}
}

// Legend returns legend options.
func (c *ChartOpts) Legend() opts.Legend {
	return opts.Legend{
		Show:      opts.Bool(true),
		Top:       "8%",
		Left:      "center",
		TextStyle: &opts.TextStyle{Color: c.theme.ChartTextMuted},
	}
}

// CategoryXAxis returns a category x-axis.
func (c *ChartOpts) CategoryXAxis(labels []string, rotate float64, show bool) opts.XAxis {
	return opts.XAxis{
		Type: "category",
		Data: labels,
		Show: opts.Bool(show),
		AxisLabel: &opts.AxisLabel{
			Rotate:   rotate,
			Interval: "0",
			Color:    c.theme.ChartTextMuted,
		},
		AxisLine: &opts.AxisLine{LineStyle: &opts.LineStyle{Color: c.theme.ChartAxis}},
	}
}

// ValueYAxis returns a value y-axis.
func (c *ChartOpts) ValueYAxis(name string) opts.YAxis {
	return opts.YAxis{
		Name:      name,
		AxisLabel: &opts.AxisLabel{Color: c.theme.ChartTextMuted},
		AxisLine:  &opts.AxisLine{LineStyle: &opts.LineStyle{Color: c.theme.ChartAxis}},
		SplitLine: &opts.SplitLine{
			Show:      opts.Bool(true),
			LineStyle: &opts.LineStyle{Color: c.theme.ChartGrid},
		},
	}
}

// Grid returns grid options with standard margins.
func (c *ChartOpts) Grid() opts.Grid {
	return opts.Grid{
		Top:          "18%",
		Bottom:       "18%",
		Left:         "5%",
		Right:        "5%",
		ContainLabel: opts.Bool(true),
	}
}

// Tooltip returns tooltip options.
func (c *ChartOpts) Tooltip(trigger string) opts.Tooltip {
	return opts.Tooltip{Show: opts.Bool(true), Trigger: trigger}
}

// TextColor returns the primary chart text color.
func (c *ChartOpts) TextColor() string {
	return c.theme.ChartText
}
