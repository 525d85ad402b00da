package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/Sumatoshi-tech/threadlens/pkg/aggregate"
	"github.com/Sumatoshi-tech/threadlens/pkg/chartspec"
	"github.com/Sumatoshi-tech/threadlens/pkg/thread"
)

const (
	headerTitle         = "THREAD SENTIMENT"
	sectionSummary      = "Summary"
	sectionDistribution = "Distribution"
	sectionBias         = "Bias Profile"
	sectionBins         = "Bins"
	sectionNotices      = "Notices"
	indent              = "  "
	barWidth            = 20
	labelWidth          = 20
	excerptRunes        = 40
	defaultMaxBins      = 15
	percentFactor       = 100
	toneGoodThreshold   = 0.6
	toneFairThreshold   = 0.4
)

// Summary is the input of Write.
type Summary struct {
	Title    string
	URL      string
	Analysis aggregate.Analysis
	Notices  []string
	// MaxBins caps the bin table; zero means the default.
	MaxBins int
}

// Write prints the summary to w.
func Write(w io.Writer, s Summary, cfg Config) error {
	var sb strings.Builder

	right := humanize.Comma(int64(s.Analysis.Insight.Count)) + " comments"
	sb.WriteString(DrawHeader(headerTitle, right, cfg.Width))
	sb.WriteString("\n\n")

	writeSummary(&sb, cfg, s)
	writeDistribution(&sb, cfg, s.Analysis.Distribution)
	writeBias(&sb, cfg, s.Analysis)
	writeBins(&sb, cfg, s)
	writeNotices(&sb, cfg, s.Notices)

	if _, err := io.WriteString(w, sb.String()); err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	return nil
}

func writeSection(sb *strings.Builder, cfg Config, title string) {
	sb.WriteString(indent + cfg.Colorize(title, ToneBlue) + "\n")
	sb.WriteString(indent + DrawSeparator(cfg.Width-len(indent)*2) + "\n")
}

func writeSummary(sb *strings.Builder, cfg Config, s Summary) {
	writeSection(sb, cfg, sectionSummary)

	if s.Title != "" {
		fmt.Fprintf(sb, "%s%-*s %s\n", indent, labelWidth, "Thread", s.Title)
	}

	if s.URL != "" {
		fmt.Fprintf(sb, "%s%-*s %s\n", indent, labelWidth, "URL", s.URL)
	}

	insight := s.Analysis.Insight
	fmt.Fprintf(sb, "%s%-*s %s\n", indent, labelWidth, "Average Sentiment", sentimentBar(cfg, insight.Average))

	if insight.HasOP {
		fmt.Fprintf(sb, "%s%-*s %s\n", indent, labelWidth, "Original Post", sentimentBar(cfg, insight.OP))
	}

	fmt.Fprintf(sb, "%s%-*s %s\n", indent, labelWidth, "Bins", humanize.Comma(int64(len(s.Analysis.Bins))))
	sb.WriteString("\n")
}

func writeDistribution(sb *strings.Builder, cfg Config, dist []aggregate.BinDistribution) {
	var total aggregate.Counts

	for _, d := range dist {
		total.Negative += d.Counts.Negative
		total.Neutral += d.Counts.Neutral
		total.Positive += d.Counts.Positive
	}

	if total.Total() == 0 {
		return
	}

	writeSection(sb, cfg, sectionDistribution)

	for i := len(thread.Labels) - 1; i >= 0; i-- {
		label := thread.Labels[i]
		count := total.Get(label)
		pct := float64(count) / float64(total.Total())

		line := fmt.Sprintf("%s%s %s %3.0f%%  (%s)",
			indent, PadRight(string(label), labelWidth-1), DrawProgressBar(pct, barWidth),
			pct*percentFactor, humanize.Comma(int64(count)))
		sb.WriteString(cfg.Colorize(line, labelTone(label)) + "\n")
	}

	sb.WriteString("\n")
}

func writeBias(sb *strings.Builder, cfg Config, analysis aggregate.Analysis) {
	writeSection(sb, cfg, sectionBias)

	profile := analysis.Profile
	if profile.Empty() {
		sb.WriteString(indent + cfg.Colorize(chartspec.NoBiasText, ToneGray) + "\n\n")

		return
	}

	for _, avg := range profile.Averages {
		tone := ToneNone
		if avg.AboveScale {
			tone = ToneRed
		}

		fmt.Fprintf(sb, "%s%-*s %s\n", indent, labelWidth, avg.Label,
			cfg.Colorize(fmt.Sprintf("%.2e", avg.Average), tone))
	}

	if hit := analysis.Highest.Global; hit != nil {
		fmt.Fprintf(sb, "%s%-*s %s\n", indent, labelWidth, "Highest Bias",
			cfg.Colorize(fmt.Sprintf("%s: %s (%.2e)", aggregate.AuthorName(hit.Author), hit.Label, hit.Value), ToneRed))
	}

	sb.WriteString("\n")
}

func writeBins(sb *strings.Builder, cfg Config, s Summary) {
	bins := s.Analysis.Bins
	if len(bins) == 0 {
		return
	}

	limit := s.MaxBins
	if limit <= 0 {
		limit = defaultMaxBins
	}

	writeSection(sb, cfg, sectionBins)

	tbl := table.NewWriter()
	tbl.SetStyle(table.StyleLight)
	tbl.Style().Options.DrawBorder = false
	tbl.Style().Options.SeparateColumns = false
	tbl.Style().Options.SeparateRows = false
	tbl.Style().Format.Footer = text.FormatDefault
	tbl.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignRight},
		{Number: 3, Align: text.AlignRight},
	})

	tbl.AppendHeader(table.Row{"Author", "Comments", "Avg", "Top Bias", "Excerpt"})

	for i := range bins[:min(limit, len(bins))] {
		bin := &bins[i]
		avg := bin.AverageSentiment()

		author := aggregate.AuthorName(bin.RepresentativeAuthor)
		if bin.ContainsThreadRoot {
			author += " (OP)"
		}

		tbl.AppendRow(table.Row{
			Truncate(author, labelWidth),
			humanize.Comma(int64(bin.Count)),
			cfg.Colorize(fmt.Sprintf("%+.2f", avg), labelTone(thread.LabelFor(avg))),
			chartspec.FormatBias(bin.RepresentativeBias),
			chartspec.Excerpt(strings.Join(strings.Fields(bin.RepresentativeBody), " "), excerptRunes),
		})
	}

	if len(bins) > limit {
		tbl.AppendFooter(table.Row{fmt.Sprintf("... and %s more", humanize.Comma(int64(len(bins)-limit)))})
	}

	for _, line := range strings.Split(tbl.Render(), "\n") {
		sb.WriteString(indent + line + "\n")
	}

	sb.WriteString("\n")
}

func writeNotices(sb *strings.Builder, cfg Config, notices []string) {
	if len(notices) == 0 {
		return
	}

	writeSection(sb, cfg, sectionNotices)

	for _, n := range notices {
		sb.WriteString(indent + cfg.Colorize(n, ToneYellow) + "\n")
	}

	sb.WriteString("\n")
}

// sentimentBar renders a normalized sentiment in [0, 1].
func sentimentBar(cfg Config, v float64) string {
	bar := fmt.Sprintf("[%s] %.2f", DrawProgressBar(v, barWidth), v)

	return cfg.Colorize(bar, scoreTone(v))
}

func scoreTone(v float64) Tone {
	switch {
	case v >= toneGoodThreshold:
		return ToneGreen
	case v > toneFairThreshold:
		return ToneYellow
	default:
		return ToneRed
	}
}

func labelTone(label thread.SentimentLabel) Tone {
	switch label {
	case thread.LabelPositive:
		return ToneGreen
	case thread.LabelNegative:
		return ToneRed
	default:
		return ToneYellow
	}
}
