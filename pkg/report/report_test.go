package report_test

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/threadlens/pkg/aggregate"
	"github.com/Sumatoshi-tech/threadlens/pkg/chartspec"
	"github.com/Sumatoshi-tech/threadlens/pkg/report"
	"github.com/Sumatoshi-tech/threadlens/pkg/thread"
)

func plain() report.Config {
	return report.Config{Width: report.DefaultWidth, NoColor: true}
}

func TestDrawProgressBar(t *testing.T) {
	t.Parallel()

	tests := []struct {
		value float64
		want  string
	}{
		{value: 0, want: "░░░░░░░░░░"},
		{value: 0.7, want: "███████░░░"},
		{value: 1, want: "██████████"},
		{value: -3, want: "░░░░░░░░░░"},
		{value: 7, want: "██████████"},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.value), func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, report.DrawProgressBar(tt.value, 10))
		})
	}
}

func TestTruncate(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "short", report.Truncate("short", 10))
	assert.Equal(t, "abcd...", report.Truncate("abcdefghij", 7))
	assert.Equal(t, "..", report.Truncate("abcdefghij", 2))
	assert.Equal(t, "héllo", report.Truncate("héllo", 5))
}

func TestDrawHeader(t *testing.T) {
	t.Parallel()

	header := report.DrawHeader("TITLE", "right", 30)
	lines := strings.Split(header, "\n")

	require.Len(t, lines, 3)

	for _, line := range lines {
		assert.Equal(t, 30, len([]rune(line)))
	}

	assert.Contains(t, lines[1], "TITLE")
	assert.True(t, strings.HasSuffix(lines[1], "right ┃"))
}

func TestColorize(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "x", report.Config{NoColor: true}.Colorize("x", report.ToneRed))
	assert.Equal(t, "x", report.Config{}.Colorize("x", report.ToneNone))
	assert.Contains(t, report.Config{}.Colorize("x", report.ToneRed), "\x1b[31m")
}

func TestWrite(t *testing.T) {
	t.Parallel()

	comments := []thread.Comment{
		{ID: "op", Author: "poster", Body: "Original   post\nbody", Score: 5, Sentiment: 0.6, BinID: "op"},
		{ID: "a", ParentID: "t1_op", Author: "alice", Score: 2, Sentiment: -0.8, BinID: "a",
			Bias: thread.NewBias(map[string]float64{"framing": 0.4})},
		{ID: "b", ParentID: "t1_a", Author: "", Score: 1, Sentiment: 0, BinID: "a"},
	}

	var buf bytes.Buffer

	err := report.Write(&buf, report.Summary{
		Title:    "A thread",
		URL:      "https://www.reddit.com/r/golang/comments/abc/x/",
		Analysis: aggregate.Analyze(comments),
		Notices:  []string{"Bias analysis unavailable"},
	}, plain())
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "THREAD SENTIMENT")
	assert.Contains(t, out, "3 comments")
	assert.Contains(t, out, "A thread")
	assert.Contains(t, out, "poster (OP)")
	assert.Contains(t, out, "Original post body")
	assert.Contains(t, out, "framing")
	assert.Contains(t, out, "Bias analysis unavailable")
	assert.NotContains(t, out, "\x1b[")
}

func TestWrite_EmptyThread(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	require.NoError(t, report.Write(&buf, report.Summary{Analysis: aggregate.Analyze(nil)}, plain()))

	out := buf.String()
	assert.Contains(t, out, "0 comments")
	assert.Contains(t, out, chartspec.NoBiasText)
	assert.NotContains(t, out, "Distribution")
}

func TestWrite_TruncatesBins(t *testing.T) {
	t.Parallel()

	comments := make([]thread.Comment, 0, 4)
	for i := range 4 {
		id := fmt.Sprintf("c%d", i)
		comments = append(comments, thread.Comment{ID: id, Author: id, BinID: id})
	}

	var buf bytes.Buffer

	err := report.Write(&buf, report.Summary{Analysis: aggregate.Analyze(comments), MaxBins: 2}, plain())
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "... and 2 more")
}
