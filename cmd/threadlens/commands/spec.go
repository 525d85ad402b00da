package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/sergi/go-diff/diffmatchpatch"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Sumatoshi-tech/threadlens/pkg/chartspec"
	"github.com/Sumatoshi-tech/threadlens/pkg/observability"
	"github.com/Sumatoshi-tech/threadlens/pkg/persist"
	"github.com/Sumatoshi-tech/threadlens/pkg/thread"
)

// Spec output formats.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Snapshot phases.
const (
	PhaseLatest    = "latest"
	PhaseSentiment = "sentiment"
	PhaseBias      = "bias"
)

// Spec command errors.
var (
	ErrUnknownFormat = errors.New("unknown spec format")
	ErrUnknownPhase  = errors.New("unknown snapshot phase")
	ErrNoBiasPhase   = errors.New("snapshot has no bias phase")
)

// NewSpecCommand creates the spec command.
func NewSpecCommand(globals *Globals) *cobra.Command {
	var (
		format string
		phase  string
		diff   bool
	)

	cmd := &cobra.Command{
		Use:   "spec <snapshot>",
		Short: "Print the chart specs of a saved snapshot",
		Long: `Print the declarative chart specs built from a snapshot. With --diff, print
how the specs changed between the sentiment phase and the bias phase.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv(cmd, globals, observability.ModeCLI)
			if err != nil {
				return err
			}
			defer e.close(cmd.Context())

			snap, err := persist.ReadSnapshot(args[0])
			if err != nil {
				return fmt.Errorf("read snapshot: %w", err)
			}

			if diff {
				return writePhaseDiff(e.out, snap, format)
			}

			comments, err := snapshotPhase(snap, phase)
			if err != nil {
				return err
			}

			text, err := encodeSpecs(chartspec.Build(comments, chartspec.BuildOptions{Title: snap.Title}), format)
			if err != nil {
				return err
			}

			_, err = io.WriteString(e.out, text)

			return err
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", FormatJSON, "output format: json or yaml")
	cmd.Flags().StringVar(&phase, "phase", PhaseLatest, "snapshot phase: latest, sentiment or bias")
	cmd.Flags().BoolVar(&diff, "diff", false, "diff the sentiment phase specs against the bias phase specs")

	return cmd
}

func snapshotPhase(snap *persist.Snapshot, phase string) ([]thread.Comment, error) {
	switch phase {
	case PhaseLatest, "":
		return snap.Latest(), nil
	case PhaseSentiment:
		return snap.Sentiment, nil
	case PhaseBias:
		if !snap.HasBias() {
			return nil, ErrNoBiasPhase
		}

		return snap.Bias, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownPhase, phase)
	}
}

// encodeSpecs renders a spec set. YAML goes through the JSON form so both
// formats share field names.
func encodeSpecs(set chartspec.Set, format string) (string, error) {
	data, err := json.MarshalIndent(set, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode specs: %w", err)
	}

	switch format {
	case FormatJSON, "":
		return string(data) + "\n", nil
	case FormatYAML:
		var generic any

		if err := json.Unmarshal(data, &generic); err != nil {
			return "", fmt.Errorf("encode specs: %w", err)
		}

		out, err := yaml.Marshal(generic)
		if err != nil {
			return "", fmt.Errorf("encode specs: %w", err)
		}

		return string(out), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

func writePhaseDiff(w io.Writer, snap *persist.Snapshot, format string) error {
	if !snap.HasBias() {
		return ErrNoBiasPhase
	}

	opts := chartspec.BuildOptions{Title: snap.Title}

	before, err := encodeSpecs(chartspec.Build(snap.Sentiment, opts), format)
	if err != nil {
		return err
	}

	after, err := encodeSpecs(chartspec.Build(snap.Bias, opts), format)
	if err != nil {
		return err
	}

	added, removed := 0, 0

	var sb strings.Builder

	for _, d := range lineDiff(before, after) {
		var (
			prefix string
			paint  *color.Color
		)

		switch d.Type {
		case diffmatchpatch.DiffInsert:
			prefix, paint = "+", color.New(color.FgGreen)
		case diffmatchpatch.DiffDelete:
			prefix, paint = "-", color.New(color.FgRed)
		case diffmatchpatch.DiffEqual:
			continue
		}

		for _, line := range strings.SplitAfter(d.Text, "\n") {
			if line == "" {
				continue
			}

			if d.Type == diffmatchpatch.DiffInsert {
				added++
			} else {
				removed++
			}

			sb.WriteString(paint.Sprint(prefix + strings.TrimSuffix(line, "\n")))
			sb.WriteString("\n")
		}
	}

	fmt.Fprintf(&sb, "%d line(s) added, %d line(s) removed between the sentiment and bias phases\n", added, removed)

	_, err = io.WriteString(w, sb.String())

	return err
}

func lineDiff(before, after string) []diffmatchpatch.Diff {
	dmp := diffmatchpatch.New()

	a, b, lines := dmp.DiffLinesToChars(before, after)
	diffs := dmp.DiffMain(a, b, false)

	return dmp.DiffCharsToLines(diffs, lines)
}
