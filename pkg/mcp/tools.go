package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Sumatoshi-tech/threadlens/pkg/aggregate"
	"github.com/Sumatoshi-tech/threadlens/pkg/analysis"
	"github.com/Sumatoshi-tech/threadlens/pkg/chartspec"
	"github.com/Sumatoshi-tech/threadlens/pkg/persist"
	"github.com/Sumatoshi-tech/threadlens/pkg/progressive"
	"github.com/Sumatoshi-tech/threadlens/pkg/report"
	"github.com/Sumatoshi-tech/threadlens/pkg/thread"
)

// Tool names.
const (
	ToolNameInsight  = "threadlens_insight"
	ToolNameSnapshot = "threadlens_snapshot"
	ToolNameDetect   = "threadlens_detect"
)

const reportWidth = 100

// Tool input errors.
var (
	ErrEmptyURL        = errors.New("url parameter is required and must not be empty")
	ErrEmptyPath       = errors.New("path parameter is required and must not be empty")
	ErrPathNotAbsolute = errors.New("path must be an absolute path")
	ErrAnalyzerMissing = errors.New("thread analysis is not configured")
)

// Analyzer runs one thread analysis. *analysis.Runner implements it.
type Analyzer interface {
	Run(ctx context.Context, threadURL string) (*analysis.Result, error)
}

// InsightInput is the input schema for threadlens_insight.
type InsightInput struct {
	URL          string `json:"url"                     jsonschema:"reddit thread URL"`
	IncludeSpecs bool   `json:"include_specs,omitempty" jsonschema:"also return the chart specs for every chart"`
}

// SnapshotInput is the input schema for threadlens_snapshot.
type SnapshotInput struct {
	Path         string `json:"path"                    jsonschema:"absolute path to a snapshot file"`
	IncludeSpecs bool   `json:"include_specs,omitempty" jsonschema:"also return the chart specs for every chart"`
}

// DetectInput is the input schema for threadlens_detect.
type DetectInput struct {
	URL string `json:"url" jsonschema:"page URL to classify"`
}

// ToolOutput wraps structured tool results.
type ToolOutput struct {
	Data any `json:"data"`
}

// Insight is the structured result of the insight and snapshot tools.
type Insight struct {
	URL        string             `json:"url"`
	Title      string             `json:"title,omitempty"`
	CapturedAt time.Time          `json:"capturedAt"`
	HasBias    bool               `json:"hasBias"`
	Warning    string             `json:"warning,omitempty"`
	Notices    []string           `json:"notices,omitempty"`
	Analysis   aggregate.Analysis `json:"analysis"`
	Specs      chartspec.Set      `json:"specs,omitempty"`
}

func (s *Server) handleInsight(ctx context.Context, _ *mcpsdk.CallToolRequest, input InsightInput) (*mcpsdk.CallToolResult, ToolOutput, error) {
	if input.URL == "" {
		return errorResult(ErrEmptyURL)
	}

	if s.analyzer == nil {
		return errorResult(ErrAnalyzerMissing)
	}

	threadURL, err := thread.Detect(input.URL).Require()
	if err != nil {
		return errorResult(err)
	}

	result, err := s.analyzer.Run(ctx, threadURL)
	if result == nil || result.Snapshot == nil {
		if err == nil {
			err = progressive.ErrSentimentPhase
		}

		return errorResult(err)
	}

	insight := newInsight(result.Snapshot, input.IncludeSpecs)
	if errors.Is(err, progressive.ErrBiasPhase) {
		insight.Warning = err.Error()
	}

	return reportResult(insight)
}

func handleSnapshot(_ context.Context, _ *mcpsdk.CallToolRequest, input SnapshotInput) (*mcpsdk.CallToolResult, ToolOutput, error) {
	if input.Path == "" {
		return errorResult(ErrEmptyPath)
	}

	if !filepath.IsAbs(input.Path) {
		return errorResult(fmt.Errorf("%w: %s", ErrPathNotAbsolute, input.Path))
	}

	snap, err := persist.ReadSnapshot(input.Path)
	if err != nil {
		return errorResult(fmt.Errorf("read snapshot: %w", err))
	}

	insight := newInsight(snap, input.IncludeSpecs)
	if !snap.HasBias() {
		insight.Warning = analysis.ErrBiasNotCaptured.Error()
	}

	return reportResult(insight)
}

func handleDetect(_ context.Context, _ *mcpsdk.CallToolRequest, input DetectInput) (*mcpsdk.CallToolResult, ToolOutput, error) {
	if input.URL == "" {
		return errorResult(ErrEmptyURL)
	}

	return jsonResult(thread.Detect(input.URL))
}

func newInsight(snap *persist.Snapshot, includeSpecs bool) Insight {
	insight := Insight{
		URL:        snap.URL,
		Title:      snap.Title,
		CapturedAt: snap.CapturedAt,
		HasBias:    snap.HasBias(),
		Notices:    snap.Notices,
		Analysis:   aggregate.Analyze(snap.Latest()),
	}

	if includeSpecs {
		insight.Specs = chartspec.Build(snap.Latest(), chartspec.BuildOptions{Title: snap.Title})
	}

	return insight
}

// reportResult returns the plain-text report for humans plus the JSON for
// clients that read structured content.
func reportResult(insight Insight) (*mcpsdk.CallToolResult, ToolOutput, error) {
	var buf bytes.Buffer

	err := report.Write(&buf, report.Summary{
		Title:    insight.Title,
		URL:      insight.URL,
		Analysis: insight.Analysis,
		Notices:  insight.Notices,
	}, report.Config{Width: reportWidth, NoColor: true})
	if err != nil {
		return errorResult(fmt.Errorf("render report: %w", err))
	}

	result, output, err := jsonResult(insight)
	if result != nil && !result.IsError {
		result.Content = append([]mcpsdk.Content{&mcpsdk.TextContent{Text: buf.String()}}, result.Content...)
	}

	return result, output, err
}

func errorResult(err error) (*mcpsdk.CallToolResult, ToolOutput, error) {
	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{&mcpsdk.TextContent{Text: err.Error()}},
		IsError: true,
	}, ToolOutput{}, nil
}

func jsonResult(value any) (*mcpsdk.CallToolResult, ToolOutput, error) {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return errorResult(fmt.Errorf("encode result: %w", err))
	}

	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{&mcpsdk.TextContent{Text: string(data)}},
	}, ToolOutput{Data: value}, nil
}
