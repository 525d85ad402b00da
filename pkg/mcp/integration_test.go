package mcp_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/threadlens/pkg/analysis"
	"github.com/Sumatoshi-tech/threadlens/pkg/mcp"
	"github.com/Sumatoshi-tech/threadlens/pkg/persist"
	"github.com/Sumatoshi-tech/threadlens/pkg/thread"
)

const threadURL = "https://www.reddit.com/r/golang/comments/abc123/a_thread/"

type stubFetcher struct {
	sentimentErr error
	biasErr      error
}

func sample() []thread.Comment {
	return []thread.Comment{
		{ID: "op", Author: "poster", Body: "post", Score: 5, Sentiment: 0.5},
		{ID: "a", ParentID: "t1_op", Author: "alice", Body: "reply", Score: 2, Sentiment: -0.4},
	}
}

func (f stubFetcher) Sentiment(context.Context, string) ([]thread.Comment, error) {
	if f.sentimentErr != nil {
		return nil, f.sentimentErr
	}

	return sample(), nil
}

func (f stubFetcher) Bias(_ context.Context, comments []thread.Comment) ([]thread.Comment, error) {
	if f.biasErr != nil {
		return nil, f.biasErr
	}

	out := thread.Clone(comments)
	for i := range out {
		out[i].Bias = thread.NewBias(map[string]float64{"loaded": 0.4})
	}

	return out, nil
}

func (f stubFetcher) Full(ctx context.Context, u string) ([]thread.Comment, error) {
	return f.Sentiment(ctx, u)
}

func connect(t *testing.T, deps mcp.ServerDeps) *mcpsdk.ClientSession {
	t.Helper()

	srv := mcp.NewServer(deps)
	clientTransport, serverTransport := mcpsdk.NewInMemoryTransports()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)

	serverDone := make(chan error, 1)

	go func() {
		serverDone <- srv.RunWithTransport(ctx, serverTransport)
	}()

	client := mcpsdk.NewClient(&mcpsdk.Implementation{Name: "test-client", Version: "1.0.0"}, nil)

	session, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = session.Close()

		cancel()
		<-serverDone
	})

	return session
}

func call(t *testing.T, session *mcpsdk.ClientSession, name string, args map[string]any) *mcpsdk.CallToolResult {
	t.Helper()

	result, err := session.CallTool(context.Background(), &mcpsdk.CallToolParams{Name: name, Arguments: args})
	require.NoError(t, err)
	require.NotNil(t, result)

	return result
}

func text(t *testing.T, result *mcpsdk.CallToolResult, i int) string {
	t.Helper()

	require.Greater(t, len(result.Content), i)

	tc, ok := result.Content[i].(*mcpsdk.TextContent)
	require.True(t, ok)

	return tc.Text
}

func TestServer_ToolsList(t *testing.T) {
	t.Parallel()

	session := connect(t, mcp.ServerDeps{})

	tools, err := session.ListTools(context.Background(), nil)
	require.NoError(t, err)

	names := make([]string, 0, len(tools.Tools))
	for _, tool := range tools.Tools {
		names = append(names, tool.Name)
		assert.NotNil(t, tool.InputSchema, "tool %s missing input schema", tool.Name)
	}

	assert.ElementsMatch(t, []string{mcp.ToolNameInsight, mcp.ToolNameSnapshot, mcp.ToolNameDetect}, names)
}

func TestServer_ListToolNames(t *testing.T) {
	t.Parallel()

	srv := mcp.NewServer(mcp.ServerDeps{})

	assert.Equal(t, []string{mcp.ToolNameDetect, mcp.ToolNameInsight, mcp.ToolNameSnapshot}, srv.ListToolNames())
}

func TestInsight(t *testing.T) {
	t.Parallel()

	session := connect(t, mcp.ServerDeps{Analyzer: &analysis.Runner{Fetcher: stubFetcher{}}})

	result := call(t, session, mcp.ToolNameInsight, map[string]any{"url": threadURL, "include_specs": true})
	require.False(t, result.IsError, text(t, result, 0))

	assert.Contains(t, text(t, result, 0), "THREAD SENTIMENT")
	assert.Contains(t, text(t, result, 1), `"hasBias": true`)
	assert.Contains(t, text(t, result, 1), `"specs"`)
}

func TestInsight_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		deps    mcp.ServerDeps
		url     string
		message string
	}{
		{name: "empty url", deps: mcp.ServerDeps{}, url: "", message: "url parameter is required"},
		{name: "no analyzer", deps: mcp.ServerDeps{}, url: threadURL, message: "not configured"},
		{
			name:    "not a thread",
			deps:    mcp.ServerDeps{Analyzer: &analysis.Runner{Fetcher: stubFetcher{}}},
			url:     "https://example.com/",
			message: thread.ErrInvalidThread.Error(),
		},
		{
			name:    "sentiment failure",
			deps:    mcp.ServerDeps{Analyzer: &analysis.Runner{Fetcher: stubFetcher{sentimentErr: errors.New("upstream down")}}},
			url:     threadURL,
			message: "upstream down",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			session := connect(t, tt.deps)
			result := call(t, session, mcp.ToolNameInsight, map[string]any{"url": tt.url})

			assert.True(t, result.IsError)
			assert.Contains(t, text(t, result, 0), tt.message)
		})
	}
}

func TestInsight_BiasFailureWarns(t *testing.T) {
	t.Parallel()

	session := connect(t, mcp.ServerDeps{Analyzer: &analysis.Runner{Fetcher: stubFetcher{biasErr: errors.New("model offline")}}})

	result := call(t, session, mcp.ToolNameInsight, map[string]any{"url": threadURL})
	require.False(t, result.IsError)
	assert.Contains(t, text(t, result, 1), "model offline")
	assert.Contains(t, text(t, result, 1), `"hasBias": false`)
}

func TestSnapshot(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "thread.json.lz4")
	require.NoError(t, persist.WriteSnapshot(path, &persist.Snapshot{URL: threadURL, Sentiment: sample()}))

	session := connect(t, mcp.ServerDeps{})

	result := call(t, session, mcp.ToolNameSnapshot, map[string]any{"path": path})
	require.False(t, result.IsError, text(t, result, 0))
	assert.Contains(t, text(t, result, 1), analysis.ErrBiasNotCaptured.Error())

	relative := call(t, session, mcp.ToolNameSnapshot, map[string]any{"path": "thread.json"})
	assert.True(t, relative.IsError)
	assert.Contains(t, text(t, relative, 0), "absolute path")

	missing := call(t, session, mcp.ToolNameSnapshot, map[string]any{"path": filepath.Join(t.TempDir(), "none.json")})
	assert.True(t, missing.IsError)
}

func TestDetect(t *testing.T) {
	t.Parallel()

	session := connect(t, mcp.ServerDeps{})

	result := call(t, session, mcp.ToolNameDetect, map[string]any{"url": threadURL})
	require.False(t, result.IsError)
	assert.Contains(t, text(t, result, 0), `"isValidThread": true`)

	other := call(t, session, mcp.ToolNameDetect, map[string]any{"url": "https://www.reddit.com/r/golang/"})
	assert.Contains(t, text(t, other, 0), `"isValidThread": false`)
}
