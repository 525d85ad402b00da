package commands

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/Sumatoshi-tech/threadlens/pkg/backend"
	"github.com/Sumatoshi-tech/threadlens/pkg/persist"
	"github.com/Sumatoshi-tech/threadlens/pkg/thread"
)

const threadURL = "https://www.reddit.com/r/golang/comments/abc123/a_thread/"

const sentimentBody = `{"status":"success","data":[
	{"id":"op","parent_id":"","author":"poster","body":"the post","score":"12","sentiment":0.4},
	{"id":"a","parent_id":"t1_op","author":"alice","body":"a reply","score":3,"sentiment":-0.6},
	{"id":"b","parent_id":"t1_a","author":"bob","body":"another","score":1,"sentiment":0.05}
]}`

const biasBody = `{"status":"success","data":[
	{"id":"op","parent_id":"","author":"poster","body":"the post","score":"12","sentiment":0.4,"bias":{"framing":0.3,"loaded":0.02}},
	{"id":"a","parent_id":"t1_op","author":"alice","body":"a reply","score":3,"sentiment":-0.6,"bias":{"framing":0.7}}
]}`

type harness struct {
	dir    string
	config string
}

func newHarness(t *testing.T, biasStatus int) *harness {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc(backend.EndpointFast, func(rw http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(rw, sentimentBody)
	})
	mux.HandleFunc(backend.EndpointBias, func(rw http.ResponseWriter, _ *http.Request) {
		if biasStatus != http.StatusOK {
			rw.WriteHeader(biasStatus)

			return
		}

		_, _ = io.WriteString(rw, biasBody)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	dir := t.TempDir()
	config := filepath.Join(dir, "threadlens.yaml")

	body := "backend:\n  base_url: " + srv.URL + "\n" +
		"state:\n  dir: " + filepath.Join(dir, "state") + "\n" +
		"render:\n  output: " + filepath.Join(dir, "page.html") + "\n"
	require.NoError(t, os.WriteFile(config, []byte(body), 0o600))

	return &harness{dir: dir, config: config}
}

func (h *harness) run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer

	cmd := NewRootCommand()
	cmd.SetArgs(append([]string{"--config", h.config}, args...))
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)

	err := cmd.ExecuteContext(context.Background())

	return stdout.String(), stderr.String(), err
}

func (h *harness) path(name string) string {
	return filepath.Join(h.dir, name)
}

func readFile(t *testing.T, path string) string {
	t.Helper()

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	return string(data)
}

func TestAnalyze_WritesPageReportAndSnapshot(t *testing.T) {
	t.Parallel()

	h := newHarness(t, http.StatusOK)
	snapshot := h.path("thread.json.lz4")

	stdout, stderr, err := h.run(t, "analyze", threadURL, "--save", snapshot, "--no-color", "--theme", "dark")
	require.NoError(t, err)

	assert.Contains(t, stdout, "THREAD SENTIMENT")
	assert.Contains(t, stderr, "Page written to")

	page := readFile(t, h.path("page.html"))
	assert.Contains(t, page, "Thread analysis")
	assert.Contains(t, page, "dark")

	snap, err := persist.ReadSnapshot(snapshot)
	require.NoError(t, err)
	assert.Equal(t, threadURL, snap.URL)
	assert.True(t, snap.HasBias())
	assert.Len(t, snap.Sentiment, 3)

	target, err := persist.NewURLSlot(h.path("state")).Resolve()
	require.NoError(t, err)
	assert.Equal(t, thread.Target{URL: threadURL, IsValidThread: true}, target)
}

func TestAnalyze_BiasFailureStillWritesPage(t *testing.T) {
	t.Parallel()

	h := newHarness(t, http.StatusInternalServerError)

	stdout, stderr, err := h.run(t, "analyze", threadURL, "--no-color")
	require.NoError(t, err)

	assert.Contains(t, stderr, "bias phase failed")
	assert.Contains(t, stdout, "THREAD SENTIMENT")
	assert.FileExists(t, h.path("page.html"))
}

func TestAnalyze_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		args []string
		want error
	}{
		{name: "not a thread", args: []string{"analyze", "https://www.reddit.com/r/golang/"}, want: thread.ErrInvalidThread},
		{name: "missing argument", args: []string{"analyze"}},
		{name: "unknown theme", args: []string{"analyze", threadURL, "--theme", "sepia"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			h := newHarness(t, http.StatusOK)

			_, _, err := h.run(t, tt.args...)
			require.Error(t, err)

			if tt.want != nil {
				require.ErrorIs(t, err, tt.want)
			}
		})
	}
}

func TestDetectAndOpen(t *testing.T) {
	t.Parallel()

	h := newHarness(t, http.StatusOK)

	stdout, _, err := h.run(t, "open")
	require.NoError(t, err)
	assert.Contains(t, stdout, "This is not a Reddit thread page.")

	stdout, _, err = h.run(t, "detect", threadURL)
	require.NoError(t, err)
	assert.Equal(t, "thread: "+threadURL+"\n", stdout)

	stdout, _, err = h.run(t, "open", "--no-color", "--output", h.path("open.html"))
	require.NoError(t, err)
	assert.Contains(t, stdout, "THREAD SENTIMENT")
	assert.FileExists(t, h.path("open.html"))

	stdout, _, err = h.run(t, "detect", "https://www.reddit.com/r/golang/")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(stdout, "not a thread"))

	stdout, _, err = h.run(t, "open")
	require.NoError(t, err)
	assert.Contains(t, stdout, "This is not a Reddit thread page.")
}

func TestRender(t *testing.T) {
	t.Parallel()

	h := newHarness(t, http.StatusOK)
	snapshot := h.path("thread.json")

	require.NoError(t, persist.WriteSnapshot(snapshot, &persist.Snapshot{
		URL:   threadURL,
		Title: "Saved thread",
		Sentiment: []thread.Comment{
			{ID: "op", Author: "poster", Score: 2, Sentiment: 0.5},
			{ID: "a", ParentID: "t1_op", Author: "alice", Score: 1, Sentiment: -0.5},
		},
	}))

	stdout, stderr, err := h.run(t, "render", snapshot, "--output", h.path("render.html"), "--no-report")
	require.NoError(t, err)

	assert.Empty(t, stdout)
	assert.Contains(t, stderr, "bias data was not captured")

	page := readFile(t, h.path("render.html"))
	assert.Contains(t, page, "Saved thread")

	_, _, err = h.run(t, "render", h.path("missing.json"))
	require.Error(t, err)
}

func TestSpec(t *testing.T) {
	t.Parallel()

	h := newHarness(t, http.StatusOK)
	snapshot := h.path("thread.json")

	_, _, err := h.run(t, "analyze", threadURL, "--save", snapshot, "--no-report")
	require.NoError(t, err)

	jsonOut, _, err := h.run(t, "spec", snapshot)
	require.NoError(t, err)
	assert.Contains(t, jsonOut, `"bin-bar"`)

	yamlOut, _, err := h.run(t, "spec", snapshot, "--format", "yaml", "--phase", "sentiment")
	require.NoError(t, err)

	var decoded map[string]any

	require.NoError(t, yaml.Unmarshal([]byte(yamlOut), &decoded))
	assert.NotEmpty(t, decoded)

	diffOut, _, err := h.run(t, "spec", snapshot, "--diff")
	require.NoError(t, err)
	assert.Contains(t, diffOut, "between the sentiment and bias phases")
	assert.Contains(t, diffOut, "+")

	_, _, err = h.run(t, "spec", snapshot, "--format", "toml")
	require.ErrorIs(t, err, ErrUnknownFormat)

	_, _, err = h.run(t, "spec", snapshot, "--phase", "middle")
	require.ErrorIs(t, err, ErrUnknownPhase)
}

func TestSpec_DiffWithoutBias(t *testing.T) {
	t.Parallel()

	h := newHarness(t, http.StatusOK)
	snapshot := h.path("thread.json")

	require.NoError(t, persist.WriteSnapshot(snapshot, &persist.Snapshot{
		URL:       threadURL,
		Sentiment: []thread.Comment{{ID: "op", Sentiment: 0.1}},
	}))

	_, _, err := h.run(t, "spec", snapshot, "--diff")
	require.ErrorIs(t, err, ErrNoBiasPhase)

	_, _, err = h.run(t, "spec", snapshot, "--phase", "bias")
	require.ErrorIs(t, err, ErrNoBiasPhase)
}

func TestVersion(t *testing.T) {
	t.Parallel()

	h := newHarness(t, http.StatusOK)

	stdout, _, err := h.run(t, "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(stdout, "threadlens "))
}
