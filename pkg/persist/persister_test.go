package persist_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/threadlens/pkg/persist"
	"github.com/Sumatoshi-tech/threadlens/pkg/thread"
)

type persisterState struct {
	Label string `json:"label"`
	Value int    `json:"value"`
}

func TestPersister_SaveLoadClear(t *testing.T) {
	t.Parallel()

	p := persist.NewPersister[persisterState](t.TempDir(), "mystate", persist.NewJSONCodec())

	_, err := p.Load()
	require.ErrorIs(t, err, persist.ErrNotFound)

	require.NoError(t, p.Save(&persisterState{Label: "hello", Value: 42}))

	got, err := p.Load()
	require.NoError(t, err)
	assert.Equal(t, persisterState{Label: "hello", Value: 42}, *got)

	require.NoError(t, p.Clear())
	require.NoError(t, p.Clear())

	_, err = p.Load()
	require.ErrorIs(t, err, persist.ErrNotFound)
}

func TestURLSlot(t *testing.T) {
	t.Parallel()

	slot := persist.NewURLSlot(t.TempDir())
	threadURL := "https://www.reddit.com/r/golang/comments/abc123/title/"

	target, err := slot.Resolve()
	require.NoError(t, err)
	assert.False(t, target.IsValidThread)

	require.NoError(t, slot.Observe(thread.Detect(threadURL)))

	target, err = slot.Resolve()
	require.NoError(t, err)
	assert.Equal(t, thread.Target{URL: threadURL, IsValidThread: true}, target)

	require.NoError(t, slot.Observe(thread.Detect("https://www.reddit.com/r/golang/")))

	target, err = slot.Resolve()
	require.NoError(t, err)
	assert.Equal(t, thread.Target{}, target)
}

func TestSnapshot_RoundTrip(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	sentiment := []thread.Comment{
		{ID: "op", Author: "poster", Body: "hi", Score: 3, Sentiment: 0.2},
		{ID: "a", ParentID: "t1_op", Author: "alice", Score: 1, Sentiment: -0.5},
	}
	withBias := thread.Clone(sentiment)
	withBias[1].Bias = thread.NewBias(map[string]float64{"framing": 0.25})

	tests := []struct {
		name string
		file string
		bias []thread.Comment
	}{
		{name: "json without bias", file: "s.json"},
		{name: "lz4 with bias", file: "s.json.lz4", bias: withBias},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			path := filepath.Join(dir, tt.file)
			snap := &persist.Snapshot{
				URL:        "https://www.reddit.com/r/x/comments/1/",
				CapturedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
				Sentiment:  sentiment,
				Bias:       tt.bias,
			}

			require.NoError(t, persist.WriteSnapshot(path, snap))

			got, err := persist.ReadSnapshot(path)
			require.NoError(t, err)

			assert.Equal(t, persist.SnapshotVersion, got.Version)
			assert.Equal(t, snap.CapturedAt, got.CapturedAt)
			assert.Equal(t, tt.bias != nil, got.HasBias())
			require.Len(t, got.Latest(), 2)

			if tt.bias != nil {
				assert.True(t, got.Latest()[1].Bias.Valid)
				assert.InDelta(t, 0.25, got.Latest()[1].Bias.Labels["framing"], 1e-12)
			} else {
				assert.False(t, got.Latest()[1].Bias.Valid)
			}
		})
	}
}

func TestReadSnapshot_RejectsNewerVersion(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "future.json")
	require.NoError(t, persist.WriteSnapshot(path, &persist.Snapshot{Version: persist.SnapshotVersion + 1}))

	_, err := persist.ReadSnapshot(path)
	require.ErrorIs(t, err, persist.ErrSnapshotVersion)
}
