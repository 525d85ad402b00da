package persist

import (
	"errors"
	"fmt"
	"time"

	"github.com/Sumatoshi-tech/threadlens/pkg/thread"
)

// SnapshotVersion is the current snapshot schema version.
const SnapshotVersion = 1

// ErrSnapshotVersion is returned for snapshots written by a newer version.
var ErrSnapshotVersion = errors.New("unsupported snapshot version")

// Snapshot is a captured analysis: the comments as they stood after each
// phase. Bias is nil when the bias phase never completed.
type Snapshot struct {
	Version    int              `json:"version"`
	URL        string           `json:"url"`
	Title      string           `json:"title,omitempty"`
	CapturedAt time.Time        `json:"capturedAt"`
	Sentiment  []thread.Comment `json:"sentiment"`
	Bias       []thread.Comment `json:"bias"`
	Notices    []string         `json:"notices,omitempty"`
}

// HasBias reports whether the bias phase result is present.
func (s *Snapshot) HasBias() bool {
	return s.Bias != nil
}

// Latest returns the most complete comment list.
func (s *Snapshot) Latest() []thread.Comment {
	if s.HasBias() {
		return s.Bias
	}

	return s.Sentiment
}

// WriteSnapshot stores snap at path, choosing the codec by extension.
func WriteSnapshot(path string, snap *Snapshot) error {
	codec, err := CodecFor(path)
	if err != nil {
		return err
	}

	if snap.Version == 0 {
		snap.Version = SnapshotVersion
	}

	return WriteFile(path, codec, snap)
}

// ReadSnapshot loads a snapshot, choosing the codec by extension.
func ReadSnapshot(path string) (*Snapshot, error) {
	codec, err := CodecFor(path)
	if err != nil {
		return nil, err
	}

	var snap Snapshot

	if err := ReadFile(path, codec, &snap); err != nil {
		return nil, err
	}

	if snap.Version > SnapshotVersion {
		return nil, fmt.Errorf("%w: %d", ErrSnapshotVersion, snap.Version)
	}

	return &snap, nil
}
