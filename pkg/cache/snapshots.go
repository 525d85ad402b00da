package cache

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Sumatoshi-tech/threadlens/pkg/persist"
)

const snapshotKeyPrefix = "snapshot:"

// Snapshots caches thread snapshots by URL on top of a Store.
type Snapshots struct {
	store Store
}

// NewSnapshots wraps store.
func NewSnapshots(store Store) *Snapshots {
	return &Snapshots{store: store}
}

// Get returns the cached snapshot for url.
func (s *Snapshots) Get(ctx context.Context, url string) (*persist.Snapshot, bool, error) {
	payload, ok, err := s.store.Get(ctx, snapshotKeyPrefix+url)
	if err != nil || !ok {
		return nil, false, err
	}

	data, err := Decompress(payload)
	if err != nil {
		return nil, false, err
	}

	var snap persist.Snapshot

	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, false, fmt.Errorf("%w: %w", ErrCorruptPayload, err)
	}

	return &snap, true, nil
}

// Put stores snap under its URL.
func (s *Snapshots) Put(ctx context.Context, snap *persist.Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	return s.store.Set(ctx, snapshotKeyPrefix+snap.URL, Compress(data))
}

// Invalidate drops the snapshot for url.
func (s *Snapshots) Invalidate(ctx context.Context, url string) error {
	return s.store.Delete(ctx, snapshotKeyPrefix+url)
}

// Stats returns the underlying store statistics.
func (s *Snapshots) Stats() Stats {
	return s.store.Stats()
}
