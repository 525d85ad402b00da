package persist

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// ErrNotFound is returned by Persister.Load when nothing was saved yet.
var ErrNotFound = errors.New("state not found")

// Persister handles I/O for one state type under a fixed basename.
type Persister[T any] struct {
	dir      string
	basename string
	codec    Codec
}

// NewPersister creates a persister storing dir/basename with codec.
func NewPersister[T any](dir, basename string, codec Codec) *Persister[T] {
	return &Persister[T]{dir: dir, basename: basename, codec: codec}
}

// Path returns the backing file path.
func (p *Persister[T]) Path() string {
	return filepath.Join(p.dir, p.basename+p.codec.Extension())
}

// Save writes state.
func (p *Persister[T]) Save(state *T) error {
	return WriteFile(p.Path(), p.codec, state)
}

// Load reads the saved state. A missing file yields ErrNotFound.
func (p *Persister[T]) Load() (*T, error) {
	var state T

	err := ReadFile(p.Path(), p.codec, &state)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, p.basename)
	}

	if err != nil {
		return nil, err
	}

	return &state, nil
}

// Clear removes the saved state. Clearing an empty slot is not an error.
func (p *Persister[T]) Clear() error {
	err := os.Remove(p.Path())
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("clear state: %w", err)
	}

	return nil
}
