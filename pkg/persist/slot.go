package persist

import (
	"errors"
	"time"

	"github.com/Sumatoshi-tech/threadlens/pkg/thread"
)

const slotBasename = "reddit_url"

type slotState struct {
	URL     string    `json:"reddit_url"`
	SavedAt time.Time `json:"savedAt"`
}

// URLSlot is the single persisted slot holding the last detected thread URL.
type URLSlot struct {
	store *Persister[slotState]
	now   func() time.Time
}

// NewURLSlot opens the slot kept in dir.
func NewURLSlot(dir string) *URLSlot {
	return &URLSlot{
		store: NewPersister[slotState](dir, slotBasename, NewJSONCodec()),
		now:   time.Now,
	}
}

// Path returns the slot file path.
func (s *URLSlot) Path() string {
	return s.store.Path()
}

// Observe records the result of page detection: a valid thread URL is
// stored, anything else clears the slot.
func (s *URLSlot) Observe(target thread.Target) error {
	if !target.IsValidThread {
		return s.store.Clear()
	}

	return s.store.Save(&slotState{URL: target.URL, SavedAt: s.now().UTC()})
}

// Resolve reads the slot and re-detects the stored URL. An empty or missing
// slot resolves to an invalid target.
func (s *URLSlot) Resolve() (thread.Target, error) {
	state, err := s.store.Load()
	if errors.Is(err, ErrNotFound) {
		return thread.Target{}, nil
	}

	if err != nil {
		return thread.Target{}, err
	}

	return thread.Detect(state.URL), nil
}
