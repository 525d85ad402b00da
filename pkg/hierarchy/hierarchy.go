// Package hierarchy repairs a flat comment list into a valid rooted tree.
//
// Normalization never fails: missing or duplicate ids are replaced, scores
// are floored at 1, and references that cannot be resolved are attached to
// the thread root.
package hierarchy

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/Sumatoshi-tech/threadlens/pkg/thread"
)

// RootID is the id of the synthetic thread root.
const RootID = "ROOT"

// SyntheticPrefix starts every id produced by the normalizer. Scraped ids
// are base36 and never contain a hyphen, so the namespaces are disjoint.
const SyntheticPrefix = "synthetic-"

// Root defaults.
const (
	DefaultTitle   = "Reddit Thread"
	RootAuthor     = "OP"
	maxTitleRunes  = 100
	truncatedRunes = 97
	ellipsis       = "..."
)

var parentPrefixes = []string{"t1_", "t3_"}

// Validation errors.
var (
	ErrEmptyID        = errors.New("comment has empty id")
	ErrDuplicateID    = errors.New("duplicate comment id")
	ErrDanglingParent = errors.New("parent not present in list")
	ErrCycle          = errors.New("reply cycle")
)

// Options controls normalization.
type Options struct {
	// SyntheticRoot prepends a ROOT node that every top-level comment hangs from.
	SyntheticRoot bool
	// Title is the root's body. Empty falls back to the submission body.
	Title string
	// NewID overrides id synthesis. Used by tests.
	NewID func() string
}

// Normalize returns a repaired copy of comments. The input is not modified.
func Normalize(comments []thread.Comment, opts Options) []thread.Comment {
	newID := opts.NewID
	if newID == nil {
		newID = func() string { return SyntheticPrefix + uuid.NewString() }
	}

	out := make([]thread.Comment, 0, len(comments)+1)

	rootID := ""
	rest := thread.Clone(comments)

	if opts.SyntheticRoot {
		rootID = RootID

		// A list that already carries its root keeps it, which makes
		// normalization idempotent.
		if at := existingRoot(rest); at >= 0 {
			out = append(out, rest[at])
			rest = append(rest[:at:at], rest[at+1:]...)
		} else {
			out = append(out, syntheticRoot(comments, opts.Title))
		}
	}

	out = append(out, rest...)

	repairIDs(out, opts.SyntheticRoot, newID)

	valid := make(map[string]struct{}, len(out))
	for i := range out {
		valid[out[i].ID] = struct{}{}
	}

	for i := range out {
		c := &out[i]
		c.Score = thread.Score(c.Score.Weight())

		if opts.SyntheticRoot && i == 0 {
			c.Parent = ""

			continue
		}

		parent := StripPrefix(c.ParentID)
		if _, ok := valid[parent]; !ok || parent == c.ID {
			parent = rootID
		}

		c.Parent = parent
	}

	breakCycles(out, rootID)

	return out
}

// StripPrefix removes the platform type prefix from a parent reference.
func StripPrefix(ref string) string {
	for _, p := range parentPrefixes {
		if rest, ok := strings.CutPrefix(ref, p); ok {
			return rest
		}
	}

	return ref
}

// Title picks the thread title: the submission body, else DefaultTitle.
func Title(comments []thread.Comment) string {
	for i := range comments {
		c := &comments[i]
		if c.Level == 0 && c.IsThreadRoot() && strings.TrimSpace(c.Body) != "" {
			return c.Body
		}
	}

	return DefaultTitle
}

// Truncate shortens a title to at most 100 runes with an ellipsis.
func Truncate(title string) string {
	runes := []rune(title)
	if len(runes) <= maxTitleRunes {
		return title
	}

	return string(runes[:truncatedRunes]) + ellipsis
}

func existingRoot(comments []thread.Comment) int {
	for i := range comments {
		if comments[i].ID == RootID && comments[i].ParentID == "" {
			return i
		}
	}

	return -1
}

func syntheticRoot(comments []thread.Comment, title string) thread.Comment {
	if strings.TrimSpace(title) == "" {
		title = Title(comments)
	}

	return thread.Comment{
		ID:             RootID,
		Author:         RootAuthor,
		Body:           Truncate(title),
		Score:          1,
		SentimentLabel: thread.LabelNeutral,
	}
}

// repairIDs replaces empty and duplicate ids. When a synthetic root is
// present at index 0, any other comment claiming its id is renamed.
func repairIDs(out []thread.Comment, hasRoot bool, newID func() string) {
	seen := make(map[string]struct{}, len(out))
	if hasRoot {
		seen[out[0].ID] = struct{}{}
	}

	for i := range out {
		if hasRoot && i == 0 {
			continue
		}

		id := strings.TrimSpace(out[i].ID)
		if _, dup := seen[id]; id == "" || dup {
			id = uniqueID(seen, newID)
		}

		out[i].ID = id
		seen[id] = struct{}{}
	}
}

func uniqueID(seen map[string]struct{}, newID func() string) string {
	for {
		id := newID()
		if _, taken := seen[id]; id != "" && !taken {
			return id
		}
	}
}

// breakCycles reparents to the root any node whose ancestor chain loops.
func breakCycles(out []thread.Comment, rootID string) {
	index := make(map[string]int, len(out))
	for i := range out {
		index[out[i].ID] = i
	}

	// 0 unvisited, 1 on current path, 2 done.
	state := make([]uint8, len(out))

	for start := range out {
		if state[start] != 0 {
			continue
		}

		var path []int

		cur := start

		for {
			if state[cur] == 2 {
				break
			}

			if state[cur] == 1 {
				// cur lies on a loop; detach it.
				out[cur].Parent = rootID

				break
			}

			state[cur] = 1
			path = append(path, cur)

			next, ok := index[out[cur].Parent]
			if out[cur].Parent == "" || !ok {
				break
			}

			cur = next
		}

		for _, i := range path {
			state[i] = 2
		}
	}
}

// FilterValid drops items whose parent is neither empty nor a present id.
func FilterValid(comments []thread.Comment) []thread.Comment {
	ids := make(map[string]struct{}, len(comments))
	for i := range comments {
		ids[comments[i].ID] = struct{}{}
	}

	out := make([]thread.Comment, 0, len(comments))

	for _, c := range comments {
		if c.Parent != "" {
			if _, ok := ids[c.Parent]; !ok {
				continue
			}
		}

		out = append(out, c)
	}

	return out
}

// Validate checks the tree invariants on a normalized list.
func Validate(comments []thread.Comment) error {
	ids := make(map[string]int, len(comments))

	for i := range comments {
		id := comments[i].ID
		if id == "" {
			return fmt.Errorf("index %d: %w", i, ErrEmptyID)
		}

		if _, dup := ids[id]; dup {
			return fmt.Errorf("%q: %w", id, ErrDuplicateID)
		}

		ids[id] = i
	}

	for i := range comments {
		parent := comments[i].Parent
		if parent == "" {
			continue
		}

		if _, ok := ids[parent]; !ok {
			return fmt.Errorf("%q -> %q: %w", comments[i].ID, parent, ErrDanglingParent)
		}
	}

	for i := range comments {
		steps := 0

		for cur := comments[i].Parent; cur != ""; cur = comments[ids[cur]].Parent {
			steps++
			if steps > len(comments) {
				return fmt.Errorf("%q: %w", comments[i].ID, ErrCycle)
			}
		}
	}

	return nil
}
