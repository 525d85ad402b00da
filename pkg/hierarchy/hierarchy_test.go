package hierarchy

import (
	"fmt"
	"math"
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/threadlens/pkg/thread"
)

func byID(comments []thread.Comment) map[string]thread.Comment {
	out := make(map[string]thread.Comment, len(comments))
	for _, c := range comments {
		out[c.ID] = c
	}

	return out
}

func counterIDs() func() string {
	n := 0

	return func() string {
		n++

		return fmt.Sprintf("%s%d", SyntheticPrefix, n)
	}
}

func TestNormalize_ScenarioPrefixedAndDangling(t *testing.T) {
	t.Parallel()

	input := []thread.Comment{
		{ID: "a", ParentID: "", Score: 5, Sentiment: 0.5},
		{ID: "b", ParentID: "t1_a", Score: -3, Sentiment: -0.2},
		{ID: "c", ParentID: "t1_zzz", Score: 2, Sentiment: 0},
	}

	out := Normalize(input, Options{SyntheticRoot: true})
	require.Len(t, out, 4)
	require.NoError(t, Validate(out))

	nodes := byID(out)
	assert.Equal(t, "a", nodes["b"].Parent)
	assert.Equal(t, RootID, nodes["c"].Parent)
	assert.Equal(t, RootID, nodes["a"].Parent)
	assert.InDelta(t, 1.0, nodes["b"].Score.Float(), 1e-9)
	assert.InDelta(t, 5.0, nodes["a"].Score.Float(), 1e-9)

	roots := 0

	for _, c := range out {
		if c.Parent == "" {
			roots++

			assert.Equal(t, RootID, c.ID)
		}
	}

	assert.Equal(t, 1, roots)

	// Input untouched.
	assert.Empty(t, input[1].Parent)
	assert.InDelta(t, -3.0, input[1].Score.Float(), 1e-9)
}

func TestNormalize_FlatMode(t *testing.T) {
	t.Parallel()

	out := Normalize([]thread.Comment{
		{ID: "a"},
		{ID: "b", ParentID: "t1_a"},
		{ID: "c", ParentID: "t3_gone"},
	}, Options{})

	require.Len(t, out, 3)

	nodes := byID(out)
	assert.Empty(t, nodes["a"].Parent)
	assert.Equal(t, "a", nodes["b"].Parent)
	assert.Empty(t, nodes["c"].Parent)
}

func TestNormalize_RootTitle(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("é", 150)

	tests := []struct {
		name     string
		comments []thread.Comment
		title    string
		expected string
	}{
		{name: "explicit", title: "Hello", expected: "Hello"},
		{name: "fallback_default", expected: DefaultTitle},
		{
			name:     "submission_body",
			comments: []thread.Comment{{ID: "x", ParentID: "t1_y", Body: "reply"}, {ID: "s", Body: "Post title"}},
			expected: "Post title",
		},
		{name: "truncated", title: long, expected: strings.Repeat("é", 97) + "..."},
		{name: "exactly_100", title: strings.Repeat("a", 100), expected: strings.Repeat("a", 100)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			out := Normalize(tt.comments, Options{SyntheticRoot: true, Title: tt.title})
			require.NotEmpty(t, out)

			root := out[0]
			assert.Equal(t, RootID, root.ID)
			assert.Equal(t, tt.expected, root.Body)
			assert.Equal(t, RootAuthor, root.Author)
			assert.Empty(t, root.Parent)
			assert.InDelta(t, 1.0, root.Score.Float(), 1e-9)
		})
	}
}

func TestNormalize_IDRepair(t *testing.T) {
	t.Parallel()

	out := Normalize([]thread.Comment{
		{ID: "ROOT", ParentID: "t1_dup", Body: "impostor"},
		{ID: "", ParentID: "t1_dup"},
		{ID: "dup"},
		{ID: "dup", ParentID: "t1_dup"},
	}, Options{SyntheticRoot: true, NewID: counterIDs()})

	require.NoError(t, Validate(out))
	require.Len(t, out, 5)

	assert.Equal(t, RootID, out[0].ID)
	assert.True(t, strings.HasPrefix(out[1].ID, SyntheticPrefix))
	assert.True(t, strings.HasPrefix(out[2].ID, SyntheticPrefix))
	assert.Equal(t, "dup", out[3].ID)
	assert.True(t, strings.HasPrefix(out[4].ID, SyntheticPrefix))
	assert.Equal(t, "dup", out[4].Parent)
	assert.Equal(t, "dup", out[2].Parent)
}

func TestNormalize_SynthesisSkipsTakenIDs(t *testing.T) {
	t.Parallel()

	calls := 0
	gen := func() string {
		calls++
		if calls < 3 {
			return "taken"
		}

		return "fresh"
	}

	out := Normalize([]thread.Comment{{ID: "taken"}, {ID: ""}}, Options{NewID: gen})
	assert.Equal(t, "fresh", out[1].ID)
}

func TestNormalize_BreaksCycles(t *testing.T) {
	t.Parallel()

	for _, withRoot := range []bool{true, false} {
		out := Normalize([]thread.Comment{
			{ID: "a", ParentID: "t1_c"},
			{ID: "b", ParentID: "t1_a"},
			{ID: "c", ParentID: "t1_b"},
			{ID: "self", ParentID: "t1_self"},
		}, Options{SyntheticRoot: withRoot})

		require.NoError(t, Validate(out), "root=%v", withRoot)
	}
}

func TestNormalize_ScoreFloor(t *testing.T) {
	t.Parallel()

	scores := []thread.Score{-10, 0, 0.5, thread.Score(math.NaN()), thread.Score(math.Inf(1)), thread.Score(math.Inf(-1)), 1, 250}
	input := make([]thread.Comment, len(scores))

	for i, s := range scores {
		input[i] = thread.Comment{ID: fmt.Sprintf("c%d", i), Score: s}
	}

	for _, c := range Normalize(input, Options{SyntheticRoot: true}) {
		assert.True(t, c.Score.Valid(), c.ID)
		assert.GreaterOrEqual(t, c.Score.Float(), 1.0, c.ID)
	}
}

func TestNormalize_TreeValidityProperty(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewPCG(7, 11))
	idPool := []string{"", "a", "b", "c", "d", "ROOT", "e", "f"}

	for round := range 300 {
		n := rng.IntN(12)
		input := make([]thread.Comment, n)

		for i := range input {
			parent := idPool[rng.IntN(len(idPool))]
			if rng.IntN(2) == 0 {
				parent = "t1_" + parent
			}

			input[i] = thread.Comment{
				ID:       idPool[rng.IntN(len(idPool))],
				ParentID: parent,
				Score:    thread.Score(rng.Float64()*20 - 10),
			}
		}

		for _, withRoot := range []bool{true, false} {
			out := Normalize(input, Options{SyntheticRoot: withRoot})
			require.NoError(t, Validate(out), "round %d root=%v", round, withRoot)
			assert.Len(t, FilterValid(out), len(out))

			if withRoot && !carriesRoot(input) {
				assert.Len(t, out, n+1)
			} else {
				assert.Len(t, out, n)
			}
		}
	}
}

func carriesRoot(comments []thread.Comment) bool {
	for _, c := range comments {
		if c.ID == RootID && c.ParentID == "" {
			return true
		}
	}

	return false
}

func TestNormalize_Idempotent(t *testing.T) {
	t.Parallel()

	input := []thread.Comment{
		{ID: "op", Body: "Post title", Score: 4},
		{ID: "a", ParentID: "t1_op", Score: -2},
		{ID: "", ParentID: "t1_a"},
		{ID: "x", ParentID: "t1_x"},
	}

	opts := Options{SyntheticRoot: true, NewID: counterIDs()}

	once := Normalize(input, opts)
	twice := Normalize(once, opts)

	require.NoError(t, Validate(twice))
	assert.Equal(t, once, twice)
	assert.Equal(t, RootID, twice[0].ID)
	assert.Equal(t, "Post title", twice[0].Body)
}

func TestNormalize_KeepsPresentRootFirst(t *testing.T) {
	t.Parallel()

	out := Normalize([]thread.Comment{
		{ID: "a", ParentID: "t1_ROOT"},
		{ID: RootID, Body: "Existing", Author: "someone"},
		{ID: "b", ParentID: "t1_a"},
	}, Options{SyntheticRoot: true, Title: "Ignored"})

	require.Len(t, out, 3)
	require.NoError(t, Validate(out))

	assert.Equal(t, RootID, out[0].ID)
	assert.Equal(t, "Existing", out[0].Body)
	assert.Empty(t, out[0].Parent)
	assert.Equal(t, RootID, out[1].Parent)
	assert.Equal(t, "a", out[2].Parent)
}

func TestFilterValid(t *testing.T) {
	t.Parallel()

	out := FilterValid([]thread.Comment{
		{ID: "r"},
		{ID: "a", Parent: "r"},
		{ID: "b", Parent: "ghost"},
	})

	require.Len(t, out, 2)
	assert.Equal(t, "a", out[1].ID)
}

func TestValidate_Errors(t *testing.T) {
	t.Parallel()

	require.ErrorIs(t, Validate([]thread.Comment{{ID: ""}}), ErrEmptyID)
	require.ErrorIs(t, Validate([]thread.Comment{{ID: "a"}, {ID: "a"}}), ErrDuplicateID)
	require.ErrorIs(t, Validate([]thread.Comment{{ID: "a", Parent: "x"}}), ErrDanglingParent)
	require.ErrorIs(t, Validate([]thread.Comment{{ID: "a", Parent: "b"}, {ID: "b", Parent: "a"}}), ErrCycle)
	require.NoError(t, Validate(nil))
}

func TestStripPrefix(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "abc", StripPrefix("t1_abc"))
	assert.Equal(t, "abc", StripPrefix("t3_abc"))
	assert.Equal(t, "t2_abc", StripPrefix("t2_abc"))
	assert.Empty(t, StripPrefix(""))
}
