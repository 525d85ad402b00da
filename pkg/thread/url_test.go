package thread

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetect(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		url   string
		valid bool
	}{
		{name: "thread", url: "https://www.reddit.com/r/golang/comments/1abc9z/some_title/", valid: true},
		{name: "uppercase_id", url: "https://old.reddit.com/r/x/COMMENTS/AbC123", valid: true},
		{name: "subreddit", url: "https://www.reddit.com/r/golang/", valid: false},
		{name: "comments_without_id", url: "https://www.reddit.com/r/golang/comments/", valid: false},
		{name: "query_only", url: "https://www.reddit.com/?q=/comments/abc", valid: false},
		{name: "empty", url: "   ", valid: false},
		{name: "unparseable", url: "http://[::1", valid: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := Detect(tt.url)
			assert.Equal(t, tt.valid, got.IsValidThread)
		})
	}
}

func TestTargetRequire(t *testing.T) {
	t.Parallel()

	u, err := Detect("https://reddit.com/r/a/comments/xyz").Require()
	require.NoError(t, err)
	assert.Equal(t, "https://reddit.com/r/a/comments/xyz", u)

	_, err = Detect("https://reddit.com/").Require()
	require.ErrorIs(t, err, ErrInvalidThread)
}
