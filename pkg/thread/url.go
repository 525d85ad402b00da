package thread

import (
	"errors"
	"net/url"
	"regexp"
	"strings"
)

// ErrInvalidThread is returned when a URL does not point at a thread page.
var ErrInvalidThread = errors.New("not a reddit thread URL")

var threadPathPattern = regexp.MustCompile(`(?i)/comments/[a-z0-9]+`)

// Target is a detected page URL and whether it is a thread page.
type Target struct {
	URL           string `json:"url"`
	IsValidThread bool   `json:"isValidThread"`
}

// Detect classifies a page URL.
func Detect(rawURL string) Target {
	rawURL = strings.TrimSpace(rawURL)

	target := Target{URL: rawURL}
	if rawURL == "" {
		return target
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return target
	}

	target.IsValidThread = threadPathPattern.MatchString(parsed.Path)

	return target
}

// Require returns the URL of a valid thread target or ErrInvalidThread.
func (t Target) Require() (string, error) {
	if !t.IsValidThread {
		return "", ErrInvalidThread
	}

	return t.URL, nil
}
