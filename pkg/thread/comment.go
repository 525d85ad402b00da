// Package thread defines the annotated comment model shared by every stage of
// the pipeline, along with thread URL detection.
package thread

import (
	"bytes"
	"encoding/json"
	"math"
	"maps"
	"slices"
	"strconv"
	"strings"
)

// Sentiment label thresholds used by the analysis backend.
const (
	PositiveThreshold = 0.05
	NegativeThreshold = -0.05
)

// NoneLabel is the reserved bias label meaning "no bias detected".
const NoneLabel = "none"

// SentimentLabel is the coarse sentiment class attached to a comment.
type SentimentLabel string

// Sentiment labels.
const (
	LabelPositive SentimentLabel = "positive"
	LabelNeutral  SentimentLabel = "neutral"
	LabelNegative SentimentLabel = "negative"
)

// Labels lists the sentiment labels in display order.
var Labels = []SentimentLabel{LabelNegative, LabelNeutral, LabelPositive}

// LabelFor classifies a raw sentiment score.
func LabelFor(sentiment float64) SentimentLabel {
	switch {
	case sentiment >= PositiveThreshold:
		return LabelPositive
	case sentiment <= NegativeThreshold:
		return LabelNegative
	default:
		return LabelNeutral
	}
}

// Comment is one annotated comment as returned by the analysis backend.
// Parent is empty on raw input and filled in by hierarchy normalization.
type Comment struct {
	ID             string         `json:"id"`
	ParentID       string         `json:"parent_id"`
	Parent         string         `json:"parent,omitempty"`
	Author         string         `json:"author"`
	BinAuthor      string         `json:"oc_author,omitempty"`
	Body           string         `json:"body"`
	Score          Score          `json:"score"`
	Sentiment      float64        `json:"sentiment"`
	SentimentLabel SentimentLabel `json:"sentiment_label,omitempty"`
	BinID          string         `json:"oc_bin_id,omitempty"`
	Level          int            `json:"level,omitempty"`
	Bias           Bias           `json:"bias"`
}

// Label returns the comment's sentiment label, deriving it from the score
// when the backend did not provide one.
func (c *Comment) Label() SentimentLabel {
	switch c.SentimentLabel {
	case LabelPositive, LabelNeutral, LabelNegative:
		return c.SentimentLabel
	default:
		return LabelFor(c.Sentiment)
	}
}

// IsThreadRoot reports whether the comment is the original post.
func (c *Comment) IsThreadRoot() bool {
	return c.ParentID == ""
}

// UnmarshalJSON implements json.Unmarshaler. A missing score decodes to NaN.
func (c *Comment) UnmarshalJSON(data []byte) error {
	type plain Comment

	decoded := plain{Score: Score(math.NaN())}
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err //nolint:wrapcheck // decoding errors surface unchanged to the outer decoder.
	}

	*c = Comment(decoded)

	return nil
}

// Clone deep-copies a comment list including bias mappings.
func Clone(comments []Comment) []Comment {
	if comments == nil {
		return nil
	}

	out := make([]Comment, len(comments))

	for i, c := range comments {
		c.Bias = c.Bias.Clone()
		out[i] = c
	}

	return out
}

// Score is a comment score that decodes leniently. Numbers and numeric
// strings are accepted; anything else decodes to NaN.
type Score float64

// Float returns the raw value.
func (s Score) Float() float64 {
	return float64(s)
}

// Valid reports whether the score is a finite number.
func (s Score) Valid() bool {
	v := float64(s)

	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Weight returns the score as an area weight: finite and at least 1.
func (s Score) Weight() float64 {
	if !s.Valid() {
		return 1
	}

	return max(1, float64(s))
}

// UnmarshalJSON implements json.Unmarshaler.
func (s *Score) UnmarshalJSON(data []byte) error {
	*s = Score(parseLenientNumber(data))

	return nil
}

// MarshalJSON implements json.Marshaler. Non-finite scores encode as null.
func (s Score) MarshalJSON() ([]byte, error) {
	if !s.Valid() {
		return []byte("null"), nil
	}

	return strconv.AppendFloat(nil, float64(s), 'g', -1, 64), nil
}

func parseLenientNumber(data []byte) float64 {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return math.NaN()
	}

	if data[0] == '"' {
		var text string
		if err := json.Unmarshal(data, &text); err != nil {
			return math.NaN()
		}

		text = strings.TrimSpace(text)
		if text == "" {
			return math.NaN()
		}

		v, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return math.NaN()
		}

		return v
	}

	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return math.NaN()
	}

	return v
}

// Bias is an optional mapping from bias label to probability.
// Valid is false when the backend did not produce a bias object.
type Bias struct {
	Labels map[string]float64
	Valid  bool
}

// NewBias wraps a label mapping as a present bias object.
func NewBias(labels map[string]float64) Bias {
	if labels == nil {
		labels = map[string]float64{}
	}

	return Bias{Labels: labels, Valid: true}
}

// Clone deep-copies the label mapping.
func (b Bias) Clone() Bias {
	if !b.Valid {
		return Bias{}
	}

	return Bias{Labels: maps.Clone(b.Labels), Valid: true}
}

// SortedLabels returns the label names in lexicographic order.
func (b Bias) SortedLabels() []string {
	if !b.Valid {
		return nil
	}

	return slices.Sorted(maps.Keys(b.Labels))
}

// Top returns the highest-valued label other than "none". Equal values
// resolve to the lexicographically smallest label. ok is false when the
// object is absent or holds no eligible label.
func (b Bias) Top() (label string, value float64, ok bool) {
	for _, name := range b.SortedLabels() {
		if strings.EqualFold(name, NoneLabel) {
			continue
		}

		v := b.Labels[name]
		if !ok || v > value {
			label, value, ok = name, v, true
		}
	}

	return label, value, ok
}

// UnmarshalJSON implements json.Unmarshaler. Null and non-object values
// decode to an absent bias; non-numeric label values are dropped.
func (b *Bias) UnmarshalJSON(data []byte) error {
	*b = Bias{}

	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '{' {
		return nil
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil //nolint:nilerr // a malformed bias object is treated as absent.
	}

	labels := make(map[string]float64, len(raw))

	for name, value := range raw {
		v := parseLenientNumber(value)
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}

		labels[name] = v
	}

	*b = Bias{Labels: labels, Valid: true}

	return nil
}

// MarshalJSON implements json.Marshaler.
func (b Bias) MarshalJSON() ([]byte, error) {
	if !b.Valid {
		return []byte("null"), nil
	}

	if b.Labels == nil {
		return []byte("{}"), nil
	}

	return json.Marshal(b.Labels)
}
