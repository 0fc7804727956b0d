// Package questionnaire converts ground-truth records into the item schema
// consumed by the questionnaire front end.
package questionnaire

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMissingGroundTruth marks a record without ground-truth text.
	ErrMissingGroundTruth = errors.New("missing ground truth")
	// ErrNoDistractors marks a record without any negative comments.
	ErrNoDistractors = errors.New("no negative comments")
)

// Item is one questionnaire entry as written to questionnaire_data.json.
type Item struct {
	ID                 string     `json:"id"`
	VideoURL           string     `json:"videoUrl"`
	GroundTruth        string     `json:"groundTruth"`
	Options            []string   `json:"options,omitempty"`
	CorrectOptionIndex *int       `json:"correctOptionIndex,omitempty"`
	NegativeComments   StringList `json:"negative_comments,omitempty"`
	ScenarioText       string     `json:"scenario_text,omitempty"`
	Domain             string     `json:"domain,omitempty"`
	IsGE               *bool      `json:"is_ge,omitempty"`
	SourceVideo        string     `json:"source_video,omitempty"`
	PosterURL          string     `json:"posterUrl,omitempty"`
}

// SourceRecord is an upstream record carrying ground truth and distractors.
type SourceRecord struct {
	GT               string     `json:"GT"`
	GroundTruth      string     `json:"groundTruth"`
	NegativeComments StringList `json:"negative_comments"`
}

// Truth returns the ground-truth text, preferring the GT key.
func (r SourceRecord) Truth() string {
	if r.GT != "" {
		return r.GT
	}
	return r.GroundTruth
}

// Validate reports why a record cannot become a questionnaire item.
func (r SourceRecord) Validate() error {
	return validate(r.Truth(), r.NegativeComments, 1)
}

func validate(truth string, distractors []string, minDistractors int) error {
	if strings.TrimSpace(truth) == "" {
		return ErrMissingGroundTruth
	}
	if len(distractors) == 0 {
		return ErrNoDistractors
	}
	if len(distractors) < minDistractors {
		return fmt.Errorf("%w: have %d, need %d", ErrNoDistractors, len(distractors), minDistractors)
	}
	return nil
}

// ValidateSample applies the record invariant with a configurable distractor minimum.
func ValidateSample(truth string, distractors []string, minDistractors int) error {
	return validate(truth, distractors, minDistractors)
}

// StringList is a list of strings that also accepts a JSON-encoded array
// stored as a single string, and null.
type StringList []string

// UnmarshalJSON implements json.Unmarshaler.
func (l *StringList) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" {
		*l = nil
		return nil
	}

	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*l = list
		return nil
	}

	var encoded string
	if err := json.Unmarshal(data, &encoded); err != nil {
		return fmt.Errorf("negative_comments: expected array of strings: %w", err)
	}
	if strings.TrimSpace(encoded) == "" {
		*l = nil
		return nil
	}
	if err := json.Unmarshal([]byte(encoded), &list); err != nil {
		return fmt.Errorf("negative_comments: string is not a JSON array: %w", err)
	}
	*l = list
	return nil
}

// Skip records a source record that was left out of the output.
type Skip struct {
	// Index is the 1-based position of the record in its input.
	Index  int
	Reason error
}

// Result is the outcome of a conversion.
type Result struct {
	Items   []Item
	Skipped []Skip
	// Total is the number of records considered after truncation.
	Total int
}
