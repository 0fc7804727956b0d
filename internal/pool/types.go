// Package pool builds a combined questionnaire pool from per-domain enriched
// result files.
package pool

import (
	"github.com/kikiluvv/quizprep/internal/questionnaire"
)

// Strategy decides how many samples are taken from each result file.
type Strategy string

const (
	// StrategySample takes a random subset of PerFile samples per file.
	StrategySample Strategy = "sample"
	// StrategyCollect takes every sample.
	StrategyCollect Strategy = "collect"
)

// ResultFile is the on-disk shape of an enriched result file.
type ResultFile struct {
	EnrichedSamples []Sample `json:"enriched_samples"`
}

// Sample is one enriched sample. Only the fields the pool needs are decoded.
type Sample struct {
	GT               *string                  `json:"GT"`
	NegativeComments questionnaire.StringList `json:"negative_comments"`
	TakeName         string                   `json:"take_name"`
	Recording        string                   `json:"recording"`
}

// FileReport summarizes what happened to one result file.
type FileReport struct {
	Name     string
	Domain   string
	IsGE     bool
	Samples  int
	Selected int
	Included int
	Err      error
}

// Result is the outcome of a pool build.
type Result struct {
	Items []questionnaire.Item
	Files []FileReport
	// Skipped counts selected samples that failed validation.
	Skipped int
	// Duplicates counts samples dropped because their ground truth repeated.
	Duplicates int
	// FailedFiles counts files that could not be read or parsed.
	FailedFiles int
	// IgnoredFiles counts files excluded by size or domain filter.
	IgnoredFiles int
}
