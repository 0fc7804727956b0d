package pipeline

import (
	"context"
	"time"

	"github.com/kikiluvv/quizprep/internal/clips"
	"github.com/kikiluvv/quizprep/internal/ffmpeg"
)

// Transcoder is the subset of *ffmpeg.Executor the pipeline drives.
type Transcoder interface {
	ProbeVideo(ctx context.Context, path string) (*ffmpeg.VideoInfo, error)
	ExtractSegment(ctx context.Context, input string, opts ffmpeg.SegmentOptions) error
	Transcode(ctx context.Context, opts ffmpeg.TranscodeOptions) error
	ExtractFrame(ctx context.Context, input string, timestamp time.Duration, output string) error
}

// ExtractOptions configures segment extraction for a questionnaire file.
type ExtractOptions struct {
	SourceVideo       string
	QuestionnairePath string
	OutputDir         string
	// RangesPath points at an optional id -> "start-end" JSON object.
	RangesPath string
	Width      int
	// ClipLength is used for items without an explicit range.
	ClipLength time.Duration
	// AssumedDuration stands in when the source reports no duration.
	AssumedDuration time.Duration
	Posters         bool
	PatchURLs       bool
}

// ExtractResult summarises an extraction run.
type ExtractResult struct {
	Source    *ffmpeg.VideoInfo
	Width     int
	Height    int
	Clips     []*clips.Clip
	Extracted int
	Failed    int
	Posters   int
	Patched   int
}

// ConvertOptions configures a whole-file re-encode.
type ConvertOptions struct {
	Input     string
	OutputDir string
	Width     int
}

// ConvertResult describes the re-encoded file.
type ConvertResult struct {
	Input    string
	Output   string
	Duration time.Duration
	SizeMB   float64
}
