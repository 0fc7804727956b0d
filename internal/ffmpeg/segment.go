package ffmpeg

import (
	"context"
	"fmt"
	"time"

	"github.com/kikiluvv/quizprep/pkg/util"
)

// SegmentOptions defines one clip cut from a longer source.
type SegmentOptions struct {
	Start    time.Duration
	Duration time.Duration
	// Width and Height of the output; both zero keeps the source size.
	Width        int
	Height       int
	Output       string
	ProgressFunc ProgressFunc
}

// ExtractSegment cuts [Start, Start+Duration) from input, scales it and
// re-encodes it with the web profile.
func (e *Executor) ExtractSegment(ctx context.Context, input string, opts SegmentOptions) error {
	args, err := segmentArgs(input, opts, e.profile)
	if err != nil {
		return err
	}

	e.logger.Info().
		Str("input", input).
		Str("output", opts.Output).
		Dur("start", opts.Start).
		Dur("duration", opts.Duration).
		Int("width", opts.Width).
		Int("height", opts.Height).
		Msg("extracting segment")

	runOpts := RunOptions{
		Args:            args,
		Duration:        opts.Duration,
		ProgressHandler: opts.ProgressFunc,
		LogHandler: func(line string) {
			e.logger.Debug().Str("ffmpeg", line).Msg("segment extraction")
		},
	}

	if err := e.Run(ctx, runOpts); err != nil {
		return fmt.Errorf("extract segment %s: %w", opts.Output, err)
	}

	e.logger.Debug().Str("output", opts.Output).Msg("segment extraction complete")
	return nil
}

// segmentArgs seeks before -i so ffmpeg skips straight to the keyframe
// preceding Start; re-encoding keeps the cut frame-accurate.
func segmentArgs(input string, opts SegmentOptions, profile Profile) ([]string, error) {
	if input == "" {
		return nil, fmt.Errorf("input path is required")
	}
	if opts.Output == "" {
		return nil, fmt.Errorf("output path is required")
	}
	if opts.Start < 0 {
		return nil, fmt.Errorf("invalid segment start %s", opts.Start)
	}
	if opts.Duration <= 0 {
		return nil, fmt.Errorf("invalid segment duration %s", opts.Duration)
	}

	args := []string{
		"-ss", util.FormatDuration(opts.Start),
		"-i", input,
		"-t", util.FormatDuration(opts.Duration),
	}

	if vf := NewFilterBuilder().Scale(opts.Width, opts.Height).Build(); vf != "" {
		args = append(args, "-vf", vf)
	}

	args = append(args, profile.args()...)
	return append(args, opts.Output), nil
}
