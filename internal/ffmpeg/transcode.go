package ffmpeg

import (
	"context"
	"fmt"
	"time"
)

// TranscodeOptions re-encodes a whole file.
type TranscodeOptions struct {
	Input  string
	Output string
	// Width scales the output keeping aspect ratio; zero keeps the source size.
	Width int
	// Duration of the source, for progress percentages.
	Duration     time.Duration
	ProgressFunc ProgressFunc
}

// Transcode re-encodes the whole input with the web profile.
func (e *Executor) Transcode(ctx context.Context, opts TranscodeOptions) error {
	args, err := transcodeArgs(opts, e.profile)
	if err != nil {
		return err
	}

	e.logger.Info().
		Str("input", opts.Input).
		Str("output", opts.Output).
		Msg("transcoding")

	runOpts := RunOptions{
		Args:            args,
		Duration:        opts.Duration,
		ProgressHandler: opts.ProgressFunc,
		LogHandler: func(line string) {
			e.logger.Debug().Str("ffmpeg", line).Msg("transcode output")
		},
	}

	if err := e.Run(ctx, runOpts); err != nil {
		return fmt.Errorf("transcode %s: %w", opts.Input, err)
	}

	e.logger.Info().Str("output", opts.Output).Msg("transcode completed")
	return nil
}

func transcodeArgs(opts TranscodeOptions, profile Profile) ([]string, error) {
	if opts.Input == "" {
		return nil, fmt.Errorf("input path is required")
	}
	if opts.Output == "" {
		return nil, fmt.Errorf("output path is required")
	}
	if opts.Input == opts.Output {
		return nil, fmt.Errorf("output must differ from input")
	}
	if opts.Width < 0 || opts.Width%2 != 0 {
		return nil, fmt.Errorf("width must be a non-negative even number, got %d", opts.Width)
	}

	fb := NewFilterBuilder()
	if opts.Width > 0 {
		// -2 keeps the aspect ratio and an even height
		fb.Custom(fmt.Sprintf("scale=%d:-2", opts.Width))
	} else {
		fb.EvenDimensions()
	}

	args := []string{"-i", opts.Input, "-vf", fb.Build()}
	args = append(args, profile.args()...)
	return append(args, opts.Output), nil
}
