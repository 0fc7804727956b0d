package ffmpeg

import (
	"context"
	"fmt"
	"time"

	"github.com/kikiluvv/quizprep/pkg/util"
)

// ExtractFrame writes the frame at timestamp to output. The image format
// follows the output extension.
func (e *Executor) ExtractFrame(ctx context.Context, input string, timestamp time.Duration, output string) error {
	args, err := frameArgs(input, timestamp, output)
	if err != nil {
		return err
	}

	e.logger.Debug().
		Str("input", input).
		Str("output", output).
		Dur("timestamp", timestamp).
		Msg("extracting frame")

	opts := RunOptions{
		Args: args,
		LogHandler: func(line string) {
			e.logger.Debug().Str("ffmpeg", line).Msg("frame extraction")
		},
	}

	if err := e.Run(ctx, opts); err != nil {
		return fmt.Errorf("extract frame from %s: %w", input, err)
	}
	return nil
}

func frameArgs(input string, timestamp time.Duration, output string) ([]string, error) {
	if input == "" {
		return nil, fmt.Errorf("input path is required")
	}
	if output == "" {
		return nil, fmt.Errorf("output path is required")
	}
	return []string{
		"-ss", util.FormatDuration(timestamp),
		"-i", input,
		"-frames:v", "1",
		"-q:v", "2",
		output,
	}, nil
}
