package pipeline

import (
	"context"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/kikiluvv/quizprep/internal/clips"
	"github.com/kikiluvv/quizprep/pkg/util"
	"github.com/nfnt/resize"
)

const posterQuality = 85

// writePoster grabs the source frame at the middle of clip, scales it to the
// clip size and stores it as <clip stem>.jpg next to the clip.
func (p *Pipeline) writePoster(ctx context.Context, source string, clip *clips.Clip, width, height int) (string, error) {
	tmp, err := os.MkdirTemp("", "quizprep-frame-")
	if err != nil {
		return "", err
	}
	defer os.RemoveAll(tmp)

	frame := filepath.Join(tmp, "frame.png")
	if err := p.exec.ExtractFrame(ctx, source, clip.Start+clip.Duration/2, frame); err != nil {
		return "", err
	}

	poster := strings.TrimSuffix(clip.Output, filepath.Ext(clip.Output)) + ".jpg"
	if err := makePoster(frame, poster, width, height); err != nil {
		return "", err
	}

	p.logger.Debug().Str("id", clip.ID).Str("poster", poster).Msg("poster written")
	return poster, nil
}

// makePoster decodes a full-resolution frame, scales it to width x height and
// writes a JPEG to output. A zero height keeps the frame's aspect ratio.
func makePoster(frame, output string, width, height int) error {
	if width <= 0 || height < 0 {
		return fmt.Errorf("invalid poster size %dx%d", width, height)
	}

	f, err := os.Open(frame)
	if err != nil {
		return err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return fmt.Errorf("decode frame: %w", err)
	}
	img = resize.Resize(uint(width), uint(height), img, resize.Lanczos3)

	if err := util.EnsureDir(filepath.Dir(output)); err != nil {
		return err
	}
	out, err := os.Create(output)
	if err != nil {
		return err
	}
	if err := jpeg.Encode(out, img, &jpeg.Options{Quality: posterQuality}); err != nil {
		out.Close()
		return fmt.Errorf("encode poster: %w", err)
	}
	return out.Close()
}
