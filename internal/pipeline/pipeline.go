// Package pipeline turns questionnaire files and source videos into the
// clips the questionnaire front end plays.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/kikiluvv/quizprep/internal/clips"
	"github.com/kikiluvv/quizprep/internal/ffmpeg"
	"github.com/kikiluvv/quizprep/internal/questionnaire"
	"github.com/kikiluvv/quizprep/pkg/util"
	"github.com/rs/zerolog"
)

// Pipeline orchestrates the video workflows
type Pipeline struct {
	logger zerolog.Logger
	exec   Transcoder
}

// New creates a new pipeline instance
func New(logger zerolog.Logger, exec Transcoder) *Pipeline {
	return &Pipeline{
		logger: logger.With().Str("component", "pipeline").Logger(),
		exec:   exec,
	}
}

// Extract cuts one clip per questionnaire item from the source video.
// Items that fail are logged and counted; only run-level problems return an
// error.
func (p *Pipeline) Extract(ctx context.Context, opts ExtractOptions) (*ExtractResult, error) {
	if opts.SourceVideo == "" {
		return nil, fmt.Errorf("source video is required")
	}
	if opts.ClipLength <= 0 {
		return nil, fmt.Errorf("clip length must be positive")
	}
	if !util.FileExists(opts.SourceVideo) {
		return nil, fmt.Errorf("source video %s does not exist", opts.SourceVideo)
	}

	items, err := questionnaire.LoadItems(opts.QuestionnairePath)
	if err != nil {
		return nil, err
	}

	var ranges clips.Ranges
	if opts.RangesPath != "" {
		if ranges, err = clips.LoadRanges(opts.RangesPath); err != nil {
			return nil, err
		}
	}

	info, err := p.exec.ProbeVideo(ctx, opts.SourceVideo)
	if err != nil {
		return nil, fmt.Errorf("failed to probe video: %w", err)
	}

	width, height, err := clips.ScaledSize(info.Width, info.Height, opts.Width)
	if err != nil {
		return nil, fmt.Errorf("output size: %w", err)
	}

	p.logger.Info().
		Str("source", opts.SourceVideo).
		Dur("duration", info.Duration).
		Int("width", info.Width).
		Int("height", info.Height).
		Float64("fps", info.FPS).
		Int("items", len(items)).
		Msg("video metadata extracted")

	if err := util.EnsureDir(opts.OutputDir); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	result := &ExtractResult{Source: info, Width: width, Height: height}
	planned, planErrs := p.plan(items, ranges, info, opts)
	result.Failed += planErrs

	for _, clip := range planned {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		if err := p.extractOne(ctx, opts, clip, width, height); err != nil {
			util.CleanupFiles(clip.Output)
			if ctx.Err() != nil {
				return result, ctx.Err()
			}
			result.Failed++
			p.logger.Warn().Err(err).Str("id", clip.ID).Msg("clip extraction failed")
			continue
		}
		result.Extracted++
		result.Clips = append(result.Clips, clip)

		if opts.Posters {
			poster, err := p.writePoster(ctx, opts.SourceVideo, clip, width, height)
			if err != nil {
				p.logger.Warn().Err(err).Str("id", clip.ID).Msg("poster failed")
				continue
			}
			clip.Poster = poster
			result.Posters++
		}
	}

	if opts.PatchURLs && len(result.Clips) > 0 {
		n, err := patchURLs(opts.QuestionnairePath, result.Clips)
		if err != nil {
			return result, fmt.Errorf("update questionnaire: %w", err)
		}
		result.Patched = n
	}

	p.logger.Info().
		Int("extracted", result.Extracted).
		Int("failed", result.Failed).
		Int("posters", result.Posters).
		Int("patched", result.Patched).
		Msg("extraction complete")

	return result, nil
}

// plan assigns each item a clamped window and an output path. Items whose
// window is empty are logged and counted.
func (p *Pipeline) plan(items []questionnaire.Item, ranges clips.Ranges, info *ffmpeg.VideoInfo, opts ExtractOptions) ([]*clips.Clip, int) {
	assumed := info.Duration
	if assumed <= 0 {
		assumed = opts.AssumedDuration
		p.logger.Warn().Dur("assumed", assumed).Msg("source duration unknown, assuming")
	}

	var planned []*clips.Clip
	failed := 0
	seen := map[string]string{}
	for i, item := range items {
		id := item.ID
		if id == "" {
			id = fmt.Sprintf("item_%d", i+1)
		}

		r, explicit := ranges[id]
		if !explicit {
			r = clips.DefaultRange(i, assumed, opts.ClipLength)
		}

		w, err := clips.Clamp(r, info.Duration)
		if err != nil {
			failed++
			p.logger.Warn().Err(err).Str("id", id).Msg("skipping item")
			continue
		}

		output := filepath.Join(opts.OutputDir, outputName(item.VideoURL, id))
		if prev, dup := seen[output]; dup {
			failed++
			p.logger.Warn().Str("id", id).Str("other", prev).Str("output", output).Msg("output name already used, skipping item")
			continue
		}
		seen[output] = id

		first, last := w.Frames(info.FPS)
		p.logger.Debug().
			Str("id", id).
			Dur("start", w.Start).
			Dur("end", w.End).
			Int("first_frame", first).
			Int("last_frame", last).
			Bool("explicit", explicit).
			Msg("planned clip")

		planned = append(planned, &clips.Clip{
			Index:     i,
			ID:        id,
			Start:     w.Start,
			End:       w.End,
			Duration:  w.Duration(),
			SourceURL: item.VideoURL,
			Output:    output,
			Explicit:  explicit,
		})
	}
	return planned, failed
}

// outputName is the basename of videoUrl, or <id>.mp4 when it has none.
func outputName(videoURL, id string) string {
	name := path.Base(strings.ReplaceAll(videoURL, `\`, "/"))
	if videoURL == "" || name == "." || name == "/" {
		return id + ".mp4"
	}
	if filepath.Ext(name) == "" {
		name += ".mp4"
	}
	return name
}

func (p *Pipeline) extractOne(ctx context.Context, opts ExtractOptions, clip *clips.Clip, width, height int) error {
	return p.exec.ExtractSegment(ctx, opts.SourceVideo, ffmpeg.SegmentOptions{
		Start:    clip.Start,
		Duration: clip.Duration,
		Width:    width,
		Height:   height,
		Output:   clip.Output,
		ProgressFunc: func(pr *ffmpeg.Progress) {
			p.logger.Debug().
				Str("id", clip.ID).
				Int("frame", pr.Frame).
				Float64("percent", pr.Percentage).
				Msg("progress")
		},
	})
}

// patchURLs points each extracted item at its clip and poster. Items are
// matched by position so empty or repeated ids still get their own clip.
func patchURLs(questionnairePath string, extracted []*clips.Clip) (int, error) {
	byIndex := make(map[int]*clips.Clip, len(extracted))
	for _, c := range extracted {
		byIndex[c.Index] = c
	}
	return questionnaire.PatchItems(questionnairePath, true, func(i int, item *questionnaire.Item) bool {
		clip, ok := byIndex[i]
		if !ok {
			return false
		}
		changed := false
		if url := filepath.ToSlash(clip.Output); item.VideoURL != url {
			item.VideoURL = url
			changed = true
		}
		if clip.Poster != "" {
			if url := filepath.ToSlash(clip.Poster); item.PosterURL != url {
				item.PosterURL = url
				changed = true
			}
		}
		return changed
	})
}

// Convert re-encodes a whole video to <output_dir>/<name>_converted.mp4.
func (p *Pipeline) Convert(ctx context.Context, opts ConvertOptions) (*ConvertResult, error) {
	if opts.Input == "" {
		return nil, fmt.Errorf("input path cannot be empty")
	}
	if !util.FileExists(opts.Input) {
		return nil, fmt.Errorf("input file %s does not exist", opts.Input)
	}
	if err := util.EnsureDir(opts.OutputDir); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	output := filepath.Join(opts.OutputDir, util.StemName(opts.Input)+"_converted.mp4")
	if samePath(opts.Input, output) {
		return nil, fmt.Errorf("output %s would overwrite the input", output)
	}

	result := &ConvertResult{Input: opts.Input, Output: output}
	if info, err := p.exec.ProbeVideo(ctx, opts.Input); err != nil {
		if errors.Is(err, ffmpeg.ErrNoVideoStream) {
			return nil, err
		}
		p.logger.Warn().Err(err).Msg("probe failed, continuing without progress percentages")
	} else {
		result.Duration = info.Duration
	}

	p.logger.Info().Str("input", opts.Input).Str("output", output).Msg("converting video")

	var last int
	err := p.exec.Transcode(ctx, ffmpeg.TranscodeOptions{
		Input:    opts.Input,
		Output:   output,
		Width:    opts.Width,
		Duration: result.Duration,
		ProgressFunc: func(pr *ffmpeg.Progress) {
			// log every tenth percent
			if step := int(pr.Percentage) / 10; step > last {
				last = step
				p.logger.Info().Float64("percent", pr.Percentage).Str("speed", pr.Speed).Msg("converting")
			}
		},
	})
	if err != nil {
		util.CleanupFiles(output)
		return nil, err
	}

	if size, err := util.FileSizeMB(output); err == nil {
		result.SizeMB = size
	}
	return result, nil
}

func samePath(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA != nil || errB != nil {
		return filepath.Clean(a) == filepath.Clean(b)
	}
	return absA == absB
}
