package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/kikiluvv/quizprep/internal/config"
	"github.com/kikiluvv/quizprep/internal/ffmpeg"
	"github.com/kikiluvv/quizprep/internal/pipeline"
	"github.com/kikiluvv/quizprep/internal/prompt"
	"github.com/kikiluvv/quizprep/internal/questionnaire"
	"github.com/kikiluvv/quizprep/pkg/util"
)

func newVideoCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "video",
		Short: "Video clip commands",
	}
	cmd.AddCommand(newVideoExtractCmd(a))
	cmd.AddCommand(newVideoConvertCmd(a))
	return cmd
}

// newTranscoder locates ffmpeg and confirms it runs before any work starts.
// Tests swap it for an in-process fake.
var newTranscoder = func(ctx context.Context, logger zerolog.Logger, cfg config.VideoConfig) (pipeline.Transcoder, error) {
	exec, err := ffmpeg.New(logger, cfg)
	if err != nil {
		return nil, err
	}
	if err := exec.Available(ctx); err != nil {
		return nil, err
	}
	return exec, nil
}

func (a *app) newPipeline(cmd *cobra.Command, cfg *config.Config) (*pipeline.Pipeline, error) {
	exec, err := newTranscoder(cmd.Context(), a.logger, cfg.Video)
	if err != nil {
		return nil, err
	}
	return pipeline.New(a.logger, exec), nil
}

func newVideoExtractCmd(a *app) *cobra.Command {
	var (
		source      string
		data        string
		outputDir   string
		rangesPath  string
		width       int
		clipSeconds float64
		posters     bool
		patchURLs   bool
	)

	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Cut one browser-ready clip per questionnaire item",
		Long: "Cuts a segment of the source video for every questionnaire item, scales it to --width\n" +
			"and encodes it as H.264 baseline MP4. Items listed in --time-ranges use their range;\n" +
			"the rest get a reproducible pseudo-random window seeded by their position.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.FromContext(cmd.Context())

			pipe, err := a.newPipeline(cmd, cfg)
			if err != nil {
				return err
			}

			seconds := cfg.Video.ClipSeconds
			if clipSeconds > 0 {
				seconds = clipSeconds
			}

			res, err := pipe.Extract(cmd.Context(), pipeline.ExtractOptions{
				SourceVideo:       source,
				QuestionnairePath: data,
				OutputDir:         outputDir,
				RangesPath:        rangesPath,
				Width:             intOr(width, cfg.Video.Width),
				ClipLength:        util.Seconds(seconds),
				AssumedDuration:   util.Seconds(cfg.Video.AssumedDurationSeconds),
				Posters:           posters,
				PatchURLs:         patchURLs,
			})
			if err != nil {
				return err
			}

			a.printer().Extract(outputDir, res)
			if res.Extracted == 0 && res.Failed > 0 {
				return fmt.Errorf("no clips extracted, %d failed", res.Failed)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&source, "source-video", "s", "", "source video to cut clips from")
	cmd.Flags().StringVarP(&data, "questionnaire-data", "q", defaultDataFile, "questionnaire file listing the items")
	cmd.Flags().StringVarP(&outputDir, "output-dir", "o", "videos", "directory for the clips")
	cmd.Flags().StringVar(&rangesPath, "time-ranges", "", `JSON object mapping item id to "start-end" seconds`)
	cmd.Flags().IntVar(&width, "width", 0, "output width in pixels (default from config: 640)")
	cmd.Flags().Float64Var(&clipSeconds, "clip-seconds", 0, "length of clips without an explicit range (default from config: 5)")
	cmd.Flags().BoolVar(&posters, "poster", false, "write a JPEG poster next to every clip")
	cmd.Flags().BoolVar(&patchURLs, "patch-urls", false, "point videoUrl (and posterUrl) at the written files, keeping a .bak backup")
	_ = cmd.MarkFlagRequired("source-video")

	return cmd
}

func newVideoConvertCmd(a *app) *cobra.Command {
	var (
		outputDir string
		data      string
		width     int
		yes       bool
	)

	cmd := &cobra.Command{
		Use:   "convert <input>",
		Short: "Re-encode a video for browser playback",
		Long: "Re-encodes a video as H.264 baseline MP4 with the moov atom up front. When the\n" +
			"questionnaire file exists, offers to point matching videoUrl entries at the new file.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.FromContext(cmd.Context())
			input := args[0]

			pipe, err := a.newPipeline(cmd, cfg)
			if err != nil {
				return err
			}
			if !util.FileExists(input) {
				return fmt.Errorf("input file %q does not exist", input)
			}

			res, err := pipe.Convert(cmd.Context(), pipeline.ConvertOptions{
				Input:     input,
				OutputDir: stringOr(outputDir, cfg.Video.ConvertedDir),
				Width:     width,
			})
			if err != nil {
				return err
			}

			p := a.printer()
			p.Converted(res)

			if !util.FileExists(data) {
				return nil
			}

			fmt.Fprintf(a.out, "\nYou may need to update the video paths in %s:\n  %q -> %q\n", data, input, res.Output)
			ok, err := prompt.Confirm(a.in, a.out, fmt.Sprintf("Update %s automatically?", data), yes)
			if errors.Is(err, prompt.ErrNotInteractive) {
				a.logger.Info().Msg("stdin is not a terminal, leaving the questionnaire untouched (use --yes to update)")
				return nil
			}
			if err != nil || !ok {
				return err
			}

			n, err := questionnaire.RewriteVideoURL(data, input, res.Output, true)
			if err != nil {
				return err
			}
			backup := ""
			if n > 0 {
				backup = data + ".bak"
			}
			p.Patched(data, n, backup)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputDir, "output-dir", "o", "", "output directory (default from config: videos/converted)")
	cmd.Flags().StringVarP(&data, "questionnaire-data", "q", defaultDataFile, "questionnaire file whose paths may be updated")
	cmd.Flags().IntVar(&width, "width", 0, "scale to this even width (0 = keep source size)")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "update the questionnaire without asking")

	return cmd
}
