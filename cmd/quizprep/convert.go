package main

import (
	"github.com/spf13/cobra"

	"github.com/kikiluvv/quizprep/internal/config"
	"github.com/kikiluvv/quizprep/internal/questionnaire"
)

func newConvertCmd(a *app) *cobra.Command {
	var (
		input    string
		output   string
		videoDir string
		idPrefix string
		maxItems int
		fromGE   bool
	)

	cmd := &cobra.Command{
		Use:   "convert",
		Short: "Convert ground-truth records into questionnaire items",
		Long: "Converts an array of records carrying GT/groundTruth and negative_comments into questionnaire items.\n" +
			"By default options are shuffled; with --from-ge-json the ground truth is inserted at a random\n" +
			"position and recorded as correctOptionIndex.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.FromContext(cmd.Context())

			records, err := questionnaire.LoadSource(input)
			if err != nil {
				return err
			}
			a.logger.Info().Int("records", len(records)).Str("input", input).Msg("loaded records")

			opts := questionnaire.ConvertOptions{
				VideoDir: stringOr(videoDir, cfg.Convert.VideoDir),
				IDPrefix: stringOr(idPrefix, cfg.Convert.IDPrefix),
				MaxItems: maxItems,
				Rand:     a.rng(cmd),
				Logger:   a.logger,
			}

			var res questionnaire.Result
			if fromGE {
				res = questionnaire.ConvertIndexed(records, opts)
			} else {
				res = questionnaire.Convert(records, opts)
			}

			if err := questionnaire.SaveItems(output, res.Items); err != nil {
				return err
			}
			a.logger.Info().Int("items", len(res.Items)).Str("output", output).Msg("questionnaire saved")

			p := a.printer()
			p.Convert(output, res)
			if fromGE {
				p.Pages(output, opts.VideoDir)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "", "input JSON file with ground truth records")
	cmd.Flags().StringVarP(&output, "output", "o", defaultDataFile, "output questionnaire file")
	cmd.Flags().StringVar(&videoDir, "video-dir", "", "directory prefix for videoUrl (default from config: videos)")
	cmd.Flags().StringVar(&idPrefix, "id-prefix", "", "prefix for item ids (default from config: technique)")
	cmd.Flags().IntVar(&maxItems, "max-items", 0, "convert at most this many records (0 = all)")
	cmd.Flags().BoolVar(&fromGE, "from-ge-json", false, "ge.json mode: keep distractor order and record correctOptionIndex")
	_ = cmd.MarkFlagRequired("input")

	return cmd
}
