package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kikiluvv/quizprep/internal/config"
	"github.com/kikiluvv/quizprep/internal/pool"
	"github.com/kikiluvv/quizprep/internal/questionnaire"
)

func newPoolCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pool",
		Short: "Build a questionnaire pool from enriched result files",
	}
	cmd.AddCommand(newPoolStrategyCmd(a, pool.StrategySample))
	cmd.AddCommand(newPoolStrategyCmd(a, pool.StrategyCollect))
	return cmd
}

func newPoolStrategyCmd(a *app, strategy pool.Strategy) *cobra.Command {
	var (
		resultsDir     string
		output         string
		videoDir       string
		suffix         string
		perFile        int
		minDistractors int
		maxFileMB      float64
		unique         bool
		domains        []string
	)

	short := "Take every valid sample from each result file"
	if strategy == pool.StrategySample {
		short = "Take a random subset of samples from each result file"
	}

	cmd := &cobra.Command{
		Use:   string(strategy),
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.FromContext(cmd.Context())

			maxMB := cfg.Pool.MaxFileMB
			if cmd.Flags().Changed("max-file-mb") {
				maxMB = maxFileMB
			}

			opts := pool.Options{
				Strategy:       strategy,
				PerFile:        intOr(perFile, cfg.Pool.PerFile),
				MinDistractors: intOr(minDistractors, cfg.Pool.MinDistractors),
				MaxFileMB:      maxMB,
				FileSuffix:     stringOr(suffix, cfg.Pool.FileSuffix),
				VideoDir:       stringOr(videoDir, cfg.Pool.VideoDir),
				Unique:         unique,
				Domains:        domains,
				Rand:           a.rng(cmd),
			}

			builder, err := pool.NewBuilder(a.logger, opts, pool.NewScenarios(cfg.Pool))
			if err != nil {
				return err
			}

			res, err := builder.Build(cmd.Context(), resultsDir)
			if err != nil {
				return err
			}
			if len(res.Items) == 0 {
				a.logger.Warn().Str("dir", resultsDir).Msg("no samples met the criteria")
			}

			if err := questionnaire.SaveItems(output, res.Items); err != nil {
				return fmt.Errorf("save pool: %w", err)
			}
			a.logger.Info().Int("items", len(res.Items)).Str("output", output).Msg("pool saved")

			a.printer().Pool(output, strategy, res)
			return nil
		},
	}

	cmd.Flags().StringVarP(&resultsDir, "results-dir", "d", "", "directory holding *_enriched.json result files")
	cmd.Flags().StringVarP(&output, "output", "o", defaultDataFile, "output questionnaire file")
	cmd.Flags().StringVar(&videoDir, "video-dir", "", "directory prefix for placeholder videoUrl (default from config: videos)")
	cmd.Flags().StringVar(&suffix, "suffix", "", "result file name suffix (default from config: _enriched.json)")
	cmd.Flags().IntVar(&minDistractors, "min-distractors", 0, "minimum negative comments a sample needs (default from config: 1)")
	cmd.Flags().Float64Var(&maxFileMB, "max-file-mb", 0, "skip result files larger than this (0 = no limit)")
	cmd.Flags().BoolVar(&unique, "unique", false, "drop samples whose ground truth repeats within a domain")
	cmd.Flags().StringSliceVar(&domains, "domain", nil, "only include these domains (repeatable)")
	if strategy == pool.StrategySample {
		cmd.Flags().IntVar(&perFile, "per-file", 0, "samples taken per result file (default from config: 2)")
	}
	_ = cmd.MarkFlagRequired("results-dir")

	return cmd
}
