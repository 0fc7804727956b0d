package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kikiluvv/quizprep/internal/config"
	"github.com/kikiluvv/quizprep/pkg/util"
)

func newPagesCmd(a *app) *cobra.Command {
	var data, videoDir string

	cmd := &cobra.Command{
		Use:   "pages",
		Short: "Print GitHub Pages publishing instructions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.FromContext(cmd.Context())
			a.printer().Pages(data, stringOr(videoDir, cfg.Convert.VideoDir))
			return nil
		},
	}
	cmd.Flags().StringVarP(&data, "questionnaire-data", "q", defaultDataFile, "questionnaire file to publish")
	cmd.Flags().StringVar(&videoDir, "video-dir", "", "video directory to publish (default from config: videos)")
	return cmd
}

func newConfigCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Config management commands",
	}

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := config.FromContext(cmd.Context()).Marshal()
			if err != nil {
				return err
			}
			_, err = a.out.Write(data)
			return err
		},
	}

	var force bool
	initCmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Write the default configuration to a file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "quizprep.yaml"
			if len(args) == 1 {
				path = args[0]
			}
			if util.FileExists(path) && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}
			if err := config.Default().Save(path); err != nil {
				return err
			}
			a.logger.Info().Str("path", path).Msg("configuration written")
			return nil
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")

	cmd.AddCommand(showCmd, initCmd)
	return cmd
}
