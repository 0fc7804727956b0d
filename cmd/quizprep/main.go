package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/kikiluvv/quizprep/internal/config"
	"github.com/kikiluvv/quizprep/internal/ffmpeg"
	"github.com/kikiluvv/quizprep/internal/logging"
	"github.com/kikiluvv/quizprep/internal/questionnaire"
	"github.com/kikiluvv/quizprep/internal/report"
)

// defaultDataFile is the questionnaire file the front end loads.
const defaultDataFile = "questionnaire_data.json"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run executes the command line and returns the process exit status.
func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	root := newRootCmd(stdin, stdout)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		if errors.Is(err, ffmpeg.ErrNotInstalled) {
			fmt.Fprintln(stderr, ffmpeg.InstallHint)
		}
		return 1
	}
	return 0
}

// app carries global flags and the streams commands talk to.
type app struct {
	in  io.Reader
	out io.Writer

	cfgFile string
	verbose bool
	seed    int64
	noColor bool

	logger zerolog.Logger
}

func newRootCmd(stdin io.Reader, stdout io.Writer) *cobra.Command {
	a := &app{in: stdin, out: stdout, logger: zerolog.Nop()}

	rootCmd := &cobra.Command{
		Use:           "quizprep",
		Short:         "quizprep - questionnaire data preparation toolkit",
		Long:          "Converts ground-truth records into questionnaire items, builds question pools and cuts browser-ready video clips.",
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// flags parsed; remaining errors are not usage errors
			cmd.SilenceUsage = true

			runID := logging.Init(cmd.ErrOrStderr(), a.verbose, a.noColor)
			a.logger = logging.WithComponent("cli")
			a.logger.Debug().Str("run_id", runID).Str("command", cmd.CommandPath()).Msg("starting")

			cfg, err := config.Load(a.cfgFile)
			if err != nil {
				return err
			}

			ctx := config.WithConfig(cmd.Context(), cfg)
			cmd.SetContext(ctx)

			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file (default: ./quizprep.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().Int64Var(&a.seed, "seed", 0, "random seed for reproducible output (default: time based)")
	rootCmd.PersistentFlags().BoolVar(&a.noColor, "no-color", false, "disable coloured output")

	rootCmd.AddCommand(newConvertCmd(a))
	rootCmd.AddCommand(newPoolCmd(a))
	rootCmd.AddCommand(newVideoCmd(a))
	rootCmd.AddCommand(newPagesCmd(a))
	rootCmd.AddCommand(newConfigCmd(a))

	return rootCmd
}

// rng returns the generator for this run, logging the seed so a run can be
// repeated with --seed.
func (a *app) rng(cmd *cobra.Command) *rand.Rand {
	seed := a.seed
	if f := cmd.Flag("seed"); f == nil || !f.Changed {
		seed = time.Now().UnixNano()
	}
	a.logger.Info().Int64("seed", seed).Msg("random seed")
	return questionnaire.NewRand(seed)
}

func (a *app) printer() *report.Printer {
	return report.New(a.out, a.noColor)
}

func stringOr(v, fallback string) string {
	if v != "" {
		return v
	}
	return fallback
}

func intOr(v, fallback int) int {
	if v > 0 {
		return v
	}
	return fallback
}
