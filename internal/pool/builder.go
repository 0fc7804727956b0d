package pool

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/kikiluvv/quizprep/internal/questionnaire"
	"github.com/kikiluvv/quizprep/pkg/util"
	"github.com/rs/zerolog"
)

// Options configures a pool build.
type Options struct {
	Strategy       Strategy
	PerFile        int
	MinDistractors int
	// MaxFileMB skips result files larger than this size; zero disables the check.
	MaxFileMB  float64
	FileSuffix string
	VideoDir   string
	// Unique drops samples whose ground truth already appeared in the same domain.
	Unique  bool
	Domains []string
	Rand    *rand.Rand
}

// Builder scans a directory of enriched result files and assembles items.
type Builder struct {
	logger    zerolog.Logger
	opts      Options
	scenarios Scenarios
	domains   map[string]bool
}

// NewBuilder validates options and returns a Builder.
func NewBuilder(logger zerolog.Logger, opts Options, scenarios Scenarios) (*Builder, error) {
	switch opts.Strategy {
	case StrategySample:
		if opts.PerFile < 1 {
			return nil, fmt.Errorf("per-file sample count must be at least 1, got %d", opts.PerFile)
		}
	case StrategyCollect:
	default:
		return nil, fmt.Errorf("unknown pool strategy %q", opts.Strategy)
	}
	if opts.MinDistractors < 1 {
		opts.MinDistractors = 1
	}
	if opts.FileSuffix == "" {
		opts.FileSuffix = "_enriched.json"
	}
	if opts.VideoDir == "" {
		opts.VideoDir = "videos"
	}
	if opts.Rand == nil {
		opts.Rand = questionnaire.NewRand(time.Now().UnixNano())
	}

	var domains map[string]bool
	if len(opts.Domains) > 0 {
		domains = make(map[string]bool, len(opts.Domains))
		for _, d := range opts.Domains {
			domains[strings.ToLower(strings.TrimSpace(d))] = true
		}
	}

	return &Builder{
		logger:    logger.With().Str("component", "pool").Str("strategy", string(opts.Strategy)).Logger(),
		opts:      opts,
		scenarios: scenarios,
		domains:   domains,
	}, nil
}

// Build reads every matching file in dir and returns the combined pool.
// Files that cannot be read are reported in the result rather than failing the build.
func (b *Builder) Build(ctx context.Context, dir string) (*Result, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read results dir: %w", err)
	}

	result := &Result{Items: []questionnaire.Item{}}
	seen := map[string]bool{}
	next := 1

	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), b.opts.FileSuffix) {
			continue
		}

		report := b.processFile(filepath.Join(dir, entry.Name()), entry.Name(), result, seen, &next)
		result.Files = append(result.Files, report)
	}

	b.logger.Info().
		Int("files", len(result.Files)).
		Int("items", len(result.Items)).
		Int("skipped", result.Skipped).
		Int("duplicates", result.Duplicates).
		Int("failed_files", result.FailedFiles).
		Msg("pool build complete")

	return result, nil
}

func (b *Builder) processFile(full, name string, result *Result, seen map[string]bool, next *int) FileReport {
	domain, isGE := ParseFileName(name)
	report := FileReport{Name: name, Domain: domain, IsGE: isGE}
	logger := b.logger.With().Str("file", name).Str("domain", domain).Bool("is_ge", isGE).Logger()

	if b.domains != nil && !b.domains[strings.ToLower(domain)] {
		logger.Debug().Msg("domain not selected")
		result.IgnoredFiles++
		return report
	}

	if b.opts.MaxFileMB > 0 {
		size, err := util.FileSizeMB(full)
		if err == nil && size > b.opts.MaxFileMB {
			logger.Warn().Float64("size_mb", size).Float64("max_mb", b.opts.MaxFileMB).Msg("skipping oversized file")
			result.IgnoredFiles++
			return report
		}
	}

	samples, err := loadSamples(full)
	if err != nil {
		logger.Error().Err(err).Msg("error processing file")
		report.Err = err
		result.FailedFiles++
		return report
	}
	report.Samples = len(samples)
	if len(samples) == 0 {
		logger.Warn().Msg("no samples found")
		return report
	}

	selected := b.selectSamples(samples)
	report.Selected = len(selected)
	scenario := b.scenarios.Text(domain, isGE)

	for _, sample := range selected {
		truth := ""
		if sample.GT != nil {
			truth = *sample.GT
		}
		if err := questionnaire.ValidateSample(truth, sample.NegativeComments, b.opts.MinDistractors); err != nil {
			logger.Warn().Err(err).Msg("skipping sample")
			result.Skipped++
			continue
		}

		if b.opts.Unique {
			key := strings.ToLower(domain) + "\x00" + strings.ToLower(strings.TrimSpace(truth))
			if seen[key] {
				result.Duplicates++
				continue
			}
			seen[key] = true
		}

		id := fmt.Sprintf("%s_%d", domain, *next)
		ge := isGE
		item := questionnaire.Item{
			ID:               id,
			GroundTruth:      truth,
			NegativeComments: sample.NegativeComments,
			ScenarioText:     scenario,
			Domain:           domain,
			IsGE:             &ge,
			VideoURL:         path.Join(filepath.ToSlash(b.opts.VideoDir), fmt.Sprintf("placeholder_%s_%d.mp4", domain, *next)),
		}
		if sample.TakeName != "" && sample.Recording != "" {
			item.SourceVideo = sample.TakeName + "_" + sample.Recording
		}

		result.Items = append(result.Items, item)
		report.Included++
		*next++
	}

	logger.Info().
		Int("samples", report.Samples).
		Int("selected", report.Selected).
		Int("included", report.Included).
		Msg("processed file")
	return report
}

func (b *Builder) selectSamples(samples []Sample) []Sample {
	if b.opts.Strategy == StrategyCollect {
		return samples
	}

	k := min(b.opts.PerFile, len(samples))
	perm := b.opts.Rand.Perm(len(samples))
	selected := make([]Sample, 0, k)
	for _, idx := range perm[:k] {
		selected = append(selected, samples[idx])
	}
	return selected
}

func loadSamples(full string) ([]Sample, error) {
	data, err := os.ReadFile(full)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", filepath.Base(full), err)
	}
	var file ResultFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse %s: %w", filepath.Base(full), err)
	}
	return file.EnrichedSamples, nil
}
