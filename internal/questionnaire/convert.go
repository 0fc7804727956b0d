package questionnaire

import (
	"fmt"
	"math/rand/v2"
	"path"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
)

// ConvertOptions configures both converters.
type ConvertOptions struct {
	VideoDir string
	IDPrefix string
	// MaxItems truncates the input when positive.
	MaxItems int
	Rand     *rand.Rand
	Logger   zerolog.Logger
}

// NewRand returns a generator whose sequence depends only on seed.
func NewRand(seed int64) *rand.Rand {
	s := uint64(seed)
	return rand.New(rand.NewPCG(s, s^0x9e3779b97f4a7c15))
}

func (o ConvertOptions) withDefaults() ConvertOptions {
	if o.VideoDir == "" {
		o.VideoDir = "videos"
	}
	if o.IDPrefix == "" {
		o.IDPrefix = "technique"
	}
	if o.Rand == nil {
		o.Rand = NewRand(time.Now().UnixNano())
	}
	return o
}

// Convert builds the flat-list form: ground truth and distractors shuffled together.
func Convert(records []SourceRecord, opts ConvertOptions) Result {
	return convert(records, opts, func(rng *rand.Rand, truth string, distractors []string) ([]string, *int) {
		options := make([]string, 0, len(distractors)+1)
		options = append(options, truth)
		options = append(options, distractors...)
		rng.Shuffle(len(options), func(i, j int) {
			options[i], options[j] = options[j], options[i]
		})
		return options, nil
	})
}

// ConvertIndexed inserts the ground truth at a random position among the
// distractors and records that position in CorrectOptionIndex.
func ConvertIndexed(records []SourceRecord, opts ConvertOptions) Result {
	return convert(records, opts, func(rng *rand.Rand, truth string, distractors []string) ([]string, *int) {
		idx := rng.IntN(len(distractors) + 1)
		options := make([]string, 0, len(distractors)+1)
		options = append(options, distractors[:idx]...)
		options = append(options, truth)
		options = append(options, distractors[idx:]...)
		return options, &idx
	})
}

type arrangeFunc func(rng *rand.Rand, truth string, distractors []string) ([]string, *int)

func convert(records []SourceRecord, opts ConvertOptions, arrange arrangeFunc) Result {
	opts = opts.withDefaults()
	logger := opts.Logger.With().Str("component", "convert").Logger()

	if opts.MaxItems > 0 && opts.MaxItems < len(records) {
		logger.Info().Int("max_items", opts.MaxItems).Int("available", len(records)).Msg("limiting input")
		records = records[:opts.MaxItems]
	}

	result := Result{Total: len(records), Items: make([]Item, 0, len(records))}
	for i, rec := range records {
		if err := rec.Validate(); err != nil {
			logger.Warn().Int("item", i+1).Err(err).Msg("skipping item")
			result.Skipped = append(result.Skipped, Skip{Index: i + 1, Reason: err})
			continue
		}

		id := fmt.Sprintf("%s_%d", opts.IDPrefix, i+1)
		options, correct := arrange(opts.Rand, rec.Truth(), rec.NegativeComments)
		result.Items = append(result.Items, Item{
			ID:                 id,
			VideoURL:           path.Join(filepath.ToSlash(opts.VideoDir), id+".mp4"),
			GroundTruth:        rec.Truth(),
			Options:            options,
			CorrectOptionIndex: correct,
		})
	}

	logger.Info().
		Int("converted", len(result.Items)).
		Int("skipped", len(result.Skipped)).
		Msg("conversion complete")
	return result
}
