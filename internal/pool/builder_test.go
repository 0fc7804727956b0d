package pool

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kikiluvv/quizprep/internal/config"
	"github.com/kikiluvv/quizprep/internal/questionnaire"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sample(gt string, distractors ...string) map[string]any {
	s := map[string]any{"negative_comments": distractors}
	if gt != "-" {
		s["GT"] = gt
	}
	return s
}

func writeResultFile(t *testing.T, dir, name string, samples ...map[string]any) {
	t.Helper()
	data, err := json.Marshal(map[string]any{"enriched_samples": samples})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), data, 0o644))
}

func newBuilder(t *testing.T, opts Options) *Builder {
	t.Helper()
	if opts.Rand == nil {
		opts.Rand = questionnaire.NewRand(1)
	}
	b, err := NewBuilder(zerolog.Nop(), opts, NewScenarios(config.Default().Pool))
	require.NoError(t, err)
	return b
}

func TestParseFileName(t *testing.T) {
	domain, isGE := ParseFileName("violin_ge_run2_enriched.json")
	assert.Equal(t, "violin", domain)
	assert.True(t, isGE)

	domain, isGE = ParseFileName("basketball_tips_enriched.json")
	assert.Equal(t, "basketball", domain)
	assert.False(t, isGE)

	domain, isGE = ParseFileName("cpr_enriched_ge.json")
	assert.Equal(t, "cpr", domain)
	assert.False(t, isGE, "_ge_ must be delimited on both sides")
}

func TestScenarioLookup(t *testing.T) {
	s := NewScenarios(config.Default().Pool)
	assert.Equal(t, "A violin student is executing a good performance.", s.Text("violin", true))
	assert.Equal(t, "A CPR student is struggling with their emergency technique.", s.Text("CPR", false))
	assert.Equal(t, "A player is executing a good performance.", s.Text("curling", true))
	assert.Equal(t, "A player is struggling with their technique.", s.Text("curling", false))
}

func TestCollectIncludesEveryValidSample(t *testing.T) {
	dir := t.TempDir()
	writeResultFile(t, dir, "piano_tips_enriched.json",
		sample("Relax the wrist.", "Tense the wrist."),
		sample("", "orphan"),
		sample("-", "missing key"),
		sample("Use the pedal sparingly.", "Hold the pedal."),
	)
	writeResultFile(t, dir, "dance_ge_enriched.json",
		sample("Good spotting on the turn.", "Head drops on the turn.", "Arms flail."),
	)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignore"), 0o644))

	result, err := newBuilder(t, Options{Strategy: StrategyCollect}).Build(context.Background(), dir)
	require.NoError(t, err)

	require.Len(t, result.Items, 3)
	assert.Equal(t, 2, result.Skipped)
	assert.Len(t, result.Files, 2)

	// os.ReadDir returns names sorted, so dance precedes piano.
	first := result.Items[0]
	assert.Equal(t, "dance_1", first.ID)
	assert.Equal(t, "dance", first.Domain)
	require.NotNil(t, first.IsGE)
	assert.True(t, *first.IsGE)
	assert.Equal(t, "A dance student is executing a good movement performance.", first.ScenarioText)
	assert.Equal(t, "videos/placeholder_dance_1.mp4", first.VideoURL)

	assert.Equal(t, "piano_2", result.Items[1].ID)
	assert.Equal(t, "piano_3", result.Items[2].ID)
	assert.False(t, *result.Items[1].IsGE)
}

func TestSampleTakesAtMostPerFile(t *testing.T) {
	dir := t.TempDir()
	var samples []map[string]any
	for i := 0; i < 10; i++ {
		samples = append(samples, sample(fmt.Sprintf("truth %d", i), "wrong"))
	}
	writeResultFile(t, dir, "soccer_tips_enriched.json", samples...)
	writeResultFile(t, dir, "guitar_ge_enriched.json", sample("only one", "wrong"))

	result, err := newBuilder(t, Options{Strategy: StrategySample, PerFile: 3}).Build(context.Background(), dir)
	require.NoError(t, err)

	perDomain := map[string]int{}
	for _, item := range result.Items {
		perDomain[item.Domain]++
	}
	assert.Equal(t, map[string]int{"soccer": 3, "guitar": 1}, perDomain)

	distinct := map[string]bool{}
	for _, item := range result.Items {
		distinct[item.GroundTruth] = true
	}
	assert.Len(t, distinct, 4, "sampling is without replacement")
}

func TestSampleIsReproducibleWithSeed(t *testing.T) {
	dir := t.TempDir()
	var samples []map[string]any
	for i := 0; i < 20; i++ {
		samples = append(samples, sample(fmt.Sprintf("truth %d", i), "wrong"))
	}
	writeResultFile(t, dir, "bike_tips_enriched.json", samples...)

	build := func() []questionnaire.Item {
		b := newBuilder(t, Options{Strategy: StrategySample, PerFile: 4, Rand: questionnaire.NewRand(9)})
		result, err := b.Build(context.Background(), dir)
		require.NoError(t, err)
		return result.Items
	}
	assert.Equal(t, build(), build())
}

func TestMinDistractorsIsNeverViolated(t *testing.T) {
	dir := t.TempDir()
	writeResultFile(t, dir, "omelet_tips_enriched.json",
		sample("a", "x"),
		sample("b", "x", "y"),
		sample("c", "x", "y", "z"),
		sample("d"),
	)

	result, err := newBuilder(t, Options{Strategy: StrategyCollect, MinDistractors: 2}).Build(context.Background(), dir)
	require.NoError(t, err)

	require.Len(t, result.Items, 2)
	for _, item := range result.Items {
		assert.GreaterOrEqual(t, len(item.NegativeComments), 2, item.ID)
	}
	assert.Equal(t, 2, result.Skipped)
}

func TestUniqueDropsRepeatedGroundTruth(t *testing.T) {
	dir := t.TempDir()
	writeResultFile(t, dir, "salad_tips_a_enriched.json", sample("Dry the leaves.", "Soak the leaves."))
	writeResultFile(t, dir, "salad_tips_b_enriched.json", sample(" dry the leaves. ", "Skip washing."))
	writeResultFile(t, dir, "violin_tips_enriched.json", sample("Dry the leaves.", "Other."))

	result, err := newBuilder(t, Options{Strategy: StrategyCollect, Unique: true}).Build(context.Background(), dir)
	require.NoError(t, err)

	assert.Len(t, result.Items, 2)
	assert.Equal(t, 1, result.Duplicates)
}

func TestDomainFilterAndBrokenFiles(t *testing.T) {
	dir := t.TempDir()
	writeResultFile(t, dir, "covid_tips_enriched.json", sample("Mask on.", "Mask off."))
	writeResultFile(t, dir, "cooking_tips_enriched.json", sample("Low heat.", "High heat."))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "covid_ge_enriched.json"), []byte("{broken"), 0o644))

	result, err := newBuilder(t, Options{Strategy: StrategyCollect, Domains: []string{"COVID"}}).Build(context.Background(), dir)
	require.NoError(t, err)

	require.Len(t, result.Items, 1)
	assert.Equal(t, "covid", result.Items[0].Domain)
	assert.Equal(t, 1, result.FailedFiles)
	assert.Equal(t, 1, result.IgnoredFiles)

	var failed *FileReport
	for i := range result.Files {
		if result.Files[i].Err != nil {
			failed = &result.Files[i]
		}
	}
	require.NotNil(t, failed)
	assert.True(t, strings.Contains(failed.Err.Error(), "covid_ge_enriched.json"))
}

func TestSourceVideoProvenance(t *testing.T) {
	dir := t.TempDir()
	s := sample("Chalk up first.", "Skip chalk.")
	s["take_name"] = "take7"
	s["recording"] = "cam2"
	writeResultFile(t, dir, "bouldering_ge_enriched.json", s)

	result, err := newBuilder(t, Options{Strategy: StrategyCollect}).Build(context.Background(), dir)
	require.NoError(t, err)
	require.Len(t, result.Items, 1)
	assert.Equal(t, "take7_cam2", result.Items[0].SourceVideo)
}

func TestNewBuilderRejectsBadOptions(t *testing.T) {
	scen := NewScenarios(config.Default().Pool)
	_, err := NewBuilder(zerolog.Nop(), Options{Strategy: StrategySample}, scen)
	require.Error(t, err)

	_, err = NewBuilder(zerolog.Nop(), Options{Strategy: "random"}, scen)
	require.Error(t, err)
}

func TestBuildMissingDir(t *testing.T) {
	_, err := newBuilder(t, Options{Strategy: StrategyCollect}).Build(context.Background(), filepath.Join(t.TempDir(), "none"))
	require.Error(t, err)
}

func TestBuildHonorsCancellation(t *testing.T) {
	dir := t.TempDir()
	writeResultFile(t, dir, "piano_tips_enriched.json", sample("a", "b"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := newBuilder(t, Options{Strategy: StrategyCollect}).Build(ctx, dir)
	require.ErrorIs(t, err, context.Canceled)
}

func TestInvalidSamplesAreWarned(t *testing.T) {
	dir := t.TempDir()
	writeResultFile(t, dir, "piano_tips_enriched.json",
		sample("Relax the wrist.", "Tense the wrist."),
		sample("", "orphan"),
	)

	var buf bytes.Buffer
	b, err := NewBuilder(zerolog.New(&buf), Options{Strategy: StrategyCollect, Rand: questionnaire.NewRand(1)}, NewScenarios(config.Default().Pool))
	require.NoError(t, err)

	result, err := b.Build(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Skipped)

	var warned bool
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		var entry map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &entry))
		if entry["message"] == "skipping sample" {
			warned = true
			assert.Equal(t, "warn", entry["level"])
			assert.Equal(t, "piano_tips_enriched.json", entry["file"])
		}
	}
	assert.True(t, warned)
}
