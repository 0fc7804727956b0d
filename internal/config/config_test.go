package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestLoadMergesOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quizprep.yaml")
	payload := `pool:
  per_file: 5
  scenarios:
    chess:
      tips: "A chess player is struggling."
      ge: "A chess player is playing well."
video:
  width: 480
`
	require.NoError(t, os.WriteFile(path, []byte(payload), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.Pool.PerFile)
	assert.Equal(t, 480, cfg.Video.Width)
	assert.Equal(t, "_enriched.json", cfg.Pool.FileSuffix, "unset keys keep defaults")
	assert.Equal(t, 23, cfg.Video.CRF)
	assert.Equal(t, "A chess player is playing well.", cfg.Pool.Scenarios["chess"].GE)
	assert.Contains(t, cfg.Pool.Scenarios, "violin", "yaml maps merge into the default table")
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quizprep.yaml")
	require.NoError(t, os.WriteFile(path, []byte("video:\n  crf: 80\n"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "crf")
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.yaml")
	cfg := Default()
	cfg.Convert.IDPrefix = "clip"
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "clip", loaded.Convert.IDPrefix)
	assert.Equal(t, cfg.Video, loaded.Video)
}

func TestFromContextFallsBackToDefaults(t *testing.T) {
	cfg := FromContext(context.Background())
	assert.Equal(t, Default().Video.Width, cfg.Video.Width)

	custom := Default()
	custom.Video.Width = 320
	ctx := WithConfig(context.Background(), custom)
	assert.Same(t, custom, FromContext(ctx))
}
