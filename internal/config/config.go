package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

type contextKey string

const configKey contextKey = "config"

// Config holds all application configuration
type Config struct {
	Convert ConvertConfig `yaml:"convert"`
	Pool    PoolConfig    `yaml:"pool"`
	Video   VideoConfig   `yaml:"video"`
}

// ConvertConfig controls the ground-truth converters.
type ConvertConfig struct {
	VideoDir string `yaml:"video_dir"`
	IDPrefix string `yaml:"id_prefix"`
}

// PoolConfig controls the questionnaire-pool builders.
type PoolConfig struct {
	FileSuffix     string              `yaml:"file_suffix"`
	PerFile        int                 `yaml:"per_file"`
	MinDistractors int                 `yaml:"min_distractors"`
	MaxFileMB      float64             `yaml:"max_file_mb"`
	VideoDir       string              `yaml:"video_dir"`
	DefaultTips    string              `yaml:"default_tips"`
	DefaultGE      string              `yaml:"default_ge"`
	Scenarios      map[string]Scenario `yaml:"scenarios"`
}

// Scenario holds the two scenario sentences for a domain.
type Scenario struct {
	Tips string `yaml:"tips"`
	GE   string `yaml:"ge"`
}

// VideoConfig controls ffmpeg invocation and clip planning.
type VideoConfig struct {
	FFmpegPath  string `yaml:"ffmpeg_path"`
	FFprobePath string `yaml:"ffprobe_path"`
	Threads     int    `yaml:"threads"`
	Width       int    `yaml:"width"`
	CRF         int    `yaml:"crf"`
	Preset      string `yaml:"preset"`
	Profile     string `yaml:"profile"`
	Level       string `yaml:"level"`
	Audio       bool   `yaml:"audio"`
	// ClipSeconds is the length of clips planned without an explicit range.
	ClipSeconds float64 `yaml:"clip_seconds"`
	// AssumedDurationSeconds is used when ffprobe reports no duration.
	AssumedDurationSeconds float64 `yaml:"assumed_duration_seconds"`
	ConvertedDir           string  `yaml:"converted_dir"`
}

// Load reads configuration from file or returns defaults
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = findConfigFile()
	}
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}

	return cfg, nil
}

// Validate rejects settings that would make every run fail.
func (c *Config) Validate() error {
	if c.Pool.PerFile < 1 {
		return fmt.Errorf("pool.per_file must be at least 1")
	}
	if c.Pool.MinDistractors < 1 {
		return fmt.Errorf("pool.min_distractors must be at least 1")
	}
	if c.Video.Width < 2 {
		return fmt.Errorf("video.width must be at least 2")
	}
	if c.Video.CRF < 0 || c.Video.CRF > 51 {
		return fmt.Errorf("video.crf must be between 0 and 51")
	}
	if c.Video.ClipSeconds <= 0 {
		return fmt.Errorf("video.clip_seconds must be positive")
	}
	return nil
}

// Marshal renders the configuration as YAML
func (c *Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}

// Save writes configuration to file
func (c *Config) Save(path string) error {
	data, err := c.Marshal()
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0o644)
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Convert: ConvertConfig{
			VideoDir: "videos",
			IDPrefix: "technique",
		},
		Pool: PoolConfig{
			FileSuffix:     "_enriched.json",
			PerFile:        2,
			MinDistractors: 1,
			VideoDir:       "videos",
			DefaultTips:    "A player is struggling with their technique.",
			DefaultGE:      "A player is executing a good performance.",
			Scenarios:      defaultScenarios(),
		},
		Video: VideoConfig{
			FFmpegPath:             "ffmpeg",
			FFprobePath:            "ffprobe",
			Width:                  640,
			CRF:                    23,
			Preset:                 "medium",
			Profile:                "baseline",
			Level:                  "3.0",
			Audio:                  true,
			ClipSeconds:            5,
			AssumedDurationSeconds: 600,
			ConvertedDir:           filepath.Join("videos", "converted"),
		},
	}
}

func defaultScenarios() map[string]Scenario {
	return map[string]Scenario{
		"violin": {
			Tips: "A violin student is struggling with their technique.",
			GE:   "A violin student is executing a good performance.",
		},
		"piano": {
			Tips: "A piano student is struggling with their technique.",
			GE:   "A piano student is executing a good performance.",
		},
		"guitar": {
			Tips: "A guitar student is struggling with their technique.",
			GE:   "A guitar student is executing a good performance.",
		},
		"bike": {
			Tips: "A cycling student is having trouble with their bike technique.",
			GE:   "A cycling student is executing a good bike performance.",
		},
		"dance": {
			Tips: "A dance student is struggling with their movement technique.",
			GE:   "A dance student is executing a good movement performance.",
		},
		"basketball": {
			Tips: "A basketball player is struggling with their technique.",
			GE:   "A basketball player is executing a good performance.",
		},
		"soccer": {
			Tips: "A soccer player is struggling with their technique.",
			GE:   "A soccer player is executing a good performance.",
		},
		"salad": {
			Tips: "A cooking student is struggling with their salad preparation technique.",
			GE:   "A cooking student is executing a good salad preparation.",
		},
		"omelet": {
			Tips: "A cooking student is struggling with their omelet preparation technique.",
			GE:   "A cooking student is executing a good omelet preparation.",
		},
		"cooking": {
			Tips: "A cooking student is struggling with their cooking technique.",
			GE:   "A cooking student is executing a good cooking performance.",
		},
		"cpr": {
			Tips: "A CPR student is struggling with their emergency technique.",
			GE:   "A CPR student is executing a good emergency procedure.",
		},
		"covid": {
			Tips: "A healthcare worker is struggling with their COVID-19 procedures.",
			GE:   "A healthcare worker is executing good COVID-19 procedures.",
		},
		"bouldering": {
			Tips: "A climbing student is struggling with their bouldering technique.",
			GE:   "A climbing student is executing good bouldering movements.",
		},
	}
}

func findConfigFile() string {
	candidates := []string{
		"./quizprep.yaml",
		"./quizprep.yml",
	}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, ".quizprep", "config.yaml"))
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// WithConfig stores config in context
func WithConfig(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configKey, cfg)
}

// FromContext retrieves config from context
func FromContext(ctx context.Context) *Config {
	if cfg, ok := ctx.Value(configKey).(*Config); ok {
		return cfg
	}
	return Default()
}
