package ffmpeg

import (
	"time"

	"github.com/kikiluvv/quizprep/internal/config"
)

// VideoInfo contains metadata about a video file
type VideoInfo struct {
	FilePath     string
	Duration     time.Duration
	Width        int
	Height       int
	FPS          float64
	Bitrate      int64
	VideoCodec   string
	HasAudio     bool
	AudioCodec   string
	AudioBitrate int64
}

// Progress represents one `-progress` block reported by ffmpeg.
type Progress struct {
	Frame      int
	FPS        float64
	Bitrate    string
	Time       string
	OutTime    time.Duration
	Speed      string
	Percentage float64
	Done       bool
}

// ProgressFunc is a callback for progress updates during ffmpeg operations.
// Called periodically with progress information as the operation executes.
type ProgressFunc func(*Progress)

// RunOptions configures ffmpeg execution
type RunOptions struct {
	Args []string
	// Duration of the expected output, used to compute Progress.Percentage.
	Duration        time.Duration
	ProgressHandler ProgressFunc
	LogHandler      func(line string)
}

// Default encoding settings
const (
	DefaultCRF         = 23
	DefaultPreset      = "medium"
	DefaultVideoCodec  = "libx264"
	DefaultAudioCodec  = "aac"
	DefaultProfile     = "baseline"
	DefaultLevel       = "3.0"
	DefaultPixelFormat = "yuv420p"
)

// Profile is the browser-compatible H.264 encoding applied to every output.
type Profile struct {
	VideoCodec  string
	Profile     string
	Level       string
	PixelFormat string
	Preset      string
	CRF         int
	Audio       bool
	AudioCodec  string
}

// DefaultWebProfile is H.264 baseline 3.0, yuv420p, AAC.
func DefaultWebProfile() Profile {
	return Profile{
		VideoCodec:  DefaultVideoCodec,
		Profile:     DefaultProfile,
		Level:       DefaultLevel,
		PixelFormat: DefaultPixelFormat,
		Preset:      DefaultPreset,
		CRF:         DefaultCRF,
		Audio:       true,
		AudioCodec:  DefaultAudioCodec,
	}
}

// ProfileFromConfig overlays configured values on DefaultWebProfile.
func ProfileFromConfig(cfg config.VideoConfig) Profile {
	p := DefaultWebProfile()
	if cfg.Profile != "" {
		p.Profile = cfg.Profile
	}
	if cfg.Level != "" {
		p.Level = cfg.Level
	}
	if cfg.Preset != "" {
		p.Preset = cfg.Preset
	}
	p.CRF = cfg.CRF
	p.Audio = cfg.Audio
	return p
}

// args renders the codec flags in ffmpeg order.
func (p Profile) args() []string {
	args := []string{
		"-c:v", p.VideoCodec,
		"-profile:v", p.Profile,
		"-level", p.Level,
		"-pix_fmt", p.PixelFormat,
		"-preset", p.Preset,
		"-crf", itoa(p.CRF),
	}
	if p.Audio {
		args = append(args, "-c:a", p.AudioCodec)
	} else {
		args = append(args, "-an")
	}
	return append(args, "-movflags", "+faststart")
}
