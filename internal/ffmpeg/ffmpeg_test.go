package ffmpeg

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/kikiluvv/quizprep/internal/config"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// skipIfNoFFmpeg skips the test if ffmpeg is not available
func skipIfNoFFmpeg(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		t.Skip("ffmpeg not found in PATH - install with: brew install ffmpeg")
	}
	if _, err := exec.LookPath("ffprobe"); err != nil {
		t.Skip("ffprobe not found in PATH - install with: brew install ffmpeg")
	}
}

func TestSegmentArgs(t *testing.T) {
	args, err := segmentArgs("source.mp4", SegmentOptions{
		Start:    12500 * time.Millisecond,
		Duration: 5 * time.Second,
		Width:    640,
		Height:   360,
		Output:   "videos/technique_1.mp4",
	}, DefaultWebProfile())
	require.NoError(t, err)

	joined := strings.Join(args, " ")
	assert.True(t, strings.HasPrefix(joined, "-ss 00:00:12.500 -i source.mp4 -t 00:00:05.000"), joined)
	assert.Contains(t, joined, "-vf scale=640:360")
	assert.Contains(t, joined, "-c:v libx264 -profile:v baseline -level 3.0 -pix_fmt yuv420p")
	assert.Contains(t, joined, "-crf 23")
	assert.Contains(t, joined, "-c:a aac")
	assert.Contains(t, joined, "-movflags +faststart")
	assert.Equal(t, "videos/technique_1.mp4", args[len(args)-1])
}

func TestSegmentArgsWithoutAudio(t *testing.T) {
	profile := DefaultWebProfile()
	profile.Audio = false

	args, err := segmentArgs("in.mp4", SegmentOptions{Duration: time.Second, Output: "out.mp4"}, profile)
	require.NoError(t, err)
	assert.Contains(t, args, "-an")
	assert.NotContains(t, args, "-c:a")
	assert.NotContains(t, args, "-vf", "no scaling requested")
}

func TestSegmentArgsValidation(t *testing.T) {
	p := DefaultWebProfile()
	_, err := segmentArgs("", SegmentOptions{Duration: time.Second, Output: "o.mp4"}, p)
	assert.Error(t, err)
	_, err = segmentArgs("i.mp4", SegmentOptions{Duration: time.Second}, p)
	assert.Error(t, err)
	_, err = segmentArgs("i.mp4", SegmentOptions{Output: "o.mp4"}, p)
	assert.Error(t, err)
	_, err = segmentArgs("i.mp4", SegmentOptions{Start: -time.Second, Duration: time.Second, Output: "o.mp4"}, p)
	assert.Error(t, err)
}

func TestTranscodeArgs(t *testing.T) {
	args, err := transcodeArgs(TranscodeOptions{Input: "raw.mov", Output: "videos/converted/raw_converted.mp4"}, DefaultWebProfile())
	require.NoError(t, err)

	joined := strings.Join(args, " ")
	assert.True(t, strings.HasPrefix(joined, "-i raw.mov -vf scale=trunc(iw/2)*2:trunc(ih/2)*2"), joined)
	assert.Contains(t, joined, "-preset medium")
	assert.True(t, strings.HasSuffix(joined, "-movflags +faststart videos/converted/raw_converted.mp4"), joined)

	args, err = transcodeArgs(TranscodeOptions{Input: "a.mp4", Output: "b.mp4", Width: 480}, DefaultWebProfile())
	require.NoError(t, err)
	assert.Contains(t, args, "scale=480:-2")

	_, err = transcodeArgs(TranscodeOptions{Input: "a.mp4", Output: "a.mp4"}, DefaultWebProfile())
	assert.Error(t, err)
	_, err = transcodeArgs(TranscodeOptions{Input: "a.mp4", Output: "b.mp4", Width: 481}, DefaultWebProfile())
	assert.Error(t, err)
}

func TestFrameArgs(t *testing.T) {
	args, err := frameArgs("clip.mp4", 2500*time.Millisecond, "poster.png")
	require.NoError(t, err)
	assert.Equal(t, []string{"-ss", "00:00:02.500", "-i", "clip.mp4", "-frames:v", "1", "-q:v", "2", "poster.png"}, args)

	_, err = frameArgs("clip.mp4", 0, "")
	assert.Error(t, err)
}

func TestProfileFromConfig(t *testing.T) {
	cfg := config.Default().Video
	cfg.CRF = 28
	cfg.Preset = "fast"
	cfg.Audio = false

	p := ProfileFromConfig(cfg)
	assert.Equal(t, 28, p.CRF)
	assert.Equal(t, "fast", p.Preset)
	assert.False(t, p.Audio)
	assert.Equal(t, DefaultProfile, p.Profile)
	assert.Equal(t, DefaultPixelFormat, p.PixelFormat)
}

func TestFilterBuilder(t *testing.T) {
	fb := NewFilterBuilder().Scale(640, 360).Custom("setsar=1")
	assert.Equal(t, "scale=640:360,setsar=1", fb.Build())
}

func TestFilterBuilderEmpty(t *testing.T) {
	fb := NewFilterBuilder().Scale(0, 360)
	assert.Empty(t, fb.Build())
}

func TestStreamOutput(t *testing.T) {
	input := strings.Join([]string{
		"[mp4 @ 0x1] some warning",
		"frame=50",
		"fps=25.00",
		"stream_0_0_q=23.0",
		"bitrate= 512.0kbits/s",
		"out_time_us=2000000",
		"out_time=00:00:02.000000",
		"speed=1.5x",
		"progress=continue",
		"frame=100",
		"out_time_us=4000000",
		"progress=end",
	}, "\n")

	var got []Progress
	var logs []string
	streamOutput(strings.NewReader(input), 4*time.Second,
		func(p *Progress) { got = append(got, *p) },
		func(line string) { logs = append(logs, line) })

	require.Len(t, got, 2)
	assert.Equal(t, 50, got[0].Frame)
	assert.InDelta(t, 25.0, got[0].FPS, 0.001)
	assert.Equal(t, "512.0kbits/s", got[0].Bitrate)
	assert.Equal(t, 2*time.Second, got[0].OutTime)
	assert.InDelta(t, 50.0, got[0].Percentage, 0.001)
	assert.False(t, got[0].Done)
	assert.InDelta(t, 100.0, got[1].Percentage, 0.001)
	assert.True(t, got[1].Done)

	assert.Equal(t, []string{"[mp4 @ 0x1] some warning"}, logs)
}

func TestTailKeepsLastLines(t *testing.T) {
	tl := newTail(2)
	tl.add("one")
	tl.add("  ")
	tl.add("two")
	tl.add("three")
	assert.Equal(t, "two; three", tl.String())
}

func TestParseProbe(t *testing.T) {
	out := []byte(`{
  "format": {"duration": "125.500000", "bit_rate": "900000"},
  "streams": [
    {"codec_type": "video", "codec_name": "h264", "width": 1920, "height": 1080, "r_frame_rate": "30000/1001"},
    {"codec_type": "audio", "codec_name": "aac", "bit_rate": "128000"}
  ]
}`)
	info, err := parseProbe("talk.mp4", out)
	require.NoError(t, err)
	assert.Equal(t, 125500*time.Millisecond, info.Duration)
	assert.Equal(t, 1920, info.Width)
	assert.Equal(t, 1080, info.Height)
	assert.InDelta(t, 29.97, info.FPS, 0.01)
	assert.True(t, info.HasAudio)
	assert.Equal(t, int64(128000), info.AudioBitrate)
}

func TestParseProbeWithoutVideo(t *testing.T) {
	_, err := parseProbe("song.m4a", []byte(`{"format": {"duration": "3"}, "streams": [{"codec_type": "audio"}]}`))
	assert.ErrorIs(t, err, ErrNoVideoStream)

	_, err = parseProbe("junk", []byte("not json"))
	assert.Error(t, err)
}

func TestNewMissingBinary(t *testing.T) {
	cfg := config.Default().Video
	cfg.FFmpegPath = filepath.Join(t.TempDir(), "no-such-ffmpeg")

	_, err := New(zerolog.Nop(), cfg)
	assert.ErrorIs(t, err, ErrNotInstalled)
}

// makeTestVideo renders a short synthetic clip with ffmpeg's lavfi source.
func makeTestVideo(t *testing.T, seconds int) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "source.mp4")
	cmd := exec.Command("ffmpeg", "-y", "-hide_banner", "-loglevel", "error",
		"-f", "lavfi", "-i", "testsrc=size=320x240:rate=25:duration="+itoa(seconds),
		"-f", "lavfi", "-i", "sine=frequency=440:duration="+itoa(seconds),
		"-shortest", "-c:v", "libx264", "-pix_fmt", "yuv420p", "-c:a", "aac", path)
	if out, err := cmd.CombinedOutput(); err != nil {
		t.Skipf("cannot render test video: %v: %s", err, out)
	}
	return path
}

func TestExtractSegmentIntegration(t *testing.T) {
	skipIfNoFFmpeg(t)

	e, err := New(zerolog.Nop(), config.Default().Video)
	require.NoError(t, err)
	ctx := context.Background()
	require.NoError(t, e.Available(ctx))

	source := makeTestVideo(t, 4)
	out := filepath.Join(t.TempDir(), "clip.mp4")

	var updates int
	err = e.ExtractSegment(ctx, source, SegmentOptions{
		Start:        time.Second,
		Duration:     2 * time.Second,
		Width:        160,
		Height:       120,
		Output:       out,
		ProgressFunc: func(*Progress) { updates++ },
	})
	require.NoError(t, err)
	assert.Positive(t, updates)

	info, err := e.ProbeVideo(ctx, out)
	require.NoError(t, err)
	assert.Equal(t, 160, info.Width)
	assert.Equal(t, 120, info.Height)
	assert.InDelta(t, 2.0, info.Duration.Seconds(), 0.15)
	assert.Equal(t, "h264", info.VideoCodec)
}

func TestTranscodeAndFrameIntegration(t *testing.T) {
	skipIfNoFFmpeg(t)

	e, err := New(zerolog.Nop(), config.Default().Video)
	require.NoError(t, err)
	ctx := context.Background()

	source := makeTestVideo(t, 2)
	dir := t.TempDir()
	out := filepath.Join(dir, "source_converted.mp4")

	require.NoError(t, e.Transcode(ctx, TranscodeOptions{Input: source, Output: out}))
	info, err := e.ProbeVideo(ctx, out)
	require.NoError(t, err)
	assert.Equal(t, 320, info.Width)

	frame := filepath.Join(dir, "frame.png")
	require.NoError(t, e.ExtractFrame(ctx, out, time.Second, frame))
	st, err := os.Stat(frame)
	require.NoError(t, err)
	assert.Positive(t, st.Size())
}

func TestRunCancelled(t *testing.T) {
	skipIfNoFFmpeg(t)

	e, err := New(zerolog.Nop(), config.Default().Video)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = e.Run(ctx, RunOptions{Args: []string{"-f", "lavfi", "-i", "testsrc", "-f", "null", "-"}})
	assert.Error(t, err)
}
