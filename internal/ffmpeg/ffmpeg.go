package ffmpeg

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/kikiluvv/quizprep/internal/config"
	"github.com/rs/zerolog"
)

// ErrNotInstalled is returned by New when a binary cannot be located.
var ErrNotInstalled = errors.New("ffmpeg not installed")

// InstallHint is shown to users when ffmpeg or ffprobe is missing.
const InstallHint = "install ffmpeg first:\n  Ubuntu/Debian: sudo apt-get install ffmpeg\n  macOS: brew install ffmpeg"

// Executor handles all ffmpeg operations with progress streaming
type Executor struct {
	logger      zerolog.Logger
	ffmpegPath  string
	ffprobePath string
	threads     int
	profile     Profile
}

// New creates a new ffmpeg executor. Binary paths come from cfg and are
// resolved against $PATH.
func New(logger zerolog.Logger, cfg config.VideoConfig) (*Executor, error) {
	ffmpegPath, err := lookup(cfg.FFmpegPath, "ffmpeg")
	if err != nil {
		return nil, err
	}

	ffprobePath, err := lookup(cfg.FFprobePath, "ffprobe")
	if err != nil {
		return nil, err
	}

	return &Executor{
		logger:      logger.With().Str("component", "ffmpeg").Logger(),
		ffmpegPath:  ffmpegPath,
		ffprobePath: ffprobePath,
		threads:     cfg.Threads,
		profile:     ProfileFromConfig(cfg),
	}, nil
}

func lookup(configured, fallback string) (string, error) {
	name := configured
	if name == "" {
		name = fallback
	}
	path, err := exec.LookPath(name)
	if err != nil {
		return "", fmt.Errorf("%w: %s not found: %v", ErrNotInstalled, name, err)
	}
	return path, nil
}

// Available runs `ffmpeg -version` to confirm the binary actually executes.
func (e *Executor) Available(ctx context.Context) error {
	out, err := exec.CommandContext(ctx, e.ffmpegPath, "-version").Output()
	if err != nil {
		return fmt.Errorf("%w: %s -version: %v", ErrNotInstalled, e.ffmpegPath, err)
	}
	if line, _, _ := strings.Cut(string(out), "\n"); line != "" {
		e.logger.Debug().Str("version", strings.TrimSpace(line)).Msg("ffmpeg available")
	}
	return nil
}

// Run executes ffmpeg with the given arguments and streams progress
func (e *Executor) Run(ctx context.Context, opts RunOptions) error {
	if len(opts.Args) == 0 {
		return fmt.Errorf("no arguments provided")
	}

	args := e.baseArgs()
	args = append(args, opts.Args...)

	e.logger.Debug().
		Str("cmd", "ffmpeg").
		Strs("args", args).
		Msg("executing ffmpeg")

	cmd := exec.CommandContext(ctx, e.ffmpegPath, args...)

	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("failed to create stderr pipe: %w", err)
	}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("failed to create stdout pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start ffmpeg: %w", err)
	}

	tail := newTail(8)
	logHandler := func(line string) {
		tail.add(line)
		if opts.LogHandler != nil {
			opts.LogHandler(line)
		}
	}

	var wg sync.WaitGroup
	wg.Add(2)

	// Stream stderr (progress + logs)
	go func() {
		defer wg.Done()
		streamOutput(stderr, opts.Duration, opts.ProgressHandler, logHandler)
	}()

	go func() {
		defer wg.Done()
		scanner := bufio.NewScanner(stdout)
		for scanner.Scan() {
			if opts.LogHandler != nil {
				opts.LogHandler(scanner.Text())
			}
		}
	}()

	wg.Wait()

	if err := cmd.Wait(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if last := tail.String(); last != "" {
			return fmt.Errorf("ffmpeg execution failed: %w: %s", err, last)
		}
		return fmt.Errorf("ffmpeg execution failed: %w", err)
	}

	e.logger.Debug().Msg("ffmpeg execution completed")
	return nil
}

func (e *Executor) baseArgs() []string {
	args := []string{"-y", "-hide_banner", "-nostdin", "-loglevel", "error"}
	if e.threads > 0 {
		args = append(args, "-threads", strconv.Itoa(e.threads))
	}
	return append(args, "-progress", "pipe:2", "-nostats")
}

// streamOutput parses `-progress` key=value blocks and forwards every line
// to logHandler. total, when known, turns out_time into a percentage.
func streamOutput(r io.Reader, total time.Duration, progressHandler ProgressFunc, logHandler func(string)) {
	scanner := bufio.NewScanner(r)
	progress := &Progress{}

	for scanner.Scan() {
		line := scanner.Text()

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			if logHandler != nil {
				logHandler(line)
			}
			continue
		}
		value = strings.TrimSpace(value)

		switch key {
		case "frame":
			progress.Frame, _ = strconv.Atoi(value)
		case "fps":
			progress.FPS, _ = strconv.ParseFloat(value, 64)
		case "bitrate":
			progress.Bitrate = value
		case "out_time_us", "out_time_ms":
			// ffmpeg reports microseconds under both keys
			if us, err := strconv.ParseInt(value, 10, 64); err == nil {
				progress.OutTime = time.Duration(us) * time.Microsecond
			}
		case "out_time":
			progress.Time = value
		case "speed":
			progress.Speed = value
		case "progress":
			if total > 0 {
				progress.Percentage = min(100, 100*progress.OutTime.Seconds()/total.Seconds())
			}
			progress.Done = value == "end"
			if progressHandler != nil {
				progressHandler(progress)
			}
			progress = &Progress{}
		default:
			if logHandler != nil && !isProgressKey(key) {
				logHandler(line)
			}
		}
	}
}

var progressKeys = map[string]struct{}{
	"total_size": {}, "dup_frames": {}, "drop_frames": {},
}

func isProgressKey(key string) bool {
	if strings.HasPrefix(key, "stream_") {
		return true
	}
	_, ok := progressKeys[key]
	return ok
}

// tail keeps the last n non-empty lines for error messages.
type tail struct {
	mu    sync.Mutex
	n     int
	lines []string
}

func newTail(n int) *tail {
	return &tail{n: n}
}

func (t *tail) add(line string) {
	line = strings.TrimSpace(line)
	if line == "" {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.lines = append(t.lines, line)
	if len(t.lines) > t.n {
		t.lines = t.lines[len(t.lines)-t.n:]
	}
}

func (t *tail) String() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	var b bytes.Buffer
	for i, l := range t.lines {
		if i > 0 {
			b.WriteString("; ")
		}
		b.WriteString(l)
	}
	return b.String()
}
