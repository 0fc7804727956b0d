// Package clips plans the video segments cut for questionnaire items.
package clips

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"time"
)

var (
	// ErrEmptyWindow means a range has no overlap with the source video.
	ErrEmptyWindow = errors.New("time range is empty after clamping to the source")
	// ErrInvalidRange means a range string could not be parsed.
	ErrInvalidRange = errors.New("invalid time range")
)

// Clip represents a video segment cut for one questionnaire item
type Clip struct {
	// Index is the item's position in the questionnaire file.
	Index     int
	ID        string
	Start     time.Duration
	End       time.Duration
	Duration  time.Duration
	SourceURL string
	Output    string
	Poster    string
	// Explicit is true when the range came from a time-ranges file.
	Explicit bool
}

// Range is a requested start/end pair, not yet checked against the source.
type Range struct {
	Start time.Duration
	End   time.Duration
}

// Window is a range clamped to the source bounds.
type Window struct {
	Start time.Duration
	End   time.Duration
}

// Duration returns the length of the window
func (w Window) Duration() time.Duration {
	return w.End - w.Start
}

// Frames returns the inclusive first and last frame indices covered at fps.
func (w Window) Frames(fps float64) (first, last int) {
	if fps <= 0 {
		return 0, 0
	}
	first = int(w.Start.Seconds() * fps)
	last = int(math.Ceil(w.End.Seconds()*fps)) - 1
	if last < first {
		last = first
	}
	return first, last
}

// Clamp limits r to [0, source]. A non-positive source duration means the
// length is unknown and only the lower bound is applied.
func Clamp(r Range, source time.Duration) (Window, error) {
	w := Window{Start: max(r.Start, 0), End: r.End}
	if source > 0 {
		w.End = min(w.End, source)
	}
	if w.End <= w.Start {
		return Window{}, fmt.Errorf("%w: %s-%s", ErrEmptyWindow, r.Start, r.End)
	}
	return w, nil
}

// DefaultRange picks a length-long range for the item at index, seeded by
// the index so repeated runs cut the same segments.
func DefaultRange(index int, source, length time.Duration) Range {
	span := source - length
	if span <= 0 {
		return Range{Start: 0, End: length}
	}
	rng := rand.New(rand.NewPCG(uint64(index), 0))
	start := time.Duration(rng.Float64() * float64(span))
	return Range{Start: start, End: start + length}
}

// ScaledSize returns the output frame size for a target width, keeping the
// source aspect ratio. Both dimensions are even, which H.264 4:2:0 requires.
func ScaledSize(srcWidth, srcHeight, targetWidth int) (int, int, error) {
	if srcWidth <= 0 || srcHeight <= 0 {
		return 0, 0, fmt.Errorf("source size %dx%d is invalid", srcWidth, srcHeight)
	}
	if targetWidth < 2 {
		return 0, 0, fmt.Errorf("target width %d is too small", targetWidth)
	}
	width := targetWidth &^ 1
	height := (width * srcHeight / srcWidth) &^ 1
	if height < 2 {
		height = 2
	}
	return width, height, nil
}
