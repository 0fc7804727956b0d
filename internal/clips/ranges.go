package clips

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/kikiluvv/quizprep/pkg/util"
)

// Ranges maps item ids to requested time ranges.
type Ranges map[string]Range

// ParseRange parses "start-end" where each side is seconds or a timestamp.
func ParseRange(s string) (Range, error) {
	start, end, ok := strings.Cut(strings.TrimSpace(s), "-")
	if !ok {
		return Range{}, fmt.Errorf("%w %q: expected start-end", ErrInvalidRange, s)
	}
	from, err := util.ParseTimestamp(start)
	if err != nil {
		return Range{}, fmt.Errorf("%w %q: %v", ErrInvalidRange, s, err)
	}
	to, err := util.ParseTimestamp(end)
	if err != nil {
		return Range{}, fmt.Errorf("%w %q: %v", ErrInvalidRange, s, err)
	}
	if to <= from {
		return Range{}, fmt.Errorf("%w %q: end must be after start", ErrInvalidRange, s)
	}
	return Range{Start: from, End: to}, nil
}

// LoadRanges reads a JSON object of id -> "start-end".
func LoadRanges(path string) (Ranges, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read time ranges: %w", err)
	}

	var raw map[string]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse time ranges %s: %w", path, err)
	}

	ranges := make(Ranges, len(raw))
	for id, value := range raw {
		r, err := ParseRange(value)
		if err != nil {
			return nil, fmt.Errorf("time range for %s: %w", id, err)
		}
		ranges[id] = r
	}
	return ranges, nil
}
