package questionnaire

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path"
	"path/filepath"

	"github.com/kikiluvv/quizprep/pkg/util"
)

// LoadSource reads a JSON array of source records.
func LoadSource(path string) ([]SourceRecord, error) {
	var records []SourceRecord
	if err := readJSON(path, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// LoadItems reads a questionnaire file.
func LoadItems(path string) ([]Item, error) {
	var items []Item
	if err := readJSON(path, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// SaveItems writes items as an indented JSON array, replacing path atomically.
func SaveItems(path string, items []Item) error {
	if items == nil {
		items = []Item{}
	}
	return WriteJSON(path, items)
}

// WriteJSON encodes v with two-space indentation and no HTML escaping.
func WriteJSON(target string, v any) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode %s: %w", target, err)
	}

	dir := filepath.Dir(target)
	if err := util.EnsureDir(dir); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".quizprep-*.json")
	if err != nil {
		return fmt.Errorf("write %s: %w", target, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", target, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write %s: %w", target, err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", target, err)
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		return fmt.Errorf("write %s: %w", target, err)
	}
	return nil
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

// SameURL reports whether two video paths refer to the same file once
// separators and redundant elements are normalized.
func SameURL(a, b string) bool {
	return path.Clean(filepath.ToSlash(a)) == path.Clean(filepath.ToSlash(b))
}
