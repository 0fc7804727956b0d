package questionnaire

import (
	"fmt"
	"path/filepath"

	"github.com/kikiluvv/quizprep/pkg/util"
)

// PatchItems applies fn to every item in the questionnaire file at path and
// rewrites the file when at least one call reports a change. With backup set,
// the original is copied to path+".bak" first.
func PatchItems(path string, backup bool, fn func(int, *Item) bool) (int, error) {
	items, err := LoadItems(path)
	if err != nil {
		return 0, err
	}

	changed := 0
	for i := range items {
		if fn(i, &items[i]) {
			changed++
		}
	}
	if changed == 0 {
		return 0, nil
	}

	if backup {
		if _, err := util.Backup(path); err != nil {
			return 0, err
		}
	}
	if err := SaveItems(path, items); err != nil {
		return 0, fmt.Errorf("rewrite questionnaire: %w", err)
	}
	return changed, nil
}

// RewriteVideoURL points every item whose videoUrl equals oldURL at newURL.
func RewriteVideoURL(path, oldURL, newURL string, backup bool) (int, error) {
	replacement := filepath.ToSlash(newURL)
	return PatchItems(path, backup, func(_ int, item *Item) bool {
		if !SameURL(item.VideoURL, oldURL) || item.VideoURL == replacement {
			return false
		}
		item.VideoURL = replacement
		return true
	})
}
