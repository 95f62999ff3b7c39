package render

import (
	"path/filepath"
	"strings"
)

const safeNameMaxRunes = 30

// SafeName turns a title into a file-name prefix: first 30 runes, spaces and
// slashes replaced with underscores.
func SafeName(title string) string {
	r := []rune(strings.TrimSpace(title))
	if len(r) > safeNameMaxRunes {
		r = r[:safeNameMaxRunes]
	}
	return strings.NewReplacer(" ", "_", "/", "_").Replace(string(r))
}

// ArtifactPath is <dir>/<safe-title>_<suffix>.
func ArtifactPath(dir, title, suffix string) string {
	return filepath.Join(dir, SafeName(title)+"_"+suffix)
}
