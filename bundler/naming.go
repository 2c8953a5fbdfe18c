package bundler

import (
	"path"
	"strings"
	"time"
)

const fallbackName = "transfer"

// Sanitize reduces a label to lower-case ASCII letters, digits and single underscores.
func Sanitize(label string) string {
	b := strings.Builder{}
	lastUnderscore := false
	for _, r := range strings.ToLower(strings.TrimSpace(label)) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			lastUnderscore = false
			continue
		}
		if !lastUnderscore {
			b.WriteRune('_')
			lastUnderscore = true
		}
	}
	return strings.Trim(b.String(), "_")
}

// ArtifactName builds "{label}_{YYYYMMDD_HHMM}{ext}" using local time.
func ArtifactName(label string, at time.Time, ext string) string {
	base := Sanitize(label)
	if base == "" {
		base = fallbackName
	}
	return base + "_" + at.Local().Format("20060102_1504") + ext
}

// extensionOf keeps the extension's case. A bare trailing dot is no extension.
func extensionOf(filename string) string {
	ext := path.Ext(filename)
	if ext == "." {
		return ""
	}
	return ext
}
