package storage

import (
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"
)

const maxFileNameLength = 50

var (
	invalidFileNameChars = regexp.MustCompile(`[\\/:*?"<>|\x00-\x1f]`)
	whitespaceRun        = regexp.MustCompile(`\s+`)
)

// SanitizeFileName turns name into something safe to use as a file name on
// every platform and at most maxFileNameLength bytes long. The extension is
// kept when shortening.
func SanitizeFileName(name string) string {
	name = invalidFileNameChars.ReplaceAllString(name, "")
	name = whitespaceRun.ReplaceAllString(strings.TrimSpace(name), "_")
	name = strings.Trim(name, ".")
	if name == "" {
		return "response"
	}
	if len(name) <= maxFileNameLength {
		return name
	}
	ext := filepath.Ext(name)
	if len(ext) >= maxFileNameLength/2 {
		ext = ""
	}
	base := strings.TrimSuffix(name, ext)
	for len(base)+len(ext) > maxFileNameLength {
		_, size := utf8.DecodeLastRuneInString(base)
		base = base[:len(base)-size]
	}
	return base + ext
}
