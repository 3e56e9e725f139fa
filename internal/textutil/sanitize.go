package textutil

import (
	"path/filepath"
	"strings"
	"unicode"
)

// SanitizeFileName makes name safe as a single path element. Separators,
// colons and asterisks become dashes; quotes, wildcards, pipes, angle
// brackets and control characters are dropped. Surrounding space is trimmed.
func SanitizeFileName(name string) string {
	mapped := strings.Map(func(r rune) rune {
		switch {
		case r == '/' || r == '\\' || r == ':' || r == '*':
			return '-'
		case strings.ContainsRune(`?"<>|`, r), unicode.IsControl(r):
			return -1
		}
		return r
	}, name)
	return strings.TrimSpace(mapped)
}

// ExportFileName returns a visible, non-empty file name ending in ext.
// Leading dots and spaces are removed and fallback is used when nothing is
// left.
func ExportFileName(name, fallback, ext string) string {
	clean := strings.TrimLeft(SanitizeFileName(name), ". ")
	if clean == "" {
		clean = fallback
	}
	if ext == "" || strings.EqualFold(filepath.Ext(clean), ext) {
		return clean
	}
	return clean + ext
}
