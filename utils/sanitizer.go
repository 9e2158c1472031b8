package utils

import (
	"html"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var (
	// StrictPolicy removes all markup
	StrictPolicy = bluemonday.StrictPolicy()

	unsafeFilenameChars = regexp.MustCompile(`[^\w\-]+`)
)

// MaxFilenameStem bounds the title-derived part of export filenames.
const MaxFilenameStem = 60

// StripHTML removes all HTML tags from content and returns plain text.
// bluemonday escapes entities on output, so they are decoded again.
func StripHTML(s string) string {
	return html.UnescapeString(StrictPolicy.Sanitize(s))
}

// TruncateRunes cuts s to at most n runes. n <= 0 leaves s untouched.
func TruncateRunes(s string, n int) string {
	if n <= 0 {
		return s
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}

// Preview returns a plain-text snippet of s of at most n runes, or empty when s is blank.
func Preview(s string, n int) string {
	plain := strings.TrimSpace(StripHTML(s))
	if plain == "" {
		return ""
	}
	return TruncateRunes(plain, n)
}

// SanitizeFilename replaces each run of characters outside [A-Za-z0-9_-] with a single
// underscore and truncates the result to MaxFilenameStem characters.
func SanitizeFilename(name string) string {
	return TruncateRunes(unsafeFilenameChars.ReplaceAllString(name, "_"), MaxFilenameStem)
}
