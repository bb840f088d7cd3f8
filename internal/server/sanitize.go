package server

import (
	"strings"
	"unicode/utf8"
)

const maxInputLength = 2000

// sanitizeText normalizes untrusted free-text input: trims whitespace, caps
// length on a rune boundary, strips angle brackets and script-ish URL
// schemes. Image data URLs are handled separately by sanitizeImageURL.
func sanitizeText(raw string) string {
	s := strings.TrimSpace(raw)
	if len(s) > maxInputLength {
		cut := maxInputLength
		for cut > 0 && !utf8.RuneStart(s[cut]) {
			cut--
		}
		s = s[:cut]
	}

	s = strings.ReplaceAll(s, "<", "")
	s = strings.ReplaceAll(s, ">", "")

	lower := strings.ToLower(s)
	for _, scheme := range []string{"javascript:", "vbscript:", "data:"} {
		for {
			idx := strings.Index(lower, scheme)
			if idx < 0 {
				break
			}
			s = s[:idx] + s[idx+len(scheme):]
			lower = strings.ToLower(s)
		}
	}
	return s
}

// sanitizeImageURL accepts only base64 image data URLs or https URLs; anything
// else collapses to empty.
func sanitizeImageURL(raw string) string {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, "data:image/") {
		return s
	}
	if strings.HasPrefix(s, "https://") {
		return s
	}
	return ""
}
