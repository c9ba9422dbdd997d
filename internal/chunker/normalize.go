package chunker

import (
	"regexp"
	"strings"
)

var blankRunPattern = regexp.MustCompile(`\n{4,}`)

// Normalize canonicalizes raw text before any size-sensitive logic runs:
// CRLF becomes LF, runs of four or more newlines collapse to three and
// surrounding whitespace is trimmed.
func Normalize(raw string) string {
	text := strings.ReplaceAll(raw, "\r\n", "\n")
	text = blankRunPattern.ReplaceAllString(text, "\n\n\n")
	return strings.TrimSpace(text)
}
