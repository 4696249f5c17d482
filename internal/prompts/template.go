package prompts

import (
	"fmt"
	"strings"
)

// Placeholders a prompt template may carry. TranscriptPlaceholder is
// replaced verbatim; TranscriptJSONPlaceholder is for templates that are
// themselves JSON documents and gets the transcript JSON-string-escaped so
// the rendered document still parses.
const (
	TranscriptPlaceholder     = "{{transcript}}"
	TranscriptJSONPlaceholder = "{{transcript_json}}"
)

// Render substitutes the transcript into a template. The second return
// reports whether any placeholder was present; templates without one are
// used as the system prompt with the transcript sent separately.
func Render(template, transcript string) (string, bool) {
	found := false
	if strings.Contains(template, TranscriptJSONPlaceholder) {
		template = strings.ReplaceAll(template, TranscriptJSONPlaceholder, EscapeJSON(transcript))
		found = true
	}
	if strings.Contains(template, TranscriptPlaceholder) {
		template = strings.ReplaceAll(template, TranscriptPlaceholder, transcript)
		found = true
	}
	return template, found
}

// EscapeJSON escapes s for embedding inside a JSON string literal:
// backslashes and quotes are escaped and literal control characters become
// escape sequences.
func EscapeJSON(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '"':
			b.WriteString(`\"`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			// Remaining control characters must be \u-escaped for the
			// document to parse.
			if r < 0x20 {
				fmt.Fprintf(&b, `\u%04x`, r)
			} else {
				b.WriteRune(r)
			}
		}
	}
	return b.String()
}
