package media

import "strings"

// SanitizeTitle turns a video title into a safe file and folder name:
// ASCII letters and digits are kept, every other rune becomes an underscore,
// runs of underscores collapse to one, and leading/trailing underscores are
// trimmed. The result is stable under re-application.
func SanitizeTitle(title string) string {
	var b strings.Builder
	b.Grow(len(title))
	lastUnderscore := false
	for _, r := range title {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastUnderscore = false
		default:
			if !lastUnderscore {
				b.WriteByte('_')
				lastUnderscore = true
			}
		}
	}
	return strings.Trim(b.String(), "_")
}
