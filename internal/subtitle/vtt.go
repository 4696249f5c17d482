package subtitle

import (
	"fmt"
	"strings"
	"time"
)

// ParseVTT parses WebVTT content into entries. Transcription APIs sometimes
// hand the document back as a JSON string value, so surrounding quotes and
// escaped newlines are normalized first.
func ParseVTT(content string) ([]Entry, error) {
	content = strings.Trim(content, "\"")
	if strings.Contains(content, "\\n") {
		content = strings.ReplaceAll(content, "\\n", "\n")
	}
	content = strings.ReplaceAll(content, "\r\n", "\n")

	if !strings.HasPrefix(content, "WEBVTT") {
		return nil, fmt.Errorf("invalid VTT format: missing WEBVTT header")
	}
	// Drop the header block (the header line plus any metadata before the
	// first blank line).
	if _, rest, ok := strings.Cut(content, "\n\n"); ok {
		content = rest
	} else {
		return nil, nil
	}

	var entries []Entry
	for _, block := range strings.Split(content, "\n\n") {
		lines := strings.Split(strings.TrimSpace(block), "\n")
		if len(lines) < 2 {
			continue
		}
		timeLine := lines[0]
		textStart := 1
		if !strings.Contains(timeLine, "-->") && len(lines) > 2 {
			// Optional cue identifier line.
			timeLine = lines[1]
			textStart = 2
		}
		startRaw, endRaw, ok := strings.Cut(timeLine, " --> ")
		if !ok {
			continue
		}
		start, err := parseVTTTime(strings.TrimSpace(startRaw))
		if err != nil {
			return nil, fmt.Errorf("invalid start timestamp: %w", err)
		}
		end, err := parseVTTTime(strings.TrimSpace(endRaw))
		if err != nil {
			return nil, fmt.Errorf("invalid end timestamp: %w", err)
		}
		text := strings.Join(lines[textStart:], " ")
		entries = append(entries, NewEntry(len(entries)+1, start, end, text))
	}
	return entries, nil
}

func parseVTTTime(ts string) (time.Duration, error) {
	if !strings.Contains(ts, ".") {
		return 0, fmt.Errorf("invalid timestamp format %q: missing milliseconds", ts)
	}
	// VTT allows MM:SS.mmm; normalize to HH:MM:SS.mmm.
	if strings.Count(ts, ":") == 1 {
		ts = "00:" + ts
	}
	return parseClockTime(ts)
}
