// Package subtitle handles SRT and WebVTT transcript formats: parsing,
// composing, time-shifting and merging cue lists, and the flattened text
// forms fed to language models.
package subtitle

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// MinCueDuration is the floor for a cue's length. Whisper occasionally emits
// zero-length or inverted spans; those are clamped instead of dropped.
const MinCueDuration = 10 * time.Millisecond

// Entry is one subtitle cue.
type Entry struct {
	Index int
	Start time.Duration
	End   time.Duration
	Text  string
}

// NewEntry builds a cue, clamping the end so it is always strictly after the
// start.
func NewEntry(index int, start, end time.Duration, text string) Entry {
	if end <= start {
		end = start + MinCueDuration
	}
	return Entry{Index: index, Start: start, End: end, Text: strings.TrimSpace(text)}
}

// Offset returns a copy of entries with every timestamp shifted by delta.
func Offset(entries []Entry, delta time.Duration) []Entry {
	shifted := make([]Entry, len(entries))
	for i, e := range entries {
		e.Start += delta
		e.End += delta
		shifted[i] = e
	}
	return shifted
}

// Merge combines cue lists into one stream ordered by start time and
// re-indexed from 1. Inputs are not modified.
func Merge(lists ...[]Entry) []Entry {
	var merged []Entry
	for _, list := range lists {
		merged = append(merged, list...)
	}
	sort.SliceStable(merged, func(i, j int) bool { return merged[i].Start < merged[j].Start })
	for i := range merged {
		merged[i].Index = i + 1
	}
	return merged
}

// ComposeSRT renders entries as an SRT document.
func ComposeSRT(entries []Entry) string {
	var b strings.Builder
	for i, e := range entries {
		index := e.Index
		if index == 0 {
			index = i + 1
		}
		fmt.Fprintf(&b, "%d\n%s --> %s\n%s\n\n", index, formatSRTTime(e.Start), formatSRTTime(e.End), e.Text)
	}
	return b.String()
}

// PlainText joins cue texts with single spaces.
func PlainText(entries []Entry) string {
	parts := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.Text != "" {
			parts = append(parts, e.Text)
		}
	}
	return strings.Join(parts, " ")
}

// LLMText renders entries one per line as "[HH:MM:SS] text", a compact
// timestamped form that survives tokenization better than full SRT.
func LLMText(entries []Entry) string {
	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		lines = append(lines, fmt.Sprintf("[%s] %s", formatClock(e.Start), e.Text))
	}
	return strings.Join(lines, "\n")
}

// ParseSRT parses an SRT document. Blocks missing a timestamp line are
// skipped rather than failing the whole document.
func ParseSRT(content string) ([]Entry, error) {
	content = strings.ReplaceAll(content, "\r\n", "\n")
	var entries []Entry
	for _, block := range strings.Split(strings.TrimSpace(content), "\n\n") {
		lines := strings.Split(strings.TrimSpace(block), "\n")
		if len(lines) < 2 {
			continue
		}
		timeLine := lines[1]
		textStart := 2
		if !strings.Contains(timeLine, "-->") {
			// Some tools omit the numeric index line.
			timeLine = lines[0]
			textStart = 1
			if !strings.Contains(timeLine, "-->") {
				continue
			}
		}
		startRaw, endRaw, ok := strings.Cut(timeLine, "-->")
		if !ok {
			continue
		}
		start, err := parseSRTTime(strings.TrimSpace(startRaw))
		if err != nil {
			return nil, fmt.Errorf("invalid start timestamp: %w", err)
		}
		end, err := parseSRTTime(strings.TrimSpace(endRaw))
		if err != nil {
			return nil, fmt.Errorf("invalid end timestamp: %w", err)
		}
		text := strings.Join(lines[textStart:], "\n")
		entries = append(entries, NewEntry(len(entries)+1, start, end, text))
	}
	return entries, nil
}

// formatSRTTime renders HH:MM:SS,mmm.
func formatSRTTime(d time.Duration) string {
	h, m, s, ms := clockParts(d)
	return fmt.Sprintf("%02d:%02d:%02d,%03d", h, m, s, ms)
}

// formatClock renders HH:MM:SS.
func formatClock(d time.Duration) string {
	h, m, s, _ := clockParts(d)
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

func clockParts(d time.Duration) (h, m, s, ms int64) {
	if d < 0 {
		d = 0
	}
	d = d.Round(time.Millisecond)
	h = int64(d / time.Hour)
	d -= time.Duration(h) * time.Hour
	m = int64(d / time.Minute)
	d -= time.Duration(m) * time.Minute
	s = int64(d / time.Second)
	d -= time.Duration(s) * time.Second
	ms = int64(d / time.Millisecond)
	return
}

func parseSRTTime(ts string) (time.Duration, error) {
	// HH:MM:SS,mmm with a comma separator; tolerate a dot.
	ts = strings.ReplaceAll(ts, ",", ".")
	return parseClockTime(ts)
}

func parseClockTime(ts string) (time.Duration, error) {
	parts := strings.Split(ts, ":")
	if len(parts) != 3 {
		return 0, fmt.Errorf("expected HH:MM:SS format, got %q", ts)
	}
	hours, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("invalid hours in %q: %w", ts, err)
	}
	minutes, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("invalid minutes in %q: %w", ts, err)
	}
	secRaw, msRaw, hasMS := strings.Cut(parts[2], ".")
	seconds, err := strconv.Atoi(secRaw)
	if err != nil {
		return 0, fmt.Errorf("invalid seconds in %q: %w", ts, err)
	}
	var millis int
	if hasMS {
		millis, err = strconv.Atoi(msRaw)
		if err != nil {
			return 0, fmt.Errorf("invalid milliseconds in %q: %w", ts, err)
		}
	}
	return time.Duration(hours)*time.Hour +
		time.Duration(minutes)*time.Minute +
		time.Duration(seconds)*time.Second +
		time.Duration(millis)*time.Millisecond, nil
}
