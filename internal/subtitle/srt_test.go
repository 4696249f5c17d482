package subtitle

import (
	"strings"
	"testing"
	"time"
)

func TestComposeAndParseSRT(t *testing.T) {
	entries := []Entry{
		NewEntry(1, 0, 2*time.Second, "first cue"),
		NewEntry(2, 2*time.Second+500*time.Millisecond, 5*time.Second, "second cue\nsecond line"),
	}

	composed := ComposeSRT(entries)
	parsed, err := ParseSRT(composed)
	if err != nil {
		t.Fatalf("ParseSRT: %v", err)
	}
	if len(parsed) != len(entries) {
		t.Fatalf("got %d entries, want %d", len(parsed), len(entries))
	}
	for i := range entries {
		if parsed[i].Start != entries[i].Start || parsed[i].End != entries[i].End {
			t.Errorf("entry %d times = (%v, %v), want (%v, %v)",
				i, parsed[i].Start, parsed[i].End, entries[i].Start, entries[i].End)
		}
	}
	if parsed[1].Text != "second cue\nsecond line" {
		t.Errorf("multi-line text = %q", parsed[1].Text)
	}
}

func TestNewEntryClampsZeroLengthCues(t *testing.T) {
	e := NewEntry(1, time.Second, time.Second, "x")
	if e.End != time.Second+MinCueDuration {
		t.Errorf("End = %v, want %v", e.End, time.Second+MinCueDuration)
	}
	e = NewEntry(1, 2*time.Second, time.Second, "inverted")
	if e.End <= e.Start {
		t.Errorf("inverted span not clamped: start=%v end=%v", e.Start, e.End)
	}
}

func TestOffset(t *testing.T) {
	entries := []Entry{
		NewEntry(1, 0, time.Second, "a"),
		NewEntry(2, time.Second, 2*time.Second, "b"),
	}
	shifted := Offset(entries, 10*time.Second)
	if entries[0].Start != 0 {
		t.Error("Offset modified its input")
	}
	if shifted[0].Start != 10*time.Second || shifted[1].End != 12*time.Second {
		t.Errorf("shifted = %+v", shifted)
	}
}

func TestMergeOrdersAndReindexes(t *testing.T) {
	chunk1 := []Entry{
		NewEntry(1, 0, time.Second, "one"),
		NewEntry(2, time.Second, 2*time.Second, "two"),
	}
	chunk2 := Offset([]Entry{
		NewEntry(1, 0, time.Second, "three"),
		NewEntry(2, time.Second, 2*time.Second, "four"),
	}, 2*time.Second)

	merged := Merge(chunk2, chunk1)
	if len(merged) != 4 {
		t.Fatalf("got %d entries", len(merged))
	}
	for i, e := range merged {
		if e.Index != i+1 {
			t.Errorf("entry %d has index %d", i, e.Index)
		}
		if i > 0 && merged[i-1].Start > e.Start {
			t.Errorf("timestamps not monotonic at %d: %v > %v", i, merged[i-1].Start, e.Start)
		}
	}
	want := []string{"one", "two", "three", "four"}
	for i, e := range merged {
		if e.Text != want[i] {
			t.Errorf("entry %d = %q, want %q", i, e.Text, want[i])
		}
	}
}

func TestRebasedMergeIsMonotonic(t *testing.T) {
	// Simulate three transcription chunks whose local timestamps all start at
	// zero, re-based by their cumulative offsets.
	chunkLen := 30 * time.Second
	var lists [][]Entry
	for chunk := 0; chunk < 3; chunk++ {
		local := []Entry{
			NewEntry(1, 0, 10*time.Second, "a"),
			NewEntry(2, 10*time.Second, 20*time.Second, "b"),
			NewEntry(3, 20*time.Second, 30*time.Second, "c"),
		}
		lists = append(lists, Offset(local, time.Duration(chunk)*chunkLen))
	}
	merged := Merge(lists...)
	for i := 1; i < len(merged); i++ {
		if merged[i].Start < merged[i-1].Start {
			t.Fatalf("timestamps decrease at %d: %v < %v", i, merged[i].Start, merged[i-1].Start)
		}
	}
	if got := merged[len(merged)-1].End; got != 90*time.Second {
		t.Errorf("final end = %v, want 90s", got)
	}
}

func TestPlainText(t *testing.T) {
	entries := []Entry{
		NewEntry(1, 0, time.Second, "hello"),
		NewEntry(2, time.Second, 2*time.Second, ""),
		NewEntry(3, 2*time.Second, 3*time.Second, "world"),
	}
	if got := PlainText(entries); got != "hello world" {
		t.Errorf("PlainText = %q", got)
	}
}

func TestLLMText(t *testing.T) {
	entries := []Entry{
		NewEntry(1, 0, time.Second, "intro"),
		NewEntry(2, time.Hour+time.Minute+time.Second, time.Hour+2*time.Minute, "late cue"),
	}
	got := LLMText(entries)
	want := "[00:00:00] intro\n[01:01:01] late cue"
	if got != want {
		t.Errorf("LLMText = %q, want %q", got, want)
	}
}

func TestParseSRTSkipsMalformedBlocks(t *testing.T) {
	content := strings.Join([]string{
		"1",
		"00:00:00,000 --> 00:00:01,000",
		"good",
		"",
		"garbage block",
		"",
		"2",
		"00:00:01,000 --> 00:00:02,000",
		"also good",
		"",
	}, "\n")
	entries, err := ParseSRT(content)
	if err != nil {
		t.Fatalf("ParseSRT: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
}
