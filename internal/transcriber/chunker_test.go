package transcriber

import (
	"testing"
	"time"
)

func TestPlanChunksPartitionsExactly(t *testing.T) {
	tests := []struct {
		name     string
		total    time.Duration
		chunkLen time.Duration
		want     int
	}{
		{"even split", 60 * time.Minute, 20 * time.Minute, 3},
		{"partial final chunk", 65 * time.Minute, 30 * time.Minute, 3},
		{"single chunk", 10 * time.Minute, time.Hour, 1},
		{"exact single", time.Hour, time.Hour, 1},
		{"one second over", time.Hour + time.Second, time.Hour, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spans := PlanChunks(tt.total, tt.chunkLen)
			if len(spans) != tt.want {
				t.Fatalf("got %d spans, want %d: %v", len(spans), tt.want, spans)
			}

			// Contiguous partition: starts at zero, no gaps, no overlaps,
			// lengths sum to the total.
			var sum time.Duration
			for i, s := range spans {
				if i == 0 && s.Start != 0 {
					t.Errorf("first span starts at %v", s.Start)
				}
				if i > 0 && s.Start != spans[i-1].End() {
					t.Errorf("gap or overlap at span %d: start=%v, previous end=%v", i, s.Start, spans[i-1].End())
				}
				if s.Length <= 0 {
					t.Errorf("span %d has non-positive length %v", i, s.Length)
				}
				if s.Length > tt.chunkLen {
					t.Errorf("span %d longer than chunk length: %v", i, s.Length)
				}
				sum += s.Length
			}
			if sum != tt.total {
				t.Errorf("lengths sum to %v, want %v", sum, tt.total)
			}
			if last := spans[len(spans)-1]; last.End() != tt.total {
				t.Errorf("final span ends at %v, want %v", last.End(), tt.total)
			}
		})
	}
}

func TestPlanChunksDegenerateInputs(t *testing.T) {
	if spans := PlanChunks(0, time.Hour); spans != nil {
		t.Errorf("PlanChunks(0) = %v, want nil", spans)
	}
	spans := PlanChunks(time.Hour, 0)
	if len(spans) != 1 || spans[0].Length != time.Hour {
		t.Errorf("PlanChunks with zero chunk length = %v", spans)
	}
}
