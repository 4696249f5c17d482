package transcriber

import "time"

// ChunkSpan is one contiguous slice of the source audio submitted as a
// single transcription request.
type ChunkSpan struct {
	Start  time.Duration
	Length time.Duration
}

// End returns the exclusive end of the span.
func (c ChunkSpan) End() time.Duration { return c.Start + c.Length }

// PlanChunks partitions total into consecutive spans of at most chunkLen.
// The spans cover the full duration exactly, with no gaps and no overlaps;
// the final span may be shorter than chunkLen.
func PlanChunks(total, chunkLen time.Duration) []ChunkSpan {
	if total <= 0 {
		return nil
	}
	if chunkLen <= 0 || chunkLen >= total {
		return []ChunkSpan{{Start: 0, Length: total}}
	}
	var spans []ChunkSpan
	for start := time.Duration(0); start < total; start += chunkLen {
		length := chunkLen
		if start+length > total {
			length = total - start
		}
		spans = append(spans, ChunkSpan{Start: start, Length: length})
	}
	return spans
}
