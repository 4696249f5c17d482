package models

import "time"

// Video is one submitted processing job and its transcript, as stored in
// Postgres by serve mode.
type Video struct {
	ID            string    `json:"id"`
	VideoURL      string    `json:"videoUrl"`
	Title         *string   `json:"title,omitempty"`
	Transcription *string   `json:"transcription,omitempty"`
	Status        string    `json:"status"`
	Searchable    bool      `json:"searchable"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// Processing states for a submitted video.
const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

// VideoRequest is the submission payload.
type VideoRequest struct {
	URL        string `json:"url"`
	Searchable bool   `json:"searchable"`
}

// Chunk is a transcript span embedded for semantic search.
type Chunk struct {
	Text      string
	Start     time.Duration
	End       time.Duration
	Embedding []float32
}

// SearchRequest asks for transcript chunks similar to a query.
type SearchRequest struct {
	Query string `json:"query"`
	Limit int    `json:"limit"`
}

type SearchResponse struct {
	Results []SearchResult `json:"results"`
}

// SearchResult is one matching transcript chunk.
type SearchResult struct {
	VideoID    string  `json:"videoId"`
	ChunkText  string  `json:"chunkText"`
	StartSec   float64 `json:"startSec"`
	EndSec     float64 `json:"endSec"`
	Similarity float64 `json:"similarity"`
}
