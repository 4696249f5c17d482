package worker

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lib/pq"

	"jamesfarrell.me/youtube-ai-helper/internal/media"
	"jamesfarrell.me/youtube-ai-helper/internal/storage/models"
	"jamesfarrell.me/youtube-ai-helper/internal/subtitle"
	"jamesfarrell.me/youtube-ai-helper/internal/transcriber"
)

const (
	listenChannel = "new_video"
	pingInterval  = time.Minute

	// Rough size of one embedded search chunk.
	chunkCharTarget = 500
)

// Embedder turns chunk text into a vector for semantic search.
type Embedder interface {
	Embedding(ctx context.Context, text string) ([]float32, error)
}

// VideoStore is the video repository surface the worker needs.
type VideoStore interface {
	GetByURL(ctx context.Context, url string) (*models.Video, error)
	UpdateStatus(ctx context.Context, id, status string) error
	SaveTranscription(ctx context.Context, id, title, transcription string) error
}

// ChunkStore persists embedded search chunks.
type ChunkStore interface {
	SaveChunks(ctx context.Context, videoID string, chunks []models.Chunk) error
}

// Worker consumes new_video notifications and runs each submitted URL
// through download, transcription and storage. Videos are processed one
// at a time in notification order.
type Worker struct {
	videos      VideoStore
	chunks      ChunkStore
	downloader  *media.Downloader
	transcriber *transcriber.Transcriber
	embedder    Embedder
	dbURL       string
	log         *slog.Logger
}

func New(videos VideoStore, chunks ChunkStore,
	downloader *media.Downloader, t *transcriber.Transcriber, embedder Embedder, dbURL string) *Worker {
	return &Worker{
		videos:      videos,
		chunks:      chunks,
		downloader:  downloader,
		transcriber: t,
		embedder:    embedder,
		dbURL:       dbURL,
		log:         slog.Default().With("component", "worker"),
	}
}

// Run listens on the new_video channel until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) error {
	listener := pq.NewListener(w.dbURL, 10*time.Second, time.Minute,
		func(ev pq.ListenerEventType, err error) {
			if err != nil {
				w.log.Error("listener event", "event", ev, "error", err)
			}
		})
	defer listener.Close()

	if err := listener.Listen(listenChannel); err != nil {
		return fmt.Errorf("listen on %s: %w", listenChannel, err)
	}
	w.log.Info("listening for new videos", "channel", listenChannel)

	ping := time.NewTicker(pingInterval)
	defer ping.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case n := <-listener.Notify:
			if n == nil {
				// Connection was re-established; pending rows will
				// arrive as fresh notifications.
				continue
			}
			if err := w.processNotification(ctx, n.Extra); err != nil {
				w.log.Error("processing failed", "error", err)
			}
		case <-ping.C:
			if err := listener.Ping(); err != nil {
				w.log.Error("listener ping", "error", err)
			}
		}
	}
}

// notification mirrors the row_to_json payload sent by the insert trigger.
type notification struct {
	ID         string `json:"id"`
	VideoURL   string `json:"video_url"`
	Searchable bool   `json:"searchable"`
}

func (w *Worker) processNotification(ctx context.Context, payload string) error {
	var n notification
	if err := json.Unmarshal([]byte(payload), &n); err != nil {
		return fmt.Errorf("decode notification: %w", err)
	}
	video := models.Video{ID: n.ID, VideoURL: n.VideoURL, Searchable: n.Searchable}
	log := w.log.With("video_id", video.ID, "url", video.VideoURL)
	log.Info("processing video")

	// Every failure past this point leaves the row in a terminal state so
	// GET /videos never shows it stuck in processing.
	if err := w.process(ctx, video); err != nil {
		if uerr := w.videos.UpdateStatus(ctx, video.ID, models.StatusFailed); uerr != nil {
			log.Error("marking failed", "error", uerr)
		}
		return err
	}
	return nil
}

func (w *Worker) process(ctx context.Context, video models.Video) error {
	log := w.log.With("video_id", video.ID, "url", video.VideoURL)

	// A URL already transcribed in an earlier submission is reused as-is.
	existing, err := w.videos.GetByURL(ctx, video.VideoURL)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("lookup by url: %w", err)
	}
	var srt string
	if existing != nil && existing.Transcription != nil && existing.ID != video.ID {
		log.Info("reusing existing transcription", "source_id", existing.ID)
		srt = *existing.Transcription
		title := ""
		if existing.Title != nil {
			title = *existing.Title
		}
		if err := w.videos.SaveTranscription(ctx, video.ID, title, srt); err != nil {
			return fmt.Errorf("save transcription: %w", err)
		}
	} else {
		srt, err = w.transcribe(ctx, &video)
		if err != nil {
			return err
		}
	}

	if video.Searchable {
		entries, err := subtitle.ParseSRT(srt)
		if err != nil {
			return fmt.Errorf("parse transcription: %w", err)
		}
		chunks, err := w.embedEntries(ctx, entries)
		if err != nil {
			return fmt.Errorf("embed chunks: %w", err)
		}
		if err := w.chunks.SaveChunks(ctx, video.ID, chunks); err != nil {
			return fmt.Errorf("save chunks: %w", err)
		}
		log.Info("saved search chunks", "count", len(chunks))
	}

	return w.videos.UpdateStatus(ctx, video.ID, models.StatusCompleted)
}

func (w *Worker) transcribe(ctx context.Context, video *models.Video) (string, error) {
	if err := w.videos.UpdateStatus(ctx, video.ID, models.StatusProcessing); err != nil {
		return "", fmt.Errorf("update status: %w", err)
	}

	download, err := w.downloader.DownloadVideo(ctx, video.VideoURL)
	if err != nil {
		return "", fmt.Errorf("download: %w", err)
	}
	defer os.RemoveAll(download.Folder)

	result, err := w.transcriber.TranscribeFile(ctx, download.AudioPath)
	if err != nil {
		return "", fmt.Errorf("transcribe: %w", err)
	}

	srt := subtitle.ComposeSRT(result.Segments)
	if err := w.videos.SaveTranscription(ctx, video.ID, download.Title, srt); err != nil {
		return "", fmt.Errorf("save transcription: %w", err)
	}
	return srt, nil
}

// embedEntries groups subtitle entries into chunks of roughly
// chunkCharTarget characters and embeds each one. Chunk timestamps come
// from the first and last entry they cover.
func (w *Worker) embedEntries(ctx context.Context, entries []subtitle.Entry) ([]models.Chunk, error) {
	groups := groupEntries(entries, chunkCharTarget)
	chunks := make([]models.Chunk, 0, len(groups))
	for _, g := range groups {
		embedding, err := w.embedder.Embedding(ctx, g.Text)
		if err != nil {
			return nil, err
		}
		g.Embedding = embedding
		chunks = append(chunks, g)
	}
	return chunks, nil
}

func groupEntries(entries []subtitle.Entry, charTarget int) []models.Chunk {
	var chunks []models.Chunk
	var b strings.Builder
	var start, end time.Duration
	flush := func() {
		text := strings.TrimSpace(b.String())
		if text == "" {
			return
		}
		chunks = append(chunks, models.Chunk{Text: text, Start: start, End: end})
		b.Reset()
	}
	for _, e := range entries {
		if b.Len() == 0 {
			start = e.Start
		}
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(e.Text)
		end = e.End
		if b.Len() >= charTarget {
			flush()
		}
	}
	flush()
	return chunks
}
