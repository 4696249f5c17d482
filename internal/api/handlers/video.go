package handlers

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"jamesfarrell.me/youtube-ai-helper/internal/media"
	"jamesfarrell.me/youtube-ai-helper/internal/storage/models"
	"jamesfarrell.me/youtube-ai-helper/internal/storage/postgres"
)

// Embedder converts text to an embedding vector for search queries.
type Embedder interface {
	Embedding(ctx context.Context, text string) ([]float32, error)
}

// VideoHandler serves video submission, lookup and transcript search.
type VideoHandler struct {
	videos   *postgres.VideoRepository
	chunks   *postgres.ChunkRepository
	embedder Embedder
}

func NewVideoHandler(videos *postgres.VideoRepository, chunks *postgres.ChunkRepository, embedder Embedder) *VideoHandler {
	return &VideoHandler{videos: videos, chunks: chunks, embedder: embedder}
}

// AddVideo accepts a URL for processing. The LISTEN worker picks it up via
// the insert trigger.
func (h *VideoHandler) AddVideo(w http.ResponseWriter, r *http.Request) {
	var req models.VideoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	req.URL = strings.TrimSpace(req.URL)
	if req.URL == "" || !media.IsYouTubeURL(req.URL) {
		http.Error(w, "a valid YouTube URL is required", http.StatusBadRequest)
		return
	}

	id, err := h.videos.Create(r.Context(), &req)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]string{"id": id})
}

func (h *VideoHandler) GetVideo(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	video, err := h.videos.Get(r.Context(), id)
	if errors.Is(err, sql.ErrNoRows) {
		http.Error(w, "video not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, video)
}

func (h *VideoHandler) ListVideos(w http.ResponseWriter, r *http.Request) {
	videos, err := h.videos.List(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if videos == nil {
		videos = []models.Video{}
	}
	writeJSON(w, http.StatusOK, videos)
}

// Search embeds the query and returns the closest transcript chunks.
func (h *VideoHandler) Search(w http.ResponseWriter, r *http.Request) {
	var req models.SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		http.Error(w, "query is required", http.StatusBadRequest)
		return
	}
	if req.Limit <= 0 {
		req.Limit = 5
	}

	embedding, err := h.embedder.Embedding(r.Context(), req.Query)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	results, err := h.chunks.Search(r.Context(), embedding, req.Limit)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, models.SearchResponse{Results: results})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
