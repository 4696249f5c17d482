package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"jamesfarrell.me/youtube-ai-helper/internal/api/handlers"
	"jamesfarrell.me/youtube-ai-helper/internal/api/middleware"
	"jamesfarrell.me/youtube-ai-helper/internal/storage/postgres"
)

// NewRouter builds the serve-mode HTTP API. Everything except the health
// check sits behind the API key middleware.
func NewRouter(videos *postgres.VideoRepository, chunks *postgres.ChunkRepository, embedder handlers.Embedder, apiKey string) http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/health", healthCheck).Methods(http.MethodGet)

	protected := r.PathPrefix("").Subrouter()
	protected.Use(middleware.APIKey(apiKey))

	videoHandler := handlers.NewVideoHandler(videos, chunks, embedder)
	protected.HandleFunc("/videos", videoHandler.AddVideo).Methods(http.MethodPost)
	protected.HandleFunc("/videos", videoHandler.ListVideos).Methods(http.MethodGet)
	protected.HandleFunc("/videos/{id}", videoHandler.GetVideo).Methods(http.MethodGet)
	protected.HandleFunc("/search", videoHandler.Search).Methods(http.MethodPost)

	return r
}

func healthCheck(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}
