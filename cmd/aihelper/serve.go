package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"jamesfarrell.me/youtube-ai-helper/internal/api"
	"jamesfarrell.me/youtube-ai-helper/internal/storage/db"
	"jamesfarrell.me/youtube-ai-helper/internal/storage/postgres"
	"jamesfarrell.me/youtube-ai-helper/internal/worker"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and the video processing worker",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for serve mode")
		}
		if cfg.ServiceAPIKey == "" {
			return fmt.Errorf("SERVICE_API_KEY is required for serve mode")
		}
		downloader, err := newDownloader()
		if err != nil {
			return err
		}
		t, err := newTranscriber()
		if err != nil {
			return err
		}
		client, err := newAIClient()
		if err != nil {
			return err
		}

		conn, err := db.NewConnection(db.Config{URL: cfg.DatabaseURL})
		if err != nil {
			return err
		}
		defer conn.Close()

		videos := postgres.NewVideoRepository(conn)
		chunks := postgres.NewChunkRepository(conn)

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		w := worker.New(videos, chunks, downloader, t, client, cfg.DatabaseURL)
		workerDone := make(chan error, 1)
		go func() {
			workerDone <- w.Run(ctx)
		}()

		addr, _ := cmd.Flags().GetString("addr")
		server := &http.Server{
			Addr:         addr,
			Handler:      api.NewRouter(videos, chunks, client, cfg.ServiceAPIKey),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 30 * time.Second,
		}
		serverDone := make(chan error, 1)
		go func() {
			slog.Info("http server listening", "addr", addr)
			serverDone <- server.ListenAndServe()
		}()

		select {
		case <-ctx.Done():
		case err := <-serverDone:
			return err
		case err := <-workerDone:
			return err
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown", "error", err)
		}
		if err := <-workerDone; err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().String("addr", ":8080", "listen address for the HTTP API")
	rootCmd.AddCommand(serveCmd)
}
