package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"jamesfarrell.me/youtube-ai-helper/internal/aiclient"
	"jamesfarrell.me/youtube-ai-helper/internal/config"
	"jamesfarrell.me/youtube-ai-helper/internal/media"
)

var (
	cfg          config.Config
	whisper      config.WhisperConfig
	configFolder string
)

var rootCmd = &cobra.Command{
	Use:   "aihelper",
	Short: "Download, transcribe and enrich YouTube videos with AI",
	Long: `aihelper turns a YouTube URL into a transcribed, AI-processed folder
of artifacts: audio, subtitles in several formats, and the outputs of the
prompt templates in your configuration folder.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, whisper = config.Load()
		if configFolder != "" {
			var err error
			cfg, whisper, err = config.LoadFolder(configFolder, cfg, whisper)
			if err != nil {
				return err
			}
		}
		slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
			Level: cfg.SlogLevel(),
		})))
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFolder, "config-folder", "c", "",
		"folder with llm_config.txt, whisper_config.txt and prompts/")
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newDownloader() (*media.Downloader, error) {
	if err := media.CheckExecutables("yt-dlp", "ffmpeg", "ffprobe"); err != nil {
		return nil, err
	}
	return media.NewDownloader(media.ExecRunner{}, cfg.AudioBitrate, cfg.OutputDir), nil
}

func newAIClient() (*aiclient.Client, error) {
	return aiclient.New(cfg)
}
