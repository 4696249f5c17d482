package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"jamesfarrell.me/youtube-ai-helper/internal/youtube"
)

var fullProcessCmd = &cobra.Command{
	Use:   "full-process [url...]",
	Short: "Download, transcribe and run prompts for one or more URLs",
	Example: `  aihelper full-process -c ./configurations/default "https://www.youtube.com/watch?v=dQw4w9WgXcQ"
  aihelper full-process -c ./configurations/default --update-youtube dQw4w9WgXcQ`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		downloader, err := newDownloader()
		if err != nil {
			return err
		}
		t, err := newTranscriber()
		if err != nil {
			return err
		}
		processor, err := newProcessor()
		if err != nil {
			return err
		}
		// YouTube credentials are checked before any download starts, like
		// the yt-dlp/ffmpeg preflight: a missing client secret must not
		// surface after hours of transcription work.
		pushToYouTube, _ := cmd.Flags().GetBool("update-youtube")
		var updater *youtube.Updater
		if pushToYouTube {
			updater, err = newYouTubeUpdater(cmd)
			if err != nil {
				return err
			}
		}

		failed := 0
		for _, url := range args {
			download, err := downloader.DownloadVideo(cmd.Context(), url)
			if err != nil {
				return fmt.Errorf("downloading %s: %w", url, err)
			}
			slog.Info("downloaded", "url", url, "folder", download.Folder)

			if err := t.TranscribeFolder(cmd.Context(), download.Folder); err != nil {
				return fmt.Errorf("transcribing %s: %w", download.Folder, err)
			}

			results, err := processor.ProcessFolder(cmd.Context(), download.Folder)
			if err != nil {
				return fmt.Errorf("processing %s: %w", download.Folder, err)
			}
			for _, r := range results {
				if r.Err != nil {
					failed++
					slog.Error("prompt failed", "folder", download.Folder, "prompt", r.Name, "error", r.Err)
				}
			}

			if updater != nil {
				if err := updater.UpdateFromFolder(cmd.Context(), download.Folder); err != nil {
					return fmt.Errorf("updating from %s: %w", download.Folder, err)
				}
			}

			fmt.Println(download.Folder)
		}
		if failed > 0 {
			return fmt.Errorf("%d prompt(s) failed", failed)
		}
		return nil
	},
}

func init() {
	fullProcessCmd.Flags().Bool("update-youtube", false, "push metadata and subtitles to YouTube afterwards")
	rootCmd.AddCommand(fullProcessCmd)
}
