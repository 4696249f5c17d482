package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"jamesfarrell.me/youtube-ai-helper/internal/media"
	"jamesfarrell.me/youtube-ai-helper/internal/transcriber"
)

var transcribeCmd = &cobra.Command{
	Use:   "transcribe [folder...]",
	Short: "Transcribe the audio files in one or more video folders",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		t, err := newTranscriber()
		if err != nil {
			return err
		}
		for _, folder := range args {
			if err := t.TranscribeFolder(cmd.Context(), folder); err != nil {
				return fmt.Errorf("transcribing %s: %w", folder, err)
			}
		}
		return nil
	},
}

func newTranscriber() (*transcriber.Transcriber, error) {
	if err := media.CheckExecutables("ffmpeg", "ffprobe"); err != nil {
		return nil, err
	}
	client, err := newAIClient()
	if err != nil {
		return nil, err
	}
	audio := media.NewDownloader(media.ExecRunner{}, cfg.AudioBitrate, cfg.OutputDir)
	return transcriber.New(client, audio, whisper), nil
}

func init() {
	rootCmd.AddCommand(transcribeCmd)
}
