package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"jamesfarrell.me/youtube-ai-helper/internal/youtube"
)

var updateYouTubeCmd = &cobra.Command{
	Use:   "update-youtube [folder...]",
	Short: "Push prompt-generated metadata and subtitles back to YouTube",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		updater, err := newYouTubeUpdater(cmd)
		if err != nil {
			return err
		}
		for _, folder := range args {
			if err := updater.UpdateFromFolder(cmd.Context(), folder); err != nil {
				return fmt.Errorf("updating from %s: %w", folder, err)
			}
		}
		return nil
	},
}

// checkYouTubeCredentials fails fast on a missing client secret so the
// consent flow (or a stale token) is the only thing left to go wrong.
func checkYouTubeCredentials(clientSecretFile string) error {
	if _, err := os.Stat(clientSecretFile); err != nil {
		return fmt.Errorf("client secret file %q: %w", clientSecretFile, err)
	}
	return nil
}

func newYouTubeUpdater(cmd *cobra.Command) (*youtube.Updater, error) {
	if err := checkYouTubeCredentials(cfg.ClientSecretFile); err != nil {
		return nil, err
	}
	service, err := youtube.NewService(cmd.Context(), cfg.ClientSecretFile, cfg.TokenFile)
	if err != nil {
		return nil, err
	}
	return youtube.NewUpdater(service), nil
}

func init() {
	rootCmd.AddCommand(updateYouTubeCmd)
}
