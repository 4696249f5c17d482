package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var downloadCmd = &cobra.Command{
	Use:   "download [url...]",
	Short: "Download audio for one or more YouTube URLs",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		downloader, err := newDownloader()
		if err != nil {
			return err
		}
		for _, url := range args {
			download, err := downloader.DownloadVideo(cmd.Context(), url)
			if err != nil {
				return fmt.Errorf("downloading %s: %w", url, err)
			}
			fmt.Println(download.Folder)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(downloadCmd)
}
