package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"jamesfarrell.me/youtube-ai-helper/internal/prompts"
)

var processPromptsCmd = &cobra.Command{
	Use:   "process-prompts [folder...]",
	Short: "Run every prompt template against the transcripts in the folders",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		processor, err := newProcessor()
		if err != nil {
			return err
		}
		failed := 0
		for _, folder := range args {
			results, err := processor.ProcessFolder(cmd.Context(), folder)
			if err != nil {
				return fmt.Errorf("processing %s: %w", folder, err)
			}
			for _, r := range results {
				if r.Err != nil {
					failed++
					slog.Error("prompt failed", "folder", folder, "prompt", r.Name, "error", r.Err)
					continue
				}
				fmt.Println(r.OutputPath)
			}
		}
		if failed > 0 {
			return fmt.Errorf("%d prompt(s) failed", failed)
		}
		return nil
	},
}

func newProcessor() (*prompts.Processor, error) {
	if cfg.PromptsFolder == "" {
		return nil, fmt.Errorf("no prompts folder configured: pass --config-folder")
	}
	client, err := newAIClient()
	if err != nil {
		return nil, err
	}
	return prompts.NewProcessor(client, cfg.PromptsFolder), nil
}

func init() {
	rootCmd.AddCommand(processPromptsCmd)
}
