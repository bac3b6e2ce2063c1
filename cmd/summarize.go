package cmd

import (
	"github.com/spf13/cobra"

	"github.com/rtzll/transcriptgrab/internal"
)

// summarizeCmd represents the summarize command
var summarizeCmd = &cobra.Command{
	Use:   "summarize [YouTube URL or ID]",
	Short: "Generate summary from YouTube video",
	Example: `  # Generate summary from YouTube video
  transcriptgrab summarize "https://www.youtube.com/watch?v=tAP1eZYEuKA"
  transcriptgrab summarize tAP1eZYEuKA

  # Use a specific model
  transcriptgrab summarize tAP1eZYEuKA --model llama-3.1-8b-instant

  # Summarize German captions
  transcriptgrab summarize tAP1eZYEuKA --lang de`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSummarize(cmd, args[0])
	},
}

// runSummarize fetches, summarizes (once per video) and renders.
func runSummarize(cmd *cobra.Command, arg string) error {
	if err := internal.ValidateLLMRequirements(cmd, config); err != nil {
		return err
	}
	internal.HandleLanguageFlag(cmd, config)

	app := newApp(false)
	defer app.Close()

	if err := internal.HandlePromptFlag(cmd, app); err != nil {
		return err
	}
	return app.SummarizeVideo(cmd.Context(), arg)
}

func init() {
	internal.AddLLMFlags(summarizeCmd)
	internal.AddLanguageFlag(summarizeCmd)
	rootCmd.AddCommand(summarizeCmd)
}
