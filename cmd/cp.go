package cmd

import (
	"fmt"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"github.com/rtzll/transcriptgrab/internal"
)

// cpCmd copies the transcript to the system clipboard instead of printing to stdout.
var cpCmd = &cobra.Command{
	Use:   "cp [URL]",
	Short: "Copy transcript from YouTube to the clipboard",
	Example: `  # Copy transcript from YouTube captions
  transcriptgrab cp "https://www.youtube.com/watch?v=tAP1eZYEuKA"
  transcriptgrab cp tAP1eZYEuKA --format timestamps`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		internal.HandleLanguageFlag(cmd, config)
		format, err := internal.FormatFlag(cmd)
		if err != nil {
			return err
		}

		app := newApp(false)
		defer app.Close()

		_, _, text, err := app.Export(cmd.Context(), args[0], format)
		if err != nil {
			return err
		}

		if err := clipboard.WriteAll(text); err != nil {
			return fmt.Errorf("copying transcript to clipboard: %w", err)
		}

		app.Statusf("Transcript copied to clipboard\n")
		return nil
	},
}

func init() {
	internal.AddLanguageFlag(cpCmd)
	internal.AddFormatFlag(cpCmd)
	rootCmd.AddCommand(cpCmd)
}
