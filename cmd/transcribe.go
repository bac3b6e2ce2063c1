package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rtzll/transcriptgrab/internal"
	"github.com/rtzll/transcriptgrab/internal/savecoord"
)

// transcribeCmd represents the transcribe command
var transcribeCmd = &cobra.Command{
	Use:   "transcribe [YouTube URL or ID]",
	Short: "Get transcript from YouTube (cached or downloaded)",
	Example: `  # Print the transcript as plain text
  transcriptgrab transcribe "https://www.youtube.com/watch?v=tAP1eZYEuKA"
  transcriptgrab transcribe tAP1eZYEuKA

  # Timestamped lines or SRT subtitles
  transcriptgrab transcribe tAP1eZYEuKA --format timestamps
  transcriptgrab transcribe tAP1eZYEuKA --format srt -o talk.srt

  # Also keep it in the local history
  transcriptgrab transcribe tAP1eZYEuKA --save`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		internal.HandleLanguageFlag(cmd, config)
		format, err := internal.FormatFlag(cmd)
		if err != nil {
			return err
		}

		app := newApp(false)
		defer app.Close()

		videoID, segments, text, err := app.Export(cmd.Context(), args[0], format)
		if err != nil {
			return err
		}

		if save, _ := cmd.Flags().GetBool("save"); save {
			snap, err := app.SaveTranscript(cmd.Context(), videoID, segments)
			if err != nil {
				return err
			}
			reportSave(app, snap)
		}

		outputFile, _ := cmd.Flags().GetString("output")
		if outputFile != "" {
			return os.WriteFile(outputFile, []byte(text), 0644)
		}

		fmt.Print(text)
		return nil
	},
}

func reportSave(app *internal.App, snap savecoord.Snapshot) {
	switch {
	case snap.State == savecoord.Duplicate:
		app.Statusf("Already in history (%s)\n", snap.RecordID)
	case snap.Inserted:
		app.Statusf("Saved to history (%s)\n", snap.RecordID)
	default:
		app.Statusf("Already saved (%s)\n", snap.RecordID)
	}
}

func init() {
	internal.AddLanguageFlag(transcribeCmd)
	internal.AddFormatFlag(transcribeCmd)
	transcribeCmd.Flags().StringP("output", "o", "", "Output file path (default: stdout)")
	transcribeCmd.Flags().Bool("save", false, "Save the transcript to the local history")
	rootCmd.AddCommand(transcribeCmd)
}
