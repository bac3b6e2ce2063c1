package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rtzll/transcriptgrab/internal"
)

// metadataCmd represents the metadata command
var metadataCmd = &cobra.Command{
	Use:   "metadata [URL]",
	Short: "Get metadata from YouTube video",
	Example: `  # Get metadata from YouTube video
  transcriptgrab metadata "https://www.youtube.com/watch?v=tAP1eZYEuKA"
  transcriptgrab metadata tAP1eZYEuKA

  # Save metadata to file
  transcriptgrab metadata tAP1eZYEuKA -o metadata.json

  # Format output as pretty JSON
  transcriptgrab metadata tAP1eZYEuKA --pretty`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		parsed := internal.ParseArg(args[0])
		if !parsed.IsVideo() {
			return parsed.Err
		}

		app := newApp(false)
		defer app.Close()

		video, err := app.VideoMetadata(cmd.Context(), parsed.VideoID)
		if err != nil {
			return err
		}

		var jsonData []byte
		pretty, _ := cmd.Flags().GetBool("pretty")
		if pretty {
			jsonData, err = json.MarshalIndent(video, "", "  ")
		} else {
			jsonData, err = json.Marshal(video)
		}
		if err != nil {
			return fmt.Errorf("error converting metadata to JSON: %w", err)
		}

		outputFile, _ := cmd.Flags().GetString("output")
		if outputFile != "" {
			return os.WriteFile(outputFile, jsonData, 0644)
		}

		fmt.Println(string(jsonData))
		return nil
	},
}

func init() {
	metadataCmd.Flags().StringP("output", "o", "", "Output file path (default: stdout)")
	metadataCmd.Flags().Bool("pretty", false, "Format output as pretty JSON")
	rootCmd.AddCommand(metadataCmd)
}
