package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rtzll/transcriptgrab/internal"
)

// searchCmd represents the search command
var searchCmd = &cobra.Command{
	Use:   "search [URL] [QUERY]",
	Short: "Find a phrase in a video's transcript",
	Example: `  # List every occurrence with its timestamp
  transcriptgrab search tAP1eZYEuKA "neural network"

  # Machine-readable matches
  transcriptgrab search tAP1eZYEuKA gradient --json`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		internal.HandleLanguageFlag(cmd, config)

		app := newApp(false)
		defer app.Close()

		segments, ix, err := app.Search(cmd.Context(), args[0], args[1])
		if err != nil {
			return err
		}

		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			data, err := json.MarshalIndent(ix, "", "  ")
			if err != nil {
				return fmt.Errorf("encoding matches: %w", err)
			}
			fmt.Println(string(data))
			return nil
		}

		fmt.Print(internal.FormatMatches(segments, ix))
		return nil
	},
}

func init() {
	internal.AddLanguageFlag(searchCmd)
	searchCmd.Flags().Bool("json", false, "Print the match index as JSON")
	rootCmd.AddCommand(searchCmd)
}
