package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/rtzll/transcriptgrab/internal"
	"github.com/rtzll/transcriptgrab/internal/store"
	"github.com/rtzll/transcriptgrab/internal/transcript"
)

// historyCmd represents the history command
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Manage saved transcripts",
	Example: `  # List saved transcripts, newest first
  transcriptgrab history list

  # Export one of them as SRT
  transcriptgrab history show 6f1c... --format srt -o ~/subtitles/

  # Remove entries
  transcriptgrab history delete 6f1c... 9a2b...`,
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved transcripts",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, st, err := openHistory()
		if err != nil {
			return err
		}
		defer app.Close()

		records, err := st.List(cmd.Context(), config.User)
		if err != nil {
			return err
		}

		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			data, err := json.MarshalIndent(records, "", "  ")
			if err != nil {
				return fmt.Errorf("encoding history: %w", err)
			}
			fmt.Println(string(data))
			return nil
		}

		if len(records) == 0 {
			app.Statusf("No saved transcripts\n")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tVIDEO\tDURATION\tSAVED\tTITLE")
		for _, r := range records {
			duration := "-"
			if r.VideoDuration != nil {
				duration = transcript.FormatClockTimestamp(float64(*r.VideoDuration))
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", r.ID, r.VideoID, duration, r.SavedAt.Local().Format("2006-01-02 15:04"), r.VideoTitle)
		}
		return w.Flush()
	},
}

var historyShowCmd = &cobra.Command{
	Use:   "show [ID]",
	Short: "Print or export a saved transcript",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := internal.FormatFlag(cmd)
		if err != nil {
			return err
		}

		app, st, err := openHistory()
		if err != nil {
			return err
		}
		defer app.Close()

		record, err := st.Get(cmd.Context(), config.User, args[0])
		if err != nil {
			return err
		}

		text := transcript.Render(record.Segments, format)

		output, _ := cmd.Flags().GetString("output")
		if output == "" {
			fmt.Print(text)
			return nil
		}
		if info, err := os.Stat(output); err == nil && info.IsDir() {
			output = filepath.Join(output, transcript.SanitizeFilename(record.VideoTitle)+format.Extension())
		}
		if err := os.WriteFile(output, []byte(text), 0644); err != nil {
			return fmt.Errorf("writing %s: %w", output, err)
		}
		app.Statusf("Wrote %s\n", output)
		return nil
	},
}

var historyDeleteCmd = &cobra.Command{
	Use:   "delete [ID...]",
	Short: "Delete saved transcripts",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, st, err := openHistory()
		if err != nil {
			return err
		}
		defer app.Close()

		deleted, err := st.DeleteMany(cmd.Context(), config.User, args)
		if err != nil {
			return err
		}
		app.Statusf("Deleted %d of %d\n", deleted, len(args))
		return nil
	},
}

// openHistory opens the configured store; the caller closes the app.
func openHistory() (*internal.App, *store.Store, error) {
	app := newApp(false)
	st, err := app.Store()
	if err != nil {
		_ = app.Close()
		return nil, nil, err
	}
	return app, st, nil
}

func init() {
	historyListCmd.Flags().Bool("json", false, "Print records as JSON")
	internal.AddFormatFlag(historyShowCmd)
	historyShowCmd.Flags().StringP("output", "o", "", "Output file or directory (default: stdout)")

	historyCmd.AddCommand(historyListCmd, historyShowCmd, historyDeleteCmd)
	rootCmd.AddCommand(historyCmd)
}
