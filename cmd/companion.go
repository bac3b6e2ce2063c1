package cmd

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/rtzll/transcriptgrab/internal"
	"github.com/rtzll/transcriptgrab/internal/companion"
	"github.com/rtzll/transcriptgrab/internal/httpkit"
	"github.com/rtzll/transcriptgrab/internal/summary"
)

// companionCmd represents the companion command
var companionCmd = &cobra.Command{
	Use:   "companion",
	Short: "Run the browser companion process",
	Long: `Run the long-lived companion used by the browser extension. It listens
on a Unix socket for newline-delimited JSON requests, keeps the transcript
of the video being watched, auto-saves it for signed-in users and serves
summaries through the HTTP API.`,
	Example: `  # Start with settings from config
  transcriptgrab companion

  # Point at a remote API with a token from "transcriptgrab token"
  transcriptgrab companion --api https://tg.example.com --token "$TOKEN"

  # Talk to a running companion
  transcriptgrab companion call getTranscript tAP1eZYEuKA
  transcriptgrab companion call search --query "neural" --action set`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		applyCompanionFlags(cmd)

		log := internal.NewLogger(config, true).With("component", "companion")
		defer log.Sync()
		api := companion.NewAPIClient(config.CompanionAPIBase, config.CompanionToken,
			httpkit.NewClient(httpkit.WithTimeout(config.CompanionSummaryTimeout+config.SummaryTimeout)))
		summaries := companion.NewRemoteSummaries(api,
			summary.NewEphemeral(config.CompanionCacheSize, config.CompanionCacheTTL),
			config.CompanionSummaryTimeout)

		bg := companion.NewBackground(api, summaries,
			companion.WithSaveDelay(config.SaveDelay),
			companion.WithBackgroundLogger(log))
		defer bg.Close()

		if err := internal.EnsureDirs(filepath.Dir(config.CompanionSocket)); err != nil {
			return fmt.Errorf("creating socket directory: %w", err)
		}

		log.Info("listening", "socket", config.CompanionSocket, "api", config.CompanionAPIBase, "signedIn", api.SignedIn())
		return companion.NewListener(config.CompanionSocket, bg, log).Serve(cmd.Context())
	},
}

// companionCallCmd sends one request to a running companion.
var companionCallCmd = &cobra.Command{
	Use:       "call [OP] [VIDEO_ID]",
	Short:     "Send one request to a running companion",
	Args:      cobra.RangeArgs(1, 2),
	ValidArgs: []string{
		string(companion.OpGetTranscript), string(companion.OpCheckAuth), string(companion.OpSummarize),
		string(companion.OpAutoSave), string(companion.OpSearch), string(companion.OpClose),
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		applyCompanionFlags(cmd)

		req := companion.Request{Op: companion.Op(args[0])}
		if len(args) == 2 {
			req.VideoID = args[1]
		}
		req.Query, _ = cmd.Flags().GetString("query")
		req.Action, _ = cmd.Flags().GetString("action")
		req.LanguageCode, _ = cmd.Flags().GetString("lang")

		client, err := companion.Connect(cmd.Context(), config.CompanionSocket)
		if err != nil {
			return err
		}
		defer client.Close()

		resp, err := client.Call(cmd.Context(), req)
		if err != nil {
			return err
		}

		data, err := json.MarshalIndent(resp, "", "  ")
		if err != nil {
			return fmt.Errorf("encoding response: %w", err)
		}
		fmt.Println(string(data))
		if !resp.OK {
			return fmt.Errorf("%s failed: %s", req.Op, resp.Error)
		}
		return nil
	},
}

func applyCompanionFlags(cmd *cobra.Command) {
	if v, _ := cmd.Flags().GetString("socket"); v != "" {
		config.CompanionSocket = v
	}
	if v, _ := cmd.Flags().GetString("api"); v != "" {
		config.CompanionAPIBase = v
	}
	if v, _ := cmd.Flags().GetString("token"); v != "" {
		config.CompanionToken = v
	}
}

func init() {
	companionCmd.PersistentFlags().String("socket", "", "Unix socket path (default from config)")
	companionCmd.Flags().String("api", "", "Base URL of the HTTP API (default from config)")
	companionCmd.Flags().String("token", "", "Session token for the HTTP API")

	companionCallCmd.Flags().String("query", "", "Search query for the search op")
	companionCallCmd.Flags().String("action", "", "Search action: set, next, prev or clear")
	companionCallCmd.Flags().StringP("lang", "l", "", "Caption language for getTranscript")

	companionCmd.AddCommand(companionCallCmd)
	rootCmd.AddCommand(companionCmd)
}
