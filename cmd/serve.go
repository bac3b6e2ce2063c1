package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rtzll/transcriptgrab/internal/auth"
	"github.com/rtzll/transcriptgrab/internal/server"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API for the web client and companion",
	Long: `Run the HTTP API that fetches transcripts, keeps per-user history and
serves summaries. Requests are authenticated with bearer tokens signed by
auth_secret; mint one with "transcriptgrab token".`,
	Example: `  # Serve on the configured address (default :3000)
  transcriptgrab serve

  # Another port, allowing a local dev frontend
  TRANSCRIPTGRAB_CORS_ORIGINS=http://localhost:5173 transcriptgrab serve --addr :8080`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
			config.ServerAddr = addr
		}
		issuer, err := auth.NewIssuer(config.AuthSecret, config.SessionTTL)
		if err != nil {
			return fmt.Errorf("configuring sessions: %w", err)
		}

		app := newApp(true)
		defer app.Close()
		defer app.Logger().Sync()

		st, err := app.Store()
		if err != nil {
			return err
		}

		srv := server.New(server.Config{
			Addr:            config.ServerAddr,
			CORSOrigins:     config.CORSOrigins,
			DefaultLanguage: config.Language,
		}, server.Deps{
			Transcripts: app.Transcripts(),
			Metadata:    app.Metadata(),
			Store:       st,
			Summaries:   app.Summaries(),
			Issuer:      issuer,
			Logger:      app.Logger(),
		})

		app.Logger().Info("listening", "addr", config.ServerAddr)
		return srv.Run(cmd.Context())
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (default from config)")
	rootCmd.AddCommand(serveCmd)
}
