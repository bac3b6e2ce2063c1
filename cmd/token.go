package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rtzll/transcriptgrab/internal/auth"
)

// tokenCmd represents the token command
var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Mint a session token for the HTTP API",
	Example: `  # Token for the configured local user
  transcriptgrab token

  # Token for someone else, handed to their companion
  transcriptgrab token --user alice`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		issuer, err := auth.NewIssuer(config.AuthSecret, config.SessionTTL)
		if err != nil {
			return fmt.Errorf("configuring sessions: %w", err)
		}

		user, _ := cmd.Flags().GetString("user")
		if user == "" {
			user = config.User
		}

		token, err := issuer.Issue(user)
		if err != nil {
			return err
		}
		fmt.Println(token)
		return nil
	},
}

func init() {
	tokenCmd.Flags().String("user", "", "User id to embed (default from config)")
	rootCmd.AddCommand(tokenCmd)
}
