package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rtzll/transcriptgrab/internal"
)

// pathsCmd represents the paths command
var pathsCmd = &cobra.Command{
	Use:   "paths",
	Short: "Show paths used by the application",
	Example: `  # Show all application paths
  transcriptgrab paths`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("Config directory: %s\n", config.ConfigDir)
		fmt.Printf("Data directory: %s\n", config.DataDir)
		fmt.Printf("Cache directory: %s\n", config.CacheDir)
		fmt.Printf("Transcripts directory: %s\n", config.TranscriptsDir)
		if config.DatabaseDriver == "sqlite" {
			fmt.Printf("Database: %s\n", config.DatabaseDSN)
		} else {
			fmt.Printf("Database: %s\n", config.DatabaseDriver)
		}
		fmt.Printf("Companion socket: %s\n", config.CompanionSocket)
		fmt.Printf("MCP log: %s\n", internal.MCPLogPath(config))
	},
}

func init() {
	rootCmd.AddCommand(pathsCmd)
}
