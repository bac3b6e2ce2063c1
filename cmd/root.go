package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/rtzll/transcriptgrab/internal"
)

var (
	config *internal.Config
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "transcriptgrab [YouTube URL or ID]",
	Short: "Grab, search, save and summarize YouTube transcripts",
	Long: `transcriptgrab fetches YouTube captions and turns them into plain text,
timestamped lines or SRT, searches them, keeps a history of saved
transcripts and summarizes videos with any OpenAI-compatible model.

It also runs the HTTP API used by the web client, the companion process
used by the browser extension and an MCP server for AI assistants.`,
	Example: `  # Summarize a YouTube video (default behavior)
  transcriptgrab "https://www.youtube.com/watch?v=tAP1eZYEuKA"
  transcriptgrab tAP1eZYEuKA

  # Use a specific model
  transcriptgrab "https://youtu.be/tAP1eZYEuKA" --model llama-3.1-8b-instant

  # Use custom prompt for summary
  transcriptgrab tAP1eZYEuKA --prompt "tldr: {{.Transcript}}"`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		configFile, _ := cmd.Flags().GetString("config")
		cfg, err := internal.LoadConfig(configFile)
		if err != nil {
			return err
		}
		config = cfg
		if err := internal.HandleVerboseFlag(cmd, config); err != nil {
			return err
		}

		if err := internal.EnsureDirs(config.ConfigDir, config.DataDir, config.CacheDir); err != nil {
			return fmt.Errorf("creating XDG directories: %w", err)
		}
		if err := internal.EnsureDefaultConfig(config.ConfigDir); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: Failed to ensure default config: %v\n", err)
		}
		if err := internal.EnsureDefaultPrompt(config.ConfigDir); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: Failed to ensure default prompt: %v\n", err)
		}
		return nil
	},
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return cmd.Help()
		}

		parsed := internal.ParseArg(args[0])
		if !parsed.IsVideo() {
			if parsed.Kind == internal.ArgCommand {
				return fmt.Errorf("'%s' doesn't look like a YouTube URL or video ID, %s", args[0], parsed.SuggestCorrection(subcommandNames(cmd.Root())))
			}
			return parsed.Err
		}
		return runSummarize(cmd, args[0])
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// First signal cancels; a second one, or a stuck shutdown, exits.
	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Fprintln(os.Stderr, "\nReceived interrupt signal. Shutting down...")
		cancel()

		select {
		case <-sigCh:
		case <-time.After(15 * time.Second):
			fmt.Fprintln(os.Stderr, "Warning: Shutdown timed out, forcing exit")
		}
		os.Exit(1)
	}()

	rootCmd.SetContext(ctx)
	err := rootCmd.ExecuteContext(ctx)

	if config != nil {
		if cleanupErr := internal.CleanupTempDir(config.TempDir); cleanupErr != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v\n", cleanupErr)
		}
	}
	return err
}

// commandNames lists the registered subcommands for suggestions.
func commandNames() []string {
	return subcommandNames(rootCmd)
}

// subcommandNames lists root's visible subcommands. It takes root as a
// parameter so rootCmd's RunE can use it without an initialization cycle.
func subcommandNames(root *cobra.Command) []string {
	var names []string
	for _, c := range root.Commands() {
		if !c.Hidden {
			names = append(names, c.Name())
		}
	}
	return names
}

func init() {
	internal.AddLLMFlags(rootCmd)
	internal.AddLanguageFlag(rootCmd)
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output for debugging")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "Suppress status output")
	rootCmd.PersistentFlags().String("config", "", "Config file (default is $XDG_CONFIG_HOME/transcriptgrab/config.toml)")
}
