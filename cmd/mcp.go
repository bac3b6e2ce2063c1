package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/adrg/xdg"
	"github.com/spf13/cobra"

	"github.com/rtzll/transcriptgrab/internal"
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run MCP server for transcriptgrab",
	Long: `Run a Model Context Protocol (MCP) server that exposes transcriptgrab as tools.

The MCP server provides these tools:
- get_youtube_metadata: Title, channel and thumbnail of a video
- get_youtube_transcript: Captions as plain text, timestamped lines or SRT
- search_youtube_transcript: Every occurrence of a phrase with timestamps
- summarize_youtube_video: Key points and a short summary (cached per video)

Transport options:
- stdio (default): Standard MCP transport via stdin/stdout
- http: HTTP transport on specified port (use --port to configure)`,
	Example: `  # Run MCP server with stdio transport (e.g. for Claude Desktop)
  transcriptgrab mcp

  # Run MCP server with HTTP transport on port 8080
  transcriptgrab mcp --transport=http --port=8080

  # Set up Claude Desktop integration
  transcriptgrab mcp setup-claude`,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		// stdout belongs to the protocol
		config.Verbose = false
		config.Quiet = true
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		transport, _ := cmd.Flags().GetString("transport")
		port, _ := cmd.Flags().GetInt("port")

		app := internal.NewApp(config, internal.WithLogger(internal.NewMCPLogger(config)))
		defer app.Close()
		defer app.Logger().Sync()

		mcpServer := internal.NewMCPServer(app, version)

		// Start the server (this will block until context is cancelled)
		return mcpServer.Start(cmd.Context(), transport, port)
	},
}

// setupClaudeCmd represents the setup-claude subcommand
var setupClaudeCmd = &cobra.Command{
	Use:   "setup-claude",
	Short: "Configure Claude Desktop to use the transcriptgrab MCP server",
	Long: `Register transcriptgrab as an MCP server in Claude Desktop.

The entry is merged into claude_desktop_config.json; other servers are kept.
XDG base directories are passed along so the server reads the same config
and history as the CLI. Use --print to see the entry without writing it.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		entry, err := mcpServerEntry()
		if err != nil {
			return err
		}

		if printOnly, _ := cmd.Flags().GetBool("print"); printOnly {
			data, err := json.MarshalIndent(map[string]MCPServerConfig{internal.AppName: entry}, "", "  ")
			if err != nil {
				return fmt.Errorf("marshaling entry: %w", err)
			}
			fmt.Println(string(data))
			return nil
		}

		configPath, err := getClaudeDesktopConfigPath()
		if err != nil {
			return fmt.Errorf("getting Claude Desktop config path: %w", err)
		}
		if err := upsertMCPServer(configPath, internal.AppName, entry); err != nil {
			return err
		}

		fmt.Printf("Registered %s in %s\n", internal.AppName, configPath)
		fmt.Printf("Restart Claude Desktop to use the transcriptgrab MCP server\n")
		return nil
	},
}

// MCPServerConfig represents an individual MCP server configuration
type MCPServerConfig struct {
	Command string            `json:"command"`
	Args    []string          `json:"args"`
	Env     map[string]string `json:"env,omitempty"`
}

// mcpServerEntry describes how Claude Desktop should launch this binary.
func mcpServerEntry() (MCPServerConfig, error) {
	execPath, err := os.Executable()
	if err != nil {
		return MCPServerConfig{}, fmt.Errorf("getting executable path: %w", err)
	}
	execPath, err = filepath.EvalSymlinks(execPath)
	if err != nil {
		return MCPServerConfig{}, fmt.Errorf("resolving executable path: %w", err)
	}

	return MCPServerConfig{
		Command: execPath,
		Args:    []string{"mcp"},
		Env: map[string]string{
			"XDG_DATA_HOME":   xdg.DataHome,
			"XDG_CONFIG_HOME": xdg.ConfigHome,
			"XDG_CACHE_HOME":  xdg.CacheHome,
		},
	}, nil
}

// upsertMCPServer sets mcpServers[name] in the config at path. The file
// must exist: a missing one means Claude Desktop is not installed.
func upsertMCPServer(path, name string, entry MCPServerConfig) error {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return fmt.Errorf("config for Claude Desktop not found at %s", path)
	}
	if err != nil {
		return fmt.Errorf("reading existing config: %w", err)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("parsing existing config: %w", err)
	}
	if raw == nil {
		raw = make(map[string]json.RawMessage)
	}

	servers := make(map[string]json.RawMessage)
	if existing, ok := raw["mcpServers"]; ok {
		if err := json.Unmarshal(existing, &servers); err != nil {
			return fmt.Errorf("parsing mcpServers: %w", err)
		}
	}
	encoded, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshaling entry: %w", err)
	}
	servers[name] = encoded

	if raw["mcpServers"], err = json.Marshal(servers); err != nil {
		return fmt.Errorf("marshaling mcpServers: %w", err)
	}
	out, err := json.MarshalIndent(raw, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, out, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

// getClaudeDesktopConfigPath returns the platform-specific config path for Claude Desktop
func getClaudeDesktopConfigPath() (string, error) {
	var configPath string

	switch runtime.GOOS {
	case "darwin":
		// macOS: ~/Library/Application Support/Claude/claude_desktop_config.json
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		configPath = filepath.Join(homeDir, "Library", "Application Support", "Claude", "claude_desktop_config.json")

	case "windows":
		// Windows: %APPDATA%/Claude/claude_desktop_config.json
		appData := os.Getenv("APPDATA")
		if appData == "" {
			return "", fmt.Errorf("APPDATA environment variable not set")
		}
		configPath = filepath.Join(appData, "Claude", "claude_desktop_config.json")

	case "linux":
		// Linux: ~/.config/Claude/claude_desktop_config.json
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		configPath = filepath.Join(homeDir, ".config", "Claude", "claude_desktop_config.json")

	default:
		return "", fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}

	return configPath, nil
}

func init() {
	mcpCmd.Flags().String("transport", "stdio", "Transport protocol (stdio or http)")
	mcpCmd.Flags().Int("port", 8080, "Port for HTTP transport (only used with --transport=http)")
	setupClaudeCmd.Flags().Bool("print", false, "Print the server entry instead of writing it")
	mcpCmd.AddCommand(setupClaudeCmd)
	rootCmd.AddCommand(mcpCmd)
}
