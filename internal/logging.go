package internal

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rtzll/transcriptgrab/internal/logger"
)

// NewLogger builds the process logger. CLI commands log at warn unless
// verbose so their own output stays readable.
func NewLogger(config *Config, longRunning bool) *logger.Logger {
	l, err := logger.New(logger.Options{
		Mode:    config.LogMode,
		Verbose: config.Verbose,
		Quiet:   !longRunning,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
		return logger.Nop()
	}
	return l
}

// NewMCPLogger builds the logger for the stdio MCP server, which owns
// stdout. It writes to mcp.log in the cache directory when
// mcp_log_enabled is set and discards everything otherwise.
func NewMCPLogger(config *Config) *logger.Logger {
	if !config.MCPLogEnabled {
		return logger.Nop()
	}
	l, err := logger.New(logger.Options{
		Mode:    "prod",
		Verbose: true,
		File:    MCPLogPath(config),
	})
	if err != nil {
		return logger.Nop()
	}
	return l
}

// MCPLogPath is where the MCP server logs.
func MCPLogPath(config *Config) string {
	return filepath.Join(config.CacheDir, "mcp.log")
}
