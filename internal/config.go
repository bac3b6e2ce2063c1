package internal

import (
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/spf13/viper"
)

// AppName names the XDG directories and the env prefix.
const AppName = "transcriptgrab"

// Config holds application settings
type Config struct {
	// Summaries
	LLMModel             string
	LLMBaseURL           string
	LLMAPIKey            string
	LLMRequestsPerMinute int
	SummaryTimeout       time.Duration
	SummaryMaxChars      int
	Prompt               string

	// Transcripts
	Language       string
	TranscriptsDir string

	// Persistence
	DatabaseDriver string
	DatabaseDSN    string

	// HTTP server and identity
	ServerAddr  string
	AuthSecret  string
	SessionTTL  time.Duration
	CORSOrigins []string
	SaveDelay   time.Duration

	// Companion
	CompanionSocket         string
	CompanionAPIBase        string
	CompanionToken          string
	CompanionSummaryTimeout time.Duration
	CompanionCacheSize      int
	CompanionCacheTTL       time.Duration

	// Local owner id for history and --save on the CLI
	User string

	LogMode       string
	Verbose       bool
	Quiet         bool
	MCPLogEnabled bool

	// Fixed XDG paths (not configurable)
	ConfigDir string
	DataDir   string
	CacheDir  string
	TempDir   string
}

//go:embed config.toml prompt.txt
var defaultFS embed.FS

// ensureDefaultFile checks if a file exists in the specified directory
// and creates it from the embedded default if it doesn't exist
func ensureDefaultFile(configDir, embedFilename, description string) error {
	filePath := filepath.Join(configDir, embedFilename)
	if FileExists(filePath) {
		return nil
	}

	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	defaultContent, err := defaultFS.ReadFile(embedFilename)
	if err != nil {
		return fmt.Errorf("reading embedded default %s: %w", description, err)
	}

	if err := os.WriteFile(filePath, defaultContent, 0644); err != nil {
		return fmt.Errorf("writing default %s: %w", description, err)
	}

	fmt.Fprintf(os.Stderr, "Created default %s at %s\n", description, filePath)
	return nil
}

// EnsureDefaultConfig writes the embedded config.toml to configDir unless
// one is already there.
func EnsureDefaultConfig(configDir string) error {
	return ensureDefaultFile(configDir, "config.toml", "configuration")
}

// EnsureDefaultPrompt writes the embedded prompt.txt to configDir unless
// one is already there.
func EnsureDefaultPrompt(configDir string) error {
	return ensureDefaultFile(configDir, "prompt.txt", "summary prompt")
}

// DefaultSystemPrompt returns the embedded summary instruction.
func DefaultSystemPrompt() string {
	data, err := defaultFS.ReadFile("prompt.txt")
	if err != nil {
		panic(fmt.Sprintf("embedded prompt missing: %v", err))
	}
	return strings.TrimSpace(string(data))
}

func setDefaults(v *viper.Viper, dataDir, cacheDir, runtimeDir string) {
	v.SetDefault("llm_model", "llama-3.3-70b-versatile")
	v.SetDefault("llm_base_url", "https://api.groq.com/openai/v1")
	v.SetDefault("llm_requests_per_minute", 30)
	v.SetDefault("summary_timeout", 30*time.Second)
	v.SetDefault("summary_max_chars", 120000)
	v.SetDefault("prompt", "") // empty uses the default user message

	v.SetDefault("language", "en")
	v.SetDefault("transcripts_dir", filepath.Join(dataDir, "transcripts"))

	v.SetDefault("database_driver", "sqlite")
	v.SetDefault("database_dsn", filepath.Join(dataDir, AppName+".db"))

	v.SetDefault("server_addr", ":3000")
	v.SetDefault("auth_secret", "")
	v.SetDefault("session_ttl", 720*time.Hour)
	v.SetDefault("cors_origins", []string{"http://localhost:3000"})
	v.SetDefault("save_delay", 2500*time.Millisecond)

	v.SetDefault("companion_socket", filepath.Join(runtimeDir, "companion.sock"))
	v.SetDefault("companion_api_base", "http://localhost:3000")
	v.SetDefault("companion_token", "")
	v.SetDefault("companion_summary_timeout", 15*time.Second)
	v.SetDefault("companion_cache_size", 100)
	v.SetDefault("companion_cache_ttl", time.Hour)

	v.SetDefault("user", "local")
	v.SetDefault("log_mode", "dev")
	v.SetDefault("verbose", false)
	v.SetDefault("quiet", false)
	v.SetDefault("mcp_log_enabled", false)
}

// LoadConfig reads configuration from configFile, or config.toml in the
// XDG config directory or the working directory. Environment variables
// override the file; the file overrides defaults.
func LoadConfig(configFile string) (*Config, error) {
	configDir := filepath.Join(xdg.ConfigHome, AppName)
	dataDir := filepath.Join(xdg.DataHome, AppName)
	cacheDir := filepath.Join(xdg.CacheHome, AppName)
	runtimeDir := filepath.Join(xdg.RuntimeDir, AppName)

	v := viper.New()
	setDefaults(v, dataDir, cacheDir, runtimeDir)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("toml")
		v.AddConfigPath(configDir)
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(strings.ToUpper(AppName))
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))

	// Provider keys are commonly exported under their own names.
	_ = v.BindEnv("llm_api_key", "TRANSCRIPTGRAB_LLM_API_KEY", "GROQ_API_KEY", "OPENAI_API_KEY")
	_ = v.BindEnv("auth_secret", "TRANSCRIPTGRAB_AUTH_SECRET", "AUTH_SECRET")
	_ = v.BindEnv("database_dsn", "TRANSCRIPTGRAB_DATABASE_DSN", "DATABASE_URL")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	config := &Config{
		LLMModel:             v.GetString("llm_model"),
		LLMBaseURL:           v.GetString("llm_base_url"),
		LLMAPIKey:            v.GetString("llm_api_key"),
		LLMRequestsPerMinute: v.GetInt("llm_requests_per_minute"),
		SummaryTimeout:       v.GetDuration("summary_timeout"),
		SummaryMaxChars:      v.GetInt("summary_max_chars"),
		Prompt:               v.GetString("prompt"),

		Language:       v.GetString("language"),
		TranscriptsDir: v.GetString("transcripts_dir"),

		DatabaseDriver: v.GetString("database_driver"),
		DatabaseDSN:    v.GetString("database_dsn"),

		ServerAddr:  v.GetString("server_addr"),
		AuthSecret:  v.GetString("auth_secret"),
		SessionTTL:  v.GetDuration("session_ttl"),
		CORSOrigins: v.GetStringSlice("cors_origins"),
		SaveDelay:   v.GetDuration("save_delay"),

		CompanionSocket:         v.GetString("companion_socket"),
		CompanionAPIBase:        v.GetString("companion_api_base"),
		CompanionToken:          v.GetString("companion_token"),
		CompanionSummaryTimeout: v.GetDuration("companion_summary_timeout"),
		CompanionCacheSize:      v.GetInt("companion_cache_size"),
		CompanionCacheTTL:       v.GetDuration("companion_cache_ttl"),

		User: v.GetString("user"),

		LogMode:       v.GetString("log_mode"),
		Verbose:       v.GetBool("verbose"),
		Quiet:         v.GetBool("quiet"),
		MCPLogEnabled: v.GetBool("mcp_log_enabled"),

		ConfigDir: configDir,
		DataDir:   dataDir,
		CacheDir:  cacheDir,
		TempDir:   filepath.Join(cacheDir, "tmp"),
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate checks bounds that would otherwise fail deep inside a command.
func (c *Config) Validate() error {
	var errs []error
	if c.SummaryTimeout <= 0 {
		errs = append(errs, errors.New("summary_timeout must be positive"))
	}
	if c.SummaryMaxChars <= 0 {
		errs = append(errs, errors.New("summary_max_chars must be positive"))
	}
	if c.LLMRequestsPerMinute < 0 {
		errs = append(errs, errors.New("llm_requests_per_minute cannot be negative"))
	}
	if c.SaveDelay < 0 {
		errs = append(errs, errors.New("save_delay cannot be negative"))
	}
	if c.SessionTTL <= 0 {
		errs = append(errs, errors.New("session_ttl must be positive"))
	}
	if c.CompanionSummaryTimeout <= 0 {
		errs = append(errs, errors.New("companion_summary_timeout must be positive"))
	}
	if c.CompanionCacheSize <= 0 {
		errs = append(errs, errors.New("companion_cache_size must be positive"))
	}
	switch c.DatabaseDriver {
	case "sqlite", "postgres":
	default:
		errs = append(errs, fmt.Errorf("database_driver must be sqlite or postgres, got %q", c.DatabaseDriver))
	}
	if c.Language == "" {
		errs = append(errs, errors.New("language cannot be empty"))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}
