package internal

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rtzll/transcriptgrab/internal/transcript"
)

// AddLLMFlags adds flags related to summary generation
func AddLLMFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("model", "m", "", "Model to use for summaries (any model the endpoint serves)")
	cmd.Flags().StringP("prompt", "p", "", "Custom user prompt template (string or file path)")
}

// AddLanguageFlag adds the caption language flag
func AddLanguageFlag(cmd *cobra.Command) {
	cmd.Flags().StringP("lang", "l", "", "Caption language code (default from config)")
}

// AddFormatFlag adds the export format flag
func AddFormatFlag(cmd *cobra.Command) {
	cmd.Flags().StringP("format", "f", string(transcript.FormatPlain), "Export format: plain, timestamps or srt")
}

// HandlePromptFlag processes the --prompt flag to set custom prompt
func HandlePromptFlag(cmd *cobra.Command, app *App) error {
	promptFlag := cmd.Flags().Lookup("prompt")
	if promptFlag == nil || !promptFlag.Changed {
		return nil
	}

	prompt, err := cmd.Flags().GetString("prompt")
	if err != nil {
		return fmt.Errorf("failed to get prompt flag: %w", err)
	}
	if prompt == "" {
		return nil
	}

	app.SetPromptManager(NewPromptManager(app.config.ConfigDir, prompt))

	if IsLikelyFilePath(prompt) && FileExists(prompt) {
		app.log.Debug("using custom prompt file", "path", prompt)
	} else {
		app.log.Debug("using custom prompt string")
	}
	return nil
}

// HandleVerboseFlag processes the --verbose and --quiet flags to update config
func HandleVerboseFlag(cmd *cobra.Command, config *Config) error {
	if f := cmd.Flags().Lookup("verbose"); f != nil && f.Changed {
		verbose, err := cmd.Flags().GetBool("verbose")
		if err != nil {
			return fmt.Errorf("failed to get verbose flag: %w", err)
		}
		config.Verbose = verbose
	}
	if f := cmd.Flags().Lookup("quiet"); f != nil && f.Changed {
		quiet, err := cmd.Flags().GetBool("quiet")
		if err != nil {
			return fmt.Errorf("failed to get quiet flag: %w", err)
		}
		config.Quiet = quiet
	}
	return nil
}

// HandleLanguageFlag applies --lang to config
func HandleLanguageFlag(cmd *cobra.Command, config *Config) {
	if lang, _ := cmd.Flags().GetString("lang"); lang != "" {
		config.Language = lang
	}
}

// FormatFlag reads and validates --format
func FormatFlag(cmd *cobra.Command) (transcript.Format, error) {
	value, _ := cmd.Flags().GetString("format")
	return transcript.ParseFormat(value)
}

// ValidateLLMRequirements validates the API key and applies --model
func ValidateLLMRequirements(cmd *cobra.Command, config *Config) error {
	if err := ValidateAPIKey(config.LLMAPIKey); err != nil {
		return err
	}
	if model, _ := cmd.Flags().GetString("model"); model != "" {
		config.LLMModel = model
	}
	if config.LLMModel == "" {
		return fmt.Errorf("no model configured: set llm_model in config.toml or pass --model")
	}
	return nil
}
