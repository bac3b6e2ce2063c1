package internal

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/rtzll/transcriptgrab/internal/summary"
)

// PromptData for template injection
type PromptData struct {
	Transcript string
}

// PromptManager resolves the summary system instruction and the optional
// user message template.
type PromptManager struct {
	promptFile   string
	promptString string
	configDir    string
}

// NewPromptManager creates a new prompt manager. promptSetting is either a
// template string or a path to a template file; empty sends the
// transcript as the user message.
func NewPromptManager(configDir, promptSetting string) *PromptManager {
	pm := &PromptManager{
		configDir: configDir,
	}

	if promptSetting != "" {
		if IsLikelyFilePath(promptSetting) && FileExists(promptSetting) {
			pm.promptFile = promptSetting
		} else {
			pm.promptString = promptSetting
		}
	}

	return pm
}

// SystemPrompt returns prompt.txt from the config directory, falling back
// to the embedded default.
func (pm *PromptManager) SystemPrompt() string {
	if pm.configDir != "" {
		content, err := os.ReadFile(filepath.Join(pm.configDir, "prompt.txt"))
		if err == nil && strings.TrimSpace(string(content)) != "" {
			return strings.TrimSpace(string(content))
		}
	}
	return DefaultSystemPrompt()
}

// HasTemplate reports whether a custom user message template is set.
func (pm *PromptManager) HasTemplate() bool {
	return pm.promptFile != "" || pm.promptString != ""
}

// UserMessage renders the custom template for transcript. Without a
// template the transcript is returned unchanged.
func (pm *PromptManager) UserMessage(transcript string) (string, error) {
	var tmplContent string
	switch {
	case pm.promptString != "":
		tmplContent = pm.promptString
	case pm.promptFile != "":
		content, err := os.ReadFile(pm.promptFile)
		if err != nil {
			return "", fmt.Errorf("reading prompt template: %w", err)
		}
		tmplContent = string(content)
	default:
		return transcript, nil
	}

	return buildPromptFromTemplate(tmplContent, transcript)
}

// Generator builds the summary generator for completer using this
// manager's prompts.
func (pm *PromptManager) Generator(completer summary.Completer) *summary.LLMGenerator {
	gen := summary.NewLLMGenerator(completer, pm.SystemPrompt())
	if pm.HasTemplate() {
		gen.WithUserMessage(pm.UserMessage)
	}
	return gen
}

func buildPromptFromTemplate(templateContent, transcript string) (string, error) {
	tmpl, err := template.New("prompt").Parse(templateContent)
	if err != nil {
		return "", fmt.Errorf("parsing prompt template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, PromptData{Transcript: transcript}); err != nil {
		return "", fmt.Errorf("executing prompt template: %w", err)
	}

	return buf.String(), nil
}

// IsLikelyFilePath uses heuristics to determine if a string is likely a file path
func IsLikelyFilePath(s string) bool {
	if strings.Contains(s, "/") || strings.Contains(s, "\\") {
		return true
	}

	if strings.Contains(s, ".txt") || strings.Contains(s, ".md") ||
		strings.Contains(s, ".template") || strings.Contains(s, ".tmpl") {
		return true
	}

	// Long strings are prompts, not paths.
	if len(s) > 200 {
		return false
	}

	return !strings.Contains(s, " ") && !strings.Contains(s, "\n")
}
