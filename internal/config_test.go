package internal

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func clearKeyEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"TRANSCRIPTGRAB_LLM_API_KEY", "GROQ_API_KEY", "OPENAI_API_KEY"} {
		t.Setenv(key, "")
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	clearKeyEnv(t)
	cfg, err := LoadConfig(writeConfig(t, ""))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if cfg.LLMModel != "llama-3.3-70b-versatile" {
		t.Errorf("LLMModel = %q", cfg.LLMModel)
	}
	if cfg.SaveDelay != 2500*time.Millisecond {
		t.Errorf("SaveDelay = %v", cfg.SaveDelay)
	}
	if cfg.CompanionSummaryTimeout != 15*time.Second {
		t.Errorf("CompanionSummaryTimeout = %v", cfg.CompanionSummaryTimeout)
	}
	if cfg.DatabaseDriver != "sqlite" || !strings.HasSuffix(cfg.DatabaseDSN, AppName+".db") {
		t.Errorf("database = %s %s", cfg.DatabaseDriver, cfg.DatabaseDSN)
	}
	if cfg.TempDir != filepath.Join(cfg.CacheDir, "tmp") {
		t.Errorf("TempDir = %q", cfg.TempDir)
	}
}

func TestLoadConfigFileAndEnv(t *testing.T) {
	clearKeyEnv(t)
	t.Setenv("GROQ_API_KEY", "gsk-test")
	t.Setenv("TRANSCRIPTGRAB_LANGUAGE", "de")

	cfg, err := LoadConfig(writeConfig(t, `
llm_model = "llama-3.1-8b-instant"
language = "fr"
summary_timeout = "45s"
cors_origins = ["https://a.example", "https://b.example"]
`))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if cfg.LLMModel != "llama-3.1-8b-instant" {
		t.Errorf("file value ignored: %q", cfg.LLMModel)
	}
	if cfg.Language != "de" {
		t.Errorf("env should override file: Language = %q", cfg.Language)
	}
	if cfg.SummaryTimeout != 45*time.Second {
		t.Errorf("SummaryTimeout = %v", cfg.SummaryTimeout)
	}
	if cfg.LLMAPIKey != "gsk-test" {
		t.Errorf("LLMAPIKey = %q, want provider env fallback", cfg.LLMAPIKey)
	}
	if len(cfg.CORSOrigins) != 2 {
		t.Errorf("CORSOrigins = %v", cfg.CORSOrigins)
	}
}

func TestLoadConfigRejectsInvalid(t *testing.T) {
	clearKeyEnv(t)
	_, err := LoadConfig(writeConfig(t, `
summary_max_chars = 0
database_driver = "mysql"
`))
	if err == nil {
		t.Fatal("expected validation error")
	}
	for _, want := range []string{"summary_max_chars", "database_driver"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not mention %s", err, want)
		}
	}
}

func TestLoadConfigBadFile(t *testing.T) {
	if _, err := LoadConfig(writeConfig(t, "llm_model = ")); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestEnsureDefaultFiles(t *testing.T) {
	dir := t.TempDir()
	if err := EnsureDefaultConfig(dir); err != nil {
		t.Fatalf("EnsureDefaultConfig: %v", err)
	}
	if err := EnsureDefaultPrompt(dir); err != nil {
		t.Fatalf("EnsureDefaultPrompt: %v", err)
	}

	prompt, err := os.ReadFile(filepath.Join(dir, "prompt.txt"))
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(string(prompt)) != DefaultSystemPrompt() {
		t.Error("prompt.txt differs from the embedded default")
	}

	// existing files are left alone
	custom := []byte("my prompt")
	if err := os.WriteFile(filepath.Join(dir, "prompt.txt"), custom, 0644); err != nil {
		t.Fatal(err)
	}
	if err := EnsureDefaultPrompt(dir); err != nil {
		t.Fatal(err)
	}
	got, _ := os.ReadFile(filepath.Join(dir, "prompt.txt"))
	if string(got) != string(custom) {
		t.Errorf("prompt.txt overwritten: %q", got)
	}
}
