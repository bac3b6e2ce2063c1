package internal

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestPromptManagerUserMessage(t *testing.T) {
	tests := []struct {
		name    string
		setting string
		want    string
	}{
		{"no template", "", "the transcript"},
		{"inline template", "tldr: {{.Transcript}}", "tldr: the transcript"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pm := NewPromptManager("", tt.setting)
			got, err := pm.UserMessage("the transcript")
			if err != nil {
				t.Fatalf("UserMessage: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPromptManagerTemplateFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.tmpl")
	if err := os.WriteFile(path, []byte("Summarize:\n{{.Transcript}}"), 0644); err != nil {
		t.Fatal(err)
	}

	pm := NewPromptManager("", path)
	if !pm.HasTemplate() {
		t.Fatal("expected template")
	}
	got, err := pm.UserMessage("text")
	if err != nil {
		t.Fatalf("UserMessage: %v", err)
	}
	if got != "Summarize:\ntext" {
		t.Errorf("got %q", got)
	}
}

func TestPromptManagerBadTemplate(t *testing.T) {
	pm := NewPromptManager("", "{{.Transcript")
	if _, err := pm.UserMessage("x"); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestPromptManagerSystemPrompt(t *testing.T) {
	if got := NewPromptManager(t.TempDir(), "").SystemPrompt(); got != DefaultSystemPrompt() {
		t.Errorf("missing prompt.txt should fall back to the default")
	}

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "prompt.txt"), []byte("  be brief \n"), 0644); err != nil {
		t.Fatal(err)
	}
	if got := NewPromptManager(dir, "").SystemPrompt(); got != "be brief" {
		t.Errorf("SystemPrompt = %q", got)
	}
}

func TestPromptManagerGenerator(t *testing.T) {
	chat := &fakeChat{reply: "BULLETS:\n- point\nPARAGRAPH:\nDone."}
	pm := NewPromptManager("", "tldr: {{.Transcript}}")
	gen := pm.Generator(NewAI("", "", "m", 0, WithChatClient(chat)))

	s, err := gen.Summarize(context.Background(), "words")
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if chat.user != "tldr: words" {
		t.Errorf("user message = %q", chat.user)
	}
	if s.Paragraph != "Done." || !strings.Contains(s.Bullets, "point") {
		t.Errorf("summary = %+v", s)
	}
}

func TestIsLikelyFilePath(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"~/prompts/short.txt", true},
		{"prompt.tmpl", true},
		{"tldr: {{.Transcript}}", false},
		{"summarize this in one line", false},
		{"singleword", true},
	}
	for _, tt := range tests {
		if got := IsLikelyFilePath(tt.in); got != tt.want {
			t.Errorf("IsLikelyFilePath(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
