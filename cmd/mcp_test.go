package cmd

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestUpsertMCPServer(t *testing.T) {
	path := filepath.Join(t.TempDir(), "claude_desktop_config.json")
	existing := `{"theme":"dark","mcpServers":{"other":{"command":"/bin/other","args":[]}}}`
	if err := os.WriteFile(path, []byte(existing), 0644); err != nil {
		t.Fatal(err)
	}

	entry := MCPServerConfig{Command: "/usr/local/bin/transcriptgrab", Args: []string{"mcp"}}
	if err := upsertMCPServer(path, "transcriptgrab", entry); err != nil {
		t.Fatalf("upsertMCPServer: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var got struct {
		Theme      string                     `json:"theme"`
		MCPServers map[string]MCPServerConfig `json:"mcpServers"`
	}
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("written config is not JSON: %v", err)
	}
	if got.Theme != "dark" {
		t.Errorf("unrelated keys dropped: %s", data)
	}
	if _, ok := got.MCPServers["other"]; !ok {
		t.Errorf("existing server dropped: %s", data)
	}
	if got.MCPServers["transcriptgrab"].Command != entry.Command {
		t.Errorf("entry not written: %s", data)
	}
}

func TestUpsertMCPServerMissingConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent.json")
	if err := upsertMCPServer(path, "transcriptgrab", MCPServerConfig{}); err == nil {
		t.Fatal("expected error for missing config")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("missing config must not be created")
	}
}

func TestCommandNames(t *testing.T) {
	names := map[string]bool{}
	for _, n := range commandNames() {
		names[n] = true
	}
	for _, want := range []string{"summarize", "transcribe", "search", "history", "serve", "companion", "mcp"} {
		if !names[want] {
			t.Errorf("command %q not registered", want)
		}
	}
}
