package internal

import (
	"strings"
	"testing"

	"github.com/rtzll/transcriptgrab/internal/metadata"
	"github.com/rtzll/transcriptgrab/internal/transcript"
)

func TestSegmentCache(t *testing.T) {
	dir := t.TempDir()
	segments := []transcript.Segment{{Text: "a", Start: 0, Duration: 1}, {Text: "b", Start: 1, Duration: 2}}

	if _, err := LoadCachedSegments(dir, "dQw4w9WgXcQ", "en"); err == nil {
		t.Fatal("expected miss on empty cache")
	}
	if err := SaveSegments(dir, "dQw4w9WgXcQ", "en", segments); err != nil {
		t.Fatalf("SaveSegments: %v", err)
	}
	got, err := LoadCachedSegments(dir, "dQw4w9WgXcQ", "en")
	if err != nil {
		t.Fatalf("LoadCachedSegments: %v", err)
	}
	if len(got) != 2 || got[1].Text != "b" {
		t.Errorf("got %+v", got)
	}
	if _, err := LoadCachedSegments(dir, "dQw4w9WgXcQ", "de"); err == nil {
		t.Error("languages must be cached separately")
	}
}

func TestMetadataCache(t *testing.T) {
	dir := t.TempDir()
	video := metadata.Video{Title: "Talk", Author: "Someone", ThumbnailURL: "https://i.ytimg.com/x.jpg"}

	if err := SaveMetadata("dQw4w9WgXcQ", video, dir); err != nil {
		t.Fatalf("SaveMetadata: %v", err)
	}
	got, err := LoadCachedMetadata("dQw4w9WgXcQ", dir)
	if err != nil {
		t.Fatalf("LoadCachedMetadata: %v", err)
	}
	if got != video {
		t.Errorf("got %+v, want %+v", got, video)
	}
}

func TestIsLikelyCommand(t *testing.T) {
	for in, want := range map[string]bool{
		"history":               true,
		"setup-claude":          true,
		"dQw4w9WgXcQ":           false,
		"averyveryverylongword": false,
		"https://x":             false,
	} {
		if got := IsLikelyCommand(in); got != want {
			t.Errorf("IsLikelyCommand(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestFormatMatches(t *testing.T) {
	segments := []transcript.Segment{
		{Text: "Go is fun", Start: 5},
		{Text: "nothing here", Start: 65},
		{Text: "go go &amp; go", Start: 130},
	}
	out := FormatMatches(segments, transcript.BuildIndex(segments, "go"))

	lines := strings.Split(strings.TrimSpace(out), "\n")
	if lines[0] != `4 matches for "go"` {
		t.Errorf("header = %q", lines[0])
	}
	if len(lines) != 5 {
		t.Fatalf("got %d lines:\n%s", len(lines), out)
	}
	if !strings.HasPrefix(lines[1], "1. [0:05] ") || !strings.Contains(lines[4], "go go & go") {
		t.Errorf("unexpected lines:\n%s", out)
	}

	if got := FormatMatches(segments, transcript.BuildIndex(segments, "rust")); got != "No matches for \"rust\"\n" {
		t.Errorf("no-match output = %q", got)
	}
}
