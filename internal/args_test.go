package internal

import (
	"strings"
	"testing"

	"github.com/rtzll/transcriptgrab/internal/transcript"
)

func TestParseArg(t *testing.T) {
	tests := []struct {
		in     string
		want   ArgKind
		wantID string
	}{
		{"https://www.youtube.com/watch?v=dQw4w9WgXcQ", ArgVideo, "dQw4w9WgXcQ"},
		{"https://youtu.be/dQw4w9WgXcQ?t=42", ArgVideo, "dQw4w9WgXcQ"},
		{"  dQw4w9WgXcQ ", ArgVideo, "dQw4w9WgXcQ"},
		{"serach", ArgCommand, ""},
		{"https://example.com/nope", ArgUnknown, ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := ParseArg(tt.in)
			if got.Kind != tt.want || got.VideoID != tt.wantID {
				t.Errorf("ParseArg(%q) = %s", tt.in, got)
			}
			if got.IsVideo() != (tt.want == ArgVideo) {
				t.Errorf("IsVideo() = %v", got.IsVideo())
			}
			if tt.want == ArgVideo && got.WatchURL != transcript.WatchURL(tt.wantID) {
				t.Errorf("WatchURL = %q", got.WatchURL)
			}
			if tt.want != ArgVideo && got.Err == nil {
				t.Error("expected extraction error")
			}
		})
	}
}

func TestSuggestCorrection(t *testing.T) {
	commands := []string{"summarize", "search", "history", "serve"}
	tests := []struct {
		in   string
		want string
	}{
		{"summ", "did you mean: summarize"},
		{"serach", "did you mean: search"},
		{"histroy", "did you mean: history"},
		{"serv", "did you mean: serve"},
	}
	for _, tt := range tests {
		if got := ParseArg(tt.in).SuggestCorrection(commands); got != tt.want {
			t.Errorf("SuggestCorrection(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}

	if got := ParseArg("zzzzzz").SuggestCorrection(commands); !strings.Contains(got, "--help") {
		t.Errorf("got %q", got)
	}
	if got := ParseArg("dQw4w9WgXcQ").SuggestCorrection(commands); got != "" {
		t.Errorf("videos get no suggestion, got %q", got)
	}
}

func TestEditDistance(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"abc", "", 3},
		{"search", "search", 0},
		{"serach", "search", 1},
		{"kitten", "sitting", 3},
	}
	for _, tt := range tests {
		if got := editDistance(tt.a, tt.b); got != tt.want {
			t.Errorf("editDistance(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}
