// Package summary produces video summaries through a two-tier cache: a
// bounded in-process tier in front of a persisted tier shared by all users,
// both in front of a rate-limited, timeout-bounded LLM call.
package summary

import (
	"context"
	"strings"
)

// Summary is the parsed result of one generation. Bullets holds one
// "- " prefixed line per takeaway.
type Summary struct {
	Bullets   string `json:"bullets"`
	Paragraph string `json:"paragraph"`
}

// Empty reports whether neither section has content.
func (s Summary) Empty() bool {
	return strings.TrimSpace(s.Bullets) == "" && strings.TrimSpace(s.Paragraph) == ""
}

// BulletItems returns the bullet lines with their markers removed.
func (s Summary) BulletItems() []string {
	var items []string
	for line := range strings.SplitSeq(s.Bullets, "\n") {
		line = strings.TrimSpace(line)
		if marker, ok := bulletMarker(line); ok {
			line = strings.TrimSpace(strings.TrimPrefix(line, marker))
		}
		if line != "" {
			items = append(items, line)
		}
	}
	return items
}

// Markdown renders the summary for terminal display.
func (s Summary) Markdown() string {
	var sb strings.Builder
	if items := s.BulletItems(); len(items) > 0 {
		sb.WriteString("## Key points\n\n")
		for _, item := range items {
			sb.WriteString("- ")
			sb.WriteString(item)
			sb.WriteByte('\n')
		}
		sb.WriteByte('\n')
	}
	if p := strings.TrimSpace(s.Paragraph); p != "" {
		sb.WriteString("## Summary\n\n")
		sb.WriteString(p)
		sb.WriteByte('\n')
	}
	return sb.String()
}

// Store is the persisted, cross-user tier keyed by video id. InsertSummary
// must tolerate an existing row for the same video and report it as not
// inserted rather than failing.
type Store interface {
	LookupSummary(ctx context.Context, videoID string) (Summary, bool, error)
	InsertSummary(ctx context.Context, videoID string, s Summary) (bool, error)
}

// Generator turns full transcript text into a summary.
type Generator interface {
	Summarize(ctx context.Context, text string) (Summary, error)
}

// Truncate cuts text to at most maxChars characters. A non-positive
// maxChars disables truncation.
func Truncate(text string, maxChars int) string {
	if maxChars <= 0 || len(text) <= maxChars {
		return text
	}
	n := 0
	for i := range text {
		if n == maxChars {
			return text[:i]
		}
		n++
	}
	return text
}
