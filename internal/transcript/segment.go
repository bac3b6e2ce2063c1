// Package transcript holds the timed-text model shared by every other
// package, along with the text codec, export formats, SRT parsing and the
// search indexer that operate on it.
package transcript

import "strings"

// Segment is one timed unit of transcript text. Start and Duration are in
// seconds. Segments are immutable once produced by a source and arrive
// ordered by Start; consumers never re-sort them.
type Segment struct {
	Text     string  `json:"text"`
	Start    float64 `json:"start"`
	Duration float64 `json:"duration"`
}

// End returns Start+Duration.
func (s Segment) End() float64 {
	return s.Start + s.Duration
}

// TotalDuration returns the end of the last segment, or zero for an empty
// transcript.
func TotalDuration(segments []Segment) float64 {
	if len(segments) == 0 {
		return 0
	}
	return segments[len(segments)-1].End()
}

// JoinText concatenates the decoded text of every segment, separated by
// single spaces. This is the form handed to the summary generator.
func JoinText(segments []Segment) string {
	parts := make([]string, 0, len(segments))
	for _, seg := range segments {
		parts = append(parts, DecodeEntities(seg.Text))
	}
	return joinNonEmpty(parts, " ")
}

func joinNonEmpty(parts []string, sep string) string {
	var sb strings.Builder
	for _, p := range parts {
		if p == "" {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteString(sep)
		}
		sb.WriteString(p)
	}
	return sb.String()
}
