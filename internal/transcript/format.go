package transcript

import (
	"fmt"
	"regexp"
	"strings"
)

// Format selects one of the textual export forms of a transcript.
type Format string

const (
	FormatPlain      Format = "plain"
	FormatTimestamps Format = "timestamps"
	FormatSRT        Format = "srt"
)

// ParseFormat converts user input into a Format. The empty string means plain.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatPlain:
		return FormatPlain, nil
	case FormatTimestamps:
		return FormatTimestamps, nil
	case FormatSRT:
		return FormatSRT, nil
	default:
		return "", fmt.Errorf("unsupported format %q (supported: plain, timestamps, srt)", s)
	}
}

// Extension returns the file extension used when exporting in this format.
func (f Format) Extension() string {
	if f == FormatSRT {
		return ".srt"
	}
	return ".txt"
}

// MIMEType returns the content type used when serving an export.
func (f Format) MIMEType() string {
	if f == FormatSRT {
		return "text/srt; charset=utf-8"
	}
	return "text/plain; charset=utf-8"
}

// Render produces the export of segments in the given format.
func Render(segments []Segment, format Format) string {
	switch format {
	case FormatSRT:
		return ToSubtitleFormat(segments)
	case FormatTimestamps:
		return ToPlainText(segments, true)
	default:
		return ToPlainText(segments, false)
	}
}

// ToPlainText joins the decoded text of each segment with newlines. With
// includeTimestamps every line is prefixed by "[M:SS] ". The last line has
// no trailing newline, and an empty transcript yields "".
func ToPlainText(segments []Segment, includeTimestamps bool) string {
	var sb strings.Builder
	for i, seg := range segments {
		if i > 0 {
			sb.WriteByte('\n')
		}
		if includeTimestamps {
			sb.WriteByte('[')
			sb.WriteString(FormatClockTimestamp(seg.Start))
			sb.WriteString("] ")
		}
		sb.WriteString(lineText(seg.Text))
	}
	return sb.String()
}

// ToSubtitleFormat renders segments as SRT blocks. Each block's end time is
// the segment's own start plus duration; the next segment's start is never
// consulted, so gaps and overlaps in the source are preserved.
func ToSubtitleFormat(segments []Segment) string {
	var sb strings.Builder
	for i, seg := range segments {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		fmt.Fprintf(&sb, "%d\n%s --> %s\n%s",
			i+1,
			FormatSubtitleTimestamp(seg.Start),
			FormatSubtitleTimestamp(seg.Start+seg.Duration),
			lineText(seg.Text),
		)
	}
	return sb.String()
}

var (
	unsafeFilenameRe = regexp.MustCompile(`[<>:"/\\|?*]+`)
	whitespaceRe     = regexp.MustCompile(`\s+`)
	lineBreakRe      = regexp.MustCompile(`[ \t]*[\r\n]+[ \t]*`)
)

// lineText decodes entities and folds embedded line breaks into single
// spaces so a segment always renders as one line.
func lineText(text string) string {
	return strings.TrimSpace(lineBreakRe.ReplaceAllString(DecodeEntities(text), " "))
}

// SanitizeFilename strips characters that are unsafe in file names and
// collapses whitespace. An empty result falls back to "transcript".
func SanitizeFilename(name string) string {
	name = unsafeFilenameRe.ReplaceAllString(name, "")
	name = strings.TrimSpace(whitespaceRe.ReplaceAllString(name, " "))
	if name == "" {
		return "transcript"
	}
	return name
}
