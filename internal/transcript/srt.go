package transcript

import (
	"regexp"
	"strconv"
	"strings"
)

// srtTimingRe matches an SRT timing line such as
// "00:00:01,234 --> 00:00:03,456". A period is accepted in place of the
// comma since some converters emit VTT-style separators.
var srtTimingRe = regexp.MustCompile(`^(\d{1,2}):(\d{2}):(\d{2})[,.](\d{3})\s*-->\s*(\d{1,2}):(\d{2}):(\d{2})[,.](\d{3})`)

var srtTagRe = regexp.MustCompile(`<[^>]+>`)

// ParseSRT converts SRT subtitle content into segments. Cue text lines are
// joined with spaces and stripped of inline markup. Cues without text are
// dropped, as are cues that merely repeat the previous cue's text, which
// auto-generated captions do when converted from rolling lines.
func ParseSRT(content string) []Segment {
	content = strings.ReplaceAll(content, "\r\n", "\n")

	var segments []Segment
	prevText := ""
	for block := range strings.SplitSeq(content, "\n\n") {
		lines := strings.Split(strings.TrimSpace(block), "\n")

		timingIdx := -1
		for i, line := range lines {
			if srtTimingRe.MatchString(strings.TrimSpace(line)) {
				timingIdx = i
				break
			}
		}
		if timingIdx < 0 {
			continue
		}

		start, end := parseSRTTiming(strings.TrimSpace(lines[timingIdx]))

		var textParts []string
		for _, line := range lines[timingIdx+1:] {
			line = strings.TrimSpace(srtTagRe.ReplaceAllString(line, ""))
			if line != "" {
				textParts = append(textParts, line)
			}
		}
		text := strings.Join(textParts, " ")
		if text == "" || text == prevText {
			continue
		}
		prevText = text

		duration := end - start
		if duration < 0 {
			duration = 0
		}
		segments = append(segments, Segment{Text: text, Start: start, Duration: duration})
	}

	return segments
}

func parseSRTTiming(line string) (start, end float64) {
	m := srtTimingRe.FindStringSubmatch(line)
	if m == nil {
		return 0, 0
	}
	return clockToSeconds(m[1], m[2], m[3], m[4]), clockToSeconds(m[5], m[6], m[7], m[8])
}

func clockToSeconds(h, m, s, ms string) float64 {
	hours, _ := strconv.Atoi(h)
	minutes, _ := strconv.Atoi(m)
	secs, _ := strconv.Atoi(s)
	millis, _ := strconv.Atoi(ms)
	totalMs := ((hours*60+minutes)*60+secs)*1000 + millis
	return float64(totalMs) / 1000
}
