package summary

import (
	"regexp"
	"strings"
)

// Headers count only at the start of a line so prose like "three bullets:"
// stays in the body.
var sectionRe = regexp.MustCompile(`(?im)^[ \t]*(BULLETS|PARAGRAPH):`)

var bulletMarkers = []string{"- ", "* ", "• "}

// Parse decodes a generator response. The expected shape is a BULLETS:
// section and a PARAGRAPH: section, each running to the next header or the
// end of input. When neither header is present, lines starting with a
// bullet marker become bullets and every other non-blank line the
// paragraph. When that finds nothing either, the whole response is the
// paragraph.
func Parse(raw string) Summary {
	raw = strings.ReplaceAll(raw, "\r\n", "\n")

	if s, ok := parseSections(raw); ok {
		return s
	}
	if s := parseLines(raw); !s.Empty() {
		return s
	}
	return Summary{Paragraph: strings.TrimSpace(raw)}
}

func parseSections(raw string) (Summary, bool) {
	locs := sectionRe.FindAllStringSubmatchIndex(raw, -1)
	if len(locs) == 0 {
		return Summary{}, false
	}

	var (
		s                    Summary
		seenBullets, seenPar bool
	)
	for i, loc := range locs {
		end := len(raw)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		body := strings.TrimSpace(raw[loc[1]:end])
		switch strings.ToUpper(raw[loc[2]:loc[3]]) {
		case "BULLETS":
			if !seenBullets {
				s.Bullets, seenBullets = body, true
			}
		case "PARAGRAPH":
			if !seenPar {
				s.Paragraph, seenPar = body, true
			}
		}
	}
	return s, !s.Empty()
}

func parseLines(raw string) Summary {
	var bullets, other []string
	for line := range strings.SplitSeq(raw, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if _, ok := bulletMarker(trimmed); ok {
			bullets = append(bullets, trimmed)
			continue
		}
		other = append(other, trimmed)
	}
	return Summary{
		Bullets:   strings.Join(bullets, "\n"),
		Paragraph: strings.Join(other, "\n"),
	}
}

func bulletMarker(line string) (string, bool) {
	for _, m := range bulletMarkers {
		if strings.HasPrefix(line, m) {
			return m, true
		}
	}
	return "", false
}
