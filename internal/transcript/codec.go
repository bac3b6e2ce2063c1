package transcript

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"unicode/utf8"
)

// entityRe matches every entity form DecodeEntities understands. Matching
// all of them in one expression keeps decoding to a single pass over the
// input, so "&amp;#39;" decodes to "&#39;" and not to "'".
var entityRe = regexp.MustCompile(`&(?:amp|lt|gt|quot|apos|#[0-9]+|#[xX][0-9a-fA-F]+);`)

var namedEntities = map[string]string{
	"&amp;":  "&",
	"&lt;":   "<",
	"&gt;":   ">",
	"&quot;": `"`,
	"&apos;": "'",
}

// DecodeEntities resolves the named entities amp, lt, gt, quot and apos plus
// decimal (&#NNN;) and hexadecimal (&#xHH;) references. Anything else,
// including numeric references outside the Unicode range, is left verbatim.
func DecodeEntities(text string) string {
	if len(text) == 0 {
		return text
	}
	return entityRe.ReplaceAllStringFunc(text, decodeEntity)
}

func decodeEntity(entity string) string {
	if named, ok := namedEntities[entity]; ok {
		return named
	}

	// "&#" + digits + ";" or "&#x" + hex + ";"
	body := entity[2 : len(entity)-1]
	base := 10
	if body[0] == 'x' || body[0] == 'X' {
		body = body[1:]
		base = 16
	}

	code, err := strconv.ParseUint(body, base, 32)
	if err != nil {
		return entity
	}
	r := rune(code)
	if code > utf8.MaxRune || !utf8.ValidRune(r) {
		return entity
	}
	return string(r)
}

// FormatClockTimestamp renders seconds as M:SS under an hour and H:MM:SS
// otherwise. Fractional seconds are floored.
func FormatClockTimestamp(seconds float64) string {
	total := wholeSeconds(seconds)
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60

	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

// FormatSubtitleTimestamp renders seconds as HH:MM:SS,mmm, rounded to the
// nearest millisecond. The comma separator and fixed field widths are
// required by SRT players.
func FormatSubtitleTimestamp(seconds float64) string {
	totalMs := int64(0)
	if !math.IsNaN(seconds) && !math.IsInf(seconds, 0) && seconds > 0 {
		totalMs = int64(math.Round(seconds * 1000))
	}
	h := totalMs / 3_600_000
	m := (totalMs % 3_600_000) / 60_000
	s := (totalMs % 60_000) / 1000
	ms := totalMs % 1000

	return fmt.Sprintf("%02d:%02d:%02d,%03d", h, m, s, ms)
}

// wholeSeconds floors seconds, treating negative and non-finite input as zero.
func wholeSeconds(seconds float64) int64 {
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) || seconds <= 0 {
		return 0
	}
	return int64(math.Floor(seconds))
}
