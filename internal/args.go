package internal

import (
	"fmt"
	"slices"
	"strings"

	"github.com/rtzll/transcriptgrab/internal/transcript"
)

// ArgKind is what a positional argument turned out to be.
type ArgKind int

const (
	ArgUnknown ArgKind = iota
	ArgVideo
	ArgCommand // looks like a mistyped subcommand
)

func (k ArgKind) String() string {
	switch k {
	case ArgVideo:
		return "video"
	case ArgCommand:
		return "command"
	default:
		return "unknown"
	}
}

// Arg is a classified command line argument.
type Arg struct {
	Kind     ArgKind
	Input    string
	VideoID  string
	WatchURL string
	Err      error
}

// ParseArg classifies arg as a video reference or a likely mistyped
// command. Anything else carries the extraction error.
func ParseArg(arg string) Arg {
	parsed := Arg{Input: arg}
	arg = strings.TrimSpace(arg)

	id, err := transcript.ExtractVideoID(arg)
	if err == nil {
		parsed.Kind = ArgVideo
		parsed.VideoID = id
		parsed.WatchURL = transcript.WatchURL(id)
		return parsed
	}

	if IsLikelyCommand(arg) {
		parsed.Kind = ArgCommand
	}
	parsed.Err = err
	return parsed
}

// IsVideo reports whether the argument names a video.
func (a Arg) IsVideo() bool {
	return a.Err == nil && a.Kind == ArgVideo
}

func (a Arg) String() string {
	if a.Err != nil {
		return fmt.Sprintf("Arg{kind=%s, input=%q, err=%v}", a.Kind, a.Input, a.Err)
	}
	return fmt.Sprintf("Arg{kind=%s, id=%s}", a.Kind, a.VideoID)
}

// SuggestCorrection names the commands closest to a mistyped one: those
// sharing a substring with it or within two edits of it.
func (a Arg) SuggestCorrection(commands []string) string {
	if a.Kind != ArgCommand {
		return ""
	}

	input := strings.ToLower(strings.TrimSpace(a.Input))
	var suggestions []string
	for _, cmd := range commands {
		if strings.Contains(cmd, input) || strings.Contains(input, cmd) || editDistance(input, cmd) <= 2 {
			suggestions = append(suggestions, cmd)
		}
	}
	slices.Sort(suggestions)

	if len(suggestions) > 0 {
		return fmt.Sprintf("did you mean: %s", strings.Join(suggestions, ", "))
	}
	return "use --help to see available commands"
}

// editDistance is the Levenshtein distance between a and b, counting
// an adjacent swap as one edit.
func editDistance(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	prev2 := make([]int, len(rb)+1)
	prev := make([]int, len(rb)+1)
	cur := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		cur[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			cur[j] = min(prev[j]+1, cur[j-1]+1, prev[j-1]+cost)
			if i > 1 && j > 1 && ra[i-1] == rb[j-2] && ra[i-2] == rb[j-1] {
				cur[j] = min(cur[j], prev2[j-2]+1)
			}
		}
		prev2, prev, cur = prev, cur, prev2
	}
	return prev[len(rb)]
}
