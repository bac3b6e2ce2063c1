// Package companion is the long-lived background process that sits next to
// a viewer (a browser extension bridge, an editor plugin, the CLI). Clients
// talk to it over a Unix socket using NDJSON: one request line, one
// response line. The companion owns the ephemeral summary cache, the
// sign-in check and the per-video session state.
package companion

import (
	"github.com/rtzll/transcriptgrab/internal/metadata"
	"github.com/rtzll/transcriptgrab/internal/summary"
	"github.com/rtzll/transcriptgrab/internal/transcript"
)

// Op names a request type.
type Op string

const (
	OpGetTranscript Op = "getTranscript"
	OpCheckAuth     Op = "checkAuth"
	OpSummarize     Op = "summarize"
	OpAutoSave      Op = "autoSave"
	OpSearch        Op = "search"
	OpClose         Op = "close"
)

// Search actions.
const (
	SearchSet   = "set"
	SearchNext  = "next"
	SearchPrev  = "prev"
	SearchClear = "clear"
)

// Request is sent from a client to the companion.
type Request struct {
	Op             Op                   `json:"op"`
	VideoID        string               `json:"videoId,omitempty"`
	LanguageCode   string               `json:"languageCode,omitempty"`
	TranscriptText string               `json:"transcriptText,omitempty"`
	Segments       []transcript.Segment `json:"segments,omitempty"`
	Title          string               `json:"title,omitempty"`
	Query          string               `json:"query,omitempty"`
	Action         string               `json:"action,omitempty"`
}

// Response is returned for every request. OK false always carries Error
// and ErrorKind; OK true carries the payload for the request's op.
type Response struct {
	OK        bool   `json:"ok"`
	Error     string `json:"error,omitempty"`
	ErrorKind string `json:"errorKind,omitempty"`

	Transcript *TranscriptPayload `json:"transcript,omitempty"`
	Metadata   *metadata.Video    `json:"metadata,omitempty"`
	SignedIn   *bool              `json:"signedIn,omitempty"`
	Summary    *summary.Summary   `json:"summary,omitempty"`
	Save       *SaveResult        `json:"save,omitempty"`
	Search     *SearchResult      `json:"search,omitempty"`
}

type TranscriptPayload struct {
	VideoID  string               `json:"videoId"`
	Segments []transcript.Segment `json:"segments"`
}

type SaveResult struct {
	Saved    bool   `json:"saved"`
	State    string `json:"state"`
	RecordID string `json:"recordId,omitempty"`
}

type SearchResult struct {
	Query string `json:"query"`
	Count int    `json:"count"`
	// Current is the ordinal of the current match, or -1.
	Current int               `json:"current"`
	Match   *transcript.Match `json:"match,omitempty"`
}

func boolPtr(b bool) *bool { return &b }
