package companion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/rtzll/transcriptgrab/internal/apperr"
	"github.com/rtzll/transcriptgrab/internal/httpkit"
	"github.com/rtzll/transcriptgrab/internal/metadata"
	"github.com/rtzll/transcriptgrab/internal/store"
	"github.com/rtzll/transcriptgrab/internal/summary"
	"github.com/rtzll/transcriptgrab/internal/transcript"
)

// APIClient calls the API server on behalf of the companion. The session
// token, when set, is sent as a bearer token.
type APIClient struct {
	base  string
	token string
	http  *http.Client
}

func NewAPIClient(baseURL, token string, hc *http.Client) *APIClient {
	if hc == nil {
		hc = httpkit.NewClient()
	}
	return &APIClient{base: strings.TrimRight(baseURL, "/"), token: token, http: hc}
}

// SignedIn reports whether a token is configured at all.
func (a *APIClient) SignedIn() bool {
	return a.token != ""
}

type envelope struct {
	Success   bool            `json:"success"`
	Data      json.RawMessage `json:"data"`
	Error     string          `json:"error"`
	ErrorType string          `json:"errorType"`
}

// FetchTranscript asks the server for the captions of videoID. Failures
// come back as *transcript.SourceError carrying the server's error type.
func (a *APIClient) FetchTranscript(ctx context.Context, videoID, language string) ([]transcript.Segment, error) {
	body := map[string]string{"url": transcript.WatchURL(videoID)}
	if language != "" {
		body["languageCode"] = language
	}

	var env envelope
	status, err := a.do(ctx, http.MethodPost, "/api/transcript", body, &env)
	if err != nil {
		return nil, &transcript.SourceError{Kind: transcript.FailureNetwork, Message: "Network error fetching transcript", Err: err}
	}
	if status != http.StatusOK || !env.Success {
		msg := env.Error
		if msg == "" {
			msg = "Failed to fetch transcript"
		}
		kind := transcript.FailureKind(env.ErrorType)
		if kind == "" {
			kind = transcript.ClassifyFailure(msg)
		}
		return nil, &transcript.SourceError{Kind: kind, Message: msg}
	}

	var data struct {
		Segments []transcript.Segment `json:"segments"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return nil, fmt.Errorf("decoding transcript: %w", err)
	}
	return data.Segments, nil
}

// Fetch looks up video metadata through the server.
func (a *APIClient) Fetch(ctx context.Context, videoURL string) (metadata.Video, error) {
	var env envelope
	status, err := a.do(ctx, http.MethodGet, "/api/metadata?url="+url.QueryEscape(videoURL), nil, &env)
	if err != nil {
		return metadata.Video{}, apperr.Wrap(apperr.KindUpstream, "METADATA_UNAVAILABLE", "Could not fetch video metadata", err)
	}
	if status != http.StatusOK || !env.Success {
		return metadata.Video{}, apperr.New(apperr.KindUpstream, "METADATA_UNAVAILABLE", "Could not fetch video metadata")
	}
	var v metadata.Video
	if err := json.Unmarshal(env.Data, &v); err != nil {
		return metadata.Video{}, fmt.Errorf("decoding metadata: %w", err)
	}
	return v, nil
}

// Session returns whether the configured token is accepted and the user
// id it carries.
func (a *APIClient) Session(ctx context.Context) (bool, string, error) {
	if a.token == "" {
		return false, "", nil
	}
	var out struct {
		SignedIn bool   `json:"signedIn"`
		UserID   string `json:"userId"`
	}
	status, err := a.do(ctx, http.MethodGet, "/api/auth/session", nil, &out)
	if err != nil {
		return false, "", err
	}
	if status != http.StatusOK {
		return false, "", fmt.Errorf("session check: status %d", status)
	}
	return out.SignedIn, out.UserID, nil
}

// ExistsFor implements savecoord.Gateway. The server identifies the user
// from the token, so userID is not sent.
func (a *APIClient) ExistsFor(ctx context.Context, _ string, videoID string) (bool, string, error) {
	var out struct {
		Exists       bool    `json:"exists"`
		TranscriptID *string `json:"transcriptId"`
	}
	status, err := a.do(ctx, http.MethodGet, "/api/transcript/check?videoId="+url.QueryEscape(videoID), nil, &out)
	if err != nil {
		return false, "", err
	}
	if status != http.StatusOK {
		return false, "", fmt.Errorf("transcript check: status %d", status)
	}
	id := ""
	if out.TranscriptID != nil {
		id = *out.TranscriptID
	}
	return out.Exists, id, nil
}

// Upsert implements savecoord.Gateway.
func (a *APIClient) Upsert(ctx context.Context, in store.TranscriptInput) (store.UpsertResult, error) {
	body := map[string]any{
		"videoId":    in.VideoID,
		"videoUrl":   in.VideoURL,
		"videoTitle": in.VideoTitle,
		"segments":   in.Segments,
	}
	if in.ThumbnailURL != "" {
		body["thumbnailUrl"] = in.ThumbnailURL
	}
	if in.VideoDuration != nil {
		body["videoDuration"] = *in.VideoDuration
	}

	var res store.UpsertResult
	status, err := a.do(ctx, http.MethodPost, "/api/transcript/save", body, &res)
	if err != nil {
		return store.UpsertResult{}, err
	}
	if status != http.StatusOK {
		return store.UpsertResult{}, fmt.Errorf("save transcript: status %d", status)
	}
	return res, nil
}

// Summarize asks the server, which consults its persisted tier first.
func (a *APIClient) Summarize(ctx context.Context, videoID, text string) (summary.Summary, error) {
	var env struct {
		Success bool            `json:"success"`
		Data    summary.Summary `json:"data"`
		Error   string          `json:"error"`
	}
	status, err := a.do(ctx, http.MethodPost, "/api/summarize",
		map[string]string{"videoId": videoID, "transcriptText": text}, &env)
	if err != nil {
		if ctx.Err() != nil {
			return summary.Summary{}, apperr.Wrap(apperr.KindTimeout, "SUMMARY_TIMEOUT", "Summary timed out — try again", err)
		}
		return summary.Summary{}, apperr.Wrap(apperr.KindUpstream, "SUMMARY_FAILED", "Failed to generate summary", err)
	}
	switch status {
	case http.StatusOK:
		return env.Data, nil
	case http.StatusTooManyRequests:
		return summary.Summary{}, apperr.New(apperr.KindRateLimit, "RATE_LIMITED", "Summary temporarily unavailable")
	case http.StatusGatewayTimeout:
		return summary.Summary{}, apperr.New(apperr.KindTimeout, "SUMMARY_TIMEOUT", "Summary timed out — try again")
	case http.StatusUnauthorized:
		return summary.Summary{}, apperr.New(apperr.KindAuth, "UNAUTHORIZED", "Sign in to summarize")
	default:
		return summary.Summary{}, apperr.New(apperr.KindInternal, "SUMMARY_FAILED", "Failed to generate summary")
	}
}

// do sends a JSON request and decodes any JSON body into out, whatever the
// status. Transport failures are returned as errors.
func (a *APIClient) do(ctx context.Context, method, path string, body, out any) (int, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return 0, fmt.Errorf("encoding request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, a.base+path, reader)
	if err != nil {
		return 0, fmt.Errorf("building request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if a.token != "" {
		req.Header.Set("Authorization", "Bearer "+a.token)
	}

	resp, err := a.http.Do(req)
	if err != nil {
		return 0, err
	}
	defer httpkit.DrainAndClose(resp.Body, 4096)

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil && err != io.EOF {
			return resp.StatusCode, fmt.Errorf("decoding response (status %d): %w", resp.StatusCode, err)
		}
	}
	return resp.StatusCode, nil
}
