// Package metadata looks up a video's title, author and thumbnail through
// oEmbed. noembed.com is tried first, then YouTube's own endpoint.
package metadata

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/rtzll/transcriptgrab/internal/apperr"
	"github.com/rtzll/transcriptgrab/internal/httpkit"
	"github.com/rtzll/transcriptgrab/internal/logger"
)

const (
	NoembedEndpoint = "https://noembed.com/embed"
	YouTubeEndpoint = "https://www.youtube.com/oembed"
)

// Video is the metadata shown alongside a transcript.
type Video struct {
	Title        string `json:"title"`
	Author       string `json:"author"`
	AuthorURL    string `json:"authorUrl"`
	ThumbnailURL string `json:"thumbnailUrl"`
}

type oembedResponse struct {
	Title        string `json:"title"`
	AuthorName   string `json:"author_name"`
	AuthorURL    string `json:"author_url"`
	ThumbnailURL string `json:"thumbnail_url"`
}

// Endpoint is one oEmbed provider. Build returns the request URL for a
// video URL.
type Endpoint struct {
	Name  string
	Build func(videoURL string) string
}

// DefaultEndpoints returns noembed followed by YouTube oEmbed.
func DefaultEndpoints() []Endpoint {
	return []Endpoint{
		{Name: "noembed", Build: func(v string) string {
			return NoembedEndpoint + "?url=" + url.QueryEscape(v)
		}},
		{Name: "youtube", Build: func(v string) string {
			return YouTubeEndpoint + "?url=" + url.QueryEscape(v) + "&format=json"
		}},
	}
}

type Client struct {
	http      *http.Client
	endpoints []Endpoint
	log       *logger.Logger
}

type Option func(*Client)

func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) { cl.http = c }
}

func WithEndpoints(e ...Endpoint) Option {
	return func(cl *Client) { cl.endpoints = e }
}

func WithLogger(l *logger.Logger) Option {
	return func(cl *Client) { cl.log = l }
}

func New(opts ...Option) *Client {
	c := &Client{
		http:      httpkit.NewClient(),
		endpoints: DefaultEndpoints(),
		log:       logger.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ValidateURL rejects anything that is not a YouTube URL.
func ValidateURL(videoURL string) error {
	if strings.TrimSpace(videoURL) == "" {
		return apperr.New(apperr.KindValidation, "MISSING_URL", "Missing url query parameter")
	}
	if !strings.Contains(videoURL, "youtube.com") && !strings.Contains(videoURL, "youtu.be") {
		return apperr.New(apperr.KindValidation, "UNSUPPORTED_URL", "Only YouTube URLs are supported")
	}
	return nil
}

// Fetch returns metadata from the first endpoint answering with a title.
// When none does, the error is KindUpstream.
func (c *Client) Fetch(ctx context.Context, videoURL string) (Video, error) {
	if err := ValidateURL(videoURL); err != nil {
		return Video{}, err
	}

	for _, ep := range c.endpoints {
		v, err := c.fetchOne(ctx, ep.Build(videoURL))
		if err == nil {
			return v, nil
		}
		if ctx.Err() != nil {
			return Video{}, ctx.Err()
		}
		c.log.Debug("metadata endpoint failed", "endpoint", ep.Name, "error", err)
	}
	return Video{}, apperr.New(apperr.KindUpstream, "METADATA_UNAVAILABLE", "Could not fetch video metadata")
}

func (c *Client) fetchOne(ctx context.Context, endpoint string) (Video, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Video{}, fmt.Errorf("building request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return Video{}, err
	}
	defer httpkit.DrainAndClose(resp.Body, 4096)

	if resp.StatusCode != http.StatusOK {
		return Video{}, fmt.Errorf("status %d: %s", resp.StatusCode, httpkit.ReadErrorBody(resp.Body, 256))
	}

	var data oembedResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return Video{}, fmt.Errorf("decoding response: %w", err)
	}
	if strings.TrimSpace(data.Title) == "" {
		return Video{}, fmt.Errorf("response has no title")
	}
	return Video{
		Title:        data.Title,
		Author:       data.AuthorName,
		AuthorURL:    data.AuthorURL,
		ThumbnailURL: data.ThumbnailURL,
	}, nil
}
