package summary

import (
	"context"
	"errors"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/rtzll/transcriptgrab/internal/apperr"
	"github.com/rtzll/transcriptgrab/internal/logger"
)

const (
	DefaultMaxChars = 120_000
	DefaultTimeout  = 30 * time.Second
)

// Source says which tier answered a request.
type Source string

const (
	SourceMemory    Source = "memory"
	SourceStore     Source = "store"
	SourceGenerated Source = "generated"
)

// Result is a summary together with where it came from.
type Result struct {
	Summary
	Source Source `json:"source"`
}

// Cache fronts a Generator with the ephemeral and persisted tiers. Either
// tier may be absent. Concurrent misses for the same video share one
// generation.
type Cache struct {
	gen       Generator
	store     Store
	ephemeral *Ephemeral
	maxChars  int
	timeout   time.Duration
	log       *logger.Logger
	group     singleflight.Group
}

type Option func(*Cache)

func WithStore(s Store) Option {
	return func(c *Cache) { c.store = s }
}

func WithEphemeral(e *Ephemeral) Option {
	return func(c *Cache) { c.ephemeral = e }
}

func WithMaxChars(n int) Option {
	return func(c *Cache) { c.maxChars = n }
}

func WithTimeout(d time.Duration) Option {
	return func(c *Cache) {
		if d > 0 {
			c.timeout = d
		}
	}
}

func WithLogger(l *logger.Logger) Option {
	return func(c *Cache) { c.log = l }
}

func NewCache(gen Generator, opts ...Option) *Cache {
	c := &Cache{
		gen:      gen,
		maxChars: DefaultMaxChars,
		timeout:  DefaultTimeout,
		log:      logger.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetOrCreate returns the summary for videoID, generating it from text
// only when neither tier has one. The generation is bounded by the cache
// timeout; exceeding it yields a KindTimeout error. Rate-limit failures
// from the generator are returned as-is and never retried here.
func (c *Cache) GetOrCreate(ctx context.Context, videoID, text string) (Result, error) {
	videoID = strings.TrimSpace(videoID)
	if videoID == "" {
		return Result{}, apperr.New(apperr.KindValidation, "MISSING_VIDEO_ID", "videoId is required")
	}

	if c.ephemeral != nil {
		if s, ok := c.ephemeral.Get(videoID); ok {
			return Result{Summary: s, Source: SourceMemory}, nil
		}
	}

	if c.store != nil {
		s, ok, err := c.store.LookupSummary(ctx, videoID)
		switch {
		case err != nil:
			c.log.Warn("summary lookup failed, generating", "video_id", videoID, "error", err)
		case ok:
			c.remember(videoID, s)
			return Result{Summary: s, Source: SourceStore}, nil
		}
	}

	if strings.TrimSpace(text) == "" {
		return Result{}, apperr.New(apperr.KindValidation, "MISSING_TRANSCRIPT", "Transcript text is required")
	}

	ch := c.group.DoChan(videoID, func() (any, error) {
		return c.fill(ctx, videoID, text)
	})
	select {
	case <-ctx.Done():
		return Result{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return Result{}, res.Err
		}
		return res.Val.(Result), nil
	}
}

// fill runs inside the singleflight group. A flight that finished between
// our lookup and joining the group has already stored its result, so the
// store is consulted once more before paying for a generation.
func (c *Cache) fill(ctx context.Context, videoID, text string) (Result, error) {
	if c.store != nil {
		if s, ok, err := c.store.LookupSummary(ctx, videoID); err == nil && ok {
			c.remember(videoID, s)
			return Result{Summary: s, Source: SourceStore}, nil
		}
	}
	s, err := c.generate(ctx, videoID, text)
	if err != nil {
		return Result{}, err
	}
	return Result{Summary: s, Source: SourceGenerated}, nil
}

// generate runs one bounded generation, detached from the first caller's
// cancellation. Only the timeout ends it early.
func (c *Cache) generate(ctx context.Context, videoID, text string) (Summary, error) {
	genCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.timeout)
	defer cancel()

	input := Truncate(text, c.maxChars)
	if len(input) < len(text) {
		c.log.Debug("truncated transcript for summary", "video_id", videoID, "max_chars", c.maxChars)
	}

	start := time.Now()
	s, err := c.gen.Summarize(genCtx, input)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(genCtx.Err(), context.DeadlineExceeded) {
			return Summary{}, apperr.Wrap(apperr.KindTimeout, "SUMMARY_TIMEOUT", "Summary timed out — try again", err)
		}
		if _, ok := apperr.As(err); ok {
			return Summary{}, err
		}
		return Summary{}, apperr.Wrap(apperr.KindInternal, "SUMMARY_FAILED", "Failed to generate summary", err)
	}
	if s.Empty() {
		return Summary{}, apperr.New(apperr.KindUpstream, "EMPTY_SUMMARY", "Failed to generate summary")
	}
	c.log.Info("generated summary", "video_id", videoID, "elapsed", time.Since(start).Round(time.Millisecond))

	if c.store != nil {
		inserted, err := c.store.InsertSummary(genCtx, videoID, s)
		switch {
		case err != nil:
			c.log.Error("persisting summary failed", "video_id", videoID, "error", err)
		case !inserted:
			c.log.Debug("summary already stored by another writer", "video_id", videoID)
		}
	}
	c.remember(videoID, s)
	return s, nil
}

func (c *Cache) remember(videoID string, s Summary) {
	if c.ephemeral != nil {
		c.ephemeral.Add(videoID, s)
	}
}
