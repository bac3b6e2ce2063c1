package companion

import (
	"context"
	"errors"
	"time"

	"github.com/rtzll/transcriptgrab/internal/apperr"
	"github.com/rtzll/transcriptgrab/internal/summary"
)

// DefaultSummaryTimeout bounds a companion summary request.
const DefaultSummaryTimeout = 15 * time.Second

type remoteSummarizer interface {
	Summarize(ctx context.Context, videoID, text string) (summary.Summary, error)
}

// RemoteSummaries serves summaries from the ephemeral tier, falling back
// to the API server (and through it the persisted tier) on a miss.
type RemoteSummaries struct {
	api       remoteSummarizer
	ephemeral *summary.Ephemeral
	timeout   time.Duration
	maxChars  int
}

func NewRemoteSummaries(api remoteSummarizer, ephemeral *summary.Ephemeral, timeout time.Duration) *RemoteSummaries {
	if timeout <= 0 {
		timeout = DefaultSummaryTimeout
	}
	return &RemoteSummaries{api: api, ephemeral: ephemeral, timeout: timeout, maxChars: summary.DefaultMaxChars}
}

func (r *RemoteSummaries) GetOrCreate(ctx context.Context, videoID, text string) (summary.Result, error) {
	if r.ephemeral != nil {
		if s, ok := r.ephemeral.Get(videoID); ok {
			return summary.Result{Summary: s, Source: summary.SourceMemory}, nil
		}
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	s, err := r.api.Summarize(ctx, videoID, summary.Truncate(text, r.maxChars))
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) && !apperr.Is(err, apperr.KindTimeout) {
			return summary.Result{}, apperr.Wrap(apperr.KindTimeout, "SUMMARY_TIMEOUT", "Summary timed out — try again", err)
		}
		return summary.Result{}, err
	}
	if r.ephemeral != nil {
		r.ephemeral.Add(videoID, s)
	}
	return summary.Result{Summary: s, Source: summary.SourceStore}, nil
}
