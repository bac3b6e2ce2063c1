package companion

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rtzll/transcriptgrab/internal/apperr"
	"github.com/rtzll/transcriptgrab/internal/logger"
	"github.com/rtzll/transcriptgrab/internal/metadata"
	"github.com/rtzll/transcriptgrab/internal/savecoord"
	"github.com/rtzll/transcriptgrab/internal/store"
	"github.com/rtzll/transcriptgrab/internal/summary"
	"github.com/rtzll/transcriptgrab/internal/transcript"
)

// Backend is what the companion needs from the API server. *APIClient
// implements it.
type Backend interface {
	FetchTranscript(ctx context.Context, videoID, language string) ([]transcript.Segment, error)
	Fetch(ctx context.Context, videoURL string) (metadata.Video, error)
	Session(ctx context.Context) (signedIn bool, userID string, err error)
	ExistsFor(ctx context.Context, userID, videoID string) (bool, string, error)
	Upsert(ctx context.Context, in store.TranscriptInput) (store.UpsertResult, error)
}

type Summarizer interface {
	GetOrCreate(ctx context.Context, videoID, text string) (summary.Result, error)
}

// Background handles companion requests. It keeps at most one Session,
// replacing it whenever a transcript for a different video is fetched.
type Background struct {
	api       Backend
	summaries Summarizer
	log       *logger.Logger
	saveDelay time.Duration

	ctx    context.Context
	cancel context.CancelFunc
	tasks  sync.WaitGroup

	mu      sync.Mutex
	session *Session
}

type BackgroundOption func(*Background)

func WithSaveDelay(d time.Duration) BackgroundOption {
	return func(b *Background) { b.saveDelay = d }
}

func WithBackgroundLogger(l *logger.Logger) BackgroundOption {
	return func(b *Background) { b.log = l }
}

func NewBackground(api Backend, summaries Summarizer, opts ...BackgroundOption) *Background {
	ctx, cancel := context.WithCancel(context.Background())
	b := &Background{
		api:       api,
		summaries: summaries,
		log:       logger.Nop(),
		saveDelay: savecoord.DefaultDelay,
		ctx:       ctx,
		cancel:    cancel,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Close ends the current session and waits for background tasks.
func (b *Background) Close() {
	b.mu.Lock()
	sess := b.session
	b.session = nil
	b.mu.Unlock()

	b.cancel()
	if sess != nil {
		sess.Close()
	}
	b.tasks.Wait()
}

// Current returns the active session, or nil.
func (b *Background) Current() *Session {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.session
}

func (b *Background) Handle(ctx context.Context, req Request) Response {
	log := b.log.With("op", req.Op, "video_id", req.VideoID)
	start := time.Now()

	var resp Response
	switch req.Op {
	case OpGetTranscript:
		resp = b.getTranscript(ctx, req)
	case OpCheckAuth:
		resp = b.checkAuth(ctx)
	case OpSummarize:
		resp = b.summarize(ctx, req)
	case OpAutoSave:
		resp = b.autoSave(ctx, req)
	case OpSearch:
		resp = b.search(req)
	case OpClose:
		b.navigateAway()
		resp = Response{OK: true}
	default:
		resp = errorResponse(apperr.New(apperr.KindValidation, "UNKNOWN_OP", fmt.Sprintf("unknown op %q", req.Op)), "")
	}

	log.Debug("handled request", "ok", resp.OK, "error_kind", resp.ErrorKind, "elapsed", time.Since(start).Round(time.Millisecond))
	return resp
}

func (b *Background) getTranscript(ctx context.Context, req Request) Response {
	videoID, err := transcript.ExtractVideoID(req.VideoID)
	if err != nil {
		return errorResponse(err, "")
	}

	var (
		segments []transcript.Segment
		meta     *metadata.Video
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		segments, err = b.api.FetchTranscript(gctx, videoID, req.LanguageCode)
		return err
	})
	g.Go(func() error {
		// Metadata is optional; the transcript stands on its own.
		v, err := b.api.Fetch(gctx, transcript.WatchURL(videoID))
		if err != nil {
			b.log.Debug("metadata unavailable", "video_id", videoID, "error", err)
			return nil
		}
		meta = &v
		return nil
	})
	if err := g.Wait(); err != nil {
		return Response{
			Error:     errorMessage(err, "Failed to fetch transcript"),
			ErrorKind: string(transcript.FailureOf(err)),
		}
	}

	sess := b.navigate(videoID, segments, meta)
	b.autoSaveInBackground(sess)

	return Response{
		OK:         true,
		Transcript: &TranscriptPayload{VideoID: videoID, Segments: segments},
		Metadata:   meta,
	}
}

// navigate makes a session for videoID current. A session for another
// video is retired; a session for the same video is kept, so its
// auto-save run is not restarted.
func (b *Background) navigate(videoID string, segments []transcript.Segment, meta *metadata.Video) *Session {
	b.mu.Lock()
	old := b.session
	if old != nil && old.VideoID == videoID {
		b.mu.Unlock()
		return old
	}
	saver := savecoord.New(b.api,
		savecoord.WithDelay(b.saveDelay),
		savecoord.WithLogger(b.log.With("component", "autosave")),
	)
	sess := newSession(b.ctx, videoID, segments, meta, saver)
	b.session = sess
	b.mu.Unlock()

	b.retire(old)
	return sess
}

func (b *Background) navigateAway() {
	b.mu.Lock()
	old := b.session
	b.session = nil
	b.mu.Unlock()
	b.retire(old)
}

// retire cancels sess right away. A save already sent to the server is
// left to finish in the background; Close still waits for it.
func (b *Background) retire(sess *Session) {
	if sess == nil {
		return
	}
	done := sess.release()
	b.tasks.Add(1)
	go func() {
		defer b.tasks.Done()
		<-done
	}()
}

// autoSaveInBackground starts the auto-save run for sess once the user is
// known to be signed in. It is best-effort: every failure is logged and
// otherwise ignored, and closing the session abandons it.
func (b *Background) autoSaveInBackground(sess *Session) {
	b.tasks.Add(1)
	go func() {
		defer b.tasks.Done()
		ctx, cancel := context.WithTimeout(sess.ctx, 10*time.Second)
		defer cancel()

		signedIn, userID, err := b.api.Session(ctx)
		if err != nil {
			b.log.Debug("auth check for auto-save failed", "error", err)
			return
		}
		if !signedIn {
			return
		}
		select {
		case <-sess.Done():
			return
		default:
		}
		sess.startSave(userID)
	}()
}

func (b *Background) checkAuth(ctx context.Context) Response {
	signedIn, _, err := b.api.Session(ctx)
	if err != nil {
		b.log.Debug("auth check failed", "error", err)
		signedIn = false
	}
	return Response{OK: true, SignedIn: boolPtr(signedIn)}
}

func (b *Background) summarize(ctx context.Context, req Request) Response {
	videoID := strings.TrimSpace(req.VideoID)
	text := req.TranscriptText
	if text == "" {
		if sess := b.Current(); sess != nil && sess.VideoID == videoID {
			text = sess.Text()
		}
	}
	if videoID == "" || text == "" {
		return errorResponse(apperr.New(apperr.KindValidation, "MISSING_FIELDS", "Missing required fields"), "")
	}

	res, err := b.summaries.GetOrCreate(ctx, videoID, text)
	if err != nil {
		b.log.Warn("summary failed", "video_id", videoID, "error", err)
		return errorResponse(err, "Failed to generate summary")
	}
	s := res.Summary
	return Response{OK: true, Summary: &s}
}

// autoSave runs the save protocol to completion for the current session
// (creating one from the request when needed) and reports the outcome.
// Failures never surface as errors.
func (b *Background) autoSave(ctx context.Context, req Request) Response {
	signedIn, userID, err := b.api.Session(ctx)
	if err != nil || !signedIn {
		return Response{OK: true, Save: &SaveResult{Saved: false, State: "signed_out"}}
	}

	sess := b.Current()
	if sess == nil || (req.VideoID != "" && sess.VideoID != req.VideoID) {
		if req.VideoID == "" || len(req.Segments) == 0 {
			return Response{OK: true, Save: &SaveResult{Saved: false, State: savecoord.Idle.String()}}
		}
		var meta *metadata.Video
		if req.Title != "" {
			meta = &metadata.Video{Title: req.Title}
		}
		sess = b.navigate(req.VideoID, req.Segments, meta)
	}

	sess.startSave(userID)
	done := make(chan struct{})
	go func() {
		sess.saver.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
	}

	snap := sess.saver.Snapshot()
	return Response{OK: true, Save: &SaveResult{
		Saved:    snap.State == savecoord.Saved,
		State:    snap.State.String(),
		RecordID: snap.RecordID,
	}}
}

func (b *Background) search(req Request) Response {
	sess := b.Current()
	if sess == nil || (req.VideoID != "" && sess.VideoID != req.VideoID) {
		return errorResponse(apperr.New(apperr.KindNotFound, "NO_SESSION", "No transcript loaded"), "")
	}

	switch req.Action {
	case "", SearchSet:
		sess.search.SetQuery(req.Query)
	case SearchNext:
		sess.search.Next()
	case SearchPrev:
		sess.search.Prev()
	case SearchClear:
		sess.search.Clear()
	default:
		return errorResponse(apperr.New(apperr.KindValidation, "UNKNOWN_ACTION", fmt.Sprintf("unknown search action %q", req.Action)), "")
	}
	return Response{OK: true, Search: sess.searchResult()}
}

func errorResponse(err error, fallback string) Response {
	return Response{Error: errorMessage(err, fallback), ErrorKind: string(apperr.KindOf(err))}
}

func errorMessage(err error, fallback string) string {
	if ae, ok := apperr.As(err); ok && ae.Message != "" {
		return ae.Message
	}
	var se *transcript.SourceError
	if errors.As(err, &se) && se.Message != "" {
		return se.Message
	}
	if fallback != "" {
		return fallback
	}
	return err.Error()
}
