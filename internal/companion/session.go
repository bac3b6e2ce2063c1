package companion

import (
	"context"

	"github.com/rtzll/transcriptgrab/internal/metadata"
	"github.com/rtzll/transcriptgrab/internal/savecoord"
	"github.com/rtzll/transcriptgrab/internal/store"
	"github.com/rtzll/transcriptgrab/internal/transcript"
)

// Session is the state for one viewed video: its segments, the search over
// them and the auto-save run. A session is created when the viewer
// navigates to a video and closed when it navigates away; nothing in it
// outlives Close.
type Session struct {
	VideoID  string
	Segments []transcript.Segment
	Metadata *metadata.Video

	search *transcript.Search
	saver  *savecoord.Coordinator
	ctx    context.Context
	cancel context.CancelFunc
}

func newSession(parent context.Context, videoID string, segments []transcript.Segment, meta *metadata.Video, saver *savecoord.Coordinator) *Session {
	ctx, cancel := context.WithCancel(parent)
	return &Session{
		VideoID:  videoID,
		Segments: segments,
		Metadata: meta,
		search:   transcript.NewSearch(segments, nil),
		saver:    saver,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Close cancels any pending auto-save and waits for it to wind down.
func (s *Session) Close() {
	<-s.release()
}

// release cancels the session without waiting. The returned channel is
// closed once an in-flight save has finished.
func (s *Session) release() <-chan struct{} {
	s.cancel()
	return s.saver.Detach()
}

// Done is closed once the session is closed.
func (s *Session) Done() <-chan struct{} {
	return s.ctx.Done()
}

// Text is the decoded transcript joined for summarization.
func (s *Session) Text() string {
	return transcript.JoinText(s.Segments)
}

func (s *Session) saveInput(userID string) store.TranscriptInput {
	title := "Unknown video"
	var thumbnail string
	if s.Metadata != nil {
		if s.Metadata.Title != "" {
			title = s.Metadata.Title
		}
		thumbnail = s.Metadata.ThumbnailURL
	}
	return store.TranscriptInput{
		UserID:       userID,
		VideoID:      s.VideoID,
		VideoURL:     transcript.WatchURL(s.VideoID),
		VideoTitle:   title,
		ThumbnailURL: thumbnail,
		Segments:     s.Segments,
	}
}

// startSave begins the auto-save run for userID. Repeated calls are no-ops.
func (s *Session) startSave(userID string) {
	s.saver.Start(s.ctx, s.saveInput(userID))
}

func (s *Session) searchResult() *SearchResult {
	ix := s.search.Index()
	res := &SearchResult{Query: ix.Query, Count: ix.Count(), Current: -1}
	if m, ok := s.search.Current(); ok {
		res.Current = m.Ordinal
		res.Match = &m
	}
	return res
}
