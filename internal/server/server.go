// Package server exposes transcripts, history and summaries over HTTP for
// the web client and the companion process.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/rtzll/transcriptgrab/internal/auth"
	"github.com/rtzll/transcriptgrab/internal/logger"
	"github.com/rtzll/transcriptgrab/internal/metadata"
	"github.com/rtzll/transcriptgrab/internal/store"
	"github.com/rtzll/transcriptgrab/internal/summary"
	"github.com/rtzll/transcriptgrab/internal/transcript"
)

// TranscriptSource fetches captions for a video. Failures should carry a
// transcript.FailureKind, e.g. via transcript.SourceError.
type TranscriptSource interface {
	FetchTranscript(ctx context.Context, videoID, language string) ([]transcript.Segment, error)
}

type MetadataSource interface {
	Fetch(ctx context.Context, videoURL string) (metadata.Video, error)
}

type Summarizer interface {
	GetOrCreate(ctx context.Context, videoID, text string) (summary.Result, error)
}

// Store is the subset of *store.Store the handlers use.
type Store interface {
	ExistsFor(ctx context.Context, userID, videoID string) (bool, string, error)
	Upsert(ctx context.Context, in store.TranscriptInput) (store.UpsertResult, error)
	Get(ctx context.Context, userID, id string) (*store.Transcript, error)
	List(ctx context.Context, userID string) ([]store.Transcript, error)
	DeleteMany(ctx context.Context, userID string, ids []string) (int64, error)
}

type Config struct {
	Addr        string
	CORSOrigins []string
	// DefaultLanguage is used when a transcript request names none.
	DefaultLanguage string
}

type Deps struct {
	Transcripts TranscriptSource
	Metadata    MetadataSource
	Store       Store
	Summaries   Summarizer
	Issuer      *auth.Issuer
	Logger      *logger.Logger
}

type Server struct {
	cfg    Config
	deps   Deps
	log    *logger.Logger
	engine *gin.Engine
}

func New(cfg Config, deps Deps) *Server {
	if deps.Logger == nil {
		deps.Logger = logger.Nop()
	}
	if cfg.DefaultLanguage == "" {
		cfg.DefaultLanguage = "en"
	}
	s := &Server{cfg: cfg, deps: deps, log: deps.Logger.With("component", "server")}
	s.engine = s.routes()
	return s
}

// Handler returns the root handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("listening", "addr", s.cfg.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s.log.Info("shutting down")
	return srv.Shutdown(shutdownCtx)
}
