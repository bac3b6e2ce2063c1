package internal

import (
	"context"
	"fmt"
	"math"
	"path/filepath"
	"sync"

	"github.com/rtzll/transcriptgrab/internal/httpkit"
	"github.com/rtzll/transcriptgrab/internal/logger"
	"github.com/rtzll/transcriptgrab/internal/metadata"
	"github.com/rtzll/transcriptgrab/internal/savecoord"
	"github.com/rtzll/transcriptgrab/internal/store"
	"github.com/rtzll/transcriptgrab/internal/summary"
	"github.com/rtzll/transcriptgrab/internal/transcript"
)

// TranscriptSource fetches caption segments for a video.
type TranscriptSource interface {
	FetchTranscript(ctx context.Context, videoID, language string) ([]transcript.Segment, error)
}

// MetadataSource looks up display metadata for a watch URL.
type MetadataSource interface {
	Fetch(ctx context.Context, videoURL string) (metadata.Video, error)
}

// App holds the application state and dependencies
type App struct {
	config        *Config
	youtube       TranscriptSource
	metadata      MetadataSource
	ai            summary.Completer
	promptManager *PromptManager
	ui            UIManager
	log           *logger.Logger

	storeOnce sync.Once
	store     *store.Store
	storeErr  error

	summariesOnce sync.Once
	summaries     *summary.Cache
}

// NewApp initializes the application
func NewApp(config *Config, options ...AppOption) *App {
	app := &App{
		config:        config,
		promptManager: NewPromptManager(config.ConfigDir, config.Prompt),
		ui:            NewUIManager(config.Quiet),
		log:           logger.Nop(),
	}

	for _, option := range options {
		option(app)
	}

	if app.youtube == nil {
		app.youtube = NewYouTube(config.TranscriptsDir, config.TempDir, app.log)
	}
	if app.metadata == nil {
		app.metadata = metadata.New(
			metadata.WithHTTPClient(httpkit.NewClient()),
			metadata.WithLogger(app.log),
		)
	}
	if app.ai == nil {
		app.ai = NewAI(config.LLMAPIKey, config.LLMBaseURL, config.LLMModel, config.SummaryTimeout,
			WithRequestsPerMinute(config.LLMRequestsPerMinute))
	}

	return app
}

// AppOption customizes App creation
type AppOption func(*App)

// WithLogger sets the logger used by the app and the components it builds
func WithLogger(l *logger.Logger) AppOption {
	return func(a *App) {
		a.log = l
	}
}

// WithTranscriptSource sets a custom transcript source
func WithTranscriptSource(src TranscriptSource) AppOption {
	return func(a *App) {
		a.youtube = src
	}
}

// WithMetadataSource sets a custom metadata lookup
func WithMetadataSource(src MetadataSource) AppOption {
	return func(a *App) {
		a.metadata = src
	}
}

// WithCompleter sets a custom completion client
func WithCompleter(c summary.Completer) AppOption {
	return func(a *App) {
		a.ai = c
	}
}

// WithStore sets an already opened store
func WithStore(s *store.Store) AppOption {
	return func(a *App) {
		a.storeOnce.Do(func() { a.store = s })
	}
}

// WithUI sets the UI manager
func WithUI(ui UIManager) AppOption {
	return func(a *App) {
		a.ui = ui
	}
}

// SetPromptManager sets a new prompt manager
func (app *App) SetPromptManager(pm *PromptManager) {
	app.promptManager = pm
}

func (app *App) Config() *Config               { return app.config }
func (app *App) Logger() *logger.Logger        { return app.log }
func (app *App) Transcripts() TranscriptSource { return app.youtube }
func (app *App) Metadata() MetadataSource      { return app.metadata }

// Statusf prints a status line to stderr unless the UI is quiet.
func (app *App) Statusf(format string, args ...any) { app.ui.Printf(format, args...) }

// Store opens the configured database on first use.
func (app *App) Store() (*store.Store, error) {
	app.storeOnce.Do(func() {
		if app.config.DatabaseDriver == "sqlite" {
			if err := EnsureDirs(filepath.Dir(app.config.DatabaseDSN)); err != nil {
				app.storeErr = fmt.Errorf("creating database directory: %w", err)
				return
			}
		}
		app.store, app.storeErr = store.Open(app.config.DatabaseDriver, app.config.DatabaseDSN)
	})
	return app.store, app.storeErr
}

// Close releases the store if it was opened.
func (app *App) Close() error {
	if app.store != nil {
		return app.store.Close()
	}
	return nil
}

// Summaries returns the summary cache backed by the local store. When the
// store cannot be opened summaries are still generated, just not kept.
func (app *App) Summaries() *summary.Cache {
	app.summariesOnce.Do(func() {
		opts := []summary.Option{
			summary.WithMaxChars(app.config.SummaryMaxChars),
			summary.WithTimeout(app.config.SummaryTimeout),
			summary.WithLogger(app.log.With("component", "summary")),
		}
		if st, err := app.Store(); err != nil {
			app.log.Warn("summary persistence disabled", "error", err)
		} else {
			opts = append(opts, summary.WithStore(st))
		}
		app.summaries = summary.NewCache(app.promptManager.Generator(app.ai), opts...)
	})
	return app.summaries
}

// Transcript resolves arg to a video and fetches its segments
func (app *App) Transcript(ctx context.Context, arg string) (string, []transcript.Segment, error) {
	parsed := ParseArg(arg)
	if !parsed.IsVideo() {
		return "", nil, parsed.Err
	}

	spinner := app.ui.NewSpinner("Fetching transcript...")
	defer spinner.Finish()

	segments, err := app.youtube.FetchTranscript(ctx, parsed.VideoID, app.config.Language)
	if err != nil {
		return parsed.VideoID, nil, fmt.Errorf("fetching transcript for %s: %w", parsed.VideoID, err)
	}
	return parsed.VideoID, segments, nil
}

// VideoMetadata gets metadata from the local cache or the oEmbed endpoints
func (app *App) VideoMetadata(ctx context.Context, videoID string) (metadata.Video, error) {
	if cached, err := LoadCachedMetadata(videoID, app.config.TranscriptsDir); err == nil {
		app.log.Debug("using cached metadata", "video_id", videoID)
		return cached, nil
	}

	video, err := app.metadata.Fetch(ctx, transcript.WatchURL(videoID))
	if err != nil {
		return metadata.Video{}, err
	}

	if err := SaveMetadata(videoID, video, app.config.TranscriptsDir); err != nil {
		app.log.Warn("caching metadata failed", "video_id", videoID, "error", err)
	}
	return video, nil
}

// Summarize returns the summary for videoID, generating it at most once
func (app *App) Summarize(ctx context.Context, videoID string, segments []transcript.Segment) (summary.Result, error) {
	spinner := app.ui.NewSpinner("Summarizing...")
	defer spinner.Finish()

	return app.Summaries().GetOrCreate(ctx, videoID, transcript.JoinText(segments))
}

// SummarizeVideo performs the complete workflow: get transcript -> summarize -> render
func (app *App) SummarizeVideo(ctx context.Context, arg string) error {
	if r, ok := app.ai.(interface{ Ready() error }); ok {
		if err := r.Ready(); err != nil {
			return err
		}
	}

	videoID, segments, err := app.Transcript(ctx, arg)
	if err != nil {
		return err
	}

	result, err := app.Summarize(ctx, videoID, segments)
	if err != nil {
		return fmt.Errorf("summarizing %s: %w", videoID, err)
	}
	app.log.Debug("summary ready", "video_id", videoID, "source", result.Source)

	title := videoID
	if video, err := app.VideoMetadata(ctx, videoID); err == nil {
		title = video.Title
	} else {
		app.log.Debug("metadata unavailable", "video_id", videoID, "error", err)
	}

	rendered, err := RenderMarkdown("# " + title + "\n\n" + result.Summary.Markdown())
	if err != nil {
		return err
	}
	fmt.Print(rendered)
	return nil
}

// Export fetches the transcript for arg and renders it in format
func (app *App) Export(ctx context.Context, arg string, format transcript.Format) (string, []transcript.Segment, string, error) {
	videoID, segments, err := app.Transcript(ctx, arg)
	if err != nil {
		return videoID, nil, "", err
	}
	return videoID, segments, transcript.Render(segments, format), nil
}

// Search fetches the transcript for arg and indexes query over it
func (app *App) Search(ctx context.Context, arg, query string) ([]transcript.Segment, *transcript.Index, error) {
	_, segments, err := app.Transcript(ctx, arg)
	if err != nil {
		return nil, nil, err
	}
	return segments, transcript.BuildIndex(segments, query), nil
}

// SaveTranscript stores segments under the configured local user. It runs
// the same check-then-save protocol as the companion, without the debounce.
func (app *App) SaveTranscript(ctx context.Context, videoID string, segments []transcript.Segment) (savecoord.Snapshot, error) {
	st, err := app.Store()
	if err != nil {
		return savecoord.Snapshot{}, fmt.Errorf("opening store: %w", err)
	}

	title := "Unknown video"
	var thumbnail string
	if video, err := app.VideoMetadata(ctx, videoID); err == nil {
		title, thumbnail = video.Title, video.ThumbnailURL
	}
	var duration *int
	if secs := transcript.TotalDuration(segments); secs > 0 {
		d := int(math.Round(secs))
		duration = &d
	}

	coord := savecoord.New(st,
		savecoord.WithDelay(0),
		savecoord.WithLogger(app.log.With("component", "save")),
	)
	coord.Start(ctx, store.TranscriptInput{
		UserID:        app.config.User,
		VideoID:       videoID,
		VideoURL:      transcript.WatchURL(videoID),
		VideoTitle:    title,
		ThumbnailURL:  thumbnail,
		VideoDuration: duration,
		Segments:      segments,
	})
	coord.Wait()

	snap := coord.Snapshot()
	if snap.State == savecoord.Failed {
		return snap, fmt.Errorf("saving transcript: %w", snap.Err)
	}
	return snap, nil
}
