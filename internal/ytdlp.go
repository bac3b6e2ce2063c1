package internal

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/lrstanley/go-ytdlp"

	"github.com/rtzll/transcriptgrab/internal/logger"
	"github.com/rtzll/transcriptgrab/internal/transcript"
)

// SubtitleDownloader writes SRT subtitle files for videoURL into dir and
// returns the tool's stderr for diagnostics.
type SubtitleDownloader interface {
	DownloadSubtitles(ctx context.Context, videoURL, language, dir string) (stderr string, err error)
}

// ytdlpDownloader drives yt-dlp, installing it on first use.
type ytdlpDownloader struct {
	installOnce sync.Once
	installErr  error
}

func (d *ytdlpDownloader) DownloadSubtitles(ctx context.Context, videoURL, language, dir string) (string, error) {
	d.installOnce.Do(func() {
		_, d.installErr = ytdlp.Install(ctx, nil)
	})
	if d.installErr != nil {
		return "", fmt.Errorf("installing yt-dlp: %w", d.installErr)
	}

	dl := ytdlp.New().
		WriteSubs().        // Enable subtitle writing
		WriteAutoSubs().    // Fall back to auto-generated captions
		SubLangs(language). // Requested language only
		ConvertSubs("srt"). // Convert subtitles to SRT format
		SkipDownload().     // Skip downloading the video
		NoPlaylist().
		Output(filepath.Join(dir, "%(id)s"))

	result, err := dl.Run(ctx, videoURL)
	stderr := ""
	if result != nil {
		stderr = result.Stderr
	}
	return stderr, err
}

// YouTube fetches caption segments through yt-dlp, caching them as JSON in
// the transcripts directory.
type YouTube struct {
	transcriptsDir string
	tempDir        string
	downloader     SubtitleDownloader
	log            *logger.Logger
}

// YouTubeOption customizes YouTube creation
type YouTubeOption func(*YouTube)

// WithDownloader replaces yt-dlp, mainly for tests.
func WithDownloader(d SubtitleDownloader) YouTubeOption {
	return func(yt *YouTube) { yt.downloader = d }
}

// NewYouTube creates a transcript source. An empty transcriptsDir disables
// the segment cache.
func NewYouTube(transcriptsDir, tempDir string, log *logger.Logger, opts ...YouTubeOption) *YouTube {
	if log == nil {
		log = logger.Nop()
	}
	yt := &YouTube{
		transcriptsDir: transcriptsDir,
		tempDir:        tempDir,
		downloader:     &ytdlpDownloader{},
		log:            log.With("component", "youtube"),
	}
	for _, opt := range opts {
		opt(yt)
	}
	return yt
}

// FetchTranscript returns the caption segments for videoID in language.
// Failures are *transcript.SourceError values classified from yt-dlp's
// diagnostics.
func (yt *YouTube) FetchTranscript(ctx context.Context, videoID, language string) ([]transcript.Segment, error) {
	if language == "" {
		language = "en"
	}
	log := yt.log.With("video_id", videoID, "language", language)

	if yt.transcriptsDir != "" {
		if segments, err := LoadCachedSegments(yt.transcriptsDir, videoID, language); err == nil {
			log.Debug("using cached transcript")
			return segments, nil
		}
	}

	if err := EnsureDirs(yt.tempDir); err != nil {
		return nil, fmt.Errorf("creating temp directory: %w", err)
	}
	dir, err := os.MkdirTemp(yt.tempDir, videoID+"-")
	if err != nil {
		return nil, fmt.Errorf("creating temp directory: %w", err)
	}
	defer os.RemoveAll(dir)

	log.Debug("downloading subtitles")
	stderr, err := yt.downloader.DownloadSubtitles(ctx, transcript.WatchURL(videoID), language, dir)
	if err != nil {
		if ctx.Err() != nil {
			return nil, transcript.NewSourceError("Transcript request was cancelled", ctx.Err())
		}
		msg := ytdlpErrorMessage(stderr, err)
		log.Debug("subtitle download failed", "error", err, "message", msg)
		return nil, transcript.NewSourceError(msg, err)
	}

	path, err := pickSubtitleFile(dir, videoID, language)
	if err != nil {
		return nil, err
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading subtitles: %w", err)
	}

	segments := transcript.ParseSRT(string(content))
	if len(segments) == 0 {
		return nil, transcript.NewSourceError("Transcript is disabled on this video", nil)
	}
	log.Debug("parsed subtitles", "file", filepath.Base(path), "segments", len(segments))

	if yt.transcriptsDir != "" {
		if err := SaveSegments(yt.transcriptsDir, videoID, language, segments); err != nil {
			log.Warn("caching transcript failed", "error", err)
		}
	}
	return segments, nil
}

// pickSubtitleFile prefers <id>.<lang>.srt and otherwise takes the first
// variant yt-dlp wrote, e.g. en-US or en-orig.
func pickSubtitleFile(dir, videoID, language string) (string, error) {
	files, err := filepath.Glob(filepath.Join(dir, videoID+"*.srt"))
	if err != nil {
		return "", fmt.Errorf("searching subtitles: %w", err)
	}
	if len(files) == 0 {
		return "", transcript.NewSourceError("Transcript is disabled on this video", nil)
	}
	exact := filepath.Join(dir, videoID+"."+language+".srt")
	if slices.Contains(files, exact) {
		return exact, nil
	}
	slices.Sort(files)
	return files[0], nil
}

// ytdlpErrorMessage extracts the first "ERROR:" line yt-dlp printed.
func ytdlpErrorMessage(stderr string, err error) string {
	for line := range strings.SplitSeq(stderr, "\n") {
		line = strings.TrimSpace(line)
		if rest, ok := strings.CutPrefix(line, "ERROR:"); ok {
			return strings.TrimSpace(rest)
		}
	}
	if s := strings.TrimSpace(stderr); s != "" {
		lines := strings.Split(s, "\n")
		return strings.TrimSpace(lines[len(lines)-1])
	}
	return err.Error()
}
