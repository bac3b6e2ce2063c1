package internal

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/rtzll/transcriptgrab/internal/transcript"
)

const sampleSRT = `1
00:00:01,000 --> 00:00:03,500
Hello &amp; welcome

2
00:00:03,500 --> 00:00:05,000
to the show
`

type fakeDownloader struct {
	files  map[string]string // file name suffix after the id -> content
	stderr string
	err    error
	calls  atomic.Int32
}

func (f *fakeDownloader) DownloadSubtitles(ctx context.Context, videoURL, language, dir string) (string, error) {
	f.calls.Add(1)
	if f.err != nil {
		return f.stderr, f.err
	}
	id, _ := transcript.ExtractVideoID(videoURL)
	for suffix, content := range f.files {
		if err := os.WriteFile(filepath.Join(dir, id+suffix), []byte(content), 0644); err != nil {
			return "", err
		}
	}
	return f.stderr, nil
}

func newTestYouTube(t *testing.T, d SubtitleDownloader) (*YouTube, string) {
	t.Helper()
	root := t.TempDir()
	cache := filepath.Join(root, "transcripts")
	return NewYouTube(cache, filepath.Join(root, "tmp"), nil, WithDownloader(d)), cache
}

func TestYouTubeFetchTranscript(t *testing.T) {
	d := &fakeDownloader{files: map[string]string{".en.srt": sampleSRT}}
	yt, cache := newTestYouTube(t, d)

	segments, err := yt.FetchTranscript(context.Background(), "dQw4w9WgXcQ", "en")
	if err != nil {
		t.Fatalf("FetchTranscript: %v", err)
	}
	if len(segments) != 2 {
		t.Fatalf("got %d segments, want 2", len(segments))
	}
	if segments[0].Start != 1 || segments[0].Duration != 2.5 {
		t.Errorf("first segment timing = %v/%v, want 1/2.5", segments[0].Start, segments[0].Duration)
	}
	if _, err := os.Stat(filepath.Join(cache, "dQw4w9WgXcQ.en.json")); err != nil {
		t.Errorf("expected cached segments: %v", err)
	}

	// second call is served from the cache
	again, err := yt.FetchTranscript(context.Background(), "dQw4w9WgXcQ", "en")
	if err != nil {
		t.Fatalf("cached FetchTranscript: %v", err)
	}
	if len(again) != 2 || d.calls.Load() != 1 {
		t.Errorf("cache miss: segments=%d downloads=%d", len(again), d.calls.Load())
	}
}

func TestYouTubePrefersExactLanguage(t *testing.T) {
	d := &fakeDownloader{files: map[string]string{
		".de-DE.srt": "1\n00:00:00,000 --> 00:00:01,000\nfalsch\n",
		".de.srt":    "1\n00:00:00,000 --> 00:00:01,000\nrichtig\n",
	}}
	yt, _ := newTestYouTube(t, d)

	segments, err := yt.FetchTranscript(context.Background(), "dQw4w9WgXcQ", "de")
	if err != nil {
		t.Fatalf("FetchTranscript: %v", err)
	}
	if segments[0].Text != "richtig" {
		t.Errorf("picked %q, want the exact language file", segments[0].Text)
	}
}

func TestYouTubeFailures(t *testing.T) {
	tests := []struct {
		name string
		d    *fakeDownloader
		want transcript.FailureKind
	}{
		{
			name: "no subtitle files",
			d:    &fakeDownloader{files: map[string]string{}},
			want: transcript.FailureNoCaptions,
		},
		{
			name: "unavailable",
			d: &fakeDownloader{
				stderr: "[youtube] abc: Downloading webpage\nERROR: [youtube] dQw4w9WgXcQ: Video unavailable\n",
				err:    errors.New("exit status 1"),
			},
			want: transcript.FailureVideoUnavailable,
		},
		{
			name: "throttled",
			d: &fakeDownloader{
				stderr: "ERROR: Unable to download API page: HTTP Error 429: Too Many Requests",
				err:    errors.New("exit status 1"),
			},
			want: transcript.FailureRateLimited,
		},
		{
			name: "bare error",
			d:    &fakeDownloader{err: errors.New("connection reset by peer")},
			want: transcript.FailureNetwork,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			yt, _ := newTestYouTube(t, tt.d)
			_, err := yt.FetchTranscript(context.Background(), "dQw4w9WgXcQ", "en")
			if err == nil {
				t.Fatal("expected error")
			}
			if got := transcript.FailureOf(err); got != tt.want {
				t.Errorf("FailureOf = %s, want %s (err: %v)", got, tt.want, err)
			}
		})
	}
}

func TestYtdlpErrorMessage(t *testing.T) {
	err := errors.New("exit status 1")
	if got := ytdlpErrorMessage("WARNING: x\nERROR: Video unavailable\n", err); got != "Video unavailable" {
		t.Errorf("got %q", got)
	}
	if got := ytdlpErrorMessage("first\nlast line\n", err); got != "last line" {
		t.Errorf("got %q", got)
	}
	if got := ytdlpErrorMessage("", err); got != "exit status 1" {
		t.Errorf("got %q", got)
	}
}
