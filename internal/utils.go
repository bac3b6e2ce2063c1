package internal

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/muesli/termenv"
	"golang.org/x/term"

	"github.com/rtzll/transcriptgrab/internal/metadata"
	"github.com/rtzll/transcriptgrab/internal/transcript"
)

// getTerminalWidth gets terminal width with fallback
func getTerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil {
		return 80
	}

	if width > 10 {
		return width - 4
	}

	return width
}

// RenderMarkdown renders markdown content with glamour
func RenderMarkdown(content string) (string, error) {
	width := getTerminalWidth()
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
		glamour.WithColorProfile(termenv.EnvColorProfile()),
	)
	if err != nil {
		return "", fmt.Errorf("creating terminal renderer: %w", err)
	}

	renderedContent, err := r.Render(content)
	if err != nil {
		return "", fmt.Errorf("rendering markdown: %w", err)
	}

	return renderedContent, nil
}

// FileExists checks if a file exists
func FileExists(filename string) bool {
	_, err := os.Stat(filename)
	return !os.IsNotExist(err)
}

// EnsureDirs creates directories if needed
func EnsureDirs(dirs ...string) error {
	for _, dir := range dirs {
		if dir == "" || FileExists(dir) {
			continue
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return nil
}

// CleanupTempDir purges leftover subtitle downloads.
func CleanupTempDir(tempDir string) error {
	if err := os.RemoveAll(tempDir); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("removing temp directory: %w", err)
	}
	return nil
}

var commandLikeRe = regexp.MustCompile(`^[a-z][a-z-]*$`)

// IsLikelyCommand checks if a string looks like it might be a mistyped command
func IsLikelyCommand(arg string) bool {
	return len(arg) <= 12 && !transcript.IsVideoID(arg) && commandLikeRe.MatchString(arg)
}

// cachedSegments is the on-disk form of a fetched transcript.
type cachedSegments struct {
	VideoID  string               `json:"video_id"`
	Language string               `json:"language"`
	Segments []transcript.Segment `json:"segments"`
	CachedAt time.Time            `json:"cached_at"`
}

func segmentsPath(dir, videoID, language string) string {
	return filepath.Join(dir, videoID+"."+language+".json")
}

// SaveSegments caches segments for videoID as JSON.
func SaveSegments(dir, videoID, language string, segments []transcript.Segment) error {
	if err := EnsureDirs(dir); err != nil {
		return fmt.Errorf("creating transcripts directory: %w", err)
	}
	data, err := json.MarshalIndent(cachedSegments{
		VideoID:  videoID,
		Language: language,
		Segments: segments,
		CachedAt: time.Now(),
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling transcript: %w", err)
	}
	if err := os.WriteFile(segmentsPath(dir, videoID, language), data, 0644); err != nil {
		return fmt.Errorf("saving transcript: %w", err)
	}
	return nil
}

// LoadCachedSegments reads segments cached by SaveSegments.
func LoadCachedSegments(dir, videoID, language string) ([]transcript.Segment, error) {
	data, err := os.ReadFile(segmentsPath(dir, videoID, language))
	if err != nil {
		return nil, fmt.Errorf("reading transcript cache: %w", err)
	}
	var cached cachedSegments
	if err := json.Unmarshal(data, &cached); err != nil {
		return nil, fmt.Errorf("parsing transcript cache: %w", err)
	}
	if len(cached.Segments) == 0 {
		return nil, fmt.Errorf("transcript cache for %s is empty", videoID)
	}
	return cached.Segments, nil
}

// CachedVideoMetadata is metadata.Video with cache information
type CachedVideoMetadata struct {
	metadata.Video
	CachedAt time.Time `json:"cachedAt"`
}

// SaveMetadata saves video metadata to cache as JSON
func SaveMetadata(videoID string, video metadata.Video, dir string) error {
	if err := EnsureDirs(dir); err != nil {
		return fmt.Errorf("creating transcripts directory: %w", err)
	}
	data, err := json.MarshalIndent(CachedVideoMetadata{Video: video, CachedAt: time.Now()}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling metadata: %w", err)
	}

	metadataPath := filepath.Join(dir, videoID+".meta.json")
	if err := os.WriteFile(metadataPath, data, 0644); err != nil {
		return fmt.Errorf("saving metadata: %w", err)
	}
	return nil
}

// LoadCachedMetadata loads video metadata from cache
func LoadCachedMetadata(videoID, dir string) (metadata.Video, error) {
	data, err := os.ReadFile(filepath.Join(dir, videoID+".meta.json"))
	if err != nil {
		return metadata.Video{}, fmt.Errorf("reading metadata cache: %w", err)
	}

	var cached CachedVideoMetadata
	if err := json.Unmarshal(data, &cached); err != nil {
		return metadata.Video{}, fmt.Errorf("parsing metadata cache: %w", err)
	}
	if cached.Title == "" {
		return metadata.Video{}, fmt.Errorf("metadata cache for %s has no title", videoID)
	}
	return cached.Video, nil
}
