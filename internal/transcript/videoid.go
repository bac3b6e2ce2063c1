package transcript

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/rtzll/transcriptgrab/internal/apperr"
)

var videoIDRe = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)

// IsVideoID reports whether s has the shape of a YouTube video id.
func IsVideoID(s string) bool {
	return videoIDRe.MatchString(s)
}

// ExtractVideoID returns the video id in a YouTube URL, or s itself when
// it is already a bare id. Supported forms are watch?v=, youtu.be/ and the
// /embed/, /v/, /shorts/ and /live/ paths.
func ExtractVideoID(s string) (string, error) {
	s = strings.TrimSpace(s)
	if IsVideoID(s) {
		return s, nil
	}

	if !strings.Contains(s, "://") {
		s = "https://" + s
	}
	u, err := url.Parse(s)
	if err != nil {
		return "", invalidURL(err)
	}

	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	host = strings.TrimPrefix(host, "m.")
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")

	var id string
	switch host {
	case "youtu.be":
		id = parts[0]
	case "youtube.com", "music.youtube.com", "youtube-nocookie.com":
		if v := u.Query().Get("v"); v != "" {
			id = v
			break
		}
		if len(parts) == 2 {
			switch parts[0] {
			case "embed", "v", "shorts", "live":
				id = parts[1]
			}
		}
	}

	if !IsVideoID(id) {
		return "", invalidURL(nil)
	}
	return id, nil
}

// WatchURL returns the canonical watch URL for a video id.
func WatchURL(videoID string) string {
	return "https://www.youtube.com/watch?v=" + videoID
}

func invalidURL(err error) error {
	return apperr.Wrap(apperr.KindValidation, "INVALID_URL", "Please enter a valid YouTube URL", err)
}
