package transcript

import (
	"testing"

	"github.com/rtzll/transcriptgrab/internal/apperr"
)

func TestExtractVideoID(t *testing.T) {
	const id = "dQw4w9WgXcQ"
	valid := []string{
		id,
		"https://www.youtube.com/watch?v=" + id,
		"https://youtube.com/watch?v=" + id + "&t=42s&list=PL123",
		"https://m.youtube.com/watch?v=" + id,
		"youtube.com/watch?v=" + id,
		"https://youtu.be/" + id + "?si=abc",
		"https://www.youtube.com/embed/" + id,
		"https://www.youtube.com/v/" + id,
		"https://www.youtube.com/shorts/" + id,
		"https://www.youtube.com/live/" + id + "?feature=share",
		"  https://youtu.be/" + id + "  ",
	}
	for _, in := range valid {
		got, err := ExtractVideoID(in)
		if err != nil {
			t.Errorf("ExtractVideoID(%q) error: %v", in, err)
			continue
		}
		if got != id {
			t.Errorf("ExtractVideoID(%q) = %q, want %q", in, got, id)
		}
	}

	invalid := []string{
		"",
		"hello",
		"https://vimeo.com/123456789",
		"https://www.youtube.com/playlist?list=PLabc",
		"https://www.youtube.com/watch?v=short",
		"https://www.youtube.com/channel/UC1234567890",
	}
	for _, in := range invalid {
		_, err := ExtractVideoID(in)
		if apperr.CodeOf(err) != "INVALID_URL" {
			t.Errorf("ExtractVideoID(%q) err = %v, want INVALID_URL", in, err)
		}
	}
}
