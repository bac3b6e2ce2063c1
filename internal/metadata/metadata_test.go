package metadata

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/rtzll/transcriptgrab/internal/apperr"
)

const videoURL = "https://www.youtube.com/watch?v=dQw4w9WgXcQ"

func endpointFor(name, base string) Endpoint {
	return Endpoint{Name: name, Build: func(v string) string { return base + "?url=" + v }}
}

func TestFetchPrimary(t *testing.T) {
	var fallbackHits atomic.Int32
	primary := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"title":"Never Gonna","author_name":"Rick","author_url":"https://yt/rick","thumbnail_url":"https://img"}`))
	}))
	defer primary.Close()
	fallback := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fallbackHits.Add(1)
	}))
	defer fallback.Close()

	c := New(WithEndpoints(endpointFor("p", primary.URL), endpointFor("f", fallback.URL)))
	v, err := c.Fetch(context.Background(), videoURL)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	want := Video{Title: "Never Gonna", Author: "Rick", AuthorURL: "https://yt/rick", ThumbnailURL: "https://img"}
	if v != want {
		t.Errorf("Fetch() = %+v, want %+v", v, want)
	}
	if fallbackHits.Load() != 0 {
		t.Error("fallback should not be called when primary answers")
	}
}

func TestFetchFallsBack(t *testing.T) {
	primary := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// noembed answers 200 with an error body for unknown videos
		w.Write([]byte(`{"error":"404 Not Found"}`))
	}))
	defer primary.Close()
	fallback := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"title":"From YouTube"}`))
	}))
	defer fallback.Close()

	c := New(WithEndpoints(endpointFor("p", primary.URL), endpointFor("f", fallback.URL)))
	v, err := c.Fetch(context.Background(), videoURL)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if v.Title != "From YouTube" {
		t.Errorf("Title = %q", v.Title)
	}
}

func TestFetchAllFail(t *testing.T) {
	down := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer down.Close()

	c := New(WithEndpoints(endpointFor("a", down.URL), endpointFor("b", down.URL)))
	_, err := c.Fetch(context.Background(), videoURL)
	if apperr.Status(err) != http.StatusBadGateway {
		t.Errorf("status = %d, want 502 (err %v)", apperr.Status(err), err)
	}
}

func TestValidateURL(t *testing.T) {
	tests := []struct {
		url  string
		code string
	}{
		{"", "MISSING_URL"},
		{"https://vimeo.com/1", "UNSUPPORTED_URL"},
		{"https://youtu.be/abc", ""},
		{videoURL, ""},
	}
	for _, tt := range tests {
		err := ValidateURL(tt.url)
		if got := apperr.CodeOf(err); got != tt.code {
			t.Errorf("ValidateURL(%q) code = %q, want %q", tt.url, got, tt.code)
		}
		if tt.code != "" && !strings.Contains(err.Error(), "URL") && !strings.Contains(err.Error(), "url") {
			t.Errorf("unexpected message %q", err.Error())
		}
	}
}
