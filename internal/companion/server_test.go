package companion

import (
	"context"
	"errors"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rtzll/transcriptgrab/internal/summary"
)

// socketPath returns a short path; t.TempDir can exceed the sun_path limit.
func socketPath(t *testing.T) string {
	t.Helper()
	dir, err := os.MkdirTemp("", "tg")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.RemoveAll(dir) })
	return filepath.Join(dir, "c.sock")
}

func startListener(t *testing.T, h Handler) string {
	t.Helper()
	path := socketPath(t)
	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- NewListener(path, h, nil).Serve(ctx) }()
	t.Cleanup(func() {
		cancel()
		if err := <-errc; err != nil {
			t.Errorf("Serve: %v", err)
		}
	})

	waitFor(t, "socket", func() bool {
		conn, err := net.Dial("unix", path)
		if err != nil {
			return false
		}
		conn.Close()
		return true
	})
	return path
}

func TestListenerRoundTrip(t *testing.T) {
	b := newTestBackground(t, newBackend(), nil)
	path := startListener(t, b)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	client, err := Connect(ctx, path)
	if err != nil {
		t.Fatal(err)
	}
	defer client.Close()

	resp, err := client.Call(ctx, Request{Op: OpGetTranscript, VideoID: videoA})
	if err != nil {
		t.Fatal(err)
	}
	if !resp.OK || resp.Transcript == nil || len(resp.Transcript.Segments) != 2 {
		t.Fatalf("getTranscript = %+v", resp)
	}

	// Several requests share one connection.
	resp, err = client.Call(ctx, Request{Op: OpSearch, Query: "down"})
	if err != nil {
		t.Fatal(err)
	}
	if !resp.OK || resp.Search.Count != 1 || resp.Search.Match.SegmentIndex != 1 {
		t.Errorf("search = %+v", resp.Search)
	}

	resp, err = client.Call(ctx, Request{Op: OpCheckAuth})
	if err != nil {
		t.Fatal(err)
	}
	if resp.SignedIn == nil || *resp.SignedIn {
		t.Errorf("checkAuth = %+v", resp)
	}
}

func TestListenerRejectsBadJSON(t *testing.T) {
	path := startListener(t, newTestBackground(t, newBackend(), nil))

	conn, err := net.Dial("unix", path)
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()
	conn.SetDeadline(time.Now().Add(5 * time.Second))
	if _, err := conn.Write([]byte("{not json\n")); err != nil {
		t.Fatal(err)
	}
	buf := make([]byte, 512)
	n, err := conn.Read(buf)
	if err != nil {
		t.Fatal(err)
	}
	if got := string(buf[:n]); !strings.Contains(got, `"errorKind":"validation"`) {
		t.Errorf("response = %s", got)
	}
}

func TestListenerReplacesStaleSocket(t *testing.T) {
	path := socketPath(t)
	if err := os.WriteFile(path, nil, 0o600); err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- NewListener(path, newTestBackground(t, newBackend(), nil), nil).Serve(ctx) }()

	waitFor(t, "socket", func() bool {
		conn, err := net.Dial("unix", path)
		if err == nil {
			conn.Close()
		}
		return err == nil
	})
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("socket mode = %o, want 600", perm)
	}
	cancel()
	if err := <-errc; err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("socket not removed on shutdown: %v", err)
	}
}

type fakeRemote struct {
	calls int
	delay time.Duration
}

func (f *fakeRemote) Summarize(ctx context.Context, _, _ string) (summary.Summary, error) {
	f.calls++
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return summary.Summary{}, ctx.Err()
		}
	}
	return summary.Summary{Paragraph: "remote"}, nil
}

func TestRemoteSummariesEphemeralTier(t *testing.T) {
	api := &fakeRemote{}
	r := NewRemoteSummaries(api, summary.NewEphemeral(10, time.Hour), time.Second)

	first, err := r.GetOrCreate(context.Background(), videoA, "text")
	if err != nil {
		t.Fatal(err)
	}
	second, err := r.GetOrCreate(context.Background(), videoA, "text")
	if err != nil {
		t.Fatal(err)
	}
	if api.calls != 1 {
		t.Errorf("remote calls = %d, want 1", api.calls)
	}
	if first.Source != summary.SourceStore || second.Source != summary.SourceMemory {
		t.Errorf("sources = %v, %v", first.Source, second.Source)
	}
}

func TestRemoteSummariesTimeout(t *testing.T) {
	r := NewRemoteSummaries(&fakeRemote{delay: time.Second}, nil, 20*time.Millisecond)
	_, err := r.GetOrCreate(context.Background(), videoA, "text")
	if err == nil {
		t.Fatal("expected timeout")
	}
	if got := err.Error(); !strings.Contains(got, "Summary timed out") {
		t.Errorf("error = %q", got)
	}
}
