package summary

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rtzll/transcriptgrab/internal/apperr"
)

type fakeGenerator struct {
	calls atomic.Int32
	delay time.Duration
	err   error
	out   Summary
	input atomic.Value
}

func (g *fakeGenerator) Summarize(ctx context.Context, text string) (Summary, error) {
	g.calls.Add(1)
	g.input.Store(text)
	if g.delay > 0 {
		select {
		case <-time.After(g.delay):
		case <-ctx.Done():
			return Summary{}, ctx.Err()
		}
	}
	if g.err != nil {
		return Summary{}, g.err
	}
	return g.out, nil
}

type memStore struct {
	mu        sync.Mutex
	rows      map[string]Summary
	lookupErr error
	insertErr error
}

func newMemStore() *memStore { return &memStore{rows: map[string]Summary{}} }

func (m *memStore) LookupSummary(_ context.Context, videoID string) (Summary, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.lookupErr != nil {
		return Summary{}, false, m.lookupErr
	}
	s, ok := m.rows[videoID]
	return s, ok, nil
}

func (m *memStore) InsertSummary(_ context.Context, videoID string, s Summary) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.insertErr != nil {
		return false, m.insertErr
	}
	if _, ok := m.rows[videoID]; ok {
		return false, nil
	}
	m.rows[videoID] = s
	return true, nil
}

var sample = Summary{Bullets: "- a", Paragraph: "p"}

func TestGetOrCreateGeneratesOnce(t *testing.T) {
	gen := &fakeGenerator{out: sample}
	store := newMemStore()
	c := NewCache(gen, WithStore(store))
	ctx := context.Background()

	first, err := c.GetOrCreate(ctx, "vid", "some text")
	if err != nil {
		t.Fatalf("first GetOrCreate: %v", err)
	}
	if first.Source != SourceGenerated || first.Summary != sample {
		t.Errorf("first = %+v", first)
	}

	second, err := c.GetOrCreate(ctx, "vid", "some text")
	if err != nil {
		t.Fatalf("second GetOrCreate: %v", err)
	}
	if second.Source != SourceStore || second.Summary != sample {
		t.Errorf("second = %+v", second)
	}
	if n := gen.calls.Load(); n != 1 {
		t.Errorf("generator called %d times, want 1", n)
	}
}

func TestGetOrCreateEphemeralTierFirst(t *testing.T) {
	gen := &fakeGenerator{out: sample}
	store := newMemStore()
	c := NewCache(gen, WithStore(store), WithEphemeral(NewEphemeral(10, time.Hour)))
	ctx := context.Background()

	if _, err := c.GetOrCreate(ctx, "vid", "text"); err != nil {
		t.Fatal(err)
	}
	store.lookupErr = errors.New("store should not be consulted")

	got, err := c.GetOrCreate(ctx, "vid", "")
	if err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}
	if got.Source != SourceMemory {
		t.Errorf("Source = %s, want %s", got.Source, SourceMemory)
	}
}

func TestGetOrCreateConcurrentMissesShareGeneration(t *testing.T) {
	gen := &fakeGenerator{out: sample, delay: 50 * time.Millisecond}
	c := NewCache(gen, WithStore(newMemStore()))

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := c.GetOrCreate(context.Background(), "vid", "text"); err != nil {
				t.Errorf("GetOrCreate: %v", err)
			}
		}()
	}
	wg.Wait()

	if n := gen.calls.Load(); n != 1 {
		t.Errorf("generator called %d times, want 1", n)
	}
}

func TestGetOrCreateTimeout(t *testing.T) {
	gen := &fakeGenerator{out: sample, delay: time.Second}
	store := newMemStore()
	c := NewCache(gen, WithStore(store), WithTimeout(20*time.Millisecond))

	_, err := c.GetOrCreate(context.Background(), "vid", "text")
	if !apperr.Is(err, apperr.KindTimeout) {
		t.Fatalf("err = %v, want timeout", err)
	}
	if _, ok, _ := store.LookupSummary(context.Background(), "vid"); ok {
		t.Error("nothing should be persisted after a timeout")
	}
}

func TestGetOrCreateRateLimitPassesThrough(t *testing.T) {
	gen := &fakeGenerator{err: apperr.New(apperr.KindRateLimit, "RATE_LIMITED", "Summary temporarily unavailable")}
	c := NewCache(gen)

	_, err := c.GetOrCreate(context.Background(), "vid", "text")
	if !apperr.Is(err, apperr.KindRateLimit) {
		t.Fatalf("err = %v, want rate limit", err)
	}
	if _, err := c.GetOrCreate(context.Background(), "vid", "text"); err == nil {
		t.Fatal("expected the second call to fail too")
	}
	if n := gen.calls.Load(); n != 2 {
		t.Errorf("generator called %d times, want one per request", n)
	}
}

func TestGetOrCreatePersistFailureStillReturns(t *testing.T) {
	gen := &fakeGenerator{out: sample}
	store := newMemStore()
	store.insertErr = errors.New("disk full")
	c := NewCache(gen, WithStore(store))

	got, err := c.GetOrCreate(context.Background(), "vid", "text")
	if err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}
	if got.Summary != sample {
		t.Errorf("Summary = %+v", got.Summary)
	}
}

func TestGetOrCreateLookupFailureGenerates(t *testing.T) {
	gen := &fakeGenerator{out: sample}
	store := newMemStore()
	store.lookupErr = errors.New("connection refused")
	c := NewCache(gen, WithStore(store))

	got, err := c.GetOrCreate(context.Background(), "vid", "text")
	if err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}
	if got.Source != SourceGenerated {
		t.Errorf("Source = %s", got.Source)
	}
}

func TestGetOrCreateTruncates(t *testing.T) {
	gen := &fakeGenerator{out: sample}
	c := NewCache(gen, WithMaxChars(5))

	if _, err := c.GetOrCreate(context.Background(), "vid", strings.Repeat("x", 50)); err != nil {
		t.Fatal(err)
	}
	if got := gen.input.Load().(string); got != "xxxxx" {
		t.Errorf("generator input = %q, want truncated", got)
	}
}

func TestGetOrCreateValidation(t *testing.T) {
	c := NewCache(&fakeGenerator{out: sample})
	if _, err := c.GetOrCreate(context.Background(), " ", "text"); !apperr.Is(err, apperr.KindValidation) {
		t.Errorf("missing video id: err = %v", err)
	}
	if _, err := c.GetOrCreate(context.Background(), "vid", ""); !apperr.Is(err, apperr.KindValidation) {
		t.Errorf("missing text: err = %v", err)
	}
}

func TestGetOrCreateEmptySummary(t *testing.T) {
	c := NewCache(&fakeGenerator{})
	if _, err := c.GetOrCreate(context.Background(), "vid", "text"); !apperr.Is(err, apperr.KindUpstream) {
		t.Errorf("err = %v, want upstream", err)
	}
}

type fakeCompleter struct {
	system, user string
	reply        string
}

func (f *fakeCompleter) Complete(_ context.Context, system, user string) (string, error) {
	f.system, f.user = system, user
	return f.reply, nil
}

func TestLLMGenerator(t *testing.T) {
	fc := &fakeCompleter{reply: "BULLETS:\n- x\nPARAGRAPH:\ny"}
	g := NewLLMGenerator(fc, "system prompt")

	got, err := g.Summarize(context.Background(), "transcript text")
	if err != nil {
		t.Fatal(err)
	}
	if got != (Summary{Bullets: "- x", Paragraph: "y"}) {
		t.Errorf("Summarize() = %+v", got)
	}
	if fc.system != "system prompt" || fc.user != "transcript text" {
		t.Errorf("completer saw system=%q user=%q", fc.system, fc.user)
	}
}

func TestLLMGeneratorUserMessage(t *testing.T) {
	fc := &fakeCompleter{reply: "just prose"}
	g := NewLLMGenerator(fc, "sys").WithUserMessage(func(text string) (string, error) {
		return "tldr: " + text, nil
	})

	got, err := g.Summarize(context.Background(), "words")
	if err != nil {
		t.Fatal(err)
	}
	if fc.user != "tldr: words" {
		t.Errorf("user message = %q", fc.user)
	}
	if got.Paragraph != "just prose" {
		t.Errorf("Summarize() = %+v", got)
	}
}
