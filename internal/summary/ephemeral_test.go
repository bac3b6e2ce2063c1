package summary

import (
	"testing"
	"time"
)

func TestEphemeralTTL(t *testing.T) {
	e := NewEphemeral(10, time.Minute)
	clock := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	e.now = func() time.Time { return clock }

	e.Add("vid", Summary{Paragraph: "p"})
	if _, ok := e.Get("vid"); !ok {
		t.Fatal("expected fresh entry")
	}

	clock = clock.Add(2 * time.Minute)
	if _, ok := e.Get("vid"); ok {
		t.Error("expected expired entry to miss")
	}
	if e.Len() != 0 {
		t.Errorf("Len() = %d, want expired entry removed", e.Len())
	}
}

func TestEphemeralEviction(t *testing.T) {
	e := NewEphemeral(2, 0)
	e.Add("a", Summary{Paragraph: "a"})
	e.Add("b", Summary{Paragraph: "b"})
	e.Get("a")
	e.Add("c", Summary{Paragraph: "c"})

	if _, ok := e.Get("b"); ok {
		t.Error("least recently used entry should be evicted")
	}
	if _, ok := e.Get("a"); !ok {
		t.Error("recently used entry should survive")
	}
	if e.Len() != 2 {
		t.Errorf("Len() = %d, want 2", e.Len())
	}
}
