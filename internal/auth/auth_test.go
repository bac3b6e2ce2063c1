package auth

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rtzll/transcriptgrab/internal/apperr"
)

func TestIssueVerify(t *testing.T) {
	iss, err := NewIssuer("secret", time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	tok, err := iss.Issue("alice")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	got, err := iss.Verify(tok)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if got != "alice" {
		t.Errorf("Verify() = %q, want alice", got)
	}
}

func TestVerifyRejects(t *testing.T) {
	iss, _ := NewIssuer("secret", time.Hour)
	other, _ := NewIssuer("different", time.Hour)
	forged, _ := other.Issue("alice")

	expiredIss, _ := NewIssuer("secret", time.Minute)
	expiredIss.now = func() time.Time { return time.Now().Add(-time.Hour) }
	expired, _ := expiredIss.Issue("alice")

	for name, tok := range map[string]string{
		"empty":   "",
		"garbage": "not-a-token",
		"forged":  forged,
		"expired": expired,
	} {
		if _, err := iss.Verify(tok); !apperr.Is(err, apperr.KindAuth) {
			t.Errorf("%s: err = %v, want auth error", name, err)
		}
	}
}

func TestNewIssuerRequiresSecret(t *testing.T) {
	if _, err := NewIssuer("", time.Hour); err != ErrNoSecret {
		t.Errorf("err = %v, want ErrNoSecret", err)
	}
}

func TestTokenFromRequest(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	if got := TokenFromRequest(r); got != "" {
		t.Errorf("no credentials: got %q", got)
	}

	r.Header.Set("Authorization", "bearer abc")
	if got := TokenFromRequest(r); got != "abc" {
		t.Errorf("bearer: got %q", got)
	}

	r.Header.Set("Cookie", CookieName+"=fromcookie")
	if got := TokenFromRequest(r); got != "fromcookie" {
		t.Errorf("cookie should win, got %q", got)
	}
}

func TestUserIDContext(t *testing.T) {
	ctx := WithUserID(context.Background(), "bob")
	if got := UserID(ctx); got != "bob" {
		t.Errorf("UserID() = %q", got)
	}
	if got := UserID(context.Background()); got != "" {
		t.Errorf("UserID(empty) = %q", got)
	}
}
