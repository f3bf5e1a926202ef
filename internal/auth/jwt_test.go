package auth

import (
	"errors"
	"strings"
	"testing"
	"time"
)

const testSecret = "test-secret-at-least-16-chars!!"

// newTestTokenService creates a TokenService for testing.
// It uses a fixed, known secret so tests are deterministic.
func newTestTokenService(t *testing.T, opts ...Option) *TokenService {
	t.Helper()
	ts, err := NewTokenService(testSecret, 0, opts...)
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}
	return ts
}

// fakeClock is a settable time source for expiry tests.
type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time { return c.t }

// =========================================================================
// TOKEN SERVICE CONSTRUCTION TESTS
// =========================================================================

func TestNewTokenService_ShortSecret(t *testing.T) {
	_, err := NewTokenService("short", 0)
	if err == nil {
		t.Fatal("NewTokenService() should reject secrets shorter than 16 chars")
	}
}

func TestNewTokenService_EmptySecret(t *testing.T) {
	_, err := NewTokenService("", time.Hour)
	if err == nil {
		t.Fatal("NewTokenService() should reject an empty secret")
	}
}

func TestNewTokenService_DefaultTTL(t *testing.T) {
	ts := newTestTokenService(t)
	if ts.TTL() != 30*24*time.Hour {
		t.Errorf("TTL() = %v, want 720h", ts.TTL())
	}
}

// =========================================================================
// ISSUE TESTS
// =========================================================================

func TestIssue_ReturnsJWT(t *testing.T) {
	ts := newTestTokenService(t)

	token, err := ts.Issue(Claims{UserID: "user-123", Email: "ann@x.com"})
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	// JWT tokens have 3 dot-separated parts: header.payload.signature
	if got := strings.Count(token, "."); got != 2 {
		t.Errorf("Issue() token doesn't look like a JWT (expected 2 dots, got %d)", got)
	}
}

func TestIssue_RequiresUserID(t *testing.T) {
	ts := newTestTokenService(t)

	if _, err := ts.Issue(Claims{Email: "ann@x.com"}); err == nil {
		t.Fatal("Issue() should reject claims without a user id")
	}
}

func TestIssue_DeterministicForSameInstant(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	ts := newTestTokenService(t, WithClock(clock.Now))

	a, _ := ts.Issue(Claims{UserID: "u1", Email: "a@x.com"})
	b, _ := ts.Issue(Claims{UserID: "u1", Email: "a@x.com"})
	if a != b {
		t.Error("Issue() should be deterministic for identical claims, time and secret")
	}

	clock.t = clock.t.Add(time.Second)
	c, _ := ts.Issue(Claims{UserID: "u1", Email: "a@x.com"})
	if a == c {
		t.Error("Issue() should differ when the mint time differs")
	}
}

// =========================================================================
// PARSE TESTS
// =========================================================================

func TestParse_RoundTrip(t *testing.T) {
	ts := newTestTokenService(t)
	want := Claims{UserID: "user-abc-123", Email: "Ann@X.com"}

	token, err := ts.Issue(want)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	got, err := ts.Parse(token)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if *got != want {
		t.Errorf("Parse() = %+v, want %+v", *got, want)
	}
}

func TestParse_ExpiresAfterThirtyDays(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	ts := newTestTokenService(t, WithClock(clock.Now))

	token, err := ts.Issue(Claims{UserID: "user-1", Email: "a@x.com"})
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	clock.t = clock.t.Add(30*24*time.Hour - time.Minute)
	if _, err := ts.Parse(token); err != nil {
		t.Fatalf("Parse() just before expiry error = %v", err)
	}

	clock.t = clock.t.Add(2 * time.Minute)
	_, err = ts.Parse(token)
	if !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("Parse() after expiry error = %v, want ErrTokenExpired", err)
	}
}

func TestParse_TamperedToken(t *testing.T) {
	ts := newTestTokenService(t)

	token, _ := ts.Issue(Claims{UserID: "user-123"})

	// Replace the signature tail to simulate an attacker modifying the token.
	tampered := token[:len(token)-3] + "xxx"

	_, err := ts.Parse(tampered)
	if !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("Parse() error = %v, want ErrInvalidToken", err)
	}
}

func TestParse_WrongSecret(t *testing.T) {
	ts1, _ := NewTokenService("correct-secret-32-chars-long!!!!", 0)
	ts2, _ := NewTokenService("wrong-secret-32-chars-long!!!!!!", 0)

	token, _ := ts1.Issue(Claims{UserID: "user-123"})

	if _, err := ts2.Parse(token); err == nil {
		t.Fatal("Parse() should fail when using a different secret")
	}
}

func TestParse_Garbage(t *testing.T) {
	ts := newTestTokenService(t)

	for _, in := range []string{"", "not.a.jwt.token", "this.is.garbage"} {
		if _, err := ts.Parse(in); err == nil {
			t.Errorf("Parse(%q) should return an error", in)
		}
	}
}
