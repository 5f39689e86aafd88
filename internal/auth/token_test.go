package auth

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

func newTestIssuer(t *testing.T, now time.Time) *TokenIssuer {
	t.Helper()

	issuer, err := NewTokenIssuer(testSecret, DefaultTokenTTL)
	if err != nil {
		t.Fatalf("NewTokenIssuer failed: %v", err)
	}
	return issuer.WithClock(func() time.Time { return now })
}

func TestTokenIssuer_IssueAndVerify(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 4, 1, 12, 0, 0, 0, time.UTC)
	issuer := newTestIssuer(t, now)

	token, err := issuer.Issue("01HXYZ", "ada@example.com")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	session, err := issuer.Verify(token)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}

	if session.UserID != "01HXYZ" {
		t.Errorf("UserID = %q, want %q", session.UserID, "01HXYZ")
	}
	if session.Email != "ada@example.com" {
		t.Errorf("Email = %q, want %q", session.Email, "ada@example.com")
	}
	if !session.IssuedAt.Equal(now) {
		t.Errorf("IssuedAt = %v, want %v", session.IssuedAt, now)
	}
	if !session.ExpiresAt.Equal(now.Add(7 * 24 * time.Hour)) {
		t.Errorf("ExpiresAt = %v, want issued + 7 days", session.ExpiresAt)
	}
}

func TestTokenIssuer_ExpiryBoundary(t *testing.T) {
	t.Parallel()

	issuedAt := time.Date(2025, 4, 1, 12, 0, 0, 0, time.UTC)
	token, err := newTestIssuer(t, issuedAt).Issue("user-1", "u@example.com")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	tests := []struct {
		name    string
		at      time.Time
		wantErr error
	}{
		{"at issuance", issuedAt, nil},
		{"six days later", issuedAt.Add(6 * 24 * time.Hour), nil},
		{"eight days later", issuedAt.Add(8 * 24 * time.Hour), ErrTokenExpired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := newTestIssuer(t, tt.at).Verify(token)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Verify() at %v error = %v, want %v", tt.at, err, tt.wantErr)
			}
		})
	}
}

func TestTokenIssuer_RejectsTampering(t *testing.T) {
	t.Parallel()

	now := time.Now()
	issuer := newTestIssuer(t, now)

	token, err := issuer.Issue("user-1", "u@example.com")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	other, err := NewTokenIssuer([]byte("another-secret-another-secret-00"), DefaultTokenTTL)
	if err != nil {
		t.Fatalf("NewTokenIssuer failed: %v", err)
	}

	parts := strings.Split(token, ".")
	tampered := parts[0] + "." + parts[1] + "x." + parts[2]

	none := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{
		Email: "u@example.com",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
	})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign none token: %v", err)
	}

	tests := []struct {
		name   string
		issuer *TokenIssuer
		token  string
	}{
		{"wrong secret", other, token},
		{"tampered payload", issuer, tampered},
		{"garbage", issuer, "not.a.token"},
		{"empty", issuer, ""},
		{"alg none", issuer, unsigned},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if _, err := tt.issuer.Verify(tt.token); !errors.Is(err, ErrInvalidToken) {
				t.Errorf("Verify() error = %v, want %v", err, ErrInvalidToken)
			}
		})
	}
}

func TestTokenIssuer_RequiresSubject(t *testing.T) {
	t.Parallel()

	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Email: "u@example.com",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
	})
	signed, err := token.SignedString(testSecret)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	if _, err := newTestIssuer(t, now).Verify(signed); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Verify() error = %v, want %v", err, ErrInvalidToken)
	}
}

func TestNewTokenIssuer_EmptySecret(t *testing.T) {
	t.Parallel()

	if _, err := NewTokenIssuer(nil, time.Hour); !errors.Is(err, ErrEmptySecret) {
		t.Errorf("NewTokenIssuer() error = %v, want %v", err, ErrEmptySecret)
	}
}

func TestNewTokenIssuer_DefaultTTL(t *testing.T) {
	t.Parallel()

	issuer, err := NewTokenIssuer(testSecret, 0)
	if err != nil {
		t.Fatalf("NewTokenIssuer failed: %v", err)
	}
	if issuer.TTL() != DefaultTokenTTL {
		t.Errorf("TTL() = %v, want %v", issuer.TTL(), DefaultTokenTTL)
	}
}
