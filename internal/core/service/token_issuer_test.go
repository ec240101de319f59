package service

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/shopcore/storefront-api/internal/core/domain"
)

func TestTokenIssuer_IssueRoundTrip(t *testing.T) {
	issuer := testIssuer(t)

	pair, err := issuer.Issue(42)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if pair.AccessToken == pair.RefreshToken {
		t.Fatalf("access and refresh token must differ")
	}

	access, err := issuer.VerifyAccess(pair.AccessToken)
	if err != nil {
		t.Fatalf("VerifyAccess: %v", err)
	}
	refresh, err := issuer.VerifyRefresh(pair.RefreshToken)
	if err != nil {
		t.Fatalf("VerifyRefresh: %v", err)
	}
	if access.UserID != 42 || refresh.UserID != 42 {
		t.Fatalf("expected both tokens to carry id 42, got %d / %d", access.UserID, refresh.UserID)
	}
	if access.TokenID == refresh.TokenID {
		t.Fatalf("each token needs its own jti")
	}
	if !refresh.ExpiresAt.After(access.ExpiresAt) {
		t.Fatalf("refresh token should outlive access token")
	}
}

func TestTokenIssuer_PairsDifferWithinSameSecond(t *testing.T) {
	issuer := testIssuer(t)
	fixed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	issuer.now = func() time.Time { return fixed }

	first, _ := issuer.Issue(7)
	second, _ := issuer.Issue(7)
	if first == second {
		t.Fatalf("pairs minted at the same instant must differ")
	}
}

func TestTokenIssuer_RejectsWrongUse(t *testing.T) {
	issuer := testIssuer(t)
	pair, _ := issuer.Issue(1)

	if _, err := issuer.VerifyRefresh(pair.AccessToken); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("access token accepted as refresh: %v", err)
	}
	if _, err := issuer.VerifyAccess(pair.RefreshToken); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("refresh token accepted as access: %v", err)
	}
}

func TestTokenIssuer_RejectsForeignSignature(t *testing.T) {
	issuer := testIssuer(t)
	other, err := NewTokenIssuer(TokenConfig{Secret: "another-secret"})
	if err != nil {
		t.Fatalf("issuer: %v", err)
	}
	pair, _ := other.Issue(1)

	if _, err := issuer.VerifyAccess(pair.AccessToken); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestTokenIssuer_RejectsExpired(t *testing.T) {
	issuer := testIssuer(t)
	pair, _ := issuer.Issue(1)

	issuer.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	if _, err := issuer.VerifyAccess(pair.AccessToken); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected expired access token to fail, got %v", err)
	}
	if _, err := issuer.VerifyRefresh(pair.RefreshToken); err != nil {
		t.Fatalf("refresh token should still be valid: %v", err)
	}
}

func TestTokenIssuer_RejectsOtherAlgorithms(t *testing.T) {
	issuer := testIssuer(t)

	claims := tokenClaims{
		ID:  1,
		Use: domain.TokenUseAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	if _, err := issuer.VerifyAccess(token); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected HS512 token to be rejected, got %v", err)
	}
}

func TestTokenIssuer_RequiresExpiry(t *testing.T) {
	issuer := testIssuer(t)

	claims := tokenClaims{ID: 1, Use: domain.TokenUseAccess}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	if _, err := issuer.VerifyAccess(token); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected token without exp to be rejected, got %v", err)
	}
}

func TestNewTokenIssuer_Misconfigured(t *testing.T) {
	tests := []struct {
		name string
		cfg  TokenConfig
	}{
		{name: "missing secret", cfg: TokenConfig{}},
		{name: "bad access ttl", cfg: TokenConfig{Secret: "s", AccessExpiration: "soon"}},
		{name: "negative refresh ttl", cfg: TokenConfig{Secret: "s", RefreshExpiration: "-5m"}},
		{name: "overflowing access ttl", cfg: TokenConfig{Secret: "s", AccessExpiration: "10000000000"}},
		{name: "overflowing refresh ttl", cfg: TokenConfig{Secret: "s", RefreshExpiration: "300000d"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewTokenIssuer(tt.cfg); !errors.Is(err, ErrMisconfigured) {
				t.Fatalf("expected ErrMisconfigured, got %v", err)
			}
		})
	}
}

func TestNewTokenIssuer_Defaults(t *testing.T) {
	issuer := testIssuer(t)
	if issuer.accessTTL != time.Hour {
		t.Fatalf("expected 1h access ttl, got %v", issuer.accessTTL)
	}
	if issuer.refreshTTL != 7*24*time.Hour {
		t.Fatalf("expected 7d refresh ttl, got %v", issuer.refreshTTL)
	}
}

func TestParseExpiration(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Duration
		wantErr bool
	}{
		{in: "", want: time.Minute},
		{in: "3600", want: time.Hour},
		{in: "7d", want: 7 * 24 * time.Hour},
		{in: "0.5d", want: 12 * time.Hour},
		{in: "90m", want: 90 * time.Minute},
		{in: " 1h ", want: time.Hour},
		{in: "0", wantErr: true},
		{in: "-1h", wantErr: true},
		{in: "xd", wantErr: true},
		{in: "forever", wantErr: true},
		{in: "NaNd", wantErr: true},
		{in: "10000000000", wantErr: true},
		{in: "300000d", wantErr: true},
		{in: "9223372036", want: 9223372036 * time.Second},
	}

	for _, tt := range tests {
		got, err := ParseExpiration(tt.in, time.Minute)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseExpiration(%q) expected error, got %v", tt.in, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseExpiration(%q) unexpected error: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseExpiration(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
