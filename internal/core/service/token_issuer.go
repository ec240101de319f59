package service

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/shopcore/storefront-api/internal/core/domain"
)

const (
	defaultAccessTTL  = time.Hour
	defaultRefreshTTL = 7 * 24 * time.Hour
)

var ErrMisconfigured = errors.New("token issuer config invalid")

// TokenConfig holds the signing key and the raw expiration strings.
// Empty expirations fall back to 1h (access) and 7d (refresh).
type TokenConfig struct {
	Secret            string
	AccessExpiration  string
	RefreshExpiration string
}

// TokenIssuer signs HS256 JWTs carrying {id: userID}.
type TokenIssuer struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

type tokenClaims struct {
	ID  int64           `json:"id"`
	Use domain.TokenUse `json:"use"`
	jwt.RegisteredClaims
}

func NewTokenIssuer(cfg TokenConfig) (*TokenIssuer, error) {
	if cfg.Secret == "" {
		return nil, fmt.Errorf("%w: JWT_SECRET is required", ErrMisconfigured)
	}

	accessTTL, err := ParseExpiration(cfg.AccessExpiration, defaultAccessTTL)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid JWT_EXPIRATION: %v", ErrMisconfigured, err)
	}

	refreshTTL, err := ParseExpiration(cfg.RefreshExpiration, defaultRefreshTTL)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid JWT_REFRESH_EXPIRATION: %v", ErrMisconfigured, err)
	}

	return &TokenIssuer{
		secret:     []byte(cfg.Secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}, nil
}

// Issue signs an access and a refresh token for the same user id.
func (t *TokenIssuer) Issue(userID int64) (domain.TokenPair, error) {
	access, err := t.sign(userID, domain.TokenUseAccess, t.accessTTL)
	if err != nil {
		return domain.TokenPair{}, fmt.Errorf("sign access token: %w", err)
	}

	refresh, err := t.sign(userID, domain.TokenUseRefresh, t.refreshTTL)
	if err != nil {
		return domain.TokenPair{}, fmt.Errorf("sign refresh token: %w", err)
	}

	return domain.TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func (t *TokenIssuer) VerifyAccess(token string) (*domain.TokenClaims, error) {
	return t.verify(token, domain.TokenUseAccess)
}

func (t *TokenIssuer) VerifyRefresh(token string) (*domain.TokenClaims, error) {
	return t.verify(token, domain.TokenUseRefresh)
}

func (t *TokenIssuer) sign(userID int64, use domain.TokenUse, ttl time.Duration) (string, error) {
	now := t.now()
	claims := tokenClaims{
		ID:  userID,
		Use: use,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
}

func (t *TokenIssuer) verify(token string, use domain.TokenUse) (*domain.TokenClaims, error) {
	claims := &tokenClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return t.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil || !parsed.Valid {
		return nil, domain.ErrInvalidToken
	}
	if claims.Use != use || claims.ID == 0 {
		return nil, domain.ErrInvalidToken
	}

	return &domain.TokenClaims{
		UserID:    claims.ID,
		TokenID:   claims.RegisteredClaims.ID,
		Use:       claims.Use,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// Largest lifetimes that still fit in a time.Duration.
const (
	maxExpirationSeconds = math.MaxInt64 / int64(time.Second)
	maxExpirationDays    = float64(math.MaxInt64) / float64(24*time.Hour)
)

// ParseExpiration reads a token lifetime. It accepts Go durations ("90m"),
// a day suffix ("7d") and bare integers, which count seconds.
// An empty value yields fallback.
func ParseExpiration(value string, fallback time.Duration) (time.Duration, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return fallback, nil
	}

	if n, err := strconv.ParseInt(value, 10, 64); err == nil {
		if n <= 0 {
			return 0, fmt.Errorf("expiration must be positive: %q", value)
		}
		if n > maxExpirationSeconds {
			return 0, fmt.Errorf("expiration too large: %q", value)
		}
		return time.Duration(n) * time.Second, nil
	}

	if days, ok := strings.CutSuffix(value, "d"); ok {
		n, err := strconv.ParseFloat(days, 64)
		if err != nil || math.IsNaN(n) || n <= 0 {
			return 0, fmt.Errorf("invalid day expiration: %q", value)
		}
		if n >= maxExpirationDays {
			return 0, fmt.Errorf("expiration too large: %q", value)
		}
		d := time.Duration(n * float64(24*time.Hour))
		if d <= 0 {
			return 0, fmt.Errorf("expiration must be positive: %q", value)
		}
		return d, nil
	}

	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, fmt.Errorf("expiration must be positive: %q", value)
	}
	return d, nil
}
