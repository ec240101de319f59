package ports

import (
	"context"
	"time"

	"github.com/shopcore/storefront-api/internal/core/domain"
)

// TokenIssuer mints and verifies signed access/refresh tokens.
type TokenIssuer interface {
	Issue(userID int64) (domain.TokenPair, error)
	VerifyAccess(token string) (*domain.TokenClaims, error)
	VerifyRefresh(token string) (*domain.TokenClaims, error)
}

// AccessVerifier is the subset of TokenIssuer needed by the bearer middleware.
type AccessVerifier interface {
	VerifyAccess(token string) (*domain.TokenClaims, error)
}

// TokenRevoker records refresh tokens that must no longer be accepted.
type TokenRevoker interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// PasswordHasher is the password hashing capability. NeedsRehash reports
// whether a stored hash predates the current parameters.
type PasswordHasher interface {
	Hash(plain string) (string, error)
	Verify(hash, plain string) (bool, error)
	NeedsRehash(hash string) bool
}
