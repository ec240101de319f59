package domain

import "time"

// TokenPair is the access/refresh bundle issued together for one user.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// TokenUse distinguishes access tokens from refresh tokens.
type TokenUse string

const (
	TokenUseAccess  TokenUse = "access"
	TokenUseRefresh TokenUse = "refresh"
)

// TokenClaims is the verified content of a signed token.
type TokenClaims struct {
	UserID    int64
	TokenID   string
	Use       TokenUse
	ExpiresAt time.Time
}
