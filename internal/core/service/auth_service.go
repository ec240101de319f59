package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/shopcore/storefront-api/internal/core/domain"
	"github.com/shopcore/storefront-api/internal/core/ports"
)

// AuthService implements sign-in, sign-up, sign-out and refresh-token rotation.
// Cookie handling stays in the transport layer; the service only decides
// which tokens are valid and which pair to hand out.
type AuthService struct {
	users       ports.UserRepository
	credentials *CredentialVerifier
	hasher      ports.PasswordHasher
	tokens      ports.TokenIssuer
	revoker     ports.TokenRevoker
	log         zerolog.Logger
	now         func() time.Time
}

// NewAuthService wires the orchestrator. A nil revoker disables revocation.
func NewAuthService(
	users ports.UserRepository,
	hasher ports.PasswordHasher,
	tokens ports.TokenIssuer,
	revoker ports.TokenRevoker,
	log zerolog.Logger,
) *AuthService {
	if revoker == nil {
		revoker = NoopRevoker{}
	}
	return &AuthService{
		users:       users,
		credentials: NewCredentialVerifier(users, hasher, log),
		hasher:      hasher,
		tokens:      tokens,
		revoker:     revoker,
		log:         log,
		now:         time.Now,
	}
}

func (s *AuthService) SignIn(ctx context.Context, email, password string) (*ports.AuthResult, error) {
	user, err := s.credentials.Validate(ctx, email, password)
	if err != nil {
		return nil, err
	}

	pair, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, err
	}

	s.log.Info().Int64("user_id", user.ID).Msg("user signed in")
	return &ports.AuthResult{User: user, Tokens: pair}, nil
}

func (s *AuthService) SignUp(ctx context.Context, in ports.SignUpInput) (*ports.AuthResult, error) {
	existing, err := s.users.FindByEmail(ctx, in.Email)
	switch {
	case err == nil && existing != nil:
		return nil, domain.ErrUserExists
	case err != nil && !errors.Is(err, domain.ErrUserNotFound):
		return nil, err
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := s.now().UTC()
	created, err := s.users.Create(ctx, &domain.User{
		Email:        in.Email,
		PasswordHash: hash,
		Name:         in.Name,
		AvatarURL:    nil,
		PhoneNumber:  nil,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return nil, err
	}

	pair, err := s.tokens.Issue(created.ID)
	if err != nil {
		return nil, err
	}

	s.log.Info().Int64("user_id", created.ID).Msg("user signed up")
	return &ports.AuthResult{User: created.WithoutPassword(), Tokens: pair}, nil
}

// SignOut checks that the refresh token still belongs to an existing user.
// The token itself stays valid until expiry unless a revoker is configured.
func (s *AuthService) SignOut(ctx context.Context, refreshToken string) error {
	claims, err := s.verifyRefresh(ctx, refreshToken)
	if err != nil {
		return err
	}

	if _, err := s.users.FindByID(ctx, claims.UserID); err != nil {
		return err
	}

	s.revoke(ctx, claims)

	s.log.Info().Int64("user_id", claims.UserID).Msg("user signed out")
	return nil
}

func (s *AuthService) RefreshTokens(ctx context.Context, refreshToken string) (*ports.AuthResult, error) {
	claims, err := s.verifyRefresh(ctx, refreshToken)
	if err != nil {
		return nil, err
	}

	user, err := s.users.FindByID(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}

	pair, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, err
	}

	s.revoke(ctx, claims)

	s.log.Debug().Int64("user_id", user.ID).Msg("tokens rotated")
	return &ports.AuthResult{User: user.WithoutPassword(), Tokens: pair}, nil
}

func (s *AuthService) verifyRefresh(ctx context.Context, refreshToken string) (*domain.TokenClaims, error) {
	if refreshToken == "" {
		return nil, domain.ErrRefreshTokenMissing
	}

	claims, err := s.tokens.VerifyRefresh(refreshToken)
	if err != nil {
		return nil, domain.ErrInvalidRefreshToken
	}

	revoked, err := s.revoker.IsRevoked(ctx, claims.TokenID)
	if err != nil {
		return nil, fmt.Errorf("revocation lookup: %w", err)
	}
	if revoked {
		return nil, domain.ErrInvalidRefreshToken
	}

	return claims, nil
}

// revoke is best effort: a failed write is logged and the request proceeds.
func (s *AuthService) revoke(ctx context.Context, claims *domain.TokenClaims) {
	ttl := claims.ExpiresAt.Sub(s.now())
	if ttl <= 0 {
		return
	}
	if err := s.revoker.Revoke(ctx, claims.TokenID, ttl); err != nil {
		s.log.Warn().Err(err).Int64("user_id", claims.UserID).Msg("failed to revoke refresh token")
	}
}
