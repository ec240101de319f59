package ports

import (
	"context"

	"github.com/shopcore/storefront-api/internal/core/domain"
)

// AuthResult is the user (without password) and the token pair issued for it.
type AuthResult struct {
	User   *domain.User
	Tokens domain.TokenPair
}

// SignUpInput carries the registration payload. Name is optional.
type SignUpInput struct {
	Email    string
	Password string
	Name     string
}

type AuthService interface {
	SignIn(ctx context.Context, email, password string) (*AuthResult, error)
	SignUp(ctx context.Context, input SignUpInput) (*AuthResult, error)
	SignOut(ctx context.Context, refreshToken string) error
	RefreshTokens(ctx context.Context, refreshToken string) (*AuthResult, error)
}

// UserService exposes the account operations available to the owner of an access token.
type UserService interface {
	GetMe(ctx context.Context, id int64) (*domain.User, error)
	UpdateMe(ctx context.Context, id int64, patch domain.UserPatch) (*domain.User, error)
	DeleteMe(ctx context.Context, id int64) error
}
