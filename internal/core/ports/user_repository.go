package ports

import (
	"context"

	"github.com/shopcore/storefront-api/internal/core/domain"
)

// UserRepository defines the persistence contract for user accounts.
// Lookups, Update and Delete return domain.ErrUserNotFound when no row
// matches; Create returns domain.ErrUserExists on a duplicate email.
type UserRepository interface {
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id int64) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	Update(ctx context.Context, id int64, patch domain.UserPatch) (*domain.User, error)
	Delete(ctx context.Context, id int64) error
}
