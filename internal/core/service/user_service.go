package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/shopcore/storefront-api/internal/core/domain"
	"github.com/shopcore/storefront-api/internal/core/ports"
)

type UserService struct {
	users ports.UserRepository
	log   zerolog.Logger
	now   func() time.Time
}

func NewUserService(users ports.UserRepository, log zerolog.Logger) *UserService {
	return &UserService{users: users, log: log, now: time.Now}
}

// GetMe returns the caller's account without its password hash.
func (s *UserService) GetMe(ctx context.Context, id int64) (*domain.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return user.WithoutPassword(), nil
}

// UpdateMe changes the caller's profile fields. The password hash cannot be
// set through this path.
func (s *UserService) UpdateMe(ctx context.Context, id int64, patch domain.UserPatch) (*domain.User, error) {
	patch.PasswordHash = nil
	patch.UpdatedAt = s.now().UTC()

	user, err := s.users.Update(ctx, id, patch)
	if err != nil {
		return nil, err
	}
	s.log.Info().Int64("user_id", id).Msg("user updated")
	return user.WithoutPassword(), nil
}

// DeleteMe removes the caller's account. Tokens already issued for it fail
// on their next use because the user lookup no longer matches.
func (s *UserService) DeleteMe(ctx context.Context, id int64) error {
	if err := s.users.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info().Int64("user_id", id).Msg("user deleted")
	return nil
}
