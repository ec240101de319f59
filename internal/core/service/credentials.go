package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/shopcore/storefront-api/internal/core/domain"
	"github.com/shopcore/storefront-api/internal/core/ports"
)

// CredentialVerifier checks a plaintext password against the stored hash.
type CredentialVerifier struct {
	users  ports.UserRepository
	hasher ports.PasswordHasher
	log    zerolog.Logger
	now    func() time.Time
}

func NewCredentialVerifier(users ports.UserRepository, hasher ports.PasswordHasher, log zerolog.Logger) *CredentialVerifier {
	return &CredentialVerifier{users: users, hasher: hasher, log: log, now: time.Now}
}

// Validate returns the account matching email, without its password hash.
// Hashes made with weaker parameters or by bcrypt are replaced on success.
func (v *CredentialVerifier) Validate(ctx context.Context, email, password string) (*domain.User, error) {
	user, err := v.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	if !user.HasPassword() {
		return nil, domain.ErrPasswordNotSet
	}

	ok, err := v.hasher.Verify(user.PasswordHash, password)
	if err != nil {
		return nil, fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		return nil, domain.ErrInvalidCredentials
	}

	if v.hasher.NeedsRehash(user.PasswordHash) {
		v.rehash(ctx, user.ID, password)
	}

	return user.WithoutPassword(), nil
}

// rehash is best effort: sign-in succeeds even if the new hash is not stored.
func (v *CredentialVerifier) rehash(ctx context.Context, id int64, password string) {
	hash, err := v.hasher.Hash(password)
	if err != nil {
		v.log.Warn().Err(err).Int64("user_id", id).Msg("failed to rehash password")
		return
	}
	if _, err := v.users.Update(ctx, id, domain.UserPatch{PasswordHash: &hash, UpdatedAt: v.now().UTC()}); err != nil {
		v.log.Warn().Err(err).Int64("user_id", id).Msg("failed to store rehashed password")
		return
	}
	v.log.Info().Int64("user_id", id).Msg("password hash upgraded")
}
