package domain

import "time"

// User models a registered storefront account.
type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Name         string    `json:"name"`
	AvatarURL    *string   `json:"avatarUrl"`
	PhoneNumber  *string   `json:"phoneNumber"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// HasPassword reports whether a password hash is configured for the account.
func (u *User) HasPassword() bool {
	return u.PasswordHash != ""
}

// WithoutPassword returns a copy of u with the password hash removed.
func (u *User) WithoutPassword() *User {
	if u == nil {
		return nil
	}
	clone := *u
	clone.PasswordHash = ""
	return &clone
}

// UserPatch lists the profile fields to change. Nil fields are left as they
// are; an empty AvatarURL or PhoneNumber clears the stored value.
type UserPatch struct {
	Name         *string
	AvatarURL    *string
	PhoneNumber  *string
	PasswordHash *string
	UpdatedAt    time.Time
}
