package domain

import "errors"

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid password")
	ErrPasswordNotSet     = errors.New("password not set")

	ErrInvalidToken        = errors.New("invalid token")
	ErrRefreshTokenMissing = errors.New("refresh token not found")
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
)
