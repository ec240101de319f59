package handler

import "github.com/shopcore/storefront-api/internal/core/domain"

type signInRequest struct {
	Email    string `json:"email" validate:"required,email" example:"jane@example.com"`
	Password string `json:"password" validate:"required,min=6" example:"secret1"`
}

type signUpRequest struct {
	Email    string `json:"email" validate:"required,email" example:"jane@example.com"`
	Password string `json:"password" validate:"required,min=6" example:"secret1"`
	Name     string `json:"name,omitempty" validate:"omitempty,max=100" example:"Jane Doe"`
}

// authResponse flattens the user and the issued tokens into one object:
// {id, email, name, ..., accessToken, refreshToken}.
type authResponse struct {
	*domain.User
	domain.TokenPair
}

type messageResponse struct {
	Message string `json:"message" example:"Logout successful"`
}
