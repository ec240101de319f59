package handler

import "time"

// ErrorResponse is the envelope returned for every failed request.
type ErrorResponse struct {
	StatusCode int       `json:"statusCode" example:"401"`
	Message    string    `json:"message" example:"invalid password"`
	Error      string    `json:"error" example:"Unauthorized"`
	Timestamp  time.Time `json:"timestamp"`
	Path       string    `json:"path" example:"/api/v1/auth/sign-in"`
}

// ValidationErrorResponse is returned when a request body fails validation.
type ValidationErrorResponse struct {
	StatusCode int       `json:"statusCode" example:"400"`
	Message    string    `json:"message" example:"Validation failed"`
	Errors     []string  `json:"errors"`
	Timestamp  time.Time `json:"timestamp"`
}
