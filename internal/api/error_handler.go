package api

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/shopcore/storefront-api/internal/api/handler"
	"github.com/shopcore/storefront-api/internal/core/domain"
)

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps known domain errors to their HTTP status codes.
//   - Renders validation failures with the list of offending fields.
//   - Logs unexpected errors internally without leaking details to the client.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		now := time.Now().UTC()

		var ve *handler.ValidationError
		if errors.As(err, &ve) {
			_ = c.JSON(http.StatusBadRequest, handler.ValidationErrorResponse{
				StatusCode: http.StatusBadRequest,
				Message:    "Validation failed",
				Errors:     ve.Fields,
				Timestamp:  now,
			})
			return
		}

		code, msg := resolveError(err, log, c)
		_ = c.JSON(code, handler.ErrorResponse{
			StatusCode: code,
			Message:    msg,
			Error:      http.StatusText(code),
			Timestamp:  now,
			Path:       c.Request().URL.Path,
		})
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string) {
	// Echo's own errors (bind failures, 404 from router, middleware rejections).
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, fmt.Sprintf("%v", he.Message)
	}

	switch {
	case errors.Is(err, domain.ErrUserNotFound):
		return http.StatusNotFound, "user not found"
	case errors.Is(err, domain.ErrUserExists):
		return http.StatusBadRequest, "user already exists"
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, "invalid password"
	case errors.Is(err, domain.ErrPasswordNotSet):
		return http.StatusUnauthorized, "password not set"
	case errors.Is(err, domain.ErrRefreshTokenMissing):
		return http.StatusUnauthorized, "refresh token not found"
	case errors.Is(err, domain.ErrInvalidRefreshToken):
		return http.StatusUnauthorized, "invalid refresh token"
	case errors.Is(err, domain.ErrInvalidToken):
		return http.StatusUnauthorized, "invalid token"
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, "internal server error"
}
