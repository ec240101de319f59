package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/shopcore/storefront-api/internal/api/metrics"
	"github.com/shopcore/storefront-api/internal/api/session"
	"github.com/shopcore/storefront-api/internal/core/domain"
	"github.com/shopcore/storefront-api/internal/core/ports"
)

const (
	opSignIn        = "sign_in"
	opSignUp        = "sign_up"
	opSignOut       = "sign_out"
	opRefreshTokens = "refresh_tokens"
)

type AuthHandler struct {
	authService ports.AuthService
	cookies     *session.CookieManager
}

func NewAuthHandler(authService ports.AuthService, cookies *session.CookieManager) *AuthHandler {
	return &AuthHandler{authService: authService, cookies: cookies}
}

// SignIn authenticates a user and starts a session.
//
// @Summary      Sign in
// @Description  Returns the user with a fresh token pair and sets the refresh-token cookie.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      signInRequest  true  "Credentials"
// @Success      200   {object}  authResponse
// @Failure      400   {object}  ValidationErrorResponse
// @Failure      401   {object}  ErrorResponse
// @Failure      404   {object}  ErrorResponse
// @Router       /auth/sign-in [post]
func (h *AuthHandler) SignIn(c echo.Context) (err error) {
	defer track(opSignIn, time.Now(), &err)

	var req signInRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	res, err := h.authService.SignIn(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return err
	}

	h.cookies.Clear(c.Response())
	h.cookies.Attach(c.Response(), res.Tokens.RefreshToken)
	metrics.TokenPairsIssuedTotal.Inc()

	return c.JSON(http.StatusOK, authResponse{User: res.User, TokenPair: res.Tokens})
}

// SignUp creates an account and starts a session.
//
// @Summary      Sign up
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      signUpRequest  true  "Account details"
// @Success      200   {object}  authResponse
// @Failure      400   {object}  ErrorResponse
// @Router       /auth/sign-up [post]
func (h *AuthHandler) SignUp(c echo.Context) (err error) {
	defer track(opSignUp, time.Now(), &err)

	var req signUpRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	res, err := h.authService.SignUp(c.Request().Context(), ports.SignUpInput{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
	})
	if err != nil {
		return err
	}

	h.cookies.Attach(c.Response(), res.Tokens.RefreshToken)
	metrics.TokenPairsIssuedTotal.Inc()

	return c.JSON(http.StatusOK, authResponse{User: res.User, TokenPair: res.Tokens})
}

// SignOut ends the session bound to the refresh-token cookie.
//
// @Summary      Sign out
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  messageResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /auth/sign-out [post]
func (h *AuthHandler) SignOut(c echo.Context) (err error) {
	defer track(opSignOut, time.Now(), &err)

	if err := h.authService.SignOut(c.Request().Context(), h.cookies.Read(c.Request())); err != nil {
		return err
	}

	h.cookies.Clear(c.Response())

	return c.JSON(http.StatusOK, messageResponse{Message: "Logout successful"})
}

// RefreshTokens rotates the token pair using the refresh-token cookie.
//
// @Summary      Refresh tokens
// @Tags         auth
// @Produce      json
// @Success      200  {object}  authResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /auth/refresh-tokens [post]
func (h *AuthHandler) RefreshTokens(c echo.Context) (err error) {
	defer track(opRefreshTokens, time.Now(), &err)

	refreshToken := h.cookies.Read(c.Request())
	if refreshToken == "" {
		h.cookies.Clear(c.Response())
		return domain.ErrRefreshTokenMissing
	}

	res, err := h.authService.RefreshTokens(c.Request().Context(), refreshToken)
	if err != nil {
		return err
	}

	h.cookies.Attach(c.Response(), res.Tokens.RefreshToken)
	metrics.TokenPairsIssuedTotal.Inc()

	return c.JSON(http.StatusOK, authResponse{User: res.User, TokenPair: res.Tokens})
}

func track(operation string, start time.Time, err *error) {
	result := metrics.ResultSuccess
	if *err != nil {
		result = metrics.ResultFailure
	}
	metrics.AuthRequestsTotal.WithLabelValues(operation, result).Inc()
	metrics.AuthRequestDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}
