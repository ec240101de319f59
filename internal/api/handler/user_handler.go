package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/shopcore/storefront-api/internal/api/metrics"
	"github.com/shopcore/storefront-api/internal/api/session"
	"github.com/shopcore/storefront-api/internal/core/ports"
)

type UserHandler struct {
	userService ports.UserService
	cookies     *session.CookieManager
}

func NewUserHandler(userService ports.UserService, cookies *session.CookieManager) *UserHandler {
	return &UserHandler{userService: userService, cookies: cookies}
}

// Me returns the authenticated user.
//
// @Summary      Current user
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  domain.User
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /users/me [get]
func (h *UserHandler) Me(c echo.Context) error {
	id, err := ctxUserID(c)
	if err != nil {
		return err
	}

	user, err := h.userService.GetMe(c.Request().Context(), id)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, user)
}

// UpdateMe changes the authenticated user's name, avatar or phone number.
//
// @Summary      Update current user
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      updateMeRequest  true  "Profile fields to change"
// @Success      200   {object}  domain.User
// @Failure      400   {object}  ValidationErrorResponse
// @Failure      401   {object}  ErrorResponse
// @Failure      404   {object}  ErrorResponse
// @Router       /users/me [patch]
func (h *UserHandler) UpdateMe(c echo.Context) error {
	id, err := ctxUserID(c)
	if err != nil {
		return err
	}

	var req updateMeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	user, err := h.userService.UpdateMe(c.Request().Context(), id, req.toPatch())
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, user)
}

// DeleteMe removes the authenticated user's account and drops the session cookie.
//
// @Summary      Delete current user
// @Tags         users
// @Security     BearerAuth
// @Success      204
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /users/me [delete]
func (h *UserHandler) DeleteMe(c echo.Context) error {
	id, err := ctxUserID(c)
	if err != nil {
		return err
	}

	if err := h.userService.DeleteMe(c.Request().Context(), id); err != nil {
		return err
	}

	h.cookies.Clear(c.Response())
	metrics.UsersDeletedTotal.Inc()

	return c.NoContent(http.StatusNoContent)
}
