package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/shopcore/storefront-api/internal/api/session"
	"github.com/shopcore/storefront-api/internal/core/domain"
	"github.com/shopcore/storefront-api/internal/core/ports"
)

type stubAuthService struct {
	signInFn  func(ctx context.Context, email, password string) (*ports.AuthResult, error)
	signUpFn  func(ctx context.Context, input ports.SignUpInput) (*ports.AuthResult, error)
	signOutFn func(ctx context.Context, refreshToken string) error
	refreshFn func(ctx context.Context, refreshToken string) (*ports.AuthResult, error)
}

func (s *stubAuthService) SignIn(ctx context.Context, email, password string) (*ports.AuthResult, error) {
	return s.signInFn(ctx, email, password)
}

func (s *stubAuthService) SignUp(ctx context.Context, input ports.SignUpInput) (*ports.AuthResult, error) {
	return s.signUpFn(ctx, input)
}

func (s *stubAuthService) SignOut(ctx context.Context, refreshToken string) error {
	return s.signOutFn(ctx, refreshToken)
}

func (s *stubAuthService) RefreshTokens(ctx context.Context, refreshToken string) (*ports.AuthResult, error) {
	return s.refreshFn(ctx, refreshToken)
}

func newTestEcho() *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator()
	return e
}

func jsonRequest(method, path, body string) *http.Request {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return req
}

func sampleResult(id int64, refresh string) *ports.AuthResult {
	return &ports.AuthResult{
		User:   &domain.User{ID: id, Email: "a@b.com"},
		Tokens: domain.TokenPair{AccessToken: "access-" + refresh, RefreshToken: refresh},
	}
}

func lastCookie(t *testing.T, rec *httptest.ResponseRecorder, name string) *http.Cookie {
	t.Helper()
	var found *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			found = c
		}
	}
	if found == nil {
		t.Fatalf("cookie %q not set", name)
	}
	return found
}

func TestAuthHandler_SignIn_Success(t *testing.T) {
	e := newTestEcho()
	stub := &stubAuthService{
		signInFn: func(ctx context.Context, email, password string) (*ports.AuthResult, error) {
			if email != "a@b.com" || password != "secret1" {
				t.Fatalf("unexpected args: %s %s", email, password)
			}
			return sampleResult(1, "r1"), nil
		},
	}
	handler := NewAuthHandler(stub, session.NewCookieManager("", "development", ""))

	rec := httptest.NewRecorder()
	c := e.NewContext(jsonRequest(http.MethodPost, "/auth/sign-in", `{"email":"a@b.com","password":"secret1"}`), rec)

	if err := handler.SignIn(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["id"] != float64(1) || resp["email"] != "a@b.com" {
		t.Fatalf("unexpected user payload: %+v", resp)
	}
	if resp["accessToken"] != "access-r1" || resp["refreshToken"] != "r1" {
		t.Fatalf("unexpected tokens: %+v", resp)
	}
	if _, ok := resp["password"]; ok {
		t.Fatalf("password must not be serialised")
	}

	cookies := rec.Result().Cookies()
	if len(cookies) != 2 || cookies[0].Value != "" {
		t.Fatalf("expected clear then attach, got %+v", cookies)
	}
	if c := lastCookie(t, rec, "refreshToken"); c.Value != "r1" || !c.HttpOnly {
		t.Fatalf("unexpected refresh cookie: %+v", c)
	}
}

func TestAuthHandler_SignIn_ValidationFails(t *testing.T) {
	e := newTestEcho()
	stub := &stubAuthService{
		signInFn: func(ctx context.Context, email, password string) (*ports.AuthResult, error) {
			t.Fatalf("service must not be called")
			return nil, nil
		},
	}
	handler := NewAuthHandler(stub, session.NewCookieManager("", "development", ""))

	c := e.NewContext(jsonRequest(http.MethodPost, "/auth/sign-in", `{"email":"not-an-email","password":"123"}`), httptest.NewRecorder())

	err := handler.SignIn(c)
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if len(ve.Fields) != 2 {
		t.Fatalf("expected 2 field errors, got %v", ve.Fields)
	}
	if !strings.HasPrefix(ve.Fields[0], "email ") || !strings.HasPrefix(ve.Fields[1], "password ") {
		t.Fatalf("expected json field names, got %v", ve.Fields)
	}
}

func TestAuthHandler_SignIn_ServiceError(t *testing.T) {
	e := newTestEcho()
	stub := &stubAuthService{
		signInFn: func(ctx context.Context, email, password string) (*ports.AuthResult, error) {
			return nil, domain.ErrInvalidCredentials
		},
	}
	handler := NewAuthHandler(stub, session.NewCookieManager("", "development", ""))

	rec := httptest.NewRecorder()
	c := e.NewContext(jsonRequest(http.MethodPost, "/auth/sign-in", `{"email":"a@b.com","password":"wrong-pass"}`), rec)

	if err := handler.SignIn(c); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if len(rec.Result().Cookies()) != 0 {
		t.Fatalf("no cookie should be set on failure")
	}
}

func TestAuthHandler_SignUp_Success(t *testing.T) {
	e := newTestEcho()
	stub := &stubAuthService{
		signUpFn: func(ctx context.Context, input ports.SignUpInput) (*ports.AuthResult, error) {
			if input.Email != "a@b.com" || input.Password != "secret1" || input.Name != "Ann" {
				t.Fatalf("unexpected input: %+v", input)
			}
			return sampleResult(2, "r2"), nil
		},
	}
	handler := NewAuthHandler(stub, session.NewCookieManager("", "development", ""))

	rec := httptest.NewRecorder()
	c := e.NewContext(jsonRequest(http.MethodPost, "/auth/sign-up", `{"email":"a@b.com","password":"secret1","name":"Ann"}`), rec)

	if err := handler.SignUp(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if c := lastCookie(t, rec, "refreshToken"); c.Value != "r2" {
		t.Fatalf("expected refresh cookie r2, got %q", c.Value)
	}
}

func TestAuthHandler_SignUp_UserExists(t *testing.T) {
	e := newTestEcho()
	stub := &stubAuthService{
		signUpFn: func(ctx context.Context, input ports.SignUpInput) (*ports.AuthResult, error) {
			return nil, domain.ErrUserExists
		},
	}
	handler := NewAuthHandler(stub, session.NewCookieManager("", "development", ""))

	c := e.NewContext(jsonRequest(http.MethodPost, "/auth/sign-up", `{"email":"a@b.com","password":"secret1"}`), httptest.NewRecorder())

	if err := handler.SignUp(c); !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}

func TestAuthHandler_SignUp_InvalidPayload(t *testing.T) {
	e := newTestEcho()
	handler := NewAuthHandler(&stubAuthService{}, session.NewCookieManager("", "development", ""))

	c := e.NewContext(jsonRequest(http.MethodPost, "/auth/sign-up", `{"email":`), httptest.NewRecorder())

	err := handler.SignUp(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 HTTPError, got %v", err)
	}
}

func TestAuthHandler_SignOut_Success(t *testing.T) {
	e := newTestEcho()
	stub := &stubAuthService{
		signOutFn: func(ctx context.Context, refreshToken string) error {
			if refreshToken != "r1" {
				t.Fatalf("expected cookie value, got %q", refreshToken)
			}
			return nil
		},
	}
	handler := NewAuthHandler(stub, session.NewCookieManager("", "development", ""))

	req := httptest.NewRequest(http.MethodPost, "/auth/sign-out", nil)
	req.AddCookie(&http.Cookie{Name: "refreshToken", Value: "r1"})
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := handler.SignOut(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if strings.TrimSpace(rec.Body.String()) != `{"message":"Logout successful"}` {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
	if c := lastCookie(t, rec, "refreshToken"); c.Value != "" || c.MaxAge >= 0 {
		t.Fatalf("expected cleared cookie, got %+v", c)
	}
}

func TestAuthHandler_SignOut_MissingCookie(t *testing.T) {
	e := newTestEcho()
	stub := &stubAuthService{
		signOutFn: func(ctx context.Context, refreshToken string) error {
			if refreshToken != "" {
				t.Fatalf("expected empty token, got %q", refreshToken)
			}
			return domain.ErrRefreshTokenMissing
		},
	}
	handler := NewAuthHandler(stub, session.NewCookieManager("", "development", ""))

	c := e.NewContext(httptest.NewRequest(http.MethodPost, "/auth/sign-out", nil), httptest.NewRecorder())

	if err := handler.SignOut(c); !errors.Is(err, domain.ErrRefreshTokenMissing) {
		t.Fatalf("expected ErrRefreshTokenMissing, got %v", err)
	}
}

func TestAuthHandler_RefreshTokens_Success(t *testing.T) {
	e := newTestEcho()
	stub := &stubAuthService{
		refreshFn: func(ctx context.Context, refreshToken string) (*ports.AuthResult, error) {
			if refreshToken != "old" {
				t.Fatalf("unexpected token %q", refreshToken)
			}
			return sampleResult(3, "new"), nil
		},
	}
	handler := NewAuthHandler(stub, session.NewCookieManager("", "development", ""))

	req := httptest.NewRequest(http.MethodPost, "/auth/refresh-tokens", nil)
	req.AddCookie(&http.Cookie{Name: "refreshToken", Value: "old"})
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := handler.RefreshTokens(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if c := lastCookie(t, rec, "refreshToken"); c.Value != "new" {
		t.Fatalf("expected rotated cookie, got %q", c.Value)
	}
}

func TestAuthHandler_RefreshTokens_MissingCookie(t *testing.T) {
	e := newTestEcho()
	stub := &stubAuthService{
		refreshFn: func(ctx context.Context, refreshToken string) (*ports.AuthResult, error) {
			t.Fatalf("service must not be called without a cookie")
			return nil, nil
		},
	}
	handler := NewAuthHandler(stub, session.NewCookieManager("", "development", ""))

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodPost, "/auth/refresh-tokens", nil), rec)

	if err := handler.RefreshTokens(c); !errors.Is(err, domain.ErrRefreshTokenMissing) {
		t.Fatalf("expected ErrRefreshTokenMissing, got %v", err)
	}
	if c := lastCookie(t, rec, "refreshToken"); c.MaxAge >= 0 {
		t.Fatalf("expected cookie to be cleared, got %+v", c)
	}
}

func TestAuthHandler_RefreshTokens_Invalid(t *testing.T) {
	e := newTestEcho()
	stub := &stubAuthService{
		refreshFn: func(ctx context.Context, refreshToken string) (*ports.AuthResult, error) {
			return nil, domain.ErrInvalidRefreshToken
		},
	}
	handler := NewAuthHandler(stub, session.NewCookieManager("", "development", ""))

	req := httptest.NewRequest(http.MethodPost, "/auth/refresh-tokens", nil)
	req.AddCookie(&http.Cookie{Name: "refreshToken", Value: "tampered"})
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := handler.RefreshTokens(c); !errors.Is(err, domain.ErrInvalidRefreshToken) {
		t.Fatalf("expected ErrInvalidRefreshToken, got %v", err)
	}
	if len(rec.Result().Cookies()) != 0 {
		t.Fatalf("cookie must be left untouched on invalid token")
	}
}
