// Package session manages the httpOnly cookie that carries the refresh token.
package session

import (
	"net/http"
	"time"
)

const (
	DefaultCookieName = "refreshToken"

	// cookieLifetime is fixed and does not follow JWT_REFRESH_EXPIRATION.
	cookieLifetime = 7 * 24 * time.Hour

	productionEnv = "production"
	localDomain   = "localhost"
)

// CookieOptions describes the attributes of the refresh-token cookie.
type CookieOptions struct {
	Name      string
	HTTPOnly  bool
	Domain    string
	Secure    bool
	SameSite  http.SameSite
	Path      string
	ExpiresAt time.Time
}

// CookieManager attaches, clears and reads the refresh-token cookie.
type CookieManager struct {
	name   string
	env    string
	domain string
	now    func() time.Time
}

// NewCookieManager builds a manager for the given cookie name, deployment
// environment and production domain. An empty name falls back to "refreshToken".
func NewCookieManager(name, env, domain string) *CookieManager {
	if name == "" {
		name = DefaultCookieName
	}
	return &CookieManager{
		name:   name,
		env:    env,
		domain: domain,
		now:    time.Now,
	}
}

func (m *CookieManager) Name() string {
	return m.name
}

// Options returns the attributes used for a freshly attached cookie.
func (m *CookieManager) Options() CookieOptions {
	production := m.env == productionEnv
	domain := localDomain
	if production {
		domain = m.domain
	}

	return CookieOptions{
		Name:      m.name,
		HTTPOnly:  true,
		Domain:    domain,
		Secure:    production,
		SameSite:  http.SameSiteStrictMode,
		Path:      "/",
		ExpiresAt: m.now().Add(cookieLifetime),
	}
}

func (m *CookieManager) Attach(w http.ResponseWriter, refreshToken string) {
	opts := m.Options()
	http.SetCookie(w, opts.cookie(refreshToken))
}

// Clear expires the cookie on the client. It uses the same name, domain and
// flags as Attach so browsers match and drop the stored value.
func (m *CookieManager) Clear(w http.ResponseWriter) {
	opts := m.Options()
	opts.ExpiresAt = time.Unix(0, 0)

	c := opts.cookie("")
	c.MaxAge = -1
	http.SetCookie(w, c)
}

// Read returns the refresh token sent by the client, or "" if none.
func (m *CookieManager) Read(r *http.Request) string {
	c, err := r.Cookie(m.name)
	if err != nil {
		return ""
	}
	return c.Value
}

func (o CookieOptions) cookie(value string) *http.Cookie {
	return &http.Cookie{
		Name:     o.Name,
		Value:    value,
		Path:     o.Path,
		Domain:   o.Domain,
		Expires:  o.ExpiresAt,
		HttpOnly: o.HTTPOnly,
		Secure:   o.Secure,
		SameSite: o.SameSite,
	}
}
