// Package cookie implements the session cookie jar over echo's request and
// response. It is the only place that touches Set-Cookie headers.
package cookie

import (
	"net/http"
	"strings"
	"time"

	"taskboard/config"
	"taskboard/internal/domain/service"

	"github.com/labstack/echo/v4"
)

// Factory builds request-scoped cookie jars with the configured security
// attributes baked in.
type Factory struct {
	secure   bool
	sameSite http.SameSite
}

// NewFactory is the constructor for Factory.
func NewFactory(cfg *config.Config) *Factory {
	secure := false
	sameSite := http.SameSiteStrictMode
	if cfg.Auth != nil {
		secure = cfg.Auth.CookieSecure
		sameSite = parseSameSite(cfg.Auth.CookieSameSite)
	}

	return &Factory{secure: secure, sameSite: sameSite}
}

// FromEchoContext returns a jar bound to one request/response pair.
func (f *Factory) FromEchoContext(c echo.Context) service.CookieTransport {
	return &jar{c: c, secure: f.secure, sameSite: f.sameSite}
}

func parseSameSite(mode string) http.SameSite {
	switch strings.ToLower(mode) {
	case "lax":
		return http.SameSiteLaxMode
	case "none":
		// Browsers require Secure alongside SameSite=None.
		return http.SameSiteNoneMode
	default:
		return http.SameSiteStrictMode
	}
}

// jar implements service.CookieTransport. Reads come from the inbound
// request, writes go to the outbound response only.
type jar struct {
	c        echo.Context
	secure   bool
	sameSite http.SameSite
}

func (j *jar) SetAccessToken(value string, expiresAt time.Time) {
	j.set(service.AccessTokenCookie, value, expiresAt)
}

func (j *jar) SetRefreshToken(value string, expiresAt time.Time) {
	j.set(service.RefreshTokenCookie, value, expiresAt)
}

func (j *jar) AccessToken() (string, bool) {
	return j.read(service.AccessTokenCookie)
}

func (j *jar) RefreshToken() (string, bool) {
	return j.read(service.RefreshTokenCookie)
}

func (j *jar) ClearAccessToken() {
	j.clear(service.AccessTokenCookie)
}

func (j *jar) ClearRefreshToken() {
	j.clear(service.RefreshTokenCookie)
}

func (j *jar) set(name, value string, expiresAt time.Time) {
	j.c.SetCookie(&http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Expires:  expiresAt,
		HttpOnly: true,
		Secure:   j.secure,
		SameSite: j.sameSite,
	})
}

func (j *jar) read(name string) (string, bool) {
	cookie, err := j.c.Cookie(name)
	if err != nil || cookie.Value == "" {
		return "", false
	}

	return cookie.Value, true
}

func (j *jar) clear(name string) {
	j.c.SetCookie(&http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   j.secure,
		SameSite: j.sameSite,
	})
}
