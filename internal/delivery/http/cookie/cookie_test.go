package cookie

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"taskboard/config"
	"taskboard/internal/domain/service"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newJar(t *testing.T, cfg *config.Config, req *http.Request) (service.CookieTransport, *httptest.ResponseRecorder) {
	t.Helper()

	rec := httptest.NewRecorder()
	c := echo.New().NewContext(req, rec)

	return NewFactory(cfg).FromEchoContext(c), rec
}

func findCookie(t *testing.T, rec *httptest.ResponseRecorder, name string) *http.Cookie {
	t.Helper()

	res := rec.Result()
	defer res.Body.Close()
	for _, cookie := range res.Cookies() {
		if cookie.Name == name {
			return cookie
		}
	}
	t.Fatalf("cookie %q not set on response", name)

	return nil
}

func TestJar_SetAccessToken_Attributes(t *testing.T) {
	cfg := &config.Config{Auth: &config.AuthConfig{CookieSecure: true, CookieSameSite: "strict"}}
	jar, rec := newJar(t, cfg, httptest.NewRequest(http.MethodGet, "/", nil))
	expiry := time.Now().Add(15 * time.Minute).UTC()

	jar.SetAccessToken("token-value", expiry)

	cookie := findCookie(t, rec, service.AccessTokenCookie)
	assert.Equal(t, "token-value", cookie.Value)
	assert.Equal(t, "/", cookie.Path)
	assert.True(t, cookie.HttpOnly)
	assert.True(t, cookie.Secure)
	assert.Equal(t, http.SameSiteStrictMode, cookie.SameSite)
	assert.WithinDuration(t, expiry, cookie.Expires, time.Second)
}

func TestJar_ReadsInboundCookies(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: service.RefreshTokenCookie, Value: "opaque"})
	jar, _ := newJar(t, &config.Config{}, req)

	refresh, ok := jar.RefreshToken()
	require.True(t, ok)
	assert.Equal(t, "opaque", refresh)

	// Reads never observe this request's own writes; only the client's
	// next request carries them.
	jar.SetAccessToken("fresh", time.Now().Add(time.Minute))
	_, ok = jar.AccessToken()
	assert.False(t, ok)
}

func TestJar_MissingOrEmptyCookie(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: service.AccessTokenCookie, Value: ""})
	jar, _ := newJar(t, &config.Config{}, req)

	_, ok := jar.AccessToken()
	assert.False(t, ok)
	_, ok = jar.RefreshToken()
	assert.False(t, ok)
}

func TestJar_ClearExpiresImmediately(t *testing.T) {
	jar, rec := newJar(t, &config.Config{}, httptest.NewRequest(http.MethodGet, "/", nil))

	jar.ClearRefreshToken()

	cookie := findCookie(t, rec, service.RefreshTokenCookie)
	assert.Empty(t, cookie.Value)
	assert.Equal(t, -1, cookie.MaxAge)
	assert.True(t, cookie.Expires.Before(time.Now()))
}

func TestParseSameSite(t *testing.T) {
	assert.Equal(t, http.SameSiteLaxMode, parseSameSite("lax"))
	assert.Equal(t, http.SameSiteNoneMode, parseSameSite("none"))
	assert.Equal(t, http.SameSiteStrictMode, parseSameSite("strict"))
	assert.Equal(t, http.SameSiteStrictMode, parseSameSite(""))
	assert.Equal(t, http.SameSiteStrictMode, parseSameSite("bogus"))
}
