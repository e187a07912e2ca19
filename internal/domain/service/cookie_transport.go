package service

import "time"

// Fixed cookie names; clients depend on these bit-exact.
const (
	AccessTokenCookie  = "access_token"
	RefreshTokenCookie = "refresh_token"
)

// CookieTransport is a request-scoped jar for the two session cookies.
// Reads come from the inbound request, writes mutate only the outbound
// response; there is no server-side state behind this interface. It is
// passed explicitly into the session lifecycle so nothing reads ambient
// request globals.
type CookieTransport interface {
	// SetAccessToken writes the access cookie with the given expiry.
	SetAccessToken(value string, expiresAt time.Time)

	// SetRefreshToken writes the refresh cookie with the given expiry.
	SetRefreshToken(value string, expiresAt time.Time)

	// AccessToken reads the inbound request's access cookie.
	AccessToken() (string, bool)

	// RefreshToken reads the inbound request's refresh cookie.
	RefreshToken() (string, bool)

	// ClearAccessToken expires the access cookie immediately. Clearing an
	// absent cookie is a no-op.
	ClearAccessToken()

	// ClearRefreshToken expires the refresh cookie immediately.
	ClearRefreshToken()
}
