// Package auth provides concrete implementations for authentication-related domain services.
package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"time"

	"taskboard/config"
	domainerrors "taskboard/internal/domain/errors"
	"taskboard/internal/domain/service"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

const refreshTokenBytes = 32 // 256 bits of entropy

// accessClaims is the concrete JWT claim set for access tokens. Identity
// travels in the registered Subject claim.
type accessClaims struct {
	jwt.RegisteredClaims
}

// jwtCodec implements service.TokenCodec using HS256-signed JWTs.
type jwtCodec struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewJWTCodec is the constructor for jwtCodec.
func NewJWTCodec(cfg *config.Config) (service.TokenCodec, error) {
	if cfg.Auth == nil || cfg.Auth.AccessSecret == "" {
		return nil, errors.New("jwt secret must be provided")
	}

	return &jwtCodec{
		secret:     []byte(cfg.Auth.AccessSecret),
		accessTTL:  cfg.Auth.AccessTokenTTL,
		refreshTTL: cfg.Auth.RefreshTokenTTL,
	}, nil
}

// Create signs a new access token for userID with an expiry of now+accessTTL.
func (c *jwtCodec) Create(userID uuid.UUID, now time.Time) (string, error) {
	claims := accessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.accessTTL)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", errors.Wrap(err, "failed to sign access token")
	}

	return signed, nil
}

// Verify checks signature and expiry against the supplied clock reading.
// Any failure is reported as "not verified", never as an error.
func (c *jwtCodec) Verify(tokenString string, now time.Time) (*service.AccessTokenPayload, bool) {
	payload, err := c.decode(tokenString, now)
	if err != nil {
		return nil, false
	}

	return payload, true
}

// DecodeStrict is the throwing variant of Verify.
func (c *jwtCodec) DecodeStrict(tokenString string, now time.Time) (*service.AccessTokenPayload, error) {
	payload, err := c.decode(tokenString, now)
	if err != nil {
		return nil, errors.Wrap(domainerrors.ErrTokenInvalid, err.Error())
	}

	return payload, nil
}

func (c *jwtCodec) decode(tokenString string, now time.Time) (*service.AccessTokenPayload, error) {
	claims := &accessClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}

		return c.secret, nil
	}, jwt.WithTimeFunc(func() time.Time { return now }))
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse access token")
	}
	if !token.Valid {
		return nil, errors.New("access token is not valid")
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, errors.Wrap(err, "invalid subject in access token")
	}
	if claims.IssuedAt == nil || claims.ExpiresAt == nil {
		return nil, errors.New("access token is missing timestamp claims")
	}

	return &service.AccessTokenPayload{
		UserID:    userID,
		IssuedAt:  claims.IssuedAt.Time,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// ShouldRefresh reports whether the token has crossed the sliding-renewal
// threshold: true once less than half of its lifetime remains.
func (c *jwtCodec) ShouldRefresh(payload *service.AccessTokenPayload, now time.Time) bool {
	lifetime := payload.ExpiresAt.Sub(payload.IssuedAt)
	if lifetime <= 0 {
		return true
	}

	return payload.ExpiresAt.Sub(now) < lifetime/2
}

// Refresh re-issues a token for the same identity with a fresh expiry.
func (c *jwtCodec) Refresh(payload *service.AccessTokenPayload, now time.Time) (string, error) {
	return c.Create(payload.UserID, now)
}

// NewRefreshToken returns a fresh opaque refresh-token value.
func (c *jwtCodec) NewRefreshToken() (string, error) {
	buf := make([]byte, refreshTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", errors.Wrap(err, "failed to read random bytes for refresh token")
	}

	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// HashRefreshToken returns the SHA-256 hex digest under which a refresh
// token is stored. Deterministic on purpose: the hash is the lookup key.
func (c *jwtCodec) HashRefreshToken(token string) string {
	sum := sha256.Sum256([]byte(token))

	return hex.EncodeToString(sum[:])
}

// AccessTokenTTL returns the embedded validity window of access tokens.
func (c *jwtCodec) AccessTokenTTL() time.Duration {
	return c.accessTTL
}

// RefreshTokenTTL returns the configured refresh-token lifetime.
func (c *jwtCodec) RefreshTokenTTL() time.Duration {
	return c.refreshTTL
}
