package impl

import (
	"context"
	"testing"
	"time"

	domainerrors "taskboard/internal/domain/errors"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testAccessTTL  = 10 * time.Minute
	testRefreshTTL = 24 * time.Hour
)

func TestSessionService_Issue_SetsCookiesAndStoresHash(t *testing.T) {
	store := newMemStore()
	clock := newFakeClock()
	codec := newTestCodec(t, testAccessTTL, testRefreshTTL)
	svc := NewSessionService(newMemTxManager(store), codec, clock, testLogger())

	ctx := context.Background()
	userID := uuid.New()
	cookies := &fakeCookies{}

	require.NoError(t, svc.Issue(ctx, userID, cookies))

	require.True(t, cookies.hasAccess)
	require.True(t, cookies.hasRefresh)

	// The access cookie must carry a token that verifies back to the user.
	payload, ok := codec.Verify(cookies.access, clock.Now())
	require.True(t, ok)
	assert.Equal(t, userID, payload.UserID)

	// Cookie expiries mirror the tokens' own lifetimes.
	assert.Equal(t, clock.Now().Add(testAccessTTL), cookies.accessExpiry)
	assert.Equal(t, clock.Now().Add(testRefreshTTL), cookies.refreshExpiry)

	// Only the hash of the refresh token is persisted.
	require.Len(t, store.tokens, 1)
	for _, token := range store.tokens {
		assert.Equal(t, userID, token.UserID)
		assert.Equal(t, codec.HashRefreshToken(cookies.refresh), token.TokenHash)
		assert.NotEqual(t, cookies.refresh, token.TokenHash)
	}
}

func TestSessionService_SilentRefresh_ValidAccessTokenPassesThrough(t *testing.T) {
	store := newMemStore()
	clock := newFakeClock()
	codec := newTestCodec(t, testAccessTTL, testRefreshTTL)
	svc := NewSessionService(newMemTxManager(store), codec, clock, testLogger())

	ctx := context.Background()
	userID := uuid.New()
	cookies := &fakeCookies{}
	require.NoError(t, svc.Issue(ctx, userID, cookies))
	original := cookies.access

	identity, err := svc.SilentRefresh(ctx, cookies)

	require.NoError(t, err)
	require.NotNil(t, identity)
	assert.Equal(t, userID, identity.UserID)
	// Fresh token, nowhere near expiry: no re-issue.
	assert.Equal(t, original, cookies.access)
}

func TestSessionService_SilentRefresh_ReissuesPastHalfLifetime(t *testing.T) {
	store := newMemStore()
	clock := newFakeClock()
	codec := newTestCodec(t, testAccessTTL, testRefreshTTL)
	svc := NewSessionService(newMemTxManager(store), codec, clock, testLogger())

	ctx := context.Background()
	userID := uuid.New()
	cookies := &fakeCookies{}
	require.NoError(t, svc.Issue(ctx, userID, cookies))
	original := cookies.access

	// Past half of the 10 minute lifetime, still valid.
	clock.Advance(6 * time.Minute)

	identity, err := svc.SilentRefresh(ctx, cookies)

	require.NoError(t, err)
	require.NotNil(t, identity)
	assert.Equal(t, userID, identity.UserID)
	assert.NotEqual(t, original, cookies.access)

	// The replacement runs a full lifetime from the renewal instant.
	payload, ok := codec.Verify(cookies.access, clock.Now())
	require.True(t, ok)
	assert.Equal(t, clock.Now().Add(testAccessTTL), payload.ExpiresAt)
}

func TestSessionService_SilentRefresh_FallsBackToRefreshToken(t *testing.T) {
	store := newMemStore()
	clock := newFakeClock()
	codec := newTestCodec(t, testAccessTTL, testRefreshTTL)
	svc := NewSessionService(newMemTxManager(store), codec, clock, testLogger())

	ctx := context.Background()
	userID := uuid.New()
	cookies := &fakeCookies{}
	require.NoError(t, svc.Issue(ctx, userID, cookies))
	originalRefresh := cookies.refresh

	// Access token fully expired, refresh token still good.
	clock.Advance(testAccessTTL + time.Minute)

	identity, err := svc.SilentRefresh(ctx, cookies)

	require.NoError(t, err)
	require.NotNil(t, identity)
	assert.Equal(t, userID, identity.UserID)

	// A fresh access token was minted; the refresh token was NOT rotated.
	payload, ok := codec.Verify(cookies.access, clock.Now())
	require.True(t, ok)
	assert.Equal(t, userID, payload.UserID)
	assert.Equal(t, originalRefresh, cookies.refresh)
	assert.Len(t, store.tokens, 1)
}

func TestSessionService_SilentRefresh_NoCookiesMeansAnonymous(t *testing.T) {
	store := newMemStore()
	svc := NewSessionService(newMemTxManager(store), newTestCodec(t, testAccessTTL, testRefreshTTL), newFakeClock(), testLogger())

	identity, err := svc.SilentRefresh(context.Background(), &fakeCookies{})

	require.NoError(t, err)
	assert.Nil(t, identity)
}

func TestSessionService_SilentRefresh_UnknownRefreshTokenClearsCookies(t *testing.T) {
	store := newMemStore()
	clock := newFakeClock()
	svc := NewSessionService(newMemTxManager(store), newTestCodec(t, testAccessTTL, testRefreshTTL), clock, testLogger())

	cookies := &fakeCookies{}
	cookies.SetRefreshToken("never-issued", clock.Now().Add(time.Hour))

	identity, err := svc.SilentRefresh(context.Background(), cookies)

	require.NoError(t, err)
	assert.Nil(t, identity)
	assert.True(t, cookies.accessCleared)
	assert.True(t, cookies.refreshCleared)
}

func TestSessionService_SilentRefresh_ExpiredRefreshTokenIsSwept(t *testing.T) {
	store := newMemStore()
	clock := newFakeClock()
	codec := newTestCodec(t, testAccessTTL, testRefreshTTL)
	svc := NewSessionService(newMemTxManager(store), codec, clock, testLogger())

	ctx := context.Background()
	cookies := &fakeCookies{}
	require.NoError(t, svc.Issue(ctx, uuid.New(), cookies))

	clock.Advance(testRefreshTTL + time.Second)

	identity, err := svc.SilentRefresh(ctx, cookies)

	require.NoError(t, err)
	assert.Nil(t, identity)
	// Presenting the dead token removed its row.
	assert.Empty(t, store.tokens)
	assert.True(t, cookies.refreshCleared)
}

func TestSessionService_ExplicitRefresh_RotatesRefreshToken(t *testing.T) {
	store := newMemStore()
	clock := newFakeClock()
	codec := newTestCodec(t, testAccessTTL, testRefreshTTL)
	svc := NewSessionService(newMemTxManager(store), codec, clock, testLogger())

	ctx := context.Background()
	userID := uuid.New()
	cookies := &fakeCookies{}
	require.NoError(t, svc.Issue(ctx, userID, cookies))
	oldRefresh := cookies.refresh

	clock.Advance(time.Hour)

	identity, err := svc.ExplicitRefresh(ctx, cookies)

	require.NoError(t, err)
	require.NotNil(t, identity)
	assert.Equal(t, userID, identity.UserID)
	assert.NotEqual(t, oldRefresh, cookies.refresh)

	// Exactly one live session, stored under the new hash.
	require.Len(t, store.tokens, 1)
	for _, token := range store.tokens {
		assert.Equal(t, codec.HashRefreshToken(cookies.refresh), token.TokenHash)
		assert.Equal(t, clock.Now().Add(testRefreshTTL), token.ExpiresAt)
	}

	// The consumed token buys nothing anymore.
	replay := &fakeCookies{}
	replay.SetRefreshToken(oldRefresh, clock.Now().Add(time.Hour))
	_, err = svc.ExplicitRefresh(ctx, replay)
	require.ErrorIs(t, err, domainerrors.ErrInvalidRefreshToken)
}

func TestSessionService_ExplicitRefresh_MissingToken(t *testing.T) {
	store := newMemStore()
	svc := NewSessionService(newMemTxManager(store), newTestCodec(t, testAccessTTL, testRefreshTTL), newFakeClock(), testLogger())

	_, err := svc.ExplicitRefresh(context.Background(), &fakeCookies{})

	require.ErrorIs(t, err, domainerrors.ErrMissingRefreshToken)
}

func TestSessionService_ExplicitRefresh_ExpiredTokenSweptAndRejected(t *testing.T) {
	store := newMemStore()
	clock := newFakeClock()
	codec := newTestCodec(t, testAccessTTL, testRefreshTTL)
	svc := NewSessionService(newMemTxManager(store), codec, clock, testLogger())

	ctx := context.Background()
	cookies := &fakeCookies{}
	require.NoError(t, svc.Issue(ctx, uuid.New(), cookies))

	clock.Advance(testRefreshTTL + time.Second)

	_, err := svc.ExplicitRefresh(ctx, cookies)

	require.ErrorIs(t, err, domainerrors.ErrRefreshTokenExpired)
	// The rejection still deletes the dead row and the cookies.
	assert.Empty(t, store.tokens)
	assert.True(t, cookies.accessCleared)
	assert.True(t, cookies.refreshCleared)
}

func TestSessionService_Revoke_IsIdempotent(t *testing.T) {
	store := newMemStore()
	clock := newFakeClock()
	codec := newTestCodec(t, testAccessTTL, testRefreshTTL)
	svc := NewSessionService(newMemTxManager(store), codec, clock, testLogger())

	ctx := context.Background()
	cookies := &fakeCookies{}
	require.NoError(t, svc.Issue(ctx, uuid.New(), cookies))
	oldRefresh := cookies.refresh

	require.NoError(t, svc.Revoke(ctx, cookies))
	assert.Empty(t, store.tokens)
	assert.True(t, cookies.accessCleared)
	assert.True(t, cookies.refreshCleared)

	// Signing out again, with or without the stale cookie, still succeeds.
	require.NoError(t, svc.Revoke(ctx, cookies))
	stale := &fakeCookies{}
	stale.SetRefreshToken(oldRefresh, clock.Now().Add(time.Hour))
	require.NoError(t, svc.Revoke(ctx, stale))
}

func TestSessionService_RevokeAllForUser(t *testing.T) {
	store := newMemStore()
	clock := newFakeClock()
	codec := newTestCodec(t, testAccessTTL, testRefreshTTL)
	svc := NewSessionService(newMemTxManager(store), codec, clock, testLogger())

	ctx := context.Background()
	userID := uuid.New()
	otherID := uuid.New()

	// Two devices for one user, one for another.
	require.NoError(t, svc.Issue(ctx, userID, &fakeCookies{}))
	require.NoError(t, svc.Issue(ctx, userID, &fakeCookies{}))
	require.NoError(t, svc.Issue(ctx, otherID, &fakeCookies{}))
	require.Len(t, store.tokens, 3)

	require.NoError(t, svc.RevokeAllForUser(ctx, userID))

	require.Len(t, store.tokens, 1)
	for _, token := range store.tokens {
		assert.Equal(t, otherID, token.UserID)
	}
}

func TestSessionService_ActiveSessions_MarksCurrent(t *testing.T) {
	store := newMemStore()
	clock := newFakeClock()
	codec := newTestCodec(t, testAccessTTL, testRefreshTTL)
	svc := NewSessionService(newMemTxManager(store), codec, clock, testLogger())

	ctx := context.Background()
	userID := uuid.New()

	laptop := &fakeCookies{}
	require.NoError(t, svc.Issue(ctx, userID, laptop))
	phone := &fakeCookies{}
	require.NoError(t, svc.Issue(ctx, userID, phone))

	sessions, err := svc.ActiveSessions(ctx, userID, phone)

	require.NoError(t, err)
	require.Len(t, sessions, 2)

	currentCount := 0
	for _, session := range sessions {
		if session.Current {
			currentCount++
		}
	}
	assert.Equal(t, 1, currentCount)
}
