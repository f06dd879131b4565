package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func newTestTokens(t *testing.T, secret string, opts ...TokenOption) *TokenService {
	t.Helper()
	tokens, err := NewTokenService(TokenConfig{
		Secret: []byte(secret),
		TTL:    30 * time.Minute,
		Issuer: "postboard-test",
	}, opts...)
	require.NoError(t, err)
	return tokens
}

func TestTokenRoundTrip(t *testing.T) {
	t.Parallel()

	tokens := newTestTokens(t, "super-secret")
	for _, subject := range []string{"alice", "bob", "user with spaces"} {
		tok, err := tokens.Issue(subject)
		require.NoError(t, err)

		got, err := tokens.Validate(context.Background(), tok)
		require.NoError(t, err)
		assert.Equal(t, subject, got)
	}
}

func TestTokenIssueRequiresSubject(t *testing.T) {
	t.Parallel()

	_, err := newTestTokens(t, "k").Issue("  ")
	assert.Error(t, err)
}

func TestNewTokenServiceRequiresSecret(t *testing.T) {
	t.Parallel()

	_, err := NewTokenService(TokenConfig{})
	assert.Error(t, err)

	tokens, err := NewTokenService(TokenConfig{Secret: []byte("k")})
	require.NoError(t, err)
	assert.Equal(t, DefaultTokenTTL, tokens.TTL())
}

func TestTokenExpiresAfterTTL(t *testing.T) {
	t.Parallel()

	clock := &fakeClock{now: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
	tokens := newTestTokens(t, "secret", WithClock(clock.Now))

	tok, err := tokens.Issue("alice")
	require.NoError(t, err)

	clock.now = clock.now.Add(29 * time.Minute)
	_, err = tokens.Validate(context.Background(), tok)
	require.NoError(t, err)

	clock.now = clock.now.Add(2 * time.Minute)
	_, err = tokens.Validate(context.Background(), tok)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTokenExpired)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenWrongSecret(t *testing.T) {
	t.Parallel()

	tok, err := newTestTokens(t, "right-secret").Issue("alice")
	require.NoError(t, err)

	_, err = newTestTokens(t, "wrong-secret").Validate(context.Background(), tok)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidToken)
	assert.NotErrorIs(t, err, ErrTokenExpired)
}

func TestTokenMalformed(t *testing.T) {
	t.Parallel()

	tokens := newTestTokens(t, "k")
	for _, tok := range []string{"", "not.a.jwt", "abc", "a.b.c.d"} {
		_, err := tokens.Validate(context.Background(), tok)
		assert.ErrorIs(t, err, ErrInvalidToken, "token %q", tok)
	}
}

func TestTokenRejectsOtherAlgorithms(t *testing.T) {
	t.Parallel()

	tokens := newTestTokens(t, "k")
	claims := jwt.RegisteredClaims{
		Subject:   "mallory",
		Issuer:    "postboard-test",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = tokens.Validate(context.Background(), none)
	assert.ErrorIs(t, err, ErrInvalidToken)

	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("k"))
	require.NoError(t, err)
	_, err = tokens.Validate(context.Background(), hs512)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenRejectsForeignIssuer(t *testing.T) {
	t.Parallel()

	other, err := NewTokenService(TokenConfig{Secret: []byte("k"), Issuer: "someone-else"})
	require.NoError(t, err)
	tok, err := other.Issue("alice")
	require.NoError(t, err)

	_, err = newTestTokens(t, "k").Validate(context.Background(), tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenRevocation(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	denylist, err := NewCacheDenylist(ctx, time.Hour)
	require.NoError(t, err)
	t.Cleanup(func() { _ = denylist.Close() })

	tokens := newTestTokens(t, "k", WithDenylist(denylist))
	revoked, err := tokens.Issue("alice")
	require.NoError(t, err)
	kept, err := tokens.Issue("alice")
	require.NoError(t, err)

	require.NoError(t, tokens.Revoke(ctx, revoked))

	_, err = tokens.Validate(ctx, revoked)
	assert.ErrorIs(t, err, ErrTokenRevoked)
	assert.ErrorIs(t, err, ErrInvalidToken)

	sub, err := tokens.Validate(ctx, kept)
	require.NoError(t, err)
	assert.Equal(t, "alice", sub)

	assert.NoError(t, tokens.Revoke(ctx, "garbage"))
}

func TestTokenRevokeWithoutDenylist(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	tokens := newTestTokens(t, "k")
	tok, err := tokens.Issue("alice")
	require.NoError(t, err)

	require.NoError(t, tokens.Revoke(ctx, tok))
	_, err = tokens.Validate(ctx, tok)
	assert.NoError(t, err)
}
