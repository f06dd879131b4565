package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const DefaultTokenTTL = 30 * time.Minute

var (
	// ErrInvalidToken covers every reason a token is rejected.
	ErrInvalidToken = errors.New("invalid token")
	// ErrTokenExpired and ErrTokenRevoked narrow ErrInvalidToken for logging.
	ErrTokenExpired = fmt.Errorf("%w: expired", ErrInvalidToken)
	ErrTokenRevoked = fmt.Errorf("%w: revoked", ErrInvalidToken)
)

// TokenConfig is the signing material for session tokens.
type TokenConfig struct {
	Secret []byte
	TTL    time.Duration
	Issuer string
}

// TokenService issues and validates HS256 session tokens.
type TokenService struct {
	secret   []byte
	ttl      time.Duration
	issuer   string
	now      func() time.Time
	denylist Denylist
}

type TokenOption func(*TokenService)

// WithClock replaces time.Now, for tests that need to step past the TTL.
func WithClock(now func() time.Time) TokenOption {
	return func(t *TokenService) {
		t.now = now
	}
}

// WithDenylist makes Validate reject tokens whose id has been revoked.
func WithDenylist(d Denylist) TokenOption {
	return func(t *TokenService) {
		t.denylist = d
	}
}

func NewTokenService(cfg TokenConfig, opts ...TokenOption) (*TokenService, error) {
	if len(cfg.Secret) == 0 {
		return nil, errors.New("token secret is required")
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	t := &TokenService{
		secret: cfg.Secret,
		ttl:    ttl,
		issuer: cfg.Issuer,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t, nil
}

// TTL returns the lifetime of issued tokens.
func (t *TokenService) TTL() time.Duration {
	return t.ttl
}

// Issue returns a signed token for subject.
func (t *TokenService) Issue(subject string) (string, error) {
	if strings.TrimSpace(subject) == "" {
		return "", errors.New("token subject is required")
	}
	now := t.now()
	claims := jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Issuer:    t.issuer,
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(t.secret)
}

// Validate checks signature, expiry and revocation and returns the subject.
// Every failure matches ErrInvalidToken.
func (t *TokenService) Validate(ctx context.Context, tokenString string) (string, error) {
	claims, err := t.parse(tokenString)
	if err != nil {
		return "", err
	}
	if t.denylist != nil && claims.ID != "" {
		revoked, err := t.denylist.IsRevoked(ctx, claims.ID)
		if err != nil {
			return "", fmt.Errorf("%w: denylist lookup: %v", ErrInvalidToken, err)
		}
		if revoked {
			return "", ErrTokenRevoked
		}
	}
	return claims.Subject, nil
}

// Revoke puts a still-valid token on the denylist until it expires.
// Tokens that are already invalid, and services without a denylist, are
// left alone.
func (t *TokenService) Revoke(ctx context.Context, tokenString string) error {
	if t.denylist == nil {
		return nil
	}
	claims, err := t.parse(tokenString)
	if err != nil || claims.ID == "" {
		return nil
	}
	return t.denylist.Revoke(ctx, claims.ID, claims.ExpiresAt.Time)
}

func (t *TokenService) parse(tokenString string) (*jwt.RegisteredClaims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	}
	if t.issuer != "" {
		opts = append(opts, jwt.WithIssuer(t.issuer))
	}

	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return t.secret, nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	return claims, nil
}
