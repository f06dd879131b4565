package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/postboard/apiserver/internal/auth"
	"github.com/postboard/apiserver/internal/store"
	"github.com/postboard/apiserver/types"
	"github.com/rs/zerolog"
)

const bearerScheme = "Bearer"

// SessionService issues session tokens and resolves them back to users.
// It keeps no per-session state; every call re-validates the token.
type SessionService struct {
	users  *UserService
	tokens *auth.TokenService
}

func NewSessionService(users *UserService, tokens *auth.TokenService) *SessionService {
	return &SessionService{users: users, tokens: tokens}
}

// TTL is the lifetime of issued tokens, used for cookie max-age.
func (s *SessionService) TTL() time.Duration {
	return s.tokens.TTL()
}

// Login verifies credentials and issues a token for the user.
func (s *SessionService) Login(ctx context.Context, username, password string) (string, error) {
	user, err := s.users.Authenticate(ctx, username, password)
	if err != nil {
		return "", err
	}
	return s.tokens.Issue(user.Username)
}

// CookieValue formats a token the way it is stored in the session cookie.
func CookieValue(token string) string {
	return bearerScheme + " " + token
}

// ParseBearer extracts the token from a "Bearer <token>" value. The scheme
// and token are separated by exactly one space and the token carries no
// whitespace.
func ParseBearer(value string) (string, error) {
	if strings.TrimSpace(value) == "" {
		return "", ErrUnauthenticated
	}
	scheme, token, ok := strings.Cut(value, " ")
	if !ok || !strings.EqualFold(scheme, bearerScheme) {
		return "", ErrMalformedSession
	}
	if token == "" || strings.ContainsAny(token, " \t\r\n\v\f") {
		return "", ErrMalformedSession
	}
	return token, nil
}

// Resolve turns a raw session cookie value into the user it belongs to.
func (s *SessionService) Resolve(ctx context.Context, cookieValue string) (types.User, error) {
	token, err := ParseBearer(cookieValue)
	if err != nil {
		return types.User{}, err
	}

	subject, err := s.tokens.Validate(ctx, token)
	if err != nil {
		zerolog.Ctx(ctx).Debug().Err(err).Msg("session token rejected")
		return types.User{}, fmt.Errorf("%w: %w", ErrUnauthenticated, err)
	}

	user, err := s.users.GetByUsername(ctx, subject)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.User{}, ErrUserNotFound
		}
		return types.User{}, err
	}
	return user, nil
}

// Logout revokes the token in cookieValue when a denylist is configured.
// Without one it does nothing; the client dropping the cookie ends the session.
func (s *SessionService) Logout(ctx context.Context, cookieValue string) error {
	token, err := ParseBearer(cookieValue)
	if err != nil {
		return nil
	}
	return s.tokens.Revoke(ctx, token)
}
