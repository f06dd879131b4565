package services

import (
	"context"
	"testing"
	"time"

	"github.com/postboard/apiserver/internal/auth"
	"github.com/postboard/apiserver/internal/store"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type fixture struct {
	userRepo *store.MemoryUserRepository
	postRepo *store.MemoryPostRepository
	users    *UserService
	posts    *PostService
	sessions *SessionService
	tokens   *auth.TokenService
}

func newFixture(t *testing.T, opts ...auth.TokenOption) *fixture {
	t.Helper()

	tokens, err := auth.NewTokenService(auth.TokenConfig{
		Secret: []byte("test-secret"),
		TTL:    30 * time.Minute,
		Issuer: "postboard-test",
	}, opts...)
	require.NoError(t, err)

	userRepo := store.NewMemoryUserRepository()
	postRepo := store.NewMemoryPostRepository()
	users := NewUserService(userRepo, auth.NewHasher(bcrypt.MinCost))

	return &fixture{
		userRepo: userRepo,
		postRepo: postRepo,
		users:    users,
		posts:    NewPostService(postRepo),
		sessions: NewSessionService(users, tokens),
		tokens:   tokens,
	}
}

func (f *fixture) register(t *testing.T, username, password string, admin bool) {
	t.Helper()
	_, err := f.users.Register(context.Background(), username, password, admin)
	require.NoError(t, err)
}

func (f *fixture) cookie(t *testing.T, username, password string) string {
	t.Helper()
	token, err := f.sessions.Login(context.Background(), username, password)
	require.NoError(t, err)
	return CookieValue(token)
}
