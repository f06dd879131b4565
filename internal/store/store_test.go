package store

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/postboard/apiserver/config"
	"github.com/postboard/apiserver/internal/db"
	"github.com/postboard/apiserver/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type userRepo interface {
	GetByUsername(ctx context.Context, username string) (types.User, error)
	Create(ctx context.Context, user types.User) (types.User, error)
	Delete(ctx context.Context, username string) error
}

type postRepo interface {
	List(ctx context.Context) ([]types.Post, error)
	Get(ctx context.Context, id int) (types.Post, error)
	Create(ctx context.Context, post types.Post) (types.Post, error)
	Update(ctx context.Context, id int, title, content string) (types.Post, error)
	Delete(ctx context.Context, id int) error
}

type backend struct {
	name  string
	users userRepo
	posts postRepo
}

func backends(t *testing.T) []backend {
	t.Helper()

	cfg := config.Config{Database: config.DatabaseConfig{
		Driver: config.DriverSQLite,
		Path:   filepath.Join(t.TempDir(), "store.db"),
	}}
	require.NoError(t, db.MigrateUp(cfg.Database))
	conn, err := db.Open(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	return []backend{
		{
			name:  "sqlite3",
			users: NewUserRepository(conn),
			posts: NewPostRepository(conn, config.DriverSQLite),
		},
		{
			name:  "memory",
			users: NewMemoryUserRepository(),
			posts: NewMemoryPostRepository(),
		},
	}
}

func TestUserRepository(t *testing.T) {
	for _, b := range backends(t) {
		t.Run(b.name, func(t *testing.T) {
			ctx := context.Background()

			_, err := b.users.GetByUsername(ctx, "alice")
			assert.ErrorIs(t, err, ErrNotFound)

			created, err := b.users.Create(ctx, types.User{Username: "alice", PasswordHash: "h1", IsAdmin: true})
			require.NoError(t, err)
			assert.False(t, created.CreatedAt.IsZero())

			_, err = b.users.Create(ctx, types.User{Username: "alice", PasswordHash: "h2"})
			assert.ErrorIs(t, err, ErrConflict)

			got, err := b.users.GetByUsername(ctx, "alice")
			require.NoError(t, err)
			assert.Equal(t, "h1", got.PasswordHash, "duplicate create must not overwrite")
			assert.True(t, got.IsAdmin)

			require.NoError(t, b.users.Delete(ctx, "alice"))
			assert.ErrorIs(t, b.users.Delete(ctx, "alice"), ErrNotFound)
			_, err = b.users.GetByUsername(ctx, "alice")
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestPostRepository(t *testing.T) {
	for _, b := range backends(t) {
		t.Run(b.name, func(t *testing.T) {
			ctx := context.Background()

			first, err := b.posts.Create(ctx, types.Post{Title: "Hello", Content: "World"})
			require.NoError(t, err)
			second, err := b.posts.Create(ctx, types.Post{Title: "Second", Content: "Post"})
			require.NoError(t, err)
			assert.Greater(t, second.ID, first.ID)

			posts, err := b.posts.List(ctx)
			require.NoError(t, err)
			require.Len(t, posts, 2)
			assert.Equal(t, first.ID, posts[0].ID)

			updated, err := b.posts.Update(ctx, first.ID, "Hello again", "Edited")
			require.NoError(t, err)
			assert.Equal(t, "Hello again", updated.Title)

			got, err := b.posts.Get(ctx, first.ID)
			require.NoError(t, err)
			assert.Equal(t, "Edited", got.Content)

			_, err = b.posts.Update(ctx, 99999, "x", "y")
			assert.ErrorIs(t, err, ErrNotFound)

			require.NoError(t, b.posts.Delete(ctx, first.ID))
			assert.ErrorIs(t, b.posts.Delete(ctx, first.ID), ErrNotFound)
			_, err = b.posts.Get(ctx, first.ID)
			assert.ErrorIs(t, err, ErrNotFound)

			posts, err = b.posts.List(ctx)
			require.NoError(t, err)
			require.Len(t, posts, 1)
			assert.Equal(t, "Second", posts[0].Title)
		})
	}
}

func TestPostRepositoryConcurrentMutations(t *testing.T) {
	const writers = 16

	for _, b := range backends(t) {
		t.Run(b.name, func(t *testing.T) {
			ctx := context.Background()

			post, err := b.posts.Create(ctx, types.Post{Title: "Original", Content: "original"})
			require.NoError(t, err)
			other, err := b.posts.Create(ctx, types.Post{Title: "Bystander", Content: "untouched"})
			require.NoError(t, err)

			var wg sync.WaitGroup
			errs := make(chan error, writers+1)
			for i := 0; i < writers; i++ {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					_, err := b.posts.Update(ctx, post.ID, fmt.Sprintf("title-%d", i), fmt.Sprintf("content-%d", i))
					errs <- err
				}(i)
			}
			wg.Add(1)
			go func() {
				defer wg.Done()
				errs <- b.posts.Delete(ctx, post.ID)
			}()
			wg.Wait()
			close(errs)

			for err := range errs {
				if err != nil {
					assert.ErrorIs(t, err, ErrNotFound)
				}
			}

			// the delete always lands, so the row is gone whatever the order
			_, err = b.posts.Get(ctx, post.ID)
			assert.ErrorIs(t, err, ErrNotFound)

			got, err := b.posts.Get(ctx, other.ID)
			require.NoError(t, err)
			assert.Equal(t, "Bystander", got.Title)
			assert.Equal(t, "untouched", got.Content)
		})
	}
}

func TestPostRepositoryConcurrentUpdatesKeepOneWriter(t *testing.T) {
	const writers = 16

	for _, b := range backends(t) {
		t.Run(b.name, func(t *testing.T) {
			ctx := context.Background()

			post, err := b.posts.Create(ctx, types.Post{Title: "Original", Content: "original"})
			require.NoError(t, err)

			var wg sync.WaitGroup
			for i := 0; i < writers; i++ {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					_, err := b.posts.Update(ctx, post.ID, fmt.Sprintf("title-%d", i), fmt.Sprintf("content-%d", i))
					assert.NoError(t, err)
				}(i)
			}
			wg.Wait()

			got, err := b.posts.Get(ctx, post.ID)
			require.NoError(t, err)
			var n int
			_, err = fmt.Sscanf(got.Title, "title-%d", &n)
			require.NoError(t, err, "title %q", got.Title)
			assert.Equal(t, fmt.Sprintf("content-%d", n), got.Content, "title and content come from different writers")
		})
	}
}
