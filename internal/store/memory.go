package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/postboard/apiserver/types"
)

// MemoryUserRepository is a process-local user store. Each call is one
// atomic unit under the mutex.
type MemoryUserRepository struct {
	mu    sync.RWMutex
	users map[string]types.User
}

func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{users: make(map[string]types.User)}
}

func (r *MemoryUserRepository) GetByUsername(_ context.Context, username string) (types.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[username]
	if !ok {
		return types.User{}, ErrNotFound
	}
	return user, nil
}

func (r *MemoryUserRepository) Create(_ context.Context, user types.User) (types.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[user.Username]; ok {
		return types.User{}, ErrConflict
	}
	user.CreatedAt = time.Now().UTC()
	r.users[user.Username] = user
	return user, nil
}

func (r *MemoryUserRepository) Delete(_ context.Context, username string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[username]; !ok {
		return ErrNotFound
	}
	delete(r.users, username)
	return nil
}

// MemoryPostRepository is a process-local post store with sequential ids.
type MemoryPostRepository struct {
	mu     sync.RWMutex
	nextID int
	posts  map[int]types.Post
}

func NewMemoryPostRepository() *MemoryPostRepository {
	return &MemoryPostRepository{nextID: 1, posts: make(map[int]types.Post)}
}

func (r *MemoryPostRepository) List(_ context.Context) ([]types.Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	posts := make([]types.Post, 0, len(r.posts))
	for _, post := range r.posts {
		posts = append(posts, post)
	}
	sort.Slice(posts, func(i, j int) bool { return posts[i].ID < posts[j].ID })
	return posts, nil
}

func (r *MemoryPostRepository) Get(_ context.Context, id int) (types.Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	post, ok := r.posts[id]
	if !ok {
		return types.Post{}, ErrNotFound
	}
	return post, nil
}

func (r *MemoryPostRepository) Create(_ context.Context, post types.Post) (types.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	post.ID = r.nextID
	post.CreatedAt = now
	post.UpdatedAt = now
	r.nextID++
	r.posts[post.ID] = post
	return post, nil
}

func (r *MemoryPostRepository) Update(_ context.Context, id int, title, content string) (types.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	post, ok := r.posts[id]
	if !ok {
		return types.Post{}, ErrNotFound
	}
	post.Title = title
	post.Content = content
	post.UpdatedAt = time.Now().UTC()
	r.posts[id] = post
	return post, nil
}

func (r *MemoryPostRepository) Delete(_ context.Context, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.posts[id]; !ok {
		return ErrNotFound
	}
	delete(r.posts, id)
	return nil
}
