package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/postboard/apiserver/config"
	"github.com/postboard/apiserver/internal/db"
	"github.com/postboard/apiserver/types"
)

// PostRepository handles persistence for posts.
type PostRepository struct {
	db         *sql.DB
	lockSuffix string
}

// NewPostRepository constructs a repository for the given SQL driver. On
// Postgres, rows read for a mutation are locked with FOR UPDATE; sqlite
// transactions already take the write lock at BEGIN.
func NewPostRepository(db *sql.DB, driver string) *PostRepository {
	r := &PostRepository{db: db}
	if driver == config.DriverPostgres {
		r.lockSuffix = " FOR UPDATE"
	}
	return r
}

func (r *PostRepository) List(ctx context.Context) ([]types.Post, error) {
	const query = `
		SELECT id, title, content, created_at, updated_at
		FROM posts
		ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	posts := make([]types.Post, 0)
	for rows.Next() {
		var post types.Post
		if err := rows.Scan(
			&post.ID,
			&post.Title,
			&post.Content,
			&post.CreatedAt,
			&post.UpdatedAt,
		); err != nil {
			return nil, err
		}
		posts = append(posts, post)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return posts, nil
}

func (r *PostRepository) Get(ctx context.Context, id int) (types.Post, error) {
	return getPost(ctx, r.db, id, "")
}

func (r *PostRepository) Create(ctx context.Context, post types.Post) (types.Post, error) {
	now := time.Now().UTC()
	post.CreatedAt = now
	post.UpdatedAt = now

	const query = `
		INSERT INTO posts (title, content, created_at, updated_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id`
	err := db.WithTx(ctx, r.db, nil, func(ctx context.Context, tx db.DBTX) error {
		return tx.QueryRowContext(ctx, query, post.Title, post.Content, post.CreatedAt, post.UpdatedAt).Scan(&post.ID)
	})
	if err != nil {
		return types.Post{}, err
	}
	return post, nil
}

// Update replaces title and content of an existing post. The read, the
// write and the commit happen in one transaction; a missing post rolls back
// with ErrNotFound.
func (r *PostRepository) Update(ctx context.Context, id int, title, content string) (types.Post, error) {
	var updated types.Post
	err := db.WithTx(ctx, r.db, nil, func(ctx context.Context, tx db.DBTX) error {
		post, err := getPost(ctx, tx, id, r.lockSuffix)
		if err != nil {
			return err
		}

		post.Title = title
		post.Content = content
		post.UpdatedAt = time.Now().UTC()

		const query = `
			UPDATE posts
			SET title = $1,
				content = $2,
				updated_at = $3
			WHERE id = $4`
		if _, err := tx.ExecContext(ctx, query, post.Title, post.Content, post.UpdatedAt, post.ID); err != nil {
			return err
		}
		updated = post
		return nil
	})
	if err != nil {
		return types.Post{}, err
	}
	return updated, nil
}

func (r *PostRepository) Delete(ctx context.Context, id int) error {
	return db.WithTx(ctx, r.db, nil, func(ctx context.Context, tx db.DBTX) error {
		if _, err := getPost(ctx, tx, id, r.lockSuffix); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, `DELETE FROM posts WHERE id = $1`, id)
		return err
	})
}

func getPost(ctx context.Context, q db.DBTX, id int, lockSuffix string) (types.Post, error) {
	query := `
		SELECT id, title, content, created_at, updated_at
		FROM posts
		WHERE id = $1` + lockSuffix
	var post types.Post
	err := q.QueryRowContext(ctx, query, id).Scan(
		&post.ID,
		&post.Title,
		&post.Content,
		&post.CreatedAt,
		&post.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Post{}, ErrNotFound
		}
		return types.Post{}, err
	}
	return post, nil
}
