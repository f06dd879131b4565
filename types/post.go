package types

import "time"

// Post is a piece of content shown on the public post list.
// Posts have no owner; any admin may change them.
type Post struct {
	// ID is the unique identifier of the post.
	ID int `json:"id" db:"id"`

	// Title is the headline of the post.
	Title string `json:"title" db:"title"`

	// Content is the body text of the post.
	Content string `json:"content" db:"content"`

	// CreatedAt is the timestamp at which the post was created.
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// UpdatedAt is the timestamp of the most recent edit.
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

const (
	PostEventUpdated = "post.updated"
	PostEventDeleted = "post.deleted"
)

// PostEvent is published after a post mutation has been committed.
type PostEvent struct {
	// Type is one of PostEventUpdated or PostEventDeleted.
	Type string `json:"type"`

	// PostID identifies the mutated post.
	PostID int `json:"post_id"`

	// Actor is the username of the admin who made the change.
	Actor string `json:"actor"`

	// OccurredAt is when the change was committed.
	OccurredAt time.Time `json:"occurred_at"`
}
