package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/postboard/apiserver/types"
	"github.com/rs/zerolog"
)

// PostRepository defines persistence operations for posts. Update and Delete
// must each run as a single atomic unit against the store.
type PostRepository interface {
	List(ctx context.Context) ([]types.Post, error)
	Get(ctx context.Context, id int) (types.Post, error)
	Create(ctx context.Context, post types.Post) (types.Post, error)
	Update(ctx context.Context, id int, title, content string) (types.Post, error)
	Delete(ctx context.Context, id int) error
}

// EventPublisher delivers post change events to a message broker.
type EventPublisher interface {
	Publish(ctx context.Context, channel string, data []byte, attrs map[string]string) (string, error)
}

// PostService encapsulates post use-cases.
type PostService struct {
	repo    PostRepository
	events  EventPublisher
	channel string
}

func NewPostService(repo PostRepository) *PostService {
	return &PostService{repo: repo}
}

// PublishEvents sends a types.PostEvent to channel after each committed
// edit or delete.
func (s *PostService) PublishEvents(publisher EventPublisher, channel string) {
	s.events = publisher
	s.channel = channel
}

func (s *PostService) List(ctx context.Context) ([]types.Post, error) {
	return s.repo.List(ctx)
}

func (s *PostService) Get(ctx context.Context, id int) (types.Post, error) {
	return s.repo.Get(ctx, id)
}

func (s *PostService) Create(ctx context.Context, title, content string) (types.Post, error) {
	title, err := validatePost(title, content)
	if err != nil {
		return types.Post{}, err
	}
	return s.repo.Create(ctx, types.Post{Title: title, Content: content})
}

// Update replaces title and content of post id on behalf of actor.
func (s *PostService) Update(ctx context.Context, actor types.User, id int, title, content string) (types.Post, error) {
	if err := RequireAdmin(actor); err != nil {
		return types.Post{}, err
	}
	title, err := validatePost(title, content)
	if err != nil {
		return types.Post{}, err
	}

	updated, err := s.repo.Update(ctx, id, title, content)
	if err != nil {
		return types.Post{}, err
	}
	s.publish(ctx, types.PostEventUpdated, id, actor.Username)
	return updated, nil
}

// Delete removes post id on behalf of actor.
func (s *PostService) Delete(ctx context.Context, actor types.User, id int) error {
	if err := RequireAdmin(actor); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.publish(ctx, types.PostEventDeleted, id, actor.Username)
	return nil
}

// publish is best-effort: the mutation is already committed.
func (s *PostService) publish(ctx context.Context, eventType string, postID int, actor string) {
	if s.events == nil {
		return
	}
	log := zerolog.Ctx(ctx)

	data, err := json.Marshal(types.PostEvent{
		Type:       eventType,
		PostID:     postID,
		Actor:      actor,
		OccurredAt: time.Now().UTC(),
	})
	if err != nil {
		log.Error().Err(err).Msg("encode post event")
		return
	}

	attrs := map[string]string{
		"type":    eventType,
		"post_id": strconv.Itoa(postID),
	}
	id, err := s.events.Publish(ctx, s.channel, data, attrs)
	if err != nil {
		log.Warn().Err(err).Str("event", eventType).Int("post_id", postID).Msg("publish post event failed")
		return
	}
	log.Debug().Str("message_id", id).Str("event", eventType).Int("post_id", postID).Msg("post event published")
}

func validatePost(title, content string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	if strings.TrimSpace(content) == "" {
		return "", fmt.Errorf("%w: content is required", ErrInvalidInput)
	}
	return title, nil
}
