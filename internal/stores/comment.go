package stores

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/vibelink/vibelink/internal/models"
	"github.com/vibelink/vibelink/pkg/logger"
	"github.com/vibelink/vibelink/pkg/queue"
)

// CommentStore owns the comments of a single post, oldest first. Authors
// are joined client-side from a second batched query. An added comment is
// appended locally with the viewer's own profile attached; the platform
// is not asked for a joined row back.
type CommentStore struct {
	viewerID uuid.UUID
	postID   uuid.UUID
	backend  CommentBackend
	profiles ProfileBackend
	posts    PostCounters
	events   EventPublisher
	logger   *logger.Logger

	mu       sync.RWMutex
	comments []*models.Comment
	loaded   bool
}

func NewCommentStore(viewerID, postID uuid.UUID, backend CommentBackend, profiles ProfileBackend, posts PostCounters, events EventPublisher, logger *logger.Logger) *CommentStore {
	return &CommentStore{
		viewerID: viewerID,
		postID:   postID,
		backend:  backend,
		profiles: profiles,
		posts:    posts,
		events:   events,
		logger:   logger,
	}
}

func (s *CommentStore) PostID() uuid.UUID {
	return s.postID
}

// FetchComments pulls the post's comments, then the distinct commenting
// profiles, and joins them locally.
func (s *CommentStore) FetchComments(ctx context.Context) ([]*models.Comment, error) {
	comments, err := s.backend.ListByPost(ctx, s.postID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch comments: %w", err)
	}

	authorIDs := make([]uuid.UUID, 0, len(comments))
	for _, comment := range comments {
		authorIDs = append(authorIDs, comment.UserID)
	}

	authors, err := s.profiles.GetByIDs(ctx, authorIDs)
	if err != nil {
		s.logger.WithStore("comments").WithError(err).Error("Failed to fetch comment authors")
	} else {
		for _, comment := range comments {
			comment.Author = authors[comment.UserID]
		}
	}

	s.mu.Lock()
	s.comments = comments
	s.loaded = true
	s.mu.Unlock()

	return s.Comments(), nil
}

// AddComment rejects blank content before any network call, writes the
// row, then separately fetches the viewer's profile to attach to the
// optimistic local append.
func (s *CommentStore) AddComment(ctx context.Context, content string) (*models.Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrEmptyContent
	}

	comment := &models.Comment{
		PostID:  s.postID,
		UserID:  s.viewerID,
		Content: content,
	}
	if err := s.backend.Create(ctx, comment); err != nil {
		return nil, fmt.Errorf("failed to add comment: %w", err)
	}

	author, err := s.profiles.GetByID(ctx, s.viewerID)
	if err != nil {
		s.logger.WithStore("comments").WithError(err).Error("Failed to fetch own profile for comment")
	}
	comment.Author = author

	s.mu.Lock()
	s.comments = append(s.comments, comment)
	s.mu.Unlock()

	if err := s.posts.UpdateCommentsCount(ctx, s.postID, 1); err != nil {
		s.logger.WithStore("comments").WithError(err).Error("Failed to update comments count")
	}

	if event, err := queue.NewEvent(queue.EventCommentCreated, map[string]string{
		"comment_id": comment.ID.String(),
		"post_id":    s.postID.String(),
		"user_id":    s.viewerID.String(),
	}); err == nil {
		if err := s.events.Publish(ctx, s.viewerID.String(), event); err != nil {
			s.logger.WithStore("comments").WithError(err).Error("Failed to publish comment event")
		}
	}

	return comment, nil
}

func (s *CommentStore) Comments() []*models.Comment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snapshot := make([]*models.Comment, len(s.comments))
	copy(snapshot, s.comments)
	return snapshot
}
