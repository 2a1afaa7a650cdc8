package stores

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/vibelink/vibelink/internal/models"
	"github.com/vibelink/vibelink/pkg/logger"
	"github.com/vibelink/vibelink/pkg/queue"
)

type LikeAction string

const (
	ActionLiked   LikeAction = "liked"
	ActionUnliked LikeAction = "unliked"
)

type likeKey struct {
	userID uuid.UUID
	postID uuid.UUID
}

// LikeStore owns the global like edge set, fetched once unscoped to the
// viewer. Membership lives in an index keyed by (user, post) and per-post
// counts are maintained incrementally on each toggle, so no read ever
// scans the full edge list. Uniqueness per pair is only this pre-check;
// the platform enforces nothing.
type LikeStore struct {
	viewerID uuid.UUID
	backend  LikeBackend
	posts    PostCounters
	events   EventPublisher
	logger   *logger.Logger

	// mu also serializes toggles, so a second toggle cannot apply against
	// the state a still-in-flight first toggle is about to change.
	mu          sync.RWMutex
	byKey       map[likeKey]*models.Like
	countByPost map[uuid.UUID]int
	loaded      bool
}

func NewLikeStore(viewerID uuid.UUID, backend LikeBackend, posts PostCounters, events EventPublisher, logger *logger.Logger) *LikeStore {
	return &LikeStore{
		viewerID:    viewerID,
		backend:     backend,
		posts:       posts,
		events:      events,
		logger:      logger,
		byKey:       make(map[likeKey]*models.Like),
		countByPost: make(map[uuid.UUID]int),
	}
}

// FetchLikes pulls the full edge set and rebuilds both indexes.
func (s *LikeStore) FetchLikes(ctx context.Context) error {
	likes, err := s.backend.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch likes: %w", err)
	}

	byKey := make(map[likeKey]*models.Like, len(likes))
	countByPost := make(map[uuid.UUID]int)
	for _, like := range likes {
		byKey[likeKey{like.UserID, like.PostID}] = like
		countByPost[like.PostID]++
	}

	s.mu.Lock()
	s.byKey = byKey
	s.countByPost = countByPost
	s.loaded = true
	s.mu.Unlock()

	return nil
}

// ToggleLike inserts or deletes the viewer's edge for the post, based on
// the locally indexed membership, and updates both indexes from the
// mutation's outcome.
func (s *LikeStore) ToggleLike(ctx context.Context, postID uuid.UUID) (LikeAction, error) {
	key := likeKey{s.viewerID, postID}

	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.byKey[key]; ok {
		if err := s.backend.DeleteByID(ctx, existing.ID); err != nil {
			return "", fmt.Errorf("failed to unlike: %w", err)
		}
		delete(s.byKey, key)
		if s.countByPost[postID] > 0 {
			s.countByPost[postID]--
		}
		s.afterToggle(ctx, postID, -1, queue.EventLikeDeleted)
		return ActionUnliked, nil
	}

	like := &models.Like{
		UserID: s.viewerID,
		PostID: postID,
	}
	if err := s.backend.Create(ctx, like); err != nil {
		return "", fmt.Errorf("failed to like: %w", err)
	}
	s.byKey[key] = like
	s.countByPost[postID]++
	s.afterToggle(ctx, postID, 1, queue.EventLikeCreated)
	return ActionLiked, nil
}

func (s *LikeStore) afterToggle(ctx context.Context, postID uuid.UUID, delta int64, eventType queue.EventType) {
	if err := s.posts.UpdateLikesCount(ctx, postID, delta); err != nil {
		s.logger.WithStore("likes").WithError(err).Error("Failed to update likes count")
	}

	if event, err := queue.NewEvent(eventType, queue.LikeEventData{
		UserID: s.viewerID.String(),
		PostID: postID.String(),
	}); err == nil {
		if err := s.events.Publish(ctx, s.viewerID.String(), event); err != nil {
			s.logger.WithStore("likes").WithError(err).Error("Failed to publish like event")
		}
	}
}

// Loaded reports whether the initial fetch has happened.
func (s *LikeStore) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

// IsLiked reports whether the viewer has liked the post, from the local
// index only.
func (s *LikeStore) IsLiked(postID uuid.UUID) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.byKey[likeKey{s.viewerID, postID}]
	return ok
}

// LikeCount returns the locally indexed like count for the post.
func (s *LikeStore) LikeCount(postID uuid.UUID) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.countByPost[postID]
}
