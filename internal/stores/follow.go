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

// FollowStore owns the viewer's directed follow edges in both directions.
// Every mutation is followed by a full refetch of both edge lists: explicit
// resynchronization is the conflict-resolution strategy here, correctness
// over efficiency. The membership predicate reads an index keyed by the
// followed user's id, not a list scan.
type FollowStore struct {
	viewerID uuid.UUID
	backend  FollowBackend
	profiles ProfileBackend
	counters ProfileCounters
	events   EventPublisher
	logger   *logger.Logger

	mu             sync.RWMutex
	followers      []*models.Follow
	following      []*models.Follow
	followingIndex map[uuid.UUID]bool
	loaded         bool
}

func NewFollowStore(viewerID uuid.UUID, backend FollowBackend, profiles ProfileBackend, counters ProfileCounters, events EventPublisher, logger *logger.Logger) *FollowStore {
	return &FollowStore{
		viewerID:       viewerID,
		backend:        backend,
		profiles:       profiles,
		counters:       counters,
		events:         events,
		logger:         logger,
		followingIndex: make(map[uuid.UUID]bool),
	}
}

// FetchFollows re-pulls both edge lists, then resolves the profiles of
// everyone referenced through one batched lookup keyed by the deduplicated
// union of follower and following ids.
func (s *FollowStore) FetchFollows(ctx context.Context) error {
	followers, err := s.backend.ListFollowers(ctx, s.viewerID)
	if err != nil {
		return fmt.Errorf("failed to fetch followers: %w", err)
	}

	following, err := s.backend.ListFollowing(ctx, s.viewerID)
	if err != nil {
		return fmt.Errorf("failed to fetch following: %w", err)
	}

	ids := make([]uuid.UUID, 0, len(followers)+len(following))
	for _, edge := range followers {
		ids = append(ids, edge.FollowerID)
	}
	for _, edge := range following {
		ids = append(ids, edge.FollowingID)
	}

	people, err := s.profiles.GetByIDs(ctx, ids)
	if err != nil {
		s.logger.WithStore("follows").WithError(err).Error("Failed to fetch follow profiles")
		people = map[uuid.UUID]*models.Profile{}
	}

	index := make(map[uuid.UUID]bool, len(following))
	for _, edge := range followers {
		edge.Follower = people[edge.FollowerID]
	}
	for _, edge := range following {
		edge.Following = people[edge.FollowingID]
		index[edge.FollowingID] = true
	}

	s.mu.Lock()
	s.followers = followers
	s.following = following
	s.followingIndex = index
	s.loaded = true
	s.mu.Unlock()

	return nil
}

// FollowUser creates the edge and resynchronizes. Already-following is a
// no-op: the pre-check is the only uniqueness guard the system has.
func (s *FollowStore) FollowUser(ctx context.Context, userID uuid.UUID) error {
	if userID == s.viewerID {
		return ErrSelfFollow
	}
	if s.IsFollowing(userID) {
		return nil
	}

	follow := &models.Follow{
		FollowerID:  s.viewerID,
		FollowingID: userID,
	}
	if err := s.backend.Create(ctx, follow); err != nil {
		return fmt.Errorf("failed to follow user: %w", err)
	}

	s.afterMutation(ctx, userID, 1, queue.EventFollowCreated)
	return s.FetchFollows(ctx)
}

// UnfollowUser removes the edge and resynchronizes. Not-following is a
// no-op.
func (s *FollowStore) UnfollowUser(ctx context.Context, userID uuid.UUID) error {
	if !s.IsFollowing(userID) {
		return nil
	}

	if err := s.backend.Delete(ctx, s.viewerID, userID); err != nil {
		return fmt.Errorf("failed to unfollow user: %w", err)
	}

	s.afterMutation(ctx, userID, -1, queue.EventFollowDeleted)
	return s.FetchFollows(ctx)
}

func (s *FollowStore) afterMutation(ctx context.Context, userID uuid.UUID, delta int64, eventType queue.EventType) {
	if err := s.counters.UpdateFollowingCount(ctx, s.viewerID, delta); err != nil {
		s.logger.WithStore("follows").WithError(err).Error("Failed to update following count")
	}
	if err := s.counters.UpdateFollowersCount(ctx, userID, delta); err != nil {
		s.logger.WithStore("follows").WithError(err).Error("Failed to update followers count")
	}

	if event, err := queue.NewEvent(eventType, queue.FollowEventData{
		FollowerID:  s.viewerID.String(),
		FollowingID: userID.String(),
	}); err == nil {
		if err := s.events.Publish(ctx, s.viewerID.String(), event); err != nil {
			s.logger.WithStore("follows").WithError(err).Error("Failed to publish follow event")
		}
	}
}

// Loaded reports whether the initial fetch has happened.
func (s *FollowStore) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

// IsFollowing reflects exactly the locally cached following edge set.
func (s *FollowStore) IsFollowing(userID uuid.UUID) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.followingIndex[userID]
}

func (s *FollowStore) Followers() []*models.Follow {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snapshot := make([]*models.Follow, len(s.followers))
	copy(snapshot, s.followers)
	return snapshot
}

func (s *FollowStore) Following() []*models.Follow {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snapshot := make([]*models.Follow, len(s.following))
	copy(snapshot, s.following)
	return snapshot
}
