package stores

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/vibelink/vibelink/internal/models"
	"github.com/vibelink/vibelink/pkg/logger"
	"github.com/vibelink/vibelink/pkg/queue"
)

// PostStore owns the global post feed. Reads come from the local copy
// after one fetch; a successful create is prepended locally instead of
// re-querying.
type PostStore struct {
	viewerID uuid.UUID
	backend  PostBackend
	profiles ProfileBackend
	counters ProfileCounters
	events   EventPublisher
	logger   *logger.Logger

	mu     sync.RWMutex
	posts  []*models.Post
	loaded bool
}

func NewPostStore(viewerID uuid.UUID, backend PostBackend, profiles ProfileBackend, counters ProfileCounters, events EventPublisher, logger *logger.Logger) *PostStore {
	return &PostStore{
		viewerID: viewerID,
		backend:  backend,
		profiles: profiles,
		counters: counters,
		events:   events,
		logger:   logger,
	}
}

type CreatePostRequest struct {
	Caption        string `json:"caption"`
	ImageURL       string `json:"image_url"`
	VideoURL       string `json:"video_url"`
	Location       string `json:"location"`
	Mood           string `json:"mood"`
	IsDisappearing bool   `json:"is_disappearing"`
}

// FetchPosts pulls the whole feed newest first, then batch-resolves the
// distinct author set and joins it client-side. Two round trips, one join.
func (s *PostStore) FetchPosts(ctx context.Context) ([]*models.Post, error) {
	posts, err := s.backend.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch posts: %w", err)
	}

	authorIDs := make([]uuid.UUID, 0, len(posts))
	for _, post := range posts {
		authorIDs = append(authorIDs, post.UserID)
	}

	authors, err := s.profiles.GetByIDs(ctx, authorIDs)
	if err != nil {
		// The feed is still usable without author rows.
		s.logger.WithStore("posts").WithError(err).Error("Failed to fetch post authors")
	} else {
		for _, post := range posts {
			post.Author = authors[post.UserID]
		}
	}

	s.mu.Lock()
	s.posts = posts
	s.loaded = true
	s.mu.Unlock()

	return s.Posts(), nil
}

// FetchPost loads a single post with its author attached, for the
// permalink view. Stateless: the feed cache is not consulted or updated.
func (s *PostStore) FetchPost(ctx context.Context, id uuid.UUID) (*models.Post, error) {
	post, err := s.backend.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch post: %w", err)
	}
	if post == nil {
		return nil, ErrNotFound
	}

	author, err := s.profiles.GetByID(ctx, post.UserID)
	if err != nil {
		s.logger.WithStore("posts").WithError(err).Error("Failed to fetch post author")
	}
	post.Author = author

	return post, nil
}

// Posts returns a snapshot of the locally cached feed.
func (s *PostStore) Posts() []*models.Post {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snapshot := make([]*models.Post, len(s.posts))
	copy(snapshot, s.posts)
	return snapshot
}

// CreatePost validates before any network call: a post needs a caption or
// a media file, and never both an image and a video. On success the new
// post is prepended locally with the viewer's profile attached.
func (s *PostStore) CreatePost(ctx context.Context, req *CreatePostRequest) (*models.Post, error) {
	caption := strings.TrimSpace(req.Caption)
	if req.ImageURL != "" && req.VideoURL != "" {
		return nil, ErrConflictingMedia
	}
	if caption == "" && req.ImageURL == "" && req.VideoURL == "" {
		return nil, ErrEmptyPost
	}

	post := &models.Post{
		UserID:         s.viewerID,
		Caption:        caption,
		ImageURL:       req.ImageURL,
		VideoURL:       req.VideoURL,
		Location:       req.Location,
		Mood:           req.Mood,
		IsDisappearing: req.IsDisappearing,
	}

	if err := s.backend.Create(ctx, post); err != nil {
		return nil, fmt.Errorf("failed to create post: %w", err)
	}

	// Attach the viewer's own profile; the insert response carries no join.
	author, err := s.profiles.GetByID(ctx, s.viewerID)
	if err != nil {
		s.logger.WithStore("posts").WithError(err).Error("Failed to fetch own profile for new post")
	}
	post.Author = author

	s.mu.Lock()
	s.posts = append([]*models.Post{post}, s.posts...)
	s.mu.Unlock()

	if err := s.counters.UpdatePostsCount(ctx, s.viewerID, 1); err != nil {
		s.logger.WithStore("posts").WithError(err).Error("Failed to update posts count")
	}

	if event, err := queue.NewEvent(queue.EventPostCreated, queue.PostEventData{
		PostID:    post.ID.String(),
		UserID:    s.viewerID.String(),
		CreatedAt: post.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}); err == nil {
		if err := s.events.Publish(ctx, s.viewerID.String(), event); err != nil {
			s.logger.WithStore("posts").WithError(err).Error("Failed to publish post created event")
		}
	}

	s.logger.WithStore("posts").WithFields(map[string]interface{}{
		"post_id": post.ID,
		"user_id": s.viewerID,
	}).Info("Post created")

	return post, nil
}

// RankByInterests re-sorts an already-fetched feed by how many of the
// viewer's interests appear, case-insensitively, in a post's caption or
// location. Higher score first, ties newest first. Pure and stateless:
// the store's own order is untouched.
func RankByInterests(posts []*models.Post, interests []string) []*models.Post {
	ranked := make([]*models.Post, len(posts))
	copy(ranked, posts)
	if len(interests) == 0 {
		return ranked
	}

	lowered := make([]string, 0, len(interests))
	for _, interest := range interests {
		if trimmed := strings.ToLower(strings.TrimSpace(interest)); trimmed != "" {
			lowered = append(lowered, trimmed)
		}
	}

	score := func(post *models.Post) int {
		caption := strings.ToLower(post.Caption)
		location := strings.ToLower(post.Location)
		hits := 0
		for _, interest := range lowered {
			if strings.Contains(caption, interest) || strings.Contains(location, interest) {
				hits++
			}
		}
		return hits
	}

	scores := make(map[uuid.UUID]int, len(ranked))
	for _, post := range ranked {
		scores[post.ID] = score(post)
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if scores[a.ID] != scores[b.ID] {
			return scores[a.ID] > scores[b.ID]
		}
		return a.CreatedAt.After(b.CreatedAt)
	})

	return ranked
}
