// Package stores holds the per-session data-synchronization layer: one
// read-through, write-through cache per remote relation. Each store fetches
// its slice of remote state once, serves reads from the local copy, and on
// mutation writes through to the platform and reconciles local state from
// the mutation's response rather than re-querying.
//
// The consistency level is deliberate: the last local mutation wins in the
// session until the next full fetch corrects it. No store depends on
// another; sessions compose them as siblings.
package stores

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/vibelink/vibelink/internal/models"
)

var (
	// ErrEmptyContent is the validation failure for blank comments and
	// messages, rejected before any network call.
	ErrEmptyContent = errors.New("content must not be empty")

	// ErrEmptyPost rejects a post with neither caption nor media.
	ErrEmptyPost = errors.New("post needs a caption or a media file")

	// ErrConflictingMedia rejects a post carrying both an image and a video.
	ErrConflictingMedia = errors.New("post cannot carry both image and video")

	// ErrNotFound marks a terminal lookup miss, e.g. a profile that does
	// not exist.
	ErrNotFound = errors.New("not found")

	// ErrSelfFollow rejects following yourself.
	ErrSelfFollow = errors.New("cannot follow yourself")
)

// The backend interfaces below are the slices of the hosted platform each
// store talks to. internal/repository provides the live implementations;
// tests use in-memory fakes.

type ProfileBackend interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Profile, error)
	GetByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*models.Profile, error)
	Update(ctx context.Context, id uuid.UUID, patch map[string]interface{}) (*models.Profile, error)
	ListByFollowerCount(ctx context.Context, exclude uuid.UUID, limit int) ([]*models.Profile, error)
	SearchByName(ctx context.Context, query string, limit int) ([]*models.Profile, error)
}

type PostBackend interface {
	List(ctx context.Context) ([]*models.Post, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Post, error)
	Create(ctx context.Context, post *models.Post) error
}

// PostCounters bumps the denormalized counters on post rows. Failures are
// logged, never fatal: the counters are display hints, not truth.
type PostCounters interface {
	UpdateLikesCount(ctx context.Context, postID uuid.UUID, delta int64) error
	UpdateCommentsCount(ctx context.Context, postID uuid.UUID, delta int64) error
}

type ProfileCounters interface {
	UpdateFollowersCount(ctx context.Context, id uuid.UUID, delta int64) error
	UpdateFollowingCount(ctx context.Context, id uuid.UUID, delta int64) error
	UpdatePostsCount(ctx context.Context, id uuid.UUID, delta int64) error
}

type LikeBackend interface {
	List(ctx context.Context) ([]*models.Like, error)
	Create(ctx context.Context, like *models.Like) error
	DeleteByID(ctx context.Context, id uuid.UUID) error
}

type FollowBackend interface {
	ListFollowers(ctx context.Context, userID uuid.UUID) ([]*models.Follow, error)
	ListFollowing(ctx context.Context, userID uuid.UUID) ([]*models.Follow, error)
	Create(ctx context.Context, follow *models.Follow) error
	Delete(ctx context.Context, followerID, followingID uuid.UUID) error
}

type CommentBackend interface {
	ListByPost(ctx context.Context, postID uuid.UUID) ([]*models.Comment, error)
	Create(ctx context.Context, comment *models.Comment) error
}

type MessageBackend interface {
	Thread(ctx context.Context, userA, userB uuid.UUID) ([]*models.Message, error)
	Create(ctx context.Context, message *models.Message) error
	ListUnread(ctx context.Context, receiverID uuid.UUID) ([]*models.Message, error)
	MarkThreadRead(ctx context.Context, senderID, receiverID uuid.UUID) error
}

// AvatarBucket is the storage bucket slice the profile store uses.
type AvatarBucket interface {
	UploadAvatar(userID, contentType string, data []byte) (string, error)
}

// EventPublisher pushes row-insert notifications onto the change feed.
type EventPublisher interface {
	Publish(ctx context.Context, key string, value interface{}) error
}
