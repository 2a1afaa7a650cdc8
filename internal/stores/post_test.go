package stores

import (
	"context"
	"testing"
	"time"

	"github.com/go-playground/assert/v2"
	"github.com/google/uuid"
	"github.com/vibelink/vibelink/internal/models"
	"github.com/vibelink/vibelink/pkg/logger"
)

func newPostStore(platform *fakePlatform, viewer *models.Profile) (*PostStore, *fakePublisher) {
	publisher := &fakePublisher{}
	store := NewPostStore(viewer.ID, postAdapter{platform}, platform, platform, publisher, logger.NewLogger())
	return store, publisher
}

func TestCreatePostValidation(t *testing.T) {
	platform := newFakePlatform()
	viewer := platform.addProfile("alice")
	store, _ := newPostStore(platform, viewer)
	ctx := context.Background()

	_, err := store.CreatePost(ctx, &CreatePostRequest{Caption: "   "})
	assert.Equal(t, err, ErrEmptyPost)

	_, err = store.CreatePost(ctx, &CreatePostRequest{
		Caption:  "both",
		ImageURL: "https://cdn.test/posts/a.png",
		VideoURL: "https://cdn.test/videos/a.mp4",
	})
	assert.Equal(t, err, ErrConflictingMedia)

	assert.Equal(t, platform.callCount("posts.create"), 0)
}

func TestCreatePostPrependsWithAuthor(t *testing.T) {
	platform := newFakePlatform()
	author := platform.addProfile("bob")
	viewer := platform.addProfile("alice")
	platform.mu.Lock()
	platform.posts = append(platform.posts, &models.Post{
		ID:        uuid.New(),
		UserID:    author.ID,
		Caption:   "older",
		CreatedAt: platform.tick(),
	})
	platform.mu.Unlock()

	store, publisher := newPostStore(platform, viewer)
	ctx := context.Background()

	feed, err := store.FetchPosts(ctx)
	assert.Equal(t, err, nil)
	assert.Equal(t, len(feed), 1)
	assert.Equal(t, feed[0].Author.Username, "bob")

	created, err := store.CreatePost(ctx, &CreatePostRequest{Caption: "caption only is fine"})
	assert.Equal(t, err, nil)
	assert.Equal(t, created.Author.Username, "alice")

	feed = store.Posts()
	assert.Equal(t, len(feed), 2)
	assert.Equal(t, feed[0].ID, created.ID)
	assert.Equal(t, feed[1].Caption, "older")

	assert.Equal(t, platform.callCount("profiles.posts_count"), 1)
	assert.Equal(t, publisher.count(), 1)
}

func TestFetchPostJoinsAuthor(t *testing.T) {
	platform := newFakePlatform()
	author := platform.addProfile("bob")
	viewer := platform.addProfile("alice")
	store, _ := newPostStore(platform, viewer)
	ctx := context.Background()

	platform.mu.Lock()
	seeded := &models.Post{
		ID:        uuid.New(),
		UserID:    author.ID,
		Caption:   "permalink target",
		CreatedAt: platform.tick(),
	}
	platform.posts = append(platform.posts, seeded)
	platform.mu.Unlock()

	post, err := store.FetchPost(ctx, seeded.ID)
	assert.Equal(t, err, nil)
	assert.Equal(t, post.Caption, "permalink target")
	assert.Equal(t, post.Author.Username, "bob")

	_, err = store.FetchPost(ctx, uuid.New())
	assert.Equal(t, err, ErrNotFound)
}

func TestRankByInterests(t *testing.T) {
	base := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	hiking := &models.Post{Caption: "Hiking the ridge", CreatedAt: base}
	both := &models.Post{Caption: "hiking photos", Location: "coffee shop", CreatedAt: base.Add(time.Minute)}
	plain := &models.Post{Caption: "nothing relevant", CreatedAt: base.Add(2 * time.Minute)}
	newerHiking := &models.Post{Caption: "more HIKING", CreatedAt: base.Add(3 * time.Minute)}

	feed := []*models.Post{newerHiking, plain, both, hiking}

	ranked := RankByInterests(feed, []string{"Hiking", " coffee "})
	assert.Equal(t, ranked[0], both)
	assert.Equal(t, ranked[1], newerHiking)
	assert.Equal(t, ranked[2], hiking)
	assert.Equal(t, ranked[3], plain)

	// input slice order is untouched
	assert.Equal(t, feed[0], newerHiking)

	same := RankByInterests(feed, nil)
	assert.Equal(t, same[0], newerHiking)
	assert.Equal(t, same[3], hiking)
}
