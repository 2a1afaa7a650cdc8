package stores

import (
	"context"
	"testing"

	"github.com/go-playground/assert/v2"
	"github.com/google/uuid"
	"github.com/vibelink/vibelink/pkg/logger"
)

func TestFetchProfileSelfAndOthers(t *testing.T) {
	platform := newFakePlatform()
	viewer := platform.addProfile("alice")
	other := platform.addProfile("bob")

	store := NewProfileStore(viewer.ID, platform, &fakeBucket{}, logger.NewLogger())
	ctx := context.Background()

	assert.Equal(t, store.Profile(), nil)

	self, err := store.FetchProfile(ctx, uuid.Nil)
	assert.Equal(t, err, nil)
	assert.Equal(t, self.Username, "alice")
	assert.Equal(t, store.Profile().ID, viewer.ID)

	fetched, err := store.FetchProfile(ctx, other.ID)
	assert.Equal(t, err, nil)
	assert.Equal(t, fetched.Username, "bob")
	// fetching someone else never replaces the viewer's cached profile
	assert.Equal(t, store.Profile().ID, viewer.ID)

	_, err = store.FetchProfile(ctx, uuid.New())
	assert.Equal(t, err, ErrNotFound)
}

func TestUpdateProfilePatchesOnlySetFields(t *testing.T) {
	platform := newFakePlatform()
	viewer := platform.addProfile("alice")
	viewer.Bio = "original bio"

	store := NewProfileStore(viewer.ID, platform, &fakeBucket{}, logger.NewLogger())
	ctx := context.Background()

	mood := "sunny"
	updated, err := store.UpdateProfile(ctx, &ProfilePatch{Mood: &mood})
	assert.Equal(t, err, nil)
	assert.Equal(t, updated.Mood, "sunny")
	assert.Equal(t, updated.Bio, "original bio")
	assert.Equal(t, store.Profile().Mood, "sunny")

	// an empty patch is a no-op with no network call
	before := platform.callCount("profiles.update")
	_, err = store.UpdateProfile(ctx, &ProfilePatch{})
	assert.Equal(t, err, nil)
	assert.Equal(t, platform.callCount("profiles.update"), before)
}

func TestExploreExcludesViewer(t *testing.T) {
	platform := newFakePlatform()
	viewer := platform.addProfile("alice")
	popular := platform.addProfile("bob")
	popular.FollowersCount = 20
	quiet := platform.addProfile("carol")
	quiet.FollowersCount = 3
	viewer.FollowersCount = 99

	store := NewProfileStore(viewer.ID, platform, &fakeBucket{}, logger.NewLogger())

	profiles, err := store.Explore(context.Background(), 50)
	assert.Equal(t, err, nil)
	assert.Equal(t, len(profiles), 2)
	assert.Equal(t, profiles[0].Username, "bob")
	assert.Equal(t, profiles[1].Username, "carol")

	capped, err := store.Explore(context.Background(), 1)
	assert.Equal(t, err, nil)
	assert.Equal(t, len(capped), 1)
	assert.Equal(t, capped[0].Username, "bob")
}

func TestSearchProfiles(t *testing.T) {
	platform := newFakePlatform()
	viewer := platform.addProfile("alice")
	platform.addProfile("bobby")
	tagged := platform.addProfile("carol")
	tagged.DisplayName = "Bob C"

	store := NewProfileStore(viewer.ID, platform, &fakeBucket{}, logger.NewLogger())
	ctx := context.Background()

	profiles, err := store.SearchProfiles(ctx, "bob", 10)
	assert.Equal(t, err, nil)
	assert.Equal(t, len(profiles), 2)

	profiles, err = store.SearchProfiles(ctx, "carol", 10)
	assert.Equal(t, err, nil)
	assert.Equal(t, len(profiles), 1)
	assert.Equal(t, profiles[0].Username, "carol")

	// a blank query never reaches the platform
	before := platform.callCount("profiles.search")
	profiles, err = store.SearchProfiles(ctx, "   ", 10)
	assert.Equal(t, err, nil)
	assert.Equal(t, len(profiles), 0)
	assert.Equal(t, platform.callCount("profiles.search"), before)
}

func TestUploadAvatarPatchesURL(t *testing.T) {
	platform := newFakePlatform()
	viewer := platform.addProfile("alice")

	bucket := &fakeBucket{}
	store := NewProfileStore(viewer.ID, platform, bucket, logger.NewLogger())

	url, err := store.UploadAvatar(context.Background(), "image/png", []byte{0x89, 0x50})
	assert.Equal(t, err, nil)
	assert.Equal(t, bucket.lastUserID, viewer.ID.String())
	assert.Equal(t, bucket.lastType, "image/png")
	assert.Equal(t, store.Profile().AvatarURL, url)
}
