package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-playground/assert/v2"
)

func newTestStore(t *testing.T, maxBytes int64) *BucketStore {
	t.Helper()
	store, err := NewBucketStore(t.TempDir(), "http://localhost:8080/storage/", maxBytes)
	assert.Equal(t, err, nil)
	return store
}

func TestUploadValidation(t *testing.T) {
	store := newTestStore(t, 4)

	_, err := store.Upload("secrets", "u1", "image/png", []byte{1})
	assert.Equal(t, err, ErrUnknownBucket)

	_, err = store.Upload(BucketPosts, "u1", "image/png", nil)
	assert.Equal(t, err, ErrEmptyFile)

	_, err = store.Upload(BucketPosts, "u1", "image/png", []byte{1, 2, 3, 4, 5})
	assert.Equal(t, err, ErrFileTooLarge)

	_, err = store.Upload(BucketPosts, "u1", "application/pdf", []byte{1})
	assert.Equal(t, err, ErrUnsupportedType)

	// media type must match the bucket in both directions
	_, err = store.Upload(BucketVideos, "u1", "image/png", []byte{1})
	assert.Equal(t, err, ErrUnsupportedType)
	_, err = store.Upload(BucketPosts, "u1", "video/mp4", []byte{1})
	assert.Equal(t, err, ErrUnsupportedType)
}

func TestUploadWritesTimestampedKey(t *testing.T) {
	store := newTestStore(t, 0)

	url, err := store.Upload(BucketPosts, "user-1", "image/jpeg", []byte("data"))
	assert.Equal(t, err, nil)
	assert.Equal(t, strings.HasPrefix(url, "http://localhost:8080/storage/posts/user-1/"), true)
	assert.Equal(t, strings.HasSuffix(url, ".jpg"), true)

	key := strings.TrimPrefix(url, "http://localhost:8080/storage/")
	data, err := os.ReadFile(filepath.Join(store.RootDir(), filepath.FromSlash(key)))
	assert.Equal(t, err, nil)
	assert.Equal(t, string(data), "data")
}

func TestUploadAvatarFixedPathOverwrites(t *testing.T) {
	store := newTestStore(t, 0)

	first, err := store.UploadAvatar("user-1", "image/png", []byte("old"))
	assert.Equal(t, err, nil)
	second, err := store.UploadAvatar("user-1", "image/png", []byte("new"))
	assert.Equal(t, err, nil)
	assert.Equal(t, first, second)
	assert.Equal(t, strings.HasSuffix(first, "/avatars/user-1/avatar.png"), true)

	data, err := os.ReadFile(filepath.Join(store.RootDir(), BucketAvatars, "user-1", "avatar.png"))
	assert.Equal(t, err, nil)
	assert.Equal(t, string(data), "new")

	_, err = store.UploadAvatar("user-1", "video/mp4", []byte("clip"))
	assert.Equal(t, err, ErrUnsupportedType)
}

func TestBucketFor(t *testing.T) {
	assert.Equal(t, BucketFor("video/mp4"), BucketVideos)
	assert.Equal(t, BucketFor("video/webm"), BucketVideos)
	assert.Equal(t, BucketFor("image/png"), BucketPosts)
	assert.Equal(t, IsVideoType("image/gif"), false)
}
