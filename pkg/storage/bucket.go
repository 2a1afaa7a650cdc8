package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Bucket names are part of the wire contract: avatars for profile
// pictures, posts for images, videos for video media.
const (
	BucketAvatars = "avatars"
	BucketPosts   = "posts"
	BucketVideos  = "videos"
)

var (
	ErrFileTooLarge    = errors.New("file exceeds the upload size limit")
	ErrUnsupportedType = errors.New("unsupported file type")
	ErrUnknownBucket   = errors.New("unknown bucket")
	ErrEmptyFile       = errors.New("empty file")
)

var extByContentType = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/gif":  "gif",
	"image/webp": "webp",
	"video/mp4":  "mp4",
	"video/webm": "webm",
}

// BucketStore keeps uploaded objects on disk under rootDir/bucket/key and
// hands back public URLs under baseURL. Uploads overwrite silently, which
// is what the fixed avatar path relies on.
type BucketStore struct {
	rootDir  string
	baseURL  string
	maxBytes int64
}

func NewBucketStore(rootDir, baseURL string, maxBytes int64) (*BucketStore, error) {
	for _, bucket := range []string{BucketAvatars, BucketPosts, BucketVideos} {
		if err := os.MkdirAll(filepath.Join(rootDir, bucket), 0755); err != nil {
			return nil, fmt.Errorf("failed to create bucket directory: %w", err)
		}
	}
	return &BucketStore{
		rootDir:  rootDir,
		baseURL:  strings.TrimRight(baseURL, "/"),
		maxBytes: maxBytes,
	}, nil
}

// IsVideoType reports whether the content type routes to the videos bucket.
func IsVideoType(contentType string) bool {
	return strings.HasPrefix(contentType, "video/")
}

// BucketFor picks the media bucket for an upload's content type.
func BucketFor(contentType string) string {
	if IsVideoType(contentType) {
		return BucketVideos
	}
	return BucketPosts
}

func (s *BucketStore) validate(bucket, contentType string, size int64) (string, error) {
	switch bucket {
	case BucketAvatars, BucketPosts, BucketVideos:
	default:
		return "", ErrUnknownBucket
	}
	if size <= 0 {
		return "", ErrEmptyFile
	}
	if s.maxBytes > 0 && size > s.maxBytes {
		return "", ErrFileTooLarge
	}
	ext, ok := extByContentType[contentType]
	if !ok {
		return "", ErrUnsupportedType
	}
	if (bucket == BucketVideos) != IsVideoType(contentType) {
		return "", ErrUnsupportedType
	}
	return ext, nil
}

// Upload stores data under {userID}/{timestamp}.{ext} and returns the
// object's public URL.
func (s *BucketStore) Upload(bucket, userID, contentType string, data []byte) (string, error) {
	ext, err := s.validate(bucket, contentType, int64(len(data)))
	if err != nil {
		return "", err
	}

	key := fmt.Sprintf("%s/%d.%s", userID, time.Now().UnixNano(), ext)
	return s.write(bucket, key, data)
}

// UploadAvatar stores data at the fixed per-user path {userID}/avatar.{ext},
// replacing any previous avatar.
func (s *BucketStore) UploadAvatar(userID, contentType string, data []byte) (string, error) {
	ext, err := s.validate(BucketAvatars, contentType, int64(len(data)))
	if err != nil {
		return "", err
	}
	if IsVideoType(contentType) {
		return "", ErrUnsupportedType
	}

	key := fmt.Sprintf("%s/avatar.%s", userID, ext)
	return s.write(BucketAvatars, key, data)
}

func (s *BucketStore) write(bucket, key string, data []byte) (string, error) {
	path := filepath.Join(s.rootDir, bucket, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", fmt.Errorf("failed to create object directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write object: %w", err)
	}
	return s.PublicURL(bucket, key), nil
}

func (s *BucketStore) PublicURL(bucket, key string) string {
	return fmt.Sprintf("%s/%s/%s", s.baseURL, bucket, key)
}

// RootDir exposes the on-disk root so the API can serve objects statically.
func (s *BucketStore) RootDir() string {
	return s.rootDir
}
