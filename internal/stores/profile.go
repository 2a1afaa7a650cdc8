package stores

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/vibelink/vibelink/internal/models"
	"github.com/vibelink/vibelink/pkg/logger"
)

// ProfileStore owns the viewer's profile record. Purely request/response:
// fetch on session start, patch on edit, avatar upload then patch.
type ProfileStore struct {
	viewerID uuid.UUID
	backend  ProfileBackend
	bucket   AvatarBucket
	logger   *logger.Logger

	mu      sync.RWMutex
	profile *models.Profile
}

func NewProfileStore(viewerID uuid.UUID, backend ProfileBackend, bucket AvatarBucket, logger *logger.Logger) *ProfileStore {
	return &ProfileStore{
		viewerID: viewerID,
		backend:  backend,
		bucket:   bucket,
		logger:   logger,
	}
}

// ProfilePatch carries the editable fields; nil fields are left untouched.
type ProfilePatch struct {
	DisplayName *string            `json:"display_name"`
	Bio         *string            `json:"bio"`
	AvatarURL   *string            `json:"avatar_url"`
	Website     *string            `json:"website"`
	Location    *string            `json:"location"`
	Mood        *string            `json:"mood"`
	Interests   *models.StringList `json:"interests"`
}

func (p *ProfilePatch) fields() map[string]interface{} {
	patch := map[string]interface{}{}
	if p.DisplayName != nil {
		patch["display_name"] = *p.DisplayName
	}
	if p.Bio != nil {
		patch["bio"] = *p.Bio
	}
	if p.AvatarURL != nil {
		patch["avatar_url"] = *p.AvatarURL
	}
	if p.Website != nil {
		patch["website"] = *p.Website
	}
	if p.Location != nil {
		patch["location"] = *p.Location
	}
	if p.Mood != nil {
		patch["mood"] = *p.Mood
	}
	if p.Interests != nil {
		patch["interests"] = *p.Interests
	}
	return patch
}

// FetchProfile loads a profile by id, or the viewer's own when id is the
// zero uuid. A miss is terminal for the view: ErrNotFound, nothing cached.
func (s *ProfileStore) FetchProfile(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	target := id
	if target == uuid.Nil {
		target = s.viewerID
	}

	profile, err := s.backend.GetByID(ctx, target)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch profile: %w", err)
	}
	if profile == nil {
		return nil, ErrNotFound
	}

	if target == s.viewerID {
		s.mu.Lock()
		s.profile = profile
		s.mu.Unlock()
	}

	return profile, nil
}

// Profile returns the locally cached viewer profile, which may be nil
// before the first fetch.
func (s *ProfileStore) Profile() *models.Profile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.profile
}

// UpdateProfile writes the patch through and replaces the local copy with
// the row as written (updated_at is stamped remotely).
func (s *ProfileStore) UpdateProfile(ctx context.Context, patch *ProfilePatch) (*models.Profile, error) {
	fields := patch.fields()
	if len(fields) == 0 {
		s.mu.RLock()
		defer s.mu.RUnlock()
		return s.profile, nil
	}

	profile, err := s.backend.Update(ctx, s.viewerID, fields)
	if err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	if profile == nil {
		return nil, ErrNotFound
	}

	s.mu.Lock()
	s.profile = profile
	s.mu.Unlock()

	s.logger.WithStore("profile").WithField("user_id", s.viewerID).Info("Profile updated")
	return profile, nil
}

// UploadAvatar writes the file to the avatars bucket at the fixed per-user
// path, overwriting any existing object, then patches avatar_url with the
// resulting public URL.
func (s *ProfileStore) UploadAvatar(ctx context.Context, contentType string, data []byte) (string, error) {
	url, err := s.bucket.UploadAvatar(s.viewerID.String(), contentType, data)
	if err != nil {
		return "", err
	}

	if _, err := s.UpdateProfile(ctx, &ProfilePatch{AvatarURL: &url}); err != nil {
		return "", err
	}

	return url, nil
}

// Explore lists other users for discovery, most followed first. The
// result is fetched fresh per call; discovery is never cached in the
// session.
func (s *ProfileStore) Explore(ctx context.Context, limit int) ([]*models.Profile, error) {
	profiles, err := s.backend.ListByFollowerCount(ctx, s.viewerID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}
	return profiles, nil
}

// SearchProfiles matches usernames and display names case-insensitively
// by substring, for user search and tagging. A blank query returns
// nothing without touching the platform.
func (s *ProfileStore) SearchProfiles(ctx context.Context, query string, limit int) ([]*models.Profile, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []*models.Profile{}, nil
	}

	profiles, err := s.backend.SearchByName(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search profiles: %w", err)
	}
	return profiles, nil
}
