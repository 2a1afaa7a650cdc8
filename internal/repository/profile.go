package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/vibelink/vibelink/internal/models"
	"github.com/vibelink/vibelink/pkg/cache"
	"gorm.io/gorm"
)

// ProfileRepository reads and patches profile rows. Individual profiles
// are read-through cached in Redis because every client-side join funnels
// through the same batched lookup.
type ProfileRepository struct {
	db    *gorm.DB
	cache *cache.RedisClient
	ttl   time.Duration
}

func NewProfileRepository(db *gorm.DB, cache *cache.RedisClient, ttl time.Duration) *ProfileRepository {
	return &ProfileRepository{db: db, cache: cache, ttl: ttl}
}

func profileCacheKey(id uuid.UUID) string {
	return "profile:" + id.String()
}

func (r *ProfileRepository) Create(ctx context.Context, profile *models.Profile) error {
	if err := r.db.WithContext(ctx).Create(profile).Error; err != nil {
		return fmt.Errorf("failed to create profile: %w", err)
	}
	return nil
}

// cachedProfile serves a profile from Redis when it has a clean entry.
// Entries that fail to decode are purged so they cannot shadow the row.
func (r *ProfileRepository) cachedProfile(ctx context.Context, id uuid.UUID) (*models.Profile, bool) {
	if r.cache == nil {
		return nil, false
	}

	var cached models.Profile
	err := r.cache.GetJSON(ctx, profileCacheKey(id), &cached)
	if err == nil {
		return &cached, true
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		_ = r.cache.Delete(ctx, profileCacheKey(id))
	}
	return nil, false
}

func (r *ProfileRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	if cached, ok := r.cachedProfile(ctx, id); ok {
		return cached, nil
	}

	var profile models.Profile
	if err := r.db.WithContext(ctx).First(&profile, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get profile by ID: %w", err)
	}

	r.cacheProfile(ctx, &profile)
	return &profile, nil
}

func (r *ProfileRepository) GetByUsername(ctx context.Context, username string) (*models.Profile, error) {
	var profile models.Profile
	if err := r.db.WithContext(ctx).First(&profile, "username = ?", username).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get profile by username: %w", err)
	}
	return &profile, nil
}

// GetByIDs resolves a deduplicated set of profile ids in one query, serving
// what it can from cache first. Missing ids are simply absent from the result.
func (r *ProfileRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*models.Profile, error) {
	result := make(map[uuid.UUID]*models.Profile, len(ids))
	seen := make(map[uuid.UUID]bool, len(ids))
	var misses []uuid.UUID

	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		if cached, ok := r.cachedProfile(ctx, id); ok {
			result[id] = cached
			continue
		}
		misses = append(misses, id)
	}

	if len(misses) == 0 {
		return result, nil
	}

	var profiles []*models.Profile
	if err := r.db.WithContext(ctx).Where("id IN ?", misses).Find(&profiles).Error; err != nil {
		return nil, fmt.Errorf("failed to get profiles by IDs: %w", err)
	}

	for _, profile := range profiles {
		result[profile.ID] = profile
		r.cacheProfile(ctx, profile)
	}

	return result, nil
}

// ListByFollowerCount lists profiles for the explore view: everyone but
// the excluded viewer, most followed first. Uncached; discovery always
// reads the table.
func (r *ProfileRepository) ListByFollowerCount(ctx context.Context, exclude uuid.UUID, limit int) ([]*models.Profile, error) {
	query := r.db.WithContext(ctx).
		Where("id <> ?", exclude).
		Order("followers_count DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var profiles []*models.Profile
	if err := query.Find(&profiles).Error; err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}
	return profiles, nil
}

// SearchByName matches username or display name by case-insensitive
// substring, most followed first.
func (r *ProfileRepository) SearchByName(ctx context.Context, query string, limit int) ([]*models.Profile, error) {
	pattern := "%" + query + "%"
	q := r.db.WithContext(ctx).
		Where("username ILIKE ? OR display_name ILIKE ?", pattern, pattern).
		Order("followers_count DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}

	var profiles []*models.Profile
	if err := q.Find(&profiles).Error; err != nil {
		return nil, fmt.Errorf("failed to search profiles: %w", err)
	}
	return profiles, nil
}

// Update applies a partial patch and stamps updated_at, returning the row
// as written.
func (r *ProfileRepository) Update(ctx context.Context, id uuid.UUID, patch map[string]interface{}) (*models.Profile, error) {
	patch["updated_at"] = time.Now()

	if err := r.db.WithContext(ctx).Model(&models.Profile{}).
		Where("id = ?", id).
		Updates(patch).Error; err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	r.invalidate(ctx, id)

	var profile models.Profile
	if err := r.db.WithContext(ctx).First(&profile, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to reload profile: %w", err)
	}

	r.cacheProfile(ctx, &profile)
	return &profile, nil
}

func (r *ProfileRepository) UpdateFollowersCount(ctx context.Context, id uuid.UUID, delta int64) error {
	if err := r.db.WithContext(ctx).Model(&models.Profile{}).
		Where("id = ?", id).
		UpdateColumn("followers_count", gorm.Expr("followers_count + ?", delta)).Error; err != nil {
		return fmt.Errorf("failed to update followers count: %w", err)
	}
	r.invalidate(ctx, id)
	return nil
}

func (r *ProfileRepository) UpdateFollowingCount(ctx context.Context, id uuid.UUID, delta int64) error {
	if err := r.db.WithContext(ctx).Model(&models.Profile{}).
		Where("id = ?", id).
		UpdateColumn("following_count", gorm.Expr("following_count + ?", delta)).Error; err != nil {
		return fmt.Errorf("failed to update following count: %w", err)
	}
	r.invalidate(ctx, id)
	return nil
}

func (r *ProfileRepository) UpdatePostsCount(ctx context.Context, id uuid.UUID, delta int64) error {
	if err := r.db.WithContext(ctx).Model(&models.Profile{}).
		Where("id = ?", id).
		UpdateColumn("posts_count", gorm.Expr("posts_count + ?", delta)).Error; err != nil {
		return fmt.Errorf("failed to update posts count: %w", err)
	}
	r.invalidate(ctx, id)
	return nil
}

func (r *ProfileRepository) cacheProfile(ctx context.Context, profile *models.Profile) {
	if r.cache == nil {
		return
	}
	_ = r.cache.SetJSON(ctx, profileCacheKey(profile.ID), profile, r.ttl)
}

func (r *ProfileRepository) invalidate(ctx context.Context, id uuid.UUID) {
	if r.cache == nil {
		return
	}
	_ = r.cache.Delete(ctx, profileCacheKey(id))
}
