package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/vibelink/vibelink/internal/models"
	"gorm.io/gorm"
)

type FollowRepository struct {
	db *gorm.DB
}

func NewFollowRepository(db *gorm.DB) *FollowRepository {
	return &FollowRepository{db: db}
}

func (r *FollowRepository) Create(ctx context.Context, follow *models.Follow) error {
	if err := r.db.WithContext(ctx).Create(follow).Error; err != nil {
		return fmt.Errorf("failed to create follow: %w", err)
	}
	return nil
}

func (r *FollowRepository) Delete(ctx context.Context, followerID, followingID uuid.UUID) error {
	if err := r.db.WithContext(ctx).
		Where("follower_id = ? AND following_id = ?", followerID, followingID).
		Delete(&models.Follow{}).Error; err != nil {
		return fmt.Errorf("failed to delete follow: %w", err)
	}
	return nil
}

// ListFollowers returns the edges pointing at userID.
func (r *FollowRepository) ListFollowers(ctx context.Context, userID uuid.UUID) ([]*models.Follow, error) {
	var follows []*models.Follow
	if err := r.db.WithContext(ctx).
		Where("following_id = ?", userID).
		Find(&follows).Error; err != nil {
		return nil, fmt.Errorf("failed to list followers: %w", err)
	}
	return follows, nil
}

// ListFollowing returns the edges originating at userID.
func (r *FollowRepository) ListFollowing(ctx context.Context, userID uuid.UUID) ([]*models.Follow, error) {
	var follows []*models.Follow
	if err := r.db.WithContext(ctx).
		Where("follower_id = ?", userID).
		Find(&follows).Error; err != nil {
		return nil, fmt.Errorf("failed to list following: %w", err)
	}
	return follows, nil
}
