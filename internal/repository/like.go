package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/vibelink/vibelink/internal/models"
	"gorm.io/gorm"
)

type LikeRepository struct {
	db *gorm.DB
}

func NewLikeRepository(db *gorm.DB) *LikeRepository {
	return &LikeRepository{db: db}
}

// List returns the full like edge set, unscoped to any viewer. The store
// indexes it locally; uniqueness per (user, post) is only a client-side
// pre-check.
func (r *LikeRepository) List(ctx context.Context) ([]*models.Like, error) {
	var likes []*models.Like
	if err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Find(&likes).Error; err != nil {
		return nil, fmt.Errorf("failed to list likes: %w", err)
	}
	return likes, nil
}

func (r *LikeRepository) Create(ctx context.Context, like *models.Like) error {
	if err := r.db.WithContext(ctx).Create(like).Error; err != nil {
		return fmt.Errorf("failed to create like: %w", err)
	}
	return nil
}

func (r *LikeRepository) DeleteByID(ctx context.Context, id uuid.UUID) error {
	if err := r.db.WithContext(ctx).
		Delete(&models.Like{}, "id = ?", id).Error; err != nil {
		return fmt.Errorf("failed to delete like: %w", err)
	}
	return nil
}
