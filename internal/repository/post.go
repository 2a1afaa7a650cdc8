package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/vibelink/vibelink/internal/models"
	"gorm.io/gorm"
)

type PostRepository struct {
	db *gorm.DB
}

func NewPostRepository(db *gorm.DB) *PostRepository {
	return &PostRepository{db: db}
}

func (r *PostRepository) Create(ctx context.Context, post *models.Post) error {
	if err := r.db.WithContext(ctx).Create(post).Error; err != nil {
		return fmt.Errorf("failed to create post: %w", err)
	}
	return nil
}

// List returns the global feed newest first. Authors are joined
// client-side from a separate profile lookup, not preloaded here.
func (r *PostRepository) List(ctx context.Context) ([]*models.Post, error) {
	var posts []*models.Post
	if err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Find(&posts).Error; err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	return posts, nil
}

func (r *PostRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Post, error) {
	var post models.Post
	if err := r.db.WithContext(ctx).First(&post, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get post: %w", err)
	}
	return &post, nil
}

func (r *PostRepository) UpdateLikesCount(ctx context.Context, postID uuid.UUID, delta int64) error {
	if err := r.db.WithContext(ctx).Model(&models.Post{}).
		Where("id = ?", postID).
		UpdateColumn("likes_count", gorm.Expr("likes_count + ?", delta)).Error; err != nil {
		return fmt.Errorf("failed to update likes count: %w", err)
	}
	return nil
}

func (r *PostRepository) UpdateCommentsCount(ctx context.Context, postID uuid.UUID, delta int64) error {
	if err := r.db.WithContext(ctx).Model(&models.Post{}).
		Where("id = ?", postID).
		UpdateColumn("comments_count", gorm.Expr("comments_count + ?", delta)).Error; err != nil {
		return fmt.Errorf("failed to update comments count: %w", err)
	}
	return nil
}
