package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/vibelink/vibelink/internal/models"
	"gorm.io/gorm"
)

type MessageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

func (r *MessageRepository) Create(ctx context.Context, message *models.Message) error {
	if err := r.db.WithContext(ctx).Create(message).Error; err != nil {
		return fmt.Errorf("failed to create message: %w", err)
	}
	return nil
}

// Thread returns every message exchanged between the two users, in either
// direction, ordered by created_at ascending.
func (r *MessageRepository) Thread(ctx context.Context, userA, userB uuid.UUID) ([]*models.Message, error) {
	var messages []*models.Message
	if err := r.db.WithContext(ctx).
		Where("(sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)",
			userA, userB, userB, userA).
		Order("created_at ASC").
		Find(&messages).Error; err != nil {
		return nil, fmt.Errorf("failed to get message thread: %w", err)
	}
	return messages, nil
}

// ListUnread returns every message addressed to receiverID that has not
// been marked read.
func (r *MessageRepository) ListUnread(ctx context.Context, receiverID uuid.UUID) ([]*models.Message, error) {
	var messages []*models.Message
	if err := r.db.WithContext(ctx).
		Where("receiver_id = ? AND read_at IS NULL", receiverID).
		Order("created_at ASC").
		Find(&messages).Error; err != nil {
		return nil, fmt.Errorf("failed to list unread messages: %w", err)
	}
	return messages, nil
}

// MarkThreadRead stamps read_at on every unread message from senderID to
// receiverID, and only those rows.
func (r *MessageRepository) MarkThreadRead(ctx context.Context, senderID, receiverID uuid.UUID) error {
	if err := r.db.WithContext(ctx).Model(&models.Message{}).
		Where("sender_id = ? AND receiver_id = ? AND read_at IS NULL", senderID, receiverID).
		UpdateColumn("read_at", time.Now()).Error; err != nil {
		return fmt.Errorf("failed to mark thread read: %w", err)
	}
	return nil
}
