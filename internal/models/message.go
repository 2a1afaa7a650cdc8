package models

import (
	"time"

	"github.com/google/uuid"
)

// Message is a direct message between two profiles. ReadAt stays null
// until the receiver opens the thread.
type Message struct {
	ID         uuid.UUID  `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	SenderID   uuid.UUID  `json:"sender_id" gorm:"type:uuid;not null;index:idx_sender_receiver"`
	ReceiverID uuid.UUID  `json:"receiver_id" gorm:"type:uuid;not null;index:idx_sender_receiver"`
	Content    string     `json:"content" gorm:"type:text;not null"`
	ReadAt     *time.Time `json:"read_at"`
	CreatedAt  time.Time  `json:"created_at"`

	Sender *Profile `json:"sender,omitempty" gorm:"-"`
}

func (Message) TableName() string {
	return "messages"
}
