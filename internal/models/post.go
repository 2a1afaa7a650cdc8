package models

import (
	"time"

	"github.com/google/uuid"
)

// Post carries at most one media URL: image or video, never both.
// likes_count and comments_count are denormalized for display.
type Post struct {
	ID             uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	UserID         uuid.UUID `json:"user_id" gorm:"type:uuid;not null;index"`
	Caption        string    `json:"caption"`
	ImageURL       string    `json:"image_url"`
	VideoURL       string    `json:"video_url"`
	Location       string    `json:"location"`
	Mood           string    `json:"mood"`
	IsDisappearing bool      `json:"is_disappearing" gorm:"default:false"`
	LikesCount     int64     `json:"likes_count" gorm:"default:0"`
	CommentsCount  int64     `json:"comments_count" gorm:"default:0"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`

	// Author is joined client-side from profiles, not a relational preload.
	Author *Profile `json:"author,omitempty" gorm:"-"`
}

type Like struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	UserID    uuid.UUID `json:"user_id" gorm:"type:uuid;not null;index:idx_user_post"`
	PostID    uuid.UUID `json:"post_id" gorm:"type:uuid;not null;index:idx_user_post"`
	CreatedAt time.Time `json:"created_at"`
}

type Comment struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	PostID    uuid.UUID `json:"post_id" gorm:"type:uuid;not null;index"`
	UserID    uuid.UUID `json:"user_id" gorm:"type:uuid;not null"`
	Content   string    `json:"content" gorm:"type:text;not null"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Author *Profile `json:"author,omitempty" gorm:"-"`
}

func (Post) TableName() string {
	return "posts"
}

func (Like) TableName() string {
	return "likes"
}

func (Comment) TableName() string {
	return "comments"
}
