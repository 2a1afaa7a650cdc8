package models

import (
	"time"

	"github.com/google/uuid"
)

// Profile is the public identity row for a user. The id matches the
// auth_users row created at registration. Follower/following/post counts
// are denormalized and may drift from the edge tables.
type Profile struct {
	ID             uuid.UUID  `json:"id" gorm:"type:uuid;primary_key"`
	Username       string     `json:"username" gorm:"uniqueIndex;not null"`
	DisplayName    string     `json:"display_name"`
	Bio            string     `json:"bio"`
	AvatarURL      string     `json:"avatar_url"`
	Website        string     `json:"website"`
	Location       string     `json:"location"`
	Mood           string     `json:"mood"`
	Interests      StringList `json:"interests" gorm:"type:text[]"`
	FollowersCount int64      `json:"followers_count" gorm:"default:0"`
	FollowingCount int64      `json:"following_count" gorm:"default:0"`
	PostsCount     int64      `json:"posts_count" gorm:"default:0"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// AuthUser holds credentials, separate from the public profile the way the
// hosted platform keeps its auth schema apart from application tables.
type AuthUser struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primary_key"`
	Email     string    `json:"email" gorm:"uniqueIndex;not null"`
	Password  string    `json:"-" gorm:"not null"`
	CreatedAt time.Time `json:"created_at"`
}

type Follow struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	FollowerID  uuid.UUID `json:"follower_id" gorm:"type:uuid;not null;index:idx_follower_following"`
	FollowingID uuid.UUID `json:"following_id" gorm:"type:uuid;not null;index:idx_follower_following"`
	CreatedAt   time.Time `json:"created_at"`

	Follower  *Profile `json:"follower,omitempty" gorm:"-"`
	Following *Profile `json:"following,omitempty" gorm:"-"`
}

func (Profile) TableName() string {
	return "profiles"
}

func (AuthUser) TableName() string {
	return "auth_users"
}

func (Follow) TableName() string {
	return "follows"
}
