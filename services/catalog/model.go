package catalog

import "time"

// The tables below belong to the content and account services. This package
// only reads them.

type Video struct {
	ID              string    `gorm:"column:id;primaryKey"`
	OwnerID         string    `gorm:"column:owner_id;size:64;index"`
	DurationSeconds *int64    `gorm:"column:duration_seconds"`
	CreatedAt       time.Time `gorm:"column:created_at"`
}

func (Video) TableName() string { return "videos" }

type Comment struct {
	ID        string    `gorm:"column:id;primaryKey"`
	UserID    string    `gorm:"column:user_id;size:64;index:idx_comment_user_video"`
	VideoID   string    `gorm:"column:video_id;size:128;index:idx_comment_user_video"`
	Content   string    `gorm:"column:content;type:text"`
	CreatedAt time.Time `gorm:"column:created_at;index"`
}

func (Comment) TableName() string { return "comments" }

type UserProfile struct {
	UserID           string    `gorm:"column:user_id;primaryKey;size:64"`
	AvatarURL        string    `gorm:"column:avatar_url"`
	AvatarVerified   bool      `gorm:"column:avatar_verified;not null;default:false"`
	DisplayName      string    `gorm:"column:display_name"`
	SignupOriginHash string    `gorm:"column:signup_origin_hash;size:128;index"`
	CreatedAt        time.Time `gorm:"column:created_at"`
}

func (UserProfile) TableName() string { return "user_profiles" }

// Models is used by tests and local setups that have no upstream services.
func Models() []any {
	return []any{&Video{}, &Comment{}, &UserProfile{}}
}
