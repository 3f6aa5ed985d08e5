package model

import "time"

type Comment struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	VideoID   string    `gorm:"not null;size:36;index:idx_comments_video_parent,priority:1" json:"video_id"`
	UserID    string    `gorm:"not null;size:36;index" json:"user_id"`
	ParentID  *string   `gorm:"size:36;index:idx_comments_video_parent,priority:2" json:"parent_id"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	LikeCount int64     `gorm:"not null;default:0" json:"like_count"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Comment) TableName() string {
	return "comments"
}

// VideoLike 用户对视频的当前投票, (user_id, video_id) 唯一
type VideoLike struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    string    `gorm:"not null;size:36;uniqueIndex:uk_user_video,priority:1" json:"user_id"`
	VideoID   string    `gorm:"not null;size:36;uniqueIndex:uk_user_video,priority:2;index" json:"video_id"`
	IsLike    bool      `gorm:"not null" json:"is_like"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (VideoLike) TableName() string {
	return "video_likes"
}
