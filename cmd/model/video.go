package model

import (
	"strings"
	"time"

	"VidHub.com/pkg/constants"
)

type Video struct {
	ID           string    `gorm:"primaryKey;size:36" json:"id"`
	CreatorID    string    `gorm:"not null;size:36;index" json:"creator_id"`
	Title        string    `gorm:"not null;size:255" json:"title"`
	Description  string    `gorm:"type:text" json:"description"`
	Category     string    `gorm:"not null;size:32;default:'entertainment'" json:"category"`
	Status       string    `gorm:"not null;size:16;default:'published';index:idx_videos_status_created,priority:1" json:"status"`
	VideoUrl     string    `gorm:"not null;size:1024" json:"video_url"`
	ThumbnailUrl string    `gorm:"size:1024" json:"thumbnail_url"`
	Duration     int64     `gorm:"not null;default:0" json:"duration"` // 秒
	Tags         string    `gorm:"size:1024" json:"tags"`              // 逗号分隔
	ViewCount    int64     `gorm:"not null;default:0" json:"view_count"`
	LikeCount    int64     `gorm:"not null;default:0" json:"like_count"`
	DislikeCount int64     `gorm:"not null;default:0" json:"dislike_count"`
	CommentCount int64     `gorm:"not null;default:0" json:"comment_count"`
	CreatedAt    time.Time `gorm:"not null;index:idx_videos_status_created,priority:2" json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (Video) TableName() string {
	return "videos"
}

// VisibleTo 非发布状态的视频只对作者可见
func (v *Video) VisibleTo(userID string) bool {
	if v.Status == constants.VideoStatusPublished {
		return true
	}
	return userID != "" && userID == v.CreatorID
}

// TagList 拆分标签
func (v *Video) TagList() []string {
	if v.Tags == "" {
		return nil
	}
	parts := strings.Split(v.Tags, ",")
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			tags = append(tags, p)
		}
	}
	return tags
}

// 观看记录, 同一用户同一视频可以有多条
type WatchHistory struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    string    `gorm:"not null;size:36;index:idx_watch_user_video,priority:1" json:"user_id"`
	VideoID   string    `gorm:"not null;size:36;index:idx_watch_user_video,priority:2" json:"video_id"`
	WatchTime int64     `gorm:"not null;default:0" json:"watch_time"` // 秒
	WatchedAt time.Time `gorm:"not null;index" json:"watched_at"`
}

func (WatchHistory) TableName() string {
	return "watch_history"
}

// 播放列表
type Playlist struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	UserID      string    `gorm:"not null;size:36;index" json:"user_id"`
	Title       string    `gorm:"not null;size:255" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	IsPublic    bool      `gorm:"not null;default:true" json:"is_public"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (Playlist) TableName() string {
	return "playlists"
}

// 播放列表中的视频
type PlaylistVideo struct {
	ID         int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	PlaylistID string    `gorm:"not null;size:36;uniqueIndex:uk_playlist_video,priority:1" json:"playlist_id"`
	VideoID    string    `gorm:"not null;size:36;uniqueIndex:uk_playlist_video,priority:2" json:"video_id"`
	Position   int       `gorm:"not null;default:0" json:"position"`
	AddedAt    time.Time `json:"added_at"`
}

func (PlaylistVideo) TableName() string {
	return "playlist_videos"
}
