package model

import "time"

// Profile 频道资料, ID 与账号 ID 相同
type Profile struct {
	ID              string    `gorm:"primaryKey;size:36" json:"id"`
	Username        string    `gorm:"not null;size:64;uniqueIndex" json:"username"`
	DisplayName     string    `gorm:"size:128" json:"display_name"`
	AvatarUrl       string    `gorm:"size:1024" json:"avatar_url"`
	Bio             string    `gorm:"type:text" json:"bio"`
	SubscriberCount int64     `gorm:"not null;default:0" json:"subscriber_count"`
	TotalViews      int64     `gorm:"not null;default:0" json:"total_views"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func (Profile) TableName() string {
	return "profiles"
}

// Name 展示名为空时使用用户名
func (p *Profile) Name() string {
	if p.DisplayName != "" {
		return p.DisplayName
	}
	return p.Username
}
