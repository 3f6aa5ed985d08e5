package model

import "time"

// Subscription 订阅关系, 只有存在与否
type Subscription struct {
	ID           int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	SubscriberID string    `gorm:"not null;size:36;uniqueIndex:uk_subscriber_channel,priority:1" json:"subscriber_id"`
	ChannelID    string    `gorm:"not null;size:36;uniqueIndex:uk_subscriber_channel,priority:2;index" json:"channel_id"`
	CreatedAt    time.Time `json:"created_at"`
}

func (Subscription) TableName() string {
	return "subscriptions"
}
