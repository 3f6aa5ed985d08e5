package mq

import (
	"time"

	"VidHub.com/pkg/engagement"
	"github.com/google/uuid"
)

// VoteEvent 投票事件, 携带提交后的计数
type VoteEvent struct {
	EventID   string            `json:"event_id"`
	UserID    string            `json:"user_id"`
	VideoID   string            `json:"video_id"`
	From      engagement.State  `json:"from"`
	To        engagement.State  `json:"to"`
	Delta     engagement.Delta  `json:"delta"`
	Counts    engagement.Counts `json:"counts"`
	Timestamp int64             `json:"timestamp"`
}

// CommentEvent 评论事件
type CommentEvent struct {
	EventID      string `json:"event_id"`
	CommentID    string `json:"comment_id"`
	VideoID      string `json:"video_id"`
	UserID       string `json:"user_id"`
	ParentID     string `json:"parent_id,omitempty"`
	CommentCount int64  `json:"comment_count"`
	Timestamp    int64  `json:"timestamp"`
}

// SubscriptionEvent 订阅事件
type SubscriptionEvent struct {
	EventID         string `json:"event_id"`
	SubscriberID    string `json:"subscriber_id"`
	ChannelID       string `json:"channel_id"`
	Subscribed      bool   `json:"subscribed"`
	SubscriberCount int64  `json:"subscriber_count"`
	Timestamp       int64  `json:"timestamp"`
}

// ViewEvent 播放事件
type ViewEvent struct {
	EventID   string `json:"event_id"`
	ViewerID  string `json:"viewer_id,omitempty"`
	VideoID   string `json:"video_id"`
	CreatorID string `json:"creator_id"`
	ViewCount int64  `json:"view_count"`
	Timestamp int64  `json:"timestamp"`
}

func newEventID() string {
	return uuid.New().String()
}

func NewVoteEvent(userID, videoID string, eff engagement.Effect, counts engagement.Counts) *VoteEvent {
	return &VoteEvent{
		EventID:   newEventID(),
		UserID:    userID,
		VideoID:   videoID,
		From:      eff.From,
		To:        eff.To,
		Delta:     eff.Delta,
		Counts:    counts,
		Timestamp: time.Now().Unix(),
	}
}

func NewCommentEvent(commentID, videoID, userID, parentID string, commentCount int64) *CommentEvent {
	return &CommentEvent{
		EventID:      newEventID(),
		CommentID:    commentID,
		VideoID:      videoID,
		UserID:       userID,
		ParentID:     parentID,
		CommentCount: commentCount,
		Timestamp:    time.Now().Unix(),
	}
}

func NewSubscriptionEvent(subscriberID, channelID string, subscribed bool, subscriberCount int64) *SubscriptionEvent {
	return &SubscriptionEvent{
		EventID:         newEventID(),
		SubscriberID:    subscriberID,
		ChannelID:       channelID,
		Subscribed:      subscribed,
		SubscriberCount: subscriberCount,
		Timestamp:       time.Now().Unix(),
	}
}

func NewViewEvent(viewerID, videoID, creatorID string, viewCount int64) *ViewEvent {
	return &ViewEvent{
		EventID:   newEventID(),
		ViewerID:  viewerID,
		VideoID:   videoID,
		CreatorID: creatorID,
		ViewCount: viewCount,
		Timestamp: time.Now().Unix(),
	}
}
