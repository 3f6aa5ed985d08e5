package db

import (
	"context"

	"VidHub.com/cmd/model"
	"VidHub.com/pkg/database"
	"VidHub.com/pkg/engagement"
	"VidHub.com/pkg/errno"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

func (s *Store) GetProfile(ctx context.Context, profileID string) (*model.Profile, error) {
	profile := &model.Profile{}
	if err := s.db.WithContext(ctx).Where("id = ?", profileID).Take(profile).Error; err != nil {
		return nil, database.TranslateErr(err, "get profile %s", profileID)
	}
	return profile, nil
}

func (s *Store) IsSubscribed(ctx context.Context, subscriberID, channelID string) (bool, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&model.Subscription{}).
		Where("subscriber_id = ? AND channel_id = ?", subscriberID, channelID).Count(&count).Error; err != nil {
		return false, database.TranslateErr(err, "check subscription %s/%s", subscriberID, channelID)
	}
	return count > 0, nil
}

// CreateSubscription 插入订阅, 已存在时返回 ConflictErr
func (s *Store) CreateSubscription(ctx context.Context, subscriberID, channelID string) error {
	return createSubscription(s.db.WithContext(ctx), subscriberID, channelID)
}

func createSubscription(tx *gorm.DB, subscriberID, channelID string) error {
	sub := &model.Subscription{SubscriberID: subscriberID, ChannelID: channelID}
	if err := tx.Create(sub).Error; err != nil {
		return database.TranslateErr(err, "create subscription %s/%s", subscriberID, channelID)
	}
	return nil
}

// DeleteSubscription 删除订阅, 返回是否真的删除了记录
func (s *Store) DeleteSubscription(ctx context.Context, subscriberID, channelID string) (bool, error) {
	return deleteSubscription(s.db.WithContext(ctx), subscriberID, channelID)
}

func deleteSubscription(tx *gorm.DB, subscriberID, channelID string) (bool, error) {
	res := tx.Where("subscriber_id = ? AND channel_id = ?", subscriberID, channelID).Delete(&model.Subscription{})
	if res.Error != nil {
		return false, database.TranslateErr(res.Error, "delete subscription %s/%s", subscriberID, channelID)
	}
	return res.RowsAffected > 0, nil
}

// ApplySubscription 订阅/取消订阅并同步 subscriber_count
// 重复订阅或取消不存在的订阅不产生增量, changed 为 false
func (s *Store) ApplySubscription(ctx context.Context, subscriberID, channelID string, subscribe bool) (changed bool, subscriberCount int64, err error) {
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var delta int64
		if subscribe {
			if err := createSubscription(tx, subscriberID, channelID); err != nil {
				return err
			}
			delta = 1
		} else {
			deleted, err := deleteSubscription(tx, subscriberID, channelID)
			if err != nil {
				return err
			}
			if !deleted {
				return errors.WithStack(errno.ConflictErr.WithMessage("not subscribed"))
			}
			delta = -1
		}
		v, err := incrementCounter(tx, &model.Profile{}, channelID, engagement.CounterSubscribers, delta)
		if err != nil {
			return err
		}
		changed, subscriberCount = true, v
		return nil
	})
	if errno.Is(err, errno.ConflictErr) {
		profile, perr := s.GetProfile(ctx, channelID)
		if perr != nil {
			return false, 0, perr
		}
		return false, engagement.Clamp(profile.SubscriberCount), nil
	}
	return changed, subscriberCount, err
}
