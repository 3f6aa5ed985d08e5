package engagement

import "VidHub.com/pkg/constants"

// IsVerified 订阅数达到阈值的频道显示认证徽章, nil 视为未知
func IsVerified(subscriberCount *int64) bool {
	return subscriberCount != nil && *subscriberCount >= constants.VerifiedSubscriberThreshold
}

// IsVerifiedCount 已知订阅数时的便捷形式
func IsVerifiedCount(subscriberCount int64) bool {
	return IsVerified(&subscriberCount)
}
