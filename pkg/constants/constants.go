package constants

const (
	DataFormate = "2006-01-02 15:04:05"

	// 徽章阈值, 每次投影时重新计算, 不落库
	VerifiedSubscriberThreshold int64 = 1_000_000

	DefaultLimit = 24
	MaxLimit     = 100

	CommentMaxLength = 10000
)

const (
	VideoStatusDraft     = "draft"
	VideoStatusPublished = "published"
	VideoStatusPrivate   = "private"
)

const DefaultCategory = "entertainment"

var VideoCategories = []string{
	"entertainment",
	"education",
	"music",
	"gaming",
	"sports",
	"technology",
	"cooking",
	"travel",
	"lifestyle",
	"news",
}

// Redis keys
const (
	// 计数缓存 hash: like_count / dislike_count / comment_count / view_count
	VideoCountKeyTemplate = "count:video:%s"
	// 频道订阅数缓存
	ProfileCountKeyTemplate = "count:profile:%s"
	// 观看会话去重 key, 在会话窗口内只计一次播放
	ViewSessionKeyTemplate = "view:session:%s:%s"
	// 对账任务待检查集合
	DirtyVideoSetKey   = "reconcile:dirty:videos"
	DirtyChannelSetKey = "reconcile:dirty:channels"
	// 投票互斥锁
	VoteLockKeyTemplate = "lock:vote:%s:%s"
)

// RabbitMQ
const (
	EngagementExchange = "engagement.direct"

	VoteQueue         = "engagement.vote"
	CommentQueue      = "engagement.comment"
	SubscriptionQueue = "engagement.subscription"
	ViewQueue         = "engagement.view"

	VoteRoutingKey         = "vote"
	CommentRoutingKey      = "comment"
	SubscriptionRoutingKey = "subscription"
	ViewRoutingKey         = "view"
)

const (
	ApiServiceName         = "api"
	InteractionServiceName = "interaction"
)
