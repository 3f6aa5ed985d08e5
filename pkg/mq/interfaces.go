package mq

import "context"

// MessageProducer 消息生产者接口
type MessageProducer interface {
	PublishVoteEvent(ctx context.Context, event *VoteEvent) error
	PublishCommentEvent(ctx context.Context, event *CommentEvent) error
	PublishSubscriptionEvent(ctx context.Context, event *SubscriptionEvent) error
	PublishViewEvent(ctx context.Context, event *ViewEvent) error
}

// EventHandler 消费端处理接口
type EventHandler interface {
	HandleVoteEvent(ctx context.Context, event *VoteEvent) error
	HandleCommentEvent(ctx context.Context, event *CommentEvent) error
	HandleSubscriptionEvent(ctx context.Context, event *SubscriptionEvent) error
	HandleViewEvent(ctx context.Context, event *ViewEvent) error
}

// 确保Producer实现MessageProducer接口
var _ MessageProducer = (*Producer)(nil)

// 确保MQManager实现MessageProducer接口
var _ MessageProducer = (*MQManager)(nil)

var _ MessageProducer = NoopProducer{}

// NoopProducer 未配置 RabbitMQ 时使用
type NoopProducer struct{}

func (NoopProducer) PublishVoteEvent(context.Context, *VoteEvent) error                 { return nil }
func (NoopProducer) PublishCommentEvent(context.Context, *CommentEvent) error           { return nil }
func (NoopProducer) PublishSubscriptionEvent(context.Context, *SubscriptionEvent) error { return nil }
func (NoopProducer) PublishViewEvent(context.Context, *ViewEvent) error                 { return nil }
