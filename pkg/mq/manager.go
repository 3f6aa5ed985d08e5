package mq

import (
	"context"
	"fmt"
)

// MQManager 统一的消息队列管理器
type MQManager struct {
	// 生产者功能
	producer *Producer

	// 消费者功能
	consumer *Consumer
}

// NewMQManager 创建统一的消息队列管理器
func NewMQManager(rabbitmqURL string) (*MQManager, error) {
	// 创建生产者
	producer, err := NewProducer(rabbitmqURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create producer: %w", err)
	}

	// 创建消费者
	consumer, err := NewConsumer(rabbitmqURL)
	if err != nil {
		producer.Close()
		return nil, fmt.Errorf("failed to create consumer: %w", err)
	}

	return &MQManager{
		producer: producer,
		consumer: consumer,
	}, nil
}

func (m *MQManager) PublishVoteEvent(ctx context.Context, event *VoteEvent) error {
	return m.producer.PublishVoteEvent(ctx, event)
}

func (m *MQManager) PublishCommentEvent(ctx context.Context, event *CommentEvent) error {
	return m.producer.PublishCommentEvent(ctx, event)
}

func (m *MQManager) PublishSubscriptionEvent(ctx context.Context, event *SubscriptionEvent) error {
	return m.producer.PublishSubscriptionEvent(ctx, event)
}

func (m *MQManager) PublishViewEvent(ctx context.Context, event *ViewEvent) error {
	return m.producer.PublishViewEvent(ctx, event)
}

func (m *MQManager) ConsumeEvents(ctx context.Context, handler EventHandler) error {
	return m.consumer.ConsumeEvents(ctx, handler)
}

// HealthCheck 检查连接状态
func (m *MQManager) HealthCheck() error {
	if m.producer.conn == nil || m.producer.conn.IsClosed() {
		return fmt.Errorf("producer connection is closed")
	}
	if m.consumer.conn == nil || m.consumer.conn.IsClosed() {
		return fmt.Errorf("consumer connection is closed")
	}
	return nil
}

func (m *MQManager) Close() error {
	if err := m.consumer.Close(); err != nil {
		return err
	}
	return m.producer.Close()
}
