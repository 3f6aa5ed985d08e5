package mq

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"VidHub.com/pkg/constants"
	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/rabbitmq/amqp091-go"
)

type Producer struct {
	conn    *amqp091.Connection
	channel *amqp091.Channel
	// amqp channel 不支持并发发布
	mu sync.Mutex
}

// 队列与路由键
var bindings = []struct {
	Queue      string
	RoutingKey string
}{
	{constants.VoteQueue, constants.VoteRoutingKey},
	{constants.CommentQueue, constants.CommentRoutingKey},
	{constants.SubscriptionQueue, constants.SubscriptionRoutingKey},
	{constants.ViewQueue, constants.ViewRoutingKey},
}

func NewProducer(rabbitmqURL string) (*Producer, error) {
	conn, err := amqp091.Dial(rabbitmqURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open a channel: %w", err)
	}

	producer := &Producer{
		conn:    conn,
		channel: ch,
	}

	// 声明exchanges和queues
	if err := setupTopology(ch); err != nil {
		producer.Close()
		return nil, fmt.Errorf("failed to setup topology: %w", err)
	}

	return producer, nil
}

func setupTopology(ch *amqp091.Channel) error {
	// 声明交换机
	err := ch.ExchangeDeclare(
		constants.EngagementExchange,
		"direct",
		true,  // durable
		false, // auto-delete
		false, // internal
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		return fmt.Errorf("failed to declare engagement exchange: %w", err)
	}

	for _, b := range bindings {
		// 声明队列
		if _, err := ch.QueueDeclare(
			b.Queue,
			true,  // durable
			false, // delete when unused
			false, // exclusive
			false, // no-wait
			nil,   // arguments
		); err != nil {
			return fmt.Errorf("failed to declare queue %s: %w", b.Queue, err)
		}
		// 绑定队列到交换机
		if err := ch.QueueBind(b.Queue, b.RoutingKey, constants.EngagementExchange, false, nil); err != nil {
			return fmt.Errorf("failed to bind queue %s: %w", b.Queue, err)
		}
	}
	return nil
}

func (p *Producer) publish(ctx context.Context, routingKey string, event interface{}) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal %s event: %w", routingKey, err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	err = p.channel.PublishWithContext(
		ctx,
		constants.EngagementExchange,
		routingKey,
		false, // mandatory
		false, // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			Timestamp:    time.Now(),
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish %s event: %w", routingKey, err)
	}

	hlog.CtxDebugf(ctx, "Published %s event: %s", routingKey, body)
	return nil
}

func (p *Producer) PublishVoteEvent(ctx context.Context, event *VoteEvent) error {
	return p.publish(ctx, constants.VoteRoutingKey, event)
}

func (p *Producer) PublishCommentEvent(ctx context.Context, event *CommentEvent) error {
	return p.publish(ctx, constants.CommentRoutingKey, event)
}

func (p *Producer) PublishSubscriptionEvent(ctx context.Context, event *SubscriptionEvent) error {
	return p.publish(ctx, constants.SubscriptionRoutingKey, event)
}

func (p *Producer) PublishViewEvent(ctx context.Context, event *ViewEvent) error {
	return p.publish(ctx, constants.ViewRoutingKey, event)
}

func (p *Producer) Close() error {
	if p.channel != nil {
		p.channel.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}
