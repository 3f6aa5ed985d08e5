package mq

import (
	"context"
	"encoding/json"
	"fmt"

	"VidHub.com/pkg/constants"
	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/rabbitmq/amqp091-go"
)

type Consumer struct {
	conn    *amqp091.Connection
	channel *amqp091.Channel
}

func NewConsumer(rabbitmqURL string) (*Consumer, error) {
	conn, err := amqp091.Dial(rabbitmqURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open a channel: %w", err)
	}

	// 设置QoS，限制未确认消息数量
	err = ch.Qos(
		10,    // prefetch count
		0,     // prefetch size
		false, // global
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to set QoS: %w", err)
	}

	if err := setupTopology(ch); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to setup topology: %w", err)
	}

	return &Consumer{conn: conn, channel: ch}, nil
}

// ConsumeEvents 注册全部队列的消费者
func (c *Consumer) ConsumeEvents(ctx context.Context, handler EventHandler) error {
	for _, b := range bindings {
		if err := c.consume(ctx, b.Queue, handler); err != nil {
			return err
		}
	}
	return nil
}

func (c *Consumer) consume(ctx context.Context, queue string, handler EventHandler) error {
	msgs, err := c.channel.Consume(
		queue,
		"",    // consumer
		false, // auto-ack (设置为false，手动确认)
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,   // args
	)
	if err != nil {
		return fmt.Errorf("failed to register a consumer on %s: %w", queue, err)
	}

	go func() {
		for {
			select {
			case <-ctx.Done():
				hlog.Infof("%s consumer context cancelled", queue)
				return
			case d, ok := <-msgs:
				if !ok {
					hlog.Infof("%s consumer channel closed", queue)
					return
				}

				requeue, err := Dispatch(ctx, queue, d.Body, handler)
				if err != nil {
					hlog.Errorf("Failed to handle %s message: %v", queue, err)
					d.Nack(false, requeue)
					continue
				}
				d.Ack(false) // 确认消息
			}
		}
	}()

	return nil
}

// Dispatch 解码并分发一条消息; 消息格式错误时不重新入队
func Dispatch(ctx context.Context, queue string, body []byte, handler EventHandler) (requeue bool, err error) {
	var handleErr error
	switch queue {
	case constants.VoteQueue:
		var event VoteEvent
		if err := json.Unmarshal(body, &event); err != nil {
			return false, fmt.Errorf("unmarshal vote event: %w", err)
		}
		handleErr = handler.HandleVoteEvent(ctx, &event)
	case constants.CommentQueue:
		var event CommentEvent
		if err := json.Unmarshal(body, &event); err != nil {
			return false, fmt.Errorf("unmarshal comment event: %w", err)
		}
		handleErr = handler.HandleCommentEvent(ctx, &event)
	case constants.SubscriptionQueue:
		var event SubscriptionEvent
		if err := json.Unmarshal(body, &event); err != nil {
			return false, fmt.Errorf("unmarshal subscription event: %w", err)
		}
		handleErr = handler.HandleSubscriptionEvent(ctx, &event)
	case constants.ViewQueue:
		var event ViewEvent
		if err := json.Unmarshal(body, &event); err != nil {
			return false, fmt.Errorf("unmarshal view event: %w", err)
		}
		handleErr = handler.HandleViewEvent(ctx, &event)
	default:
		return false, fmt.Errorf("unknown queue %s", queue)
	}
	if handleErr != nil {
		return true, handleErr
	}
	return false, nil
}

func (c *Consumer) Close() error {
	if c.channel != nil {
		c.channel.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}
