package amqp

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rabbitmq/amqp091-go"

	applog "homebudget/internal/log"
)

const publishTimeout = 5 * time.Second

// Client owns one connection and one channel bound to the voice command
// queue. The queue name doubles as the routing key on a direct exchange.
type Client struct {
	conn     *amqp091.Connection
	channel  *amqp091.Channel
	exchange string
	queue    string
	logger   *applog.Logger
}

func NewClient(url, exchange, queue string, logger *applog.Logger) (*Client, error) {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	logger = logger.WithComponent(applog.ComponentAMQP)

	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial AMQP: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if err := declareTopology(ch, exchange, queue); err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}

	return &Client{conn: conn, channel: ch, exchange: exchange, queue: queue, logger: logger}, nil
}

func declareTopology(ch *amqp091.Channel, exchange, queue string) error {
	if err := ch.ExchangeDeclare(exchange, "direct", true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare exchange %s: %w", exchange, err)
	}
	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare queue %s: %w", queue, err)
	}
	if err := ch.QueueBind(queue, queue, exchange, false, nil); err != nil {
		return fmt.Errorf("bind queue %s to %s: %w", queue, exchange, err)
	}
	return nil
}

// PublishVoiceCommand enqueues one captured transcript for the worker.
func (c *Client) PublishVoiceCommand(ctx context.Context, transcript string) error {
	body, err := NewVoiceCommandMessage(transcript).ToJSON()
	if err != nil {
		return fmt.Errorf("marshal voice command: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	pub := amqp091.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp091.Persistent,
		Timestamp:    time.Now(),
		Body:         body,
	}
	if err := c.channel.PublishWithContext(ctx, c.exchange, c.queue, false, false, pub); err != nil {
		return fmt.Errorf("publish voice command: %w", err)
	}

	c.logger.InfoContext(ctx, "Published voice command",
		applog.FieldTranscript, transcript)
	return nil
}

// ConsumeVoiceCommands delivers queued transcripts to handler until ctx is
// done. Deliveries are acked only after the handler succeeds; failures are
// dropped without requeue because a transcript that failed once will fail
// again.
func (c *Client) ConsumeVoiceCommands(ctx context.Context, handler func(*VoiceCommandMessage) error) error {
	deliveries, err := c.channel.Consume(c.queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("start consuming %s: %w", c.queue, err)
	}
	c.logger.InfoContext(ctx, "Consuming voice commands", "queue", c.queue)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-deliveries:
			if !ok {
				return errors.New("delivery channel closed")
			}
			c.process(ctx, d, handler)
		}
	}
}

func (c *Client) process(ctx context.Context, d amqp091.Delivery, handler func(*VoiceCommandMessage) error) {
	msg, err := VoiceCommandMessageFromJSON(d.Body)
	if err != nil {
		c.logger.ErrorContext(ctx, "Discarding malformed voice command", applog.FieldError, err)
		d.Nack(false, false)
		return
	}
	if err := handler(msg); err != nil {
		c.logger.ErrorContext(ctx, "Voice command handler failed",
			applog.FieldError, err,
			applog.FieldTranscript, msg.Transcript)
		d.Nack(false, false)
		return
	}
	d.Ack(false)
	c.logger.InfoContext(ctx, "Processed voice command",
		applog.FieldTranscript, msg.Transcript)
}

func (c *Client) Close() error {
	if c.channel != nil {
		c.channel.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}
