package events

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// Type enumerates the lifecycle events the bot emits.
type Type string

const (
	TicketCreated   Type = "ticket_created"
	TicketClosed    Type = "ticket_closed"
	TicketUserAdded Type = "ticket_user_added"
)

// Event is the wire form of a ticket lifecycle notification.
type Event struct {
	Type      Type      `json:"type"`
	ChannelID string    `json:"channel_id"`
	UserID    string    `json:"user_id"`
	Timestamp time.Time `json:"timestamp"`
}

// Publisher emits lifecycle events. Publishing is best-effort everywhere it
// is called: failures are logged by the implementation and never surface to
// the command flow.
type Publisher interface {
	Publish(event Event)
	Close() error
}

// NopPublisher discards events. Used when no AMQP URL is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(Event) {}
func (NopPublisher) Close() error  { return nil }

const exchangeName = "aetherticket.events"

// AMQPPublisher emits events to a RabbitMQ topic exchange with routing key
// equal to the event type.
type AMQPPublisher struct {
	conn *amqp.Connection
	ch   *amqp.Channel
	log  *zap.Logger
}

func NewAMQPPublisher(url string, log *zap.Logger) (*AMQPPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	if err := ch.ExchangeDeclare(exchangeName, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, err
	}
	return &AMQPPublisher{conn: conn, ch: ch, log: log}, nil
}

func (p *AMQPPublisher) Publish(event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	body, err := json.Marshal(event)
	if err != nil {
		p.log.Warn("failed to encode event", zap.String("type", string(event.Type)), zap.Error(err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err = p.ch.PublishWithContext(ctx, exchangeName, string(event.Type), false, false, amqp.Publishing{
		ContentType: "application/json",
		Timestamp:   event.Timestamp,
		Body:        body,
	})
	if err != nil {
		p.log.Warn("failed to publish event",
			zap.String("type", string(event.Type)),
			zap.String("channel_id", event.ChannelID),
			zap.Error(err))
	}
}

func (p *AMQPPublisher) Close() error {
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}
