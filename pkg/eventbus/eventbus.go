package eventbus

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/richxcame/pos-pricing/pkg/logger"
	"go.uber.org/zap"
)

// Event is the envelope published on the bus
type Event struct {
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	Source    string          `json:"source"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data"`
}

// Handler processes a single event
type Handler func(ctx context.Context, event *Event) error

// Bus publishes and subscribes to events over NATS
type Bus struct {
	conn   *nats.Conn
	source string
}

// Connect dials NATS and returns a bus that stamps published events with source
func Connect(url, source string) (*Bus, error) {
	conn, err := nats.Connect(url,
		nats.Name(source),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("eventbus: disconnected", zap.Error(err))
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("eventbus: reconnected", zap.String("url", nc.ConnectedUrl()))
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to nats: %w", err)
	}

	return &Bus{conn: conn, source: source}, nil
}

// NewEvent builds an event with a fresh ID, marshalling data as the payload
func NewEvent(eventType, source string, data interface{}) (*Event, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("marshal event data: %w", err)
	}

	return &Event{
		ID:        uuid.New().String(),
		Type:      eventType,
		Source:    source,
		Timestamp: time.Now().UTC(),
		Data:      raw,
	}, nil
}

// Source returns the name stamped on events created by this bus
func (b *Bus) Source() string {
	return b.source
}

// Publish sends the event on subject
func (b *Bus) Publish(ctx context.Context, subject string, event *Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	if err := b.conn.Publish(subject, payload); err != nil {
		return fmt.Errorf("publish %s: %w", subject, err)
	}

	return nil
}

// Subscribe registers handler on subject as part of a queue group.
// Subscriptions are drained when ctx is cancelled.
func (b *Bus) Subscribe(ctx context.Context, subject, queue string, handler Handler) error {
	sub, err := b.conn.QueueSubscribe(subject, queue, func(msg *nats.Msg) {
		var event Event
		if err := json.Unmarshal(msg.Data, &event); err != nil {
			logger.Error("eventbus: dropping malformed event",
				zap.String("subject", msg.Subject),
				zap.Error(err),
			)
			return
		}

		if err := handler(ctx, &event); err != nil {
			logger.Error("eventbus: handler failed",
				zap.String("subject", msg.Subject),
				zap.String("event_id", event.ID),
				zap.String("event_type", event.Type),
				zap.Error(err),
			)
		}
	})
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", subject, err)
	}

	go func() {
		<-ctx.Done()
		if err := sub.Drain(); err != nil {
			logger.Warn("eventbus: drain subscription", zap.String("subject", subject), zap.Error(err))
		}
	}()

	return nil
}

// Conn exposes the underlying connection for health checks
func (b *Bus) Conn() *nats.Conn {
	return b.conn
}

// Close drains and closes the connection
func (b *Bus) Close() {
	if b.conn == nil {
		return
	}
	if err := b.conn.Drain(); err != nil {
		b.conn.Close()
	}
}
