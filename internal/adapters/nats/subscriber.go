package natsadapter

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"

	"github.com/samirrijal/devcamper/internal/core/domain"
)

// EventHandler processes one directory event. A returned error redelivers it.
type EventHandler func(ctx context.Context, ev *domain.DirectoryEvent) error

// Subscriber consumes directory events through durable JetStream consumers.
type Subscriber struct {
	conn *nats.Conn
	js   nats.JetStreamContext
	subs []*nats.Subscription
}

// NewSubscriber connects to NATS and makes sure the directory stream exists.
func NewSubscriber(url string) (*Subscriber, error) {
	conn, err := RawConn(url)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}
	js, err := conn.JetStream()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("jetstream: %w", err)
	}
	if err := ensureStream(js); err != nil {
		conn.Close()
		return nil, err
	}
	return &Subscriber{conn: conn, js: js}, nil
}

// SubscribeDirectoryEvents delivers every event matching subject to handler
// under the durable consumer name. Malformed payloads are terminated, handler
// failures are retried up to three times.
func (s *Subscriber) SubscribeDirectoryEvents(ctx context.Context, subject, durable string, handler EventHandler) error {
	sub, err := s.js.Subscribe(subject, func(msg *nats.Msg) {
		var ev domain.DirectoryEvent
		if err := json.Unmarshal(msg.Data, &ev); err != nil {
			_ = msg.Term()
			return
		}
		if err := handler(ctx, &ev); err != nil {
			_ = msg.Nak()
			return
		}
		_ = msg.Ack()
	},
		nats.Durable(durable),
		nats.ManualAck(),
		nats.MaxDeliver(3),
		nats.DeliverNew(),
	)
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", subject, err)
	}
	s.subs = append(s.subs, sub)
	return nil
}

// Close unsubscribes and drains.
func (s *Subscriber) Close() {
	for _, sub := range s.subs {
		_ = sub.Unsubscribe()
	}
	_ = s.conn.Drain()
}
