package natsadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/samirrijal/devcamper/internal/core/domain"
)

// Subjects are directory.<kind>.<action>, e.g. directory.course.created.
const (
	StreamName      = "DIRECTORY_EVENTS"
	SubjectPrefix   = "directory."
	SubjectWildcard = "directory.>"
)

// Subject returns the subject an event is published on.
func Subject(ev *domain.DirectoryEvent) string {
	return SubjectPrefix + ev.Kind + "." + ev.Action
}

// Publisher implements ports.EventPublisher using NATS JetStream.
type Publisher struct {
	conn *nats.Conn
	js   nats.JetStreamContext
}

// NewPublisher connects to NATS and makes sure the directory stream exists.
func NewPublisher(url string) (*Publisher, error) {
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

	return &Publisher{conn: conn, js: js}, nil
}

func ensureStream(js nats.JetStreamContext) error {
	cfg := &nats.StreamConfig{
		Name:      StreamName,
		Subjects:  []string{SubjectWildcard},
		Retention: nats.LimitsPolicy,
		MaxAge:    7 * 24 * time.Hour,
		Storage:   nats.FileStorage,
	}
	if _, err := js.AddStream(cfg); err != nil {
		if _, err := js.UpdateStream(cfg); err != nil {
			return fmt.Errorf("ensure stream %s: %w", cfg.Name, err)
		}
	}
	return nil
}

// PublishDirectoryEvent publishes ev to JetStream. The event id and action
// form the message id so JetStream drops duplicate publishes.
func (p *Publisher) PublishDirectoryEvent(ctx context.Context, ev *domain.DirectoryEvent) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	msgID := fmt.Sprintf("%s.%s.%s.%d", ev.Kind, ev.ID, ev.Action, ev.Time.UnixNano())
	_, err = p.js.Publish(Subject(ev), data, nats.Context(ctx), nats.MsgId(msgID))
	return err
}

// Conn exposes the underlying connection for readiness checks.
func (p *Publisher) Conn() *nats.Conn { return p.conn }

// Close drains and closes the connection.
func (p *Publisher) Close() {
	_ = p.conn.Drain()
}

// RawConn creates a plain NATS connection for subscribing (e.g. WebSocket relay).
func RawConn(url string) (*nats.Conn, error) {
	return nats.Connect(url,
		nats.Name("devcamper"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
}
