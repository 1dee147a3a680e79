package http

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"
	"github.com/nats-io/nats.go"

	natsadapter "github.com/samirrijal/devcamper/internal/adapters/nats"
)

// wsMessage is sent from client to subscribe/unsubscribe to feeds.
type wsMessage struct {
	Action  string `json:"action"`  // "subscribe" | "unsubscribe"
	Channel string `json:"channel"` // "all" | "bootcamps" | "courses" (default: all)
	Event   string `json:"event"`   // "created" | "updated" | "deleted" (optional, "" = any)
}

// wsSubject maps a channel and event onto a directory subject.
func wsSubject(channel, event string) (string, bool) {
	var kind string
	switch channel {
	case "", "all":
		if event != "" {
			return natsadapter.SubjectPrefix + "*." + event, validEvent(event)
		}
		return natsadapter.SubjectWildcard, true
	case "bootcamps":
		kind = "bootcamp"
	case "courses":
		kind = "course"
	default:
		return "", false
	}
	if event == "" {
		return natsadapter.SubjectPrefix + kind + ".*", true
	}
	return natsadapter.SubjectPrefix + kind + "." + event, validEvent(event)
}

func validEvent(event string) bool {
	switch event {
	case "created", "updated", "deleted":
		return true
	}
	return false
}

// WebSocketHandler relays directory events from NATS to connected clients.
// Every client starts subscribed to all events; it may narrow or widen the
// feed with {"action":"subscribe","channel":"courses","event":"created"}.
func WebSocketHandler(nc *nats.Conn) func(*websocket.Conn) {
	return func(c *websocket.Conn) {
		defer c.Close()

		log := slog.Default().With("remote_addr", c.RemoteAddr().String())

		var mu sync.Mutex
		writeJSON := func(v any) error {
			data, err := json.Marshal(v)
			if err != nil {
				return err
			}
			mu.Lock()
			defer mu.Unlock()
			return c.WriteMessage(websocket.TextMessage, data)
		}

		if nc == nil {
			_ = writeJSON(map[string]string{"error": "event stream unavailable"})
			return
		}
		log.Info("ws client connected")

		subs := make(map[string]*nats.Subscription)
		relay := func(msg *nats.Msg) { _ = writeJSON(json.RawMessage(msg.Data)) }

		sub, err := nc.Subscribe(natsadapter.SubjectWildcard, relay)
		if err != nil {
			log.Error("ws default subscribe failed", "error", err)
			return
		}
		subs[natsadapter.SubjectWildcard] = sub

		// Keep-alive ping
		done := make(chan struct{})
		go func() {
			ticker := time.NewTicker(30 * time.Second)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					mu.Lock()
					err := c.WriteMessage(websocket.PingMessage, nil)
					mu.Unlock()
					if err != nil {
						return
					}
				case <-done:
					return
				}
			}
		}()

		for {
			_, msg, err := c.ReadMessage()
			if err != nil {
				break
			}

			var m wsMessage
			if err := json.Unmarshal(msg, &m); err != nil {
				_ = writeJSON(map[string]string{"error": "invalid JSON"})
				continue
			}

			subject, ok := wsSubject(m.Channel, m.Event)
			if !ok {
				_ = writeJSON(map[string]string{"error": "unknown channel or event"})
				continue
			}

			switch m.Action {
			case "subscribe":
				if _, exists := subs[subject]; exists {
					_ = writeJSON(map[string]string{"status": "already subscribed", "subject": subject})
					continue
				}
				s, err := nc.Subscribe(subject, relay)
				if err != nil {
					_ = writeJSON(map[string]string{"error": "subscribe failed: " + err.Error()})
					continue
				}
				subs[subject] = s
				_ = writeJSON(map[string]string{"status": "subscribed", "subject": subject})

			case "unsubscribe":
				if s, exists := subs[subject]; exists {
					_ = s.Unsubscribe()
					delete(subs, subject)
					_ = writeJSON(map[string]string{"status": "unsubscribed", "subject": subject})
				} else {
					_ = writeJSON(map[string]string{"error": "not subscribed to " + subject})
				}

			default:
				_ = writeJSON(map[string]string{"error": "unknown action: " + m.Action})
			}
		}

		close(done)
		for _, s := range subs {
			_ = s.Unsubscribe()
		}
		log.Info("ws client disconnected")
	}
}
