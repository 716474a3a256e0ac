// Package notify delivers game notifications to player devices. The primary
// implementation talks to a Home Assistant instance over its websocket API
// and routes messages through the mobile_app notify services.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"

	"github.com/gorilla/websocket"

	"trivia-hub-service/internal/domain"
	"trivia-hub-service/internal/game"
)

const actionEventType = "mobile_app_notification_action"

// Client is a Home Assistant websocket API client scoped to the notify
// domain. Devices are resolved through an explicit lookup table (device
// handle -> notify service name) built from configuration, not by mangling
// device names.
type Client struct {
	conn    *websocket.Conn
	devices map[string]string

	writeMu sync.Mutex // guards conn writes

	mu       sync.Mutex
	nextID   int64
	pending  map[int64]chan commandResult
	onAction func(actionID string)

	done chan struct{}
}

type commandResult struct {
	success bool
	message string
}

// envelope covers every inbound websocket message shape we care about.
type envelope struct {
	ID      int64  `json:"id"`
	Type    string `json:"type"`
	Success bool   `json:"success"`
	Error   struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
	Event struct {
		EventType string `json:"event_type"`
		Data      struct {
			Action string `json:"action"`
		} `json:"data"`
	} `json:"event"`
}

// Dial connects to the Home Assistant websocket API, performs the auth
// handshake and subscribes to notification action events.
func Dial(ctx context.Context, url, token string, devices map[string]string) (*Client, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("dial home assistant: %w", err)
	}

	var hello envelope
	if err := conn.ReadJSON(&hello); err != nil {
		conn.Close()
		return nil, fmt.Errorf("read hello: %w", err)
	}
	if hello.Type != "auth_required" {
		conn.Close()
		return nil, fmt.Errorf("unexpected hello message %q", hello.Type)
	}
	if err := conn.WriteJSON(map[string]string{"type": "auth", "access_token": token}); err != nil {
		conn.Close()
		return nil, fmt.Errorf("send auth: %w", err)
	}
	var authReply envelope
	if err := conn.ReadJSON(&authReply); err != nil {
		conn.Close()
		return nil, fmt.Errorf("read auth reply: %w", err)
	}
	if authReply.Type != "auth_ok" {
		conn.Close()
		return nil, fmt.Errorf("home assistant auth failed: %s", authReply.Type)
	}

	c := &Client{
		conn:    conn,
		devices: devices,
		pending: make(map[int64]chan commandResult),
		done:    make(chan struct{}),
	}
	go c.readLoop()

	if err := c.call(ctx, map[string]any{
		"type":       "subscribe_events",
		"event_type": actionEventType,
	}); err != nil {
		c.Close()
		return nil, fmt.Errorf("subscribe events: %w", err)
	}
	return c, nil
}

// OnAction registers the callback invoked for every inbound notification
// action identifier. Must be set before players start answering.
func (c *Client) OnAction(fn func(actionID string)) {
	c.mu.Lock()
	c.onAction = fn
	c.mu.Unlock()
}

// Send delivers a notification through the device's notify service.
func (c *Client) Send(ctx context.Context, device string, n game.Notification) error {
	service, ok := c.devices[device]
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrNotifierUnavailable, device)
	}

	data := map[string]any{}
	if n.Tag != "" {
		data["tag"] = n.Tag
	}
	if n.Icon != "" {
		data["notification_icon"] = n.Icon
	}
	if n.Color != "" {
		data["color"] = n.Color
	}
	if n.Timeout > 0 {
		data["timeout"] = int(n.Timeout.Seconds())
	}
	if n.Persistent {
		data["persistent"] = true
	}
	if len(n.Actions) > 0 {
		actions := make([]map[string]string, 0, len(n.Actions))
		for _, a := range n.Actions {
			actions = append(actions, map[string]string{"action": a.ID, "title": a.Title})
		}
		data["actions"] = actions
	}

	return c.call(ctx, map[string]any{
		"type":    "call_service",
		"domain":  "notify",
		"service": service,
		"service_data": map[string]any{
			"title":   n.Title,
			"message": n.Message,
			"data":    data,
		},
	})
}

// Clear removes a previously sent notification by tag.
func (c *Client) Clear(ctx context.Context, device, tag string) error {
	service, ok := c.devices[device]
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrNotifierUnavailable, device)
	}
	return c.call(ctx, map[string]any{
		"type":    "call_service",
		"domain":  "notify",
		"service": service,
		"service_data": map[string]any{
			"message": "clear_notification",
			"data":    map[string]any{"tag": tag},
		},
	})
}

func (c *Client) Close() error {
	c.mu.Lock()
	select {
	case <-c.done:
	default:
		close(c.done)
	}
	c.mu.Unlock()
	return c.conn.Close()
}

// call sends an id-correlated command and waits for its result frame.
func (c *Client) call(ctx context.Context, msg map[string]any) error {
	ch := make(chan commandResult, 1)

	c.mu.Lock()
	c.nextID++
	id := c.nextID
	c.pending[id] = ch
	c.mu.Unlock()

	msg["id"] = id
	c.writeMu.Lock()
	err := c.conn.WriteJSON(msg)
	c.writeMu.Unlock()
	if err != nil {
		c.dropPending(id)
		return fmt.Errorf("write command: %w", err)
	}

	select {
	case res := <-ch:
		if !res.success {
			return fmt.Errorf("command %d failed: %s", id, res.message)
		}
		return nil
	case <-ctx.Done():
		c.dropPending(id)
		return ctx.Err()
	case <-c.done:
		return fmt.Errorf("connection closed")
	}
}

func (c *Client) dropPending(id int64) {
	c.mu.Lock()
	delete(c.pending, id)
	c.mu.Unlock()
}

func (c *Client) readLoop() {
	for {
		var msg json.RawMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			select {
			case <-c.done:
			default:
				log.Printf("home assistant read loop: %v", err)
				c.Close()
			}
			return
		}

		var env envelope
		if err := json.Unmarshal(msg, &env); err != nil {
			log.Printf("home assistant: undecodable frame: %v", err)
			continue
		}

		switch env.Type {
		case "result":
			c.mu.Lock()
			ch, ok := c.pending[env.ID]
			if ok {
				delete(c.pending, env.ID)
			}
			c.mu.Unlock()
			if ok {
				ch <- commandResult{success: env.Success, message: env.Error.Message}
			}
		case "event":
			if env.Event.EventType != actionEventType || env.Event.Data.Action == "" {
				continue
			}
			c.mu.Lock()
			fn := c.onAction
			c.mu.Unlock()
			if fn != nil {
				// handlers may block on the game session; keep the read loop free
				go fn(env.Event.Data.Action)
			}
		}
	}
}
