// Package probe checks a running room relay from the outside: it speaks the
// relay's HTTP and SSE protocol, and can run a WebRTC data channel handshake
// between two Go peers signalled through a relay room.
package probe

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// Event is one Server-Sent Event received from a room.
type Event struct {
	Name string // Empty for unnamed "data:" messages
	Data string
}

// Client talks to a relay at BaseURL.
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

// NewClient returns a client for the relay at baseURL.
func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{},
	}
}

// CreateRoom asks the relay for a fresh room code.
func (c *Client) CreateRoom(ctx context.Context) (string, error) {
	var resp struct {
		RoomID string `json:"roomId"`
	}
	if err := c.postJSON(ctx, "/api/create", struct{}{}, &resp); err != nil {
		return "", fmt.Errorf("create room: %w", err)
	}
	if resp.RoomID == "" {
		return "", fmt.Errorf("create room: empty room id")
	}
	return resp.RoomID, nil
}

// JoinRoom checks that the room exists.
func (c *Client) JoinRoom(ctx context.Context, room string) error {
	if err := c.postJSON(ctx, "/api/join", map[string]string{"roomId": room}, nil); err != nil {
		return fmt.Errorf("join room %s: %w", room, err)
	}
	return nil
}

// Signal sends a named event to everyone in the room.
func (c *Client) Signal(ctx context.Context, room, event string, data any) error {
	body := map[string]any{"roomId": room, "event": event, "data": data}
	if err := c.postJSON(ctx, "/api/signal", body, nil); err != nil {
		return fmt.Errorf("signal %s: %w", event, err)
	}
	return nil
}

// Publish relays payload to everyone in the room as an unnamed event.
func (c *Client) Publish(ctx context.Context, room string, payload any) error {
	body := map[string]any{"room": room, "payload": payload}
	if err := c.postJSON(ctx, "/action", body, nil); err != nil {
		return fmt.Errorf("publish to %s: %w", room, err)
	}
	return nil
}

// Subscribe opens an event stream for the room. It returns once the relay
// has registered the subscription, so anything published afterwards is
// delivered. The channel closes when ctx ends or the stream drops.
func (c *Client) Subscribe(ctx context.Context, room string) (<-chan Event, error) {
	u := c.BaseURL + "/events?room=" + url.QueryEscape(room)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "text/event-stream")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("subscribe to %s: %w", room, err)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		resp.Body.Close()
		return nil, fmt.Errorf("subscribe to %s: status %d: %s", room, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	r := bufio.NewReader(resp.Body)
	// The relay opens every stream with a comment frame.
	if _, err := readFrame(r); err != nil {
		resp.Body.Close()
		return nil, fmt.Errorf("subscribe to %s: %w", room, err)
	}

	events := make(chan Event, 16)
	go func() {
		defer close(events)
		defer resp.Body.Close()
		for {
			ev, err := readFrame(r)
			if err != nil {
				return
			}
			if ev == nil {
				continue
			}
			select {
			case events <- *ev:
			case <-ctx.Done():
				return
			}
		}
	}()
	return events, nil
}

// readFrame reads up to the next blank line. It returns nil for frames that
// carry no data, such as heartbeats.
func readFrame(r *bufio.Reader) (*Event, error) {
	var (
		ev      Event
		data    []string
		hasData bool
	)
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			return nil, err
		}
		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			if !hasData {
				return nil, nil
			}
			ev.Data = strings.Join(data, "\n")
			return &ev, nil
		}
		if strings.HasPrefix(line, ":") {
			continue
		}
		field, value, _ := strings.Cut(line, ":")
		value = strings.TrimPrefix(value, " ")
		switch field {
		case "event":
			ev.Name = value
		case "data":
			data = append(data, value)
			hasData = true
		}
	}
}

func (c *Client) postJSON(ctx context.Context, path string, body, out any) error {
	buf, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, bytes.NewReader(buf))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
