package probe

import (
	"context"
	"fmt"
	"strings"
)

// CheckEvent is the event name Check sends through the relay.
const CheckEvent = "TEST_EVENT"

// Check runs the relay smoke test: create a room, join it, subscribe, send
// a signal and wait until it comes back on the stream. It returns the room
// code it used.
func Check(ctx context.Context, c *Client) (string, error) {
	room, err := c.CreateRoom(ctx)
	if err != nil {
		return "", err
	}
	if err := c.JoinRoom(ctx, room); err != nil {
		return room, err
	}

	subCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	events, err := c.Subscribe(subCtx, room)
	if err != nil {
		return room, err
	}

	if err := c.Signal(ctx, room, CheckEvent, map[string]string{"hello": "world"}); err != nil {
		return room, err
	}

	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return room, fmt.Errorf("stream for %s closed before %s arrived", room, CheckEvent)
			}
			if ev.Name == CheckEvent && strings.Contains(ev.Data, "world") {
				return room, nil
			}
		case <-ctx.Done():
			return room, fmt.Errorf("waiting for %s: %w", CheckEvent, ctx.Err())
		}
	}
}
