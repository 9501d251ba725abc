package server

import (
	"bytes"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	roomCodeLen       = 6
	subscriberBufSize = 16
)

// Subscriber is one open SSE stream in a room.
type Subscriber struct {
	ID   string
	Room string
	C    chan []byte
}

// Hub tracks rooms and their subscribers and fans messages out to them.
// A room exists while it has subscribers, or from Create until its first
// subscriber leaves.
type Hub struct {
	mu          sync.Mutex
	rooms       map[string]map[string]*Subscriber
	sendTimeout time.Duration
	done        chan struct{}
	closeOnce   sync.Once
}

// NewHub returns an empty hub. sendTimeout bounds how long a broadcast
// waits on a subscriber whose buffer is full.
func NewHub(sendTimeout time.Duration) *Hub {
	return &Hub{
		rooms:       make(map[string]map[string]*Subscriber),
		sendTimeout: sendTimeout,
		done:        make(chan struct{}),
	}
}

// Create registers a fresh room and returns its code.
func (h *Hub) Create() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	for {
		code := newRoomCode()
		if _, taken := h.rooms[code]; taken {
			continue
		}
		h.rooms[code] = make(map[string]*Subscriber)
		return code
	}
}

// Exists reports whether the room is known.
func (h *Hub) Exists(code string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	_, ok := h.rooms[code]
	return ok
}

// Count returns the number of subscribers in the room.
func (h *Hub) Count(code string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.rooms[code])
}

// Subscribe adds a subscriber to the room, creating the room if needed.
func (h *Hub) Subscribe(code string) *Subscriber {
	sub := &Subscriber{
		ID:   uuid.NewString(),
		Room: code,
		C:    make(chan []byte, subscriberBufSize),
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	subs, ok := h.rooms[code]
	if !ok {
		subs = make(map[string]*Subscriber)
		h.rooms[code] = subs
	}
	subs[sub.ID] = sub
	return sub
}

// Unsubscribe removes the subscriber and deletes its room once empty.
func (h *Hub) Unsubscribe(sub *Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	subs, ok := h.rooms[sub.Room]
	if !ok {
		return
	}
	delete(subs, sub.ID)
	if len(subs) == 0 {
		delete(h.rooms, sub.Room)
	}
}

// Broadcast sends frame to every subscriber of the room and returns how many
// received it. Unknown rooms are ignored.
func (h *Hub) Broadcast(code string, frame []byte) int {
	h.mu.Lock()
	subs := make([]*Subscriber, 0, len(h.rooms[code]))
	for _, sub := range h.rooms[code] {
		subs = append(subs, sub)
	}
	h.mu.Unlock()

	// Send without holding the lock
	delivered := 0
	for _, sub := range subs {
		if !h.send(sub, frame) {
			if h.closed() {
				return delivered
			}
			continue
		}
		delivered++
	}
	return delivered
}

// send delivers frame to sub, giving up after sendTimeout or on Close.
func (h *Hub) send(sub *Subscriber, frame []byte) bool {
	timer := time.NewTimer(h.sendTimeout)
	defer timer.Stop()

	select {
	case sub.C <- frame:
		return true
	case <-timer.C:
		return false
	case <-h.done:
		return false
	}
}

func (h *Hub) closed() bool {
	select {
	case <-h.done:
		return true
	default:
		return false
	}
}

// Done is closed when the hub shuts down.
func (h *Hub) Done() <-chan struct{} {
	return h.done
}

// Close ends all open streams. Safe to call more than once.
func (h *Hub) Close() {
	h.closeOnce.Do(func() { close(h.done) })
}

func newRoomCode() string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	return strings.ToUpper(id[:roomCodeLen])
}

// dataFrame formats an unnamed SSE message.
func dataFrame(data []byte) []byte {
	return eventFrame("", data)
}

// eventFrame formats an SSE message, splitting multi-line data into one
// data field per line.
func eventFrame(event string, data []byte) []byte {
	var b bytes.Buffer
	if event != "" {
		b.WriteString("event: ")
		b.WriteString(event)
		b.WriteByte('\n')
	}
	for _, line := range bytes.Split(data, []byte{'\n'}) {
		b.WriteString("data: ")
		b.Write(line)
		b.WriteByte('\n')
	}
	b.WriteByte('\n')
	return b.Bytes()
}
