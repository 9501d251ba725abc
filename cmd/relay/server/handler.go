package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"io/fs"
	"log"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"
)

var mimeTypes = map[string]string{
	".html": "text/html",
	".svg":  "image/svg+xml",
	".js":   "text/javascript",
	".css":  "text/css",
}

// actionRequest is the body of POST /action.
type actionRequest struct {
	Room    string          `json:"room"`
	Payload json.RawMessage `json:"payload"`
}

// signalRequest is the body of POST /api/signal.
type signalRequest struct {
	RoomID string          `json:"roomId"`
	Event  string          `json:"event"`
	Data   json.RawMessage `json:"data"`
}

// joinRequest is the body of POST /api/join.
type joinRequest struct {
	RoomID string `json:"roomId"`
}

type handler struct {
	hub       *Hub
	root      string
	heartbeat time.Duration
	logger    *log.Logger
}

func resolveRoot(root string) (string, error) {
	if root == "" {
		root = "."
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", err
	}
	return abs, nil
}

// handleStatic serves files below the root directory. "/" maps to the game page.
func (h *handler) handleStatic(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	reqPath := r.URL.Path
	if reqPath == "/" {
		reqPath = "/snake.html"
	}
	for _, seg := range strings.Split(reqPath, "/") {
		if seg == ".." {
			http.Error(w, "403 Forbidden", http.StatusForbidden)
			return
		}
	}

	filePath := filepath.Join(h.root, filepath.FromSlash(path.Clean(reqPath)))
	if filePath != h.root && !strings.HasPrefix(filePath, h.root+string(filepath.Separator)) {
		http.Error(w, "403 Forbidden", http.StatusForbidden)
		return
	}

	content, err := os.ReadFile(filePath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			http.Error(w, "404 Not Found", http.StatusNotFound)
			return
		}
		h.logger.Printf("read %s: %v", filePath, err)
		http.Error(w, "500 Server Error", http.StatusInternalServerError)
		return
	}

	contentType, ok := mimeTypes[filepath.Ext(filePath)]
	if !ok {
		contentType = "text/plain"
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	w.Write(content)
}

// handleEvents streams room messages to one subscriber until it disconnects.
func (h *handler) handleEvents(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	q := r.URL.Query()
	room := q.Get("room")
	if room == "" {
		room = q.Get("roomId")
	}
	if room == "" {
		http.Error(w, "Missing room code", http.StatusBadRequest)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("X-Accel-Buffering", "no")

	sub := h.hub.Subscribe(room)
	defer h.hub.Unsubscribe(sub)
	h.logger.Printf("subscriber %s joined room %s (%d open)", sub.ID, room, h.hub.Count(room))

	// The first comment tells clients the subscription is registered.
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(": connected\n\n"))
	flusher.Flush()

	heartbeat := time.NewTicker(h.heartbeat)
	defer heartbeat.Stop()

	for {
		select {
		case <-r.Context().Done():
			h.logger.Printf("subscriber %s left room %s", sub.ID, room)
			return
		case <-h.hub.Done():
			return
		case <-heartbeat.C:
			if _, err := w.Write([]byte(": heartbeat\n\n")); err != nil {
				return
			}
			flusher.Flush()
		case frame := <-sub.C:
			if _, err := w.Write(frame); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

// handleAction relays a payload to everyone in the room, sender included.
func (h *handler) handleAction(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req actionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	data, err := compactJSON(req.Payload)
	if err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	if h.hub.Exists(req.Room) {
		h.hub.Broadcast(req.Room, dataFrame(data))
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

func (h *handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	code := h.hub.Create()
	h.logger.Printf("room %s created", code)
	writeJSON(w, http.StatusOK, map[string]any{"roomId": code})
}

func (h *handler) handleJoin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req joinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	if !h.hub.Exists(req.RoomID) {
		writeJSON(w, http.StatusNotFound, map[string]any{"error": "room not found"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"roomId": req.RoomID, "ok": true})
}

func (h *handler) handleSignal(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req signalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	if req.RoomID == "" || req.Event == "" || strings.ContainsAny(req.Event, "\r\n") {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "roomId and a single-line event are required"})
		return
	}
	if !h.hub.Exists(req.RoomID) {
		writeJSON(w, http.StatusNotFound, map[string]any{"error": "room not found"})
		return
	}

	data, err := compactJSON(req.Data)
	if err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	delivered := h.hub.Broadcast(req.RoomID, eventFrame(req.Event, data))
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "delivered": delivered})
}

// compactJSON strips insignificant whitespace so a value fits one SSE data line.
func compactJSON(raw json.RawMessage) ([]byte, error) {
	if len(raw) == 0 {
		return []byte("null"), nil
	}
	var b bytes.Buffer
	if err := json.Compact(&b, raw); err != nil {
		return nil, err
	}
	return b.Bytes(), nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
