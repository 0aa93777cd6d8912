package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ayusman/fingerfold/internal/session"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow local connections
	},
}

// clientBuffer is how many frames may queue for a slow client before new
// frames are dropped for it.
const clientBuffer = 8

const writeTimeout = 2 * time.Second

// FingerMessage is the JSON pushed to websocket clients once per frame.
type FingerMessage struct {
	Seq       int           `json:"seq"`
	Timestamp int64         `json:"timestamp"`
	Hands     []HandMessage `json:"hands"`
}

// HandMessage holds the fingertip readings of one hand.
type HandMessage struct {
	Handedness string          `json:"handedness"`
	Fingers    []FingerReading `json:"fingers"`
}

// FingerReading is one fingertip in a FingerMessage.
type FingerReading struct {
	Finger string `json:"finger"`
	X      int    `json:"x"`
	Y      int    `json:"y"`
	State  string `json:"state"`
}

// NewFingerMessage converts a frame result to its wire form.
func NewFingerMessage(r session.FrameResult) FingerMessage {
	msg := FingerMessage{
		Seq:       r.Seq,
		Timestamp: r.Time.UnixMilli(),
		Hands:     make([]HandMessage, 0, len(r.Hands)),
	}
	for _, h := range r.Hands {
		hm := HandMessage{Handedness: h.Handedness, Fingers: make([]FingerReading, 0, len(h.Fingers))}
		for _, rd := range h.Fingers {
			hm.Fingers = append(hm.Fingers, FingerReading{
				Finger: rd.Finger.String(),
				X:      rd.Pixel.X,
				Y:      rd.Pixel.Y,
				State:  rd.State.String(),
			})
		}
		msg.Hands = append(msg.Hands, hm)
	}
	return msg
}

// ReadingsHub broadcasts per-frame fingertip readings over WebSocket.
// It implements session.Observer.
type ReadingsHub struct {
	log     *slog.Logger
	mu      sync.RWMutex
	clients map[*websocket.Conn]chan []byte
	closed  bool
}

// NewReadingsHub creates a new ReadingsHub.
func NewReadingsHub(log *slog.Logger) *ReadingsHub {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &ReadingsHub{
		log:     log,
		clients: make(map[*websocket.Conn]chan []byte),
	}
}

// ObserveFrame queues the frame's readings for every client. A client whose
// queue is full misses the frame.
func (h *ReadingsHub) ObserveFrame(r session.FrameResult) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if len(h.clients) == 0 {
		return
	}

	msg, err := json.Marshal(NewFingerMessage(r))
	if err != nil {
		h.log.Warn("failed to encode readings", slog.Any("error", err))
		return
	}

	for _, ch := range h.clients {
		select {
		case ch <- msg:
		default:
		}
	}
}

// Clients returns the number of connected clients.
func (h *ReadingsHub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close disconnects every client.
func (h *ReadingsHub) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil
	}
	h.closed = true
	for conn, ch := range h.clients {
		close(ch)
		delete(h.clients, conn)
	}
	return nil
}

// ServeHTTP handles WebSocket upgrade requests.
func (h *ReadingsHub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade error", slog.Any("error", err))
		return
	}
	defer conn.Close()

	ch := make(chan []byte, clientBuffer)

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	h.clients[conn] = ch
	h.mu.Unlock()

	defer h.remove(conn)

	// Reads only detect the peer going away.
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case msg, ok := <-ch:
			if !ok {
				conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, "session ended"),
					time.Now().Add(writeTimeout))
				return
			}
			conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-gone:
			return
		}
	}
}

func (h *ReadingsHub) remove(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if ch, ok := h.clients[conn]; ok {
		close(ch)
		delete(h.clients, conn)
	}
}
