package server

import (
	"fmt"
	"net/http"
	"sync"

	"gocv.io/x/gocv"
)

// FrameHub keeps the latest annotated frame as JPEG and streams it to MJPEG
// clients. It implements display.Sink so a session can present to it.
type FrameHub struct {
	mu      sync.Mutex
	jpeg    []byte
	seq     int
	updated chan struct{}
	closed  bool
	clients int
}

// NewFrameHub creates an empty FrameHub.
func NewFrameHub() *FrameHub {
	return &FrameHub{updated: make(chan struct{})}
}

// Show encodes the frame and publishes it.
func (h *FrameHub) Show(frame *gocv.Mat) error {
	buf, err := gocv.IMEncode(gocv.JPEGFileExt, *frame)
	if err != nil {
		return fmt.Errorf("encode frame: %w", err)
	}
	defer buf.Close()

	h.Publish(buf.GetBytes())
	return nil
}

// PollKey never reports a key.
func (h *FrameHub) PollKey() (int, bool) { return 0, false }

// Publish stores a copy of an encoded JPEG and wakes waiting streams.
func (h *FrameHub) Publish(jpeg []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.jpeg = append(h.jpeg[:0:0], jpeg...)
	h.seq++
	close(h.updated)
	h.updated = make(chan struct{})
}

// Latest returns the most recent JPEG and its sequence number, zero before
// the first frame.
func (h *FrameHub) Latest() ([]byte, int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.jpeg, h.seq
}

// Clients returns the number of connected stream clients.
func (h *FrameHub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.clients
}

// Close ends all streams. Later frames are dropped.
func (h *FrameHub) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.closed {
		h.closed = true
		close(h.updated)
	}
	return nil
}

// next waits for a frame newer than seq.
func (h *FrameHub) next(seq int, done <-chan struct{}) ([]byte, int, bool) {
	for {
		h.mu.Lock()
		if h.closed {
			h.mu.Unlock()
			return nil, 0, false
		}
		if h.seq > seq {
			jpeg, cur := h.jpeg, h.seq
			h.mu.Unlock()
			return jpeg, cur, true
		}
		wait := h.updated
		h.mu.Unlock()

		select {
		case <-wait:
		case <-done:
			return nil, 0, false
		}
	}
}

// ServeHTTP streams MJPEG frames to the client until it disconnects or the
// hub is closed.
func (h *FrameHub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	h.clients++
	h.mu.Unlock()
	defer func() {
		h.mu.Lock()
		h.clients--
		h.mu.Unlock()
	}()

	w.Header().Set("Content-Type", "multipart/x-mixed-replace; boundary=frame")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	seq := 0
	for {
		jpeg, cur, ok := h.next(seq, r.Context().Done())
		if !ok {
			return
		}
		seq = cur

		fmt.Fprintf(w, "--frame\r\n")
		fmt.Fprintf(w, "Content-Type: image/jpeg\r\n")
		fmt.Fprintf(w, "Content-Length: %d\r\n\r\n", len(jpeg))
		if _, err := w.Write(jpeg); err != nil {
			return
		}
		fmt.Fprintf(w, "\r\n")

		if f, ok := w.(http.Flusher); ok {
			f.Flush()
		}
	}
}
