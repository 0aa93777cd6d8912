package server

import (
	"bufio"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"gocv.io/x/gocv"

	"github.com/ayusman/fingerfold/internal/display"
)

func TestFrameHub_ImplementsSink(t *testing.T) {
	var _ display.Sink = NewFrameHub()
}

func TestFrameHub_Publish(t *testing.T) {
	h := NewFrameHub()

	if jpeg, seq := h.Latest(); jpeg != nil || seq != 0 {
		t.Errorf("Latest() before publish = %v, %d", jpeg, seq)
	}

	src := []byte{1, 2, 3}
	h.Publish(src)
	src[0] = 9

	jpeg, seq := h.Latest()
	if seq != 1 || jpeg[0] != 1 {
		t.Errorf("Latest() = %v, %d; want a copy at seq 1", jpeg, seq)
	}

	if _, ok := h.PollKey(); ok {
		t.Error("PollKey() should never report a key")
	}

	h.Close()
	h.Publish([]byte{4})
	if _, seq := h.Latest(); seq != 1 {
		t.Errorf("seq after close = %d, want 1", seq)
	}
}

func readPart(t *testing.T, r *bufio.Reader) []byte {
	t.Helper()

	var length int
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			t.Fatalf("read part header: %v", err)
		}
		line = strings.TrimSpace(line)
		if line == "" {
			break
		}
		if v, ok := strings.CutPrefix(line, "Content-Length: "); ok {
			for _, c := range v {
				length = length*10 + int(c-'0')
			}
		}
	}

	body := make([]byte, length)
	if _, err := io.ReadFull(r, body); err != nil {
		t.Fatalf("read part body: %v", err)
	}
	return body
}

func TestFrameHub_Stream(t *testing.T) {
	h := NewFrameHub()
	h.Publish([]byte("first"))

	srv := httptest.NewServer(h)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL, nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET stream error = %v", err)
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "multipart/x-mixed-replace") {
		t.Errorf("Content-Type = %q", ct)
	}

	r := bufio.NewReader(resp.Body)
	if got := string(readPart(t, r)); got != "first" {
		t.Errorf("first part = %q, want first", got)
	}

	h.Publish([]byte("second"))
	if got := string(readPart(t, r)); got != "second" {
		t.Errorf("second part = %q, want second", got)
	}

	if h.Clients() != 1 {
		t.Errorf("Clients() = %d, want 1", h.Clients())
	}

	h.Close()
	if _, err := io.ReadAll(r); err != nil {
		t.Errorf("stream should end cleanly after Close: %v", err)
	}
}

func TestFrameHub_Show(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	frame := gocv.NewMatWithSize(48, 64, gocv.MatTypeCV8UC3)
	defer frame.Close()

	h := NewFrameHub()
	if err := h.Show(&frame); err != nil {
		t.Fatalf("Show() error = %v", err)
	}

	jpeg, seq := h.Latest()
	if seq != 1 {
		t.Errorf("seq = %d, want 1", seq)
	}
	if len(jpeg) < 2 || jpeg[0] != 0xFF || jpeg[1] != 0xD8 {
		t.Errorf("published bytes are not a JPEG")
	}
}
