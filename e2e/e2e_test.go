package e2e

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ayusman/fingerfold/internal/capture"
	"github.com/ayusman/fingerfold/internal/detector"
	"github.com/ayusman/fingerfold/internal/display"
	"github.com/ayusman/fingerfold/internal/metrics"
	"github.com/ayusman/fingerfold/internal/overlay"
	"github.com/ayusman/fingerfold/internal/server"
	"github.com/ayusman/fingerfold/internal/session"
	"github.com/ayusman/fingerfold/internal/store"
	"github.com/ayusman/fingerfold/testdata"
)

func TestE2E_SessionWithTraceAndPreview(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping e2e test")
	}

	st, err := store.New(filepath.Join(t.TempDir(), "trace.db"))
	if err != nil {
		t.Fatalf("store.New() error = %v", err)
	}
	defer st.Close()

	met := metrics.New()
	frames := server.NewFrameHub()
	readings := server.NewReadingsHub(nil)

	ts := httptest.NewServer(server.New(server.Config{
		Frames:   frames,
		Readings: readings,
		Metrics:  met,
		Store:    st,
	}))
	defer ts.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(ts.URL, "http")+"/api/fingers", nil)
	if err != nil {
		t.Fatalf("websocket dial error = %v", err)
	}
	defer conn.Close()
	deadline := time.Now().Add(2 * time.Second)
	for readings.Clients() != 1 {
		if time.Now().After(deadline) {
			t.Fatal("websocket client never registered")
		}
		time.Sleep(10 * time.Millisecond)
	}

	source := testdata.NewFrames(3)
	defer testdata.CloseAll(source)

	det := detector.NewMockDetector()
	det.SetHands([]detector.HandLandmarks{testdata.FoldedIndex(), testdata.OpenPalm()})

	window := display.NewMock()
	recorder := store.NewRecorder(st, nil)
	sessionID, err := recorder.Begin(0)
	if err != nil {
		t.Fatalf("Begin() error = %v", err)
	}

	s := session.New(session.Config{
		Source:    capture.NewMockCamera(source, false),
		Detector:  det,
		Renderer:  overlay.NewRenderer(overlay.DefaultConfig()),
		Display:   display.Multi{window, frames},
		Observers: []session.Observer{met, recorder, readings},
	})
	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if err := recorder.End(); err != nil {
		t.Fatalf("End() error = %v", err)
	}

	t.Run("AllFramesPresented", func(t *testing.T) {
		if window.Shown() != 3 {
			t.Errorf("window frames = %d, want 3", window.Shown())
		}
		if jpeg, seq := frames.Latest(); seq != 3 || len(jpeg) == 0 {
			t.Errorf("frame hub seq = %d, bytes = %d", seq, len(jpeg))
		}
		if !det.Closed() || !window.Closed() {
			t.Error("detector and window should be released")
		}
	})

	t.Run("ReadingsPushed", func(t *testing.T) {
		for i := 0; i < 3; i++ {
			conn.SetReadDeadline(time.Now().Add(2 * time.Second))
			_, data, err := conn.ReadMessage()
			if err != nil {
				t.Fatalf("message %d: %v", i, err)
			}
			var msg server.FingerMessage
			if err := json.Unmarshal(data, &msg); err != nil {
				t.Fatalf("message %d is not json: %v", i, err)
			}
			if msg.Seq != i || len(msg.Hands) != 2 {
				t.Errorf("message %d = %+v", i, msg)
				continue
			}
			index := msg.Hands[0].Fingers[0]
			if index.Finger != "index" || index.State != "folded" || index.X != 192 {
				t.Errorf("message %d index = %+v", i, index)
			}
		}
	})

	t.Run("TraceRecorded", func(t *testing.T) {
		resp, err := http.Get(ts.URL + "/api/sessions/" + sessionID)
		if err != nil {
			t.Fatalf("GET session error = %v", err)
		}
		defer resp.Body.Close()

		var got struct {
			Frames  int        `json:"frames"`
			Folded  int        `json:"folded"`
			EndedAt *time.Time `json:"ended_at"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
			t.Fatalf("decode session: %v", err)
		}
		if got.Frames != 3 || got.Folded != 3 || got.EndedAt == nil {
			t.Errorf("session = %+v, want 3 frames, 3 folded, ended", got)
		}

		rs, err := st.Readings().ListBySession(sessionID)
		if err != nil {
			t.Fatalf("ListBySession() error = %v", err)
		}
		if len(rs) != 24 {
			t.Errorf("readings = %d, want 24", len(rs))
		}
	})

	t.Run("MetricsExported", func(t *testing.T) {
		resp, err := http.Get(ts.URL + "/metrics")
		if err != nil {
			t.Fatalf("GET /metrics error = %v", err)
		}
		defer resp.Body.Close()
		body, _ := io.ReadAll(resp.Body)

		for _, want := range []string{
			"fingerfold_frames_total 3",
			"fingerfold_hands_detected_total 6",
			"fingerfold_capture_failures_total 1",
			`fingerfold_finger_states_total{finger="index",state="folded"} 3`,
		} {
			if !strings.Contains(string(body), want) {
				t.Errorf("metrics missing %q", want)
			}
		}
	})
}

func TestE2E_QuitKeyEndsSession(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping e2e test")
	}

	source := testdata.NewFrames(1)
	defer testdata.CloseAll(source)

	camera := capture.NewMockCamera(source, true)
	window := display.NewMock(-1, -1, 'q')
	sink := display.NewCapture()
	defer sink.Release()

	det := detector.NewMockDetector()
	det.SetHands([]detector.HandLandmarks{testdata.Fist()})

	s := session.New(session.Config{
		Source:   camera,
		Detector: det,
		Display:  display.Multi{window, sink},
	})
	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if s.Frames() != 3 {
		t.Errorf("frames = %d, want 3", s.Frames())
	}
	if camera.IsOpen() {
		t.Error("camera should be closed")
	}

	last, ok := sink.Last()
	if !ok {
		t.Fatal("no frame captured")
	}
	defer last.Close()

	// Folded markers use RGB(255,53,151), stored as BGR. The skeleton point
	// covers the marker centre, so sample inside the marker below it.
	fist := testdata.Fist()
	tip := fist.Points[detector.IndexTip]
	px := last.GetVecbAt(int(tip.Y*testdata.FrameHeight+0.5)+8, int(tip.X*testdata.FrameWidth+0.5))
	if px[0] != 151 || px[1] != 53 || px[2] != 255 {
		t.Errorf("index marker pixel = %v, want BGR [151 53 255]", px)
	}
}
