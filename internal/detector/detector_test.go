package detector

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestPoint3D_InFrame(t *testing.T) {
	tests := []struct {
		name string
		p    Point3D
		want bool
	}{
		{name: "center", p: Point3D{X: 0.5, Y: 0.5}, want: true},
		{name: "top left corner", p: Point3D{X: 0, Y: 0}, want: true},
		{name: "bottom right corner", p: Point3D{X: 1, Y: 1}, want: true},
		{name: "left of frame", p: Point3D{X: -0.01, Y: 0.5}, want: false},
		{name: "below frame", p: Point3D{X: 0.5, Y: 1.2}, want: false},
		{name: "depth ignored", p: Point3D{X: 0.5, Y: 0.5, Z: -3}, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.p.InFrame(); got != tt.want {
				t.Errorf("InFrame() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMockDetector(t *testing.T) {
	t.Run("returns empty hands by default", func(t *testing.T) {
		mock := NewMockDetector()

		hands, err := mock.Detect(nil)

		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
		if hands != nil {
			t.Errorf("expected nil hands, got %v", hands)
		}
	})

	t.Run("returns configured hands", func(t *testing.T) {
		mock := NewMockDetector()
		mock.SetHands([]HandLandmarks{ThumbsUpLandmarks(), OpenPalmLandmarks()})

		hands, err := mock.Detect(nil)

		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
		if len(hands) != 2 {
			t.Errorf("expected 2 hands, got %d", len(hands))
		}
	})

	t.Run("returns configured error", func(t *testing.T) {
		mock := NewMockDetector()

		expectedErr := errors.New("detection failed")
		mock.SetError(expectedErr)

		hands, err := mock.Detect(nil)

		if err != expectedErr {
			t.Errorf("expected error %v, got %v", expectedErr, err)
		}
		if hands != nil {
			t.Errorf("expected nil hands when error is set, got %v", hands)
		}
	})

	t.Run("counts calls", func(t *testing.T) {
		mock := NewMockDetector()
		for i := 0; i < 3; i++ {
			mock.Detect(nil)
		}
		if got := mock.Calls(); got != 3 {
			t.Errorf("Calls() = %d, want 3", got)
		}
	})

	t.Run("Close marks closed", func(t *testing.T) {
		mock := NewMockDetector()

		if err := mock.Close(); err != nil {
			t.Errorf("expected Close to return nil, got %v", err)
		}
		if !mock.Closed() {
			t.Error("Closed() = false after Close")
		}
	})

	t.Run("implements Detector interface", func(t *testing.T) {
		var _ Detector = (*MockDetector)(nil)
		var _ Detector = (*MediaPipeDetector)(nil)
	})
}

func TestThumbsUpLandmarks(t *testing.T) {
	landmarks := ThumbsUpLandmarks()

	if landmarks.Handedness != "Right" {
		t.Errorf("expected handedness Right, got %s", landmarks.Handedness)
	}

	t.Run("thumb is extended upward", func(t *testing.T) {
		if landmarks.Points[ThumbTip].Y >= landmarks.Points[ThumbIP].Y {
			t.Error("thumb tip should be above thumb IP (lower Y value)")
		}
	})

	t.Run("fingertips sit left of their knuckles", func(t *testing.T) {
		pairs := map[string][2]int{
			"index":  {IndexTip, IndexMCP},
			"middle": {MiddleTip, MiddleMCP},
			"ring":   {RingTip, RingMCP},
			"pinky":  {PinkyTip, PinkyMCP},
		}
		for name, p := range pairs {
			if landmarks.Points[p[0]].X >= landmarks.Points[p[1]].X {
				t.Errorf("%s tip x=%f should be left of knuckle x=%f",
					name, landmarks.Points[p[0]].X, landmarks.Points[p[1]].X)
			}
		}
	})
}

func TestOpenPalmLandmarks(t *testing.T) {
	landmarks := OpenPalmLandmarks()

	t.Run("fingertips sit right of their knuckles", func(t *testing.T) {
		pairs := map[string][2]int{
			"index":  {IndexTip, IndexMCP},
			"middle": {MiddleTip, MiddleMCP},
			"ring":   {RingTip, RingMCP},
			"pinky":  {PinkyTip, PinkyMCP},
		}
		for name, p := range pairs {
			if landmarks.Points[p[0]].X <= landmarks.Points[p[1]].X {
				t.Errorf("%s tip x=%f should be right of knuckle x=%f",
					name, landmarks.Points[p[0]].X, landmarks.Points[p[1]].X)
			}
		}
	})

	t.Run("fingers point upward", func(t *testing.T) {
		minExtension := 0.2
		for _, p := range [][2]int{{IndexMCP, IndexTip}, {MiddleMCP, MiddleTip}, {RingMCP, RingTip}, {PinkyMCP, PinkyTip}} {
			if ext := landmarks.Points[p[0]].Y - landmarks.Points[p[1]].Y; ext < minExtension {
				t.Errorf("landmark %d extension %f, expected >= %f", p[1], ext, minExtension)
			}
		}
	})

	t.Run("all points in frame", func(t *testing.T) {
		for i, p := range landmarks.Points {
			if !p.InFrame() {
				t.Errorf("landmark %d out of frame: %+v", i, p)
			}
		}
	})
}

func TestWriteFrame(t *testing.T) {
	t.Run("writes header then pixels", func(t *testing.T) {
		var buf bytes.Buffer
		pix := bytes.Repeat([]byte{1, 2, 3}, 4*2)

		if err := writeFrame(&buf, 4, 2, pix); err != nil {
			t.Fatalf("writeFrame() error = %v", err)
		}

		out := buf.Bytes()
		if len(out) != 8+len(pix) {
			t.Fatalf("wrote %d bytes, want %d", len(out), 8+len(pix))
		}
		if w := binary.BigEndian.Uint32(out[0:4]); w != 4 {
			t.Errorf("width = %d, want 4", w)
		}
		if h := binary.BigEndian.Uint32(out[4:8]); h != 2 {
			t.Errorf("height = %d, want 2", h)
		}
		if !bytes.Equal(out[8:], pix) {
			t.Error("pixel payload mismatch")
		}
	})

	t.Run("rejects short pixel buffer", func(t *testing.T) {
		var buf bytes.Buffer
		if err := writeFrame(&buf, 4, 2, make([]byte, 10)); err == nil {
			t.Error("expected error for mismatched buffer")
		}
		if buf.Len() != 0 {
			t.Error("nothing should be written on mismatch")
		}
	})
}

func handJSON(n int) string {
	points := make([]string, n)
	for i := range points {
		points[i] = fmt.Sprintf(`{"x":%g,"y":0.5,"z":0}`, float64(i)/100)
	}
	return `{"points":[` + strings.Join(points, ",") + `],"handedness":"Left","score":0.9}`
}

func TestDecodeResponse(t *testing.T) {
	t.Run("no hands", func(t *testing.T) {
		hands, err := decodeResponse([]byte(`{"hands":[]}` + "\n"))
		if err != nil {
			t.Fatalf("decodeResponse() error = %v", err)
		}
		if len(hands) != 0 {
			t.Errorf("expected 0 hands, got %d", len(hands))
		}
	})

	t.Run("one hand", func(t *testing.T) {
		hands, err := decodeResponse([]byte(`{"hands":[` + handJSON(NumLandmarks) + `]}`))
		if err != nil {
			t.Fatalf("decodeResponse() error = %v", err)
		}
		if len(hands) != 1 {
			t.Fatalf("expected 1 hand, got %d", len(hands))
		}
		if hands[0].Handedness != "Left" {
			t.Errorf("handedness = %s, want Left", hands[0].Handedness)
		}
		if hands[0].Points[PinkyTip].X != 0.2 {
			t.Errorf("pinky tip x = %f, want 0.2", hands[0].Points[PinkyTip].X)
		}
	})

	t.Run("wrong landmark count", func(t *testing.T) {
		_, err := decodeResponse([]byte(`{"hands":[` + handJSON(20) + `]}`))
		if !errors.Is(err, ErrLandmarkCount) {
			t.Errorf("expected ErrLandmarkCount, got %v", err)
		}
	})

	t.Run("service error", func(t *testing.T) {
		_, err := decodeResponse([]byte(`{"error":"model failed"}`))
		if err == nil || !strings.Contains(err.Error(), "model failed") {
			t.Errorf("expected service error, got %v", err)
		}
	})

	t.Run("invalid json", func(t *testing.T) {
		if _, err := decodeResponse([]byte("not json")); err == nil {
			t.Error("expected parse error")
		}
	})
}

func TestServiceArgs(t *testing.T) {
	args := serviceArgs(Config{MinConfidence: 0.5, MinTrackingConf: 0.75})
	want := []string{
		"--max-hands", "2",
		"--min-detection-confidence", "0.5",
		"--min-tracking-confidence", "0.75",
	}

	if strings.Join(args, " ") != strings.Join(want, " ") {
		t.Errorf("serviceArgs() = %v, want %v", args, want)
	}
}

func TestNewMediaPipeDetector(t *testing.T) {
	t.Run("missing script", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.ScriptPath = filepath.Join(t.TempDir(), "missing.py")

		_, err := NewMediaPipeDetector(cfg, nil)
		if !errors.Is(err, ErrServiceNotFound) {
			t.Errorf("expected ErrServiceNotFound, got %v", err)
		}
	})

	t.Run("explicit script", func(t *testing.T) {
		script := filepath.Join(t.TempDir(), serviceScript)
		if err := os.WriteFile(script, []byte("# service\n"), 0o644); err != nil {
			t.Fatal(err)
		}
		cfg := DefaultConfig()
		cfg.ScriptPath = script

		d, err := NewMediaPipeDetector(cfg, nil)
		if err != nil {
			t.Fatalf("NewMediaPipeDetector() error = %v", err)
		}
		if d.ScriptPath() != script {
			t.Errorf("ScriptPath() = %s, want %s", d.ScriptPath(), script)
		}

		// Never started, so Close is a no-op.
		if err := d.Close(); err != nil {
			t.Errorf("Close() error = %v", err)
		}
	})
}
