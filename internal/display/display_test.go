package display

import (
	"errors"
	"testing"

	"gocv.io/x/gocv"
)

func TestIsQuit(t *testing.T) {
	tests := []struct {
		name string
		key  int
		want bool
	}{
		{name: "q", key: 'q', want: true},
		{name: "q with modifier bits", key: 0x100000 | 'q', want: true},
		{name: "Q", key: 'Q', want: false},
		{name: "escape", key: 27, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsQuit(tt.key); got != tt.want {
				t.Errorf("IsQuit(%#x) = %v, want %v", tt.key, got, tt.want)
			}
		})
	}
}

func TestMock_PollKey(t *testing.T) {
	m := NewMock(-1, 'a', 'q')

	if _, ok := m.PollKey(); ok {
		t.Error("first poll should report no key")
	}
	if k, ok := m.PollKey(); !ok || k != 'a' {
		t.Errorf("second poll = %d,%v want 'a'", k, ok)
	}
	if k, ok := m.PollKey(); !ok || k != 'q' {
		t.Errorf("third poll = %d,%v want 'q'", k, ok)
	}
	if _, ok := m.PollKey(); ok {
		t.Error("exhausted script should report no key")
	}
	if m.Polls() != 4 {
		t.Errorf("Polls() = %d, want 4", m.Polls())
	}
}

func TestMulti(t *testing.T) {
	a := NewMock(-1)
	b := NewMock('q')
	failing := NewMock()
	failing.SetError(errors.New("boom"))

	m := Multi{a, b, failing}

	if err := m.Show(nil); err == nil {
		t.Error("expected joined error from failing sink")
	}
	if a.Shown() != 1 || b.Shown() != 1 || failing.Shown() != 1 {
		t.Error("every sink should be shown the frame")
	}

	k, ok := m.PollKey()
	if !ok || k != 'q' {
		t.Errorf("PollKey() = %d,%v want 'q'", k, ok)
	}
	if a.Polls() != 1 || b.Polls() != 1 || failing.Polls() != 1 {
		t.Error("every sink should be polled")
	}

	if err := m.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
	if !a.Closed() || !b.Closed() || !failing.Closed() {
		t.Error("every sink should be closed")
	}
}

func TestCapture(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	c := NewCapture()
	defer c.Release()

	if _, ok := c.Last(); ok {
		t.Error("Last() should report nothing before Show")
	}

	frame := gocv.NewMatWithSize(48, 64, gocv.MatTypeCV8UC3)
	defer frame.Close()
	frame.SetTo(gocv.NewScalar(10, 20, 30, 0))

	if err := c.Show(&frame); err != nil {
		t.Fatalf("Show() error = %v", err)
	}

	// Mutating the source must not change the captured copy.
	frame.SetTo(gocv.NewScalar(0, 0, 0, 0))

	last, ok := c.Last()
	if !ok {
		t.Fatal("Last() should report a frame")
	}
	defer last.Close()

	if last.Cols() != 64 || last.Rows() != 48 {
		t.Errorf("captured size = %dx%d, want 64x48", last.Cols(), last.Rows())
	}
	if px := last.GetVecbAt(0, 0); px[0] != 10 || px[2] != 30 {
		t.Errorf("captured pixel = %v, want [10 20 30]", px)
	}
	if c.Shown() != 1 {
		t.Errorf("Shown() = %d, want 1", c.Shown())
	}
}
