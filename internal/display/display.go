// Package display presents annotated frames and reports key presses.
package display

import (
	"errors"
	"sync"

	"gocv.io/x/gocv"
)

// QuitKey is the key that ends a session.
const QuitKey = 'q'

// Sink presents frames.
type Sink interface {
	// Show presents the frame. The sink must not retain frame after returning.
	Show(frame *gocv.Mat) error

	// PollKey returns the key pressed since the last poll, if any.
	PollKey() (int, bool)

	// Close releases the sink's resources.
	Close() error
}

// IsQuit reports whether key is the quit key. Only the low byte is compared.
func IsQuit(key int) bool {
	return key&0xFF == QuitKey
}

// Window shows frames in an OpenCV HighGUI window.
type Window struct {
	window *gocv.Window
	delay  int
}

// NewWindow opens a named window. Key polling waits 1ms.
func NewWindow(name string) *Window {
	return &Window{window: gocv.NewWindow(name), delay: 1}
}

// Show displays the frame.
func (w *Window) Show(frame *gocv.Mat) error {
	w.window.IMShow(*frame)
	return nil
}

// PollKey waits briefly for a key press and pumps window events.
func (w *Window) PollKey() (int, bool) {
	key := w.window.WaitKey(w.delay)
	if key < 0 {
		return 0, false
	}
	return key, true
}

// Close destroys the window.
func (w *Window) Close() error {
	return w.window.Close()
}

// Multi fans frames out to several sinks.
type Multi []Sink

// Show presents the frame on every sink and joins their errors.
func (m Multi) Show(frame *gocv.Mat) error {
	var errs []error
	for _, s := range m {
		if err := s.Show(frame); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// PollKey polls every sink so each gets its event pump, returning the first key.
func (m Multi) PollKey() (int, bool) {
	var (
		key   int
		found bool
	)
	for _, s := range m {
		if k, ok := s.PollKey(); ok && !found {
			key, found = k, true
		}
	}
	return key, found
}

// Close closes every sink and joins their errors.
func (m Multi) Close() error {
	var errs []error
	for _, s := range m {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Capture keeps a copy of the most recently shown frame.
type Capture struct {
	mu    sync.Mutex
	last  gocv.Mat
	shown int
}

// NewCapture creates an empty Capture sink.
func NewCapture() *Capture {
	return &Capture{last: gocv.NewMat()}
}

// Show copies the frame.
func (c *Capture) Show(frame *gocv.Mat) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	frame.CopyTo(&c.last)
	c.shown++
	return nil
}

// PollKey never reports a key.
func (c *Capture) PollKey() (int, bool) { return 0, false }

// Last returns a clone of the last shown frame. The caller must close it.
func (c *Capture) Last() (gocv.Mat, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.shown == 0 {
		return gocv.NewMat(), false
	}
	return c.last.Clone(), true
}

// Shown returns how many frames were shown.
func (c *Capture) Shown() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.shown
}

// Close ends the sink but keeps the stored frame so Last still works after
// the session that fed it has shut down.
func (c *Capture) Close() error { return nil }

// Release frees the stored frame.
func (c *Capture) Release() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.last.Close()
}
