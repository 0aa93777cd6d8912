package display

import (
	"sync"

	"gocv.io/x/gocv"
)

// Mock records shown frames and replays a scripted key sequence.
type Mock struct {
	mu     sync.Mutex
	keys   []int
	polls  int
	shown  int
	sizes  [][2]int
	err    error
	closed bool
}

// NewMock creates a Mock whose PollKey returns keys in order, one per poll.
// A negative entry means no key for that poll.
func NewMock(keys ...int) *Mock {
	return &Mock{keys: keys}
}

// SetError makes Show return err.
func (m *Mock) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Show records the frame size.
func (m *Mock) Show(frame *gocv.Mat) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.shown++
	if frame != nil {
		m.sizes = append(m.sizes, [2]int{frame.Cols(), frame.Rows()})
	}
	return m.err
}

// PollKey returns the next scripted key.
func (m *Mock) PollKey() (int, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.polls
	m.polls++
	if i >= len(m.keys) || m.keys[i] < 0 {
		return 0, false
	}
	return m.keys[i], true
}

// Close marks the mock closed.
func (m *Mock) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Shown returns the number of Show calls.
func (m *Mock) Shown() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.shown
}

// Polls returns the number of PollKey calls.
func (m *Mock) Polls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.polls
}

// Closed reports whether Close was called.
func (m *Mock) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}
