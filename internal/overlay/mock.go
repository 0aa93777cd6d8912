package overlay

import (
	"image"
	"image/color"
	"sync"

	"gocv.io/x/gocv"

	"github.com/ayusman/fingerfold/internal/detector"
)

// Marker is a DrawMarker call recorded by MockRenderer.
type Marker struct {
	At    image.Point
	Color color.RGBA
}

// MockRenderer records draw calls without touching the frame.
type MockRenderer struct {
	mu        sync.Mutex
	skeletons []detector.HandLandmarks
	markers   []Marker
	order     []string
}

// NewMockRenderer creates a new MockRenderer.
func NewMockRenderer() *MockRenderer {
	return &MockRenderer{}
}

// DrawSkeleton records the hand.
func (m *MockRenderer) DrawSkeleton(frame *gocv.Mat, hand *detector.HandLandmarks) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.skeletons = append(m.skeletons, *hand)
	m.order = append(m.order, "skeleton")
}

// DrawMarker records the marker.
func (m *MockRenderer) DrawMarker(frame *gocv.Mat, at image.Point, c color.RGBA) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.markers = append(m.markers, Marker{At: at, Color: c})
	m.order = append(m.order, "marker")
}

// Skeletons returns the recorded DrawSkeleton hands.
func (m *MockRenderer) Skeletons() []detector.HandLandmarks {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]detector.HandLandmarks(nil), m.skeletons...)
}

// Markers returns the recorded DrawMarker calls.
func (m *MockRenderer) Markers() []Marker {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Marker(nil), m.markers...)
}

// Calls returns the total number of draw calls.
func (m *MockRenderer) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.order)
}

// Order returns the sequence of draw call kinds ("marker" or "skeleton").
func (m *MockRenderer) Order() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.order...)
}
