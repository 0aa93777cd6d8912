// Package overlay draws hand skeletons and fingertip markers onto frames.
package overlay

import (
	"image"
	"image/color"

	"gocv.io/x/gocv"

	"github.com/ayusman/fingerfold/internal/detector"
	"github.com/ayusman/fingerfold/internal/finger"
)

// Renderer draws annotations onto a frame in place.
type Renderer interface {
	// DrawSkeleton draws the hand's connections and landmark points.
	DrawSkeleton(frame *gocv.Mat, hand *detector.HandLandmarks)

	// DrawMarker draws a filled fingertip marker centred on at.
	DrawMarker(frame *gocv.Mat, at image.Point, c color.RGBA)
}

// Connection joins two landmark indices.
type Connection struct {
	From int
	To   int
}

// HandConnections is the MediaPipe hand topology.
var HandConnections = []Connection{
	// Palm
	{detector.Wrist, detector.ThumbCMC},
	{detector.Wrist, detector.IndexMCP},
	{detector.IndexMCP, detector.MiddleMCP},
	{detector.MiddleMCP, detector.RingMCP},
	{detector.RingMCP, detector.PinkyMCP},
	{detector.Wrist, detector.PinkyMCP},
	// Thumb
	{detector.ThumbCMC, detector.ThumbMCP},
	{detector.ThumbMCP, detector.ThumbIP},
	{detector.ThumbIP, detector.ThumbTip},
	// Index
	{detector.IndexMCP, detector.IndexPIP},
	{detector.IndexPIP, detector.IndexDIP},
	{detector.IndexDIP, detector.IndexTip},
	// Middle
	{detector.MiddleMCP, detector.MiddlePIP},
	{detector.MiddlePIP, detector.MiddleDIP},
	{detector.MiddleDIP, detector.MiddleTip},
	// Ring
	{detector.RingMCP, detector.RingPIP},
	{detector.RingPIP, detector.RingDIP},
	{detector.RingDIP, detector.RingTip},
	// Pinky
	{detector.PinkyMCP, detector.PinkyPIP},
	{detector.PinkyPIP, detector.PinkyDIP},
	{detector.PinkyDIP, detector.PinkyTip},
}

// Style describes how a point or line is drawn.
type Style struct {
	Color     color.RGBA
	Thickness int
	Radius    int // points only
}

// Palette selects the fingertip marker colour for a finger state.
type Palette struct {
	Extended color.RGBA
	Folded   color.RGBA
}

// ColorFor returns the marker colour for s.
func (p Palette) ColorFor(s finger.State) color.RGBA {
	if s == finger.Folded {
		return p.Folded
	}
	return p.Extended
}

// DefaultPalette returns salmon for extended fingers and pink for folded ones.
func DefaultPalette() Palette {
	return Palette{
		Extended: color.RGBA{R: 237, G: 149, B: 100, A: 255},
		Folded:   color.RGBA{R: 255, G: 53, B: 151, A: 255},
	}
}

// Config holds the drawing configuration for a Renderer.
type Config struct {
	Connections  []Connection
	Points       Style
	Lines        Style
	MarkerRadius int
}

// DefaultConfig returns red landmark points joined by green lines and
// 12 pixel fingertip markers.
func DefaultConfig() Config {
	return Config{
		Connections: HandConnections,
		Points: Style{
			Color:     color.RGBA{R: 255, A: 255},
			Thickness: 2,
			Radius:    2,
		},
		Lines: Style{
			Color:     color.RGBA{G: 255, A: 255},
			Thickness: 2,
		},
		MarkerRadius: 12,
	}
}
