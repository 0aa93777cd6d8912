// Package testdata provides synthetic frames and canonical hands for tests.
package testdata

import (
	"image"
	"image/color"

	"gocv.io/x/gocv"

	"github.com/ayusman/fingerfold/internal/detector"
)

// Default frame size used by the fixtures.
const (
	FrameWidth  = 640
	FrameHeight = 480
)

// NewFrame returns a dark BGR frame with a light block in its left half so
// that mirroring is observable. The caller must close it.
func NewFrame(width, height int) *gocv.Mat {
	mat := gocv.NewMatWithSize(height, width, gocv.MatTypeCV8UC3)
	mat.SetTo(gocv.NewScalar(32, 32, 32, 0))
	gocv.Rectangle(&mat, image.Rect(width/8, height/4, width/2-width/8, height-height/4),
		color.RGBA{R: 200, G: 200, B: 200, A: 255}, -1)
	return &mat
}

// NewFrames returns n frames of the default size.
func NewFrames(n int) []*gocv.Mat {
	frames := make([]*gocv.Mat, n)
	for i := range frames {
		frames[i] = NewFrame(FrameWidth, FrameHeight)
	}
	return frames
}

// CloseAll closes every frame.
func CloseAll(frames []*gocv.Mat) {
	for _, f := range frames {
		f.Close()
	}
}

// OpenPalm returns a hand with all four fingers extended.
func OpenPalm() detector.HandLandmarks {
	return detector.OpenPalmLandmarks()
}

// Fist returns a hand with all four fingers folded.
func Fist() detector.HandLandmarks {
	return detector.ThumbsUpLandmarks()
}

// FoldedIndex returns an open palm whose index tip (x=0.3) sits left of its
// knuckle (x=0.5). On a 640 px wide frame the tip lands at x=192.
func FoldedIndex() detector.HandLandmarks {
	hand := detector.OpenPalmLandmarks()
	hand.Handedness = "Left"
	hand.Points[detector.IndexMCP].X = 0.5
	hand.Points[detector.IndexTip].X = 0.3
	return hand
}
