package overlay

import (
	"image"
	"image/color"

	"gocv.io/x/gocv"

	"github.com/ayusman/fingerfold/internal/detector"
	"github.com/ayusman/fingerfold/internal/finger"
)

var white = color.RGBA{R: 255, G: 255, B: 255, A: 255}

// GocvRenderer draws with OpenCV primitives.
type GocvRenderer struct {
	config Config
}

// NewRenderer creates a GocvRenderer. Zero-valued fields of config fall back
// to DefaultConfig.
func NewRenderer(config Config) *GocvRenderer {
	def := DefaultConfig()
	if config.Connections == nil {
		config.Connections = def.Connections
	}
	if config.Points == (Style{}) {
		config.Points = def.Points
	}
	if config.Lines == (Style{}) {
		config.Lines = def.Lines
	}
	if config.MarkerRadius <= 0 {
		config.MarkerRadius = def.MarkerRadius
	}
	return &GocvRenderer{config: config}
}

// Config returns the effective drawing configuration.
func (r *GocvRenderer) Config() Config {
	return r.config
}

// DrawSkeleton draws connections first and points on top. Landmarks outside
// the frame are skipped along with their connections.
func (r *GocvRenderer) DrawSkeleton(frame *gocv.Mat, hand *detector.HandLandmarks) {
	width, height := frame.Cols(), frame.Rows()

	var px [detector.NumLandmarks]image.Point
	var visible [detector.NumLandmarks]bool
	for i, p := range hand.Points {
		if p.InFrame() {
			px[i] = finger.Pixel(p, width, height)
			visible[i] = true
		}
	}

	lines := r.config.Lines
	for _, c := range r.config.Connections {
		if !visible[c.From] || !visible[c.To] {
			continue
		}
		gocv.Line(frame, px[c.From], px[c.To], lines.Color, lines.Thickness)
	}

	points := r.config.Points
	border := borderRadius(points.Radius)
	for i := range px {
		if !visible[i] {
			continue
		}
		gocv.Circle(frame, px[i], border, white, points.Thickness)
		gocv.Circle(frame, px[i], points.Radius, points.Color, points.Thickness)
	}
}

// DrawMarker draws a filled circle of the configured marker radius.
func (r *GocvRenderer) DrawMarker(frame *gocv.Mat, at image.Point, c color.RGBA) {
	gocv.Circle(frame, at, r.config.MarkerRadius, c, -1)
}

// borderRadius sizes the white ring drawn behind each landmark point.
func borderRadius(radius int) int {
	b := radius * 6 / 5
	if b < radius+1 {
		b = radius + 1
	}
	return b
}
