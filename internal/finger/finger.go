// Package finger classifies the four non-thumb fingers of a hand as folded
// or extended.
//
// The heuristic compares each fingertip's x-coordinate with the knuckle
// three landmarks earlier. It assumes a mirrored front camera feed and an
// upright hand; rotated or sideways poses are not handled.
package finger

import (
	"fmt"
	"image"
	"math"

	"github.com/ayusman/fingerfold/internal/detector"
)

// Finger identifies one of the four classified fingers.
type Finger int

const (
	Index Finger = iota
	Middle
	Ring
	Pinky
)

// Count is the number of classified fingers.
const Count = 4

// All lists the classified fingers in output order.
var All = [Count]Finger{Index, Middle, Ring, Pinky}

// joints holds the landmark indices compared for one finger.
type joints struct {
	tip  int
	base int
}

// table maps each finger to its tip and reference landmark. The reference
// is always three landmarks before the tip.
var table = [Count]joints{
	Index:  {tip: detector.IndexTip, base: detector.IndexMCP},
	Middle: {tip: detector.MiddleTip, base: detector.MiddleMCP},
	Ring:   {tip: detector.RingTip, base: detector.RingMCP},
	Pinky:  {tip: detector.PinkyTip, base: detector.PinkyMCP},
}

var names = [Count]string{"index", "middle", "ring", "pinky"}

// Tip returns the landmark index of the fingertip.
func (f Finger) Tip() int { return table[f].tip }

// Base returns the landmark index the fingertip is compared against.
func (f Finger) Base() int { return table[f].base }

func (f Finger) String() string {
	if f < 0 || int(f) >= Count {
		return fmt.Sprintf("Finger(%d)", int(f))
	}
	return names[f]
}

// State is the fold classification of a finger.
type State int

const (
	Extended State = iota
	Folded
)

func (s State) String() string {
	switch s {
	case Extended:
		return "extended"
	case Folded:
		return "folded"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// MarshalText implements encoding.TextMarshaler.
func (f Finger) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

// Reading is the classification of one finger in one frame.
type Reading struct {
	Finger Finger      `json:"finger"`
	Pixel  image.Point `json:"pixel"`
	State  State       `json:"state"`
}

// Classify returns a reading for each finger in All order. Pixel positions
// are the fingertip scaled to a width x height frame.
func Classify(hand *detector.HandLandmarks, width, height int) [Count]Reading {
	var out [Count]Reading
	for i, f := range All {
		out[i] = Reading{
			Finger: f,
			Pixel:  Pixel(hand.Points[f.Tip()], width, height),
			State:  StateOf(hand, f),
		}
	}
	return out
}

// StateOf classifies a single finger. A tip left of its reference joint is
// folded; equal x counts as extended.
func StateOf(hand *detector.HandLandmarks, f Finger) State {
	if hand.Points[f.Tip()].X < hand.Points[f.Base()].X {
		return Folded
	}
	return Extended
}

// Pixel maps a normalized landmark to pixel coordinates, rounding half away
// from zero.
func Pixel(p detector.Point3D, width, height int) image.Point {
	return image.Point{
		X: int(math.Round(p.X * float64(width))),
		Y: int(math.Round(p.Y * float64(height))),
	}
}
