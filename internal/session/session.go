// Package session runs the capture, detection, annotation and display loop.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gocv.io/x/gocv"

	"github.com/ayusman/fingerfold/internal/capture"
	"github.com/ayusman/fingerfold/internal/detector"
	"github.com/ayusman/fingerfold/internal/display"
	"github.com/ayusman/fingerfold/internal/finger"
	"github.com/ayusman/fingerfold/internal/overlay"
)

// ErrCameraUnavailable is returned by Run when the frame source cannot be opened.
var ErrCameraUnavailable = errors.New("camera unavailable")

// HandResult is the classification of one detected hand.
type HandResult struct {
	Handedness string
	Score      float64
	Fingers    [finger.Count]finger.Reading
}

// FrameResult describes one processed frame. Observers receive it after the
// overlay is drawn and before the frame is presented.
type FrameResult struct {
	Seq     int
	Time    time.Time
	Width   int
	Height  int
	Elapsed time.Duration
	Hands   []HandResult
}

// Folded returns the fingers reported folded across all hands, in hand order.
func (r FrameResult) Folded() []finger.Finger {
	var out []finger.Finger
	for _, h := range r.Hands {
		for _, reading := range h.Fingers {
			if reading.State == finger.Folded {
				out = append(out, reading.Finger)
			}
		}
	}
	return out
}

// Observer receives per-frame results. Implementations must not block for long.
type Observer interface {
	ObserveFrame(FrameResult)
}

// FailureObserver is implemented by observers that also track capture failures.
type FailureObserver interface {
	ObserveCaptureFailure(err error)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(FrameResult)

// ObserveFrame calls f(r).
func (f ObserverFunc) ObserveFrame(r FrameResult) { f(r) }

// Config holds the collaborators of a session. Source, Detector and Display
// are owned by the session once Run is called and are closed when it returns.
type Config struct {
	Source    capture.Camera
	Detector  detector.Detector
	Renderer  overlay.Renderer
	Palette   overlay.Palette
	Display   display.Sink
	Observers []Observer
	Logger    *slog.Logger

	// MaxFrames stops the loop after that many presented frames. Zero means no limit.
	MaxFrames int
	// CameraID is used for logging only.
	CameraID int
}

// Session is a single run of the loop.
type Session struct {
	config Config
	log    *slog.Logger
	frames int
}

// New creates a Session. Zero Palette and nil Renderer fall back to defaults.
func New(config Config) *Session {
	if config.Logger == nil {
		config.Logger = slog.New(slog.DiscardHandler)
	}
	if config.Renderer == nil {
		config.Renderer = overlay.NewRenderer(overlay.DefaultConfig())
	}
	if config.Palette == (overlay.Palette{}) {
		config.Palette = overlay.DefaultPalette()
	}
	return &Session{config: config, log: config.Logger}
}

// Frames returns the number of frames presented so far.
func (s *Session) Frames() int {
	return s.frames
}

// Run opens the source and processes frames until the quit key is pressed,
// ctx is cancelled, the source fails to deliver a frame, or MaxFrames is
// reached. A capture failure ends the session normally and returns nil.
func (s *Session) Run(ctx context.Context) error {
	c := s.config

	defer func() {
		if c.Detector == nil {
			return
		}
		if err := c.Detector.Close(); err != nil {
			s.log.Warn("failed to close landmark provider", slog.Any("error", err))
		}
	}()
	defer func() {
		if c.Display == nil {
			return
		}
		if err := c.Display.Close(); err != nil {
			s.log.Warn("failed to close display", slog.Any("error", err))
		}
	}()

	if err := c.Source.Open(); err != nil {
		return fmt.Errorf("%w: %w", ErrCameraUnavailable, err)
	}
	defer func() {
		if err := c.Source.Close(); err != nil {
			s.log.Warn("failed to close camera", slog.Any("error", err))
		}
	}()

	if it, ok := c.Detector.(detector.Interrupter); ok {
		stop := context.AfterFunc(ctx, func() {
			if err := it.Interrupt(); err != nil {
				s.log.Warn("failed to interrupt landmark provider", slog.Any("error", err))
			}
		})
		defer stop()
	}

	s.log.Info("camera started", slog.Int("device", c.CameraID), slog.Int("fps", c.Source.FPS()))
	defer func() {
		s.log.Info("session ended", slog.Int("frames", s.frames))
	}()

	for {
		if err := ctx.Err(); err != nil {
			s.log.Info("session cancelled")
			return nil
		}

		quit, err := s.step()
		if err != nil {
			var capErr *captureError
			if errors.As(err, &capErr) {
				s.log.Error("failed to capture frame", slog.Any("error", capErr.err))
				s.notifyFailure(capErr.err)
				return nil
			}
			if ctx.Err() != nil {
				s.log.Info("session cancelled", slog.Any("error", err))
				return nil
			}
			return err
		}
		if quit {
			s.log.Info("quit requested")
			return nil
		}
		if c.MaxFrames > 0 && s.frames >= c.MaxFrames {
			return nil
		}
	}
}

type captureError struct {
	err error
}

func (e *captureError) Error() string { return e.err.Error() }
func (e *captureError) Unwrap() error { return e.err }

// step processes one frame and reports whether the quit key was pressed.
func (s *Session) step() (bool, error) {
	c := s.config

	frame, err := c.Source.ReadFrame()
	if err != nil {
		return false, &captureError{err: err}
	}
	defer frame.Close()

	start := time.Now()

	gocv.Flip(*frame, frame, 1)

	var hands []detector.HandLandmarks
	if c.Detector != nil {
		hands, err = c.Detector.Detect(frame)
		if err != nil {
			return false, fmt.Errorf("detect hands: %w", err)
		}
	}

	width, height := frame.Cols(), frame.Rows()
	result := FrameResult{
		Seq:    s.frames,
		Time:   start,
		Width:  width,
		Height: height,
		Hands:  make([]HandResult, 0, len(hands)),
	}

	for i := range hands {
		hand := &hands[i]
		readings := finger.Classify(hand, width, height)
		for _, r := range readings {
			c.Renderer.DrawMarker(frame, r.Pixel, c.Palette.ColorFor(r.State))
		}
		c.Renderer.DrawSkeleton(frame, hand)

		result.Hands = append(result.Hands, HandResult{
			Handedness: hand.Handedness,
			Score:      hand.Score,
			Fingers:    readings,
		})
	}
	result.Elapsed = time.Since(start)

	for _, o := range c.Observers {
		o.ObserveFrame(result)
	}

	if c.Display != nil {
		if err := c.Display.Show(frame); err != nil {
			s.log.Warn("failed to present frame", slog.Any("error", err))
		}
	}
	s.frames++

	if c.Display == nil {
		return false, nil
	}
	key, ok := c.Display.PollKey()
	return ok && display.IsQuit(key), nil
}

func (s *Session) notifyFailure(err error) {
	for _, o := range s.config.Observers {
		if f, ok := o.(FailureObserver); ok {
			f.ObserveCaptureFailure(err)
		}
	}
}
