package session

import (
	"context"
	"log/slog"
)

// LogObserver logs every fingertip reading at debug level.
type LogObserver struct {
	log *slog.Logger
}

// NewLogObserver creates a LogObserver writing to log.
func NewLogObserver(log *slog.Logger) *LogObserver {
	return &LogObserver{log: log}
}

// ObserveFrame logs one line per fingertip.
func (o *LogObserver) ObserveFrame(r FrameResult) {
	if !o.log.Enabled(context.Background(), slog.LevelDebug) {
		return
	}
	for i, h := range r.Hands {
		for _, reading := range h.Fingers {
			o.log.Debug("fingertip",
				slog.Int("frame", r.Seq),
				slog.Int("hand", i),
				slog.String("handedness", h.Handedness),
				slog.String("finger", reading.Finger.String()),
				slog.Int("x", reading.Pixel.X),
				slog.Int("y", reading.Pixel.Y),
				slog.String("state", reading.State.String()),
			)
		}
	}
}
