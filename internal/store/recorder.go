package store

import (
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/ayusman/fingerfold/internal/session"
)

// Recorder writes each frame's readings into the store. It implements
// session.Observer; write failures are logged and never stop the session.
type Recorder struct {
	store *Store
	log   *slog.Logger
	id    string
}

// NewRecorder creates a Recorder on s.
func NewRecorder(s *Store, log *slog.Logger) *Recorder {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Recorder{store: s, log: log}
}

// Begin creates a new session row and returns its ID.
func (r *Recorder) Begin(camera int) (string, error) {
	sess := &Session{
		ID:        uuid.NewString(),
		Camera:    camera,
		StartedAt: time.Now(),
	}
	if err := r.store.Sessions().Create(sess); err != nil {
		return "", err
	}
	r.id = sess.ID
	r.log.Info("trace session started", slog.String("session", sess.ID))
	return sess.ID, nil
}

// SessionID returns the current session ID, empty before Begin.
func (r *Recorder) SessionID() string {
	return r.id
}

// ObserveFrame appends the frame's readings.
func (r *Recorder) ObserveFrame(fr session.FrameResult) {
	if r.id == "" {
		return
	}

	readings := make([]Reading, 0, len(fr.Hands)*4)
	for i, h := range fr.Hands {
		for _, rd := range h.Fingers {
			readings = append(readings, Reading{
				FrameSeq:   fr.Seq,
				HandIndex:  i,
				Handedness: h.Handedness,
				Finger:     rd.Finger.String(),
				X:          rd.Pixel.X,
				Y:          rd.Pixel.Y,
				State:      rd.State.String(),
			})
		}
	}

	if err := r.store.Readings().AppendFrame(r.id, readings); err != nil {
		r.log.Warn("failed to record frame", slog.Int("frame", fr.Seq), slog.Any("error", err))
	}
}

// End stamps the session's end time.
func (r *Recorder) End() error {
	if r.id == "" {
		return nil
	}
	err := r.store.Sessions().End(r.id, time.Now())
	r.log.Info("trace session ended", slog.String("session", r.id))
	return err
}
