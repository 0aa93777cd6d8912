package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ayusman/fingerfold/internal/store"
)

// SessionsHandler exposes recorded trace sessions.
type SessionsHandler struct {
	store *store.Store
}

// NewSessionsHandler creates a new SessionsHandler with the given store.
func NewSessionsHandler(s *store.Store) *SessionsHandler {
	return &SessionsHandler{store: s}
}

type sessionResponse struct {
	ID        string     `json:"id"`
	Camera    int        `json:"camera"`
	StartedAt time.Time  `json:"started_at"`
	EndedAt   *time.Time `json:"ended_at,omitempty"`
	Frames    int        `json:"frames"`
	Folded    int        `json:"folded"`
}

type readingResponse struct {
	Frame      int    `json:"frame"`
	Hand       int    `json:"hand"`
	Handedness string `json:"handedness"`
	Finger     string `json:"finger"`
	X          int    `json:"x"`
	Y          int    `json:"y"`
	State      string `json:"state"`
}

func toSessionResponse(s *store.Session) sessionResponse {
	return sessionResponse{
		ID:        s.ID,
		Camera:    s.Camera,
		StartedAt: s.StartedAt,
		EndedAt:   s.EndedAt,
		Frames:    s.Frames,
		Folded:    s.Folded,
	}
}

// List handles GET /api/sessions.
func (h *SessionsHandler) List(w http.ResponseWriter, r *http.Request) {
	sessions, err := h.store.Sessions().List()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list sessions")
		return
	}

	out := make([]sessionResponse, 0, len(sessions))
	for _, s := range sessions {
		out = append(out, toSessionResponse(s))
	}
	writeJSON(w, http.StatusOK, out)
}

// Get handles GET /api/sessions/{session_id}.
func (h *SessionsHandler) Get(w http.ResponseWriter, r *http.Request) {
	sess, err := h.store.Sessions().GetByID(chi.URLParam(r, "session_id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "session not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to get session")
		return
	}
	writeJSON(w, http.StatusOK, toSessionResponse(sess))
}

// Readings handles GET /api/sessions/{session_id}/readings.
func (h *SessionsHandler) Readings(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "session_id")
	if _, err := h.store.Sessions().GetByID(id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "session not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to get session")
		return
	}

	readings, err := h.store.Readings().ListBySession(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list readings")
		return
	}

	out := make([]readingResponse, 0, len(readings))
	for _, rd := range readings {
		out = append(out, readingResponse{
			Frame:      rd.FrameSeq,
			Hand:       rd.HandIndex,
			Handedness: rd.Handedness,
			Finger:     rd.Finger,
			X:          rd.X,
			Y:          rd.Y,
			State:      rd.State,
		})
	}
	writeJSON(w, http.StatusOK, out)
}
