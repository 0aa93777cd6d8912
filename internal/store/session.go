package store

import (
	"database/sql"
	"errors"
	"time"
)

// Session is a recorded run of the camera loop.
type Session struct {
	ID        string
	Camera    int
	StartedAt time.Time
	EndedAt   *time.Time
	Frames    int
	// Folded is the number of folded fingertip readings in the session.
	// It is only filled by List and GetByID.
	Folded int
}

// SessionRepository provides access to recorded sessions.
type SessionRepository struct {
	db *sql.DB
}

// Sessions returns the session repository for this store.
func (s *Store) Sessions() *SessionRepository {
	return &SessionRepository{db: s.db}
}

// Create inserts a new session.
func (r *SessionRepository) Create(sess *Session) error {
	if sess.StartedAt.IsZero() {
		sess.StartedAt = time.Now()
	}

	_, err := r.db.Exec(
		`INSERT INTO sessions (id, camera, started_at, frames) VALUES (?, ?, ?, ?)`,
		sess.ID, sess.Camera, sess.StartedAt, sess.Frames,
	)
	return err
}

// End stamps ended_at on the session.
func (r *SessionRepository) End(id string, at time.Time) error {
	result, err := r.db.Exec(`UPDATE sessions SET ended_at = ? WHERE id = ?`, at, id)
	if err != nil {
		return err
	}
	return expectOneRow(result)
}

const sessionColumns = `s.id, s.camera, s.started_at, s.ended_at, s.frames,
	(SELECT COUNT(*) FROM fingertip_readings f WHERE f.session_id = s.id AND f.state = 'folded')`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (*Session, error) {
	sess := &Session{}
	var ended sql.NullTime
	if err := row.Scan(&sess.ID, &sess.Camera, &sess.StartedAt, &ended, &sess.Frames, &sess.Folded); err != nil {
		return nil, err
	}
	if ended.Valid {
		t := ended.Time
		sess.EndedAt = &t
	}
	return sess, nil
}

// GetByID retrieves a session by its ID.
func (r *SessionRepository) GetByID(id string) (*Session, error) {
	sess, err := scanSession(r.db.QueryRow(
		`SELECT `+sessionColumns+` FROM sessions s WHERE s.id = ?`, id,
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return sess, nil
}

// List retrieves all sessions, newest first.
func (r *SessionRepository) List() ([]*Session, error) {
	rows, err := r.db.Query(
		`SELECT ` + sessionColumns + ` FROM sessions s ORDER BY s.started_at DESC, s.rowid DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []*Session
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, sess)
	}

	return sessions, rows.Err()
}

// Delete removes a session and, through the foreign key, its readings.
func (r *SessionRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return expectOneRow(result)
}

func expectOneRow(result sql.Result) error {
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
