package store

import (
	"database/sql"
	"fmt"
)

// Reading is one stored fingertip classification.
type Reading struct {
	SessionID  string
	FrameSeq   int
	HandIndex  int
	Handedness string
	Finger     string
	X          int
	Y          int
	State      string
}

// ReadingRepository provides access to fingertip readings.
type ReadingRepository struct {
	db *sql.DB
}

// Readings returns the reading repository for this store.
func (s *Store) Readings() *ReadingRepository {
	return &ReadingRepository{db: s.db}
}

// AppendFrame stores the readings of one frame and bumps the session's frame
// counter in a single transaction. readings may be empty.
func (r *ReadingRepository) AppendFrame(sessionID string, readings []Reading) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	result, err := tx.Exec(`UPDATE sessions SET frames = frames + 1 WHERE id = ?`, sessionID)
	if err != nil {
		return err
	}
	if err := expectOneRow(result); err != nil {
		return fmt.Errorf("session %s: %w", sessionID, err)
	}

	if len(readings) > 0 {
		stmt, err := tx.Prepare(
			`INSERT INTO fingertip_readings
			 (session_id, frame_seq, hand_index, handedness, finger, px, py, state)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for _, rd := range readings {
			if _, err := stmt.Exec(sessionID, rd.FrameSeq, rd.HandIndex, rd.Handedness, rd.Finger, rd.X, rd.Y, rd.State); err != nil {
				return err
			}
		}
	}

	return tx.Commit()
}

// ListBySession returns the readings of a session in frame order.
func (r *ReadingRepository) ListBySession(sessionID string) ([]Reading, error) {
	rows, err := r.db.Query(
		`SELECT session_id, frame_seq, hand_index, handedness, finger, px, py, state
		 FROM fingertip_readings WHERE session_id = ? ORDER BY frame_seq, hand_index, id`,
		sessionID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var readings []Reading
	for rows.Next() {
		var rd Reading
		if err := rows.Scan(&rd.SessionID, &rd.FrameSeq, &rd.HandIndex, &rd.Handedness, &rd.Finger, &rd.X, &rd.Y, &rd.State); err != nil {
			return nil, err
		}
		readings = append(readings, rd)
	}

	return readings, rows.Err()
}
