package store

// runMigrations executes all database migrations.
func (s *Store) runMigrations() error {
	migrations := []string{
		// One row per live run of the camera loop
		`CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			camera INTEGER NOT NULL DEFAULT 0,
			started_at DATETIME NOT NULL,
			ended_at DATETIME,
			frames INTEGER NOT NULL DEFAULT 0
		)`,

		// Fingertip classifications, four per detected hand per frame
		`CREATE TABLE IF NOT EXISTS fingertip_readings (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
			frame_seq INTEGER NOT NULL,
			hand_index INTEGER NOT NULL,
			handedness TEXT NOT NULL DEFAULT '',
			finger TEXT NOT NULL CHECK(finger IN ('index', 'middle', 'ring', 'pinky')),
			px INTEGER NOT NULL,
			py INTEGER NOT NULL,
			state TEXT NOT NULL CHECK(state IN ('extended', 'folded'))
		)`,

		`CREATE INDEX IF NOT EXISTS idx_fingertip_readings_session_id ON fingertip_readings(session_id, frame_seq)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return err
		}
	}

	return nil
}
