package store

import (
	"database/sql"
	"encoding/json"
	"path/filepath"
)

func (s *Store) openSessionsDB() (*sql.DB, error) {
	s.sessionsOnce.Do(func() {
		db, err := sql.Open("sqlite", filepath.Join(s.baseDir, "sessions.db")+"?_pragma=journal_mode(WAL)")
		if err != nil {
			s.sessionsErr = err
			return
		}
		if _, err := db.Exec(sessionsDDL); err != nil {
			db.Close()
			s.sessionsErr = err
			return
		}
		s.sessionsDB = db
	})
	return s.sessionsDB, s.sessionsErr
}

// SaveSessionTurn appends a turn to sessionID's history, assigning it the
// next dense turn index, and returns that index.
func (s *Store) SaveSessionTurn(sessionID, question, answer string, relevantFiles []string, createdAt float64) (int, error) {
	db, err := s.openSessionsDB()
	if err != nil {
		return 0, err
	}

	tx, err := db.Begin()
	if err != nil {
		return 0, err
	}

	var maxIndex sql.NullInt64
	if err := tx.QueryRow(
		"SELECT MAX(turn_index) FROM session_turns WHERE session_id=?", sessionID,
	).Scan(&maxIndex); err != nil {
		tx.Rollback()
		return 0, err
	}

	nextIndex := 0
	if maxIndex.Valid {
		nextIndex = int(maxIndex.Int64) + 1
	}

	filesJSON, err := json.Marshal(relevantFiles)
	if err != nil {
		tx.Rollback()
		return 0, err
	}

	if _, err := tx.Exec(
		"INSERT INTO session_turns VALUES (?, ?, ?, ?, ?, ?)",
		sessionID, nextIndex, question, answer, string(filesJSON), createdAt,
	); err != nil {
		tx.Rollback()
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return nextIndex, nil
}

// LoadSession returns sessionID's turns in order, oldest first. maxTurns <= 0
// means no limit.
func (s *Store) LoadSession(sessionID string, maxTurns int) ([]SessionTurn, error) {
	db, err := s.openSessionsDB()
	if err != nil {
		return nil, err
	}

	rows, err := db.Query(
		"SELECT turn_index, question, answer, relevant_files, created_at FROM session_turns WHERE session_id=? ORDER BY turn_index",
		sessionID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var turns []SessionTurn
	for rows.Next() {
		var t SessionTurn
		var filesJSON string
		if err := rows.Scan(&t.TurnIndex, &t.Question, &t.Answer, &filesJSON, &t.CreatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(filesJSON), &t.RelevantFiles); err != nil {
			return nil, err
		}
		turns = append(turns, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if maxTurns > 0 && len(turns) > maxTurns {
		turns = turns[len(turns)-maxTurns:]
	}
	return turns, nil
}
