package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"lerncoach/internal/models"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// SQLiteStorage implementiert Storage mit SQLite (lokaler Modus).
// Fortschritt liegt als JSON-Blob in der students-Tabelle, die Historie
// als eigene Zeilen - Anhängen ist hier ein INSERT und damit verlustfrei.
type SQLiteStorage struct {
	db *sql.DB
}

// NewSQLiteStorage erstellt eine neue SQLite-Storage-Instanz
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}

	storage := &SQLiteStorage{db: db}
	if err := storage.initSchema(); err != nil {
		return nil, err
	}

	return storage, nil
}

func (s *SQLiteStorage) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS students (
		name TEXT PRIMARY KEY,
		progress TEXT NOT NULL DEFAULT '{}'
	);

	CREATE TABLE IF NOT EXISTS history (
		id TEXT PRIMARY KEY,
		student_name TEXT NOT NULL,
		user_text TEXT NOT NULL,
		assistant_text TEXT NOT NULL,
		created_at DATETIME NOT NULL,
		seq INTEGER NOT NULL,
		FOREIGN KEY (student_name) REFERENCES students(name)
	);

	CREATE INDEX IF NOT EXISTS idx_history_student ON history(student_name, seq);
	`

	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

func (s *SQLiteStorage) GetStudent(ctx context.Context, name string) (*models.StudentRecord, error) {
	record := models.NewStudentRecord(name)

	var progressJSON string
	err := s.db.QueryRowContext(ctx, `SELECT progress FROM students WHERE name = ?`, name).Scan(&progressJSON)
	if err == sql.ErrNoRows {
		// Kein Datensatz: leerer Datensatz, kein Fehler
		return record, nil
	}
	if err != nil {
		return nil, err
	}
	json.Unmarshal([]byte(progressJSON), &record.Progress)
	if record.Progress == nil {
		record.Progress = map[string]interface{}{}
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT user_text, assistant_text FROM history
		WHERE student_name = ? ORDER BY seq
	`, name)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var turn models.HistoryTurn
		if err := rows.Scan(&turn.User, &turn.Assistant); err != nil {
			return nil, err
		}
		record.History = append(record.History, turn)
	}
	return record, rows.Err()
}

// ensureStudent legt den Datensatz bei der ersten Interaktion an
func (s *SQLiteStorage) ensureStudent(ctx context.Context, name string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO students (name, progress) VALUES (?, '{}')
		ON CONFLICT(name) DO NOTHING
	`, name)
	return err
}

func (s *SQLiteStorage) AppendHistoryTurn(ctx context.Context, name, userText, assistantText string) error {
	if err := s.ensureStudent(ctx, name); err != nil {
		return err
	}

	var seq int
	if err := s.db.QueryRowContext(ctx, `
		SELECT COALESCE(MAX(seq), 0) + 1 FROM history WHERE student_name = ?
	`, name).Scan(&seq); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO history (id, student_name, user_text, assistant_text, created_at, seq)
		VALUES (?, ?, ?, ?, ?, ?)
	`, uuid.NewString(), name, userText, assistantText, time.Now().UTC(), seq)
	return err
}

func (s *SQLiteStorage) SetProgress(ctx context.Context, name string, patch map[string]interface{}) error {
	if err := s.ensureStudent(ctx, name); err != nil {
		return err
	}

	var progressJSON string
	if err := s.db.QueryRowContext(ctx, `SELECT progress FROM students WHERE name = ?`, name).Scan(&progressJSON); err != nil {
		return err
	}

	progress := map[string]interface{}{}
	json.Unmarshal([]byte(progressJSON), &progress)

	// Merge: nur die übergebenen Schlüssel überschreiben
	for k, v := range patch {
		progress[k] = v
	}

	merged, err := json.Marshal(progress)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `UPDATE students SET progress = ? WHERE name = ?`, string(merged), name)
	return err
}
