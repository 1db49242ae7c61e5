package sink

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	coresink "github.com/kilianp07/batteryform/core/sink"
)

// SQLiteConfig configures the SQLite sink.
type SQLiteConfig struct {
	Path string `json:"path"`
}

// SQLiteSink stores submissions in a SQLite database.
type SQLiteSink struct {
	db *sql.DB
}

// NewSQLiteSink opens or creates the database and ensures the schema.
func NewSQLiteSink(cfg SQLiteConfig) (*SQLiteSink, error) {
	if cfg.Path == "" {
		cfg.Path = "submissions.db"
	}
	db, err := sql.Open("sqlite", cfg.Path)
	if err != nil {
		return nil, err
	}
	schema := `CREATE TABLE IF NOT EXISTS submissions (
        id TEXT PRIMARY KEY,
        session_id TEXT NOT NULL,
        submitted_at INTEGER NOT NULL,
        virtual_battery INTEGER NOT NULL,
        physical_battery INTEGER NOT NULL,
        solar_panels TEXT NOT NULL
    );`
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite schema: %w", err)
	}
	return &SQLiteSink{db: db}, nil
}

// Emit inserts the submission.
func (s *SQLiteSink) Emit(ctx context.Context, sub coresink.Submission) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO submissions
        (id, session_id, submitted_at, virtual_battery, physical_battery, solar_panels)
        VALUES (?, ?, ?, ?, ?, ?)`,
		sub.ID, sub.SessionID, sub.Time.UnixNano(), sub.VirtualBattery, sub.PhysicalBattery, sub.SolarPanels)
	return err
}

// List returns the submissions of a session, oldest first. An empty session
// id lists every submission.
func (s *SQLiteSink) List(ctx context.Context, sessionID string) ([]coresink.Submission, error) {
	q := `SELECT id, session_id, submitted_at, virtual_battery, physical_battery, solar_panels
        FROM submissions`
	var args []any
	if sessionID != "" {
		q += ` WHERE session_id = ?`
		args = append(args, sessionID)
	}
	q += ` ORDER BY submitted_at, id`
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var res []coresink.Submission
	for rows.Next() {
		var (
			sub coresink.Submission
			ts  int64
		)
		if err := rows.Scan(&sub.ID, &sub.SessionID, &ts, &sub.VirtualBattery, &sub.PhysicalBattery, &sub.SolarPanels); err != nil {
			return nil, err
		}
		sub.Time = time.Unix(0, ts).UTC()
		res = append(res, sub)
	}
	return res, rows.Err()
}

// Close closes the database.
func (s *SQLiteSink) Close() error { return s.db.Close() }
