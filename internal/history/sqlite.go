package history

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"

	"example.com/candlestick-detector/internal/pattern"
)

// SQLiteRecorder persists detection events to a SQLite database.
type SQLiteRecorder struct {
	db     *sql.DB
	mu     sync.Mutex
	logger zerolog.Logger
}

// NewSQLiteRecorder opens (or creates) the database and runs migrations.
func NewSQLiteRecorder(dbPath string, logger zerolog.Logger) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode so dashboard reads do not block detection writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{
		db:     db,
		logger: logger.With().Str("component", "history").Logger(),
	}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	r.logger.Info().Str("path", dbPath).Msg("sqlite recorder opened")
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS detections (
			id          TEXT PRIMARY KEY,
			source      TEXT NOT NULL,
			pattern     TEXT NOT NULL,
			direction   TEXT NOT NULL,
			found       INTEGER NOT NULL,
			matches     INTEGER NOT NULL,
			row_count   INTEGER NOT NULL,
			duration_ms INTEGER NOT NULL DEFAULT 0,
			detected_at INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_detections_ts ON detections(detected_at)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

// Record inserts one detection event.
func (r *SQLiteRecorder) Record(evt Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	found := 0
	if evt.Found {
		found = 1
	}
	_, err := r.db.Exec(`INSERT INTO detections
		(id, source, pattern, direction, found, matches, row_count, duration_ms, detected_at)
		VALUES (?,?,?,?,?,?,?,?,?)`,
		evt.ID, evt.Source, string(evt.Pattern), string(evt.Direction),
		found, evt.Matches, evt.Rows, evt.DurationMS, evt.DetectedAt.Unix(),
	)
	return err
}

// Recent returns the newest events, most recent first, optionally
// narrowed to one pattern name.
func (r *SQLiteRecorder) Recent(limit int, patternFilter string) ([]Event, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `SELECT id, source, pattern, direction, found, matches, row_count, duration_ms, detected_at
		FROM detections`
	args := []any{}
	if patternFilter != "" {
		query += ` WHERE pattern = ?`
		args = append(args, patternFilter)
	}
	query += ` ORDER BY detected_at DESC, id DESC LIMIT ?`
	args = append(args, limit)

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var evt Event
		var patternName, direction string
		var found int
		var ts int64
		if err := rows.Scan(&evt.ID, &evt.Source, &patternName, &direction,
			&found, &evt.Matches, &evt.Rows, &evt.DurationMS, &ts); err != nil {
			return nil, err
		}
		evt.Pattern = pattern.Name(patternName)
		evt.Direction = pattern.Direction(direction)
		evt.Found = found != 0
		evt.DetectedAt = time.Unix(ts, 0).UTC()
		events = append(events, evt)
	}
	return events, rows.Err()
}

// Count returns the total number of recorded events.
func (r *SQLiteRecorder) Count() (int, error) {
	var count int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM detections`).Scan(&count)
	return count, err
}

func (r *SQLiteRecorder) Close() error {
	r.logger.Info().Msg("closing sqlite recorder")
	return r.db.Close()
}
