package audit

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/jwaldner/stockai/internal/logger"

	_ "modernc.org/sqlite"
)

// SQLiteRecorder persists attempts to a local SQLite file
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the database and runs migrations
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create audit dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	logger.Info.Printf("🗄️  AUDIT: sqlite recorder opened: %s", dbPath)
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS prediction_attempts (
			id              INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp       INTEGER NOT NULL,
			session_id      TEXT,
			source          TEXT,
			symbol          TEXT NOT NULL,
			days            INTEGER,
			sample_interval TEXT,
			outcome         TEXT NOT NULL,
			points          INTEGER,
			error           TEXT,
			duration_ms     INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_attempts_ts ON prediction_attempts(timestamp)`,
		`CREATE INDEX IF NOT EXISTS idx_attempts_symbol ON prediction_attempts(symbol)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordAttempt(a *PredictionAttempt) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO prediction_attempts
		(timestamp, session_id, source, symbol, days, sample_interval, outcome, points, error, duration_ms)
		VALUES (?,?,?,?,?,?,?,?,?,?)`,
		a.Time.Unix(), a.SessionID, a.Source, a.Symbol, a.Days, a.Interval,
		a.Outcome, a.Points, a.Error, a.DurationMs,
	)
	return err
}

func (r *SQLiteRecorder) Close() error {
	logger.Info.Println("🗄️  AUDIT: closing sqlite recorder")
	return r.db.Close()
}
