package audit

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/jwaldner/stockai/internal/logger"
)

// PostgresRecorder persists attempts to a shared Postgres database
type PostgresRecorder struct {
	db *sqlx.DB
}

// NewPostgresRecorder connects and creates the table if needed
func NewPostgresRecorder(connStr string) (*PostgresRecorder, error) {
	db, err := sqlx.Connect("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	const schema = `
		CREATE TABLE IF NOT EXISTS prediction_attempts (
			id              BIGSERIAL PRIMARY KEY,
			recorded_at     TIMESTAMPTZ NOT NULL,
			session_id      TEXT,
			source          TEXT,
			symbol          TEXT NOT NULL,
			days            INTEGER,
			sample_interval TEXT,
			outcome         TEXT NOT NULL,
			points          INTEGER,
			error           TEXT,
			duration_ms     BIGINT
		)`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create prediction_attempts: %w", err)
	}

	logger.Info.Printf("🗄️  AUDIT: postgres recorder connected")
	return &PostgresRecorder{db: db}, nil
}

func (r *PostgresRecorder) RecordAttempt(a *PredictionAttempt) error {
	const query = `
		INSERT INTO prediction_attempts (
			recorded_at, session_id, source, symbol, days, sample_interval,
			outcome, points, error, duration_ms
		) VALUES (
			:recorded_at, :session_id, :source, :symbol, :days, :sample_interval,
			:outcome, :points, :error, :duration_ms
		)`

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := r.db.NamedExecContext(ctx, query, attemptRow{
		RecordedAt:     a.Time,
		SessionID:      a.SessionID,
		Source:         a.Source,
		Symbol:         a.Symbol,
		Days:           a.Days,
		SampleInterval: a.Interval,
		Outcome:        a.Outcome,
		Points:         a.Points,
		Error:          a.Error,
		DurationMs:     a.DurationMs,
	})
	return err
}

func (r *PostgresRecorder) Close() error {
	return r.db.Close()
}

type attemptRow struct {
	RecordedAt     time.Time `db:"recorded_at"`
	SessionID      string    `db:"session_id"`
	Source         string    `db:"source"`
	Symbol         string    `db:"symbol"`
	Days           int       `db:"days"`
	SampleInterval string    `db:"sample_interval"`
	Outcome        string    `db:"outcome"`
	Points         int       `db:"points"`
	Error          string    `db:"error"`
	DurationMs     int64     `db:"duration_ms"`
}
