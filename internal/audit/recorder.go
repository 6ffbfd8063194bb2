// Package audit keeps an operational record of prediction attempts. The
// record is write-only from the dashboard's point of view: nothing in it is
// read back into a session.
package audit

import (
	"fmt"
	"strings"
	"time"
)

// Outcome values stored with every attempt
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// PredictionAttempt is one call to the prediction service
type PredictionAttempt struct {
	Time       time.Time
	SessionID  string
	Source     string // "form" or "api"
	Symbol     string
	Days       int
	Interval   string
	Outcome    string
	Points     int
	Error      string
	DurationMs int64
}

// Recorder persists prediction attempts
type Recorder interface {
	RecordAttempt(a *PredictionAttempt) error
	Close() error
}

// NewRecorder opens the recorder selected by driver: "none" (or empty),
// "sqlite" with a file path DSN, or "postgres" with a connection string.
func NewRecorder(driver, dsn string) (Recorder, error) {
	switch strings.ToLower(driver) {
	case "", "none":
		return NewNoopRecorder(), nil
	case "sqlite":
		if dsn == "" {
			dsn = "data/stockai_audit.db"
		}
		return NewSQLiteRecorder(dsn)
	case "postgres":
		if dsn == "" {
			return nil, fmt.Errorf("audit driver postgres requires a dsn")
		}
		return NewPostgresRecorder(dsn)
	default:
		return nil, fmt.Errorf("unknown audit driver %q", driver)
	}
}

// NoopRecorder is used when auditing is not configured
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordAttempt(_ *PredictionAttempt) error { return nil }
func (n *NoopRecorder) Close() error                             { return nil }
