package report

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteSink appends each finished Outcome as an audit-log row.
// Grounded in the teacher's internal/persistence/sqlite.go NewStore
// (WAL-mode open, migrate-on-open, single-writer connection pool),
// repurposed from live graph/pool state to a strictly append-only
// record of completed analyses — this does not reintroduce the
// persisted-analysis-state non-goal spec.md rules out, since nothing
// here is ever read back into a running analysis.
type SQLiteSink struct {
	db *sql.DB
}

// NewSQLiteSink opens (creating if needed) a SQLite database at dbPath
// and ensures the outcomes table exists.
func NewSQLiteSink(dbPath string) (*SQLiteSink, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	sink := &SQLiteSink{db: db}
	if err := sink.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return sink, nil
}

func (s *SQLiteSink) migrate() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS outcomes (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		status TEXT NOT NULL,
		message TEXT NOT NULL,
		profit TEXT NOT NULL,
		legs_json TEXT NOT NULL,
		occurred_at DATETIME NOT NULL
	)`)
	if err != nil {
		return fmt.Errorf("executing migration: %w", err)
	}
	return nil
}

type legRecord struct {
	Pair     string `json:"pair"`
	Position string `json:"position"`
	Size     string `json:"size,omitempty"`
	Price    string `json:"price"`
}

// Report appends one audit-log row describing the outcome.
func (s *SQLiteSink) Report(o Outcome) error {
	legs := make([]legRecord, len(o.Legs))
	for i, leg := range o.Legs {
		rec := legRecord{
			Pair:     leg.Pair.String(),
			Position: leg.Position.String(),
			Price:    leg.Price.String(),
		}
		if i < len(o.Sizes) {
			rec.Size = o.Sizes[i].String()
		}
		legs[i] = rec
	}

	legsJSON, err := json.Marshal(legs)
	if err != nil {
		return fmt.Errorf("marshaling legs: %w", err)
	}

	_, err = s.db.Exec(
		`INSERT INTO outcomes (status, message, profit, legs_json, occurred_at) VALUES (?, ?, ?, ?, ?)`,
		int(o.Status), o.Status.Message(), o.Profit.String(), string(legsJSON), o.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("inserting outcome: %w", err)
	}
	return nil
}

// Close closes the underlying database connection.
func (s *SQLiteSink) Close() error {
	return s.db.Close()
}

var _ Sink = (*SQLiteSink)(nil)
