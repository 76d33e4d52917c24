package storage

import (
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	_ "modernc.org/sqlite"
)

// SQLiteStore persists tickets in a local sqlite file. Every operation opens
// and closes its own connection; single-row writes stay atomic and the store
// keeps no shared state, at the cost of per-call open overhead.
type SQLiteStore struct {
	path string
	log  *zap.Logger
}

func NewSQLiteStore(path string, log *zap.Logger) *SQLiteStore {
	return &SQLiteStore{path: path, log: log}
}

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS tickets (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	channel_id  TEXT NOT NULL UNIQUE,
	user_id     TEXT NOT NULL,
	created_at  TEXT NOT NULL,
	closed_at   TEXT,
	transcript  TEXT
);
CREATE INDEX IF NOT EXISTS idx_tickets_user ON tickets(user_id);
`

func (s *SQLiteStore) open() (*sql.DB, error) {
	return sql.Open("sqlite", s.path)
}

// Init idempotently creates the tickets table and restricts the database file
// to the owning process.
func (s *SQLiteStore) Init() error {
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return &InitError{Err: err}
		}
	}

	db, err := s.open()
	if err != nil {
		return &InitError{Err: err}
	}
	defer db.Close()

	if _, err := db.Exec(sqliteSchema); err != nil {
		return &InitError{Err: err}
	}

	if err := os.Chmod(s.path, 0o600); err != nil {
		s.log.Warn("unable to restrict database file permissions", zap.Error(err))
	}

	s.log.Info("sqlite ticket store initialised", zap.String("path", s.path))
	return nil
}

func (s *SQLiteStore) Create(channelID, userID string) error {
	db, err := s.open()
	if err != nil {
		return &WriteError{Op: "create", Err: err}
	}
	defer db.Close()

	_, err = db.Exec(
		"INSERT INTO tickets (channel_id, user_id, created_at) VALUES (?, ?, ?)",
		channelID, userID, formatTime(time.Now()),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return &DuplicateChannelError{ChannelID: channelID}
		}
		return &WriteError{Op: "create", Err: err}
	}
	return nil
}

// Close marks the ticket closed. closed_at is write-once: a repeated close
// keeps the original close time, though the transcript is overwritten. No row
// matching channelID is not an error.
func (s *SQLiteStore) Close(channelID string, transcript *string) error {
	db, err := s.open()
	if err != nil {
		return &WriteError{Op: "close", Err: err}
	}
	defer db.Close()

	_, err = db.Exec(
		"UPDATE tickets SET closed_at = COALESCE(closed_at, ?), transcript = ? WHERE channel_id = ?",
		formatTime(time.Now()), transcript, channelID,
	)
	if err != nil {
		return &WriteError{Op: "close", Err: err}
	}
	return nil
}

func (s *SQLiteStore) Get(channelID string) (*TicketRecord, error) {
	db, err := s.open()
	if err != nil {
		return nil, &ReadError{Op: "get", Err: err}
	}
	defer db.Close()

	row := db.QueryRow(
		"SELECT id, channel_id, user_id, created_at, closed_at, transcript FROM tickets WHERE channel_id = ?",
		channelID,
	)
	rec, err := scanTicket(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, &ReadError{Op: "get", Err: err}
	}
	return rec, nil
}

func (s *SQLiteStore) ListByUser(userID string) ([]TicketRecord, error) {
	db, err := s.open()
	if err != nil {
		return nil, &ReadError{Op: "list", Err: err}
	}
	defer db.Close()

	rows, err := db.Query(
		"SELECT id, channel_id, user_id, created_at, closed_at, transcript FROM tickets WHERE user_id = ? ORDER BY created_at DESC, id DESC",
		userID,
	)
	if err != nil {
		return nil, &ReadError{Op: "list", Err: err}
	}
	defer rows.Close()

	var records []TicketRecord
	for rows.Next() {
		rec, err := scanTicket(rows)
		if err != nil {
			return nil, &ReadError{Op: "list", Err: err}
		}
		records = append(records, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, &ReadError{Op: "list", Err: err}
	}
	return records, nil
}

func (s *SQLiteStore) Shutdown() error { return nil }

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTicket(row rowScanner) (*TicketRecord, error) {
	var (
		rec        TicketRecord
		createdAt  string
		closedAt   sql.NullString
		transcript sql.NullString
	)
	if err := row.Scan(&rec.ID, &rec.ChannelID, &rec.UserID, &createdAt, &closedAt, &transcript); err != nil {
		return nil, err
	}

	created, err := parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	rec.CreatedAt = created

	if closedAt.Valid {
		closed, err := parseTime(closedAt.String)
		if err != nil {
			return nil, err
		}
		rec.ClosedAt = &closed
	}
	if transcript.Valid {
		t := transcript.String
		rec.Transcript = &t
	}
	return &rec, nil
}

// Timestamps are stored as RFC3339 text in UTC so records stay portable
// across drivers and readable in ad-hoc queries.
func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
