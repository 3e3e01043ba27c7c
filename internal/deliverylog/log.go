// Package deliverylog records non-sensitive metadata about past sends in a
// local SQLite database: delivery IDs, counts and timestamps only. Message
// content and credentials are never written here.
package deliverylog

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS deliveries (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    delivery_id TEXT NOT NULL,
    kind TEXT NOT NULL,
    recipient_count INTEGER NOT NULL,
    attachment_count INTEGER NOT NULL DEFAULT 0,
    scheduled INTEGER NOT NULL DEFAULT 0,
    schedule_at TEXT,
    created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_deliveries_delivery_id ON deliveries(delivery_id);
CREATE INDEX IF NOT EXISTS idx_deliveries_created_at ON deliveries(created_at);
`

// Entry is one recorded send.
type Entry struct {
	DeliveryID      string    `json:"delivery_id"`
	Kind            string    `json:"kind"`
	RecipientCount  int       `json:"recipient_count"`
	AttachmentCount int       `json:"attachment_count"`
	Scheduled       bool      `json:"scheduled"`
	ScheduleAt      string    `json:"schedule_at,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

// Log is the SQLite-backed delivery log
type Log struct {
	db     *sql.DB
	logger *logrus.Logger
}

// Open opens (creating if needed) the delivery log at the given path.
func Open(dbPath string, logger *logrus.Logger) (*Log, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create delivery log directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	logger.WithField("path", dbPath).Info("Delivery log initialized")
	return &Log{db: db, logger: logger}, nil
}

// Record appends one entry to the log.
func (l *Log) Record(e *Entry) error {
	_, err := l.db.Exec(
		`INSERT INTO deliveries (delivery_id, kind, recipient_count, attachment_count, scheduled, schedule_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		e.DeliveryID, e.Kind, e.RecipientCount, e.AttachmentCount, boolToInt(e.Scheduled), e.ScheduleAt,
	)
	if err != nil {
		return fmt.Errorf("failed to record delivery: %w", err)
	}
	return nil
}

// Recent returns up to limit entries, newest first.
func (l *Log) Recent(limit int) ([]Entry, error) {
	if limit < 1 {
		limit = 20
	}
	rows, err := l.db.Query(
		`SELECT delivery_id, kind, recipient_count, attachment_count, scheduled, schedule_at, created_at
		 FROM deliveries ORDER BY id DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query deliveries: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var scheduled int
		var scheduleAt sql.NullString
		if err := rows.Scan(&e.DeliveryID, &e.Kind, &e.RecipientCount, &e.AttachmentCount, &scheduled, &scheduleAt, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan delivery: %w", err)
		}
		e.Scheduled = scheduled != 0
		e.ScheduleAt = scheduleAt.String
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Close closes the database connection
func (l *Log) Close() error {
	if l.db != nil {
		return l.db.Close()
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
