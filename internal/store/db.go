// Package store provides SQLite-backed persistence for decoded records,
// so past runs can be queried and summarized offline.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/ovasik/scsidecode/internal/record"
	_ "github.com/mattn/go-sqlite3"
)

// DB wraps an SQLite connection for record storage.
type DB struct {
	db *sql.DB
}

// Open opens or creates an SQLite database at the given path.
func Open(path string) (*DB, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating db directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Single writer connection to avoid SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if err := migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating database: %w", err)
	}

	return &DB{db: db}, nil
}

func migrate(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS records (
			run_id        TEXT NOT NULL,
			seq           INTEGER NOT NULL,
			timestamp     TEXT NOT NULL,
			log_type      TEXT NOT NULL,
			device        TEXT NOT NULL,
			host_status   TEXT NOT NULL,
			device_status TEXT NOT NULL,
			sense_key     TEXT NOT NULL,
			record_json   TEXT NOT NULL,
			PRIMARY KEY (run_id, seq)
		);
		CREATE INDEX IF NOT EXISTS idx_records_timestamp ON records(timestamp);
		CREATE INDEX IF NOT EXISTS idx_records_device ON records(device);
	`)
	return err
}

// Close closes the database.
func (d *DB) Close() error {
	return d.db.Close()
}

// NewRunID generates the identifier under which one decode run's records
// are stored.
func NewRunID() string {
	return uuid.NewString()
}

// Insert stores one decoded record under the given run id.
func (d *DB) Insert(runID string, rec record.Record) error {
	recJSON, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encoding record: %w", err)
	}

	_, err = d.db.Exec(`
		INSERT INTO records (run_id, seq, timestamp, log_type, device, host_status, device_status, sense_key, record_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		runID,
		rec.ID,
		rec.Timestamp.UTC().Format(time.RFC3339Nano),
		string(rec.Type),
		rec.TargetDevice.Code,
		rec.HostStatus.Code,
		rec.DeviceStatus.Code,
		rec.SenseKey.Code,
		string(recJSON),
	)
	if err != nil {
		return fmt.Errorf("inserting record: %w", err)
	}
	return nil
}

// QueryFilter controls which records are returned by Query.
type QueryFilter struct {
	Since  time.Time
	Until  time.Time
	Device string
	RunID  string
	Limit  int
}

// StoredRecord is a decoded record together with the run it came from.
type StoredRecord struct {
	RunID string
	record.Record
}

// Query returns records matching the filter, ordered by timestamp
// descending.
func (d *DB) Query(f QueryFilter) ([]StoredRecord, error) {
	query := `SELECT run_id, record_json FROM records WHERE 1=1`
	var args []interface{}

	if !f.Since.IsZero() {
		query += " AND timestamp >= ?"
		args = append(args, f.Since.UTC().Format(time.RFC3339Nano))
	}
	if !f.Until.IsZero() {
		query += " AND timestamp <= ?"
		args = append(args, f.Until.UTC().Format(time.RFC3339Nano))
	}
	if f.Device != "" {
		query += " AND device = ?"
		args = append(args, f.Device)
	}
	if f.RunID != "" {
		query += " AND run_id = ?"
		args = append(args, f.RunID)
	}

	query += " ORDER BY timestamp DESC, seq DESC"

	if f.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, f.Limit)
	}

	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying records: %w", err)
	}
	defer rows.Close()

	var recs []StoredRecord
	for rows.Next() {
		var runID, recJSON string
		if err := rows.Scan(&runID, &recJSON); err != nil {
			return nil, fmt.Errorf("scanning record: %w", err)
		}
		var rec record.Record
		if err := json.Unmarshal([]byte(recJSON), &rec); err != nil {
			return nil, fmt.Errorf("decoding stored record: %w", err)
		}
		recs = append(recs, StoredRecord{RunID: runID, Record: rec})
	}
	return recs, rows.Err()
}

// Count returns the total number of stored records.
func (d *DB) Count() (int, error) {
	var n int
	err := d.db.QueryRow(`SELECT COUNT(*) FROM records`).Scan(&n)
	return n, err
}

// Purge deletes records older than the retention duration and returns
// how many were removed.
func (d *DB) Purge(retention time.Duration) (int64, error) {
	cutoff := time.Now().Add(-retention).UTC().Format(time.RFC3339Nano)
	res, err := d.db.Exec(`DELETE FROM records WHERE timestamp < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("purging records: %w", err)
	}
	return res.RowsAffected()
}
