package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/joeycumines/clica/internal/action"

	_ "modernc.org/sqlite"
)

// SchemaVersion is the latest action log schema version.
const SchemaVersion = 1

// SQLiteLog is an ActionLog stored in a single SQLite database file. A lock
// file next to the database keeps other clica processes out.
type SQLiteLog struct {
	db       *sql.DB
	lockFile *os.File
	mu       sync.Mutex
	closed   bool
}

// OpenSQLiteLog opens (creating if needed) the database at path and
// migrates it to SchemaVersion.
func OpenSQLiteLog(path string) (*SQLiteLog, error) {
	if path == "" {
		return nil, fmt.Errorf("open action log: path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("open action log: create directory: %w", err)
	}
	lockFile, err := lockFor(path+".lock", "action log")
	if err != nil {
		return nil, fmt.Errorf("open action log: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		_ = releaseFileLock(lockFile)
		return nil, fmt.Errorf("open action log: %w", err)
	}
	// One connection serialises writers within the process.
	db.SetMaxOpenConns(1)
	if err := migrate(db); err != nil {
		_ = db.Close()
		_ = releaseFileLock(lockFile)
		return nil, err
	}
	return &SQLiteLog{db: db, lockFile: lockFile}, nil
}

func migrate(db *sql.DB) error {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS schema_migrations (version INTEGER PRIMARY KEY);`)
	if err != nil {
		return fmt.Errorf("migrate: create schema_migrations: %w", err)
	}

	var current int
	err = db.QueryRow(`SELECT COALESCE(MAX(version), 0) FROM schema_migrations;`).Scan(&current)
	if err != nil {
		return fmt.Errorf("migrate: read current version: %w", err)
	}
	if current >= SchemaVersion {
		return nil
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("migrate: begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	_, err = tx.Exec(`
		CREATE TABLE IF NOT EXISTS actions (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL,
			kind TEXT NOT NULL,
			source TEXT NOT NULL,
			action_id INTEGER NOT NULL,
			payload TEXT NOT NULL,
			at TEXT NOT NULL
		);
	`)
	if err != nil {
		return fmt.Errorf("migrate: create actions table: %w", err)
	}

	_, err = tx.Exec(`INSERT INTO schema_migrations(version) VALUES (?);`, SchemaVersion)
	if err != nil {
		return fmt.Errorf("migrate: record schema version: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("migrate: commit transaction: %w", err)
	}
	return nil
}

// Append implements ActionLog.
func (l *SQLiteLog) Append(ctx context.Context, e action.Entry) (action.Entry, error) {
	if err := validateEntry(e); err != nil {
		return action.Entry{}, fmt.Errorf("append action: %w", err)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return action.Entry{}, ErrClosed
	}
	if e.Time.IsZero() {
		e.Time = time.Now().UTC()
	}
	res, err := l.db.ExecContext(ctx,
		`INSERT INTO actions (run_id, kind, source, action_id, payload, at) VALUES (?, ?, ?, ?, ?, ?)`,
		e.RunID, string(e.Kind), string(e.Source), int64(e.ActionID), e.Payload, e.Time.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return action.Entry{}, fmt.Errorf("append action: insert: %w", err)
	}
	e.Seq, err = res.LastInsertId()
	if err != nil {
		return action.Entry{}, fmt.Errorf("append action: last insert id: %w", err)
	}
	return e, nil
}

// EntriesAfter implements ActionLog.
func (l *SQLiteLog) EntriesAfter(ctx context.Context, seq int64) ([]action.Entry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return nil, ErrClosed
	}
	rows, err := l.db.QueryContext(ctx,
		`SELECT seq, run_id, kind, source, action_id, payload, at FROM actions WHERE seq > ? ORDER BY seq ASC`, seq)
	if err != nil {
		return nil, fmt.Errorf("entries after %d: query: %w", seq, err)
	}
	defer rows.Close()

	var entries []action.Entry
	for rows.Next() {
		var (
			e        action.Entry
			kind     string
			source   string
			actionID int64
			at       string
		)
		if err := rows.Scan(&e.Seq, &e.RunID, &kind, &source, &actionID, &e.Payload, &at); err != nil {
			return nil, fmt.Errorf("entries after %d: scan: %w", seq, err)
		}
		e.Kind = action.Kind(kind)
		e.Source = action.Source(source)
		e.ActionID = action.ID(actionID)
		if e.Time, err = time.Parse(time.RFC3339Nano, at); err != nil {
			return nil, fmt.Errorf("entries after %d: parse time of %d: %w", seq, e.Seq, err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("entries after %d: rows: %w", seq, err)
	}
	return entries, nil
}

// LastSequence implements ActionLog. It reads the AUTOINCREMENT counter so
// the result is never smaller than an id that was ever assigned.
func (l *SQLiteLog) LastSequence(ctx context.Context) (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return 0, ErrClosed
	}
	var seq int64
	err := l.db.QueryRowContext(ctx, `SELECT COALESCE((SELECT seq FROM sqlite_sequence WHERE name = 'actions'), 0)`).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("last sequence: %w", err)
	}
	return seq, nil
}

// Close implements ActionLog.
func (l *SQLiteLog) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return nil
	}
	l.closed = true
	err := l.db.Close()
	if lerr := releaseFileLock(l.lockFile); lerr != nil && err == nil {
		err = lerr
	}
	return err
}

var _ ActionLog = (*SQLiteLog)(nil)
