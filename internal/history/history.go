package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const schemaVersion = "1"

// Source says where a displayed command came from.
type Source string

const (
	SourceCache    Source = "cache"
	SourceProvider Source = "provider"
)

// Entry represents a single resolved prompt
type Entry struct {
	ID        int64
	Timestamp time.Time
	Prompt    string
	Command   string
	Source    Source
	Provider  string
	Executed  bool
}

// Store is an append-only log of resolutions backed by SQLite.
type Store struct {
	db     *sql.DB
	dbPath string
	now    func() time.Time
}

// Open opens (creating if needed) the history database at dbPath.
func Open(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	s := &Store{db: db, dbPath: dbPath, now: time.Now}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return s, nil
}

func (s *Store) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS metadata (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS resolutions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		timestamp INTEGER NOT NULL,
		prompt TEXT NOT NULL,
		command TEXT NOT NULL,
		source TEXT NOT NULL,
		provider TEXT NOT NULL,
		executed INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_timestamp ON resolutions(timestamp);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return err
	}

	_, err := s.db.Exec(`INSERT OR IGNORE INTO metadata (key, value) VALUES ('version', ?)`, schemaVersion)
	return err
}

// Record appends e. A zero Timestamp is replaced with the current time.
func (s *Store) Record(ctx context.Context, e Entry) error {
	if e.Timestamp.IsZero() {
		e.Timestamp = s.now()
	}

	executed := 0
	if e.Executed {
		executed = 1
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO resolutions (timestamp, prompt, command, source, provider, executed)
		VALUES (?, ?, ?, ?, ?, ?)
	`, e.Timestamp.UnixNano(), e.Prompt, e.Command, string(e.Source), e.Provider, executed)
	if err != nil {
		return fmt.Errorf("failed to record history: %w", err)
	}
	return nil
}

// Recent returns up to limit entries, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, timestamp, prompt, command, source, provider, executed
		FROM resolutions
		ORDER BY timestamp DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e        Entry
			ts       int64
			source   string
			executed int
		)
		if err := rows.Scan(&e.ID, &ts, &e.Prompt, &e.Command, &source, &e.Provider, &executed); err != nil {
			return nil, fmt.Errorf("failed to read history row: %w", err)
		}
		e.Timestamp = time.Unix(0, ts)
		e.Source = Source(source)
		e.Executed = executed != 0
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.dbPath
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}
