package storage

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteStorage keeps the application state in a single local database file,
// one row per logical name.
type SQLiteStorage struct {
	conn *sql.DB
}

// NewSQLite opens (or creates) the database file at path.
func NewSQLite(path string) (*SQLiteStorage, error) {
	conn, err := sql.Open("sqlite3", path+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %v", err)
	}

	s := &SQLiteStorage{conn: conn}
	if err := s.init(); err != nil {
		conn.Close()
		return nil, err
	}

	return s, nil
}

func (s *SQLiteStorage) init() error {
	_, err := s.conn.Exec(`CREATE TABLE IF NOT EXISTS app_state (
		name TEXT PRIMARY KEY,
		value BLOB NOT NULL
	)`)
	if err != nil {
		return fmt.Errorf("failed to create app_state table: %v", err)
	}
	return nil
}

func (s *SQLiteStorage) Get(name string) ([]byte, error) {
	var value []byte
	err := s.conn.QueryRow(`SELECT value FROM app_state WHERE name = ?`, name).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %q: %v", name, err)
	}
	return value, nil
}

func (s *SQLiteStorage) Set(name string, value []byte) error {
	_, err := s.conn.Exec(
		`INSERT INTO app_state (name, value) VALUES (?, ?)
		 ON CONFLICT(name) DO UPDATE SET value = excluded.value`,
		name, value,
	)
	if err != nil {
		return fmt.Errorf("failed to write %q: %v", name, err)
	}
	return nil
}

func (s *SQLiteStorage) Close() error {
	return s.conn.Close()
}
