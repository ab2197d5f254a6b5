package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"cat-virtual/internal/domain/petstate"

	_ "modernc.org/sqlite"
)

// DeviceStore es el almacenamiento local del dispositivo: una tabla clave/valor
// en un archivo SQLite.
type DeviceStore struct {
	db      *sql.DB
	getStmt *sql.Stmt
	putStmt *sql.Stmt
	now     func() time.Time
}

var _ petstate.DeviceStore = (*DeviceStore)(nil)

func Open(dbPath string) (*DeviceStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create db path: %w", err)
	}

	// DSN:
	// - busy_timeout: espera ante locks
	// - journal_mode(WAL) + synchronous(NORMAL)
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)", filepath.Clean(dbPath))

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	// Un único writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxIdleTime(5 * time.Minute)

	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	get, err := db.Prepare(`SELECT value FROM kv WHERE key = ?`)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	put, err := db.Prepare(`
		INSERT INTO kv (key, value, updated_at) VALUES (?,?,?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`)
	if err != nil {
		_ = get.Close()
		_ = db.Close()
		return nil, err
	}

	return &DeviceStore{db: db, getStmt: get, putStmt: put, now: time.Now}, nil
}

func initSchema(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS kv (
			key        TEXT PRIMARY KEY,
			value      BLOB NOT NULL,
			updated_at INTEGER NOT NULL
		);
	`)
	return err
}

func (s *DeviceStore) Close() error {
	if s.getStmt != nil {
		_ = s.getStmt.Close()
	}
	if s.putStmt != nil {
		_ = s.putStmt.Close()
	}
	return s.db.Close()
}

func (s *DeviceStore) Get(ctx context.Context, key string) ([]byte, error) {
	if s == nil || s.db == nil {
		return nil, errors.New("store not initialized")
	}

	var value []byte
	if err := s.getStmt.QueryRowContext(ctx, key).Scan(&value); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, petstate.ErrNotFound
		}
		return nil, err
	}
	return value, nil
}

// Put sobrescribe el valor (sin merge).
func (s *DeviceStore) Put(ctx context.Context, key string, value []byte) error {
	if s == nil || s.db == nil {
		return errors.New("store not initialized")
	}
	_, err := s.putStmt.ExecContext(ctx, key, value, s.now().Unix())
	return err
}
