// Package cache is the local durable replica: per-key task snapshots in
// a SQLite database under the data directory. Writes are synchronous and
// must always succeed while the disk does; the remote store is the only
// replica allowed to be flaky.
package cache

import (
	"database/sql"
	"embed"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Cache wraps the snapshot database.
type Cache struct {
	db *sql.DB
}

// DefaultDataDir returns the default data directory path.
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".taskdeck"
	}
	return filepath.Join(home, ".local", "share", "taskdeck")
}

// DefaultPath returns the default cache database file path.
func DefaultPath() string {
	return filepath.Join(DefaultDataDir(), "cache.db")
}

// Open opens the cache database and runs migrations.
func Open(dbPath string) (*Cache, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	// WAL mode keeps the synchronous save path cheap.
	dsn := fmt.Sprintf("file:%s?_journal_mode=WAL&_busy_timeout=5000", dbPath)
	sqlDB, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache database: %w", err)
	}

	// SQLite only supports one writer.
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)

	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to connect to cache database: %w", err)
	}

	c := &Cache{db: sqlDB}
	if err := c.migrate(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return c, nil
}

// migrate runs database migrations using embedded SQL files.
func (c *Cache) migrate() error {
	// Silence goose logging (it corrupts TUI output).
	goose.SetLogger(log.New(io.Discard, "", 0))
	goose.SetBaseFS(migrations)

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set dialect: %w", err)
	}

	if err := goose.Up(c.db, "migrations"); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

// Load returns the snapshot stored under key, or ok=false when the key
// has never been saved.
func (c *Cache) Load(key string) ([]byte, bool, error) {
	var data []byte
	err := c.db.QueryRow(`SELECT data FROM snapshots WHERE key = ?`, key).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to load snapshot %q: %w", key, err)
	}
	return data, true, nil
}

// Save stores a snapshot under key, replacing any previous value.
func (c *Cache) Save(key string, data []byte) error {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	_, err := c.db.Exec(`
		INSERT INTO snapshots (key, data, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at
	`, key, data, now)
	if err != nil {
		return fmt.Errorf("failed to save snapshot %q: %w", key, err)
	}
	return nil
}

// Delete removes a stored snapshot.
func (c *Cache) Delete(key string) error {
	_, err := c.db.Exec(`DELETE FROM snapshots WHERE key = ?`, key)
	if err != nil {
		return fmt.Errorf("failed to delete snapshot %q: %w", key, err)
	}
	return nil
}

// Close closes the database connection.
func (c *Cache) Close() error {
	return c.db.Close()
}
