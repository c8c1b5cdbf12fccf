package server

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/vinke29/taskdeck/internal/model"
)

// ErrTaskNotFound reports an update or delete against a document that no
// longer exists.
var ErrTaskNotFound = errors.New("task not found")

// Store persists task documents per user and collection in SQLite.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// Document is one stored task plus its remote identity.
type Document struct {
	RemoteID string     `json:"remote_id"`
	Task     model.Task `json:"task"`
}

// OpenStore initializes the server database and runs the required
// migrations.
func OpenStore(dbPath string, logger *slog.Logger) (*Store, error) {
	if dbPath == "" {
		return nil, fmt.Errorf("empty database path")
	}
	if logger == nil {
		logger = slog.Default()
	}

	if err := ensureDir(dbPath); err != nil {
		return nil, err
	}

	conn, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?_busy_timeout=5000", dbPath))
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	conn.SetMaxOpenConns(1)
	conn.SetConnMaxLifetime(0)

	s := &Store{db: conn, logger: logger}
	if err := s.migrate(); err != nil {
		_ = conn.Close()
		return nil, err
	}

	return s, nil
}

// Close releases the database resources.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func ensureDir(dbPath string) error {
	dir := filepath.Dir(dbPath)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS documents (
            remote_id TEXT PRIMARY KEY,
            user_id TEXT NOT NULL,
            collection TEXT NOT NULL,
            completed_at TEXT,
            data BLOB NOT NULL,
            created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
            updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
        );`,
		`CREATE INDEX IF NOT EXISTS idx_documents_user_col ON documents(user_id, collection);`,
	}

	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}

// ListTasks returns one user's documents for a collection. Active tasks
// come back in insertion order; completed tasks newest first by
// completion date.
func (s *Store) ListTasks(ctx context.Context, userID, collection string) ([]Document, error) {
	order := "rowid ASC"
	if collection == "completed" {
		order = "completed_at DESC, rowid DESC"
	}

	rows, err := s.db.QueryContext(ctx, `SELECT remote_id, data FROM documents
        WHERE user_id = ? AND collection = ? ORDER BY `+order, userID, collection)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		var doc Document
		var data []byte
		if err := rows.Scan(&doc.RemoteID, &data); err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		if err := json.Unmarshal(data, &doc.Task); err != nil {
			// A malformed document is skipped, not fatal: one bad write
			// must not take the whole collection offline.
			s.logger.Warn("skipping malformed document", slog.String("remote_id", doc.RemoteID), slog.String("error", err.Error()))
			continue
		}
		doc.Task.RemoteID = doc.RemoteID
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

// CreateTask stores a new document under a freshly minted remote id.
func (s *Store) CreateTask(ctx context.Context, userID, collection, remoteID string, t model.Task) error {
	t.RemoteID = remoteID
	data, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("encode task: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `INSERT INTO documents(remote_id, user_id, collection, completed_at, data)
        VALUES(?, ?, ?, ?, ?)`, remoteID, userID, collection, completedAt(t), data)
	if err != nil {
		return fmt.Errorf("insert task: %w", err)
	}
	return nil
}

// UpdateTask overwrites an existing document.
func (s *Store) UpdateTask(ctx context.Context, userID, remoteID string, t model.Task) error {
	t.RemoteID = remoteID
	data, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("encode task: %w", err)
	}

	res, err := s.db.ExecContext(ctx, `UPDATE documents
        SET data = ?, completed_at = ?, updated_at = CURRENT_TIMESTAMP
        WHERE remote_id = ? AND user_id = ?`, data, completedAt(t), remoteID, userID)
	if err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrTaskNotFound
	}
	return nil
}

// DeleteTask removes a document.
func (s *Store) DeleteTask(ctx context.Context, userID, remoteID string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE remote_id = ? AND user_id = ?`, remoteID, userID)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrTaskNotFound
	}
	return nil
}

// MoveTask transfers a document to another collection in one
// transaction, keeping its remote id stable.
func (s *Store) MoveTask(ctx context.Context, userID, remoteID, toCollection string, t model.Task) error {
	t.RemoteID = remoteID
	data, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("encode task: %w", err)
	}

	res, err := s.db.ExecContext(ctx, `UPDATE documents
        SET collection = ?, data = ?, completed_at = ?, updated_at = CURRENT_TIMESTAMP
        WHERE remote_id = ? AND user_id = ?`, toCollection, data, completedAt(t), remoteID, userID)
	if err != nil {
		return fmt.Errorf("move task: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrTaskNotFound
	}
	return nil
}

func completedAt(t model.Task) any {
	if t.CompletedDate == nil {
		return nil
	}
	return t.CompletedDate.UTC().Format(time.RFC3339Nano)
}
