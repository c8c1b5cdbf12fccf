// Package app wires the taskdeck client together: single-instance lock,
// local cache, remote client, sync session, notifier, and file logging.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofrs/flock"

	"github.com/vinke29/taskdeck/internal/cache"
	"github.com/vinke29/taskdeck/internal/model"
	"github.com/vinke29/taskdeck/internal/notify"
	"github.com/vinke29/taskdeck/internal/remote"
	"github.com/vinke29/taskdeck/internal/session"
)

// App holds the application state and dependencies
type App struct {
	Session  *session.Session
	Notifier *notify.Notifier
	Logger   *slog.Logger
	DataDir  string

	cache    *cache.Cache
	lockFile *flock.Flock
	logFile  *os.File

	syncWarn sync.Once

	listenerMu   sync.Mutex
	syncListener func(error)
}

// Config holds application configuration
type Config struct {
	DataDir   string
	CachePath string
	RemoteURL string
}

// DefaultConfig returns the default application configuration
func DefaultConfig() *Config {
	dataDir := cache.DefaultDataDir()
	return &Config{
		DataDir:   dataDir,
		CachePath: filepath.Join(dataDir, "cache.db"),
		RemoteURL: "http://localhost:8787",
	}
}

// New creates a new application instance
func New(cfg *Config) (*App, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	// Ensure data directory exists
	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	app := &App{
		DataDir:  cfg.DataDir,
		Notifier: notify.NewNotifier(),
	}

	// Log to a file: the TUI owns the terminal.
	if err := app.openLogger(); err != nil {
		return nil, err
	}

	// Acquire lock to ensure single instance
	if err := app.acquireLock(); err != nil {
		app.closeLogger()
		return nil, err
	}

	localCache, err := cache.Open(cfg.CachePath)
	if err != nil {
		app.releaseLock()
		app.closeLogger()
		return nil, fmt.Errorf("failed to open cache: %w", err)
	}
	app.cache = localCache

	app.Session = session.New(session.Config{
		Remote:      remote.NewClient(cfg.RemoteURL),
		Cache:       localCache,
		Logger:      app.Logger,
		OnSyncError: app.onSyncError,
	})

	return app, nil
}

// SignIn loads a user's tasks into the session and raises desktop
// reminders for anything overdue or due today.
func (a *App) SignIn(ctx context.Context, userID string) error {
	if err := a.Session.SignIn(ctx, userID); err != nil {
		return err
	}
	go a.sendDueReminders()
	return nil
}

// SetSyncListener registers a callback invoked on every failed remote
// write, so the UI can surface an offline indicator. May be set after
// the session is already live.
func (a *App) SetSyncListener(f func(error)) {
	a.listenerMu.Lock()
	a.syncListener = f
	a.listenerMu.Unlock()
}

// onSyncError runs on every failed remote write. The first failure
// raises a desktop notification; all of them are logged and forwarded
// to the registered listener.
func (a *App) onSyncError(err error) {
	a.Session.SetOnline(false)
	a.Logger.Warn("remote sync failed", "error", err)
	a.syncWarn.Do(func() {
		_ = a.Notifier.SendSyncFailure()
	})

	a.listenerMu.Lock()
	listener := a.syncListener
	a.listenerMu.Unlock()
	if listener != nil {
		listener(err)
	}
}

// dueTasks filters the tasks worth a reminder: overdue or due today.
func dueTasks(tasks []model.Task) []model.Task {
	var due []model.Task
	for _, t := range tasks {
		if t.IsOverdue() || t.IsDueToday() {
			due = append(due, t)
		}
	}
	return due
}

// sendDueReminders notifies once per sign-in about tasks that need
// attention: a per-task reminder for a single one, a summary otherwise.
func (a *App) sendDueReminders() {
	due := dueTasks(a.Session.ActiveTasks())
	switch len(due) {
	case 0:
	case 1:
		_ = a.Notifier.SendDueReminder(due[0].Text, time.Until(*due[0].DueDate))
	default:
		_ = a.Notifier.SendSimple("Tasks due",
			fmt.Sprintf("%d tasks are overdue or due today", len(due)))
	}
}

func (a *App) openLogger() error {
	logPath := filepath.Join(a.DataDir, "taskdeck.log")
	f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	a.logFile = f
	a.Logger = slog.New(slog.NewTextHandler(f, nil))
	return nil
}

func (a *App) closeLogger() {
	if a.logFile != nil {
		a.logFile.Close()
	}
}

// acquireLock acquires an exclusive file lock to prevent multiple instances
func (a *App) acquireLock() error {
	lockPath := filepath.Join(a.DataDir, "taskdeck.lock")
	a.lockFile = flock.New(lockPath)

	locked, err := a.lockFile.TryLock()
	if err != nil {
		return fmt.Errorf("failed to acquire lock: %w", err)
	}

	if !locked {
		return fmt.Errorf("another instance of taskdeck is already running")
	}

	return nil
}

// releaseLock releases the file lock
func (a *App) releaseLock() {
	if a.lockFile != nil {
		a.lockFile.Unlock()
	}
}

// Close cleans up application resources
func (a *App) Close() error {
	var errs []error

	if a.Session != nil {
		a.Session.Close()
	}

	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close cache: %w", err))
		}
	}

	a.releaseLock()
	a.closeLogger()

	if len(errs) > 0 {
		return errs[0]
	}
	return nil
}
