// Package session owns the canonical task state for one signed-in user.
// Every edit flows through here: the session applies a cascade operation,
// hands the result to the sync scheduler, and runs the short timers the
// cascade rules defer work behind (the visual strike-through delay before
// a fully-completed task migrates to the completed list).
//
// The session is the only writer of the canonical store; the UI reads
// projections and issues commands.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/vinke29/taskdeck/internal/model"
	"github.com/vinke29/taskdeck/internal/order"
	"github.com/vinke29/taskdeck/internal/reconcile"
	"github.com/vinke29/taskdeck/internal/syncer"
)

// DefaultCompleteDelay is how long a fully-subtask-completed task stays
// in the active list before migrating, so the UI can show the transition.
const DefaultCompleteDelay = 500 * time.Millisecond

// Config wires a Session to its collaborators.
type Config struct {
	Remote        syncer.Remote
	Cache         syncer.Cache
	Logger        *slog.Logger
	Debounce      time.Duration // remote flush debounce, 0 means syncer default
	CompleteDelay time.Duration // 0 means DefaultCompleteDelay
	OnSyncError   func(error)   // advisory connectivity callback
	Now           func() time.Time
}

// Session holds the canonical store plus the drag state and completion
// timers for the current user.
type Session struct {
	mu     sync.Mutex
	store  model.Store
	drag   order.Session
	sched  *syncer.Scheduler
	cache  syncer.Cache
	logger *slog.Logger
	now    func() time.Time

	userID string
	loaded bool
	online bool
	closed bool

	completeDelay time.Duration
	pending       map[int]*time.Timer // deferred auto-complete per task id
}

// New creates a Session. SignIn must be called before edits are applied.
func New(cfg Config) *Session {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	delay := cfg.CompleteDelay
	if delay <= 0 {
		delay = DefaultCompleteDelay
	}

	s := &Session{
		cache:         cfg.Cache,
		logger:        logger,
		now:           now,
		online:        true,
		completeDelay: delay,
		pending:       make(map[int]*time.Timer),
	}
	s.sched = syncer.New(syncer.Config{
		Remote:   cfg.Remote,
		Cache:    cfg.Cache,
		Logger:   logger,
		Debounce: cfg.Debounce,
		Snapshot: s.snapshot,
		Attach:   s.attachRemoteID,
		OnError:  cfg.OnSyncError,
	})
	return s
}

// SignIn switches the session to a user and loads their data fresh:
// local cache and remote store are read, reconciled per collection, and
// the result becomes the canonical state. A remote that cannot be
// reached is not fatal; the cache replica carries the session.
func (s *Session) SignIn(ctx context.Context, userID string) error {
	if userID == "" {
		return fmt.Errorf("empty user id")
	}

	s.mu.Lock()
	s.cancelTimersLocked()
	s.userID = userID
	s.loaded = false
	s.store = model.Store{}
	s.drag.Cancel()
	s.mu.Unlock()

	s.sched.SetUser(userID)

	active, err := s.loadCollection(ctx, userID, syncer.CollectionActive)
	if err != nil {
		return err
	}
	completed, err := s.loadCollection(ctx, userID, syncer.CollectionCompleted)
	if err != nil {
		return err
	}

	s.mu.Lock()
	if s.userID != userID {
		// A second sign-in raced this load; drop the stale result.
		s.mu.Unlock()
		return nil
	}
	s.store = model.Store{Active: active, Completed: completed}
	s.loaded = true
	s.mu.Unlock()

	// The reconciled view becomes the cache replica right away.
	s.sched.Seed(syncer.CollectionActive, active)
	s.sched.Seed(syncer.CollectionCompleted, completed)
	return nil
}

// SignOut clears the canonical state and cancels all pending work for
// the previous user. In-flight remote flushes finish under the user they
// were scheduled for.
func (s *Session) SignOut() {
	s.mu.Lock()
	s.cancelTimersLocked()
	s.userID = ""
	s.loaded = false
	s.store = model.Store{}
	s.drag.Cancel()
	s.mu.Unlock()

	s.sched.SetUser("")
}

// Close shuts the session down, waiting for in-flight remote writes.
func (s *Session) Close() {
	s.mu.Lock()
	s.closed = true
	s.cancelTimersLocked()
	s.mu.Unlock()
	s.sched.Close()
}

// loadCollection merges the cache and remote replicas for one collection.
func (s *Session) loadCollection(ctx context.Context, userID string, col syncer.Collection) ([]model.Task, error) {
	var cached []model.Task
	data, ok, err := s.cache.Load(syncer.CacheKey(userID, col))
	if err != nil {
		return nil, fmt.Errorf("load cache %s: %w", col, err)
	}
	if ok {
		cached, err = model.DecodeSnapshot(data)
		if errors.Is(err, model.ErrCorruptSnapshot) {
			// Discard and carry on from empty rather than crash.
			s.logger.Warn("discarding corrupt cache snapshot", "collection", col, "error", err)
			cached = nil
		} else if err != nil {
			return nil, err
		}
	}

	remote, err := s.schedRemoteList(ctx, userID, col)
	if err != nil {
		s.logger.Warn("remote load failed, using cache replica", "collection", col, "error", err)
		return reconcile.Dedup(cached), nil
	}

	return reconcile.Merge(cached, remote), nil
}

func (s *Session) schedRemoteList(ctx context.Context, userID string, col syncer.Collection) ([]model.Task, error) {
	remote := s.remote()
	if remote == nil {
		return nil, fmt.Errorf("no remote configured")
	}
	return remote.List(ctx, userID, col)
}

// snapshot is the scheduler's view of the current canonical state,
// called when a debounced flush fires.
func (s *Session) snapshot(col syncer.Collection) []model.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked(col)
}

// attachRemoteID records a remote id assigned during a flush. The call
// is ignored when the user switched after the flush was scheduled, and
// when the task was deleted mid-flight.
func (s *Session) attachRemoteID(userID string, col syncer.Collection, taskID int, remoteID string) {
	s.mu.Lock()
	if s.closed || userID != s.userID {
		s.mu.Unlock()
		return
	}

	var task *model.Task
	if col == syncer.CollectionCompleted {
		task = s.store.FindCompleted(taskID)
	} else {
		task = s.store.FindActive(taskID)
	}
	if task == nil || task.RemoteID != "" {
		s.mu.Unlock()
		return
	}
	task.RemoteID = remoteID
	tasks := s.snapshotLocked(col)
	s.mu.Unlock()

	s.sched.Seed(col, tasks)
}

func (s *Session) snapshotLocked(col syncer.Collection) []model.Task {
	if col == syncer.CollectionCompleted {
		return model.CloneTasks(s.store.Completed)
	}
	return model.CloneTasks(s.store.Active)
}

func (s *Session) cancelTimersLocked() {
	for id, t := range s.pending {
		t.Stop()
		delete(s.pending, id)
	}
}

func (s *Session) remote() syncer.Remote {
	// The scheduler owns the remote handle for writes; reads at load
	// time go through the same client.
	return s.sched.Remote()
}

// Loaded reports whether the current user's data finished loading.
func (s *Session) Loaded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loaded
}

// UserID returns the signed-in user, or "".
func (s *Session) UserID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.userID
}

// SetOnline records the advisory connectivity status from the network
// collaborator. It never blocks local edits.
func (s *Session) SetOnline(online bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.online = online
}

// Online returns the last reported connectivity status.
func (s *Session) Online() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.online
}

// ActiveTasks returns a deep copy of the active list in canonical order.
func (s *Session) ActiveTasks() []model.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return model.CloneTasks(s.store.Active)
}

// CompletedTasks returns a deep copy of the completed list, newest first.
func (s *Session) CompletedTasks() []model.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return model.CloneTasks(s.store.Completed)
}
