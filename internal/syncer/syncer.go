// Package syncer decides when and what to persist: synchronous local
// cache writes on every mutation, plus debounced, batched writes to the
// remote store with at most one in-flight flush per collection.
package syncer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/vinke29/taskdeck/internal/model"
)

// DefaultDebounce is the delay between the last mutation and the remote
// flush it schedules. Every new mutation restarts it.
const DefaultDebounce = 2 * time.Second

// flushTimeout bounds the network calls of a single flush.
const flushTimeout = 30 * time.Second

// SnapshotFunc returns the current canonical task list for a collection.
// Called once per flush, when the flush actually runs.
type SnapshotFunc func(col Collection) []model.Task

// AttachFunc delivers a freshly assigned remote id back to the owner of
// the canonical store. userID is the user the flush was scheduled for;
// implementations must ignore the call when that user is no longer
// signed in, and when the task has been deleted mid-flight.
type AttachFunc func(userID string, col Collection, taskID int, remoteID string)

// Config wires a Scheduler to its collaborators.
type Config struct {
	Remote   Remote
	Cache    Cache
	Logger   *slog.Logger
	Debounce time.Duration // 0 means DefaultDebounce
	Snapshot SnapshotFunc
	Attach   AttachFunc
	OnError  func(error) // optional, advisory (connectivity indicator)
}

type colState int

const (
	stateIdle colState = iota
	statePending
	stateFlushing
)

type collection struct {
	state    colState
	timer    *time.Timer
	followUp bool
	userID   string // captured when the flush was scheduled
}

// Scheduler owns the write path to both replicas. It is the only
// component that touches the local cache or the remote store.
type Scheduler struct {
	mu      sync.Mutex
	remote  Remote
	cache   Cache
	logger  *slog.Logger
	delay   time.Duration
	snap    SnapshotFunc
	attach  AttachFunc
	onError func(error)

	userID  string
	cols    map[Collection]*collection
	closed  bool
	flights sync.WaitGroup
}

// New creates a Scheduler. SetUser must be called before the first
// Notify.
func New(cfg Config) *Scheduler {
	delay := cfg.Debounce
	if delay <= 0 {
		delay = DefaultDebounce
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		remote:  cfg.Remote,
		cache:   cfg.Cache,
		logger:  logger,
		delay:   delay,
		snap:    cfg.Snapshot,
		attach:  cfg.Attach,
		onError: cfg.OnError,
		cols: map[Collection]*collection{
			CollectionActive:    {},
			CollectionCompleted: {},
		},
	}
}

// Remote exposes the remote store handle for load-time reads. Writes
// stay the scheduler's job.
func (s *Scheduler) Remote() Remote {
	return s.remote
}

// CacheKey is the local-cache key for one user's collection snapshot.
func CacheKey(userID string, col Collection) string {
	return userID + "/" + string(col)
}

// SetUser switches the scheduler to a new user: pending debounce timers
// are canceled and the per-collection state machines reset. An in-flight
// flush for the previous user is allowed to finish; it was scoped to the
// user captured when it was scheduled.
func (s *Scheduler) SetUser(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, st := range s.cols {
		if st.timer != nil {
			st.timer.Stop()
			st.timer = nil
		}
		if st.state == statePending {
			st.state = stateIdle
		}
		st.followUp = false
	}
	s.userID = userID
}

// Notify records a mutation to one collection. The snapshot is written
// to the local cache immediately, and a remote flush is (re)scheduled
// after the debounce delay. A flush that has not fired yet is replaced,
// not run twice.
func (s *Scheduler) Notify(col Collection, tasks []model.Task) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.userID == "" {
		return
	}

	s.saveCacheLocked(col, tasks)

	st := s.cols[col]
	switch st.state {
	case stateIdle, statePending:
		s.armLocked(col, st)
	case stateFlushing:
		// A flush is on the wire; queue exactly one follow-up after it.
		st.followUp = true
	}
}

// Seed writes a snapshot to the local cache without scheduling a remote
// flush: used when hydrating reconciled state at load time and when
// recording remote ids attached by a finished flush. Only user edits
// arm the debounce timer.
func (s *Scheduler) Seed(col Collection, tasks []model.Task) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.userID == "" {
		return
	}
	s.saveCacheLocked(col, tasks)
}

// MoveTask issues a remote move (create in destination, delete from
// source) for a task that changed sets. Tasks that never reached the
// remote store have nothing to move; the next flush of the destination
// collection creates them there.
func (s *Scheduler) MoveTask(t model.Task, from, to Collection) {
	s.mu.Lock()
	if s.closed || t.RemoteID == "" {
		s.mu.Unlock()
		return
	}
	userID := s.userID
	s.flights.Add(1)
	s.mu.Unlock()

	task := t.Clone()
	go func() {
		defer s.flights.Done()
		ctx, cancel := context.WithTimeout(context.Background(), flushTimeout)
		defer cancel()
		if err := s.remote.Move(ctx, userID, task, from, to); err != nil {
			s.reportError(fmt.Errorf("move task %d (%s -> %s): %w", task.ID, from, to, err))
		}
	}()
}

// DeleteTask issues a remote delete for a destroyed task. A task that
// was already gone remotely counts as deleted.
func (s *Scheduler) DeleteTask(t model.Task, col Collection) {
	s.mu.Lock()
	if s.closed || t.RemoteID == "" {
		s.mu.Unlock()
		return
	}
	userID := s.userID
	s.flights.Add(1)
	s.mu.Unlock()

	remoteID := t.RemoteID
	taskID := t.ID
	go func() {
		defer s.flights.Done()
		ctx, cancel := context.WithTimeout(context.Background(), flushTimeout)
		defer cancel()
		err := s.remote.Delete(ctx, userID, col, remoteID)
		if err != nil && !errors.Is(err, ErrNotFound) {
			s.reportError(fmt.Errorf("delete task %d: %w", taskID, err))
		}
	}()
}

// Close cancels pending timers and waits for in-flight network calls.
func (s *Scheduler) Close() {
	s.mu.Lock()
	s.closed = true
	for _, st := range s.cols {
		if st.timer != nil {
			st.timer.Stop()
			st.timer = nil
		}
	}
	s.mu.Unlock()
	s.flights.Wait()
}

// armLocked (re)starts the debounce timer for a collection. The previous
// timer, if any, is stopped first so a superseded flush never runs.
func (s *Scheduler) armLocked(col Collection, st *collection) {
	if st.timer != nil {
		st.timer.Stop()
	}
	st.state = statePending
	st.userID = s.userID
	st.timer = time.AfterFunc(s.delay, func() { s.runFlush(col) })
}

func (s *Scheduler) saveCacheLocked(col Collection, tasks []model.Task) {
	data, err := model.EncodeSnapshot(tasks)
	if err != nil {
		s.logger.Error("encode cache snapshot", "collection", col, "error", err)
		return
	}
	if err := s.cache.Save(CacheKey(s.userID, col), data); err != nil {
		s.logger.Error("save cache snapshot", "collection", col, "error", err)
	}
}

// runFlush executes one debounced flush for a collection.
func (s *Scheduler) runFlush(col Collection) {
	s.mu.Lock()
	st := s.cols[col]
	if s.closed || st.state != statePending || st.userID != s.userID {
		// Canceled, superseded, or the user switched after scheduling.
		if st.state == statePending {
			st.state = stateIdle
		}
		s.mu.Unlock()
		return
	}
	st.state = stateFlushing
	st.timer = nil
	userID := st.userID
	s.flights.Add(1)
	s.mu.Unlock()

	// Snapshot is read outside the lock: the snapshot provider has its
	// own synchronization and may call back into Notify.
	tasks := s.snap(col)
	s.flushTasks(userID, col, tasks)
}

// flushTasks pushes one snapshot to the remote store: update when the
// task already has a remote identity, create otherwise. Task ids already
// handled in this flush are skipped as a guard against duplicate entries
// in the snapshot.
func (s *Scheduler) flushTasks(userID string, col Collection, tasks []model.Task) {
	defer s.flights.Done()

	ctx, cancel := context.WithTimeout(context.Background(), flushTimeout)
	defer cancel()

	processed := make(map[int]bool, len(tasks))
	for _, t := range tasks {
		if processed[t.ID] {
			continue
		}
		processed[t.ID] = true

		if t.RemoteID != "" {
			err := s.remote.Update(ctx, userID, col, t)
			if errors.Is(err, ErrNotFound) {
				// Raced a delete; nothing to retry.
				s.logger.Info("update target gone", "collection", col, "task", t.ID)
				continue
			}
			if err != nil {
				s.reportError(fmt.Errorf("update task %d: %w", t.ID, err))
			}
			continue
		}

		remoteID, err := s.remote.Create(ctx, userID, col, t)
		if err != nil {
			s.reportError(fmt.Errorf("create task %d: %w", t.ID, err))
			continue
		}
		if s.attach != nil {
			s.attach(userID, col, t.ID, remoteID)
		}
	}

	s.finishFlush(col)
}

// finishFlush returns a collection to Idle and re-arms the timer when a
// mutation arrived while the flush was in flight.
func (s *Scheduler) finishFlush(col Collection) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.cols[col]
	st.state = stateIdle
	if st.followUp && !s.closed {
		st.followUp = false
		s.armLocked(col, st)
	}
}

func (s *Scheduler) reportError(err error) {
	s.logger.Warn("remote write failed", "error", err)
	if s.onError != nil {
		s.onError(err)
	}
}
