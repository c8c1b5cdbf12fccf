package session

import (
	"time"

	"github.com/vinke29/taskdeck/internal/cascade"
	"github.com/vinke29/taskdeck/internal/model"
	"github.com/vinke29/taskdeck/internal/syncer"
)

// AddTask creates a new active task and returns its id.
func (s *Session) AddTask(text string, due *time.Time) int {
	s.mu.Lock()
	store, id := cascade.AddTask(s.store, text, due)
	s.store = store
	tasks := s.snapshotLocked(syncer.CollectionActive)
	s.mu.Unlock()

	s.sched.Notify(syncer.CollectionActive, tasks)
	return id
}

// AddSubtask creates a subtask under an active task and returns its id.
func (s *Session) AddSubtask(taskID int, text string) int {
	s.mu.Lock()
	store, id := cascade.AddSubtask(s.store, taskID, text)
	changed := id != 0
	s.store = store
	tasks := s.snapshotLocked(syncer.CollectionActive)
	s.mu.Unlock()

	if changed {
		s.sched.Notify(syncer.CollectionActive, tasks)
	}
	return id
}

// ToggleSubtask flips one subtask's completion. When the flip leaves
// every subtask of the parent completed, the parent is scheduled to
// migrate to the completed list after the completion delay; toggling a
// subtask back off within the delay cancels the migration.
func (s *Session) ToggleSubtask(taskID, subtaskID int) {
	s.mu.Lock()
	store, ready := cascade.ToggleSubtask(s.store, taskID, subtaskID, s.now())
	if sameStore(store, s.store) {
		// Unknown ids are no-ops; nothing to persist.
		s.mu.Unlock()
		return
	}
	s.store = store

	if ready {
		s.armCompleteLocked(taskID)
	} else if t, ok := s.pending[taskID]; ok {
		t.Stop()
		delete(s.pending, taskID)
	}
	tasks := s.snapshotLocked(syncer.CollectionActive)
	s.mu.Unlock()

	s.sched.Notify(syncer.CollectionActive, tasks)
}

// armCompleteLocked (re)starts the deferred auto-complete timer for a
// task whose subtasks are all done.
func (s *Session) armCompleteLocked(taskID int) {
	if t, ok := s.pending[taskID]; ok {
		t.Stop()
	}
	userID := s.userID
	s.pending[taskID] = time.AfterFunc(s.completeDelay, func() {
		s.finalizeComplete(userID, taskID)
	})
}

// finalizeComplete runs when the completion delay elapses: if the task
// is still active with every subtask completed, it migrates to the
// completed set. Idempotent; the cascade re-checks the condition.
func (s *Session) finalizeComplete(userID string, taskID int) {
	s.mu.Lock()
	if s.closed || userID != s.userID {
		s.mu.Unlock()
		return
	}
	delete(s.pending, taskID)

	store := cascade.CompleteTaskIfReady(s.store, taskID, s.now())
	moved := store.FindCompleted(taskID) != nil && s.store.FindCompleted(taskID) == nil
	s.store = store
	active := s.snapshotLocked(syncer.CollectionActive)
	completed := s.snapshotLocked(syncer.CollectionCompleted)
	var movedTask model.Task
	if moved {
		movedTask = *store.FindCompleted(taskID)
	}
	s.mu.Unlock()

	if !moved {
		return
	}
	s.sched.Notify(syncer.CollectionActive, active)
	s.sched.Notify(syncer.CollectionCompleted, completed)
	s.sched.MoveTask(movedTask, syncer.CollectionActive, syncer.CollectionCompleted)
}

// ToggleTask completes an active task (force-completing its subtasks
// with one shared timestamp) or restores a completed one.
func (s *Session) ToggleTask(taskID int) {
	s.mu.Lock()
	wasActive := s.store.FindActive(taskID) != nil
	wasCompleted := s.store.FindCompleted(taskID) != nil
	if !wasActive && !wasCompleted {
		s.mu.Unlock()
		return
	}
	if wasActive {
		if t, ok := s.pending[taskID]; ok {
			t.Stop()
			delete(s.pending, taskID)
		}
	}
	s.store = cascade.ToggleTask(s.store, taskID, s.now())
	active := s.snapshotLocked(syncer.CollectionActive)
	completed := s.snapshotLocked(syncer.CollectionCompleted)
	var moved model.Task
	if wasActive {
		moved = *s.store.FindCompleted(taskID)
	} else {
		moved = *s.store.FindActive(taskID)
	}
	s.mu.Unlock()

	s.sched.Notify(syncer.CollectionActive, active)
	s.sched.Notify(syncer.CollectionCompleted, completed)
	if wasActive {
		s.sched.MoveTask(moved, syncer.CollectionActive, syncer.CollectionCompleted)
	} else {
		s.sched.MoveTask(moved, syncer.CollectionCompleted, syncer.CollectionActive)
	}
}

// RestoreTask moves a completed task back to the active list.
func (s *Session) RestoreTask(taskID int) {
	s.restoreToActive(taskID, func(st model.Store) model.Store {
		return cascade.RestoreTask(st, taskID)
	})
}

// RestoreSubtaskFromCompletedTask restores one subtask and brings its
// parent task back to the active list; sibling subtasks stay completed.
func (s *Session) RestoreSubtaskFromCompletedTask(taskID, subtaskID int) {
	s.restoreToActive(taskID, func(st model.Store) model.Store {
		return cascade.RestoreSubtaskFromCompletedTask(st, taskID, subtaskID)
	})
}

func (s *Session) restoreToActive(taskID int, op func(model.Store) model.Store) {
	s.mu.Lock()
	if s.store.FindCompleted(taskID) == nil {
		s.mu.Unlock()
		return
	}
	s.store = op(s.store)
	restored := s.store.FindActive(taskID) != nil
	active := s.snapshotLocked(syncer.CollectionActive)
	completed := s.snapshotLocked(syncer.CollectionCompleted)
	var moved model.Task
	if restored {
		moved = *s.store.FindActive(taskID)
	}
	s.mu.Unlock()

	if !restored {
		return
	}
	s.sched.Notify(syncer.CollectionActive, active)
	s.sched.Notify(syncer.CollectionCompleted, completed)
	s.sched.MoveTask(moved, syncer.CollectionCompleted, syncer.CollectionActive)
}

// RestoreSubtask un-completes one subtask wherever its parent lives; the
// parent's own state and set membership are untouched.
func (s *Session) RestoreSubtask(taskID, subtaskID int) {
	s.mu.Lock()
	inCompleted := s.store.FindCompleted(taskID) != nil
	s.store = cascade.RestoreSubtask(s.store, taskID, subtaskID)
	col := syncer.CollectionActive
	if inCompleted {
		col = syncer.CollectionCompleted
	}
	tasks := s.snapshotLocked(col)
	s.mu.Unlock()

	s.sched.Notify(col, tasks)
}

// DeleteTask destroys a task. A task that reached the remote store also
// gets a remote delete.
func (s *Session) DeleteTask(taskID int) {
	s.mu.Lock()
	wasCompleted := s.store.FindCompleted(taskID) != nil
	store, removed, ok := cascade.DeleteTask(s.store, taskID)
	if !ok {
		s.mu.Unlock()
		return
	}
	if t, tok := s.pending[taskID]; tok {
		t.Stop()
		delete(s.pending, taskID)
	}
	s.store = store
	col := syncer.CollectionActive
	if wasCompleted {
		col = syncer.CollectionCompleted
	}
	tasks := s.snapshotLocked(col)
	s.mu.Unlock()

	s.sched.Notify(col, tasks)
	s.sched.DeleteTask(removed, col)
}

// DeleteSubtask removes one subtask from an active task.
func (s *Session) DeleteSubtask(taskID, subtaskID int) {
	s.applyActive(func(st model.Store) model.Store {
		return cascade.DeleteSubtask(st, taskID, subtaskID)
	})
}

// SetTaskDueDate sets a task's due date; subtasks without their own date
// inherit it.
func (s *Session) SetTaskDueDate(taskID int, due *time.Time) {
	s.applyActive(func(st model.Store) model.Store {
		return cascade.SetTaskDueDate(st, taskID, due)
	})
}

// SetSubtaskDueDate sets a subtask's due date, raising the parent's date
// when the new date is later.
func (s *Session) SetSubtaskDueDate(taskID, subtaskID int, due *time.Time) {
	s.applyActive(func(st model.Store) model.Store {
		return cascade.SetSubtaskDueDate(st, taskID, subtaskID, due)
	})
}

// EditTask applies a details edit (title, notes, due date) atomically.
func (s *Session) EditTask(taskID int, d cascade.Details) {
	s.applyActive(func(st model.Store) model.Store {
		return cascade.EditTask(st, taskID, d)
	})
}

// EditSubtask applies an edited title and notes to a subtask.
func (s *Session) EditSubtask(taskID, subtaskID int, text, notes string) {
	s.applyActive(func(st model.Store) model.Store {
		return cascade.EditSubtask(st, taskID, subtaskID, text, notes)
	})
}

// SetExpanded folds or unfolds a task's subtask list.
func (s *Session) SetExpanded(taskID int, expanded bool) {
	s.applyActive(func(st model.Store) model.Store {
		return cascade.SetExpanded(st, taskID, expanded)
	})
}

// applyActive runs a cascade operation that only touches the active set
// and persists the result. Operations that hit a missing id return the
// store unchanged and nothing is persisted.
func (s *Session) applyActive(op func(model.Store) model.Store) {
	s.mu.Lock()
	store := op(s.store)
	if sameStore(store, s.store) {
		s.mu.Unlock()
		return
	}
	s.store = store
	tasks := s.snapshotLocked(syncer.CollectionActive)
	s.mu.Unlock()

	s.sched.Notify(syncer.CollectionActive, tasks)
}

// sameStore is a cheap identity check: cascade no-ops return the input
// store value whose slices alias the originals.
func sameStore(a, b model.Store) bool {
	return len(a.Active) == len(b.Active) &&
		len(a.Completed) == len(b.Completed) &&
		(len(a.Active) == 0 || &a.Active[0] == &b.Active[0]) &&
		(len(a.Completed) == 0 || &a.Completed[0] == &b.Completed[0])
}
