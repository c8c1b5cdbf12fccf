package session

import (
	"github.com/vinke29/taskdeck/internal/model"
	"github.com/vinke29/taskdeck/internal/syncer"
)

// BeginDrag starts reordering an active task.
func (s *Session) BeginDrag(taskID int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.store.FindActive(taskID) == nil {
		return
	}
	s.drag.Begin(taskID)
}

// DragOver records another active task as the current drop target.
func (s *Session) DragOver(targetID int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.drag.Over(targetID)
}

// DragOverEnd records the end-of-list zone as the current drop target.
func (s *Session) DragOverEnd() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.drag.OverEnd()
}

// Dragging reports whether a drag session is active, and for which task.
func (s *Session) Dragging() (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.drag.Active() {
		return 0, false
	}
	return s.drag.DraggedID(), true
}

// DragPreview returns the projected active order for the current drag
// target. This is what gets rendered while the drag is live; the
// canonical order is untouched until Drop.
func (s *Session) DragPreview() []model.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.drag.Preview(s.store.Active)
}

// Drop commits the drag preview as the new canonical active order.
// Dropping on the task's original position, or with no active drag, is
// a no-op.
func (s *Session) Drop() {
	s.mu.Lock()
	committed, changed := s.drag.Drop(s.store.Active)
	if !changed {
		s.mu.Unlock()
		return
	}
	s.store.Active = committed
	tasks := s.snapshotLocked(syncer.CollectionActive)
	s.mu.Unlock()

	s.sched.Notify(syncer.CollectionActive, tasks)
}

// CancelDrag aborts the drag session with no commit.
func (s *Session) CancelDrag() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.drag.Cancel()
}
