// Package order implements drag-and-drop reordering of the active task
// list: a drag session with a live preview projection, committed on drop.
// Completed tasks are not reorderable; they live in a separate
// newest-first list that this package never touches.
package order

import (
	"github.com/vinke29/taskdeck/internal/model"
)

// Session tracks at most one in-progress drag: the dragged task id and
// the current target (another task id, or the end-of-list zone). The
// canonical order is only changed on Drop; Preview is what gets rendered
// in the meantime.
type Session struct {
	active    bool
	draggedID int
	hasTarget bool
	targetID  int
	toEnd     bool
}

// Active reports whether a drag is in progress.
func (s *Session) Active() bool {
	return s.active
}

// DraggedID returns the id being dragged, valid only while Active.
func (s *Session) DraggedID() int {
	return s.draggedID
}

// Begin starts a drag session for the given task. Any previous session
// is discarded.
func (s *Session) Begin(taskID int) {
	*s = Session{active: true, draggedID: taskID}
}

// Over records another task as the current drop target. Hovering over
// the dragged task itself clears the target instead of recording it.
func (s *Session) Over(targetID int) {
	if !s.active {
		return
	}
	if targetID == s.draggedID {
		s.hasTarget = false
		s.toEnd = false
		return
	}
	s.hasTarget = true
	s.targetID = targetID
	s.toEnd = false
}

// OverEnd records the end-of-list zone as the current drop target.
func (s *Session) OverEnd() {
	if !s.active {
		return
	}
	s.hasTarget = true
	s.toEnd = true
}

// Cancel aborts the session with no commit and no residual target.
func (s *Session) Cancel() {
	*s = Session{}
}

// Preview computes the projected order for the current target: the
// dragged task is removed and reinserted either at the end of the list
// or immediately after the target task. With no active drag or no target
// yet, the input order is returned unchanged (as a copy).
func (s *Session) Preview(tasks []model.Task) []model.Task {
	if !s.active || !s.hasTarget {
		return model.CloneTasks(tasks)
	}

	idx := model.IndexByID(tasks, s.draggedID)
	if idx < 0 {
		return model.CloneTasks(tasks)
	}

	out := make([]model.Task, 0, len(tasks))
	for i, t := range tasks {
		if i == idx {
			continue
		}
		out = append(out, t.Clone())
	}
	dragged := tasks[idx].Clone()

	if s.toEnd {
		return append(out, dragged)
	}

	tIdx := model.IndexByID(out, s.targetID)
	if tIdx < 0 {
		// Target vanished mid-drag; keep the dragged task where it was.
		return model.CloneTasks(tasks)
	}
	out = append(out, model.Task{})
	copy(out[tIdx+2:], out[tIdx+1:])
	out[tIdx+1] = dragged
	return out
}

// Drop commits the current preview as the new canonical order and ends
// the session. The bool reports whether the order actually changed;
// dropping with no active drag, no target, or onto the task's original
// position leaves the input order as-is.
func (s *Session) Drop(tasks []model.Task) ([]model.Task, bool) {
	if !s.active {
		return tasks, false
	}
	preview := s.Preview(tasks)
	*s = Session{}
	if sameOrder(tasks, preview) {
		return tasks, false
	}
	return preview, true
}

func sameOrder(a, b []model.Task) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].ID != b[i].ID {
			return false
		}
	}
	return true
}
