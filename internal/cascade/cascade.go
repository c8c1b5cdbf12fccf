// Package cascade implements the pure state-transition rules that keep a
// task tree consistent: completion cascading between tasks and subtasks,
// due-date propagation, and active/completed set membership.
//
// Every operation takes the current model.Store plus edit parameters and
// returns a new store; inputs are never mutated. Operations that reference
// a missing task or subtask id return the store unchanged. No operation
// performs I/O or reads the clock on its own; callers pass "now" in.
package cascade

import (
	"time"

	"github.com/vinke29/taskdeck/internal/model"
)

// ToggleSubtask flips the completion state of one subtask. Completing a
// subtask stamps its completion date and hides it from the default view;
// un-completing clears both.
//
// The returned bool reports whether the flip left the parent task active
// with every subtask completed. The caller is expected to hold that state
// briefly (for the strike-through transition) and then finish the move
// with CompleteTaskIfReady; the store returned here still has the parent
// in the active set.
func ToggleSubtask(s model.Store, taskID, subtaskID int, now time.Time) (model.Store, bool) {
	out := s.Clone()
	task := out.FindActive(taskID)
	if task == nil {
		// Completed tasks keep their subtasks frozen; only explicit
		// restore operations touch them.
		return s, false
	}
	i := task.SubtaskIndex(subtaskID)
	if i < 0 {
		return s, false
	}

	st := &task.Subtasks[i]
	if st.Completed {
		st.Completed = false
		st.CompletedDate = nil
		st.Hidden = false
	} else {
		st.Completed = true
		stamp := now
		st.CompletedDate = &stamp
		st.Hidden = true
	}

	ready := !task.Completed && task.AllSubtasksCompleted()
	return out, ready
}

// CompleteTaskIfReady finishes the deferred auto-completion started by
// ToggleSubtask: if the task is still active and every subtask is still
// completed, the task is marked completed and moved to the head of the
// completed set. The parent's completion date is the latest subtask
// completion date, so a single-subtask task completes with that subtask's
// own timestamp.
//
// Idempotent: if the task already migrated, or the condition no longer
// holds (a subtask was un-toggled during the delay), nothing changes.
func CompleteTaskIfReady(s model.Store, taskID int, now time.Time) model.Store {
	idx := model.IndexByID(s.Active, taskID)
	if idx < 0 {
		return s
	}
	if s.Active[idx].Completed || !s.Active[idx].AllSubtasksCompleted() {
		return s
	}

	out := s.Clone()
	task := out.Active[idx]
	out.Active = append(out.Active[:idx], out.Active[idx+1:]...)

	task.Completed = true
	stamp := latestSubtaskCompletion(task)
	if stamp == nil {
		v := now
		stamp = &v
	}
	task.CompletedDate = stamp

	// Completed list is newest first.
	out.Completed = append([]model.Task{task}, out.Completed...)
	return out
}

// ToggleTask completes or un-completes a whole task.
//
// Completing force-completes every subtask that was not already completed,
// stamping each with the parent's single completion instant (not a fresh
// "now" per subtask, unlike toggling subtasks one by one), and moves the
// task to the head of the completed set.
//
// Un-completing clears the task's own completion state and moves it back
// to the active set; subtask states are left untouched.
func ToggleTask(s model.Store, taskID int, now time.Time) model.Store {
	if idx := model.IndexByID(s.Active, taskID); idx >= 0 {
		out := s.Clone()
		task := out.Active[idx]
		out.Active = append(out.Active[:idx], out.Active[idx+1:]...)

		stamp := now
		task.Completed = true
		task.CompletedDate = &stamp
		for i := range task.Subtasks {
			if task.Subtasks[i].Completed {
				continue
			}
			v := stamp
			task.Subtasks[i].Completed = true
			task.Subtasks[i].CompletedDate = &v
			task.Subtasks[i].Hidden = true
		}

		out.Completed = append([]model.Task{task}, out.Completed...)
		return out
	}

	if idx := model.IndexByID(s.Completed, taskID); idx >= 0 {
		return restoreTaskAt(s, idx)
	}

	return s
}

// RestoreTask moves a completed task back to the active set, clearing the
// task's own completion state only. Subtasks keep whatever state they had.
func RestoreTask(s model.Store, taskID int) model.Store {
	idx := model.IndexByID(s.Completed, taskID)
	if idx < 0 {
		return s
	}
	return restoreTaskAt(s, idx)
}

// RestoreSubtaskFromCompletedTask restores one subtask of a completed
// task and moves the whole task back to the active set. The task's and
// the target subtask's completion state is cleared; sibling subtasks are
// preserved as-is.
func RestoreSubtaskFromCompletedTask(s model.Store, taskID, subtaskID int) model.Store {
	idx := model.IndexByID(s.Completed, taskID)
	if idx < 0 {
		return s
	}
	if s.Completed[idx].SubtaskIndex(subtaskID) < 0 {
		return s
	}
	out := restoreTaskAt(s, idx)
	return RestoreSubtask(out, taskID, subtaskID)
}

// RestoreSubtask clears the completion state of one subtask wherever its
// parent lives. The parent task is not touched: restoring a subtask
// inside a still-completed task leaves that task in the completed set
// with a non-completed subtask inside it.
func RestoreSubtask(s model.Store, taskID, subtaskID int) model.Store {
	out := s.Clone()
	task := out.FindActive(taskID)
	if task == nil {
		task = out.FindCompleted(taskID)
	}
	if task == nil {
		return s
	}
	i := task.SubtaskIndex(subtaskID)
	if i < 0 {
		return s
	}
	task.Subtasks[i].Completed = false
	task.Subtasks[i].CompletedDate = nil
	task.Subtasks[i].Hidden = false
	return out
}

func restoreTaskAt(s model.Store, idx int) model.Store {
	out := s.Clone()
	task := out.Completed[idx]
	out.Completed = append(out.Completed[:idx], out.Completed[idx+1:]...)

	task.Completed = false
	task.CompletedDate = nil

	out.Active = append(out.Active, task)
	return out
}

func latestSubtaskCompletion(t model.Task) *time.Time {
	var max *time.Time
	for i := range t.Subtasks {
		d := t.Subtasks[i].CompletedDate
		if d == nil {
			continue
		}
		if max == nil || d.After(*max) {
			v := *d
			max = &v
		}
	}
	return max
}
