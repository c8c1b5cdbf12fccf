package cascade

import (
	"time"

	"github.com/vinke29/taskdeck/internal/model"
)

// AddTask appends a new active task with a freshly minted id and an empty
// remote id. Returns the new store and the new task's id.
func AddTask(s model.Store, text string, due *time.Time) (model.Store, int) {
	out := s.Clone()
	id := out.NextTaskID()
	out.Active = append(out.Active, model.Task{
		ID:      id,
		Text:    text,
		DueDate: copyDate(due),
	})
	return out, id
}

// AddSubtask creates a subtask under an active task. The subtask inherits
// the parent's due date (by value) when the parent has one, and the parent
// is auto-expanded so the new subtask is visible.
func AddSubtask(s model.Store, taskID int, text string) (model.Store, int) {
	out := s.Clone()
	task := out.FindActive(taskID)
	if task == nil {
		return s, 0
	}
	id := out.NextSubtaskID()
	task.Subtasks = append(task.Subtasks, model.Subtask{
		ID:      id,
		Text:    text,
		DueDate: copyDate(task.DueDate),
	})
	task.IsExpanded = true
	return out, id
}

// DeleteSubtask removes a subtask from an active task.
func DeleteSubtask(s model.Store, taskID, subtaskID int) model.Store {
	out := s.Clone()
	task := out.FindActive(taskID)
	if task == nil {
		return s
	}
	i := task.SubtaskIndex(subtaskID)
	if i < 0 {
		return s
	}
	task.Subtasks = append(task.Subtasks[:i], task.Subtasks[i+1:]...)
	return out
}

// DeleteTask removes a task from whichever set holds it. The removed task
// is returned so the caller can issue a remote delete when it carries a
// remote id.
func DeleteTask(s model.Store, taskID int) (model.Store, model.Task, bool) {
	if idx := model.IndexByID(s.Active, taskID); idx >= 0 {
		out := s.Clone()
		removed := out.Active[idx]
		out.Active = append(out.Active[:idx], out.Active[idx+1:]...)
		return out, removed, true
	}
	if idx := model.IndexByID(s.Completed, taskID); idx >= 0 {
		out := s.Clone()
		removed := out.Completed[idx]
		out.Completed = append(out.Completed[:idx], out.Completed[idx+1:]...)
		return out, removed, true
	}
	return s, model.Task{}, false
}

// SetTaskDueDate sets a task's due date. Subtasks without a due date of
// their own inherit the new date by value; subtasks that already carry
// one are left alone.
func SetTaskDueDate(s model.Store, taskID int, due *time.Time) model.Store {
	out := s.Clone()
	task := out.FindActive(taskID)
	if task == nil {
		return s
	}
	task.DueDate = copyDate(due)
	if due == nil {
		return out
	}
	for i := range task.Subtasks {
		if task.Subtasks[i].DueDate == nil {
			task.Subtasks[i].DueDate = copyDate(due)
		}
	}
	return out
}

// SetSubtaskDueDate sets a subtask's due date. Due dates only ratchet
// forward at the task level: when the new subtask date is later than the
// parent's current due date, or the parent has none, the parent's date is
// raised to match. The parent's date never shrinks here.
func SetSubtaskDueDate(s model.Store, taskID, subtaskID int, due *time.Time) model.Store {
	out := s.Clone()
	task := out.FindActive(taskID)
	if task == nil {
		return s
	}
	i := task.SubtaskIndex(subtaskID)
	if i < 0 {
		return s
	}
	task.Subtasks[i].DueDate = copyDate(due)
	if due != nil && (task.DueDate == nil || due.After(*task.DueDate)) {
		task.DueDate = copyDate(due)
	}
	return out
}

// Details carries a full details edit for EditTask. Nil DueDate clears
// the task's due date.
type Details struct {
	Text    string
	Notes   string
	DueDate *time.Time
}

// EditTask applies an edited title, notes and due date atomically. When
// the edited due date is set, subtask dates are re-propagated: subtasks
// carrying a later date are clamped down to the new parent date, and
// subtasks without a date inherit it. Clearing the parent date leaves
// subtask dates untouched.
func EditTask(s model.Store, taskID int, d Details) model.Store {
	out := s.Clone()
	task := out.FindActive(taskID)
	if task == nil {
		return s
	}
	task.Text = d.Text
	task.Notes = d.Notes
	task.DueDate = copyDate(d.DueDate)
	if d.DueDate != nil {
		for i := range task.Subtasks {
			st := &task.Subtasks[i]
			if st.DueDate == nil || st.DueDate.After(*d.DueDate) {
				st.DueDate = copyDate(d.DueDate)
			}
		}
	}
	return out
}

// EditSubtask applies an edited title and notes to a subtask.
func EditSubtask(s model.Store, taskID, subtaskID int, text, notes string) model.Store {
	out := s.Clone()
	task := out.FindActive(taskID)
	if task == nil {
		return s
	}
	i := task.SubtaskIndex(subtaskID)
	if i < 0 {
		return s
	}
	task.Subtasks[i].Text = text
	task.Subtasks[i].Notes = notes
	return out
}

// SetExpanded records whether a task's subtask list is unfolded.
func SetExpanded(s model.Store, taskID int, expanded bool) model.Store {
	out := s.Clone()
	task := out.FindActive(taskID)
	if task == nil {
		return s
	}
	task.IsExpanded = expanded
	return out
}

func copyDate(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
