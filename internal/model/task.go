package model

import (
	"time"
)

// Subtask is a to-do item embedded in exactly one parent task.
type Subtask struct {
	ID            int        `json:"id"`
	Text          string     `json:"text"`
	Completed     bool       `json:"completed"`
	DueDate       *time.Time `json:"due_date,omitempty"`
	CompletedDate *time.Time `json:"completed_date,omitempty"`
	Hidden        bool       `json:"hidden"` // keeps completed subtasks out of the default view
	Notes         string     `json:"notes,omitempty"`
}

// Clone returns a deep copy with no shared pointers.
func (s Subtask) Clone() Subtask {
	out := s
	out.DueDate = cloneTime(s.DueDate)
	out.CompletedDate = cloneTime(s.CompletedDate)
	return out
}

// Task is a top-level to-do item that may own zero or more subtasks.
//
// ID is a locally minted integer, unique across the active and completed
// sets together. RemoteID is empty until the remote store assigns one; it
// is the join key between local identity and remote identity.
type Task struct {
	ID            int        `json:"id"`
	Text          string     `json:"text"`
	Completed     bool       `json:"completed"`
	DueDate       *time.Time `json:"due_date,omitempty"`
	CompletedDate *time.Time `json:"completed_date,omitempty"`
	Subtasks      []Subtask  `json:"subtasks,omitempty"`
	IsExpanded    bool       `json:"is_expanded"`
	Notes         string     `json:"notes,omitempty"`
	RemoteID      string     `json:"remote_id,omitempty"`
}

// Clone returns a deep copy: dates and the subtask slice are copied by
// value so the result shares no mutable state with the receiver.
func (t Task) Clone() Task {
	out := t
	out.DueDate = cloneTime(t.DueDate)
	out.CompletedDate = cloneTime(t.CompletedDate)
	if t.Subtasks != nil {
		out.Subtasks = make([]Subtask, len(t.Subtasks))
		for i, s := range t.Subtasks {
			out.Subtasks[i] = s.Clone()
		}
	}
	return out
}

// SubtaskIndex returns the position of the subtask with the given id, or -1.
func (t Task) SubtaskIndex(subtaskID int) int {
	for i, s := range t.Subtasks {
		if s.ID == subtaskID {
			return i
		}
	}
	return -1
}

// AllSubtasksCompleted reports whether every subtask is completed.
// A task with no subtasks is never considered ready for auto-completion.
func (t Task) AllSubtasksCompleted() bool {
	if len(t.Subtasks) == 0 {
		return false
	}
	for _, s := range t.Subtasks {
		if !s.Completed {
			return false
		}
	}
	return true
}

// MaxSubtaskDue returns the latest due date among subtasks, or nil.
func (t Task) MaxSubtaskDue() *time.Time {
	var max *time.Time
	for _, s := range t.Subtasks {
		if s.DueDate == nil {
			continue
		}
		if max == nil || s.DueDate.After(*max) {
			max = s.DueDate
		}
	}
	return cloneTime(max)
}

// IsOverdue returns true if the task is past its due date and still active.
func (t Task) IsOverdue() bool {
	if t.DueDate == nil || t.Completed {
		return false
	}
	return time.Now().After(*t.DueDate)
}

// IsDueToday returns true if the task is due today.
func (t Task) IsDueToday() bool {
	if t.DueDate == nil {
		return false
	}
	now := time.Now()
	return t.DueDate.Year() == now.Year() &&
		t.DueDate.YearDay() == now.YearDay()
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
