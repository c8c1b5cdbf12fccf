package model

import (
	"sort"
)

// Store is the canonical in-memory task state for a session: the active
// list and the completed list. The two sets are disjoint by task id and a
// task belongs to exactly one at any time. Replicas (local cache, remote
// store) are flushed from here and never own the data.
type Store struct {
	Active    []Task
	Completed []Task
}

// Clone deep-copies both sets.
func (s Store) Clone() Store {
	return Store{
		Active:    CloneTasks(s.Active),
		Completed: CloneTasks(s.Completed),
	}
}

// CloneTasks deep-copies a task slice.
func CloneTasks(tasks []Task) []Task {
	if tasks == nil {
		return nil
	}
	out := make([]Task, len(tasks))
	for i, t := range tasks {
		out[i] = t.Clone()
	}
	return out
}

// IndexByID returns the position of the task with the given id, or -1.
func IndexByID(tasks []Task, id int) int {
	for i, t := range tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}

// FindActive returns the active task with the given id, or nil.
func (s Store) FindActive(id int) *Task {
	if i := IndexByID(s.Active, id); i >= 0 {
		return &s.Active[i]
	}
	return nil
}

// FindCompleted returns the completed task with the given id, or nil.
func (s Store) FindCompleted(id int) *Task {
	if i := IndexByID(s.Completed, id); i >= 0 {
		return &s.Completed[i]
	}
	return nil
}

// NextTaskID mints a task id one above the maximum across both sets.
func (s Store) NextTaskID() int {
	max := 0
	for _, t := range s.Active {
		if t.ID > max {
			max = t.ID
		}
	}
	for _, t := range s.Completed {
		if t.ID > max {
			max = t.ID
		}
	}
	return max + 1
}

// NextSubtaskID mints a subtask id one above the maximum across every
// subtask of every task in both sets. Subtask ids are minted globally,
// not per parent.
func (s Store) NextSubtaskID() int {
	max := 0
	for _, t := range s.Active {
		for _, st := range t.Subtasks {
			if st.ID > max {
				max = st.ID
			}
		}
	}
	for _, t := range s.Completed {
		for _, st := range t.Subtasks {
			if st.ID > max {
				max = st.ID
			}
		}
	}
	return max + 1
}

// SortByDueDate stable-sorts tasks by due date ascending for display.
// Tasks without a due date sort after every task with one; ties keep
// their existing relative order.
func SortByDueDate(tasks []Task) []Task {
	out := CloneTasks(tasks)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].DueDate, out[j].DueDate
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return a.Before(*b)
		}
	})
	return out
}
