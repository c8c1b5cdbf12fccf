package cascade

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vinke29/taskdeck/internal/model"
)

func date(day int) *time.Time {
	t := time.Date(2025, time.June, day, 0, 0, 0, 0, time.UTC)
	return &t
}

func storeWith(tasks ...model.Task) model.Store {
	return model.Store{Active: tasks}
}

func requireDisjoint(t *testing.T, s model.Store) {
	t.Helper()
	seen := map[int]string{}
	for _, task := range s.Active {
		require.NotContains(t, seen, task.ID)
		seen[task.ID] = "active"
	}
	for _, task := range s.Completed {
		require.NotContains(t, seen, task.ID)
		seen[task.ID] = "completed"
	}
}

func TestToggleSubtask_Complete(t *testing.T) {
	now := time.Date(2025, time.June, 1, 12, 0, 0, 0, time.UTC)
	s := storeWith(model.Task{ID: 1, Text: "groceries", Subtasks: []model.Subtask{
		{ID: 1, Text: "milk"},
		{ID: 2, Text: "eggs"},
	}})

	out, ready := ToggleSubtask(s, 1, 1, now)

	assert.False(t, ready, "one open subtask left")
	st := out.Active[0].Subtasks[0]
	assert.True(t, st.Completed)
	assert.True(t, st.Hidden)
	require.NotNil(t, st.CompletedDate)
	assert.True(t, st.CompletedDate.Equal(now))

	// Input store untouched.
	assert.False(t, s.Active[0].Subtasks[0].Completed)
}

func TestToggleSubtask_Uncomplete(t *testing.T) {
	now := time.Now()
	s := storeWith(model.Task{ID: 1, Subtasks: []model.Subtask{
		{ID: 1, Completed: true, CompletedDate: date(1), Hidden: true},
	}})

	out, ready := ToggleSubtask(s, 1, 1, now)

	assert.False(t, ready)
	st := out.Active[0].Subtasks[0]
	assert.False(t, st.Completed)
	assert.False(t, st.Hidden)
	assert.Nil(t, st.CompletedDate)
}

func TestToggleSubtask_LastOneReportsReady(t *testing.T) {
	now := time.Now()
	s := storeWith(model.Task{ID: 1, Subtasks: []model.Subtask{
		{ID: 1, Completed: true, CompletedDate: date(1), Hidden: true},
		{ID: 2},
	}})

	out, ready := ToggleSubtask(s, 1, 2, now)

	assert.True(t, ready)
	// The task itself has not migrated yet; that is CompleteTaskIfReady's job.
	assert.Len(t, out.Active, 1)
	assert.False(t, out.Active[0].Completed)
	assert.Empty(t, out.Completed)
}

func TestToggleSubtask_UnknownIDsAreNoops(t *testing.T) {
	s := storeWith(model.Task{ID: 1, Subtasks: []model.Subtask{{ID: 1}}})

	out, ready := ToggleSubtask(s, 99, 1, time.Now())
	assert.False(t, ready)
	assert.Equal(t, s, out)

	out, ready = ToggleSubtask(s, 1, 99, time.Now())
	assert.False(t, ready)
	assert.Equal(t, s, out)
}

func TestCompleteTaskIfReady_MovesToCompletedHead(t *testing.T) {
	now := time.Date(2025, time.June, 2, 9, 0, 0, 0, time.UTC)
	stamp := time.Date(2025, time.June, 2, 8, 30, 0, 0, time.UTC)
	s := model.Store{
		Active: []model.Task{{ID: 1, Subtasks: []model.Subtask{
			{ID: 1, Completed: true, CompletedDate: &stamp, Hidden: true},
		}}},
		Completed: []model.Task{{ID: 2, Completed: true, CompletedDate: date(1)}},
	}

	out := CompleteTaskIfReady(s, 1, now)

	assert.Empty(t, out.Active)
	require.Len(t, out.Completed, 2)
	assert.Equal(t, 1, out.Completed[0].ID, "newest first")
	assert.True(t, out.Completed[0].Completed)
	// Single-subtask case: the parent lands with the subtask's own stamp.
	require.NotNil(t, out.Completed[0].CompletedDate)
	assert.True(t, out.Completed[0].CompletedDate.Equal(stamp))
	requireDisjoint(t, out)
}

func TestCompleteTaskIfReady_Idempotent(t *testing.T) {
	now := time.Now()
	s := storeWith(model.Task{ID: 1, Subtasks: []model.Subtask{
		{ID: 1, Completed: true, CompletedDate: date(1), Hidden: true},
	}})

	once := CompleteTaskIfReady(s, 1, now)
	twice := CompleteTaskIfReady(once, 1, now)

	assert.Equal(t, once, twice)
}

func TestCompleteTaskIfReady_ConditionRevoked(t *testing.T) {
	// A subtask was un-toggled during the delay; nothing moves.
	s := storeWith(model.Task{ID: 1, Subtasks: []model.Subtask{
		{ID: 1, Completed: true, CompletedDate: date(1), Hidden: true},
		{ID: 2},
	}})

	out := CompleteTaskIfReady(s, 1, time.Now())
	assert.Equal(t, s, out)
}

func TestToggleTask_BulkCompletionSharesOneTimestamp(t *testing.T) {
	now := time.Date(2025, time.June, 3, 10, 0, 0, 0, time.UTC)
	earlier := time.Date(2025, time.June, 1, 10, 0, 0, 0, time.UTC)
	s := storeWith(model.Task{ID: 1, DueDate: date(5), Subtasks: []model.Subtask{
		{ID: 1, Completed: true, CompletedDate: &earlier, Hidden: true},
		{ID: 2, DueDate: date(4)},
		{ID: 3},
	}})

	out := ToggleTask(s, 1, now)

	require.Len(t, out.Completed, 1)
	task := out.Completed[0]
	assert.True(t, task.Completed)
	require.NotNil(t, task.CompletedDate)
	assert.True(t, task.CompletedDate.Equal(now))

	// Already-completed subtasks keep their own stamp; the rest share
	// the parent's single instant.
	assert.True(t, task.Subtasks[0].CompletedDate.Equal(earlier))
	assert.True(t, task.Subtasks[1].CompletedDate.Equal(now))
	assert.True(t, task.Subtasks[2].CompletedDate.Equal(now))
	for _, st := range task.Subtasks {
		assert.True(t, st.Completed)
		assert.True(t, st.Hidden)
	}
	// Due dates survive completion.
	require.NotNil(t, task.Subtasks[1].DueDate)
	assert.True(t, task.Subtasks[1].DueDate.Equal(*date(4)))
	requireDisjoint(t, out)
}

func TestToggleTask_UncompleteKeepsSubtasks(t *testing.T) {
	s := model.Store{Completed: []model.Task{{
		ID: 1, Completed: true, CompletedDate: date(2),
		Subtasks: []model.Subtask{{ID: 1, Completed: true, CompletedDate: date(2), Hidden: true}},
	}}}

	out := ToggleTask(s, 1, time.Now())

	require.Len(t, out.Active, 1)
	task := out.Active[0]
	assert.False(t, task.Completed)
	assert.Nil(t, task.CompletedDate)
	// Force-uncompleting does not force-uncomplete subtasks.
	assert.True(t, task.Subtasks[0].Completed)
	requireDisjoint(t, out)
}

func TestCompletionCascade_IndividualVsBulk(t *testing.T) {
	base := storeWith(model.Task{ID: 1, Subtasks: []model.Subtask{
		{ID: 1}, {ID: 2}, {ID: 3},
	}})

	// Individually: each subtask gets its own stamp, then the deferred
	// move fires.
	t1 := time.Date(2025, time.June, 1, 9, 0, 0, 0, time.UTC)
	t2 := t1.Add(time.Minute)
	t3 := t2.Add(time.Minute)
	s := base
	var ready bool
	s, ready = ToggleSubtask(s, 1, 1, t1)
	require.False(t, ready)
	s, ready = ToggleSubtask(s, 1, 2, t2)
	require.False(t, ready)
	s, ready = ToggleSubtask(s, 1, 3, t3)
	require.True(t, ready)
	individual := CompleteTaskIfReady(s, 1, t3.Add(time.Second))

	// Bulk: one shared stamp.
	bulk := ToggleTask(base, 1, t1)

	require.Len(t, individual.Completed, 1)
	require.Len(t, bulk.Completed, 1)
	for _, out := range []model.Store{individual, bulk} {
		task := out.Completed[0]
		assert.True(t, task.Completed)
		assert.Empty(t, out.Active)
		for _, st := range task.Subtasks {
			assert.True(t, st.Completed)
			assert.NotNil(t, st.CompletedDate)
		}
	}

	// The intentional divergence: individual stamps differ per subtask,
	// bulk stamps are all the parent's instant.
	it := individual.Completed[0]
	assert.True(t, it.Subtasks[0].CompletedDate.Equal(t1))
	assert.True(t, it.Subtasks[1].CompletedDate.Equal(t2))
	assert.True(t, it.Subtasks[2].CompletedDate.Equal(t3))
	assert.True(t, it.CompletedDate.Equal(t3), "parent inherits latest subtask stamp")

	bt := bulk.Completed[0]
	for _, st := range bt.Subtasks {
		assert.True(t, st.CompletedDate.Equal(t1))
	}
}

func TestRestoreTask_PreservesSubtaskStates(t *testing.T) {
	s := model.Store{Completed: []model.Task{{
		ID: 1, Completed: true, CompletedDate: date(2),
		Subtasks: []model.Subtask{
			{ID: 1, Completed: true, CompletedDate: date(2), Hidden: true},
			{ID: 2, Completed: true, CompletedDate: date(2), Hidden: true},
		},
	}}}

	out := RestoreTask(s, 1)

	require.Len(t, out.Active, 1)
	assert.False(t, out.Active[0].Completed)
	assert.Nil(t, out.Active[0].CompletedDate)
	for _, st := range out.Active[0].Subtasks {
		assert.True(t, st.Completed, "siblings stay completed")
	}
	requireDisjoint(t, out)
}

func TestRestoreSubtaskFromCompletedTask(t *testing.T) {
	s := model.Store{Completed: []model.Task{{
		ID: 1, Completed: true, CompletedDate: date(2),
		Subtasks: []model.Subtask{
			{ID: 1, Completed: true, CompletedDate: date(2), Hidden: true},
			{ID: 2, Completed: true, CompletedDate: date(2), Hidden: true},
		},
	}}}

	out := RestoreSubtaskFromCompletedTask(s, 1, 2)

	require.Len(t, out.Active, 1)
	task := out.Active[0]
	assert.False(t, task.Completed)
	assert.True(t, task.Subtasks[0].Completed, "sibling untouched")
	assert.False(t, task.Subtasks[1].Completed)
	assert.False(t, task.Subtasks[1].Hidden)
	assert.Nil(t, task.Subtasks[1].CompletedDate)
}

func TestRestoreSubtask_ParentStaysCompleted(t *testing.T) {
	// Restoring a single subtask in place does not recompute the parent:
	// the task stays in the completed set with an open subtask inside.
	s := model.Store{Completed: []model.Task{{
		ID: 1, Completed: true, CompletedDate: date(2),
		Subtasks: []model.Subtask{{ID: 1, Completed: true, CompletedDate: date(2), Hidden: true}},
	}}}

	out := RestoreSubtask(s, 1, 1)

	require.Len(t, out.Completed, 1)
	assert.True(t, out.Completed[0].Completed)
	assert.False(t, out.Completed[0].Subtasks[0].Completed)
	assert.Empty(t, out.Active)
}
