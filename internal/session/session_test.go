package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vinke29/taskdeck/internal/model"
	"github.com/vinke29/taskdeck/internal/syncer"
)

const (
	testDebounce = 15 * time.Millisecond
	testDelay    = 25 * time.Millisecond
	settle       = 200 * time.Millisecond
)

type memCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMemCache() *memCache { return &memCache{data: map[string][]byte{}} }

func (c *memCache) Load(key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	d, ok := c.data[key]
	return d, ok, nil
}

func (c *memCache) Save(key string, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = append([]byte(nil), data...)
	return nil
}

func (c *memCache) put(t *testing.T, key string, tasks []model.Task) {
	t.Helper()
	data, err := model.EncodeSnapshot(tasks)
	require.NoError(t, err)
	require.NoError(t, c.Save(key, data))
}

type stubRemote struct {
	mu          sync.Mutex
	lists       map[syncer.Collection][]model.Task
	listErr     error
	nextID      int
	creates     []model.Task
	updates     []model.Task
	deletes     []string
	moves       []string      // remote ids, in call order
	createBlock chan struct{} // when set, Create blocks until closed
}

func newStubRemote() *stubRemote {
	return &stubRemote{lists: map[syncer.Collection][]model.Task{}}
}

func (r *stubRemote) List(ctx context.Context, userID string, col syncer.Collection) ([]model.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.listErr != nil {
		return nil, r.listErr
	}
	return model.CloneTasks(r.lists[col]), nil
}

func (r *stubRemote) Create(ctx context.Context, userID string, col syncer.Collection, t model.Task) (string, error) {
	r.mu.Lock()
	block := r.createBlock
	r.mu.Unlock()
	if block != nil {
		<-block
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.creates = append(r.creates, t)
	r.nextID++
	return fmt.Sprintf("r-%d", r.nextID), nil
}

func (r *stubRemote) Update(ctx context.Context, userID string, col syncer.Collection, t model.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.updates = append(r.updates, t)
	return nil
}

func (r *stubRemote) Delete(ctx context.Context, userID string, col syncer.Collection, remoteID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deletes = append(r.deletes, remoteID)
	return nil
}

func (r *stubRemote) Move(ctx context.Context, userID string, t model.Task, from, to syncer.Collection) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.moves = append(r.moves, t.RemoteID)
	return nil
}

func newTestSession(t *testing.T, remote *stubRemote, cache *memCache) *Session {
	s := New(Config{
		Remote:        remote,
		Cache:         cache,
		Logger:        slog.New(slog.DiscardHandler),
		Debounce:      testDebounce,
		CompleteDelay: testDelay,
	})
	t.Cleanup(s.Close)
	return s
}

func signIn(t *testing.T, s *Session, user string) {
	t.Helper()
	require.NoError(t, s.SignIn(context.Background(), user))
}

func TestSignIn_MergesCacheAndRemote(t *testing.T) {
	remote := newStubRemote()
	remote.lists[syncer.CollectionActive] = []model.Task{
		{ID: 1, Text: "synced", RemoteID: "r-1"},
	}
	cache := newMemCache()
	cache.put(t, syncer.CacheKey("alice", syncer.CollectionActive), []model.Task{
		{ID: 1, Text: "stale local copy"},
		{ID: 2, Text: "offline edit"},
	})

	s := newTestSession(t, remote, cache)
	signIn(t, s, "alice")

	active := s.ActiveTasks()
	require.Len(t, active, 2)
	byID := map[int]model.Task{}
	for _, task := range active {
		byID[task.ID] = task
	}
	assert.Equal(t, "synced", byID[1].Text, "the replica holding a remote id wins")
	assert.Equal(t, "offline edit", byID[2].Text)
	assert.True(t, s.Loaded())
}

func TestSignIn_CorruptCacheFallsBackToRemote(t *testing.T) {
	remote := newStubRemote()
	remote.lists[syncer.CollectionActive] = []model.Task{{ID: 1, Text: "ok", RemoteID: "r-1"}}
	cache := newMemCache()
	require.NoError(t, cache.Save(syncer.CacheKey("alice", syncer.CollectionActive), []byte("{not json")))

	s := newTestSession(t, remote, cache)
	signIn(t, s, "alice")

	active := s.ActiveTasks()
	require.Len(t, active, 1)
	assert.Equal(t, "ok", active[0].Text)
}

func TestSignIn_RemoteUnreachableUsesCache(t *testing.T) {
	remote := newStubRemote()
	remote.listErr = fmt.Errorf("connection refused")
	cache := newMemCache()
	cache.put(t, syncer.CacheKey("alice", syncer.CollectionActive), []model.Task{
		{ID: 1, Text: "offline task"},
	})

	s := newTestSession(t, remote, cache)
	signIn(t, s, "alice")

	active := s.ActiveTasks()
	require.Len(t, active, 1)
	assert.Equal(t, "offline task", active[0].Text)
	assert.True(t, s.Loaded(), "an unreachable remote never blocks loading")
}

func TestToggleSubtask_DeferredMigration(t *testing.T) {
	s := newTestSession(t, newStubRemote(), newMemCache())
	signIn(t, s, "alice")

	taskID := s.AddTask("pack bags", nil)
	subID := s.AddSubtask(taskID, "passport")
	s.ToggleSubtask(taskID, subID)

	// Inside the delay window the task is still active.
	require.Len(t, s.ActiveTasks(), 1)
	assert.True(t, s.ActiveTasks()[0].Subtasks[0].Completed)

	time.Sleep(testDelay + settle)

	assert.Empty(t, s.ActiveTasks())
	completed := s.CompletedTasks()
	require.Len(t, completed, 1)
	assert.True(t, completed[0].Completed)
	require.NotNil(t, completed[0].CompletedDate)
}

func TestToggleSubtask_UndoWithinDelayCancelsMigration(t *testing.T) {
	s := newTestSession(t, newStubRemote(), newMemCache())
	signIn(t, s, "alice")

	taskID := s.AddTask("pack bags", nil)
	subID := s.AddSubtask(taskID, "passport")
	s.ToggleSubtask(taskID, subID)
	s.ToggleSubtask(taskID, subID) // change of heart before the timer fires

	time.Sleep(testDelay + settle)

	require.Len(t, s.ActiveTasks(), 1)
	assert.Empty(t, s.CompletedTasks())
	assert.False(t, s.ActiveTasks()[0].Subtasks[0].Completed)
}

func TestToggleTask_RoundTrip(t *testing.T) {
	s := newTestSession(t, newStubRemote(), newMemCache())
	signIn(t, s, "alice")

	taskID := s.AddTask("laundry", nil)
	s.AddSubtask(taskID, "wash")
	s.AddSubtask(taskID, "fold")

	s.ToggleTask(taskID)
	require.Empty(t, s.ActiveTasks())
	completed := s.CompletedTasks()
	require.Len(t, completed, 1)
	for _, sub := range completed[0].Subtasks {
		assert.True(t, sub.Completed)
	}

	s.ToggleTask(taskID)
	require.Len(t, s.ActiveTasks(), 1)
	assert.Empty(t, s.CompletedTasks())
	// Completed markers on the subtasks survive the restore.
	for _, sub := range s.ActiveTasks()[0].Subtasks {
		assert.True(t, sub.Completed)
	}
}

func TestFlush_AttachesRemoteIDToStore(t *testing.T) {
	remote := newStubRemote()
	s := newTestSession(t, remote, newMemCache())
	signIn(t, s, "alice")

	s.AddTask("first sync", nil)
	time.Sleep(settle)

	active := s.ActiveTasks()
	require.Len(t, active, 1)
	assert.Equal(t, "r-1", active[0].RemoteID)

	remote.mu.Lock()
	creates := len(remote.creates)
	remote.mu.Unlock()
	assert.Equal(t, 1, creates)
}

func TestDeleteTask_IssuesRemoteDelete(t *testing.T) {
	remote := newStubRemote()
	remote.lists[syncer.CollectionActive] = []model.Task{{ID: 1, Text: "doomed", RemoteID: "r-9"}}
	s := newTestSession(t, remote, newMemCache())
	signIn(t, s, "alice")

	s.DeleteTask(1)
	time.Sleep(settle)

	assert.Empty(t, s.ActiveTasks())
	remote.mu.Lock()
	defer remote.mu.Unlock()
	require.Len(t, remote.deletes, 1)
	assert.Equal(t, "r-9", remote.deletes[0])
}

func TestUserSwitch_DropsPendingCompletion(t *testing.T) {
	s := newTestSession(t, newStubRemote(), newMemCache())
	signIn(t, s, "alice")

	taskID := s.AddTask("alice's task", nil)
	subID := s.AddSubtask(taskID, "only step")
	s.ToggleSubtask(taskID, subID)

	signIn(t, s, "bob")
	time.Sleep(testDelay + settle)

	assert.Empty(t, s.ActiveTasks())
	assert.Empty(t, s.CompletedTasks(), "alice's deferred completion must not leak into bob's view")
}

func TestUserSwitch_InFlightFlushDoesNotAttach(t *testing.T) {
	remote := newStubRemote()
	block := make(chan struct{})
	remote.createBlock = block

	s := newTestSession(t, remote, newMemCache())
	signIn(t, s, "alice")

	s.AddTask("alice draft", nil)
	time.Sleep(3 * testDebounce) // the flush fired and is now blocked in Create

	// bob's first task reuses numeric id 1, the same id alice's blocked
	// create was scheduled for.
	signIn(t, s, "bob")
	bobID := s.AddTask("bob draft", nil)

	remote.mu.Lock()
	remote.createBlock = nil
	remote.mu.Unlock()
	close(block)
	time.Sleep(settle)

	active := s.ActiveTasks()
	require.Len(t, active, 1)
	require.Equal(t, bobID, active[0].ID)
	assert.NotEqual(t, "r-1", active[0].RemoteID,
		"an id minted by the previous user's flush must never attach to the new user's task")
	assert.Equal(t, "r-2", active[0].RemoteID, "bob's own flush assigns his id")
}

func TestRestoreSubtask_ParentStaysPut(t *testing.T) {
	s := newTestSession(t, newStubRemote(), newMemCache())
	signIn(t, s, "alice")

	taskID := s.AddTask("trip prep", nil)
	a := s.AddSubtask(taskID, "visa")
	b := s.AddSubtask(taskID, "tickets")
	s.ToggleTask(taskID)

	s.RestoreSubtask(taskID, a)

	require.Empty(t, s.ActiveTasks())
	completed := s.CompletedTasks()
	require.Len(t, completed, 1)
	assert.False(t, completed[0].Subtasks[completed[0].SubtaskIndex(a)].Completed)
	assert.True(t, completed[0].Subtasks[completed[0].SubtaskIndex(b)].Completed)
}

func TestRestoreSubtaskFromCompletedTask_ReactivatesParent(t *testing.T) {
	s := newTestSession(t, newStubRemote(), newMemCache())
	signIn(t, s, "alice")

	taskID := s.AddTask("trip prep", nil)
	a := s.AddSubtask(taskID, "visa")
	b := s.AddSubtask(taskID, "tickets")
	s.ToggleTask(taskID)

	s.RestoreSubtaskFromCompletedTask(taskID, a)

	active := s.ActiveTasks()
	require.Len(t, active, 1)
	assert.Empty(t, s.CompletedTasks())
	assert.False(t, active[0].Completed)
	assert.False(t, active[0].Subtasks[active[0].SubtaskIndex(a)].Completed)
	assert.True(t, active[0].Subtasks[active[0].SubtaskIndex(b)].Completed)
}

func TestDrag_ReorderPersists(t *testing.T) {
	s := newTestSession(t, newStubRemote(), newMemCache())
	signIn(t, s, "alice")

	first := s.AddTask("first", nil)
	second := s.AddTask("second", nil)
	third := s.AddTask("third", nil)

	s.BeginDrag(first)
	_, dragging := s.Dragging()
	require.True(t, dragging)
	s.DragOver(third)
	s.Drop()

	got := s.ActiveTasks()
	require.Len(t, got, 3)
	assert.Equal(t, []int{second, third, first}, []int{got[0].ID, got[1].ID, got[2].ID})
}

func TestDrag_CancelRestoresOrder(t *testing.T) {
	s := newTestSession(t, newStubRemote(), newMemCache())
	signIn(t, s, "alice")

	first := s.AddTask("first", nil)
	second := s.AddTask("second", nil)

	s.BeginDrag(first)
	s.DragOver(second)
	preview := s.DragPreview()
	require.Len(t, preview, 2)
	assert.Equal(t, second, preview[0].ID, "preview shows the would-be order")

	s.CancelDrag()
	got := s.ActiveTasks()
	assert.Equal(t, []int{first, second}, []int{got[0].ID, got[1].ID})
}
