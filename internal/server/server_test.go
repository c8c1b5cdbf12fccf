package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vinke29/taskdeck/internal/model"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	store, err := OpenStore(filepath.Join(t.TempDir(), "server.db"), slog.New(slog.DiscardHandler))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return New(store, slog.New(slog.DiscardHandler))
}

func doJSON(t *testing.T, srv *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.Engine().ServeHTTP(rec, req)
	return rec
}

func createTask(t *testing.T, srv *Server, user, collection string, task model.Task) string {
	t.Helper()
	rec := doJSON(t, srv, http.MethodPost,
		fmt.Sprintf("/api/users/%s/collections/%s/tasks", user, collection), task)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp struct {
		RemoteID string `json:"remote_id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.RemoteID)
	return resp.RemoteID
}

func listTasks(t *testing.T, srv *Server, user, collection string) []Document {
	t.Helper()
	rec := doJSON(t, srv, http.MethodGet,
		fmt.Sprintf("/api/users/%s/collections/%s/tasks", user, collection), nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Tasks []Document `json:"tasks"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.Tasks
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t)
	rec := doJSON(t, srv, http.MethodGet, "/api/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCreateAndList(t *testing.T) {
	srv := newTestServer(t)

	id := createTask(t, srv, "alice", "active", model.Task{ID: 1, Text: "write report"})
	createTask(t, srv, "alice", "active", model.Task{ID: 2, Text: "send it"})

	docs := listTasks(t, srv, "alice", "active")
	require.Len(t, docs, 2)
	assert.Equal(t, id, docs[0].RemoteID)
	assert.Equal(t, "write report", docs[0].Task.Text)
	assert.Equal(t, id, docs[0].Task.RemoteID, "listed tasks carry their remote identity")
	assert.Equal(t, "send it", docs[1].Task.Text, "active tasks keep insertion order")
}

func TestListScopedByUserAndCollection(t *testing.T) {
	srv := newTestServer(t)

	createTask(t, srv, "alice", "active", model.Task{ID: 1, Text: "alice's"})
	createTask(t, srv, "bob", "active", model.Task{ID: 1, Text: "bob's"})
	createTask(t, srv, "alice", "completed", model.Task{ID: 2, Text: "done", Completed: true})

	docs := listTasks(t, srv, "alice", "active")
	require.Len(t, docs, 1)
	assert.Equal(t, "alice's", docs[0].Task.Text)
}

func TestCompletedListNewestFirst(t *testing.T) {
	srv := newTestServer(t)

	older := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	newer := time.Date(2026, 3, 5, 10, 0, 0, 0, time.UTC)
	createTask(t, srv, "alice", "completed", model.Task{ID: 1, Text: "old", Completed: true, CompletedDate: &older})
	createTask(t, srv, "alice", "completed", model.Task{ID: 2, Text: "new", Completed: true, CompletedDate: &newer})

	docs := listTasks(t, srv, "alice", "completed")
	require.Len(t, docs, 2)
	assert.Equal(t, "new", docs[0].Task.Text)
	assert.Equal(t, "old", docs[1].Task.Text)
}

func TestUpdate(t *testing.T) {
	srv := newTestServer(t)
	id := createTask(t, srv, "alice", "active", model.Task{ID: 1, Text: "draft"})

	rec := doJSON(t, srv, http.MethodPut, "/api/users/alice/tasks/"+id,
		model.Task{ID: 1, Text: "final"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	docs := listTasks(t, srv, "alice", "active")
	require.Len(t, docs, 1)
	assert.Equal(t, "final", docs[0].Task.Text)
}

func TestUpdateMissingReturns404(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPut, "/api/users/alice/tasks/no-such-id",
		model.Task{ID: 1, Text: "anything"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdateOtherUsersTaskReturns404(t *testing.T) {
	srv := newTestServer(t)
	id := createTask(t, srv, "alice", "active", model.Task{ID: 1, Text: "private"})

	rec := doJSON(t, srv, http.MethodPut, "/api/users/bob/tasks/"+id,
		model.Task{ID: 1, Text: "hijacked"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	docs := listTasks(t, srv, "alice", "active")
	require.Len(t, docs, 1)
	assert.Equal(t, "private", docs[0].Task.Text)
}

func TestDelete(t *testing.T) {
	srv := newTestServer(t)
	id := createTask(t, srv, "alice", "active", model.Task{ID: 1, Text: "gone soon"})

	rec := doJSON(t, srv, http.MethodDelete, "/api/users/alice/tasks/"+id, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Empty(t, listTasks(t, srv, "alice", "active"))

	rec = doJSON(t, srv, http.MethodDelete, "/api/users/alice/tasks/"+id, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code, "a second delete finds nothing")
}

func TestMoveKeepsRemoteID(t *testing.T) {
	srv := newTestServer(t)
	id := createTask(t, srv, "alice", "active", model.Task{ID: 1, Text: "finish thesis"})

	done := time.Date(2026, 4, 2, 9, 30, 0, 0, time.UTC)
	rec := doJSON(t, srv, http.MethodPost, "/api/users/alice/tasks/"+id+"/move", moveRequest{
		To:   "completed",
		Task: model.Task{ID: 1, Text: "finish thesis", Completed: true, CompletedDate: &done},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	assert.Empty(t, listTasks(t, srv, "alice", "active"))
	docs := listTasks(t, srv, "alice", "completed")
	require.Len(t, docs, 1)
	assert.Equal(t, id, docs[0].RemoteID, "the document keeps its identity across the move")
	assert.True(t, docs[0].Task.Completed)
	require.NotNil(t, docs[0].Task.CompletedDate)
	assert.True(t, done.Equal(*docs[0].Task.CompletedDate))
}

func TestMoveRejectsUnknownCollection(t *testing.T) {
	srv := newTestServer(t)
	id := createTask(t, srv, "alice", "active", model.Task{ID: 1, Text: "x"})

	rec := doJSON(t, srv, http.MethodPost, "/api/users/alice/tasks/"+id+"/move", moveRequest{
		To:   "archived",
		Task: model.Task{ID: 1},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUnknownCollectionOnList(t *testing.T) {
	srv := newTestServer(t)
	rec := doJSON(t, srv, http.MethodGet, "/api/users/alice/collections/archived/tasks", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateRejectsBadJSON(t *testing.T) {
	srv := newTestServer(t)
	req := httptest.NewRequest(http.MethodPost, "/api/users/alice/collections/active/tasks",
		bytes.NewBufferString("{not json"))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.Engine().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
