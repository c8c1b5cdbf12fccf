package syncer

import (
	"context"
	"errors"

	"github.com/vinke29/taskdeck/internal/model"
)

// Collection names one logical remote collection per user.
type Collection string

const (
	CollectionActive    Collection = "active"
	CollectionCompleted Collection = "completed"
)

// ErrNotFound reports that an update or delete target no longer exists
// remotely, e.g. because it raced a delete. Callers treat it as success
// and do not retry.
var ErrNotFound = errors.New("remote: not found")

// Remote is the narrow surface of the remote document store the
// scheduler writes to. Any other error returned from a write is a
// transport or permission failure: it is logged, local state is kept,
// and the write is retried only on the next natural debounce cycle.
type Remote interface {
	// List returns a user's tasks for one collection: active ordered by
	// insertion, completed by completion date descending.
	List(ctx context.Context, userID string, col Collection) ([]model.Task, error)

	// Create stores a new task and returns the remote id assigned to it.
	Create(ctx context.Context, userID string, col Collection, t model.Task) (string, error)

	// Update overwrites the task identified by its remote id. Returns
	// ErrNotFound when the target vanished remotely.
	Update(ctx context.Context, userID string, col Collection, t model.Task) error

	// Delete removes the task with the given remote id. Returns
	// ErrNotFound when it was already gone.
	Delete(ctx context.Context, userID string, col Collection, remoteID string) error

	// Move transfers a task between collections as create-in-destination
	// plus delete-from-source. A partial failure after the create is
	// tolerated; reconciliation dedups the leftover copy on next load.
	Move(ctx context.Context, userID string, t model.Task, from, to Collection) error
}

// Cache is the local durable fallback replica: synchronous, assumed
// always available, written on every mutation with no debounce.
type Cache interface {
	// Load returns the snapshot stored under key, or ok=false when the
	// key has never been written.
	Load(key string) (data []byte, ok bool, err error)

	// Save stores a snapshot under key, replacing any previous value.
	Save(key string, data []byte) error
}
