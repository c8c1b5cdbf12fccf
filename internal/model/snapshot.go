package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ErrCorruptSnapshot marks a cached snapshot that failed to parse.
// Callers discard the snapshot and start from an empty list instead of
// treating this as fatal.
var ErrCorruptSnapshot = errors.New("corrupt snapshot")

const snapshotVersion = 1

// snapshot is the envelope persisted to the local cache, one per
// collection. Dates inside ride on time.Time's RFC 3339 JSON encoding,
// which round-trips exactly.
type snapshot struct {
	Version int       `json:"version"`
	SavedAt time.Time `json:"saved_at"`
	Tasks   []Task    `json:"tasks"`
}

// EncodeSnapshot serializes a task list for the local cache.
func EncodeSnapshot(tasks []Task) ([]byte, error) {
	data, err := json.Marshal(snapshot{
		Version: snapshotVersion,
		SavedAt: time.Now().UTC(),
		Tasks:   tasks,
	})
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return data, nil
}

// DecodeSnapshot parses a cached task list. Unparseable or
// wrong-version payloads return ErrCorruptSnapshot.
func DecodeSnapshot(data []byte) ([]Task, error) {
	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptSnapshot, err)
	}
	if snap.Version != snapshotVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrCorruptSnapshot, snap.Version)
	}
	return snap.Tasks, nil
}
