// Package reconcile merges task lists coming from different replicas
// (local cache, remote store) into one canonical list without duplicate
// identities.
package reconcile

import (
	"github.com/vinke29/taskdeck/internal/model"
)

// Merge combines two task lists into one with unique task ids. For each
// id, the version carrying a remote id wins over one without; when both
// or neither carry one, the most recently encountered wins (b is
// considered more recent than a, and later entries within a list more
// recent than earlier ones).
//
// Merge is applied to one collection at a time; active and completed
// lists are never merged across each other.
func Merge(a, b []model.Task) []model.Task {
	var out []model.Task
	seen := map[int]int{} // task id -> index in out

	add := func(t model.Task) {
		idx, ok := seen[t.ID]
		if !ok {
			seen[t.ID] = len(out)
			out = append(out, t.Clone())
			return
		}
		// Keep the version with a remote id; otherwise the most
		// recently encountered copy wins.
		if out[idx].RemoteID != "" && t.RemoteID == "" {
			return
		}
		out[idx] = t.Clone()
	}

	for _, t := range a {
		add(t)
	}
	for _, t := range b {
		add(t)
	}
	return out
}

// Dedup collapses duplicate ids within a single list, e.g. after a remote
// move that raced a flush and left a copy in both places.
func Dedup(tasks []model.Task) []model.Task {
	return Merge(tasks, nil)
}
