// Package audit defines the immutable before/after trail contract.
// Entries are append-only: nothing ever updates or deletes them.
package audit

import (
	"context"
	"fmt"
	"time"

	"fuelbook/internal/core/id"
)

// Action is the kind of mutation being audited.
type Action string

const (
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Entry is one audit trail record.
type Entry struct {
	ID        id.ID
	Table     string
	RecordID  id.ID
	Action    Action
	OldValues map[string]any
	NewValues map[string]any
	ActorID   id.ID
	CreatedAt time.Time
}

// Recorder persists audit entries. Implementations must append within the
// caller's transaction when one is active.
type Recorder interface {
	Record(ctx context.Context, entry Entry) error
}

// Diff returns the changed fields between two state snapshots.
func Diff(oldState, newState map[string]any) map[string]any {
	changes := make(map[string]any)

	for key, newVal := range newState {
		oldVal, exists := oldState[key]
		if !exists {
			changes[key] = map[string]any{"old": nil, "new": newVal}
		} else if !equal(oldVal, newVal) {
			changes[key] = map[string]any{"old": oldVal, "new": newVal}
		}
	}

	for key, oldVal := range oldState {
		if _, exists := newState[key]; !exists {
			changes[key] = map[string]any{"old": oldVal, "new": nil}
		}
	}

	return changes
}

func equal(a, b any) bool {
	return fmt.Sprint(a) == fmt.Sprint(b)
}
