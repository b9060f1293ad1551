// Package audit defines the contract for the external audit sink. The core
// produces one entry per config write; entry storage is owned by the host.
package audit

import "context"

// Category classifies what kind of object an entry concerns.
type Category string

const CategoryFieldConfig Category = "FIELD_CONFIG"

// Action is the kind of change recorded.
type Action string

const (
	ActionCreated Action = "CREATED"
	ActionUpdated Action = "UPDATED"
)

// Entry is one immutable audit record.
type Entry struct {
	Actor    string   `json:"actor"`
	Category Category `json:"category"`
	Action   Action   `json:"action"`
	Subject  string   `json:"subject"` // configuration identity
}

// Recorder hands entries to the audit sink. Record is synchronous so the
// update path's ordering guarantees hold.
type Recorder interface {
	Record(ctx context.Context, entry Entry) error
}
