package events

import "context"

// Event topic constants
const (
	// TopicConfigInvalidated is broadcast after a config's cached script is
	// dropped locally, so every other process drops the same key.
	TopicConfigInvalidated = "fieldscript.config.invalidated"

	// TopicCacheCleared is broadcast when the whole script cache is cleared.
	TopicCacheCleared = "fieldscript.cache.cleared"

	// TopicFieldChanged signals that a field's derived behavior must be
	// recomputed. Keyed by the owning field, not the configuration:
	// multiple configurations can share an owning field.
	TopicFieldChanged = "fieldscript.field.changed"

	// TopicAuditEntry carries audit entries to the external audit sink.
	TopicAuditEntry = "fieldscript.audit.entry"
)

// Event types

type ConfigInvalidated struct {
	ConfigID int64  `json:"config_id"`
	Origin   string `json:"origin"` // process that performed the invalidation
}

type CacheCleared struct {
	Origin string `json:"origin"`
}

type FieldChanged struct {
	FieldID int64 `json:"field_id"`
}

// Publisher is the interface for emitting events.
type Publisher interface {
	Publish(ctx context.Context, topic string, event any) error
	Close() error
}
