// Package model defines the domain types for scripted field configuration.
package model

import "time"

// CommentMaxLength is the maximum length of an edit comment.
const CommentMaxLength = 200

// CreatedComment is the changelog comment recorded when a config is first
// customized. Creation needs no caller comment; the diff carries the body.
const CreatedComment = "Created."

// FieldConfig is the durable customization record for one field
// configuration. At most one record exists per config ID; the record is
// created lazily on first edit and mutated in place afterwards.
type FieldConfig struct {
	ID         int64     `json:"id"` // configuration identity, shared with the catalog
	Version    string    `json:"version"`
	ScriptBody string    `json:"script_body"`
	Cacheable  bool      `json:"cacheable"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// ChangelogEntry is one immutable history record of a config edit.
type ChangelogEntry struct {
	ID        int64     `json:"id"`
	ConfigID  int64     `json:"config_id"`
	Author    string    `json:"author"`
	Diff      string    `json:"diff"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
}

// FieldScript is the cache-facing view of a config's script. A config that
// was never customized resolves to DefaultFieldScript, not an error.
type FieldScript struct {
	Version    string `json:"version"`
	ScriptBody string `json:"script_body"`
	Cacheable  bool   `json:"cacheable"`
}

// DefaultFieldScript is the resolved script for a config with no backing
// record: empty body, cacheable. Field evaluation depends on this default;
// it must not become an error.
func DefaultFieldScript() FieldScript {
	return FieldScript{Cacheable: true}
}

// ConfigView is the read model joining catalog metadata with the config's
// record (or its default). Computed on demand, never stored.
type ConfigView struct {
	ID          int64             `json:"id"`
	FieldID     int64             `json:"field_id"`
	FieldName   string            `json:"field_name"`
	ContextName string            `json:"context_name"`
	Version     string            `json:"version,omitempty"`
	ScriptBody  string            `json:"script_body"`
	Cacheable   bool              `json:"cacheable"`
	Changelogs  []*ChangelogEntry `json:"changelogs,omitempty"`
}

// ConfigForm carries the caller-supplied fields of an update.
type ConfigForm struct {
	ScriptBody string `json:"script_body"`
	Cacheable  bool   `json:"cacheable"`
	Comment    string `json:"comment"`
}
