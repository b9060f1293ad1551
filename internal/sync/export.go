// Package sync periodically snapshots field configs and their history as
// JSONL to external destinations.
package sync

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/groblegark/fieldscript/internal/store"
)

// header is the first JSONL record written by ExportJSONL.
type header struct {
	Version        string    `json:"version"`
	Type           string    `json:"type"`
	Timestamp      time.Time `json:"timestamp"`
	ConfigCount    int       `json:"config_count"`
	ChangelogCount int       `json:"changelog_count"`
}

// record wraps a single JSONL line with a type discriminator.
type record struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// ExportJSONL writes all field configs and changelog entries from the store
// as JSONL to w. Configs come out ordered by ID, changelogs by insertion.
func ExportJSONL(ctx context.Context, s store.Store, w io.Writer) error {
	configs, err := s.ListFieldConfigs(ctx)
	if err != nil {
		return fmt.Errorf("list field configs: %w", err)
	}

	changelogs, err := s.ListChangelogs(ctx)
	if err != nil {
		return fmt.Errorf("list changelogs: %w", err)
	}

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)

	// Write header.
	if err := enc.Encode(header{
		Version:        "1",
		Type:           "header",
		Timestamp:      time.Now().UTC(),
		ConfigCount:    len(configs),
		ChangelogCount: len(changelogs),
	}); err != nil {
		return fmt.Errorf("encode header: %w", err)
	}

	for _, cfg := range configs {
		if err := enc.Encode(record{Type: "field_config", Data: cfg}); err != nil {
			return fmt.Errorf("encode field config %d: %w", cfg.ID, err)
		}
	}

	for _, entry := range changelogs {
		if err := enc.Encode(record{Type: "changelog", Data: entry}); err != nil {
			return fmt.Errorf("encode changelog %d: %w", entry.ID, err)
		}
	}

	return nil
}
