package postgres

import (
	"github.com/groblegark/fieldscript/internal/model"
)

// scannable is the interface satisfied by both *sql.Row and *sql.Rows.
type scannable interface {
	Scan(dest ...any) error
}

// scanFieldConfig scans a single row into a model.FieldConfig.
// The row must contain columns in the order defined by fieldConfigColumns.
func scanFieldConfig(row scannable) (*model.FieldConfig, error) {
	var cfg model.FieldConfig
	err := row.Scan(
		&cfg.ID,
		&cfg.Version,
		&cfg.ScriptBody,
		&cfg.Cacheable,
		&cfg.CreatedAt,
		&cfg.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

// scanChangelog scans a single row into a model.ChangelogEntry.
// The row must contain columns in the order defined by changelogColumns.
func scanChangelog(row scannable) (*model.ChangelogEntry, error) {
	var entry model.ChangelogEntry
	err := row.Scan(
		&entry.ID,
		&entry.ConfigID,
		&entry.Author,
		&entry.Diff,
		&entry.Comment,
		&entry.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &entry, nil
}
