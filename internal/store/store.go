package store

import (
	"context"

	"github.com/groblegark/fieldscript/internal/model"
)

// Store defines the persistence interface for field configs and their
// change history.
type Store interface {
	// Field configs. FindFieldConfig returns (nil, nil) when no record
	// exists for the ID; absence is not an error. CreateFieldConfig and
	// UpdateFieldConfig assign a fresh version stamp to cfg before
	// persisting it. CreateFieldConfig returns *model.ConflictError when a
	// record for the ID already exists.
	FindFieldConfig(ctx context.Context, id int64) (*model.FieldConfig, error)
	CreateFieldConfig(ctx context.Context, cfg *model.FieldConfig) error
	UpdateFieldConfig(ctx context.Context, cfg *model.FieldConfig) error
	ListFieldConfigs(ctx context.Context) ([]*model.FieldConfig, error)

	// Changelogs are append-only, ordered by insertion.
	AppendChangelog(ctx context.Context, entry *model.ChangelogEntry) error
	GetChangelogs(ctx context.Context, configID int64) ([]*model.ChangelogEntry, error)
	ListChangelogs(ctx context.Context) ([]*model.ChangelogEntry, error)

	// Lifecycle
	Close() error
}
