package changelog

import (
	"context"

	"github.com/groblegark/fieldscript/internal/model"
)

// Appender is the slice of the store the recorder needs.
type Appender interface {
	AppendChangelog(ctx context.Context, entry *model.ChangelogEntry) error
}

// Recorder appends history entries for config edits. A failed append fails
// the whole update; history is part of the write's durability contract.
type Recorder struct {
	store Appender
}

// NewRecorder returns a Recorder backed by the given store.
func NewRecorder(store Appender) *Recorder {
	return &Recorder{store: store}
}

// Record appends one history entry and returns it with its assigned ID.
func (r *Recorder) Record(ctx context.Context, configID int64, author, diff, comment string) (*model.ChangelogEntry, error) {
	entry := &model.ChangelogEntry{
		ConfigID: configID,
		Author:   author,
		Diff:     diff,
		Comment:  comment,
	}
	if err := r.store.AppendChangelog(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}
