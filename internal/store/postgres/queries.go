package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/lib/pq"

	"github.com/groblegark/fieldscript/internal/model"
	"github.com/groblegark/fieldscript/internal/stamp"
)

// fieldConfigColumns is the column list used for SELECT statements on the
// field_configs table.
const fieldConfigColumns = `id, version, script_body, cacheable, created_at, updated_at`

// changelogColumns is the column list used for SELECT statements on the
// changelogs table.
const changelogColumns = `id, config_id, author, diff, comment, created_at`

// uniqueViolation is the PostgreSQL error code for unique-constraint
// violations.
const uniqueViolation = "23505"

// executor is the interface satisfied by both *sql.DB and *sql.Tx.
type executor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func queryFindFieldConfig(ctx context.Context, db executor, id int64) (*model.FieldConfig, error) {
	row := db.QueryRowContext(ctx, `SELECT `+fieldConfigColumns+` FROM field_configs WHERE id = $1`, id)
	cfg, err := scanFieldConfig(row)
	if errors.Is(err, sql.ErrNoRows) {
		// Absence is not an error; the config just hasn't been customized.
		return nil, nil
	}
	if err != nil {
		return nil, &model.StorageError{Op: "find field config", Err: err}
	}
	return cfg, nil
}

func queryCreateFieldConfig(ctx context.Context, db executor, cfg *model.FieldConfig) error {
	version, err := stamp.New()
	if err != nil {
		return &model.StorageError{Op: "create field config", Err: err}
	}

	now := time.Now().UTC()
	cfg.Version = version
	cfg.CreatedAt = now
	cfg.UpdatedAt = now

	_, err = db.ExecContext(ctx, `
		INSERT INTO field_configs (id, version, script_body, cacheable, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		cfg.ID,
		cfg.Version,
		cfg.ScriptBody,
		cfg.Cacheable,
		cfg.CreatedAt,
		cfg.UpdatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation {
			return &model.ConflictError{ID: cfg.ID}
		}
		return &model.StorageError{Op: "create field config", Err: err}
	}
	return nil
}

func queryUpdateFieldConfig(ctx context.Context, db executor, cfg *model.FieldConfig) error {
	version, err := stamp.New()
	if err != nil {
		return &model.StorageError{Op: "update field config", Err: err}
	}

	cfg.Version = version
	cfg.UpdatedAt = time.Now().UTC()

	res, err := db.ExecContext(ctx, `
		UPDATE field_configs
		SET version = $2, script_body = $3, cacheable = $4, updated_at = $5
		WHERE id = $1`,
		cfg.ID,
		cfg.Version,
		cfg.ScriptBody,
		cfg.Cacheable,
		cfg.UpdatedAt,
	)
	if err != nil {
		return &model.StorageError{Op: "update field config", Err: err}
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return &model.StorageError{Op: "update field config", Err: sql.ErrNoRows}
	}
	return nil
}

func queryListFieldConfigs(ctx context.Context, db executor) ([]*model.FieldConfig, error) {
	rows, err := db.QueryContext(ctx, `SELECT `+fieldConfigColumns+` FROM field_configs ORDER BY id`)
	if err != nil {
		return nil, &model.StorageError{Op: "list field configs", Err: err}
	}
	defer rows.Close()

	var configs []*model.FieldConfig
	for rows.Next() {
		cfg, err := scanFieldConfig(rows)
		if err != nil {
			return nil, &model.StorageError{Op: "list field configs", Err: err}
		}
		configs = append(configs, cfg)
	}
	if err := rows.Err(); err != nil {
		return nil, &model.StorageError{Op: "list field configs", Err: err}
	}
	return configs, nil
}

func queryAppendChangelog(ctx context.Context, db executor, entry *model.ChangelogEntry) error {
	entry.CreatedAt = time.Now().UTC()

	err := db.QueryRowContext(ctx, `
		INSERT INTO changelogs (config_id, author, diff, comment, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`,
		entry.ConfigID,
		entry.Author,
		entry.Diff,
		entry.Comment,
		entry.CreatedAt,
	).Scan(&entry.ID)
	if err != nil {
		return &model.StorageError{Op: "append changelog", Err: err}
	}
	return nil
}

func queryGetChangelogs(ctx context.Context, db executor, configID int64) ([]*model.ChangelogEntry, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT `+changelogColumns+` FROM changelogs WHERE config_id = $1 ORDER BY id`, configID)
	if err != nil {
		return nil, &model.StorageError{Op: "get changelogs", Err: err}
	}
	defer rows.Close()
	return collectChangelogs(rows)
}

func queryListChangelogs(ctx context.Context, db executor) ([]*model.ChangelogEntry, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT `+changelogColumns+` FROM changelogs ORDER BY id`)
	if err != nil {
		return nil, &model.StorageError{Op: "list changelogs", Err: err}
	}
	defer rows.Close()
	return collectChangelogs(rows)
}

func collectChangelogs(rows *sql.Rows) ([]*model.ChangelogEntry, error) {
	var entries []*model.ChangelogEntry
	for rows.Next() {
		entry, err := scanChangelog(rows)
		if err != nil {
			return nil, &model.StorageError{Op: "scan changelog", Err: err}
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, &model.StorageError{Op: "scan changelog", Err: err}
	}
	return entries, nil
}
