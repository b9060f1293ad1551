// Package postgres implements the store.Store interface backed by PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/lib/pq"

	"github.com/groblegark/fieldscript/internal/model"
	"github.com/groblegark/fieldscript/internal/store"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// PostgresStore implements store.Store backed by a PostgreSQL database.
type PostgresStore struct {
	db *sql.DB
}

// Compile-time check that PostgresStore implements store.Store.
var _ store.Store = (*PostgresStore)(nil)

// New opens a connection to the PostgreSQL database at the given URL,
// configures the connection pool, and runs any pending migrations.
func New(databaseURL string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &PostgresStore{db: db}, nil
}

func runMigrations(db *sql.DB) error {
	sourceDriver, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("create migration source: %w", err)
	}

	dbDriver, err := migratepg.WithInstance(db, &migratepg.Config{})
	if err != nil {
		return fmt.Errorf("create migration db driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", sourceDriver, "postgres", dbDriver)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("apply migrations: %w", err)
	}

	return nil
}

// Close closes the underlying database connection.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

func (s *PostgresStore) FindFieldConfig(ctx context.Context, id int64) (*model.FieldConfig, error) {
	return queryFindFieldConfig(ctx, s.db, id)
}

func (s *PostgresStore) CreateFieldConfig(ctx context.Context, cfg *model.FieldConfig) error {
	return queryCreateFieldConfig(ctx, s.db, cfg)
}

func (s *PostgresStore) UpdateFieldConfig(ctx context.Context, cfg *model.FieldConfig) error {
	return queryUpdateFieldConfig(ctx, s.db, cfg)
}

func (s *PostgresStore) ListFieldConfigs(ctx context.Context) ([]*model.FieldConfig, error) {
	return queryListFieldConfigs(ctx, s.db)
}

func (s *PostgresStore) AppendChangelog(ctx context.Context, entry *model.ChangelogEntry) error {
	return queryAppendChangelog(ctx, s.db, entry)
}

func (s *PostgresStore) GetChangelogs(ctx context.Context, configID int64) ([]*model.ChangelogEntry, error) {
	return queryGetChangelogs(ctx, s.db, configID)
}

func (s *PostgresStore) ListChangelogs(ctx context.Context) ([]*model.ChangelogEntry, error) {
	return queryListChangelogs(ctx, s.db)
}
