package migrations

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/slok/opsdesk/internal/log"
)

//go:embed sql/*.sql
var migrationFiles embed.FS

// VersionTable is where the applied schema version is tracked.
const VersionTable = "opsdesk_schema_migrations"

// MigratorConfig is the configuration of the migrator.
type MigratorConfig struct {
	DB     *sql.DB
	Logger log.Logger
}

func (c *MigratorConfig) defaults() error {
	if c.DB == nil {
		return fmt.Errorf("db is required")
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "sqlite.Migrator"})
	return nil
}

// Migrator applies the embedded schema migrations.
type Migrator struct {
	db     *sql.DB
	logger log.Logger
}

// NewMigrator returns a new migrator.
func NewMigrator(cfg MigratorConfig) (*Migrator, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Migrator{db: cfg.DB, logger: cfg.Logger}, nil
}

// Up migrates the schema to the latest version.
func (m *Migrator) Up(ctx context.Context) error {
	return m.with(ctx, func(inst *migrate.Migrate) error {
		err := inst.Up()
		if errors.Is(err, migrate.ErrNoChange) {
			m.logger.Debugf("Schema is up to date")
			return nil
		}
		if err != nil {
			return fmt.Errorf("could not run migrations: %w", err)
		}

		v, _, err := inst.Version()
		if err != nil {
			return fmt.Errorf("could not get schema version: %w", err)
		}
		m.logger.Infof("Schema migrated to version %d", v)
		return nil
	})
}

// Down drops the whole schema.
func (m *Migrator) Down(ctx context.Context) error {
	return m.with(ctx, func(inst *migrate.Migrate) error {
		err := inst.Down()
		if err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return fmt.Errorf("could not revert migrations: %w", err)
		}
		m.logger.Debugf("Schema reverted")
		return nil
	})
}

// Version returns the applied schema version, 0 on an empty database. Dirty is true
// when a migration failed halfway and the schema needs a manual fix.
func (m *Migrator) Version(ctx context.Context) (version uint, dirty bool, err error) {
	err = m.with(ctx, func(inst *migrate.Migrate) error {
		version, dirty, err = inst.Version()
		if errors.Is(err, migrate.ErrNilVersion) {
			version, dirty, err = 0, false, nil
		}
		return err
	})
	return version, dirty, err
}

func (m *Migrator) with(ctx context.Context, f func(inst *migrate.Migrate) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	driver, err := sqlite3.WithInstance(m.db, &sqlite3.Config{MigrationsTable: VersionTable})
	if err != nil {
		return fmt.Errorf("could not create driver: %w", err)
	}

	src, err := iofs.New(migrationFiles, "sql")
	if err != nil {
		return fmt.Errorf("could not open embedded migrations: %w", err)
	}
	defer func() {
		if err := src.Close(); err != nil {
			m.logger.Warningf("Could not close migrations source: %s", err)
		}
	}()

	inst, err := migrate.NewWithInstance("iofs", src, "sqlite3", driver)
	if err != nil {
		return fmt.Errorf("could not create migration instance: %w", err)
	}

	return f(inst)
}
