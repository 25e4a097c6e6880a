package db

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"sort"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

const migrationsDir = "migrations"

// Migrator applies the embedded schema migrations over a dedicated lib/pq
// connection, separate from the gorm pool.
type Migrator struct {
	m    *migrate.Migrate
	conn *sql.DB
}

// MigrationStatus describes one embedded migration and whether the database
// has reached it.
type MigrationStatus struct {
	Version    uint
	Identifier string
	Applied    bool
}

type Status struct {
	Version    uint
	Dirty      bool
	Migrations []MigrationStatus
}

func NewMigrator(dsn string, log zerolog.Logger) (*Migrator, error) {
	conn, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open migration connection: %w", err)
	}

	driver, err := postgres.WithInstance(conn, &postgres.Config{})
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("init migration driver: %w", err)
	}

	src, err := iofs.New(migrationFiles, migrationsDir)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("load embedded migrations: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "postgres", driver)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("init migrator: %w", err)
	}
	m.Log = &migrateLogger{log: log.With().Str("component", "migrate").Logger()}

	return &Migrator{m: m, conn: conn}, nil
}

// Up applies every pending migration. An up-to-date schema is not an error.
func (mg *Migrator) Up() error {
	if err := mg.m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrate up: %w", err)
	}
	return nil
}

func (mg *Migrator) Down(steps int) error {
	if steps < 1 {
		return fmt.Errorf("migrate down: steps must be positive, got %d", steps)
	}
	if err := mg.m.Steps(-steps); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrate down: %w", err)
	}
	return nil
}

// Version reports the applied version; a fresh database reports 0.
func (mg *Migrator) Version() (uint, bool, error) {
	v, dirty, err := mg.m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("migrate version: %w", err)
	}
	return v, dirty, nil
}

func (mg *Migrator) Force(version int) error {
	if err := mg.m.Force(version); err != nil {
		return fmt.Errorf("migrate force %d: %w", version, err)
	}
	return nil
}

func (mg *Migrator) Status() (Status, error) {
	version, dirty, err := mg.Version()
	if err != nil {
		return Status{}, err
	}

	available, err := AvailableMigrations()
	if err != nil {
		return Status{}, err
	}
	for i := range available {
		available[i].Applied = available[i].Version <= version
	}

	return Status{Version: version, Dirty: dirty, Migrations: available}, nil
}

func (mg *Migrator) Close() error {
	srcErr, dbErr := mg.m.Close()
	connErr := mg.conn.Close()
	return errors.Join(srcErr, dbErr, connErr)
}

// AvailableMigrations lists the embedded up migrations in version order.
func AvailableMigrations() ([]MigrationStatus, error) {
	names, err := fs.Glob(migrationFiles, migrationsDir+"/*.up.sql")
	if err != nil {
		return nil, err
	}

	out := make([]MigrationStatus, 0, len(names))
	for _, name := range names {
		parsed, err := source.Parse(name[len(migrationsDir)+1:])
		if err != nil {
			return nil, fmt.Errorf("parse migration %s: %w", name, err)
		}
		out = append(out, MigrationStatus{Version: parsed.Version, Identifier: parsed.Identifier})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Version < out[j].Version })
	return out, nil
}

// RunMigrations brings the schema up to date and releases the migration
// connection.
func RunMigrations(dsn string, log zerolog.Logger) error {
	mg, err := NewMigrator(dsn, log)
	if err != nil {
		return err
	}
	defer mg.Close()

	if err := mg.Up(); err != nil {
		return err
	}

	version, _, err := mg.Version()
	if err != nil {
		return err
	}
	log.Info().Uint("version", version).Msg("database schema up to date")
	return nil
}

type migrateLogger struct {
	log zerolog.Logger
}

func (l *migrateLogger) Printf(format string, v ...any) {
	l.log.Info().Msgf(format, v...)
}

func (l *migrateLogger) Verbose() bool { return false }
