package datastore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/agrojardin/checkout/libs/logging"

	// postgres driver
	_ "github.com/lib/pq"
)

const (
	defaultMaxOpenConns = 20
	connMaxLifetime     = 5 * time.Minute
)

// Postgres is a wrapper around a postgres database
type Postgres struct {
	*sqlx.DB
}

// NewPostgres opens a pool to databaseURL. When name is not empty the pool
// stats are exported to prometheus under that name.
func NewPostgres(databaseURL, name string) (*Postgres, error) {
	if databaseURL == "" {
		return nil, errors.New("datastore: database url is empty")
	}

	db, err := sqlx.Open("postgres", databaseURL)
	if err != nil {
		return nil, err
	}

	// if we have a connection longer than 5 minutes, kill it
	db.SetConnMaxLifetime(connMaxLifetime)
	db.SetMaxOpenConns(defaultMaxOpenConns)
	// 50% of max open
	db.SetMaxIdleConns(defaultMaxOpenConns / 2)

	if name != "" {
		err := prometheus.Register(collectors.NewDBStatsCollector(db.DB, name))

		var are prometheus.AlreadyRegisteredError
		if err != nil && !errors.As(err, &are) {
			return nil, err
		}
	}

	return &Postgres{DB: db}, nil
}

// RawDB - get the raw db
func (pg *Postgres) RawDB() *sqlx.DB {
	return pg.DB
}

// NewMigrate creates a Migrate instance reading migrations from source
func (pg *Postgres) NewMigrate(source fs.FS) (*migrate.Migrate, error) {
	driver, err := postgres.WithInstance(pg.RawDB().DB, &postgres.Config{})
	if err != nil {
		return nil, err
	}

	src, err := iofs.New(source, ".")
	if err != nil {
		return nil, err
	}

	return migrate.NewWithInstance("iofs", src, "postgres", driver)
}

// Migrate the database up to version
func (pg *Postgres) Migrate(ctx context.Context, source fs.FS, version uint) error {
	logger := logging.Logger(ctx, "datastore.Migrate")

	logger.Info().Msg("attempting database migration")

	m, err := pg.NewMigrate(source)
	if err != nil {
		logger.Error().Err(err).Msg("failed to create a new migration")
		return err
	}

	activeVersion, dirty, err := m.Version()

	subLogger := logger.With().
		Bool("dirty", dirty).
		Uint("db_version", activeVersion).
		Uint("code_version", version).
		Logger()

	subLogger.Info().Msg("database status")

	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		subLogger.Error().Err(err).Msg("failed to get migration version")
		sentry.CaptureMessage(err.Error())
		return fmt.Errorf("failed to get migration version: %w", err)
	}

	// Don't attempt the migration if the code is behind the db or if the migration is in dirty state
	if version < activeVersion || dirty {
		subLogger.Error().Msg("migration not attempted")
		sentry.CaptureMessage(
			fmt.Sprintf("migration not attempted, dirty: %t; code version: %d; db version: %d",
				dirty, version, activeVersion))
		return nil
	}

	if err := m.Migrate(version); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		subLogger.Error().Err(err).Msg("migration failed")
		return err
	}

	return nil
}

// Status reports whether the database answers, for health checks
func (pg *Postgres) Status(ctx context.Context) (map[string]interface{}, bool) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := pg.PingContext(ctx); err != nil {
		return map[string]interface{}{"postgres": err.Error()}, false
	}

	return map[string]interface{}{"postgres": "ok"}, true
}
