package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"registration-verifier/internal/config"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/sethvargo/go-retry"
	"github.com/sirupsen/logrus"

	_ "github.com/golang-migrate/migrate/v4/source/file" // needed
	_ "github.com/lib/pq"                                // needed
)

// ErrNotConfigured is returned when no DSN is configured
var ErrNotConfigured = errors.New("database is not configured")

var instance *sql.DB

// Enabled returns true if a database is configured
func Enabled() bool {
	return config.Instance().PGDSN != ""
}

// Instance returns a database instance
func Instance() *sql.DB {
	if instance == nil {
		if err := LoadInstance(context.Background()); err != nil {
			panic(err)
		}
	}

	return instance
}

// LoadInstance will load the database instance
func LoadInstance(ctx context.Context) error {
	dsn := config.Instance().PGDSN
	if dsn == "" {
		return ErrNotConfigured
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return err
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return err
	}

	instance = db
	return nil
}

// WaitForInstance retries LoadInstance until it succeeds or timeout elapses
func WaitForInstance(ctx context.Context, timeout time.Duration) error {
	b := retry.WithMaxDuration(timeout, retry.NewConstant(500*time.Millisecond))

	return retry.Do(ctx, b, func(ctx context.Context) error {
		err := LoadInstance(ctx)
		if err == nil || errors.Is(err, ErrNotConfigured) {
			return err
		}

		logrus.WithError(err).Debug("database not ready")
		return retry.RetryableError(err)
	})
}

// Migrate runs the migrations
func Migrate() error {
	migrationsPath := config.Instance().MigrationsPath
	db := Instance()

	logrus.WithField("migrationsPath", migrationsPath).Info("running migrations")
	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return err
	}

	m, err := migrate.NewWithDatabaseInstance(fmt.Sprintf("file://%s", migrationsPath), "postgres", driver)
	if err != nil {
		return err
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return err
	}

	return nil
}

// Scanner is an interface that sql should've provided
// No snark here...
type Scanner interface {
	Scan(...interface{}) error
}
