package repository

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"

	"github.com/basel-ax/archaeo/internal/config"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Open connects to the configured archive and migrates it. It returns a nil
// repository and db when archiving is disabled.
func Open(ctx context.Context, cfg *config.Config) (*SQLFindingRepository, *sql.DB, error) {
	var (
		driverName string
		dialect    Dialect
	)
	switch cfg.DB.Driver {
	case config.DriverNone:
		return nil, nil, nil
	case config.DriverPostgres:
		driverName, dialect = "postgres", Postgres
	default:
		driverName, dialect = "sqlite", SQLite
	}

	db, err := sql.Open(driverName, cfg.GetDSN())
	if err != nil {
		return nil, nil, errors.Wrap(err, "open archive")
	}
	db.SetMaxOpenConns(cfg.DB.MaxOpenConns)
	db.SetMaxIdleConns(cfg.DB.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.DB.ConnMaxLifetime)
	if dialect == SQLite {
		// a single writer avoids SQLITE_BUSY under concurrent saves
		db.SetMaxOpenConns(1)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, nil, errors.Wrap(err, "connect archive")
	}

	repo := NewSQLFindingRepository(db, dialect)
	if err := repo.Migrate(ctx); err != nil {
		db.Close()
		return nil, nil, err
	}
	return repo, db, nil
}
