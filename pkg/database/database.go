package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-gpa-api/pkg/config"
)

// Open connects to the SQL backend selected by the storage driver and applies the schema.
func Open(ctx context.Context, cfg *config.Config) (*sqlx.DB, error) {
	var (
		db  *sqlx.DB
		err error
	)
	switch cfg.StorageDriver {
	case config.StoragePostgres:
		db, err = NewPostgres(ctx, cfg.Database)
	case config.StorageSQLite:
		db, err = NewSQLite(ctx, cfg.SQLitePath)
	default:
		return nil, fmt.Errorf("storage driver %q has no SQL backend", cfg.StorageDriver)
	}
	if err != nil {
		return nil, err
	}
	if err := Migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}
