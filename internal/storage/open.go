package storage

import (
	"context"
	"fmt"

	"github.com/brandlink/engine/pkg/config"
	"github.com/brandlink/engine/pkg/database"
)

// OpenBackend builds the backend selected by cfg.StoreBackend.
func OpenBackend(ctx context.Context, cfg *config.Config) (Backend, error) {
	switch cfg.StoreBackend {
	case config.BackendFile:
		return NewFileBackend(cfg.DataFile), nil
	case config.BackendSQLite:
		return NewSQLiteBackend(ctx, cfg.DataFile, cfg.SnapshotName)
	case config.BackendPostgres, config.BackendMySQL:
		db, err := database.Open(ctx, database.Options{
			Driver:  cfg.StoreBackend,
			DSN:     cfg.DatabaseURL,
			Verbose: cfg.AppEnv == "development" || cfg.AppEnv == "test",
		})
		if err != nil {
			return nil, err
		}
		b, err := NewGormBackend(ctx, db, cfg.SnapshotName)
		if err != nil {
			_ = database.Close(db)
			return nil, err
		}
		return b, nil
	case config.BackendMongo:
		return ConnectMongo(ctx, cfg.MongoURI, cfg.MongoDatabase, cfg.SnapshotName)
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}
