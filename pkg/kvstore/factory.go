package kvstore

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/ekaya-inc/intelhub/pkg/config"
	"github.com/ekaya-inc/intelhub/pkg/database"
)

// Open builds the backend selected by cfg.Store.Backend, namespaced by the
// configured key prefix. The postgres backend applies pending migrations first.
func Open(ctx context.Context, cfg *config.Config, logger *zap.Logger) (Store, error) {
	logger = logger.Named("kvstore")

	var (
		s   Store
		err error
	)
	switch cfg.Store.Backend {
	case config.BackendMemory:
		s = NewMemoryStore()
	case config.BackendSQLite:
		s, err = OpenSQLite(ctx, cfg.Store.SQLitePath)
	case config.BackendPostgres:
		s, err = openPostgres(ctx, cfg, logger)
	case config.BackendRedis:
		s, err = openRedis(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
	if err != nil {
		return nil, err
	}

	logger.Info("Opened store",
		zap.String("backend", cfg.Store.Backend),
		zap.String("key_prefix", cfg.Store.KeyPrefix))

	return WithPrefix(s, cfg.Store.KeyPrefix), nil
}

func openPostgres(ctx context.Context, cfg *config.Config, logger *zap.Logger) (Store, error) {
	db, err := database.NewConnection(ctx, database.ConfigFrom(&cfg.Database), logger)
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(logger); err != nil {
		db.Close()
		return nil, err
	}
	return NewPostgresStore(db.Pool), nil
}

func openRedis(ctx context.Context, cfg *config.Config) (Store, error) {
	client, err := database.NewRedisClient(ctx, &cfg.Redis)
	if err != nil {
		return nil, err
	}
	if client == nil {
		return nil, fmt.Errorf("redis backend selected but redis.host is empty")
	}
	return NewRedisStore(client), nil
}
