package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/starquake/kuis/internal/config"
	"github.com/starquake/kuis/internal/database"
	"github.com/starquake/kuis/internal/document"
	"github.com/starquake/kuis/internal/document/redisdoc"
	"github.com/starquake/kuis/internal/document/sqlitedoc"
)

// Backend is the configured document storage plus the connections it holds open.
type Backend struct {
	Storage document.Storage
	// Redis is set when either the storage or the sessions use Redis.
	Redis *redis.Client

	closers []func() error
}

// OpenBackend opens the storage selected by cfg.StorageDriver.
// The sqlite driver runs migrations before returning.
func OpenBackend(ctx context.Context, cfg *config.Config) (*Backend, error) {
	b := &Backend{}

	if cfg.UsesRedis() {
		b.Redis = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		b.closers = append(b.closers, b.Redis.Close)
	}

	var err error
	switch cfg.StorageDriver {
	case config.StorageDriverFile:
		b.Storage, err = document.NewFileStorage(cfg.DataDir)
	case config.StorageDriverMemory:
		b.Storage = document.NewMemoryStorage()
	case config.StorageDriverSQLite:
		err = b.openSQLite(ctx, cfg)
	case config.StorageDriverRedis:
		b.Storage = redisdoc.New(b.Redis, cfg.RedisPrefix)
	default:
		err = fmt.Errorf("%w: %q", config.ErrUnsupportedDriver, cfg.StorageDriver)
	}
	if err != nil {
		return nil, errors.Join(fmt.Errorf("error opening %s storage: %w", cfg.StorageDriver, err), b.Close())
	}

	return b, nil
}

func (b *Backend) openSQLite(ctx context.Context, cfg *config.Config) error {
	conn, err := database.Open(ctx, cfg.DBDriver, cfg.DBURI, cfg.DBMaxOpenConns, cfg.DBMaxIdleConns, cfg.DBConnMaxLifetime)
	if err != nil {
		return err
	}
	b.closers = append(b.closers, conn.Close)

	database.SetupGoose()
	if err = database.Migrate(ctx, conn); err != nil {
		return err
	}
	b.Storage = sqlitedoc.New(conn)

	return nil
}

// Close releases every connection opened by OpenBackend.
func (b *Backend) Close() error {
	var errs []error
	for i := len(b.closers) - 1; i >= 0; i-- {
		if err := b.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	b.closers = nil

	return errors.Join(errs...)
}
