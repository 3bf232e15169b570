package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/homeservices/marketplace/internal/core/ports"
	"github.com/homeservices/marketplace/internal/infrastructure/config"
	"github.com/homeservices/marketplace/internal/infrastructure/db/kv"
	mongodb "github.com/homeservices/marketplace/internal/infrastructure/db/mongo"
	"github.com/homeservices/marketplace/internal/infrastructure/db/records"
	redisdb "github.com/homeservices/marketplace/internal/infrastructure/db/redis"
)

// backend is an opened record store plus the submission guard that goes
// with it.
type backend struct {
	name    string
	kv      ports.KeyValueStore
	guard   ports.SubmissionGuard
	records *records.Store
}

func (b *backend) Close() error {
	return b.kv.Close()
}

// openBackend connects the configured record store and brings its schema up
// to date.
func openBackend(ctx context.Context, opts *RootOptions) (*backend, error) {
	cfg := opts.cfg
	b := &backend{name: cfg.Store.Backend}

	switch cfg.Store.Backend {
	case config.BackendMemory:
		b.kv = kv.NewMemory()
		b.guard = kv.NewGuard(cfg.SubmissionTTL)

	case config.BackendFile:
		f, err := kv.OpenFile(cfg.Store.FilePath)
		if err != nil {
			return nil, err
		}
		b.kv = f
		b.guard = kv.NewGuard(cfg.SubmissionTTL)

	case config.BackendRedis:
		store, err := redisdb.Open(ctx, redisdb.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			Prefix:   cfg.Redis.Prefix,
		})
		if err != nil {
			return nil, err
		}
		b.kv = store
		b.guard = store.Guard(cfg.SubmissionTTL)

	case config.BackendMongo:
		store, err := mongodb.Open(ctx, cfg.Mongo.URI, cfg.Mongo.Database)
		if err != nil {
			return nil, err
		}
		b.kv = store
		b.guard = kv.NewGuard(cfg.SubmissionTTL)

	default:
		return nil, fmt.Errorf("unknown backend %q", cfg.Store.Backend)
	}

	b.records = records.New(b.kv, opts.log.With().Str("component", "records").Logger())
	if err := records.Migrate(ctx, b.records); err != nil {
		return nil, errors.Join(err, b.Close())
	}

	opts.log.Info().Str("backend", b.name).Msg("record store ready")
	return b, nil
}
