package backend

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"fintrack/internal/amqp"
	"fintrack/internal/cache"
	"fintrack/internal/sheets/memory"
	"fintrack/internal/storage"
)

const (
	defaultCacheTTL  = 10 * time.Minute
	defaultCacheSize = 1000
	cleanupInterval  = 5 * time.Minute
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *slog.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *slog.Logger) Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{logger: logger}
}

// CreateBackend opens the record store and, when configured, the AMQP
// publisher. A broker that cannot be reached is logged and skipped.
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*Result, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	var res *Result
	switch config.Type {
	case SQLiteBackend:
		repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
		}
		res = &Result{Store: repo, Ping: repo.Ping, Cleanup: repo.Close}
		f.logger.InfoContext(ctx, "Initialized SQLite backend", "db_path", config.SQLiteDBPath)
	case MemoryBackend:
		res = &Result{Store: memory.New(), Ping: func(context.Context) error { return nil }}
		f.logger.InfoContext(ctx, "Initialized memory backend")
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}

	if config.AMQPURL != "" {
		client, err := amqp.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPQueue)
		if err != nil {
			f.logger.WarnContext(ctx, "Failed to initialize AMQP client, reminders will not be published", "error", err)
		} else {
			res.Publisher = client
			res.Cleanup = chain(res.Cleanup, client.Close)
			f.logger.InfoContext(ctx, "Initialized AMQP client",
				"exchange", config.AMQPExchange,
				"queue", config.AMQPQueue)
		}
	}
	return res, nil
}

// CreateCalcCache builds the calculator result cache. An unreachable Redis
// falls back to the in-memory LRU.
func (f *DefaultFactory) CreateCalcCache(ctx context.Context, config Config) (*CacheResult, error) {
	ttl := config.CacheTTL
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	size := config.CacheSize
	if size <= 0 {
		size = defaultCacheSize
	}

	switch config.Cache {
	case NoCache:
		f.logger.InfoContext(ctx, "Calculator cache disabled")
		return &CacheResult{}, nil
	case RedisCache:
		client := cache.NewRedisClient(config.RedisAddr)
		rc := cache.NewRedisCache[[]byte](client, "fintrack:calc", ttl)
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		err := rc.Ping(pingCtx)
		cancel()
		if err == nil {
			f.logger.InfoContext(ctx, "Initialized Redis calculator cache", "addr", config.RedisAddr, "ttl", ttl)
			return &CacheResult{Cache: rc, Cleanup: client.Close}, nil
		}
		_ = client.Close()
		f.logger.WarnContext(ctx, "Redis unreachable, using in-memory calculator cache", "addr", config.RedisAddr, "error", err)
	case MemoryCache, "":
	default:
		return nil, fmt.Errorf("unsupported cache type: %s", config.Cache)
	}

	lru := cache.NewLRUCache[[]byte](size, ttl)
	manager := cache.NewManager(f.logger)
	manager.Register(lru)
	manager.StartCleanup(cleanupInterval)
	f.logger.InfoContext(ctx, "Initialized in-memory calculator cache", "size", size, "ttl", ttl)
	return &CacheResult{Cache: lru, Cleanup: func() error {
		manager.Stop()
		return nil
	}}, nil
}

// chain runs both cleanups and joins their errors. Either may be nil.
func chain(first, second CleanupFunc) CleanupFunc {
	return func() error {
		var errs []error
		for _, fn := range []CleanupFunc{second, first} {
			if fn != nil {
				errs = append(errs, fn())
			}
		}
		return errors.Join(errs...)
	}
}
