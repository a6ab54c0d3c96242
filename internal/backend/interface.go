package backend

import (
	"context"
	"time"

	"fintrack/internal/cache"
	"fintrack/internal/services"
	"fintrack/internal/sheets"
)

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// Result is an opened record backend with its optional reminder publisher.
type Result struct {
	Store sheets.RecordStore
	// Ping reports whether the store is reachable.
	Ping func(ctx context.Context) error
	// Publisher is nil when AMQP is not configured or unreachable.
	Publisher services.ReminderPublisher
	Cleanup   CleanupFunc
}

// CacheResult is the calculator cache. Cache is nil when caching is disabled.
type CacheResult struct {
	Cache   cache.Cache[[]byte]
	Cleanup CleanupFunc
}

// Factory creates backends based on configuration
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*Result, error)
	CreateCalcCache(ctx context.Context, config Config) (*CacheResult, error)
}

// Config holds configuration for backend creation
type Config struct {
	Type BackendType

	// SQLite specific
	SQLiteDBPath string

	// Reminder publishing, optional
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Calculator cache
	Cache     CacheType
	RedisAddr string
	CacheTTL  time.Duration
	CacheSize int
}

// BackendType represents the type of backend
type BackendType string

const (
	SQLiteBackend BackendType = "sqlite"
	MemoryBackend BackendType = "memory"
)

// String implements fmt.Stringer
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case SQLiteBackend, MemoryBackend:
		return true
	default:
		return false
	}
}

// CacheType selects where calculator results are cached.
type CacheType string

const (
	MemoryCache CacheType = "memory"
	RedisCache  CacheType = "redis"
	NoCache     CacheType = "none"
)

func (ct CacheType) IsValid() bool {
	switch ct {
	case MemoryCache, RedisCache, NoCache:
		return true
	default:
		return false
	}
}
