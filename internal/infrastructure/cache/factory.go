package cache

import (
	"context"
	"fmt"

	"github.com/charro/storefront/internal/infrastructure/config"
	"go.uber.org/zap"
)

// KVStore is the contract shared by the Redis, file and in-memory stores
type KVStore interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// KVStoreFactory creates KV stores based on configuration
type KVStoreFactory struct {
	redisConfig           config.RedisConfig
	logger                *zap.Logger
	allowInMemoryFallback bool
	filePath              string
}

// KVStoreFactoryOption is a functional option for configuring the factory
type KVStoreFactoryOption func(*KVStoreFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) KVStoreFactoryOption {
	return func(f *KVStoreFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback overrides the configured fallback behaviour
func WithInMemoryFallback(allow bool) KVStoreFactoryOption {
	return func(f *KVStoreFactory) {
		f.allowInMemoryFallback = allow
	}
}

// WithFileStore makes the factory keep carts in a SQLite file at path when
// Redis is disabled or unreachable. MemoryStorePath opts into a store that
// lives only as long as the process.
func WithFileStore(path string) KVStoreFactoryOption {
	return func(f *KVStoreFactory) {
		f.filePath = path
	}
}

// NewKVStoreFactory creates a new factory
func NewKVStoreFactory(cfg config.RedisConfig, opts ...KVStoreFactoryOption) *KVStoreFactory {
	f := &KVStoreFactory{
		redisConfig:           cfg,
		logger:                zap.NewNop(),
		allowInMemoryFallback: cfg.FallbackToMemory,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// SessionPrefix returns the key prefix isolating one cart session
func (f *KVStoreFactory) SessionPrefix(sessionID string) string {
	return fmt.Sprintf("%ssession:%s:", f.redisConfig.KeyPrefix, sessionID)
}

// CreateRedisStore connects a Redis store scoped to the session
func (f *KVStoreFactory) CreateRedisStore(ctx context.Context, sessionID string) (*RedisKVStore, error) {
	return NewRedisKVStore(ctx, RedisOptions{
		Addr:      f.redisConfig.Addr(),
		Password:  f.redisConfig.Password,
		DB:        f.redisConfig.DB,
		KeyPrefix: f.SessionPrefix(sessionID),
		TTL:       f.redisConfig.TTL,
	})
}

// CreateStore returns a Redis store when Redis is enabled and reachable.
// Otherwise it returns the local store (file, or memory when no file is
// configured), unless fallback is disabled.
func (f *KVStoreFactory) CreateStore(ctx context.Context, sessionID string) (KVStore, error) {
	if !f.redisConfig.Enabled {
		return f.createLocalStore(ctx, sessionID)
	}

	store, err := f.CreateRedisStore(ctx, sessionID)
	if err == nil {
		f.logger.Debug("Using Redis cart storage", zap.String("addr", f.redisConfig.Addr()))
		return store, nil
	}

	if !f.allowInMemoryFallback {
		return nil, fmt.Errorf("redis required for cart storage but unavailable: %w", err)
	}

	f.logger.Warn("Redis unavailable, falling back to local cart storage", zap.Error(err))
	return f.createLocalStore(ctx, sessionID)
}

func (f *KVStoreFactory) createLocalStore(ctx context.Context, sessionID string) (KVStore, error) {
	switch f.filePath {
	case MemoryStorePath:
		f.logger.Debug("Using in-memory cart storage")
		return NewInMemoryKVStore(f.redisConfig.TTL), nil
	case "":
		f.logger.Warn("No cart file configured, using in-memory cart storage. The cart will not survive a restart.")
		return NewInMemoryKVStore(f.redisConfig.TTL), nil
	}

	store, err := NewSQLiteKVStore(ctx, FileStoreOptions{
		Path:    f.filePath,
		Session: sessionID,
		TTL:     f.redisConfig.TTL,
		Logger:  f.logger,
	})
	if err != nil {
		return nil, err
	}
	f.logger.Debug("Using file cart storage", zap.String("path", f.filePath))
	return store, nil
}
