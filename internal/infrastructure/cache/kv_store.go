package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrStoreClosed is returned by operations on a closed store
var ErrStoreClosed = errors.New("kv store is closed")

// RedisOptions holds Redis connection settings for a KV store
type RedisOptions struct {
	Addr      string
	Password  string
	DB        int
	KeyPrefix string
	TTL       time.Duration
}

// RedisKVStore keeps string values in Redis under a fixed key prefix.
// Every write refreshes the key's TTL when one is configured.
type RedisKVStore struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
}

// NewRedisKVStore connects to Redis and verifies the connection with a ping
func NewRedisKVStore(ctx context.Context, opts RedisOptions) (*RedisKVStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewRedisKVStoreWithClient(client, opts.KeyPrefix, opts.TTL), nil
}

// NewRedisKVStoreWithClient wraps an existing client
func NewRedisKVStoreWithClient(client *redis.Client, keyPrefix string, ttl time.Duration) *RedisKVStore {
	return &RedisKVStore{client: client, keyPrefix: keyPrefix, ttl: ttl}
}

// Get returns the value for key. The boolean is false when the key is absent.
func (s *RedisKVStore) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := s.client.Get(ctx, s.keyPrefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get %q: %w", key, err)
	}
	return val, true, nil
}

// Set stores value under key
func (s *RedisKVStore) Set(ctx context.Context, key, value string) error {
	if err := s.client.Set(ctx, s.keyPrefix+key, value, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set %q: %w", key, err)
	}
	return nil
}

// Delete removes key. Deleting a missing key is not an error.
func (s *RedisKVStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.keyPrefix+key).Err(); err != nil {
		return fmt.Errorf("failed to delete %q: %w", key, err)
	}
	return nil
}

// Close closes the Redis client
func (s *RedisKVStore) Close() error {
	return s.client.Close()
}

type memEntry struct {
	value     string
	expiresAt time.Time
}

func (e memEntry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

// InMemoryKVStore is a process-local KV store, used in tests and single-process runs
type InMemoryKVStore struct {
	mu        sync.RWMutex
	entries   map[string]memEntry
	ttl       time.Duration
	now       func() time.Time
	stopChan  chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
	closed    bool
}

// NewInMemoryKVStore creates a store. A positive ttl starts a cleanup goroutine
// that drops expired entries; call Close to stop it.
func NewInMemoryKVStore(ttl time.Duration) *InMemoryKVStore {
	s := &InMemoryKVStore{
		entries:  make(map[string]memEntry),
		ttl:      ttl,
		now:      time.Now,
		stopChan: make(chan struct{}),
	}
	if ttl > 0 {
		s.wg.Add(1)
		go s.cleanupLoop(cleanupInterval(ttl))
	}
	return s
}

// Get returns the value for key. The boolean is false when the key is absent or expired.
func (s *InMemoryKVStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return "", false, ErrStoreClosed
	}

	e, ok := s.entries[key]
	if !ok || e.expired(s.now()) {
		return "", false, nil
	}
	return e.value, true, nil
}

// Set stores value under key
func (s *InMemoryKVStore) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrStoreClosed
	}

	e := memEntry{value: value}
	if s.ttl > 0 {
		e.expiresAt = s.now().Add(s.ttl)
	}
	s.entries[key] = e
	return nil
}

// Delete removes key
func (s *InMemoryKVStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrStoreClosed
	}
	delete(s.entries, key)
	return nil
}

// Len returns the number of live entries
func (s *InMemoryKVStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	now := s.now()
	n := 0
	for _, e := range s.entries {
		if !e.expired(now) {
			n++
		}
	}
	return n
}

// Close stops the cleanup goroutine. Safe to call multiple times.
func (s *InMemoryKVStore) Close() error {
	s.closeOnce.Do(func() {
		close(s.stopChan)
		s.wg.Wait()
		s.mu.Lock()
		s.closed = true
		s.mu.Unlock()
	})
	return nil
}

func (s *InMemoryKVStore) cleanupLoop(interval time.Duration) {
	defer s.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.cleanup()
		}
	}
}

func (s *InMemoryKVStore) cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for key, e := range s.entries {
		if e.expired(now) {
			delete(s.entries, key)
		}
	}
}

func cleanupInterval(ttl time.Duration) time.Duration {
	if ttl < 5*time.Minute {
		return ttl
	}
	return 5 * time.Minute
}
