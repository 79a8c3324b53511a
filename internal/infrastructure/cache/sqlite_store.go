package cache

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charro/storefront/internal/infrastructure/logger"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"
)

// MemoryStorePath selects the process-local store instead of a file
const MemoryStorePath = ":memory:"

// kvEntry is one stored value. Rows of different sessions share the table.
type kvEntry struct {
	Session   string     `gorm:"primaryKey;type:varchar(200)"`
	EntryKey  string     `gorm:"primaryKey;type:varchar(200)"`
	Value     string     `gorm:"type:text;not null"`
	ExpiresAt *time.Time `gorm:"index"`
}

func (kvEntry) TableName() string {
	return "kv_entries"
}

// FileStoreOptions holds settings for a SQLite-backed KV store
type FileStoreOptions struct {
	Path    string
	Session string
	TTL     time.Duration
	Logger  *zap.Logger
}

// SQLiteKVStore keeps values in a local SQLite file so a cart survives
// between separate CLI invocations.
type SQLiteKVStore struct {
	db      *gorm.DB
	session string
	ttl     time.Duration
	now     func() time.Time
}

// NewSQLiteKVStore opens (creating if needed) the database at opts.Path and
// drops entries of the session that have expired.
func NewSQLiteKVStore(ctx context.Context, opts FileStoreOptions) (*SQLiteKVStore, error) {
	if opts.Path == "" || opts.Path == MemoryStorePath {
		return nil, fmt.Errorf("sqlite kv store needs a file path, got %q", opts.Path)
	}
	if err := os.MkdirAll(filepath.Dir(opts.Path), 0o700); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}

	zapLogger := opts.Logger
	if zapLogger == nil {
		zapLogger = zap.NewNop()
	}

	db, err := gorm.Open(sqlite.Open(opts.Path+"?_busy_timeout=5000"), &gorm.Config{
		Logger: logger.NewGormLogger(zapLogger, gormlogger.Warn, time.Second),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open store %s: %w", opts.Path, err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get store handle: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	s := &SQLiteKVStore{db: db, session: opts.Session, ttl: opts.TTL, now: time.Now}
	if err := db.WithContext(ctx).AutoMigrate(&kvEntry{}); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to prepare store: %w", err)
	}
	if err := s.purgeExpired(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	return s, nil
}

// Get returns the value for key. The boolean is false when the key is absent or expired.
func (s *SQLiteKVStore) Get(ctx context.Context, key string) (string, bool, error) {
	var e kvEntry
	err := s.db.WithContext(ctx).
		Where("session = ? AND entry_key = ?", s.session, key).
		Take(&e).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get %q: %w", key, err)
	}
	if e.ExpiresAt != nil && s.now().After(*e.ExpiresAt) {
		return "", false, nil
	}
	return e.Value, true, nil
}

// Set stores value under key, replacing any previous value
func (s *SQLiteKVStore) Set(ctx context.Context, key, value string) error {
	e := kvEntry{Session: s.session, EntryKey: key, Value: value}
	if s.ttl > 0 {
		exp := s.now().UTC().Add(s.ttl)
		e.ExpiresAt = &exp
	}
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "session"}, {Name: "entry_key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "expires_at"}),
		}).
		Create(&e).Error
	if err != nil {
		return fmt.Errorf("failed to set %q: %w", key, err)
	}
	return nil
}

// Delete removes key. Deleting a missing key is not an error.
func (s *SQLiteKVStore) Delete(ctx context.Context, key string) error {
	err := s.db.WithContext(ctx).
		Where("session = ? AND entry_key = ?", s.session, key).
		Delete(&kvEntry{}).Error
	if err != nil {
		return fmt.Errorf("failed to delete %q: %w", key, err)
	}
	return nil
}

// Close closes the database file
func (s *SQLiteKVStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *SQLiteKVStore) purgeExpired(ctx context.Context) error {
	err := s.db.WithContext(ctx).
		Where("session = ? AND expires_at IS NOT NULL AND expires_at < ?", s.session, s.now().UTC()).
		Delete(&kvEntry{}).Error
	if err != nil {
		return fmt.Errorf("failed to purge expired entries: %w", err)
	}
	return nil
}
