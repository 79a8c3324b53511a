// Package storage provides object storage for product images.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	catalogapp "github.com/charro/storefront/internal/application/catalog"
	infraconfig "github.com/charro/storefront/internal/infrastructure/config"
	"go.uber.org/zap"
)

// StubImageStorage keeps uploads in memory. Used in development and tests.
type StubImageStorage struct {
	BaseURL string

	mu      sync.RWMutex
	objects map[string][]byte
}

// NewStubImageStorage creates a stub serving URLs under baseURL
func NewStubImageStorage(baseURL string) *StubImageStorage {
	if baseURL == "" {
		baseURL = "http://localhost:8080/images"
	}
	return &StubImageStorage{
		BaseURL: strings.TrimRight(baseURL, "/"),
		objects: make(map[string][]byte),
	}
}

var _ catalogapp.ImageStorage = (*StubImageStorage)(nil)

// Upload records the object and returns its URL
func (s *StubImageStorage) Upload(_ context.Context, key string, data []byte, _ string) (string, error) {
	if key == "" {
		return "", errors.New("storage key is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = append([]byte(nil), data...)
	return s.BaseURL + "/" + key, nil
}

// Delete forgets the object
func (s *StubImageStorage) Delete(_ context.Context, key string) error {
	if key == "" {
		return errors.New("storage key is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, key)
	return nil
}

// Object returns a stored object
func (s *StubImageStorage) Object(key string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.objects[key]
	return data, ok
}

// NewImageStorage picks the backend named in cfg.Backend
func NewImageStorage(cfg *infraconfig.StorageConfig, logger *zap.Logger) (catalogapp.ImageStorage, error) {
	switch cfg.Backend {
	case "", "stub":
		logger.Info("Using stub image storage", zap.String("base_url", cfg.PublicBaseURL))
		return NewStubImageStorage(cfg.PublicBaseURL), nil
	case "s3":
		s, err := NewS3ImageStorage(cfg, WithLogger(logger))
		if err != nil {
			return nil, err
		}
		logger.Info("Using S3 image storage", zap.String("bucket", s.Bucket()), zap.String("endpoint", s.endpoint))
		return s, nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}
