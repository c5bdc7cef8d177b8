// Package storage persists small client-side values such as the auth token
// and cached form state, the role browser local/session storage plays for a
// web frontend.
package storage

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/aki307/frext/config"
)

// Well-known keys.
const (
	KeyPrefix        = "frext_"
	AuthTokenKey     = KeyPrefix + "auth_token"
	ProcessingResult = "processingResult" // session store only
)

var ErrNotFound = errors.New("storage: key not found")

// Store is a flat key/value store.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Remove(ctx context.Context, key string) error
}

// PrefixedKey returns the namespaced key used for generic persisted values.
func PrefixedKey(key string) string {
	return KeyPrefix + key
}

// Open returns the local (long-lived) and session stores selected by cfg.
func Open(ctx context.Context, cfg *config.Config) (local Store, session Store, err error) {
	switch cfg.Storage.Driver {
	case "", "file":
		local, err = NewFileStore(cfg.Storage.Dir)
	case "minio":
		var ms *MinioStore
		ms, err = NewMinioStore(&cfg.Minio)
		if err == nil {
			err = ms.EnsureBucket(ctx)
		}
		local = ms
	default:
		err = fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
	if err != nil {
		return nil, nil, err
	}

	session, err = NewFileStore(cfg.Storage.SessionDir)
	if err != nil {
		return nil, nil, err
	}
	return local, session, nil
}

// MemoryStore keeps values for the lifetime of the process.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string][]byte)}
}

func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

func (s *MemoryStore) Set(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = append([]byte(nil), value...)
	return nil
}

func (s *MemoryStore) Remove(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
	return nil
}
