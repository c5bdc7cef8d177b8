package state

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"

	"github.com/aki307/frext/storage"
)

// Watcher reports changed storage keys; *storage.FileStore implements it.
type Watcher interface {
	Watch(ctx context.Context) (<-chan string, <-chan error, error)
}

// Persisted mirrors a value to a Store under "frext_<key>". It reads
// lazily on first access and writes on every Set. Storage failures are
// logged and never returned; reads fall back to the default.
type Persisted[T any] struct {
	store  storage.Store
	key    string
	def    T
	logger *slog.Logger

	mu     sync.Mutex
	loaded bool
	value  T
	subs   listeners[T]
}

func NewPersisted[T any](store storage.Store, key string, def T, logger *slog.Logger) *Persisted[T] {
	if logger == nil {
		logger = slog.Default()
	}
	return &Persisted[T]{
		store:  store,
		key:    storage.PrefixedKey(key),
		def:    def,
		logger: logger,
	}
}

func (p *Persisted[T]) Key() string { return p.key }

func (p *Persisted[T]) read(ctx context.Context) T {
	raw, err := p.store.Get(ctx, p.key)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			p.logger.Warn("storage.read_error", "key", p.key, "error", err)
		}
		return p.def
	}
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		p.logger.Warn("storage.decode_error", "key", p.key, "error", err)
		return p.def
	}
	return v
}

func (p *Persisted[T]) Get(ctx context.Context) T {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.loaded {
		p.value = p.read(ctx)
		p.loaded = true
	}
	return p.value
}

// Set updates the value in memory and writes it through to the store.
func (p *Persisted[T]) Set(ctx context.Context, v T) {
	p.mu.Lock()
	p.value = v
	p.loaded = true
	p.write(ctx, v)
	p.mu.Unlock()
	p.subs.emit(v)
}

// Update applies fn to the current value, like a functional setState.
func (p *Persisted[T]) Update(ctx context.Context, fn func(T) T) T {
	p.mu.Lock()
	if !p.loaded {
		p.value = p.read(ctx)
		p.loaded = true
	}
	v := fn(p.value)
	p.value = v
	p.write(ctx, v)
	p.mu.Unlock()
	p.subs.emit(v)
	return v
}

func (p *Persisted[T]) write(ctx context.Context, v T) {
	raw, err := json.Marshal(v)
	if err != nil {
		p.logger.Warn("storage.encode_error", "key", p.key, "error", err)
		return
	}
	if err := p.store.Set(ctx, p.key, raw); err != nil {
		p.logger.Warn("storage.write_error", "key", p.key, "error", err)
	}
}

// Remove deletes the stored value and reverts to the default.
func (p *Persisted[T]) Remove(ctx context.Context) {
	p.mu.Lock()
	if err := p.store.Remove(ctx, p.key); err != nil {
		p.logger.Warn("storage.remove_error", "key", p.key, "error", err)
	}
	p.value = p.def
	p.loaded = true
	v := p.value
	p.mu.Unlock()
	p.subs.emit(v)
}

func (p *Persisted[T]) Subscribe(fn func(T)) (unsubscribe func()) {
	return p.subs.add(fn)
}

// Follow reloads the value whenever another writer changes its key, until
// ctx ends.
func (p *Persisted[T]) Follow(ctx context.Context, w Watcher) error {
	keys, errs, err := w.Watch(ctx)
	if err != nil {
		return err
	}
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case key, ok := <-keys:
				if !ok {
					return
				}
				if key != p.key {
					continue
				}
				p.mu.Lock()
				p.value = p.read(ctx)
				p.loaded = true
				v := p.value
				p.mu.Unlock()
				p.subs.emit(v)
			case err, ok := <-errs:
				if !ok {
					errs = nil
					continue
				}
				p.logger.Warn("storage.watch_error", "key", p.key, "error", err)
			}
		}
	}()
	return nil
}
