// Package records is the local record store: a thin convention over a string
// key-value store holding JSON-encoded collections (users, requests) and
// single-record pointers (the per-browser currentUser, flash messages).
//
// Loading never fails on bad data. A missing or unparseable key reads as an
// empty collection, and individual records that do not match their schema are
// dropped. Only backend failures are returned as errors.
package records

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/homeservices/marketplace/internal/core/ports"
)

// Well-known keys.
const (
	KeyUsers         = "users"
	KeyRequests      = "requests"
	KeyCurrentUser   = "currentUser"
	KeySchemaVersion = "schemaVersion"

	notificationsPrefix = "notifications:"
	flashPrefix         = "flash:"
)

// Store wraps a KeyValueStore with per-key serialization of read-modify-write
// cycles and schema validation of loaded records.
type Store struct {
	kv       ports.KeyValueStore
	validate *validator.Validate
	log      zerolog.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// New returns a Store over kv.
func New(kv ports.KeyValueStore, log zerolog.Logger) *Store {
	return &Store{
		kv:       kv,
		validate: validator.New(),
		log:      log,
		locks:    make(map[string]*sync.Mutex),
	}
}

// KV exposes the backing store (health checks, dumps).
func (s *Store) KV() ports.KeyValueStore {
	return s.kv
}

func (s *Store) lock(key string) func() {
	s.mu.Lock()
	l, ok := s.locks[key]
	if !ok {
		l = &sync.Mutex{}
		s.locks[key] = l
	}
	s.mu.Unlock()

	l.Lock()
	return l.Unlock
}

func (s *Store) conforms(key string, v any) bool {
	if err := s.validate.Struct(v); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("dropping record that does not match schema")
		return false
	}
	return true
}

// Collection is an ordered JSON array stored under one key.
type Collection[T any] struct {
	store     *Store
	key       string
	normalize func(*T)
}

// NewCollection binds a collection of T to key. normalize, when non-nil, is
// applied to every record on load and before save.
func NewCollection[T any](s *Store, key string, normalize func(*T)) *Collection[T] {
	return &Collection[T]{store: s, key: key, normalize: normalize}
}

// Load returns the stored records in storage order. An absent or unparseable
// value yields an empty slice.
func (c *Collection[T]) Load(ctx context.Context) ([]T, error) {
	raw, found, err := c.store.kv.Get(ctx, c.key)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", c.key, err)
	}
	if !found {
		return []T{}, nil
	}

	var elems []json.RawMessage
	if err := json.Unmarshal([]byte(raw), &elems); err != nil {
		c.store.log.Warn().Err(err).Str("key", c.key).Msg("unparseable collection, reading as empty")
		return []T{}, nil
	}

	// Decode per element: a mistyped record is dropped on its own.
	out := make([]T, 0, len(elems))
	for i, elem := range elems {
		var item T
		if err := json.Unmarshal(elem, &item); err != nil {
			c.store.log.Warn().Err(err).Str("key", c.key).Int("index", i).Msg("dropping undecodable record")
			continue
		}
		if c.normalize != nil {
			c.normalize(&item)
		}
		if !c.store.conforms(c.key, item) {
			continue
		}
		out = append(out, item)
	}
	return out, nil
}

// Save serializes items and overwrites the stored value.
func (c *Collection[T]) Save(ctx context.Context, items []T) error {
	if items == nil {
		items = []T{}
	}
	if c.normalize != nil {
		for i := range items {
			c.normalize(&items[i])
		}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encode %s: %w", c.key, err)
	}
	if err := c.store.kv.Set(ctx, c.key, string(data)); err != nil {
		return fmt.Errorf("save %s: %w", c.key, err)
	}
	return nil
}

// Update runs a load, fn, save cycle while holding the key's lock. When fn
// returns an error nothing is written.
func (c *Collection[T]) Update(ctx context.Context, fn func([]T) ([]T, error)) error {
	unlock := c.store.lock(c.key)
	defer unlock()

	items, err := c.Load(ctx)
	if err != nil {
		return err
	}
	next, err := fn(items)
	if err != nil {
		return err
	}
	return c.Save(ctx, next)
}

// Pointer is a single optional JSON object stored under one key.
type Pointer[T any] struct {
	store *Store
	key   string
}

// NewPointer binds a single record of T to key.
func NewPointer[T any](s *Store, key string) *Pointer[T] {
	return &Pointer[T]{store: s, key: key}
}

// Load returns the record, or nil when it is absent, unparseable or does not
// match its schema.
func (p *Pointer[T]) Load(ctx context.Context) (*T, error) {
	raw, found, err := p.store.kv.Get(ctx, p.key)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", p.key, err)
	}
	if !found {
		return nil, nil
	}

	var v T
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		p.store.log.Warn().Err(err).Str("key", p.key).Msg("unparseable record, reading as absent")
		return nil, nil
	}
	if !p.store.conforms(p.key, v) {
		return nil, nil
	}
	return &v, nil
}

// Save overwrites the record.
func (p *Pointer[T]) Save(ctx context.Context, v T) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", p.key, err)
	}
	if err := p.store.kv.Set(ctx, p.key, string(data)); err != nil {
		return fmt.Errorf("save %s: %w", p.key, err)
	}
	return nil
}

// Clear removes the record.
func (p *Pointer[T]) Clear(ctx context.Context) error {
	if err := p.store.kv.Delete(ctx, p.key); err != nil {
		return fmt.Errorf("clear %s: %w", p.key, err)
	}
	return nil
}

// Take loads and clears the record in one locked step.
func (p *Pointer[T]) Take(ctx context.Context) (*T, error) {
	unlock := p.store.lock(p.key)
	defer unlock()

	v, err := p.Load(ctx)
	if err != nil || v == nil {
		return v, err
	}
	if err := p.Clear(ctx); err != nil {
		return nil, err
	}
	return v, nil
}
