package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/viant/procsim/service/dao"
)

// Option customises a MemoryStore.
type Option[K comparable, T any] func(s *MemoryStore[K, T])

// WithOrder makes List return records sorted by less.
func WithOrder[K comparable, T any](less func(a, b *T) bool) Option[K, T] {
	return func(s *MemoryStore[K, T]) {
		s.less = less
	}
}

// WithFilter makes List keep only records accepted for every parameter.
func WithFilter[K comparable, T any](match func(v *T, parameter *dao.Parameter) bool) Option[K, T] {
	return func(s *MemoryStore[K, T]) {
		s.match = match
	}
}

// MemoryStore is a generic in-memory implementation of dao.Service keeping
// entities of type *T mapped by the key returned from keySelector.
type MemoryStore[K comparable, T any] struct {
	mu          sync.RWMutex
	records     map[K]*T
	keySelector func(*T) K
	less        func(a, b *T) bool
	match       func(v *T, parameter *dao.Parameter) bool
}

// NewMemoryStore creates a new MemoryStore.
func NewMemoryStore[K comparable, T any](keySelector func(*T) K, opts ...Option[K, T]) *MemoryStore[K, T] {
	ret := &MemoryStore[K, T]{
		records:     make(map[K]*T),
		keySelector: keySelector,
	}
	for _, opt := range opts {
		opt(ret)
	}
	return ret
}

// Save stores or overwrites a record.
func (s *MemoryStore[K, T]) Save(_ context.Context, v *T) error {
	if v == nil {
		return dao.ErrNilEntity
	}
	key := s.keySelector(v)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[key] = v
	return nil
}

// Load returns a record by key.
func (s *MemoryStore[K, T]) Load(_ context.Context, key K) (*T, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.records[key]
	if !ok {
		return nil, fmt.Errorf("%w: %v", dao.ErrNotFound, key)
	}
	return v, nil
}

// Delete removes a record.
func (s *MemoryStore[K, T]) Delete(_ context.Context, key K) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, key)
	return nil
}

// List returns stored records accepted by the filter, in store order when
// one was configured.
func (s *MemoryStore[K, T]) List(_ context.Context, parameters ...*dao.Parameter) ([]*T, error) {
	s.mu.RLock()
	out := make([]*T, 0, len(s.records))
	for _, v := range s.records {
		if s.accept(v, parameters) {
			out = append(out, v)
		}
	}
	s.mu.RUnlock()
	if s.less != nil {
		sort.SliceStable(out, func(i, j int) bool { return s.less(out[i], out[j]) })
	}
	return out, nil
}

func (s *MemoryStore[K, T]) accept(v *T, parameters []*dao.Parameter) bool {
	if s.match == nil {
		return true
	}
	for _, parameter := range parameters {
		if !s.match(v, parameter) {
			return false
		}
	}
	return true
}
