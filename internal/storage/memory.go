package storage

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// memoryStore keeps values in process memory, like a browser's local storage:
// one origin, one quota, gone when the process exits.
type memoryStore struct {
	opts Options

	mu   sync.Mutex
	data map[string][]byte
	used int64
}

// NewMemoryStore returns an in-process Store.
func NewMemoryStore(opts Options) Store {
	return &memoryStore{
		opts: opts.withDefaults(),
		data: make(map[string][]byte),
	}
}

func (s *memoryStore) Read(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.data[s.opts.key(key)]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

func (s *memoryStore) Write(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.put(key, value)
}

// put stores value under key. The caller holds mu.
func (s *memoryStore) put(key string, value []byte) error {
	if err := s.opts.checkValue(key, value); err != nil {
		return err
	}
	k := s.opts.key(key)
	used := s.used - int64(len(s.data[k])) + int64(len(value))
	if s.opts.QuotaBytes > 0 && used > s.opts.QuotaBytes {
		return fmt.Errorf("%w: %d of %d bytes in use", ErrQuotaExceeded, used, s.opts.QuotaBytes)
	}
	s.data[k] = append([]byte(nil), value...)
	s.used = used
	return nil
}

func (s *memoryStore) Remove(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := s.opts.key(key)
	s.used -= int64(len(s.data[k]))
	delete(s.data, k)
	return nil
}

// Update runs fn under the store lock, so it never needs to retry.
func (s *memoryStore) Update(ctx context.Context, key string, fn UpdateFunc) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current, exists := s.data[s.opts.key(key)]
	next, err := fn(append([]byte(nil), current...), exists)
	if errors.Is(err, ErrSkipWrite) {
		return nil
	}
	if err != nil {
		return err
	}
	return s.put(key, next)
}

func (s *memoryStore) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (s *memoryStore) Close() error {
	return nil
}
