// Package storage provides the key/value persistence layer. Values are opaque
// byte slices stored whole under string keys; every backend offers an atomic
// read-modify-write so callers can mutate a document without losing
// concurrent updates.
package storage

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrQuotaExceeded is returned when a write would exceed the configured capacity.
	ErrQuotaExceeded = errors.New("storage quota exceeded")
	// ErrConflict is returned when an update kept losing races until the retry limit.
	ErrConflict = errors.New("concurrent modification: retry limit reached")
	// ErrSkipWrite can be returned from an UpdateFunc to finish without writing.
	ErrSkipWrite = errors.New("skip write")
)

// UpdateFunc computes the new value of a key from its current value.
// exists is false when the key is absent. It may run more than once and must
// not have side effects beyond its return value.
type UpdateFunc func(current []byte, exists bool) ([]byte, error)

// Store is the persistence contract the repository builds on.
type Store interface {
	// Read returns the value under key. A missing key is reported through
	// found, not as an error.
	Read(ctx context.Context, key string) (value []byte, found bool, err error)
	Write(ctx context.Context, key string, value []byte) error
	Remove(ctx context.Context, key string) error
	// Update atomically replaces the value under key with fn's result.
	Update(ctx context.Context, key string, fn UpdateFunc) error
	Ping(ctx context.Context) error
	Close() error
}

// Options are shared by every backend.
type Options struct {
	// Namespace is prepended to every key.
	Namespace string
	// QuotaBytes caps the size of a single value; the memory backend also
	// applies it to the sum of all values. Zero disables the check.
	QuotaBytes int64
	// MaxRetries bounds optimistic-concurrency attempts in Update.
	MaxRetries int
}

func (o Options) withDefaults() Options {
	if o.MaxRetries <= 0 {
		o.MaxRetries = 16
	}
	return o
}

func (o Options) key(k string) string {
	return o.Namespace + k
}

func (o Options) checkValue(key string, value []byte) error {
	if o.QuotaBytes > 0 && int64(len(value)) > o.QuotaBytes {
		return fmt.Errorf("%w: %q is %d bytes, limit %d", ErrQuotaExceeded, key, len(value), o.QuotaBytes)
	}
	return nil
}
