package storage

import (
	"context"
	"errors"

	"socialsphere/internal/observability"

	"go.opentelemetry.io/otel/attribute"
)

// instrumented records metrics and spans around another Store.
type instrumented struct {
	next    Store
	backend string
}

// Instrument wraps s so every call is traced and counted under backend.
func Instrument(s Store, backend string) Store {
	return &instrumented{next: s, backend: backend}
}

func (i *instrumented) Read(ctx context.Context, key string) (value []byte, found bool, err error) {
	span, ctx := observability.StartStoreSpan(ctx, i.backend, "read", key)
	defer span.End()
	defer observability.TrackStore(i.backend, "read")(&err)

	value, found, err = i.next.Read(ctx, key)
	span.AddAttributes(attribute.Bool("store.found", found), attribute.Int("store.bytes", len(value)))
	span.SetError(err)
	return value, found, err
}

func (i *instrumented) Write(ctx context.Context, key string, value []byte) (err error) {
	span, ctx := observability.StartStoreSpan(ctx, i.backend, "write", key)
	defer span.End()
	defer observability.TrackStore(i.backend, "write")(&err)

	span.AddAttributes(attribute.Int("store.bytes", len(value)))
	err = i.next.Write(ctx, key, value)
	span.SetError(err)
	return err
}

func (i *instrumented) Remove(ctx context.Context, key string) (err error) {
	span, ctx := observability.StartStoreSpan(ctx, i.backend, "remove", key)
	defer span.End()
	defer observability.TrackStore(i.backend, "remove")(&err)

	err = i.next.Remove(ctx, key)
	span.SetError(err)
	return err
}

func (i *instrumented) Update(ctx context.Context, key string, fn UpdateFunc) (err error) {
	span, ctx := observability.StartStoreSpan(ctx, i.backend, "update", key)
	defer span.End()
	defer observability.TrackStore(i.backend, "update")(&err)

	attempts := 0
	err = i.next.Update(ctx, key, func(current []byte, exists bool) ([]byte, error) {
		attempts++
		return fn(current, exists)
	})
	span.AddAttributes(attribute.Int("store.attempts", attempts))
	if errors.Is(err, ErrConflict) {
		observability.StoreOperations.WithLabelValues(i.backend, "update", observability.OutcomeConflict).Inc()
	}
	span.SetError(err)
	return err
}

func (i *instrumented) Ping(ctx context.Context) error {
	return i.next.Ping(ctx)
}

func (i *instrumented) Close() error {
	return i.next.Close()
}
