package repository

import (
	"context"
	"encoding/json"
	"errors"

	"socialsphere/internal/models"
	"socialsphere/internal/observability"
	"socialsphere/internal/storage"
)

func decode[T any](key string, raw []byte) ([]T, error) {
	var items []T
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, models.NewDataCorruptError(key, err)
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

// load reads a collection. An absent collection is seeded when seed is
// non-nil, otherwise it reads as empty.
func load[T any](ctx context.Context, d *storeDB, key string, seed func() []T) ([]T, error) {
	log := observability.NewRepoLogger(key)

	raw, found, err := d.store.Read(ctx, key)
	if err != nil {
		return nil, fail(ctx, log, mapStoreError(err), "read")
	}
	if found {
		items, err := decode[T](key, raw)
		if err != nil {
			return nil, fail(ctx, log, err, "read")
		}
		log.LogRead(ctx, map[string]interface{}{"count": len(items)})
		return items, nil
	}
	if seed == nil {
		return []T{}, nil
	}

	var (
		items  []T
		seeded bool
	)
	err = d.store.Update(ctx, key, func(current []byte, exists bool) ([]byte, error) {
		if exists {
			decoded, err := decode[T](key, current)
			if err != nil {
				return nil, err
			}
			items, seeded = decoded, false
			return nil, storage.ErrSkipWrite
		}
		items, seeded = seed(), true
		return json.Marshal(items)
	})
	if err != nil {
		return nil, fail(ctx, log, mapStoreError(err), "seed")
	}
	if seeded {
		log.LogSeed(ctx, len(items))
	}
	return items, nil
}

// mutate applies fn to the decoded collection and stores the result
// atomically. fn may run several times and must only touch its argument.
func mutate[T any](ctx context.Context, d *storeDB, key string, seed func() []T, fn func([]T) ([]T, error)) ([]T, error) {
	var result []T
	err := d.store.Update(ctx, key, func(current []byte, exists bool) ([]byte, error) {
		var items []T
		switch {
		case exists:
			decoded, err := decode[T](key, current)
			if err != nil {
				return nil, err
			}
			items = decoded
		case seed != nil:
			items = seed()
		default:
			items = []T{}
		}

		next, err := fn(items)
		if err != nil {
			return nil, err
		}
		result = next
		return json.Marshal(next)
	})
	if err != nil {
		return nil, fail(ctx, observability.NewRepoLogger(key), mapStoreError(err), "update")
	}
	return result, nil
}

// mapStoreError turns storage failures into application errors. Errors that
// already carry a code pass through.
func mapStoreError(err error) error {
	var appErr *models.AppError
	switch {
	case err == nil:
		return nil
	case errors.As(err, &appErr):
		return err
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	case errors.Is(err, storage.ErrQuotaExceeded):
		return models.NewQuotaExceededError(err)
	case errors.Is(err, storage.ErrConflict):
		return models.NewConflictError("Too many concurrent updates, try again", err)
	default:
		return models.NewInternalError(err)
	}
}

// fail logs unexpected errors and returns err unchanged. Lookup misses and
// validation failures are normal control flow and are not logged.
func fail(ctx context.Context, log *observability.RepoLogger, err error, operation string) error {
	if models.HasCode(err, models.CodeNotFound) || models.HasCode(err, models.CodeValidation) {
		return err
	}
	log.LogError(ctx, err, operation)
	return err
}
