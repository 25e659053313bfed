package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"socialsphere/internal/observability"

	"github.com/redis/go-redis/v9"
)

type metricsHook struct{}

func (h metricsHook) DialHook(next redis.DialHook) redis.DialHook {
	return next
}

func (h metricsHook) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		err := next(ctx, cmd)
		if err != nil && !errors.Is(err, redis.Nil) {
			observability.RedisErrorRate.WithLabelValues(cmd.Name()).Inc()
		}
		return err
	}
}

func (h metricsHook) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return func(ctx context.Context, cmds []redis.Cmder) error {
		err := next(ctx, cmds)
		if err != nil && !errors.Is(err, redis.Nil) && !errors.Is(err, redis.TxFailedErr) {
			observability.RedisErrorRate.WithLabelValues("pipeline").Inc()
		}
		return err
	}
}

// ParseRedisAddr accepts either a redis:// URL or a bare host:port.
func ParseRedisAddr(addr string) (*redis.Options, error) {
	if strings.Contains(addr, "://") {
		opts, err := redis.ParseURL(addr)
		if err != nil {
			return nil, fmt.Errorf("invalid REDIS_URL %q: %w", addr, err)
		}
		return opts, nil
	}
	return &redis.Options{Addr: addr}, nil
}

type redisStore struct {
	client *redis.Client
	opts   Options
}

// NewRedisStore wraps an existing client. Update uses WATCH/MULTI/EXEC.
func NewRedisStore(client *redis.Client, opts Options) Store {
	client.AddHook(metricsHook{})
	return &redisStore{client: client, opts: opts.withDefaults()}
}

func (s *redisStore) Read(ctx context.Context, key string) ([]byte, bool, error) {
	v, err := s.client.Get(ctx, s.opts.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get %q: %w", key, err)
	}
	return v, true, nil
}

func (s *redisStore) Write(ctx context.Context, key string, value []byte) error {
	if err := s.opts.checkValue(key, value); err != nil {
		return err
	}
	if err := s.client.Set(ctx, s.opts.key(key), value, 0).Err(); err != nil {
		return fmt.Errorf("redis set %q: %w", key, err)
	}
	return nil
}

func (s *redisStore) Remove(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.opts.key(key)).Err(); err != nil {
		return fmt.Errorf("redis del %q: %w", key, err)
	}
	return nil
}

func (s *redisStore) Update(ctx context.Context, key string, fn UpdateFunc) error {
	k := s.opts.key(key)

	txf := func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, k).Bytes()
		exists := true
		if errors.Is(err, redis.Nil) {
			current, exists = nil, false
		} else if err != nil {
			return fmt.Errorf("redis get %q: %w", key, err)
		}

		next, err := fn(current, exists)
		if err != nil {
			return err
		}
		if err := s.opts.checkValue(key, next); err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, k, next, 0)
			return nil
		})
		return err
	}

	for attempt := 0; attempt < s.opts.MaxRetries; attempt++ {
		err := s.client.Watch(ctx, txf, k)
		switch {
		case err == nil, errors.Is(err, ErrSkipWrite):
			return nil
		case errors.Is(err, redis.TxFailedErr):
			observability.StoreConflicts.WithLabelValues("redis").Inc()
			continue
		default:
			return err
		}
	}
	return fmt.Errorf("update %q: %w", key, ErrConflict)
}

func (s *redisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *redisStore) Close() error {
	return s.client.Close()
}
