package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"socialsphere/internal/observability"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// kvEntry is one stored document. Version increases on every write and
// guards conditional updates.
type kvEntry struct {
	Key       string `gorm:"column:kv_key;primaryKey;size:255"`
	Value     []byte `gorm:"column:value;not null"`
	Version   int64  `gorm:"column:version;not null;default:1"`
	UpdatedAt time.Time
}

func (kvEntry) TableName() string {
	return "kv_entries"
}

type sqlStore struct {
	db      *gorm.DB
	opts    Options
	backend string
}

// NewSQLStore builds a Store on an open gorm connection and migrates the kv table.
func NewSQLStore(db *gorm.DB, opts Options) (Store, error) {
	if err := db.AutoMigrate(&kvEntry{}); err != nil {
		return nil, fmt.Errorf("failed to migrate kv_entries: %w", err)
	}
	return newSQLStore(db, opts), nil
}

func newSQLStore(db *gorm.DB, opts Options) *sqlStore {
	return &sqlStore{db: db, opts: opts.withDefaults(), backend: db.Dialector.Name()}
}

// OpenSQLite opens (or creates) a SQLite database file. SQLite allows a single
// writer, so the pool is limited to one connection.
func OpenSQLite(path string, logger *slog.Logger, opts Options) (Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{Logger: newGormLogger(logger)})
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)
	return NewSQLStore(db, opts)
}

// OpenPostgres connects to PostgreSQL with the given DSN.
func OpenPostgres(dsn string, logger *slog.Logger, opts Options) (Store, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: newGormLogger(logger)})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return NewSQLStore(db, opts)
}

func (s *sqlStore) Read(ctx context.Context, key string) ([]byte, bool, error) {
	var e kvEntry
	err := s.db.WithContext(ctx).Where("kv_key = ?", s.opts.key(key)).Take(&e).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read %q: %w", key, err)
	}
	return e.Value, true, nil
}

func (s *sqlStore) Write(ctx context.Context, key string, value []byte) error {
	if err := s.opts.checkValue(key, value); err != nil {
		return err
	}
	now := time.Now()
	entry := kvEntry{Key: s.opts.key(key), Value: value, Version: 1, UpdatedAt: now}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "kv_key"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"value":      value,
			"version":    gorm.Expr("kv_entries.version + 1"),
			"updated_at": now,
		}),
	}).Create(&entry).Error
	if err != nil {
		return fmt.Errorf("write %q: %w", key, err)
	}
	return nil
}

func (s *sqlStore) Remove(ctx context.Context, key string) error {
	err := s.db.WithContext(ctx).Where("kv_key = ?", s.opts.key(key)).Delete(&kvEntry{}).Error
	if err != nil {
		return fmt.Errorf("remove %q: %w", key, err)
	}
	return nil
}

// Update reads the row with its version, then writes conditionally on that
// version. Zero affected rows means another writer got there first.
func (s *sqlStore) Update(ctx context.Context, key string, fn UpdateFunc) error {
	k := s.opts.key(key)
	db := s.db.WithContext(ctx)

	for attempt := 0; attempt < s.opts.MaxRetries; attempt++ {
		var e kvEntry
		exists := true
		err := db.Where("kv_key = ?", k).Take(&e).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			exists = false
		} else if err != nil {
			return fmt.Errorf("read %q: %w", key, err)
		}

		next, err := fn(e.Value, exists)
		if errors.Is(err, ErrSkipWrite) {
			return nil
		}
		if err != nil {
			return err
		}
		if err := s.opts.checkValue(key, next); err != nil {
			return err
		}

		now := time.Now()
		var res *gorm.DB
		if exists {
			res = db.Model(&kvEntry{}).
				Where("kv_key = ? AND version = ?", k, e.Version).
				Updates(map[string]interface{}{
					"value":      next,
					"version":    e.Version + 1,
					"updated_at": now,
				})
		} else {
			res = db.Clauses(clause.OnConflict{DoNothing: true}).
				Create(&kvEntry{Key: k, Value: next, Version: 1, UpdatedAt: now})
		}
		if res.Error != nil {
			return fmt.Errorf("update %q: %w", key, res.Error)
		}
		if res.RowsAffected == 1 {
			return nil
		}
		observability.StoreConflicts.WithLabelValues(s.backend).Inc()
	}
	return fmt.Errorf("update %q: %w", key, ErrConflict)
}

func (s *sqlStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (s *sqlStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
