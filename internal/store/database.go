package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"consent-expiry/internal/metrics"
)

// Preference is one persisted row of the SQL backend.
type Preference struct {
	Namespace string `gorm:"primaryKey;size:128"`
	Key       string `gorm:"primaryKey;size:255"`
	Value     string `gorm:"type:text;not null"`
	UpdatedAt time.Time
}

// TableName implements gorm's tabler.
func (Preference) TableName() string { return "preferences" }

// OpenSQLite opens (or creates) a SQLite database at path and migrates the
// preferences table. An empty path or ":memory:" gives a shared in-memory DB.
func OpenSQLite(path string) (*gorm.DB, error) {
	var dsn string
	path = strings.TrimSpace(path)
	switch {
	case path == "", strings.EqualFold(path, ":memory:"):
		dsn = "file::memory:?cache=shared"
	default:
		if dir := filepath.Dir(path); dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("store: create sqlite dir: %w", err)
			}
		}
		dsn = fmt.Sprintf("file:%s?_journal_mode=WAL", filepath.ToSlash(path))
	}

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("store: open sqlite: %w", err)
	}

	if err := db.AutoMigrate(&Preference{}); err != nil {
		return nil, fmt.Errorf("store: migrate preferences: %w", err)
	}
	return db, nil
}

// DatabaseBackend keeps preferences in a SQL table, one row per namespace and key.
type DatabaseBackend struct {
	db      *gorm.DB
	metrics *metrics.Registry
}

// NewDatabaseBackend wraps an open, migrated database.
func NewDatabaseBackend(db *gorm.DB, metricsRegistry *metrics.Registry) *DatabaseBackend {
	return &DatabaseBackend{db: db, metrics: metricsRegistry}
}

// Namespace returns the SQL view for name.
func (b *DatabaseBackend) Namespace(name string) Store {
	return instrument(&databaseStore{
		db:        b.db,
		namespace: namespaceOrDefault(name),
	}, b.metrics)
}

// Close releases the underlying connection pool.
func (b *DatabaseBackend) Close() error {
	sqlDB, err := b.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

type databaseStore struct {
	db        *gorm.DB
	namespace string
}

func (s *databaseStore) Get(ctx context.Context, key string) (string, bool, error) {
	var row Preference
	err := s.db.WithContext(ctx).
		Take(&row, "namespace = ? AND key = ?", s.namespace, key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("select preference %q: %w", key, err)
	}
	return row.Value, true, nil
}

func (s *databaseStore) Set(ctx context.Context, key, value string) error {
	row := Preference{
		Namespace: s.namespace,
		Key:       key,
		Value:     value,
		UpdatedAt: time.Now(),
	}

	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "namespace"}, {Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("upsert preference %q: %w", key, err)
	}
	return nil
}

func (s *databaseStore) Remove(ctx context.Context, key string) error {
	err := s.db.WithContext(ctx).
		Where("namespace = ? AND key = ?", s.namespace, key).
		Delete(&Preference{}).Error
	if err != nil {
		return fmt.Errorf("delete preference %q: %w", key, err)
	}
	return nil
}

func (s *databaseStore) List(ctx context.Context) (map[string]string, error) {
	var rows []Preference
	if err := s.db.WithContext(ctx).Where("namespace = ?", s.namespace).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list preferences: %w", err)
	}

	out := make(map[string]string, len(rows))
	for _, row := range rows {
		out[row.Key] = row.Value
	}
	return out, nil
}
