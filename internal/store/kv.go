package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// KeyValue is a flat string namespace, the shape of browser-style local storage.
type KeyValue interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key string, value string) error
	Delete(ctx context.Context, key string) error
}

type MemoryKV struct {
	mu     sync.RWMutex
	values map[string]string
}

func NewMemoryKV() *MemoryKV {
	return &MemoryKV{values: make(map[string]string)}
}

func (kv *MemoryKV) Get(_ context.Context, key string) (string, bool, error) {
	kv.mu.RLock()
	defer kv.mu.RUnlock()
	value, ok := kv.values[key]
	return value, ok, nil
}

func (kv *MemoryKV) Set(_ context.Context, key string, value string) error {
	kv.mu.Lock()
	defer kv.mu.Unlock()
	kv.values[key] = value
	return nil
}

func (kv *MemoryKV) Delete(_ context.Context, key string) error {
	kv.mu.Lock()
	defer kv.mu.Unlock()
	delete(kv.values, key)
	return nil
}

type kvEntry struct {
	Key       string `gorm:"column:entry_key;primaryKey"`
	Value     string `gorm:"not null"`
	UpdatedAt time.Time
}

func (kvEntry) TableName() string {
	return "kv_entries"
}

// SQLiteKV keeps the namespace in a single table of a local database file.
type SQLiteKV struct {
	database *gorm.DB
}

func NewSQLiteKV(database *gorm.DB) (*SQLiteKV, error) {
	if err := database.AutoMigrate(&kvEntry{}); err != nil {
		return nil, &BackendError{Op: "prepare key-value table", Err: err}
	}
	return &SQLiteKV{database: database}, nil
}

func (kv *SQLiteKV) Get(ctx context.Context, key string) (string, bool, error) {
	var entry kvEntry
	err := kv.database.WithContext(ctx).Where("entry_key = ?", key).First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, &BackendError{Op: "read key " + key, Err: err}
	}
	return entry.Value, true, nil
}

func (kv *SQLiteKV) Set(ctx context.Context, key string, value string) error {
	entry := kvEntry{Key: key, Value: value, UpdatedAt: time.Now().UTC()}
	err := kv.database.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "entry_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&entry).Error
	if err != nil {
		return &BackendError{Op: "write key " + key, Err: err}
	}
	return nil
}

func (kv *SQLiteKV) Delete(ctx context.Context, key string) error {
	if err := kv.database.WithContext(ctx).Where("entry_key = ?", key).Delete(&kvEntry{}).Error; err != nil {
		return &BackendError{Op: "delete key " + key, Err: err}
	}
	return nil
}
