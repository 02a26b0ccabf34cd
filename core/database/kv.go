package database

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// KVEntry is a row of the key/value table.
type KVEntry struct {
	Key   []byte `gorm:"column:entry_key;primaryKey;type:varbinary(768)"`
	Value []byte `gorm:"column:entry_value;type:blob"`
}

// TableName overrides the GORM default.
func (KVEntry) TableName() string {
	return "kv_entries"
}

// KV is an ordered byte-string store kept in a single table.
type KV struct {
	db *gorm.DB
}

// NewKV creates the table if needed and returns a store on top of it.
func NewKV(db *gorm.DB) (*KV, error) {
	if err := db.AutoMigrate(&KVEntry{}); err != nil {
		return nil, fmt.Errorf("migrate kv table: %w", err)
	}
	return &KV{db: db}, nil
}

// OpenKV returns a store on a table that is known to exist.
func OpenKV(db *gorm.DB) *KV {
	return &KV{db: db}
}

// Get returns the value stored at key.
func (s *KV) Get(ctx context.Context, key []byte) ([]byte, bool, error) {
	var rows []KVEntry
	if err := s.db.WithContext(ctx).Where("entry_key = ?", key).Find(&rows).Error; err != nil {
		return nil, false, fmt.Errorf("kv get: %w", err)
	}
	if len(rows) == 0 {
		return nil, false, nil
	}
	return rows[0].Value, true, nil
}

// Put stores value at key, replacing any previous value.
func (s *KV) Put(ctx context.Context, key, value []byte) error {
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "entry_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"entry_value"}),
	}).Create(&KVEntry{Key: key, Value: value}).Error
	if err != nil {
		return fmt.Errorf("kv put: %w", err)
	}
	return nil
}

// Delete removes key. Deleting a missing key is not an error.
func (s *KV) Delete(ctx context.Context, key []byte) error {
	if err := s.db.WithContext(ctx).Where("entry_key = ?", key).Delete(&KVEntry{}).Error; err != nil {
		return fmt.Errorf("kv delete: %w", err)
	}
	return nil
}

// Scan returns the entries whose key starts with prefix in key order. A
// limit of zero or less returns all of them.
func (s *KV) Scan(ctx context.Context, prefix []byte, limit int) ([]KVEntry, error) {
	q := s.db.WithContext(ctx).Order("entry_key")
	if len(prefix) > 0 {
		q = q.Where("entry_key >= ?", prefix)
		if end := prefixEnd(prefix); end != nil {
			q = q.Where("entry_key < ?", end)
		}
	}
	if limit > 0 {
		q = q.Limit(limit)
	}

	var rows []KVEntry
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("kv scan: %w", err)
	}
	return rows, nil
}

// Count returns the number of stored keys.
func (s *KV) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&KVEntry{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("kv count: %w", err)
	}
	return n, nil
}

// Clear removes every entry.
func (s *KV) Clear(ctx context.Context) (int64, error) {
	res := s.db.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&KVEntry{})
	if res.Error != nil {
		return 0, fmt.Errorf("kv clear: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// prefixEnd returns the smallest key greater than every key with the given
// prefix, or nil when no such key exists.
func prefixEnd(prefix []byte) []byte {
	end := append([]byte{}, prefix...)
	for i := len(end) - 1; i >= 0; i-- {
		if end[i] < 0xff {
			end[i]++
			return end[:i+1]
		}
	}
	return nil
}

// ErrNoTable is returned by VerifyKV when the table is missing.
var ErrNoTable = errors.New("kv table missing")
