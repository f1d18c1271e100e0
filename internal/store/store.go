// internal/store/store.go

// Package store persists entries and audit logs in SQLite through GORM.
// Every operation is a single parameterized statement; the pipeline performs
// no multi-row transactions and relies on SQLite to serialize writes.
package store

import (
	"context"
	"fmt"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/user/ledgerline/internal/ledger"
)

// Open opens (creating if needed) the SQLite database at path and ensures
// the entries and logs tables exist.
func Open(path string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite at %q: %w", path, err)
	}
	if err := db.AutoMigrate(&ledger.Entry{}, &ledger.LogRecord{}); err != nil {
		return nil, fmt.Errorf("migrate schema: %w", err)
	}
	return db, nil
}

// Entries implements ledger.EntryStore over GORM.
type Entries struct {
	db *gorm.DB
}

// NewEntries creates an entry store.
func NewEntries(db *gorm.DB) *Entries {
	return &Entries{db: db}
}

// Insert persists one entry.
func (s *Entries) Insert(ctx context.Context, entry *ledger.Entry) error {
	if err := s.db.WithContext(ctx).Create(entry).Error; err != nil {
		return fmt.Errorf("insert entry: %w", err)
	}
	return nil
}

// List returns all entries, newest first.
func (s *Entries) List(ctx context.Context) ([]ledger.Entry, error) {
	var entries []ledger.Entry
	if err := s.db.WithContext(ctx).Order("created_at DESC, id DESC").Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	return entries, nil
}

// Update overwrites the date, category, amount, and memo of the entry with
// the given id.
func (s *Entries) Update(ctx context.Context, id uint, entry *ledger.Entry) error {
	res := s.db.WithContext(ctx).Model(&ledger.Entry{}).Where("id = ?", id).Updates(map[string]any{
		"date":     entry.Date,
		"category": entry.Category,
		"amount":   entry.Amount,
		"memo":     entry.Memo,
	})
	if res.Error != nil {
		return fmt.Errorf("update entry %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("update entry %d: not found", id)
	}
	return nil
}

// Logs implements ledger.LogStore over GORM.
type Logs struct {
	db *gorm.DB
}

// NewLogs creates a log store.
func NewLogs(db *gorm.DB) *Logs {
	return &Logs{db: db}
}

// Append persists one log record.
func (s *Logs) Append(ctx context.Context, record *ledger.LogRecord) error {
	if err := s.db.WithContext(ctx).Create(record).Error; err != nil {
		return fmt.Errorf("append log: %w", err)
	}
	return nil
}

// Tail returns up to limit records, newest first.
func (s *Logs) Tail(ctx context.Context, limit int) ([]ledger.LogRecord, error) {
	var records []ledger.LogRecord
	if err := s.db.WithContext(ctx).Order("created_at DESC, id DESC").Limit(limit).Find(&records).Error; err != nil {
		return nil, fmt.Errorf("tail logs: %w", err)
	}
	return records, nil
}

// Prune deletes records created before the cutoff and reports how many went.
func (s *Logs) Prune(ctx context.Context, before time.Time) (int64, error) {
	res := s.db.WithContext(ctx).Where("created_at < ?", before).Delete(&ledger.LogRecord{})
	if res.Error != nil {
		return 0, fmt.Errorf("prune logs: %w", res.Error)
	}
	return res.RowsAffected, nil
}
