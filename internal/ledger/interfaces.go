// internal/ledger/interfaces.go
package ledger

import (
	"context"
	"time"
)

type EntryStore interface {
	Insert(ctx context.Context, entry *Entry) error
	List(ctx context.Context) ([]Entry, error)
	Update(ctx context.Context, id uint, entry *Entry) error
}

type LogStore interface {
	Append(ctx context.Context, record *LogRecord) error
	Tail(ctx context.Context, limit int) ([]LogRecord, error)
	Prune(ctx context.Context, before time.Time) (int64, error)
}
