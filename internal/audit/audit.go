// internal/audit/audit.go

// Package audit appends pipeline milestones to the log store. Appends are
// strictly best-effort: a failure here surfaces on the diagnostic logger and
// nowhere else, so logging can never abort or block the interpretation
// pipeline.
package audit

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/user/ledgerline/internal/ledger"
)

// Audit levels, one per pipeline stage.
const (
	LevelWebhook = "webhook"
	LevelLine    = "line"
	LevelGemini  = "gemini"
	LevelError   = "error"
)

// maxMetaLength caps the stored meta payload.
const maxMetaLength = 1000

// Logger writes append-only LogRecords through a ledger.LogStore.
type Logger struct {
	logs ledger.LogStore
	diag zerolog.Logger
}

// New creates an audit Logger over the given store.
func New(logs ledger.LogStore, diag zerolog.Logger) *Logger {
	return &Logger{logs: logs, diag: diag}
}

// Append records one milestone. It never returns an error and never panics;
// store failures go to the diagnostic logger only.
func (l *Logger) Append(ctx context.Context, level, message, meta string) {
	if l == nil || l.logs == nil {
		return
	}
	record := &ledger.LogRecord{
		Level:   level,
		Message: message,
		Meta:    truncateRunes(meta, maxMetaLength),
	}
	if err := l.logs.Append(ctx, record); err != nil {
		l.diag.Error().Err(err).Str("level", level).Str("message", message).Msg("audit append failed")
	}
}

func truncateRunes(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}
