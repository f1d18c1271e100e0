package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/user/ledgerline/internal/ledger"
)

type fakeLogStore struct {
	cutoff time.Time
	err    error
}

func (f *fakeLogStore) Append(ctx context.Context, r *ledger.LogRecord) error { return nil }

func (f *fakeLogStore) Tail(ctx context.Context, limit int) ([]ledger.LogRecord, error) {
	return nil, nil
}

func (f *fakeLogStore) Prune(ctx context.Context, before time.Time) (int64, error) {
	f.cutoff = before
	return 3, f.err
}

func TestRunSweepUsesRetentionCutoff(t *testing.T) {
	store := &fakeLogStore{}
	s := New(store, 30, zerolog.Nop())

	s.runSweep()

	want := time.Now().Add(-30 * 24 * time.Hour)
	if diff := store.cutoff.Sub(want); diff < -time.Minute || diff > time.Minute {
		t.Errorf("cutoff = %v, want about %v", store.cutoff, want)
	}
}

func TestRunSweepSwallowsError(t *testing.T) {
	store := &fakeLogStore{err: errors.New("db locked")}
	s := New(store, 7, zerolog.Nop())

	// Must not panic; the next tick gets another chance.
	s.runSweep()
}

func TestStartStop(t *testing.T) {
	s := New(&fakeLogStore{}, 7, zerolog.Nop())
	if err := s.Start(); err != nil {
		t.Fatal(err)
	}
	s.Stop()
}
