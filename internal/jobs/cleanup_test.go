package jobs

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCleaner struct {
	mu      sync.Mutex
	expired int64
	calls   int
	err     error
}

func (f *fakeCleaner) DeleteExpiredTokens(_ context.Context, _ time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return 0, f.err
	}
	// Everything expired is gone after the first pass.
	count := f.expired
	f.expired = 0
	return count, nil
}

func (f *fakeCleaner) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestCleanupIsIdempotent(t *testing.T) {
	cleaner := &fakeCleaner{expired: 3}
	c := NewCleanup(discardLogger(), cleaner, time.Hour)

	count, err := cleaner.DeleteExpiredTokens(context.Background(), time.Now())
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)

	// Second pass with nothing expired is a no-op.
	c.runOnce(context.Background(), discardLogger())
	assert.Equal(t, int64(0), cleaner.expired)
	assert.Equal(t, 2, cleaner.callCount())
}

func TestCleanupRunsOnCadenceAndStopsOnCancel(t *testing.T) {
	cleaner := &fakeCleaner{}
	c := NewCleanup(discardLogger(), cleaner, 10*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	done := make(chan struct{})
	go func() {
		c.Run(ctx)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("cleanup loop did not stop on context cancellation")
	}

	assert.GreaterOrEqual(t, cleaner.callCount(), 1)
}

func TestCleanupSurvivesStoreFailures(t *testing.T) {
	cleaner := &fakeCleaner{err: errors.New("store unavailable")}
	c := NewCleanup(discardLogger(), cleaner, 5*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	// A failing store must not panic or break the loop.
	c.Run(ctx)

	assert.GreaterOrEqual(t, cleaner.callCount(), 2)
}
