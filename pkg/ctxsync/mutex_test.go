package ctxsync_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/vinicius-lino-figueiredo/docmap/pkg/ctxsync"
)

// Only one goroutine at a time should hold the lock.
func TestLockIsExclusive(t *testing.T) {
	workers := 500

	n := 0
	mu := ctxsync.NewMutex()

	wg := sync.WaitGroup{}
	wg.Add(workers)

	start := make(chan struct{})

	for range workers {
		go func() {
			defer wg.Done()
			<-start
			mu.Lock()
			defer mu.Unlock()
			n++
		}()
	}

	close(start)
	wg.Wait()

	assert.Equal(t, workers, n)
}

// A cancelled context should interrupt a pending lock.
func TestLockWithContextCancellation(t *testing.T) {
	mu := ctxsync.NewMutex()
	mu.Lock()
	defer mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), time.Millisecond)
	defer cancel()

	err := mu.LockWithContext(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

// TryLock should fail without blocking while the mutex is held.
func TestTryLock(t *testing.T) {
	mu := ctxsync.NewMutex()

	assert.True(t, mu.TryLock())
	assert.False(t, mu.TryLock())
	mu.Unlock()
	assert.True(t, mu.TryLock())
	mu.Unlock()
}

// Unlocking an unlocked mutex should panic.
func TestUnlockOfUnlocked(t *testing.T) {
	mu := ctxsync.NewMutex()
	assert.Panics(t, func() { mu.Unlock() })
}

// WithLock should release the lock after fn returns, even on error.
func TestWithLock(t *testing.T) {
	mu := ctxsync.NewMutex()

	err := mu.WithLock(context.Background(), func() error { return nil })
	assert.NoError(t, err)

	assert.True(t, mu.TryLock())
	mu.Unlock()
}
