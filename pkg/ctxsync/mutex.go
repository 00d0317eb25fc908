// Package ctxsync provides synchronization primitives whose blocking
// operations honor context cancellation.
package ctxsync

import "context"

// A Mutex is a mutual exclusion lock that can give up waiting when a context
// is cancelled. The zero value is not usable; create instances with
// [NewMutex].
type Mutex struct {
	acquire chan struct{}
}

// NewMutex creates a new unlocked Mutex.
func NewMutex() *Mutex {
	return &Mutex{acquire: make(chan struct{}, 1)}
}

// Lock locks the mutex, waiting indefinitely.
func (m *Mutex) Lock() {
	m.acquire <- struct{}{}
}

// LockWithContext locks the mutex or gives up when ctx is cancelled,
// returning the cancellation cause. A context that is already cancelled
// never acquires the lock.
func (m *Mutex) LockWithContext(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case m.acquire <- struct{}{}:
		return nil
	}
}

// TryLock tries to lock the mutex and reports whether it succeeded.
func (m *Mutex) TryLock() bool {
	select {
	case m.acquire <- struct{}{}:
		return true
	default:
		return false
	}
}

// Unlock unlocks the mutex. Unlocking an unlocked mutex panics.
func (m *Mutex) Unlock() {
	select {
	case <-m.acquire:
	default:
		panic("ctxsync: unlock of unlocked mutex")
	}
}

// WithLock runs fn while holding the mutex. It returns the context error if
// the lock could not be acquired before cancellation.
func (m *Mutex) WithLock(ctx context.Context, fn func() error) error {
	if err := m.LockWithContext(ctx); err != nil {
		return err
	}
	defer m.Unlock()
	return fn()
}
