// Package guard provides the critical section that serializes every control-plane
// access to engine state.
//
// There is a single exclusive lock, not a reader-writer lock. Blocking callers use
// Lock/WithLock; latency-sensitive pollers use TryLock/TryWithLock and treat a miss
// as a normal result.
package guard

import (
	"sync"
	"sync/atomic"

	"github.com/leandrodaf/synthsync/sdk/contracts"
)

// CriticalSection is a non-reentrant mutual-exclusion guard.
type CriticalSection struct {
	mu     sync.Mutex
	misses atomic.Uint64
}

// New returns an unlocked critical section.
func New() *CriticalSection {
	return &CriticalSection{}
}

// Lock blocks until the guard is acquired.
func (c *CriticalSection) Lock() {
	c.mu.Lock()
}

// Unlock releases the guard.
func (c *CriticalSection) Unlock() {
	c.mu.Unlock()
}

// TryLock acquires the guard only if it is free.
func (c *CriticalSection) TryLock() bool {
	if c.mu.TryLock() {
		return true
	}
	c.misses.Add(1)
	return false
}

// WithLock executes fn while holding the guard. The guard is released even if fn panics.
func (c *CriticalSection) WithLock(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fn()
}

// TryWithLock executes fn only if the guard is free, returning ErrLockUnavailable otherwise.
func (c *CriticalSection) TryWithLock(fn func()) error {
	if !c.TryLock() {
		return contracts.ErrLockUnavailable
	}
	defer c.mu.Unlock()
	fn()
	return nil
}

// Misses reports how many non-blocking acquisitions found the guard held.
func (c *CriticalSection) Misses() uint64 {
	return c.misses.Load()
}

var _ contracts.Guard = (*CriticalSection)(nil)
