package guard

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leandrodaf/synthsync/sdk/contracts"
)

func TestCriticalSection_TryLockWhileHeld(t *testing.T) {
	cs := New()

	held := make(chan struct{})
	release := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		cs.Lock()
		close(held)
		<-release
		cs.Unlock()
	}()
	<-held

	start := time.Now()
	ok := cs.TryLock()
	assert.False(t, ok, "TryLock must fail while another goroutine holds the guard")
	assert.Less(t, time.Since(start), 100*time.Millisecond, "TryLock must not wait")
	assert.Equal(t, uint64(1), cs.Misses())

	err := cs.TryWithLock(func() { t.Fatal("fn must not run") })
	assert.ErrorIs(t, err, contracts.ErrLockUnavailable)
	assert.Equal(t, uint64(2), cs.Misses())

	close(release)
	<-done

	require.True(t, cs.TryLock())
	cs.Unlock()
}

func TestCriticalSection_WithLockReleasesOnPanic(t *testing.T) {
	cs := New()

	assert.Panics(t, func() {
		cs.WithLock(func() { panic("boom") })
	})

	require.True(t, cs.TryLock(), "guard must be released after a panic")
	cs.Unlock()
}

func TestCriticalSection_SerializesWriters(t *testing.T) {
	cs := New()
	counter := 0

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				cs.WithLock(func() { counter++ })
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 5000, counter)
}

func TestCriticalSection_TryWithLockRunsWhenFree(t *testing.T) {
	cs := New()
	ran := false

	err := cs.TryWithLock(func() { ran = true })

	require.NoError(t, err)
	assert.True(t, ran)
	assert.Equal(t, uint64(0), cs.Misses())
}
