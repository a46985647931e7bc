// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package ngx

import (
	"runtime"
	"sync/atomic"
)

const (
	spinRounds   = 64
	spinBackoffs = 4
)

// Spinlock is a hybrid spinlock for short critical sections. It spins
// with a short backoff before yielding the processor, it never parks
// the goroutine. The zero value is unlocked.
type Spinlock struct {
	state atomic.Int32
}

// Lock acquires the lock.
func (s *Spinlock) Lock() {
	for backoff := 1; ; {
		if s.TryLock() {
			return
		}
		for i := 0; i < spinRounds*backoff; i++ {
			if s.state.Load() == 0 {
				break
			}
		}
		if backoff < 1<<spinBackoffs {
			backoff <<= 1
			continue
		}
		runtime.Gosched()
	}
}

// TryLock acquires the lock if it's free and reports whether it did.
func (s *Spinlock) TryLock() bool {
	return s.state.CompareAndSwap(0, 1)
}

// Unlock releases the lock. Unlike sync.Mutex, unlocking a
// free lock is a no-op since we run inside someone else's process.
func (s *Spinlock) Unlock() {
	s.state.Store(0)
}
