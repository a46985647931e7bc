// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package ngx

import (
	"sync"
	"testing"
)

func TestSpinlockExclusion(t *testing.T) {
	var (
		lock    Spinlock
		counter int
		wg      sync.WaitGroup
	)
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 1000; i++ {
				lock.Lock()
				counter++
				lock.Unlock()
			}
		}()
	}
	wg.Wait()

	if counter != 8000 {
		t.Errorf("counter = %d, want 8000", counter)
	}
}

func TestSpinlockTryLock(t *testing.T) {
	var lock Spinlock
	if !lock.TryLock() {
		t.Fatal("TryLock on a free lock failed")
	}
	if lock.TryLock() {
		t.Fatal("TryLock on a held lock succeeded")
	}
	lock.Unlock()
	lock.Unlock()
	if !lock.TryLock() {
		t.Error("lock not free after unlock")
	}
}

func BenchmarkSpinlockUncontended(b *testing.B) {
	var lock Spinlock
	for idx := 0; idx < b.N; idx++ {
		lock.Lock()
		lock.Unlock()
	}
}
