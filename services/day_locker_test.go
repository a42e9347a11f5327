package services

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDayLockerSerializesSameKey(t *testing.T) {
	locker := NewDayLocker()
	key := DayKey(1, "2030-01-02")

	var (
		mu      sync.Mutex
		inside  int
		maxSeen int
		wg      sync.WaitGroup
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := locker.Lock(key)
			mu.Lock()
			inside++
			if inside > maxSeen {
				maxSeen = inside
			}
			mu.Unlock()
			time.Sleep(time.Millisecond)
			mu.Lock()
			inside--
			mu.Unlock()
			unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, maxSeen)
	assert.Equal(t, 0, locker.size())
}

func TestDayLockerIndependentKeys(t *testing.T) {
	locker := NewDayLocker()
	unlockA := locker.Lock(DayKey(1, "2030-01-02"))
	defer unlockA()

	done := make(chan struct{})
	go func() {
		unlock := locker.Lock(DayKey(1, "2030-01-03"), DayKey(2, "2030-01-02"))
		unlock()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("lock on a different day blocked")
	}
}

func TestDayLockerMultipleKeysNoDeadlock(t *testing.T) {
	locker := NewDayLocker()
	a, b := DayKey(1, "2030-01-02"), DayKey(1, "2030-01-03")

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			locker.Lock(a, b, a)()
		}()
		go func() {
			defer wg.Done()
			locker.Lock(b, a)()
		}()
	}

	finished := make(chan struct{})
	go func() {
		wg.Wait()
		close(finished)
	}()
	select {
	case <-finished:
	case <-time.After(5 * time.Second):
		t.Fatal("deadlock acquiring keys in different orders")
	}
	assert.Equal(t, 0, locker.size())
}
