package services

import (
	"fmt"
	"sort"
	"sync"
)

// DayLocker serializes booking work per (restaurant, date) key inside this
// process. Entries are dropped once no goroutine holds or waits for them.
type DayLocker struct {
	mu    sync.Mutex
	locks map[string]*dayLock
}

type dayLock struct {
	mu   sync.Mutex
	refs int
}

func NewDayLocker() *DayLocker {
	return &DayLocker{locks: make(map[string]*dayLock)}
}

func DayKey(restaurantID uint, date string) string {
	return fmt.Sprintf("%d/%s", restaurantID, date)
}

// Lock acquires every key in sorted order and returns the release function.
// Duplicate keys are acquired once.
func (l *DayLocker) Lock(keys ...string) func() {
	uniq := make([]string, 0, len(keys))
	seen := make(map[string]bool, len(keys))
	for _, k := range keys {
		if !seen[k] {
			seen[k] = true
			uniq = append(uniq, k)
		}
	}
	sort.Strings(uniq)

	held := make([]*dayLock, 0, len(uniq))
	for _, k := range uniq {
		l.mu.Lock()
		dl, ok := l.locks[k]
		if !ok {
			dl = &dayLock{}
			l.locks[k] = dl
		}
		dl.refs++
		l.mu.Unlock()

		dl.mu.Lock()
		held = append(held, dl)
	}

	return func() {
		for i := len(held) - 1; i >= 0; i-- {
			held[i].mu.Unlock()
			l.mu.Lock()
			held[i].refs--
			if held[i].refs == 0 {
				delete(l.locks, uniq[i])
			}
			l.mu.Unlock()
		}
	}
}

func (l *DayLocker) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
