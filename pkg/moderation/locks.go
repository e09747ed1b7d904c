package moderation

import (
	"sync"
	"time"
)

// subjectLocks serializes all mutating operations on one (guild, user)
// pair. Entries are reference counted and evicted after an idle window
// so the map does not grow with every member ever moderated.
type subjectLocks struct {
	mu      sync.Mutex
	entries map[string]*subjectLock
	idle    time.Duration
}

type subjectLock struct {
	mu       sync.Mutex
	refs     int
	lastUsed time.Time
}

func newSubjectLocks(idle time.Duration) *subjectLocks {
	return &subjectLocks{
		entries: make(map[string]*subjectLock),
		idle:    idle,
	}
}

// Lock acquires the critical section for the subject and returns its
// unlock function.
func (sl *subjectLocks) Lock(guildID, userID string) func() {
	key := guildID + ":" + userID

	sl.mu.Lock()
	entry, ok := sl.entries[key]
	if !ok {
		entry = &subjectLock{}
		sl.entries[key] = entry
	}
	entry.refs++
	sl.evictIdle()
	sl.mu.Unlock()

	entry.mu.Lock()
	return func() {
		entry.mu.Unlock()

		sl.mu.Lock()
		entry.refs--
		entry.lastUsed = time.Now()
		sl.mu.Unlock()
	}
}

// evictIdle removes unreferenced locks past the idle window.
// Caller holds sl.mu.
func (sl *subjectLocks) evictIdle() {
	cutoff := time.Now().Add(-sl.idle)
	for key, entry := range sl.entries {
		if entry.refs == 0 && entry.lastUsed.Before(cutoff) {
			delete(sl.entries, key)
		}
	}
}
