// Package userlock provides per-key mutual exclusion for serializing writes
// to a single user's records. Two completion events for the same user must
// never race each other (read-then-compute-then-write on the day's record),
// while operations on different users stay fully parallel.
// No external dependencies - uses only standard library.
package userlock

import "sync"

// KeyedMutex is a set of mutexes addressed by string key. Locks are created
// lazily on first use and kept for the lifetime of the set; the number of
// distinct keys is bounded by the number of users, so no eviction is needed.
type KeyedMutex struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// New creates an empty KeyedMutex.
func New() *KeyedMutex {
	return &KeyedMutex{
		locks: make(map[string]*sync.Mutex),
	}
}

// Lock acquires the mutex for the given key, blocking until it is available.
func (k *KeyedMutex) Lock(key string) {
	k.get(key).Lock()
}

// Unlock releases the mutex for the given key.
// Unlocking a key that was never locked panics, same as sync.Mutex.
func (k *KeyedMutex) Unlock(key string) {
	k.get(key).Unlock()
}

// Do runs fn while holding the mutex for the given key.
func (k *KeyedMutex) Do(key string, fn func() error) error {
	m := k.get(key)
	m.Lock()
	defer m.Unlock()
	return fn()
}

func (k *KeyedMutex) get(key string) *sync.Mutex {
	k.mu.Lock()
	defer k.mu.Unlock()
	m, ok := k.locks[key]
	if !ok {
		m = &sync.Mutex{}
		k.locks[key] = m
	}
	return m
}
