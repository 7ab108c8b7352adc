package utils

import "sync"

// KeyedMutex serializes work per key. Concurrent requests for the same user
// (a round-up firing while a manual investment posts) would otherwise race on
// the cached User/Portfolio totals and lose updates.
type KeyedMutex struct {
	locks sync.Map // key → *sync.Mutex
}

// Lock locks the mutex for key, creating it on first use
func (m *KeyedMutex) Lock(key string) {
	mu, _ := m.locks.LoadOrStore(key, &sync.Mutex{})
	mu.(*sync.Mutex).Lock()
}

// Unlock unlocks the mutex for key
func (m *KeyedMutex) Unlock(key string) {
	if mu, ok := m.locks.Load(key); ok {
		mu.(*sync.Mutex).Unlock()
	}
}
