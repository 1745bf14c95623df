// Package kvstore provides key/value stores for the enhancement cache.
package kvstore

import (
	"context"
	"slices"
	"sync"

	"github.com/couchcryptid/weather-fusion-service/internal/enhance"
)

// MemoryStore is a thread-safe in-memory enhance.Store bounded by an LRU
// policy. TTL and age are the cache's concern; the store only bounds size.
type MemoryStore struct {
	maxEntries int
	mu         sync.Mutex
	entries    map[string]*entry
	head       *entry // most recently used
	tail       *entry // least recently used
}

type entry struct {
	key   string
	value enhance.Entry
	prev  *entry
	next  *entry
}

// NewMemoryStore creates a store holding at most maxEntries entries.
// If maxEntries is <= 0, it is treated as unlimited.
func NewMemoryStore(maxEntries int) *MemoryStore {
	return &MemoryStore{
		maxEntries: maxEntries,
		entries:    make(map[string]*entry),
	}
}

// Get returns the entry for key, or nil if absent.
func (s *MemoryStore) Get(_ context.Context, key string) (*enhance.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		return nil, nil
	}
	s.moveToFront(e)
	v := clone(e.value)
	return &v, nil
}

// Set stores value under key, evicting the least recently used entry when full.
func (s *MemoryStore) Set(_ context.Context, key string, value enhance.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.entries[key]; ok {
		e.value = clone(value)
		s.moveToFront(e)
		return nil
	}

	e := &entry{key: key, value: clone(value)}
	s.entries[key] = e
	s.addToFront(e)

	if s.maxEntries > 0 && len(s.entries) > s.maxEntries {
		s.evictTail()
	}
	return nil
}

// Delete removes key. Deleting an absent key is not an error.
func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.entries[key]; ok {
		delete(s.entries, key)
		s.remove(e)
	}
	return nil
}

// ListEntries returns every entry, most recently used first.
func (s *MemoryStore) ListEntries(_ context.Context) ([]enhance.KeyedEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]enhance.KeyedEntry, 0, len(s.entries))
	for e := s.head; e != nil; e = e.next {
		out = append(out, enhance.KeyedEntry{Key: e.key, Entry: clone(e.value)})
	}
	return out, nil
}

// Len reports the number of stored entries.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func (s *MemoryStore) moveToFront(e *entry) {
	if e == s.head {
		return
	}
	s.remove(e)
	s.addToFront(e)
}

func (s *MemoryStore) addToFront(e *entry) {
	e.next = s.head
	e.prev = nil
	if s.head != nil {
		s.head.prev = e
	}
	s.head = e
	if s.tail == nil {
		s.tail = e
	}
}

func (s *MemoryStore) remove(e *entry) {
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		s.head = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	} else {
		s.tail = e.prev
	}
}

func (s *MemoryStore) evictTail() {
	if s.tail == nil {
		return
	}
	delete(s.entries, s.tail.key)
	s.remove(s.tail)
}

// clone copies Data so callers cannot mutate stored bytes.
func clone(v enhance.Entry) enhance.Entry {
	v.Data = slices.Clone(v.Data)
	return v
}
