package enhance

import (
	"context"
	"encoding/json"
	"time"
)

// Entry is a stored cache value with its write time.
type Entry struct {
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data"`
}

// KeyedEntry pairs an entry with its key for enumeration.
type KeyedEntry struct {
	Key   string
	Entry Entry
}

// Store is the key/value contract the cache is built on. Get returns a nil
// entry and nil error when the key is absent.
type Store interface {
	Get(ctx context.Context, key string) (*Entry, error)
	Set(ctx context.Context, key string, e Entry) error
	Delete(ctx context.Context, key string) error
	ListEntries(ctx context.Context) ([]KeyedEntry, error)
}
