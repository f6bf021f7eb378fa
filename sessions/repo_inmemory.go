package sessions

import (
	"context"
	"sync"
)

var _ Store = (*InMemoryStore)(nil)

// InMemoryStore keeps records for the process lifetime
type InMemoryStore struct {
	mu      sync.RWMutex
	records map[string][]byte
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		records: make(map[string][]byte),
	}
}

func (r *InMemoryStore) Load(ctx context.Context, key string) (Session, bool) {
	if checkKey(key) != nil {
		return Session{}, false
	}

	r.mu.RLock()
	data, ok := r.records[key]
	r.mu.RUnlock()
	if !ok {
		return Session{}, false
	}
	return decodeRecord(ctx, "memory", r, key, data)
}

func (r *InMemoryStore) Save(_ context.Context, key string, session Session) error {
	if err := checkKey(key); err != nil {
		return err
	}
	data, err := Encode(session)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.records[key] = data
	return nil
}

func (r *InMemoryStore) Clear(_ context.Context, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.records, key)
	return nil
}

// Len returns the number of stored records
func (r *InMemoryStore) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.records)
}
