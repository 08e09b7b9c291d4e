package session

import (
	"context"
	"sync"
)

type MemoryRepo struct {
	mu      sync.RWMutex
	records map[string][]byte
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{records: make(map[string][]byte)}
}

func (r *MemoryRepo) Get(_ context.Context, key string) ([]byte, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	v, ok := r.records[key]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

func (r *MemoryRepo) Put(_ context.Context, key string, value []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.records[key] = append([]byte(nil), value...)
	return nil
}

func (r *MemoryRepo) Delete(_ context.Context, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.records, key)
	return nil
}
