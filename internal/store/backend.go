package store

import "sync"

// Backend is the key-value medium the store persists its collections to.
// Get reports absence separately from read faults so the store can treat an
// unreadable or missing blob as an empty collection.
type Backend interface {
	Get(key string) ([]byte, bool, error)
	Put(key string, value []byte) error
	Delete(key string) error
}

// MemoryBackend keeps blobs in process memory. Used by tests and by the
// ephemeral local mode.
type MemoryBackend struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{
		data: make(map[string][]byte),
	}
}

func (b *MemoryBackend) Get(key string) ([]byte, bool, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	value, ok := b.data[key]
	if !ok {
		return nil, false, nil
	}

	copied := make([]byte, len(value))
	copy(copied, value)
	return copied, true, nil
}

func (b *MemoryBackend) Put(key string, value []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	copied := make([]byte, len(value))
	copy(copied, value)
	b.data[key] = copied
	return nil
}

func (b *MemoryBackend) Delete(key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	delete(b.data, key)
	return nil
}
