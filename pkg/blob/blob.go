// Package blob stores uploaded images and documents under opaque keys.
package blob

import (
	"context"
	"errors"
	"sync"
)

var ErrNotFound = errors.New("object not found")

type Object struct {
	Key         string
	ContentType string
	Data        []byte
}

type Store interface {
	Put(ctx context.Context, obj Object) error
	Get(ctx context.Context, key string) (*Object, error)
}

// MemoryStore keeps objects in process memory.
type MemoryStore struct {
	mu      sync.RWMutex
	objects map[string]Object
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{objects: make(map[string]Object)}
}

func (m *MemoryStore) Put(_ context.Context, obj Object) error {
	data := make([]byte, len(obj.Data))
	copy(data, obj.Data)
	obj.Data = data

	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[obj.Key] = obj
	return nil
}

func (m *MemoryStore) Get(_ context.Context, key string) (*Object, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	obj, ok := m.objects[key]
	if !ok {
		return nil, ErrNotFound
	}
	return &obj, nil
}
