package localstore

import (
	"context"
	"fmt"
	"maps"
	"sync"

	"github.com/nanofi/nanofi/internal/common"
)

type memoryItem struct {
	value   []byte
	version int64
}

// MemoryRepository is an in-process Storage. Values are copied on the way in
// and out so callers cannot alias stored bytes.
type MemoryRepository struct {
	mu   sync.Mutex
	data map[string]memoryItem
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{data: make(map[string]memoryItem)}
}

func (m *MemoryRepository) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	it, ok := m.data[key]
	if !ok {
		return nil, nil
	}
	return clone(it.value), nil
}

func (m *MemoryRepository) GetVersioned(_ context.Context, key string) ([]byte, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	it, ok := m.data[key]
	if !ok {
		return nil, 0, nil
	}
	return clone(it.value), it.version, nil
}

func (m *MemoryRepository) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.data == nil {
		m.data = make(map[string]memoryItem)
	}
	it := m.data[key]
	m.data[key] = memoryItem{value: clone(value), version: it.version + 1}
	return nil
}

func (m *MemoryRepository) CompareAndSet(_ context.Context, key string, value []byte, version int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.data == nil {
		m.data = make(map[string]memoryItem)
	}
	it := m.data[key]
	if it.version != version {
		return 0, fmt.Errorf("local_storage[%s] at version %d: %w", key, version, common.ErrVersionConflict)
	}
	m.data[key] = memoryItem{value: clone(value), version: version + 1}
	return version + 1, nil
}

func (m *MemoryRepository) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.data, key)
	return nil
}

func (m *MemoryRepository) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	clear(m.data)
	return nil
}

func (m *MemoryRepository) List(_ context.Context) (map[string][]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	result := make(map[string][]byte, len(m.data))
	for k, it := range m.data {
		result[k] = clone(it.value)
	}
	return result, nil
}

// WithTx runs fn against a private copy and publishes it only if fn succeeds.
// The repository stays locked for the duration of fn.
func (m *MemoryRepository) WithTx(ctx context.Context, fn func(ctx context.Context, repo Repository) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	staged := &MemoryRepository{data: maps.Clone(m.data)}
	if err := fn(ctx, staged); err != nil {
		return err
	}
	m.data = staged.data
	return nil
}

func clone(b []byte) []byte {
	if b == nil {
		return nil
	}
	return append([]byte(nil), b...)
}
