package cart

import (
	"context"
	"sync"
)

// インメモリのStorage実装（開発・テスト用）
type MemoryStorage struct {
	mu    sync.RWMutex
	snaps map[string]Snapshot
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{snaps: make(map[string]Snapshot)}
}

func (m *MemoryStorage) Save(ctx context.Context, key string, snap Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snaps[key] = snap
	return nil
}

func (m *MemoryStorage) Load(ctx context.Context, key string) (Snapshot, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	snap, ok := m.snaps[key]
	return snap, ok, nil
}

func (m *MemoryStorage) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.snaps, key)
	return nil
}
