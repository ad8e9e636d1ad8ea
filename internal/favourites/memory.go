package favourites

import (
	"context"
	"sync"
)

// MemoryStore：进程内实现，用于测试与未启用 Redis 的部署
type MemoryStore struct {
	mu       sync.Mutex
	data     map[string][]string
	writes   int
	syncs    int
	next     int
	watchers map[int]func(string)
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string][]string), watchers: make(map[int]func(string))}
}

func (m *MemoryStore) Strings(_ context.Context, key string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return nil, nil
	}
	return append([]string(nil), v...), nil
}

func (m *MemoryStore) SetStrings(_ context.Context, key string, values []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = append([]string{}, values...)
	m.writes++
	return nil
}

func (m *MemoryStore) Synchronize(context.Context) error {
	m.mu.Lock()
	m.syncs++
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) WatchExternal(ctx context.Context, fn func(string)) error {
	m.mu.Lock()
	m.next++
	id := m.next
	m.watchers[id] = fn
	m.mu.Unlock()
	go func() {
		<-ctx.Done()
		m.mu.Lock()
		delete(m.watchers, id)
		m.mu.Unlock()
	}()
	return nil
}

// SetExternally：模拟另一台设备写入；不计入 Writes，并通知全部订阅者
func (m *MemoryStore) SetExternally(key string, values []string) {
	m.mu.Lock()
	m.data[key] = append([]string{}, values...)
	fns := make([]func(string), 0, len(m.watchers))
	for _, fn := range m.watchers {
		fns = append(fns, fn)
	}
	m.mu.Unlock()
	for _, fn := range fns {
		fn(key)
	}
}

// Writes：本实例 SetStrings 的调用次数
func (m *MemoryStore) Writes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}

// Syncs：Synchronize 的调用次数
func (m *MemoryStore) Syncs() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.syncs
}
