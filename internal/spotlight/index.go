// 包 spotlight：县的全文检索（查询语法、索引、索引写入与搜索控制器）
package spotlight

import (
	"context"
	"sync"
)

// BatchSize：搜索结果分批投递的批大小
const BatchSize = 16

// Item：可检索条目，每个县一条，以 County.ID 为键
type Item struct {
	ID                 string  `json:"id"`
	Title              string  `json:"title"`
	Description        string  `json:"description"`
	Latitude           float64 `json:"latitude"`
	Longitude          float64 `json:"longitude"`
	Thumbnail          []byte  `json:"thumbnail,omitempty"`
	SupportsNavigation bool    `json:"supports_navigation"`
}

// Index：检索后端
// 约束：Search 以批次回调 found；ctx 取消后停止投递并返回 ctx.Err()
type Index interface {
	IndexItems(ctx context.Context, items []Item) error
	Search(ctx context.Context, query string, found func(ids []string)) error
}

// MemoryIndex：进程内索引，结果按写入顺序返回
type MemoryIndex struct {
	mu    sync.RWMutex
	items []Item
	pos   map[string]int
}

func NewMemoryIndex() *MemoryIndex { return &MemoryIndex{pos: make(map[string]int)} }

// IndexItems：按 ID 覆盖写入
func (m *MemoryIndex) IndexItems(ctx context.Context, items []Item) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, it := range items {
		if err := ctx.Err(); err != nil {
			return err
		}
		if i, ok := m.pos[it.ID]; ok {
			m.items[i] = it
			continue
		}
		m.pos[it.ID] = len(m.items)
		m.items = append(m.items, it)
	}
	return nil
}

func (m *MemoryIndex) Search(ctx context.Context, query string, found func([]string)) error {
	cl, err := ParseQuery(query)
	if err != nil {
		return err
	}
	m.mu.RLock()
	snapshot := append([]Item(nil), m.items...)
	m.mu.RUnlock()

	batch := make([]string, 0, BatchSize)
	for _, it := range snapshot {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !cl.MatchItem(it) {
			continue
		}
		batch = append(batch, it.ID)
		if len(batch) == BatchSize {
			found(batch)
			batch = make([]string, 0, BatchSize)
		}
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(batch) > 0 {
		found(batch)
	}
	return nil
}

// Item：按 ID 读取条目
func (m *MemoryIndex) Item(id string) (Item, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	i, ok := m.pos[id]
	if !ok {
		return Item{}, false
	}
	return m.items[i], true
}

func (m *MemoryIndex) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items)
}
