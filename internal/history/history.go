// 包 history：最近浏览的县（最多 3 个，最新在前）
package history

import (
	"log/slog"
	"sync"

	"counties/internal/country"
	"counties/internal/events"
	"counties/internal/logger"
	"counties/internal/metrics"
)

// MaxEntries：历史上限
const MaxEntries = 3

// Tracker：记录县的浏览历史
// 约束：列表无重复、长度不超过 MaxEntries；每次读取都以存储内容为准
type Tracker struct {
	country *country.Country
	store   Store
	log     *slog.Logger

	mu      sync.Mutex
	updates events.Emitter[[]country.County]
}

func New(c *country.Country, s Store) *Tracker {
	return &Tracker{country: c, store: s, log: logger.Component("history")}
}

// 文档注释：记录一次浏览
// 背景：移除已有的同名项，插入首位，截断到 MaxEntries，写回存储并通知观察者。
// 约束：写入失败仅记录日志，通知照常发出，携带的是本次计算出的新列表。
func (t *Tracker) Viewed(c country.County) []country.County {
	t.mu.Lock()
	recent := t.load()
	if i := country.Index(recent, c.Name); i >= 0 {
		recent = append(recent[:i], recent[i+1:]...)
	}
	recent = append([]country.County{c}, recent...)
	if len(recent) > MaxEntries {
		recent = recent[:MaxEntries]
	}
	if err := t.store.Save(country.Names(recent)); err != nil {
		metrics.HistoryWritesTotal.WithLabelValues("error").Inc()
		t.log.Error("history_write_error", "county", c.Name, "err", err)
	} else {
		metrics.HistoryWritesTotal.WithLabelValues("ok").Inc()
		t.log.Debug("history_write_ok", "county", c.Name, "count", len(recent))
	}
	t.mu.Unlock()

	t.updates.Emit(append([]country.County(nil), recent...))
	return recent
}

// Recent：最近浏览，最新在前
func (t *Tracker) Recent() []country.County {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.load()
}

// OnUpdate：订阅历史变更，返回取消函数
func (t *Tracker) OnUpdate(fn func([]country.County)) func() {
	return t.updates.Subscribe(fn)
}

// load 读取失败视为空；未知名称跳过
func (t *Tracker) load() []country.County {
	names, err := t.store.Load()
	if err != nil {
		t.log.Warn("history_read_error", "err", err)
		return nil
	}
	out := make([]country.County, 0, len(names))
	for _, n := range names {
		c, ok := t.country.County(n)
		if !ok {
			t.log.Warn("history_unknown_county", "name", n)
			continue
		}
		if country.Index(out, c.Name) >= 0 {
			continue
		}
		out = append(out, c)
		if len(out) == MaxEntries {
			break
		}
	}
	return out
}
