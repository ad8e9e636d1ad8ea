// 包 favourites：收藏的县，保存在跨设备同步的键值存储中
package favourites

import (
	"context"
	"log/slog"
	"slices"
	"sync"

	"counties/internal/country"
	"counties/internal/events"
	"counties/internal/logger"
	"counties/internal/metrics"
)

// Key：收藏名称列表在键值存储中的键
const Key = "FavouriteCounties"

// Change：收藏变更事件；External 表示来自其他设备
type Change struct {
	Counties []country.County
	External bool
}

// Controller：收藏的增删与查询
// 约束：存储中的列表按名称排序、无重复；读取一律以存储为准，不做本地缓存
type Controller struct {
	country *country.Country
	store   KeyValueStore
	log     *slog.Logger

	mu      sync.Mutex
	changes events.Emitter[Change]
}

func New(c *country.Country, s KeyValueStore) *Controller {
	return &Controller{country: c, store: s, log: logger.Component("favourites")}
}

// Counties：当前收藏，按名称排序；读取失败视为空，未知名称丢弃
func (c *Controller) Counties(ctx context.Context) []country.County {
	names, err := c.store.Strings(ctx, Key)
	if err != nil {
		c.log.Warn("favourites_read_error", "err", err)
		return nil
	}
	return c.resolve(names)
}

func (c *Controller) resolve(names []string) []country.County {
	out := make([]country.County, 0, len(names))
	for _, n := range names {
		cty, ok := c.country.County(n)
		if !ok {
			c.log.Debug("favourites_unknown_county", "name", n)
			continue
		}
		if country.Index(out, cty.Name) >= 0 {
			continue
		}
		out = append(out, cty)
	}
	country.SortCounties(out)
	return out
}

// Contains：是否已收藏
func (c *Controller) Contains(ctx context.Context, cty country.County) bool {
	return country.Index(c.Counties(ctx), cty.Name) >= 0
}

// 文档注释：加入收藏
// 背景：已收藏时不写存储、不发通知；否则追加、按名称排序、整体写回并通知。
// 约束：写回的是存储中的原始名称列表，本数据集不认识的名称（来自更新的数据集）原样保留。
// 返回：changed 表示是否发生写入；读取或写入失败时不写、不通知。
func (c *Controller) Add(ctx context.Context, cty country.County) (bool, error) {
	return c.update(ctx, "add", func(names []string) ([]string, bool) {
		if slices.Contains(names, cty.Name) {
			return names, false
		}
		return append(names, cty.Name), true
	})
}

// Remove：移出收藏；未收藏时无操作
func (c *Controller) Remove(ctx context.Context, cty country.County) (bool, error) {
	return c.update(ctx, "remove", func(names []string) ([]string, bool) {
		if !slices.Contains(names, cty.Name) {
			return names, false
		}
		return slices.DeleteFunc(names, func(n string) bool { return n == cty.Name }), true
	})
}

// update：读取原始名称、应用修改、排序去重后写回并通知
func (c *Controller) update(ctx context.Context, op string, fn func([]string) ([]string, bool)) (bool, error) {
	c.mu.Lock()
	names, err := c.store.Strings(ctx, Key)
	if err != nil {
		c.mu.Unlock()
		c.log.Error("favourites_read_error", "op", op, "err", err)
		return false, err
	}
	names, changed := fn(names)
	if !changed {
		c.mu.Unlock()
		return false, nil
	}
	slices.Sort(names)
	names = slices.Compact(names)
	if err := c.write(ctx, op, names); err != nil {
		c.mu.Unlock()
		return false, err
	}
	c.mu.Unlock()
	list := c.resolve(names)
	c.log.Debug("favourites_"+op, "count", len(list))
	c.changes.Emit(Change{Counties: list})
	return true, nil
}

func (c *Controller) write(ctx context.Context, op string, names []string) error {
	if err := c.store.SetStrings(ctx, Key, names); err != nil {
		metrics.FavouritesWritesTotal.WithLabelValues(op + "_error").Inc()
		c.log.Error("favourites_write_error", "op", op, "err", err)
		return err
	}
	metrics.FavouritesWritesTotal.WithLabelValues(op).Inc()
	return nil
}

// Synchronise：请求存储与云端同步
func (c *Controller) Synchronise(ctx context.Context) error {
	if err := c.store.Synchronize(ctx); err != nil {
		c.log.Warn("favourites_sync_error", "err", err)
		return err
	}
	return nil
}

// OnChange：订阅收藏变更，返回取消函数
func (c *Controller) OnChange(fn func(Change)) func() {
	return c.changes.Subscribe(fn)
}

// 文档注释：监听外部变更
// 背景：其他设备写入 Key 时，重新读取存储并以同一事件通知观察者；不做合并或冲突处理。
// 约束：存储不支持外部变更时直接返回 nil；ctx 结束即停止监听。
func (c *Controller) Watch(ctx context.Context) error {
	ext, ok := c.store.(ExternalChanges)
	if !ok {
		c.log.Debug("favourites_watch_unsupported")
		return nil
	}
	return ext.WatchExternal(ctx, func(key string) {
		if key != Key {
			return
		}
		metrics.FavouritesExternalChangesTotal.Inc()
		list := c.Counties(ctx)
		c.log.Info("favourites_external_change", "count", len(list))
		c.changes.Emit(Change{Counties: list, External: true})
	})
}
