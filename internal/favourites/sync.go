package favourites

import (
	"context"
	"time"
)

// 文档注释：后台定期同步
// 背景：服务进程没有“回到前台”时机，改为按固定间隔请求存储同步；失败只记录日志，下一周期继续。
// 约束：every <= 0 时不启动；ctx 结束即停止。
func (c *Controller) SyncEvery(ctx context.Context, every time.Duration) {
	if every <= 0 {
		return
	}
	go func() {
		t := time.NewTicker(every)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				_ = c.Synchronise(ctx)
			}
		}
	}()
}
