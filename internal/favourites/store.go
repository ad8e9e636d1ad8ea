package favourites

import "context"

// KeyValueStore：跨设备同步的键值存储（值为字符串数组）
// 约束：键不存在时 Strings 返回 nil, nil
type KeyValueStore interface {
	Strings(ctx context.Context, key string) ([]string, error)
	SetStrings(ctx context.Context, key string, values []string) error
	Synchronize(ctx context.Context) error
}

// ExternalChanges：可选能力，接收其他设备写入的变更通知
// 约束：WatchExternal 在订阅建立后立即返回；ctx 结束即取消订阅；fn 仅收到外部写入的键
type ExternalChanges interface {
	WatchExternal(ctx context.Context, fn func(key string)) error
}
