package favourites

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"counties/internal/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// DefaultPrefix：FAVOURITES_KEY_PREFIX 未设置时的键前缀
const DefaultPrefix = "counties:kv:"

// RedisStore：以 Redis 充当云端键值存储
// 背景：值以 JSON 字符串数组保存在 <prefix><key>；每次写入后在 <prefix>changes 频道发布 {key, device}，
// 同一实例的订阅端依据 device 忽略自身写入，从而只把其他实例的写入视为外部变更。
type RedisStore struct {
	rdb    *redis.Client
	prefix string
	device string
}

type changeMessage struct {
	Key    string `json:"key"`
	Device string `json:"device"`
}

func NewRedisStore(rdb *redis.Client, prefix string) *RedisStore {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &RedisStore{rdb: rdb, prefix: prefix, device: uuid.NewString()}
}

// Device：本实例的设备标识
func (s *RedisStore) Device() string { return s.device }

func (s *RedisStore) channel() string { return s.prefix + "changes" }

func (s *RedisStore) Strings(ctx context.Context, key string) ([]string, error) {
	b, err := s.rdb.Get(ctx, s.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var out []string
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, fmt.Errorf("favourites value %q: %w", key, err)
	}
	return out, nil
}

func (s *RedisStore) SetStrings(ctx context.Context, key string, values []string) error {
	if values == nil {
		values = []string{}
	}
	b, _ := json.Marshal(values)
	if err := s.rdb.Set(ctx, s.prefix+key, b, 0).Err(); err != nil {
		return err
	}
	msg, _ := json.Marshal(changeMessage{Key: key, Device: s.device})
	if err := s.rdb.Publish(ctx, s.channel(), msg).Err(); err != nil {
		// 值已写入，通知失败只影响其他实例的及时性
		logger.Component("favourites").Warn("favourites_publish_error", "key", key, "err", err)
	}
	return nil
}

// Synchronize：Redis 无本地缓冲，仅确认连接可用
func (s *RedisStore) Synchronize(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

func (s *RedisStore) WatchExternal(ctx context.Context, fn func(string)) error {
	sub := s.rdb.Subscribe(ctx, s.channel())
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return err
	}
	ch := sub.Channel()
	go func() {
		defer sub.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case m, ok := <-ch:
				if !ok {
					return
				}
				if key, ok := s.external(m.Payload); ok {
					fn(key)
				}
			}
		}
	}()
	return nil
}

// external 解析变更消息；本设备写入与无法解析的消息返回 false
func (s *RedisStore) external(payload string) (string, bool) {
	var cm changeMessage
	if err := json.Unmarshal([]byte(payload), &cm); err != nil || cm.Key == "" {
		return "", false
	}
	if cm.Device == s.device {
		return "", false
	}
	return cm.Key, true
}
