// 包 events：进程内类型化的变更通知
package events

import "sync"

// Emitter：观察者注册表
// 约束：Emit 在调用方 goroutine 上按订阅顺序同步投递；回调内可再次 Subscribe/取消订阅
type Emitter[T any] struct {
	mu   sync.Mutex
	next uint64
	subs []subscriber[T]
}

type subscriber[T any] struct {
	id uint64
	fn func(T)
}

// Subscribe：注册观察者，返回取消函数（幂等）
func (e *Emitter[T]) Subscribe(fn func(T)) func() {
	if fn == nil {
		return func() {}
	}
	e.mu.Lock()
	e.next++
	id := e.next
	e.subs = append(e.subs, subscriber[T]{id: id, fn: fn})
	e.mu.Unlock()
	var once sync.Once
	return func() {
		once.Do(func() {
			e.mu.Lock()
			defer e.mu.Unlock()
			for i, s := range e.subs {
				if s.id == id {
					e.subs = append(e.subs[:i:i], e.subs[i+1:]...)
					return
				}
			}
		})
	}
}

// Emit：向当前全部观察者投递 v
func (e *Emitter[T]) Emit(v T) {
	e.mu.Lock()
	subs := append([]subscriber[T](nil), e.subs...)
	e.mu.Unlock()
	for _, s := range subs {
		s.fn(v)
	}
}

// Len：当前观察者数量
func (e *Emitter[T]) Len() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.subs)
}
