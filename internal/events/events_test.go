package events

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEmitInSubscriptionOrder(t *testing.T) {
	var e Emitter[int]
	var got []string
	e.Subscribe(func(v int) { got = append(got, "a") })
	e.Subscribe(func(v int) { got = append(got, "b") })
	e.Emit(1)
	assert.Equal(t, []string{"a", "b"}, got)
}

func TestUnsubscribe(t *testing.T) {
	var e Emitter[string]
	var calls int
	cancel := e.Subscribe(func(string) { calls++ })
	e.Emit("x")
	cancel()
	cancel()
	e.Emit("y")
	assert.Equal(t, 1, calls)
	assert.Equal(t, 0, e.Len())
}

func TestUnsubscribeInsideCallback(t *testing.T) {
	var e Emitter[int]
	var first, second int
	var cancel func()
	cancel = e.Subscribe(func(int) { first++; cancel() })
	e.Subscribe(func(int) { second++ })
	e.Emit(1)
	e.Emit(2)
	assert.Equal(t, 1, first)
	assert.Equal(t, 2, second)
}

func TestNilSubscriberIgnored(t *testing.T) {
	var e Emitter[int]
	e.Subscribe(nil)()
	assert.Equal(t, 0, e.Len())
	assert.NotPanics(t, func() { e.Emit(1) })
}

func TestConcurrentEmit(t *testing.T) {
	var e Emitter[int]
	var mu sync.Mutex
	total := 0
	e.Subscribe(func(v int) { mu.Lock(); total += v; mu.Unlock() })
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() { defer wg.Done(); e.Emit(2) }()
	}
	wg.Wait()
	assert.Equal(t, 100, total)
}
