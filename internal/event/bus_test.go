package event

import (
	"bytes"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

// TestNewBus 测试创建新的事件总线
func TestNewBus(t *testing.T) {
	bus := NewBus()
	if bus == nil {
		t.Fatal("NewBus() 返回 nil")
	}
	if bus.handlers == nil {
		t.Fatal("NewBus() handlers map 未初始化")
	}
}

// TestSubscribeAndPublish 测试订阅和发布事件
func TestSubscribeAndPublish(t *testing.T) {
	bus := NewBus()
	received := make(chan any, 1)
	bus.Subscribe(EventJump, func(evt any) {
		received <- evt
	})

	sent := JumpEvent{Character: "a", Velocity: mgl64.Vec3{0, 8, 0}}
	bus.Publish(EventJump, sent)
	bus.Wait()

	got := <-received
	if got != sent {
		t.Errorf("handler 收到 %v, 期望 %v", got, sent)
	}
}

// TestPublishNoSubscribers 测试发布无订阅者的事件不会 panic
func TestPublishNoSubscribers(t *testing.T) {
	bus := NewBus()
	bus.Publish("nonexistent", "data")
	bus.Wait()
}

// TestMultipleSubscribers 测试多个订阅者
func TestMultipleSubscribers(t *testing.T) {
	bus := NewBus()
	var count int32

	for i := 0; i < 3; i++ {
		bus.Subscribe(EventLanded, func(evt any) {
			atomic.AddInt32(&count, 1)
		})
	}

	bus.Publish(EventLanded, LandedEvent{})
	bus.Wait()

	if got := atomic.LoadInt32(&count); got != 3 {
		t.Errorf("handler 被调用 %d 次, 期望 3 次", got)
	}
}

// TestMultipleEvents 测试不同事件名称互不干扰
func TestMultipleEvents(t *testing.T) {
	bus := NewBus()
	var jumpReceived, landedReceived atomic.Bool

	bus.Subscribe(EventJump, func(evt any) {
		jumpReceived.Store(true)
	})
	bus.Subscribe(EventLanded, func(evt any) {
		landedReceived.Store(true)
	})

	bus.Publish(EventJump, JumpEvent{})
	bus.Wait()

	if !jumpReceived.Load() {
		t.Error("jump handler 应该被调用")
	}
	if landedReceived.Load() {
		t.Error("landed handler 不应该被调用")
	}
}

// TestUnsubscribe 测试取消订阅后不再收到事件
func TestUnsubscribe(t *testing.T) {
	bus := NewBus()
	var kept, removed atomic.Int32

	bus.Subscribe(EventModifierEnd, func(evt any) { kept.Add(1) })
	sub := bus.Subscribe(EventModifierEnd, func(evt any) { removed.Add(1) })

	bus.Publish(EventModifierEnd, ModifierEvent{})
	bus.Wait()
	bus.Unsubscribe(sub)
	bus.Publish(EventModifierEnd, ModifierEvent{})
	bus.Wait()

	if kept.Load() != 2 {
		t.Errorf("保留的 handler 被调用 %d 次, 期望 2 次", kept.Load())
	}
	if removed.Load() != 1 {
		t.Errorf("已取消的 handler 被调用 %d 次, 期望 1 次", removed.Load())
	}

	// 重复取消不应 panic
	bus.Unsubscribe(sub)
}

// TestPanickingHandlerIsIsolated 测试 handler panic 不影响其他 handler
func TestPanickingHandlerIsIsolated(t *testing.T) {
	bus := NewBus()
	var ok atomic.Bool

	bus.Subscribe(EventJump, func(evt any) { panic("boom") })
	bus.Subscribe(EventJump, func(evt any) { ok.Store(true) })

	bus.Publish(EventJump, JumpEvent{})
	bus.Wait()

	if !ok.Load() {
		t.Error("第二个 handler 应该被调用")
	}
}

// TestConcurrentSubscribeAndPublish 测试并发订阅和发布的线程安全性
func TestConcurrentSubscribeAndPublish(t *testing.T) {
	bus := NewBus()
	var count atomic.Int64

	bus.Subscribe("test", func(evt any) {
		count.Add(1)
	})

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			bus.Publish("test", "data")
		}()
	}
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			bus.Subscribe("test", func(evt any) {
				count.Add(1)
			})
		}()
	}

	wg.Wait()
	bus.Wait()

	if count.Load() < 100 {
		t.Errorf("至少应该收到 100 次事件, 实际收到 %d 次", count.Load())
	}
}

// TestLogHandler 测试事件日志输出
func TestLogHandler(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	defer slog.SetDefault(prev)

	bus := NewBus()
	subs := LogAll(bus)
	if len(subs) != len(loggedEvents) {
		t.Fatalf("LogAll 订阅了 %d 个事件, 期望 %d", len(subs), len(loggedEvents))
	}

	bus.Publish(EventJump, JumpEvent{Character: "c1", Velocity: mgl64.Vec3{0, 8, 0}})
	bus.Wait()
	bus.Publish(EventDespawn, DespawnEvent{Character: "c1", Dropped: []string{"knockback"}})
	bus.Wait()
	bus.Publish(EventLanded, "not a landed event")
	bus.Wait()

	out := buf.String()
	for _, want := range []string{"msg=Jump", "character=c1", "vy=8", "Character despawned", "Unexpected event payload"} {
		if !strings.Contains(out, want) {
			t.Errorf("日志缺少 %q:\n%s", want, out)
		}
	}
}
