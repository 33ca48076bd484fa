package event

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// 单个处理器的最长执行时间 (Redis 转发等)
const handlerTimeout = 5 * time.Second

// Event 草稿变更事件
type Event struct {
	Type      string      // 事件类型
	Key       string      // 草稿 ID
	Source    string      // 事件来源
	Data      interface{} // 最新预览, 删除事件为 nil
	Timestamp time.Time
}

// Handler 事件处理函数
type Handler func(ctx context.Context, event Event) error

// Bus 将草稿服务的变更异步转交给推送层.
// 事件按发布顺序逐个处理, 同一草稿的预览不会乱序.
type Bus struct {
	handlers map[string][]Handler
	mu       sync.RWMutex
	log      zerolog.Logger

	events  chan Event
	dropped atomic.Uint64

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewBus 创建事件总线, bufferSize 为待处理事件上限
func NewBus(bufferSize int, log zerolog.Logger) *Bus {
	ctx, cancel := context.WithCancel(context.Background())

	b := &Bus{
		handlers: make(map[string][]Handler),
		log:      log.With().Str("component", "event_bus").Logger(),
		events:   make(chan Event, bufferSize),
		ctx:      ctx,
		cancel:   cancel,
	}

	b.wg.Add(1)
	go b.run()

	return b
}

// Subscribe 为一个或多个事件类型注册同一处理器
func (b *Bus) Subscribe(handler Handler, eventTypes ...string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, t := range eventTypes {
		b.handlers[t] = append(b.handlers[t], handler)
	}
	b.log.Debug().Strs("events", eventTypes).Msg("Handler subscribed")
}

// Publish 异步发布; 缓冲区满或总线已关闭时丢弃
func (b *Bus) Publish(event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	select {
	case <-b.ctx.Done():
		b.dropped.Add(1)
		return
	default:
	}

	select {
	case b.events <- event:
	default:
		b.dropped.Add(1)
		b.log.Warn().Str("event", event.Type).Str("draft_id", event.Key).Msg("Event buffer full, dropping event")
	}
}

// Dropped 返回被丢弃的事件数
func (b *Bus) Dropped() uint64 {
	return b.dropped.Load()
}

func (b *Bus) run() {
	defer b.wg.Done()

	for {
		select {
		case event := <-b.events:
			b.dispatch(event)
		case <-b.ctx.Done():
			b.drain()
			return
		}
	}
}

// drain 处理关闭前已入队的事件, 保证删除等最后的推送能送达
func (b *Bus) drain() {
	for {
		select {
		case event := <-b.events:
			b.dispatch(event)
		default:
			return
		}
	}
}

func (b *Bus) dispatch(event Event) {
	b.mu.RLock()
	handlers := b.handlers[event.Type]
	b.mu.RUnlock()

	var wg sync.WaitGroup
	for _, handler := range handlers {
		wg.Add(1)
		go func(h Handler) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					b.log.Error().Interface("panic", r).Str("event", event.Type).Msg("Handler panicked")
				}
			}()

			// 关闭期间仍需完成 drain, 不继承总线上下文
			ctx, cancel := context.WithTimeout(context.Background(), handlerTimeout)
			defer cancel()
			if err := h(ctx, event); err != nil {
				b.log.Error().Err(err).Str("event", event.Type).Str("draft_id", event.Key).Msg("Handler error")
			}
		}(handler)
	}
	wg.Wait()
}

// Shutdown 停止接收新事件, 处理完已入队事件后返回
func (b *Bus) Shutdown() {
	b.log.Info().Msg("Shutting down...")
	b.cancel()
	b.wg.Wait()
	b.log.Info().Uint64("dropped", b.Dropped()).Msg("Shutdown complete")
}
