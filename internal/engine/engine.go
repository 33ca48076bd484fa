package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"signaldesk.com/internal/constants"
	"signaldesk.com/internal/event"
	"signaldesk.com/internal/infra"
	"signaldesk.com/internal/scheduler"
)

// Engine 是一个轻量级协调器，负责：
// 1. 启动后台进程（预览推送 Hub、Redis 订阅、定时任务）
// 2. 将草稿事件分发给正在查看该草稿的 WebSocket 客户端
// 3. 多实例部署时通过 Redis Pub/Sub 转发预览
type Engine struct {
	bus       *event.Bus
	hub       *infra.PreviewHub
	scheduler *scheduler.Scheduler
	log       zerolog.Logger

	// 可选组件
	relay         *infra.DraftRelay
	sweeper       scheduler.Sweeper
	sweepInterval time.Duration

	// 上下文控制
	ctx    context.Context
	cancel context.CancelFunc
}

// Deps 引擎依赖; Relay 与 Sweeper 可为 nil
type Deps struct {
	Bus           *event.Bus
	Hub           *infra.PreviewHub
	Relay         *infra.DraftRelay
	Sweeper       scheduler.Sweeper
	SweepInterval time.Duration
	Log           zerolog.Logger
}

// NewEngine 创建引擎
func NewEngine(deps Deps) *Engine {
	ctx, cancel := context.WithCancel(context.Background())

	return &Engine{
		bus:           deps.Bus,
		hub:           deps.Hub,
		scheduler:     scheduler.New(deps.Log),
		log:           deps.Log.With().Str("component", "engine").Logger(),
		relay:         deps.Relay,
		sweeper:       deps.Sweeper,
		sweepInterval: deps.SweepInterval,
		ctx:           ctx,
		cancel:        cancel,
	}
}

// Start 启动引擎后台进程
func (e *Engine) Start() error {
	e.log.Info().Msg("Starting...")

	// 1. 检查合约表
	if err := e.scheduler.RunNow(scheduler.NewCatalogCheckJob(e.log)); err != nil {
		e.log.Warn().Err(err).Msg("Catalog check failed")
	}

	// 2. 启动 WebSocket Hub
	go e.hub.Start(e.ctx)

	// 3. 多实例: 订阅 Redis 预览频道
	if e.relay != nil {
		if err := e.relay.Start(e.ctx); err != nil {
			e.cancel()
			return err
		}
		go infra.NewPreviewDispatcher(e.hub, e.log).Run(e.relay.Messages())
	}

	// 4. 草稿事件 -> 推送
	e.bus.Subscribe(e.onDraftEvent,
		constants.EventDraftCreated,
		constants.EventDraftUpdated,
		constants.EventDraftReset,
		constants.EventDraftDeleted,
	)

	// 5. 定时清理过期草稿 (仅内存存储; Redis 依赖 TTL)
	if e.sweeper != nil && e.sweepInterval > 0 {
		schedule := fmt.Sprintf("@every %s", e.sweepInterval)
		if err := e.scheduler.AddJob(schedule, scheduler.NewDraftSweepJob(e.sweeper, e.log)); err != nil {
			e.cancel()
			return fmt.Errorf("failed to schedule draft sweep: %w", err)
		}
	}
	e.scheduler.Start()

	e.log.Info().Msg("Started successfully")
	return nil
}

// onDraftEvent 将草稿事件推送给查看者
func (e *Engine) onDraftEvent(ctx context.Context, ev event.Event) error {
	msg := infra.WsMessage{
		Type:    ev.Type,
		DraftID: ev.Key,
		Data:    ev.Data,
	}
	if e.relay != nil {
		return e.relay.Publish(ctx, ev.Key, msg)
	}
	e.hub.PushToDraft(ev.Key, msg)
	return nil
}

// Stop 停止引擎
func (e *Engine) Stop() {
	e.log.Info().Msg("Stopping...")
	e.scheduler.Stop()
	e.bus.Shutdown()
	e.cancel()
}

// Done 在引擎停止后关闭
func (e *Engine) Done() <-chan struct{} {
	return e.ctx.Done()
}
