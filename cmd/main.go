package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"
	"signaldesk.com/internal/api"
	"signaldesk.com/internal/config"
	"signaldesk.com/internal/domain"
	"signaldesk.com/internal/engine"
	"signaldesk.com/internal/event"
	"signaldesk.com/internal/infra"
	"signaldesk.com/internal/scheduler"
	"signaldesk.com/internal/service"
	"signaldesk.com/pkg/logger"
)

func main() {
	// 1. 加载配置
	cfg := config.LoadConfig()

	log := logger.New(logger.Config{Level: cfg.Log.Level, Pretty: cfg.Log.Pretty})
	logger.SetGlobalLogger(log)

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	// 2. 初始化基础设施
	var (
		store   domain.DraftStore
		sweeper scheduler.Sweeper
		relay   *infra.DraftRelay
	)
	closeStore := func() {}
	switch cfg.Session.Store {
	case config.StoreRedis:
		rdb, err := infra.ConnectRedis(context.Background(), cfg.Redis)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to Redis")
		}
		closeStore = func() {
			if err := rdb.Close(); err != nil {
				log.Warn().Err(err).Msg("Failed to close Redis client")
			}
		}
		store = infra.NewRedisDraftStore(rdb, cfg.Session.TTL)
		relay = infra.NewDraftRelay(rdb, 1000, log)
	default:
		mem := infra.NewMemoryDraftStore(cfg.Session.TTL)
		store, sweeper = mem, mem
	}
	log.Info().Str("store", cfg.Session.Store).Dur("ttl", cfg.Session.TTL).Msg("Draft store ready")

	// 3. 事件总线与推送
	bus := event.NewBus(1000, log)
	hub := infra.NewPreviewHub(log)

	// 4. 初始化引擎
	eng := engine.NewEngine(engine.Deps{
		Bus:           bus,
		Hub:           hub,
		Relay:         relay,
		Sweeper:       sweeper,
		SweepInterval: cfg.Session.SweepInterval,
		Log:           log,
	})
	if err := eng.Start(); err != nil {
		closeStore()
		log.Fatal().Err(err).Msg("Failed to start engine")
	}

	// 5. 设置 Fiber 服务器
	draftSvc := service.NewDraftService(store, bus, log)
	app := api.NewServer(api.Deps{
		Config:   cfg,
		DraftSvc: draftSvc,
		Hub:      hub,
		Log:      log,
	})

	// 6. 启动服务器, 收到信号后优雅退出
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("port", cfg.Server.Port).Msg("Server starting")
		return app.Listen(cfg.Server.Port)
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("Shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		err := app.ShutdownWithContext(shutdownCtx)
		// 引擎先停止, 排空的事件仍可经 Redis 转发
		eng.Stop()
		closeStore()
		return err
	})

	err := g.Wait()
	stop()
	if err != nil {
		log.Error().Err(err).Msg("Server exited with error")
		os.Exit(1)
	}
	log.Info().Msg("Server stopped")
}
