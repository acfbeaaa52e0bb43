// Package main provides the rooms service binary: the websocket intent
// listener backed by the room service and PostgreSQL persistence.
package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/harboat/rooms/internal/config"
	"github.com/harboat/rooms/internal/events"
	"github.com/harboat/rooms/internal/game/room"
	"github.com/harboat/rooms/internal/gateway/ws"
	"github.com/harboat/rooms/internal/observability"
	"github.com/harboat/rooms/internal/server"
	"github.com/harboat/rooms/internal/storage/postgres"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	flag.Parse()

	ctx := context.Background()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	logger.Info("starting rooms service",
		zap.String("listen_addr", cfg.Listener.Addr()),
	)

	// Connect to PostgreSQL for room persistence
	dbStart := time.Now()
	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		logger.Fatal("connecting to database", zap.Error(err))
	}
	logger.Info("database connected",
		zap.String("host", cfg.Database.Host),
		zap.Duration("elapsed", time.Since(dbStart)),
	)
	roomRepo := postgres.NewRoomRepository(pool.DB())

	// Outbound event gateway: one bus, three channel producers.
	bus := events.NewBus(logger)
	coreProducer := events.NewCoreProducer(bus, cfg.Events.CoreChannel)
	configProducer := events.NewConfigProducer(bus, cfg.Events.ConfigChannel)
	notificationProducer := events.NewNotificationProducer(bus, cfg.Events.NotificationChannel)

	roomService := room.NewService(roomRepo, coreProducer, configProducer, notificationProducer)

	handler := ws.NewHandler(ws.HandlerConfig{
		Service:             roomService,
		Bus:                 bus,
		Notifications:       notificationProducer,
		NotificationChannel: cfg.Events.NotificationChannel,
		SubscriberBuffer:    cfg.Events.SubscriberBuffer,
		ReadTimeout:         cfg.Listener.ReadTimeout,
		WriteTimeout:        cfg.Listener.WriteTimeout,
		Logger:              logger,
	})

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", handler.Handle)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := pool.Health(r.Context(), 5*time.Second); err != nil {
			http.Error(w, "database unreachable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	httpServer := &http.Server{
		Addr:    cfg.Listener.Addr(),
		Handler: mux,
	}

	lifecycle := server.NewLifecycle(logger)

	lifecycle.Add("http", &server.FuncService{
		StartFn: func() error {
			logger.Info("intent listener ready",
				zap.String("addr", cfg.Listener.Addr()),
			)
			if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				return err
			}
			return nil
		},
		StopFn: func() {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			_ = httpServer.Shutdown(shutdownCtx)
		},
	})

	watchCtx, stopWatch := context.WithCancel(ctx)
	lifecycle.Add("postgres", &server.FuncService{
		StartFn: func() error {
			return pool.WatchHealth(watchCtx, 30*time.Second, 5*time.Second, logger)
		},
		StopFn: func() {
			stopWatch()
			pool.Close()
		},
	})

	logger.Info("rooms service initialized",
		zap.Duration("startup", time.Since(start)),
	)

	if err := lifecycle.Run(ctx); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
}
