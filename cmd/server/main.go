package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"servicedesk/internal/channel"
	"servicedesk/internal/channel/provider"
	channelrepo "servicedesk/internal/channel/repository"
	"servicedesk/internal/commons"
	"servicedesk/internal/domain"
	"servicedesk/internal/infrastructure/logger"
	"servicedesk/internal/infrastructure/mysql"
	"servicedesk/internal/notification"
	"servicedesk/internal/order"
	orderrepo "servicedesk/internal/order/repository"
	"servicedesk/internal/server"
)

func main() {
	cfg, err := commons.LoadConfig("internal/config/config.yaml")
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	zapLogger, err := logger.New(cfg.Log.Level)
	if err != nil {
		log.Fatalf("creating logger: %v", err)
	}
	defer zapLogger.Sync()

	db, err := mysql.NewConnection(cfg.Database)
	if err != nil {
		zapLogger.Fatal("connecting to database", zap.Error(err))
	}
	defer db.Close()
	zapLogger.Info("database connected")

	// Notification pipeline: transition handlers enqueue, outbox workers
	// deliver. Provider clients are built per tenant from its ChannelConfig.
	orderRepo := orderrepo.NewMySQLOrderRepository(db)
	configRepo := channelrepo.NewMySQLChannelConfigRepository(db)
	templateRepo := channelrepo.NewMySQLMessageTemplateRepository(db)
	logRepo := channelrepo.NewMySQLMessageLogRepository(db)

	dispatcher := notification.NewDispatcher(logRepo, cfg.Channel.CountryCode, zapLogger)
	mailer := notification.NewMailer(cfg.Mail)
	newChannelClient := func(channelCfg domain.ChannelConfig) notification.ChannelClient {
		return provider.NewClient(channelCfg, cfg.Channel.HTTPTimeout)
	}

	outbox := notification.NewOutbox(
		cfg.Outbox.QueueSize,
		orderRepo,
		configRepo,
		templateRepo,
		dispatcher,
		newChannelClient,
		mailer,
		zapLogger,
	)

	workerCtx, cancelWorkers := context.WithCancel(context.Background())
	outbox.Start(workerCtx, cfg.Outbox.Workers)

	orderCtrl := order.NewModule(db, outbox, zapLogger)
	channelCtrl := channel.NewModule(db, cfg, zapLogger)

	router := server.NewRouter(orderCtrl, channelCtrl, zapLogger)
	srv := server.New(cfg.Server.Port, router, zapLogger)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := srv.Start(); err != nil {
			zapLogger.Fatal("server error", zap.Error(err))
		}
	}()

	<-quit
	zapLogger.Info("received shutdown signal")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zapLogger.Fatal("server shutdown failed", zap.Error(err))
	}

	outbox.Close()
	cancelWorkers()

	zapLogger.Info("server stopped gracefully")
}
