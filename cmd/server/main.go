package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"build-streak-go/internal/common"
	"build-streak-go/internal/config"
	"build-streak-go/internal/frame"
	"build-streak-go/internal/server"

	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		_, _ = zap.NewProduction()
		zap.L().Fatal("Failed to load configuration", zap.Error(err))
	}

	_, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	zap.L().Info("Starting Build Streak server")

	services, err := common.InitializeServices(ctx, cfg, nil)
	if err != nil {
		zap.L().Fatal("Failed to initialize services", zap.Error(err))
	}
	defer services.Close()

	frameCfg, err := frame.LoadConfig(cfg.Server.FrameFile)
	if err != nil {
		zap.L().Fatal("Failed to load frame configuration", zap.Error(err))
	}

	srv := server.New(cfg.Server, services.Identity, services.Chain, services.Notes, frameCfg)
	if err := srv.Bootstrap(ctx); err != nil {
		zap.L().Fatal("Failed to resolve initial session", zap.Error(err))
	}

	// Cancel the root context on SIGINT/SIGTERM; Run shuts down gracefully.
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		zap.L().Info("Received shutdown signal", zap.String("signal", sig.String()))
		cancel()
	}()

	if err := srv.Run(ctx); err != nil {
		zap.L().Fatal("Server failed", zap.Error(err))
	}

	zap.L().Info("Server stopped")
}
