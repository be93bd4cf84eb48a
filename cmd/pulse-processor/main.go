package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"pulse-telemetry/internal/config"
	"pulse-telemetry/internal/logger"
	"pulse-telemetry/internal/service"
)

func main() {
	// 加载配置
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 初始化Logger
	zapLogger, err := logger.NewLogger(cfg.Log.Level, cfg.Log.Format, "pulse-processor")
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zapLogger.Sync()

	zapLogger.Info("Starting pulse-processor service",
		zap.String("stream", cfg.Exchange.Stream),
		zap.String("consumer_group", cfg.Processor.ConsumerGroup),
		zap.String("consumer_name", cfg.Processor.ConsumerName),
	)

	// 创建服务
	processorService, err := service.NewProcessorService(cfg, zapLogger)
	if err != nil {
		zapLogger.Fatal("Failed to create processor service", zap.Error(err))
	}

	// 启动服务
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		if err := processorService.Start(ctx); err != nil {
			zapLogger.Fatal("Failed to start processor service", zap.Error(err))
		}
	}()

	// 等待中断信号
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigChan
	zapLogger.Info("Received signal, shutting down", zap.String("signal", sig.String()))

	// 优雅关闭
	cancel()
	if err := processorService.Stop(context.Background()); err != nil {
		zapLogger.Error("Error during shutdown", zap.Error(err))
	}

	zapLogger.Info("Service stopped")
}
