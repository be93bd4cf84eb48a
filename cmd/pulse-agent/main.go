package main

import (
	"context"
	"flag"
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
	configPath := flag.String("config", "", "Path to agent YAML config file (overrides AGENT_CONFIG_FILE)")
	flag.Parse()

	// 加载配置
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *configPath != "" {
		if err := cfg.ApplyAgentFile(*configPath); err != nil {
			log.Fatalf("Failed to load agent config file: %v", err)
		}
	}

	// 初始化Logger
	zapLogger, err := logger.NewLogger(cfg.Log.Level, cfg.Log.Format, "pulse-agent")
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zapLogger.Sync()

	agentService := service.NewAgentService(cfg, zapLogger)

	// 启动推送循环
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- agentService.Start(ctx)
	}()

	// 等待中断信号或流结束
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		zapLogger.Info("Received signal, shutting down", zap.String("signal", sig.String()))
		cancel()
		<-done
	case err := <-done:
		if err != nil {
			zapLogger.Error("Metric stream terminated", zap.Error(err))
			os.Exit(1)
		}
		zapLogger.Info("Metric stream finished")
	}

	zapLogger.Info("Agent stopped")
}
