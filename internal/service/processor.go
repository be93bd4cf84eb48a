package service

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"pulse-telemetry/internal/alert"
	"pulse-telemetry/internal/config"
	"pulse-telemetry/internal/database"
	"pulse-telemetry/internal/exchange"
	"pulse-telemetry/internal/processor"
	"pulse-telemetry/internal/repository"
)

// ProcessorService 指标处理服务
type ProcessorService struct {
	config      *config.Config
	logger      *zap.Logger
	db          *sql.DB
	redisClient *redis.Client
	worker      *processor.Worker
	mqttAlerts  *alert.MQTTNotifier
}

// NewProcessorService 创建指标处理服务
func NewProcessorService(cfg *config.Config, logger *zap.Logger) (*ProcessorService, error) {
	// 初始化数据库
	db, err := database.NewPostgresDB(&cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := repository.EnsureAlertsSchema(db); err != nil {
		database.Close(db)
		return nil, err
	}

	// 初始化 Redis（交换机所在）
	redisClient := exchange.NewRedisClient(&cfg.Redis)
	if err := exchange.Ping(context.Background(), redisClient); err != nil {
		database.Close(db)
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	s := &ProcessorService{
		config:      cfg,
		logger:      logger,
		db:          db,
		redisClient: redisClient,
	}

	// 告警通道：配置了哪个就接哪个
	var notifiers []alert.Notifier
	if cfg.Telegram.BotToken != "" && cfg.Telegram.ChatID != "" {
		notifiers = append(notifiers, alert.NewTelegramNotifier(&cfg.Telegram))
	}
	if cfg.MQTT.Broker != "" {
		mqttNotifier, err := alert.NewMQTTNotifier(&cfg.MQTT)
		if err != nil {
			s.Stop(context.Background())
			return nil, fmt.Errorf("failed to connect to MQTT broker: %w", err)
		}
		s.mqttAlerts = mqttNotifier
		notifiers = append(notifiers, mqttNotifier)
	}
	if len(notifiers) == 0 {
		logger.Warn("No alert channel configured, critical alerts will only be logged")
	}

	dispatcher := alert.NewDispatcher(logger, notifiers...)
	alertsRepo := repository.NewPostgresAlertsRepository(db, logger)

	s.worker = processor.NewWorker(
		redisClient,
		alertsRepo,
		dispatcher,
		logger,
		cfg.Exchange.Stream,
		cfg.Processor.ConsumerGroup,
		cfg.Processor.ConsumerName,
		cfg.Processor.BatchSize,
	)

	return s, nil
}

// Start 启动消费循环（阻塞直到 ctx 取消）
func (s *ProcessorService) Start(ctx context.Context) error {
	return s.worker.Start(ctx)
}

// Stop 释放连接
func (s *ProcessorService) Stop(ctx context.Context) error {
	if s.mqttAlerts != nil {
		s.mqttAlerts.Disconnect()
	}
	if s.redisClient != nil {
		exchange.Close(s.redisClient)
	}
	return database.Close(s.db)
}
