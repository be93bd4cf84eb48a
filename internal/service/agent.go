package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"pulse-telemetry/internal/agent"
	"pulse-telemetry/internal/config"
)

// AgentService 采集代理服务
type AgentService struct {
	config *config.Config
	logger *zap.Logger
	client *agent.IngestionClient
}

// NewAgentService 创建采集代理服务
func NewAgentService(cfg *config.Config, logger *zap.Logger) *AgentService {
	sampler := agent.NewSystemSampler(cfg.Agent.DeviceID)
	streamer := agent.NewStreamer(
		sampler,
		time.Duration(cfg.Agent.Interval)*time.Second,
		cfg.Agent.SendingLimit,
	)
	client := agent.NewIngestionClient(streamer, cfg.Agent.IngestURL, logger)

	return &AgentService{
		config: cfg,
		logger: logger,
		client: client,
	}
}

// Start 启动指标推送（阻塞直到流结束或 ctx 取消）
func (s *AgentService) Start(ctx context.Context) error {
	s.logger.Info("Agent started",
		zap.String("device_id", s.config.Agent.DeviceID),
		zap.String("endpoint", s.config.Agent.IngestURL),
		zap.Int("interval_seconds", s.config.Agent.Interval),
		zap.Int("sending_limit", s.config.Agent.SendingLimit),
	)

	return s.client.Run(ctx)
}

// Stop 停止是协作式的：取消 ctx 后当前挂起点退出即可，无其他资源需要释放
func (s *AgentService) Stop(ctx context.Context) error {
	return nil
}
