package service

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-redis/redis/v8"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"pulse-telemetry/internal/config"
	"pulse-telemetry/internal/exchange"
	"pulse-telemetry/internal/ingest"
)

// IngestService 指标摄取服务
type IngestService struct {
	config      *config.Config
	logger      *zap.Logger
	redisClient *redis.Client
	server      *http.Server
}

// NewIngestService 创建指标摄取服务
func NewIngestService(cfg *config.Config, logger *zap.Logger) (*IngestService, error) {
	redisClient := exchange.NewRedisClient(&cfg.Redis)
	if err := exchange.Ping(context.Background(), redisClient); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	handler := ingest.NewHandler(redisClient, cfg.Exchange.Stream, logger)

	router := mux.NewRouter()
	router.HandleFunc("/ingest/metrics", handler.HandleIngest).Methods(http.MethodPost)
	router.HandleFunc("/healthz", handler.HandleHealth).Methods(http.MethodGet)

	return &IngestService{
		config:      cfg,
		logger:      logger,
		redisClient: redisClient,
		server: &http.Server{
			Addr:    cfg.Ingest.ListenAddr,
			Handler: router,
		},
	}, nil
}

// Start 启动HTTP服务（阻塞直到关闭）
func (s *IngestService) Start(ctx context.Context) error {
	s.logger.Info("Ingest service listening",
		zap.String("addr", s.config.Ingest.ListenAddr),
		zap.String("stream", s.config.Exchange.Stream),
	)

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Stop 优雅关闭
func (s *IngestService) Stop(ctx context.Context) error {
	if err := s.server.Shutdown(ctx); err != nil {
		return err
	}
	return exchange.Close(s.redisClient)
}
