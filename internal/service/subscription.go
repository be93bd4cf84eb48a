package service

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"pulse-telemetry/internal/config"
	"pulse-telemetry/internal/database"
	"pulse-telemetry/internal/repository"
	"pulse-telemetry/internal/subscription"
)

// SubscriptionService 订阅服务
type SubscriptionService struct {
	config *config.Config
	logger *zap.Logger
	db     *sql.DB
	server *http.Server
}

// NewSubscriptionService 创建订阅服务
func NewSubscriptionService(cfg *config.Config, logger *zap.Logger) (*SubscriptionService, error) {
	db, err := database.NewSQLiteDB(cfg.Subscription.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open subscription database: %w", err)
	}
	if err := repository.EnsureSubscriptionsSchema(db); err != nil {
		db.Close()
		return nil, err
	}

	handler := subscription.NewHandler(repository.NewSQLiteSubscriptionsRepository(db), logger)
	router := mux.NewRouter()
	handler.Register(router)

	return &SubscriptionService{
		config: cfg,
		logger: logger,
		db:     db,
		server: &http.Server{
			Addr:    cfg.Subscription.ListenAddr,
			Handler: router,
		},
	}, nil
}

// Start 启动HTTP服务（阻塞直到关闭）
func (s *SubscriptionService) Start(ctx context.Context) error {
	s.logger.Info("Subscription service listening",
		zap.String("addr", s.config.Subscription.ListenAddr),
		zap.String("db_path", s.config.Subscription.DBPath),
	)

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Stop 优雅关闭
func (s *SubscriptionService) Stop(ctx context.Context) error {
	if err := s.server.Shutdown(ctx); err != nil {
		return err
	}
	return s.db.Close()
}
