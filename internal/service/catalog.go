package service

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"pulse-telemetry/internal/catalog"
	"pulse-telemetry/internal/config"
	"pulse-telemetry/internal/database"
	"pulse-telemetry/internal/repository"
)

// CatalogService 套餐目录服务
type CatalogService struct {
	config *config.Config
	logger *zap.Logger
	db     *sql.DB
	server *http.Server
}

// NewCatalogService 创建套餐目录服务
func NewCatalogService(cfg *config.Config, logger *zap.Logger) (*CatalogService, error) {
	db, err := database.NewSQLiteDB(cfg.Catalog.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog database: %w", err)
	}
	if err := repository.EnsurePackagesSchema(db); err != nil {
		db.Close()
		return nil, err
	}

	handler := catalog.NewHandler(repository.NewSQLitePackagesRepository(db), logger)
	router := mux.NewRouter()
	handler.Register(router)

	return &CatalogService{
		config: cfg,
		logger: logger,
		db:     db,
		server: &http.Server{
			Addr:    cfg.Catalog.ListenAddr,
			Handler: router,
		},
	}, nil
}

// Start 启动HTTP服务（阻塞直到关闭）
func (s *CatalogService) Start(ctx context.Context) error {
	s.logger.Info("Catalog service listening",
		zap.String("addr", s.config.Catalog.ListenAddr),
		zap.String("db_path", s.config.Catalog.DBPath),
	)

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Stop 优雅关闭
func (s *CatalogService) Stop(ctx context.Context) error {
	if err := s.server.Shutdown(ctx); err != nil {
		return err
	}
	return s.db.Close()
}
