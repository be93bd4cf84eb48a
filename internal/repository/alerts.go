package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"pulse-telemetry/internal/models"
)

// AlertsRepository 告警记录Repository接口
type AlertsRepository interface {
	Insert(ctx context.Context, deviceID string, status models.Severity, metricsJSON string) (*models.AlertRecord, error)
}

// PostgresAlertsRepository 告警记录Repository实现
type PostgresAlertsRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewPostgresAlertsRepository 创建告警记录Repository
func NewPostgresAlertsRepository(db *sql.DB, logger *zap.Logger) *PostgresAlertsRepository {
	return &PostgresAlertsRepository{db: db, logger: logger}
}

// 确保实现了接口
var _ AlertsRepository = (*PostgresAlertsRepository)(nil)

// EnsureAlertsSchema 创建alerts表（已存在则跳过）
func EnsureAlertsSchema(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS alerts (
			id UUID PRIMARY KEY,
			device_id TEXT NOT NULL,
			status TEXT NOT NULL,
			metrics TEXT NOT NULL DEFAULT '{}',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`)
	if err != nil {
		return fmt.Errorf("failed to create alerts table: %w", err)
	}
	return nil
}

// Insert 写入一条告警记录
// 单行INSERT，多个processor实例并发写入安全
func (r *PostgresAlertsRepository) Insert(ctx context.Context, deviceID string, status models.Severity, metricsJSON string) (*models.AlertRecord, error) {
	record := &models.AlertRecord{
		ID:        uuid.New().String(),
		DeviceID:  deviceID,
		Status:    status,
		Metrics:   metricsJSON,
		CreatedAt: time.Now().UTC(),
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO alerts (id, device_id, status, metrics, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		record.ID, record.DeviceID, string(record.Status), record.Metrics, record.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert alert record: %w", err)
	}

	r.logger.Debug("Alert record persisted",
		zap.String("id", record.ID),
		zap.String("device_id", record.DeviceID),
		zap.String("status", string(record.Status)),
	)

	return record, nil
}
