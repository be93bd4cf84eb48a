package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"pulse-telemetry/internal/models"
)

// SubscriptionsRepository 订阅Repository接口
type SubscriptionsRepository interface {
	Create(ctx context.Context, s *models.Subscription) (*models.Subscription, error)
	GetByID(ctx context.Context, id string) (*models.Subscription, error)
	List(ctx context.Context) ([]models.Subscription, error)
	Update(ctx context.Context, s *models.Subscription) error
	Delete(ctx context.Context, id string) error
}

// SQLiteSubscriptionsRepository 订阅Repository实现
type SQLiteSubscriptionsRepository struct {
	db *sql.DB
}

// NewSQLiteSubscriptionsRepository 创建订阅Repository
func NewSQLiteSubscriptionsRepository(db *sql.DB) *SQLiteSubscriptionsRepository {
	return &SQLiteSubscriptionsRepository{db: db}
}

var _ SubscriptionsRepository = (*SQLiteSubscriptionsRepository)(nil)

// EnsureSubscriptionsSchema 创建subscriptions表（已存在则跳过）
func EnsureSubscriptionsSchema(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS subscriptions (
			id TEXT PRIMARY KEY,
			customer_name TEXT NOT NULL,
			phone_number TEXT NOT NULL,
			package_id TEXT NOT NULL,
			start_date REAL NOT NULL,
			status TEXT NOT NULL DEFAULT 'pending'
		)`)
	if err != nil {
		return fmt.Errorf("failed to create subscriptions table: %w", err)
	}
	return nil
}

// Create 新建订阅（ID由服务端生成，StartDate缺省为当前时间）
func (r *SQLiteSubscriptionsRepository) Create(ctx context.Context, s *models.Subscription) (*models.Subscription, error) {
	created := *s
	created.ID = uuid.New().String()
	if created.StartDate == 0 {
		created.StartDate = float64(time.Now().Unix())
	}
	if created.Status == "" {
		created.Status = models.SubscriptionPending
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO subscriptions (id, customer_name, phone_number, package_id, start_date, status)
		VALUES (?, ?, ?, ?, ?, ?)`,
		created.ID, created.CustomerName, created.PhoneNumber, created.PackageID, created.StartDate, string(created.Status),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert subscription: %w", err)
	}

	return &created, nil
}

// GetByID 按ID查询订阅
func (r *SQLiteSubscriptionsRepository) GetByID(ctx context.Context, id string) (*models.Subscription, error) {
	var s models.Subscription
	err := r.db.QueryRowContext(ctx, `
		SELECT id, customer_name, phone_number, package_id, start_date, status
		FROM subscriptions WHERE id = ?`, id,
	).Scan(&s.ID, &s.CustomerName, &s.PhoneNumber, &s.PackageID, &s.StartDate, &s.Status)

	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query subscription: %w", err)
	}

	return &s, nil
}

// List 查询全部订阅
func (r *SQLiteSubscriptionsRepository) List(ctx context.Context) ([]models.Subscription, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, customer_name, phone_number, package_id, start_date, status
		FROM subscriptions ORDER BY start_date DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list subscriptions: %w", err)
	}
	defer rows.Close()

	var subscriptions []models.Subscription
	for rows.Next() {
		var s models.Subscription
		if err := rows.Scan(&s.ID, &s.CustomerName, &s.PhoneNumber, &s.PackageID, &s.StartDate, &s.Status); err != nil {
			return nil, fmt.Errorf("failed to scan subscription: %w", err)
		}
		subscriptions = append(subscriptions, s)
	}

	return subscriptions, rows.Err()
}

// Update 更新订阅全部字段
func (r *SQLiteSubscriptionsRepository) Update(ctx context.Context, s *models.Subscription) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE subscriptions
		SET customer_name = ?, phone_number = ?, package_id = ?, start_date = ?, status = ?
		WHERE id = ?`,
		s.CustomerName, s.PhoneNumber, s.PackageID, s.StartDate, string(s.Status), s.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update subscription: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}

	return nil
}

// Delete 删除订阅
func (r *SQLiteSubscriptionsRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM subscriptions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete subscription: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}

	return nil
}
