package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"pulse-telemetry/internal/models"
)

// ErrNotFound 记录不存在
var ErrNotFound = errors.New("record not found")

// PackagesRepository 套餐Repository接口
type PackagesRepository interface {
	Create(ctx context.Context, p *models.Package) (*models.Package, error)
	GetByID(ctx context.Context, id string) (*models.Package, error)
	List(ctx context.Context) ([]models.Package, error)
	Update(ctx context.Context, p *models.Package) error
	Delete(ctx context.Context, id string) error
}

// SQLitePackagesRepository 套餐Repository实现（SQLite本地存储）
type SQLitePackagesRepository struct {
	db *sql.DB
}

// NewSQLitePackagesRepository 创建套餐Repository
func NewSQLitePackagesRepository(db *sql.DB) *SQLitePackagesRepository {
	return &SQLitePackagesRepository{db: db}
}

var _ PackagesRepository = (*SQLitePackagesRepository)(nil)

// EnsurePackagesSchema 创建packages表（已存在则跳过）
func EnsurePackagesSchema(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS packages (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			speed_mbps INTEGER NOT NULL,
			price_per_month INTEGER NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			active INTEGER NOT NULL DEFAULT 1
		)`)
	if err != nil {
		return fmt.Errorf("failed to create packages table: %w", err)
	}
	return nil
}

// Create 新建套餐（ID由服务端生成）
func (r *SQLitePackagesRepository) Create(ctx context.Context, p *models.Package) (*models.Package, error) {
	created := *p
	created.ID = uuid.New().String()

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO packages (id, name, speed_mbps, price_per_month, description, active)
		VALUES (?, ?, ?, ?, ?, ?)`,
		created.ID, created.Name, created.SpeedMbps, created.PricePerMonth, created.Description, created.Active,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert package: %w", err)
	}

	return &created, nil
}

// GetByID 按ID查询套餐
func (r *SQLitePackagesRepository) GetByID(ctx context.Context, id string) (*models.Package, error) {
	var p models.Package
	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, speed_mbps, price_per_month, description, active
		FROM packages WHERE id = ?`, id,
	).Scan(&p.ID, &p.Name, &p.SpeedMbps, &p.PricePerMonth, &p.Description, &p.Active)

	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query package: %w", err)
	}

	return &p, nil
}

// List 查询全部套餐
func (r *SQLitePackagesRepository) List(ctx context.Context) ([]models.Package, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, speed_mbps, price_per_month, description, active
		FROM packages ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list packages: %w", err)
	}
	defer rows.Close()

	var packages []models.Package
	for rows.Next() {
		var p models.Package
		if err := rows.Scan(&p.ID, &p.Name, &p.SpeedMbps, &p.PricePerMonth, &p.Description, &p.Active); err != nil {
			return nil, fmt.Errorf("failed to scan package: %w", err)
		}
		packages = append(packages, p)
	}

	return packages, rows.Err()
}

// Update 更新套餐全部字段
func (r *SQLitePackagesRepository) Update(ctx context.Context, p *models.Package) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE packages
		SET name = ?, speed_mbps = ?, price_per_month = ?, description = ?, active = ?
		WHERE id = ?`,
		p.Name, p.SpeedMbps, p.PricePerMonth, p.Description, p.Active, p.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update package: %w", err)
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

// Delete 删除套餐
func (r *SQLitePackagesRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM packages WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete package: %w", err)
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
