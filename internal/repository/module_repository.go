package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"school-bot/internal/model"
)

type ModuleRepository struct {
	pool *pgxpool.Pool
}

func NewModuleRepository(pool *pgxpool.Pool) *ModuleRepository {
	return &ModuleRepository{pool: pool}
}

// GetActive получает активные модули курса, отсортированные по order_index
func (r *ModuleRepository) GetActive(ctx context.Context) ([]model.Module, error) {
	query := `
		SELECT id, title, description, order_index, min_tariff, is_active, created_at
		FROM course_modules
		WHERE is_active = true
		ORDER BY order_index
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("get active modules: %w", err)
	}
	defer rows.Close()

	var modules []model.Module
	for rows.Next() {
		var m model.Module
		err := rows.Scan(
			&m.ID,
			&m.Title,
			&m.Description,
			&m.OrderIndex,
			&m.MinTariff,
			&m.IsActive,
			&m.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan module: %w", err)
		}
		modules = append(modules, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate modules: %w", err)
	}

	return modules, nil
}

// GetByID получает модуль по ID
func (r *ModuleRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Module, error) {
	query := `
		SELECT id, title, description, order_index, min_tariff, is_active, created_at
		FROM course_modules
		WHERE id = $1
	`

	var m model.Module
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&m.ID,
		&m.Title,
		&m.Description,
		&m.OrderIndex,
		&m.MinTariff,
		&m.IsActive,
		&m.CreatedAt,
	)

	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get module by id: %w", err)
	}

	return &m, nil
}
