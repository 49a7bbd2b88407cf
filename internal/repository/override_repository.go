package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type OverrideRepository struct {
	pool *pgxpool.Pool
}

func NewOverrideRepository(pool *pgxpool.Pool) *OverrideRepository {
	return &OverrideRepository{pool: pool}
}

// Upsert создаёт или заменяет исключение для пары (user, lesson)
func (r *OverrideRepository) Upsert(ctx context.Context, userID int64, lessonID uuid.UUID, isLocked bool) error {
	query := `
		INSERT INTO lesson_overrides (user_id, lesson_id, is_locked)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, lesson_id) DO UPDATE SET is_locked = EXCLUDED.is_locked
	`

	_, err := r.pool.Exec(ctx, query, userID, lessonID, isLocked)
	if err != nil {
		return fmt.Errorf("upsert override: %w", err)
	}

	return nil
}

// Delete удаляет исключение, возвращая урок под управление цепочки.
// Возвращает false, если исключения не было.
func (r *OverrideRepository) Delete(ctx context.Context, userID int64, lessonID uuid.UUID) (bool, error) {
	query := `DELETE FROM lesson_overrides WHERE user_id = $1 AND lesson_id = $2`

	result, err := r.pool.Exec(ctx, query, userID, lessonID)
	if err != nil {
		return false, fmt.Errorf("delete override: %w", err)
	}

	return result.RowsAffected() > 0, nil
}

// GetSetsByUser получает исключения пользователя двумя непересекающимися
// множествами: принудительно закрытые и принудительно открытые уроки
func (r *OverrideRepository) GetSetsByUser(ctx context.Context, userID int64) (locked, unlocked map[uuid.UUID]struct{}, err error) {
	query := `SELECT lesson_id, is_locked FROM lesson_overrides WHERE user_id = $1`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("get overrides: %w", err)
	}
	defer rows.Close()

	locked = make(map[uuid.UUID]struct{})
	unlocked = make(map[uuid.UUID]struct{})

	for rows.Next() {
		var lessonID uuid.UUID
		var isLocked bool
		if err := rows.Scan(&lessonID, &isLocked); err != nil {
			return nil, nil, fmt.Errorf("scan override: %w", err)
		}
		if isLocked {
			locked[lessonID] = struct{}{}
		} else {
			unlocked[lessonID] = struct{}{}
		}
	}

	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("iterate overrides: %w", err)
	}

	return locked, unlocked, nil
}
