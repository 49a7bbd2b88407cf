package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

type TariffRepository struct {
	pool *pgxpool.Pool
}

func NewTariffRepository(pool *pgxpool.Pool) *TariffRepository {
	return &TariffRepository{pool: pool}
}

// GetActiveSlugsByUser получает тарифы пользователя.
// Просроченные подписки не считаются.
func (r *TariffRepository) GetActiveSlugsByUser(ctx context.Context, userID int64) ([]string, error) {
	query := `
		SELECT tariff_slug
		FROM user_tariffs
		WHERE user_id = $1
		  AND is_active = true
		  AND (expires_at IS NULL OR expires_at > NOW())
	`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("get user tariffs: %w", err)
	}
	defer rows.Close()

	var slugs []string
	for rows.Next() {
		var slug string
		if err := rows.Scan(&slug); err != nil {
			return nil, fmt.Errorf("scan tariff slug: %w", err)
		}
		slugs = append(slugs, slug)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tariffs: %w", err)
	}

	return slugs, nil
}

// Grant выдаёт пользователю тариф (или продлевает существующий)
func (r *TariffRepository) Grant(ctx context.Context, userID int64, tariffSlug string) error {
	query := `
		INSERT INTO user_tariffs (user_id, tariff_slug, is_active)
		VALUES ($1, $2, true)
		ON CONFLICT (user_id, tariff_slug) DO UPDATE SET is_active = true, expires_at = NULL
	`

	_, err := r.pool.Exec(ctx, query, userID, tariffSlug)
	if err != nil {
		return fmt.Errorf("grant tariff: %w", err)
	}

	return nil
}
