package model

import (
	"time"

	"github.com/google/uuid"
)

// Tariff slugs, в порядке возрастания. Платина включает в себя стандарт.
const (
	TariffStandard = "standard"
	TariffPlatinum = "platinum"
)

type Module struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	OrderIndex  int       `json:"order_index"`
	MinTariff   string    `json:"min_tariff"` // 'standard' или 'platinum'
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
}
