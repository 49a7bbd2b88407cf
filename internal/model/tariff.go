package model

import "time"

// TariffGrant — активная подписка пользователя на тариф
type TariffGrant struct {
	ID         int64      `json:"id"`
	UserID     int64      `json:"user_id"`
	TariffSlug string     `json:"tariff_slug"`
	ExpiresAt  *time.Time `json:"expires_at"`
	IsActive   bool       `json:"is_active"`
	CreatedAt  time.Time  `json:"created_at"`
}
