package model

import (
	"time"

	"github.com/google/uuid"
)

// LessonOverride — ручное исключение админа для пары (user, lesson).
// Наличие строки само по себе значимо: нет строки — нет исключения,
// is_locked = true — урок принудительно закрыт, false — принудительно открыт.
type LessonOverride struct {
	UserID    int64     `json:"user_id"`
	LessonID  uuid.UUID `json:"lesson_id"`
	IsLocked  bool      `json:"is_locked"`
	CreatedAt time.Time `json:"created_at"`
}
