package model

import (
	"time"

	"github.com/google/uuid"
)

type Lesson struct {
	ID                  uuid.UUID `json:"id"`
	ModuleID            uuid.UUID `json:"module_id"`
	Title               string    `json:"title"`
	Description         string    `json:"description"`
	OrderIndex          int       `json:"order_index"`
	VideoURL            string    `json:"video_url"`
	HasHomework         bool      `json:"has_homework"`
	HomeworkTitle       string    `json:"homework_title"`
	HomeworkDescription string    `json:"homework_description"`
	IsActive            bool      `json:"is_active"`
	CreatedAt           time.Time `json:"created_at"`
}
