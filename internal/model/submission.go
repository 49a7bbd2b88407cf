package model

import (
	"time"

	"github.com/google/uuid"
)

// HomeworkSubmission — ответ ученика на ДЗ урока.
// На пару (user_id, lesson_id) существует максимум одна строка:
// повторная сдача после reject перезаписывает её, а не создаёт новую.
type HomeworkSubmission struct {
	ID             uuid.UUID      `json:"id"`
	UserID         int64          `json:"user_id"`
	LessonID       uuid.UUID      `json:"lesson_id"`
	AnswerText     string         `json:"answer_text"`
	QuizAnswers    map[string]any `json:"quiz_answers"`
	Status         string         `json:"status"` // 'pending', 'approved', 'rejected'
	CuratorComment *string        `json:"curator_comment"`
	ReviewedAt     *time.Time     `json:"reviewed_at"`
	CreatedAt      time.Time      `json:"created_at"`
}

// Submission status constants
const (
	SubmissionStatusPending  = "pending"
	SubmissionStatusApproved = "approved"
	SubmissionStatusRejected = "rejected"
)

// IsPending checks if submission is awaiting review
func (s *HomeworkSubmission) IsPending() bool {
	return s.Status == SubmissionStatusPending
}

// IsApproved checks if submission is approved
func (s *HomeworkSubmission) IsApproved() bool {
	return s.Status == SubmissionStatusApproved
}

// IsRejected checks if submission is rejected
func (s *HomeworkSubmission) IsRejected() bool {
	return s.Status == SubmissionStatusRejected
}
