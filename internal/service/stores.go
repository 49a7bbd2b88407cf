package service

import (
	"context"

	"github.com/google/uuid"

	"school-bot/internal/model"
)

// Контракты хранилищ, которые потребляют сервисы.
// Реализуются репозиториями из internal/repository.

type ModuleStore interface {
	GetActive(ctx context.Context) ([]model.Module, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.Module, error)
}

type LessonStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.Lesson, error)
	GetActiveByModule(ctx context.Context, moduleID uuid.UUID) ([]model.Lesson, error)
	GetAllActive(ctx context.Context) (map[uuid.UUID][]model.Lesson, error)
}

type SubmissionStore interface {
	Create(ctx context.Context, sub *model.HomeworkSubmission) (bool, error)
	Resubmit(ctx context.Context, userID int64, lessonID uuid.UUID, answerText string, quizAnswers map[string]any) (bool, error)
	UpdateReview(ctx context.Context, id uuid.UUID, status string, comment *string) (bool, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.HomeworkSubmission, error)
	GetByUserAndLesson(ctx context.Context, userID int64, lessonID uuid.UUID) (*model.HomeworkSubmission, error)
	GetStatusesByUser(ctx context.Context, userID int64) (map[uuid.UUID]string, error)
	GetPending(ctx context.Context, limit int) ([]*model.HomeworkSubmission, error)
}

type OverrideStore interface {
	Upsert(ctx context.Context, userID int64, lessonID uuid.UUID, isLocked bool) error
	Delete(ctx context.Context, userID int64, lessonID uuid.UUID) (bool, error)
	GetSetsByUser(ctx context.Context, userID int64) (locked, unlocked map[uuid.UUID]struct{}, err error)
}

type TariffStore interface {
	GetActiveSlugsByUser(ctx context.Context, userID int64) ([]string, error)
}

type EngagementStore interface {
	MarkCuratorEngaged(ctx context.Context, userID int64) (bool, error)
}
