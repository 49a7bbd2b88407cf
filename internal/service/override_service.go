package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"school-bot/internal/access"
)

// OverrideService — админские исключения доступа к урокам.
// Исключение независимо от машины состояний сдач и всегда имеет приоритет
// над вычисленной цепочкой.
type OverrideService struct {
	overrideStore OverrideStore
	lessonStore   LessonStore
	logger        *zap.Logger
}

func NewOverrideService(overrideStore OverrideStore, lessonStore LessonStore, logger *zap.Logger) *OverrideService {
	return &OverrideService{
		overrideStore: overrideStore,
		lessonStore:   lessonStore,
		logger:        logger,
	}
}

// Set создаёт или заменяет исключение для пары (user, lesson)
func (s *OverrideService) Set(ctx context.Context, userID int64, lessonID uuid.UUID, mode access.OverrideState) error {
	isLocked, err := modeToLocked(mode)
	if err != nil {
		return err
	}

	lesson, err := s.lessonStore.GetByID(ctx, lessonID)
	if err != nil {
		return fmt.Errorf("get lesson: %w", err)
	}
	if lesson == nil {
		return ErrNotFound
	}

	if err := s.overrideStore.Upsert(ctx, userID, lessonID, isLocked); err != nil {
		return fmt.Errorf("set override: %w", err)
	}

	s.logger.Info("Lesson override set",
		zap.Int64("user_id", userID),
		zap.String("lesson_id", lessonID.String()),
		zap.Bool("is_locked", isLocked),
	)

	return nil
}

// BulkFailure — урок, для которого массовая операция не применилась
type BulkFailure struct {
	LessonID uuid.UUID
	Err      error
}

// BulkSet применяет исключение к списку уроков.
// Операция не атомарна по всему списку: частичное применение допустимо,
// неудавшиеся уроки возвращаются вызывающему.
func (s *OverrideService) BulkSet(ctx context.Context, userID int64, lessonIDs []uuid.UUID, mode access.OverrideState) ([]BulkFailure, error) {
	isLocked, err := modeToLocked(mode)
	if err != nil {
		return nil, err
	}

	var failures []BulkFailure
	for _, lessonID := range lessonIDs {
		if err := s.overrideStore.Upsert(ctx, userID, lessonID, isLocked); err != nil {
			failures = append(failures, BulkFailure{LessonID: lessonID, Err: err})
		}
	}

	s.logger.Info("Bulk override applied",
		zap.Int64("user_id", userID),
		zap.Int("total", len(lessonIDs)),
		zap.Int("failed", len(failures)),
		zap.Bool("is_locked", isLocked),
	)

	return failures, nil
}

// SetModule применяет исключение ко всем активным урокам модуля.
// Возвращает число применённых уроков и список неудавшихся.
func (s *OverrideService) SetModule(ctx context.Context, userID int64, moduleID uuid.UUID, mode access.OverrideState) (int, []BulkFailure, error) {
	lessons, err := s.lessonStore.GetActiveByModule(ctx, moduleID)
	if err != nil {
		return 0, nil, fmt.Errorf("get module lessons: %w", err)
	}
	if len(lessons) == 0 {
		return 0, nil, ErrNotFound
	}

	lessonIDs := make([]uuid.UUID, 0, len(lessons))
	for _, l := range lessons {
		lessonIDs = append(lessonIDs, l.ID)
	}

	failures, err := s.BulkSet(ctx, userID, lessonIDs, mode)
	if err != nil {
		return 0, nil, err
	}

	return len(lessonIDs) - len(failures), failures, nil
}

// Clear удаляет исключение, возвращая урок под управление цепочки
func (s *OverrideService) Clear(ctx context.Context, userID int64, lessonID uuid.UUID) error {
	deleted, err := s.overrideStore.Delete(ctx, userID, lessonID)
	if err != nil {
		return fmt.Errorf("clear override: %w", err)
	}
	if !deleted {
		return ErrNotFound
	}

	s.logger.Info("Lesson override cleared",
		zap.Int64("user_id", userID),
		zap.String("lesson_id", lessonID.String()),
	)

	return nil
}

func modeToLocked(mode access.OverrideState) (bool, error) {
	switch mode {
	case access.ForceLocked:
		return true, nil
	case access.ForceUnlocked:
		return false, nil
	default:
		return false, fmt.Errorf("invalid override mode: %d", mode)
	}
}
