package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"school-bot/internal/model"
)

// UnlockChecker проверяет доступность урока (реализуется ProgressService)
type UnlockChecker interface {
	IsLessonUnlocked(ctx context.Context, userID int64, lessonID uuid.UUID) (bool, error)
}

// HomeworkNotifier асинхронно уведомляет кураторов о новой сдаче
type HomeworkNotifier interface {
	NotifyNewHomework(student *model.User, module *model.Module, lesson *model.Lesson, sub *model.HomeworkSubmission)
}

// HomeworkService — машина состояний сдачи ДЗ:
// pending -> {approved, rejected}, rejected -> pending (пересдача на месте),
// approved — терминальный статус.
type HomeworkService struct {
	submissionStore SubmissionStore
	lessonStore     LessonStore
	moduleStore     ModuleStore
	engagementStore EngagementStore
	unlocks         UnlockChecker
	notifier        HomeworkNotifier
	logger          *zap.Logger
}

func NewHomeworkService(
	submissionStore SubmissionStore,
	lessonStore LessonStore,
	moduleStore ModuleStore,
	engagementStore EngagementStore,
	unlocks UnlockChecker,
	notifier HomeworkNotifier,
	logger *zap.Logger,
) *HomeworkService {
	return &HomeworkService{
		submissionStore: submissionStore,
		lessonStore:     lessonStore,
		moduleStore:     moduleStore,
		engagementStore: engagementStore,
		unlocks:         unlocks,
		notifier:        notifier,
		logger:          logger,
	}
}

// Submit принимает сдачу ДЗ от ученика.
//
// Урок должен быть открыт для пользователя и иметь ДЗ. Если сдачи не было —
// создаётся pending-строка. Если прошлая сдача отклонена — она перезаписывается
// новым ответом и возвращается в pending (комментарий куратора очищается).
// Сдача в статусе pending или approved даёт ErrAlreadySubmitted.
func (s *HomeworkService) Submit(ctx context.Context, user *model.User, lessonID uuid.UUID, answerText string, quizAnswers map[string]any) (*model.HomeworkSubmission, error) {
	lesson, err := s.lessonStore.GetByID(ctx, lessonID)
	if err != nil {
		return nil, fmt.Errorf("get lesson: %w", err)
	}
	if lesson == nil || !lesson.IsActive {
		return nil, ErrNotFound
	}
	if !lesson.HasHomework {
		return nil, ErrNoHomework
	}

	// Серверная проверка доступа: клиент мог видеть устаревшее состояние
	unlocked, err := s.unlocks.IsLessonUnlocked(ctx, user.ID, lessonID)
	if err != nil {
		return nil, fmt.Errorf("check lesson access: %w", err)
	}
	if !unlocked {
		return nil, ErrLessonLocked
	}

	existing, err := s.submissionStore.GetByUserAndLesson(ctx, user.ID, lessonID)
	if err != nil {
		return nil, fmt.Errorf("get existing submission: %w", err)
	}

	var sub *model.HomeworkSubmission

	switch {
	case existing == nil:
		sub = &model.HomeworkSubmission{
			UserID:      user.ID,
			LessonID:    lessonID,
			AnswerText:  answerText,
			QuizAnswers: quizAnswers,
		}
		inserted, err := s.submissionStore.Create(ctx, sub)
		if err != nil {
			return nil, fmt.Errorf("create submission: %w", err)
		}
		if !inserted {
			// Гонка: параллельная сдача успела раньше
			return nil, ErrAlreadySubmitted
		}

		s.markEngaged(ctx, user)

	case existing.IsRejected():
		ok, err := s.submissionStore.Resubmit(ctx, user.ID, lessonID, answerText, quizAnswers)
		if err != nil {
			return nil, fmt.Errorf("resubmit homework: %w", err)
		}
		if !ok {
			// Статус успел измениться между чтением и обновлением
			return nil, ErrAlreadySubmitted
		}

		sub = existing
		sub.AnswerText = answerText
		sub.QuizAnswers = quizAnswers
		sub.Status = model.SubmissionStatusPending
		sub.CuratorComment = nil
		sub.ReviewedAt = nil

	default:
		return nil, ErrAlreadySubmitted
	}

	s.logger.Info("Homework submitted",
		zap.Int64("user_id", user.ID),
		zap.String("lesson_id", lessonID.String()),
		zap.String("submission_id", sub.ID.String()),
	)

	s.notify(ctx, user, lesson, sub)

	return sub, nil
}

// Review проверяет сдачу: decision 'approved' или 'rejected'.
// Авторизация проверяющего — предусловие вызывающей стороны.
func (s *HomeworkService) Review(ctx context.Context, submissionID uuid.UUID, decision string, comment string) (*model.HomeworkSubmission, error) {
	if decision != model.SubmissionStatusApproved && decision != model.SubmissionStatusRejected {
		return nil, fmt.Errorf("unknown review decision: %q", decision)
	}

	sub, err := s.submissionStore.GetByID(ctx, submissionID)
	if err != nil {
		return nil, fmt.Errorf("get submission: %w", err)
	}
	if sub == nil {
		return nil, ErrNotFound
	}

	var commentPtr *string
	if comment != "" {
		commentPtr = &comment
	}

	ok, err := s.submissionStore.UpdateReview(ctx, submissionID, decision, commentPtr)
	if err != nil {
		return nil, fmt.Errorf("update review: %w", err)
	}
	if !ok {
		// Сдача уже не pending: второй куратор успел раньше, либо approved терминален
		return nil, ErrInvalidTransition
	}

	sub.Status = decision
	sub.CuratorComment = commentPtr

	s.logger.Info("Homework reviewed",
		zap.String("submission_id", submissionID.String()),
		zap.String("decision", decision),
	)

	return sub, nil
}

// ReviewItem — сдача из очереди проверки вместе с её уроком и модулем
type ReviewItem struct {
	Submission *model.HomeworkSubmission
	Lesson     *model.Lesson
	Module     *model.Module
}

// GetReviewQueue возвращает очередь проверки с контекстом урока и модуля.
// Урок или модуль могут быть nil, если их успели деактивировать.
func (s *HomeworkService) GetReviewQueue(ctx context.Context, limit int) ([]ReviewItem, error) {
	subs, err := s.submissionStore.GetPending(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("get pending submissions: %w", err)
	}

	items := make([]ReviewItem, 0, len(subs))
	for _, sub := range subs {
		item := ReviewItem{Submission: sub}

		lesson, err := s.lessonStore.GetByID(ctx, sub.LessonID)
		if err != nil {
			return nil, fmt.Errorf("get lesson for review queue: %w", err)
		}
		item.Lesson = lesson

		if lesson != nil {
			module, err := s.moduleStore.GetByID(ctx, lesson.ModuleID)
			if err != nil {
				return nil, fmt.Errorf("get module for review queue: %w", err)
			}
			item.Module = module
		}

		items = append(items, item)
	}

	return items, nil
}

// GetForLesson возвращает сдачу пользователя по уроку (nil, если сдачи нет)
func (s *HomeworkService) GetForLesson(ctx context.Context, userID int64, lessonID uuid.UUID) (*model.HomeworkSubmission, error) {
	return s.submissionStore.GetByUserAndLesson(ctx, userID, lessonID)
}

// markEngaged одноразово отмечает начало работы ученика с куратором
func (s *HomeworkService) markEngaged(ctx context.Context, user *model.User) {
	engaged, err := s.engagementStore.MarkCuratorEngaged(ctx, user.ID)
	if err != nil {
		// Сдача уже принята, отметку не считаем фатальной
		s.logger.Error("Failed to mark curator engagement",
			zap.Int64("user_id", user.ID),
			zap.Error(err),
		)
		return
	}
	if engaged {
		s.logger.Info("Curator engagement started", zap.Int64("user_id", user.ID))
	}
}

func (s *HomeworkService) notify(ctx context.Context, user *model.User, lesson *model.Lesson, sub *model.HomeworkSubmission) {
	if s.notifier == nil {
		return
	}

	module, err := s.moduleStore.GetByID(ctx, lesson.ModuleID)
	if err != nil {
		s.logger.Error("Failed to load module for notification",
			zap.String("module_id", lesson.ModuleID.String()),
			zap.Error(err),
		)
	}

	s.notifier.NotifyNewHomework(user, module, lesson, sub)
}
