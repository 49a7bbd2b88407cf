package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"school-bot/internal/access"
	"school-bot/internal/model"
)

// ProgressService отвечает на вопрос "какие уроки открыты пользователю".
// Результат нигде не хранится и не кешируется: он пересчитывается из сырых
// фактов (уроки, сдачи, исключения, тарифы) на каждом чтении, поэтому
// расхождение между "сохранённым флагом" и реальностью невозможно.
type ProgressService struct {
	moduleStore     ModuleStore
	lessonStore     LessonStore
	submissionStore SubmissionStore
	overrideStore   OverrideStore
	tariffStore     TariffStore
	strictApproval  bool
	logger          *zap.Logger
}

func NewProgressService(
	moduleStore ModuleStore,
	lessonStore LessonStore,
	submissionStore SubmissionStore,
	overrideStore OverrideStore,
	tariffStore TariffStore,
	strictApproval bool,
	logger *zap.Logger,
) *ProgressService {
	return &ProgressService{
		moduleStore:     moduleStore,
		lessonStore:     lessonStore,
		submissionStore: submissionStore,
		overrideStore:   overrideStore,
		tariffStore:     tariffStore,
		strictApproval:  strictApproval,
		logger:          logger,
	}
}

// CourseView — снимок курса глазами одного пользователя:
// видимые модули, их уроки и множество открытых уроков
type CourseView struct {
	Modules  []model.Module
	Lessons  map[uuid.UUID][]model.Lesson
	Unlocked map[uuid.UUID]struct{}
	Statuses map[uuid.UUID]string // lesson_id -> статус сдачи
}

// IsUnlocked сообщает, открыт ли урок в этом снимке
func (v *CourseView) IsUnlocked(lessonID uuid.UUID) bool {
	_, ok := v.Unlocked[lessonID]
	return ok
}

// GetCourseView строит снимок курса для пользователя.
// И навигатор курса, и проверка одного урока ходят через этот метод,
// поэтому политика сида у них всегда общая.
func (s *ProgressService) GetCourseView(ctx context.Context, userID int64) (*CourseView, error) {
	var (
		modules         []model.Module
		lessonsByModule map[uuid.UUID][]model.Lesson
		statuses        map[uuid.UUID]string
		overrides       access.Overrides
		tariffs         []string
	)

	// Читаем снимок фактов параллельно. Снимок не транзакционен: результат
	// может на мгновение устареть относительно параллельного ревью или
	// исключения, но самовосстанавливается при следующем чтении.
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		modules, err = s.moduleStore.GetActive(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		lessonsByModule, err = s.lessonStore.GetAllActive(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		statuses, err = s.submissionStore.GetStatusesByUser(gctx, userID)
		return err
	})
	g.Go(func() error {
		locked, unlocked, err := s.overrideStore.GetSetsByUser(gctx, userID)
		if err != nil {
			return err
		}
		overrides = access.NewOverrides(locked, unlocked)
		return nil
	})
	g.Go(func() error {
		var err error
		tariffs, err = s.tariffStore.GetActiveSlugsByUser(gctx, userID)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("load course snapshot: %w", err)
	}

	visible := access.VisibleModules(tariffs, modules)

	visibleLessons := make(map[uuid.UUID][]model.Lesson, len(visible))
	for _, m := range visible {
		visibleLessons[m.ID] = lessonsByModule[m.ID]
	}

	unlocked, err := access.EvaluateCourse(visible, visibleLessons, s.submissionSignal(statuses), overrides)
	if err != nil {
		return nil, fmt.Errorf("evaluate course: %w", err)
	}

	return &CourseView{
		Modules:  visible,
		Lessons:  visibleLessons,
		Unlocked: unlocked,
		Statuses: statuses,
	}, nil
}

// IsLessonUnlocked проверяет доступность одного урока для пользователя
func (s *ProgressService) IsLessonUnlocked(ctx context.Context, userID int64, lessonID uuid.UUID) (bool, error) {
	view, err := s.GetCourseView(ctx, userID)
	if err != nil {
		return false, err
	}
	return view.IsUnlocked(lessonID), nil
}

func (s *ProgressService) submissionSignal(statuses map[uuid.UUID]string) access.SubmissionFunc {
	if s.strictApproval {
		return access.HasApprovedSubmission(statuses)
	}
	return access.HasAnySubmission(statuses)
}
