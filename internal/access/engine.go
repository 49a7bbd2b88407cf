package access

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"school-bot/internal/model"
)

// ErrInvalidInput возвращается при некорректной последовательности уроков
// (дубликаты order_index или нарушенная сортировка)
var ErrInvalidInput = errors.New("invalid lesson sequence")

// SubmissionFunc сообщает, засчитана ли сдача ДЗ по уроку для целей открытия цепочки
type SubmissionFunc func(lessonID uuid.UUID) bool

// HasAnySubmission — сигнал по умолчанию: любая строка сдачи
// (pending/approved/rejected) открывает следующий урок
func HasAnySubmission(statuses map[uuid.UUID]string) SubmissionFunc {
	return func(lessonID uuid.UUID) bool {
		_, ok := statuses[lessonID]
		return ok
	}
}

// HasApprovedSubmission — строгий сигнал: следующий урок открывает только approved
func HasApprovedSubmission(statuses map[uuid.UUID]string) SubmissionFunc {
	return func(lessonID uuid.UUID) bool {
		return statuses[lessonID] == model.SubmissionStatusApproved
	}
}

// Evaluate вычисляет множество открытых уроков внутри одного модуля.
//
// Уроки идут строго слева направо: урок открывает следующий, если у него нет ДЗ
// или ДЗ сдано. На первом закрытом уроке цепочка обрывается — "перепрыгнуть"
// вперёд по сданному позже ДЗ нельзя. Исключения админа проверяются до теста
// цепочки: принудительно открытый урок k воскрешает цепочку для k+1, даже если
// ДЗ урока k-1 не сдано; принудительно закрытый урок выпадает из множества, но
// не закрывает уроки после себя задним числом.
//
// seed задаёт, открыт ли первый урок до применения правил (см. EvaluateCourse).
func Evaluate(lessons []model.Lesson, hasSubmission SubmissionFunc, overrides Overrides, seed bool) (map[uuid.UUID]struct{}, error) {
	unlocked := make(map[uuid.UUID]struct{})
	if len(lessons) == 0 {
		return unlocked, nil
	}

	if err := validateSequence(lessons); err != nil {
		return nil, err
	}

	if seed {
		unlocked[lessons[0].ID] = struct{}{}
	}

	for i, lesson := range lessons {
		switch overrides.State(lesson.ID) {
		case ForceLocked:
			delete(unlocked, lesson.ID)
			continue
		case ForceUnlocked:
			unlocked[lesson.ID] = struct{}{}
			if i+1 < len(lessons) {
				unlocked[lessons[i+1].ID] = struct{}{}
			}
			continue
		}

		if _, ok := unlocked[lesson.ID]; !ok {
			// Цепочка оборвалась, дальше уроки недостижимы
			break
		}

		if !lesson.HasHomework || hasSubmission(lesson.ID) {
			if i+1 < len(lessons) {
				unlocked[lessons[i+1].ID] = struct{}{}
			}
		}
	}

	return unlocked, nil
}

// validateSequence проверяет, что уроки отсортированы по order_index без дубликатов
func validateSequence(lessons []model.Lesson) error {
	for i := 1; i < len(lessons); i++ {
		if lessons[i].OrderIndex == lessons[i-1].OrderIndex {
			return fmt.Errorf("%w: duplicate order_index %d", ErrInvalidInput, lessons[i].OrderIndex)
		}
		if lessons[i].OrderIndex < lessons[i-1].OrderIndex {
			return fmt.Errorf("%w: lessons not sorted by order_index", ErrInvalidInput)
		}
	}
	return nil
}
