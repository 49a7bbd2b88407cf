package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"school-bot/internal/model"
)

type subKey struct {
	userID   int64
	lessonID uuid.UUID
}

// memStore — in-memory реализация всех контрактов хранилищ для тестов
type memStore struct {
	mu sync.Mutex

	modules  []model.Module
	lessons  map[uuid.UUID][]model.Lesson
	subs     map[subKey]*model.HomeworkSubmission
	locked   map[subKey]bool // (user, lesson) -> is_locked
	tariffs  map[int64][]string
	engaged  map[int64]bool
	failedOv map[uuid.UUID]error // инъекция ошибок для bulk-тестов
}

func newMemStore() *memStore {
	return &memStore{
		lessons:  make(map[uuid.UUID][]model.Lesson),
		subs:     make(map[subKey]*model.HomeworkSubmission),
		locked:   make(map[subKey]bool),
		tariffs:  make(map[int64][]string),
		engaged:  make(map[int64]bool),
		failedOv: make(map[uuid.UUID]error),
	}
}

func (m *memStore) addModule(orderIndex int, minTariff string, hasHomework ...bool) (model.Module, []model.Lesson) {
	mod := model.Module{
		ID:         uuid.New(),
		Title:      fmt.Sprintf("Модуль %d", orderIndex),
		OrderIndex: orderIndex,
		MinTariff:  minTariff,
		IsActive:   true,
	}
	lessons := make([]model.Lesson, len(hasHomework))
	for i, hw := range hasHomework {
		lessons[i] = model.Lesson{
			ID:          uuid.New(),
			ModuleID:    mod.ID,
			Title:       fmt.Sprintf("Урок %d.%d", orderIndex, i+1),
			OrderIndex:  (i + 1) * 10,
			HasHomework: hw,
			IsActive:    true,
		}
	}
	m.modules = append(m.modules, mod)
	m.lessons[mod.ID] = lessons
	return mod, lessons
}

func (m *memStore) GetActive(ctx context.Context) ([]model.Module, error) {
	return m.modules, nil
}

func (m *memStore) GetByID(ctx context.Context, id uuid.UUID) (*model.Module, error) {
	for i := range m.modules {
		if m.modules[i].ID == id {
			return &m.modules[i], nil
		}
	}
	return nil, nil
}

func (m *memStore) GetLessonByID(ctx context.Context, id uuid.UUID) (*model.Lesson, error) {
	for _, lessons := range m.lessons {
		for i := range lessons {
			if lessons[i].ID == id {
				return &lessons[i], nil
			}
		}
	}
	return nil, nil
}

func (m *memStore) GetActiveByModule(ctx context.Context, moduleID uuid.UUID) ([]model.Lesson, error) {
	return m.lessons[moduleID], nil
}

func (m *memStore) GetAllActive(ctx context.Context) (map[uuid.UUID][]model.Lesson, error) {
	return m.lessons, nil
}

func (m *memStore) Create(ctx context.Context, sub *model.HomeworkSubmission) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := subKey{sub.UserID, sub.LessonID}
	if _, ok := m.subs[key]; ok {
		return false, nil
	}

	sub.ID = uuid.New()
	sub.Status = model.SubmissionStatusPending
	sub.CreatedAt = time.Now()
	stored := *sub
	m.subs[key] = &stored
	return true, nil
}

func (m *memStore) Resubmit(ctx context.Context, userID int64, lessonID uuid.UUID, answerText string, quizAnswers map[string]any) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sub, ok := m.subs[subKey{userID, lessonID}]
	if !ok || sub.Status != model.SubmissionStatusRejected {
		return false, nil
	}

	sub.AnswerText = answerText
	sub.QuizAnswers = quizAnswers
	sub.Status = model.SubmissionStatusPending
	sub.CuratorComment = nil
	sub.ReviewedAt = nil
	return true, nil
}

func (m *memStore) UpdateReview(ctx context.Context, id uuid.UUID, status string, comment *string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, sub := range m.subs {
		if sub.ID == id {
			if sub.Status != model.SubmissionStatusPending {
				return false, nil
			}
			now := time.Now()
			sub.Status = status
			sub.CuratorComment = comment
			sub.ReviewedAt = &now
			return true, nil
		}
	}
	return false, nil
}

func (m *memStore) GetSubmissionByID(ctx context.Context, id uuid.UUID) (*model.HomeworkSubmission, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, sub := range m.subs {
		if sub.ID == id {
			copied := *sub
			return &copied, nil
		}
	}
	return nil, nil
}

func (m *memStore) GetByUserAndLesson(ctx context.Context, userID int64, lessonID uuid.UUID) (*model.HomeworkSubmission, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if sub, ok := m.subs[subKey{userID, lessonID}]; ok {
		copied := *sub
		return &copied, nil
	}
	return nil, nil
}

func (m *memStore) GetStatusesByUser(ctx context.Context, userID int64) (map[uuid.UUID]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	statuses := make(map[uuid.UUID]string)
	for key, sub := range m.subs {
		if key.userID == userID {
			statuses[key.lessonID] = sub.Status
		}
	}
	return statuses, nil
}

func (m *memStore) GetPending(ctx context.Context, limit int) ([]*model.HomeworkSubmission, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var subs []*model.HomeworkSubmission
	for _, sub := range m.subs {
		if sub.Status == model.SubmissionStatusPending {
			copied := *sub
			subs = append(subs, &copied)
		}
	}
	sort.Slice(subs, func(i, j int) bool { return subs[i].CreatedAt.Before(subs[j].CreatedAt) })
	if len(subs) > limit {
		subs = subs[:limit]
	}
	return subs, nil
}

func (m *memStore) Upsert(ctx context.Context, userID int64, lessonID uuid.UUID, isLocked bool) error {
	if err, ok := m.failedOv[lessonID]; ok {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.locked[subKey{userID, lessonID}] = isLocked
	return nil
}

func (m *memStore) Delete(ctx context.Context, userID int64, lessonID uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := subKey{userID, lessonID}
	if _, ok := m.locked[key]; !ok {
		return false, nil
	}
	delete(m.locked, key)
	return true, nil
}

func (m *memStore) GetSetsByUser(ctx context.Context, userID int64) (locked, unlocked map[uuid.UUID]struct{}, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	locked = make(map[uuid.UUID]struct{})
	unlocked = make(map[uuid.UUID]struct{})
	for key, isLocked := range m.locked {
		if key.userID != userID {
			continue
		}
		if isLocked {
			locked[key.lessonID] = struct{}{}
		} else {
			unlocked[key.lessonID] = struct{}{}
		}
	}
	return locked, unlocked, nil
}

func (m *memStore) GetActiveSlugsByUser(ctx context.Context, userID int64) ([]string, error) {
	return m.tariffs[userID], nil
}

func (m *memStore) MarkCuratorEngaged(ctx context.Context, userID int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.engaged[userID] {
		return false, nil
	}
	m.engaged[userID] = true
	return true, nil
}

// lessonStoreAdapter разводит совпадающие имена методов memStore
type lessonStoreAdapter struct{ *memStore }

func (a lessonStoreAdapter) GetByID(ctx context.Context, id uuid.UUID) (*model.Lesson, error) {
	return a.GetLessonByID(ctx, id)
}

type submissionStoreAdapter struct{ *memStore }

func (a submissionStoreAdapter) GetByID(ctx context.Context, id uuid.UUID) (*model.HomeworkSubmission, error) {
	return a.GetSubmissionByID(ctx, id)
}

// fakeNotifier записывает отправленные уведомления
type fakeNotifier struct {
	mu    sync.Mutex
	calls []*model.HomeworkSubmission
}

func (n *fakeNotifier) NotifyNewHomework(student *model.User, module *model.Module, lesson *model.Lesson, sub *model.HomeworkSubmission) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, sub)
}
