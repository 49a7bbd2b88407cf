package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"school-bot/internal/model"
)

const testUserID int64 = 42

func newTestEnv(t *testing.T) (*memStore, *HomeworkService, *ProgressService, *fakeNotifier) {
	t.Helper()

	store := newMemStore()
	store.tariffs[testUserID] = []string{model.TariffPlatinum}

	logger := zap.NewNop()
	progress := NewProgressService(
		store,
		lessonStoreAdapter{store},
		submissionStoreAdapter{store},
		store,
		store,
		false,
		logger,
	)
	notifier := &fakeNotifier{}
	homework := NewHomeworkService(
		submissionStoreAdapter{store},
		lessonStoreAdapter{store},
		store,
		store,
		progress,
		notifier,
		logger,
	)

	return store, homework, progress, notifier
}

func testUser() *model.User {
	return &model.User{ID: testUserID, TelegramID: 100500, FirstName: "Аня"}
}

func TestSubmit_CreatesPendingSubmission(t *testing.T) {
	store, homework, _, notifier := newTestEnv(t)
	_, lessons := store.addModule(1, model.TariffStandard, true)

	sub, err := homework.Submit(context.Background(), testUser(), lessons[0].ID, "мой ответ", nil)
	require.NoError(t, err)
	assert.Equal(t, model.SubmissionStatusPending, sub.Status)
	assert.Equal(t, "мой ответ", sub.AnswerText)
	assert.NotEqual(t, uuid.Nil, sub.ID)

	// Куратор уведомлён, работа с куратором отмечена
	assert.Len(t, notifier.calls, 1)
	assert.True(t, store.engaged[testUserID])
}

func TestSubmit_Idempotent(t *testing.T) {
	store, homework, _, _ := newTestEnv(t)
	_, lessons := store.addModule(1, model.TariffStandard, true)

	_, err := homework.Submit(context.Background(), testUser(), lessons[0].ID, "первый ответ", nil)
	require.NoError(t, err)

	_, err = homework.Submit(context.Background(), testUser(), lessons[0].ID, "второй ответ", nil)
	require.ErrorIs(t, err, ErrAlreadySubmitted)

	// Строка не изменилась
	stored, err := store.GetByUserAndLesson(context.Background(), testUserID, lessons[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "первый ответ", stored.AnswerText)
	assert.Equal(t, model.SubmissionStatusPending, stored.Status)
}

func TestSubmit_LockedLesson(t *testing.T) {
	store, homework, _, _ := newTestEnv(t)
	_, lessons := store.addModule(1, model.TariffStandard, true, true)

	// Второй урок закрыт: ДЗ первого не сдано
	_, err := homework.Submit(context.Background(), testUser(), lessons[1].ID, "ответ", nil)
	require.ErrorIs(t, err, ErrLessonLocked)
}

func TestSubmit_UnlockedViaOverride(t *testing.T) {
	store, homework, _, _ := newTestEnv(t)
	_, lessons := store.addModule(1, model.TariffStandard, true, true)

	// Админ принудительно открыл второй урок
	require.NoError(t, store.Upsert(context.Background(), testUserID, lessons[1].ID, false))

	sub, err := homework.Submit(context.Background(), testUser(), lessons[1].ID, "ответ", nil)
	require.NoError(t, err)
	assert.Equal(t, model.SubmissionStatusPending, sub.Status)
}

func TestSubmit_ForceLockedLessonRejected(t *testing.T) {
	store, homework, _, _ := newTestEnv(t)
	_, lessons := store.addModule(1, model.TariffStandard, true)

	// Первый урок открыт цепочкой, но принудительно закрыт админом
	require.NoError(t, store.Upsert(context.Background(), testUserID, lessons[0].ID, true))

	_, err := homework.Submit(context.Background(), testUser(), lessons[0].ID, "ответ", nil)
	require.ErrorIs(t, err, ErrLessonLocked)
}

func TestSubmit_LessonWithoutHomework(t *testing.T) {
	store, homework, _, _ := newTestEnv(t)
	_, lessons := store.addModule(1, model.TariffStandard, false)

	_, err := homework.Submit(context.Background(), testUser(), lessons[0].ID, "ответ", nil)
	require.ErrorIs(t, err, ErrNoHomework)
}

func TestSubmit_UnknownLesson(t *testing.T) {
	_, homework, _, _ := newTestEnv(t)

	_, err := homework.Submit(context.Background(), testUser(), uuid.New(), "ответ", nil)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestSubmit_ResubmissionRoundTrip(t *testing.T) {
	store, homework, _, _ := newTestEnv(t)
	_, lessons := store.addModule(1, model.TariffStandard, true)
	ctx := context.Background()

	first, err := homework.Submit(ctx, testUser(), lessons[0].ID, "первый ответ", nil)
	require.NoError(t, err)

	_, err = homework.Review(ctx, first.ID, model.SubmissionStatusRejected, "переделать")
	require.NoError(t, err)

	resubmitted, err := homework.Submit(ctx, testUser(), lessons[0].ID, "исправленный ответ", nil)
	require.NoError(t, err)

	// Ровно одна строка: тот же ID, новый ответ, pending, комментарий очищен
	assert.Equal(t, first.ID, resubmitted.ID)
	stored, err := store.GetByUserAndLesson(ctx, testUserID, lessons[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "исправленный ответ", stored.AnswerText)
	assert.Equal(t, model.SubmissionStatusPending, stored.Status)
	assert.Nil(t, stored.CuratorComment)
	assert.Nil(t, stored.ReviewedAt)
}

func TestSubmit_ApprovedBlocksResubmission(t *testing.T) {
	store, homework, _, _ := newTestEnv(t)
	_, lessons := store.addModule(1, model.TariffStandard, true)
	ctx := context.Background()

	sub, err := homework.Submit(ctx, testUser(), lessons[0].ID, "ответ", nil)
	require.NoError(t, err)

	_, err = homework.Review(ctx, sub.ID, model.SubmissionStatusApproved, "")
	require.NoError(t, err)

	_, err = homework.Submit(ctx, testUser(), lessons[0].ID, "новый ответ", nil)
	require.ErrorIs(t, err, ErrAlreadySubmitted)
}

func TestSubmit_EngagementMarkedOnce(t *testing.T) {
	store, homework, _, _ := newTestEnv(t)
	_, lessons := store.addModule(1, model.TariffStandard, true, true)
	ctx := context.Background()

	_, err := homework.Submit(ctx, testUser(), lessons[0].ID, "ответ 1", nil)
	require.NoError(t, err)
	// Первая сдача открыла второй урок
	_, err = homework.Submit(ctx, testUser(), lessons[1].ID, "ответ 2", nil)
	require.NoError(t, err)

	assert.True(t, store.engaged[testUserID])
}

func TestSubmit_PendingSubmissionUnlocksNextLesson(t *testing.T) {
	// Сценарий из правил цепочки: [A(без ДЗ), B(ДЗ), C(ДЗ)]
	store, homework, progress, _ := newTestEnv(t)
	_, lessons := store.addModule(1, model.TariffStandard, false, true, true)
	ctx := context.Background()

	view, err := progress.GetCourseView(ctx, testUserID)
	require.NoError(t, err)
	assert.True(t, view.IsUnlocked(lessons[0].ID))
	assert.True(t, view.IsUnlocked(lessons[1].ID))
	assert.False(t, view.IsUnlocked(lessons[2].ID))

	_, err = homework.Submit(ctx, testUser(), lessons[1].ID, "ответ", nil)
	require.NoError(t, err)

	view, err = progress.GetCourseView(ctx, testUserID)
	require.NoError(t, err)
	assert.True(t, view.IsUnlocked(lessons[2].ID))
}

func TestReview_Approve(t *testing.T) {
	store, homework, _, _ := newTestEnv(t)
	_, lessons := store.addModule(1, model.TariffStandard, true)
	ctx := context.Background()

	sub, err := homework.Submit(ctx, testUser(), lessons[0].ID, "ответ", nil)
	require.NoError(t, err)

	reviewed, err := homework.Review(ctx, sub.ID, model.SubmissionStatusApproved, "отлично")
	require.NoError(t, err)
	assert.Equal(t, model.SubmissionStatusApproved, reviewed.Status)
	require.NotNil(t, reviewed.CuratorComment)
	assert.Equal(t, "отлично", *reviewed.CuratorComment)

	stored, err := store.GetSubmissionByID(ctx, sub.ID)
	require.NoError(t, err)
	assert.NotNil(t, stored.ReviewedAt)
}

func TestReview_ApprovedIsTerminal(t *testing.T) {
	store, homework, _, _ := newTestEnv(t)
	_, lessons := store.addModule(1, model.TariffStandard, true)
	ctx := context.Background()

	sub, err := homework.Submit(ctx, testUser(), lessons[0].ID, "ответ", nil)
	require.NoError(t, err)

	_, err = homework.Review(ctx, sub.ID, model.SubmissionStatusApproved, "")
	require.NoError(t, err)

	// Повторное ревью в любую сторону — конфликт, строка не меняется
	_, err = homework.Review(ctx, sub.ID, model.SubmissionStatusRejected, "передумал")
	require.ErrorIs(t, err, ErrInvalidTransition)

	stored, err := store.GetSubmissionByID(ctx, sub.ID)
	require.NoError(t, err)
	assert.Equal(t, model.SubmissionStatusApproved, stored.Status)
}

func TestReview_NotFound(t *testing.T) {
	_, homework, _, _ := newTestEnv(t)

	_, err := homework.Review(context.Background(), uuid.New(), model.SubmissionStatusApproved, "")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestReview_UnknownDecision(t *testing.T) {
	store, homework, _, _ := newTestEnv(t)
	_, lessons := store.addModule(1, model.TariffStandard, true)
	ctx := context.Background()

	sub, err := homework.Submit(ctx, testUser(), lessons[0].ID, "ответ", nil)
	require.NoError(t, err)

	_, err = homework.Review(ctx, sub.ID, "maybe", "")
	require.Error(t, err)
}

func TestGetReviewQueue_IncludesLessonAndModule(t *testing.T) {
	store, homework, _, _ := newTestEnv(t)
	mod, lessons := store.addModule(1, model.TariffStandard, true)

	_, err := homework.Submit(context.Background(), testUser(), lessons[0].ID, "ответ", nil)
	require.NoError(t, err)

	items, err := homework.GetReviewQueue(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, items, 1)

	assert.Equal(t, lessons[0].ID, items[0].Submission.LessonID)
	require.NotNil(t, items[0].Lesson)
	assert.Equal(t, lessons[0].ID, items[0].Lesson.ID)
	require.NotNil(t, items[0].Module)
	assert.Equal(t, mod.ID, items[0].Module.ID)
}

func TestGetReviewQueue_EmptyWhenNothingPending(t *testing.T) {
	store, homework, _, _ := newTestEnv(t)
	_, lessons := store.addModule(1, model.TariffStandard, true)

	sub, err := homework.Submit(context.Background(), testUser(), lessons[0].ID, "ответ", nil)
	require.NoError(t, err)

	_, err = homework.Review(context.Background(), sub.ID, model.SubmissionStatusApproved, "")
	require.NoError(t, err)

	items, err := homework.GetReviewQueue(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, items)
}
