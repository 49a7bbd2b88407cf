package handlers

import (
	"context"
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-telegram/bot"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"school-bot/internal/model"
)

// stubClient перехватывает запросы к Telegram API и отвечает "ok"
type stubClient struct {
	mu     sync.Mutex
	bodies []string
}

func (c *stubClient) Do(req *http.Request) (*http.Response, error) {
	var body []byte
	if req.Body != nil {
		body, _ = io.ReadAll(req.Body)
	}

	c.mu.Lock()
	c.bodies = append(c.bodies, string(body))
	c.mu.Unlock()

	return &http.Response{
		StatusCode: http.StatusOK,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(strings.NewReader(`{"ok":true,"result":{"message_id":1,"chat":{"id":1}}}`)),
	}, nil
}

func (c *stubClient) sentText() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return strings.Join(c.bodies, "\n")
}

func newTestBot(t *testing.T, client *stubClient) *bot.Bot {
	t.Helper()

	b, err := bot.New("12345:test-token",
		bot.WithSkipGetMe(),
		bot.WithHTTPClient(time.Second, client),
	)
	require.NoError(t, err)
	return b
}

// fakeUsers — in-memory UserResolver
type fakeUsers struct {
	byTelegram map[int64]*model.User
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{byTelegram: make(map[int64]*model.User)}
}

func (f *fakeUsers) RegisterUser(ctx context.Context, telegramID int64, username, firstName, lastName, languageCode string) (*model.User, error) {
	if user, ok := f.byTelegram[telegramID]; ok {
		return user, nil
	}
	user := &model.User{ID: telegramID, TelegramID: telegramID, Username: username, FirstName: firstName}
	f.byTelegram[telegramID] = user
	return user, nil
}

func (f *fakeUsers) GetByTelegramID(ctx context.Context, telegramID int64) (*model.User, error) {
	return f.byTelegram[telegramID], nil
}

func (f *fakeUsers) GetByID(ctx context.Context, id int64) (*model.User, error) {
	for _, user := range f.byTelegram {
		if user.ID == id {
			return user, nil
		}
	}
	return nil, nil
}

// fakeSubmissionStore — in-memory реализация контракта сдач
type fakeSubmissionStore struct {
	mu   sync.Mutex
	rows map[uuid.UUID]*model.HomeworkSubmission
}

func newFakeSubmissionStore() *fakeSubmissionStore {
	return &fakeSubmissionStore{rows: make(map[uuid.UUID]*model.HomeworkSubmission)}
}

func (f *fakeSubmissionStore) Create(ctx context.Context, sub *model.HomeworkSubmission) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, row := range f.rows {
		if row.UserID == sub.UserID && row.LessonID == sub.LessonID {
			return false, nil
		}
	}

	sub.ID = uuid.New()
	sub.Status = model.SubmissionStatusPending
	sub.CreatedAt = time.Now()
	stored := *sub
	f.rows[sub.ID] = &stored
	return true, nil
}

func (f *fakeSubmissionStore) Resubmit(ctx context.Context, userID int64, lessonID uuid.UUID, answerText string, quizAnswers map[string]any) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, row := range f.rows {
		if row.UserID == userID && row.LessonID == lessonID {
			if row.Status != model.SubmissionStatusRejected {
				return false, nil
			}
			row.AnswerText = answerText
			row.QuizAnswers = quizAnswers
			row.Status = model.SubmissionStatusPending
			row.CuratorComment = nil
			row.ReviewedAt = nil
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeSubmissionStore) UpdateReview(ctx context.Context, id uuid.UUID, status string, comment *string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	row, ok := f.rows[id]
	if !ok || row.Status != model.SubmissionStatusPending {
		return false, nil
	}
	now := time.Now()
	row.Status = status
	row.CuratorComment = comment
	row.ReviewedAt = &now
	return true, nil
}

func (f *fakeSubmissionStore) GetByID(ctx context.Context, id uuid.UUID) (*model.HomeworkSubmission, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if row, ok := f.rows[id]; ok {
		copied := *row
		return &copied, nil
	}
	return nil, nil
}

func (f *fakeSubmissionStore) GetByUserAndLesson(ctx context.Context, userID int64, lessonID uuid.UUID) (*model.HomeworkSubmission, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, row := range f.rows {
		if row.UserID == userID && row.LessonID == lessonID {
			copied := *row
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakeSubmissionStore) GetStatusesByUser(ctx context.Context, userID int64) (map[uuid.UUID]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	statuses := make(map[uuid.UUID]string)
	for _, row := range f.rows {
		if row.UserID == userID {
			statuses[row.LessonID] = row.Status
		}
	}
	return statuses, nil
}

func (f *fakeSubmissionStore) GetPending(ctx context.Context, limit int) ([]*model.HomeworkSubmission, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var subs []*model.HomeworkSubmission
	for _, row := range f.rows {
		if row.Status == model.SubmissionStatusPending {
			copied := *row
			subs = append(subs, &copied)
		}
	}
	if len(subs) > limit {
		subs = subs[:limit]
	}
	return subs, nil
}

// fakeLessonStore — in-memory уроки
type fakeLessonStore struct {
	rows map[uuid.UUID]*model.Lesson
}

func newFakeLessonStore() *fakeLessonStore {
	return &fakeLessonStore{rows: make(map[uuid.UUID]*model.Lesson)}
}

func (f *fakeLessonStore) GetByID(ctx context.Context, id uuid.UUID) (*model.Lesson, error) {
	return f.rows[id], nil
}

func (f *fakeLessonStore) GetActiveByModule(ctx context.Context, moduleID uuid.UUID) ([]model.Lesson, error) {
	return nil, nil
}

func (f *fakeLessonStore) GetAllActive(ctx context.Context) (map[uuid.UUID][]model.Lesson, error) {
	return nil, nil
}

// fakeEngagement отмечает начало работы с куратором
type fakeEngagement struct {
	mu     sync.Mutex
	marked map[int64]bool
}

func newFakeEngagement() *fakeEngagement {
	return &fakeEngagement{marked: make(map[int64]bool)}
}

func (f *fakeEngagement) MarkCuratorEngaged(ctx context.Context, userID int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.marked[userID] {
		return false, nil
	}
	f.marked[userID] = true
	return true, nil
}

// alwaysUnlocked пропускает любой урок
type alwaysUnlocked struct{}

func (alwaysUnlocked) IsLessonUnlocked(ctx context.Context, userID int64, lessonID uuid.UUID) (bool, error) {
	return true, nil
}
