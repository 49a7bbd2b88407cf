package handlers

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"school-bot/internal/model"
	"school-bot/internal/service"
)

func TestReviewCardText_EscapesStudentContent(t *testing.T) {
	item := service.ReviewItem{
		Submission: &model.HomeworkSubmission{
			ID:         uuid.New(),
			UserID:     7,
			AnswerText: "a<b & c",
			CreatedAt:  time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC),
		},
		Lesson: &model.Lesson{Title: "<i>Урок</i>"},
		Module: &model.Module{Title: "Модуль & ко"},
	}

	text := reviewCardText("Вася <script>", item)

	// Пользовательский ввод экранирован: Telegram не отклонит разметку
	assert.NotContains(t, text, "<script>")
	assert.NotContains(t, text, "<i>")
	assert.Contains(t, text, "Вася &lt;script&gt;")
	assert.Contains(t, text, "&lt;i&gt;Урок&lt;/i&gt;")
	assert.Contains(t, text, "Модуль &amp; ко")
	assert.Contains(t, text, "a&lt;b &amp; c")

	// Собственная разметка карточки при этом остаётся
	assert.Contains(t, text, "<b>Домашнее задание на проверке</b>")
}
