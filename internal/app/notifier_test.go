package app

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"school-bot/internal/model"
)

func TestFormatHomeworkMessage_EscapesStudentContent(t *testing.T) {
	student := &model.User{FirstName: "Вася<script>"}
	lesson := &model.Lesson{Title: "Урок <1>"}
	module := &model.Module{Title: "Модуль & ко"}
	sub := &model.HomeworkSubmission{
		AnswerText:  "a<b",
		QuizAnswers: map[string]any{"q1": "<x>"},
	}

	text := formatHomeworkMessage(student, module, lesson, sub)

	// Пользовательский ввод экранирован, иначе Telegram отклонит сообщение
	assert.NotContains(t, text, "<script>")
	assert.Contains(t, text, "Вася&lt;script&gt;")
	assert.Contains(t, text, "Урок &lt;1&gt;")
	assert.Contains(t, text, "Модуль &amp; ко")
	assert.Contains(t, text, "a&lt;b")
	assert.Contains(t, text, "&lt;x&gt;")

	// Собственная разметка сообщения остаётся
	assert.Contains(t, text, "<b>Ученик:</b>")
}

func TestFormatHomeworkMessage_WithoutModule(t *testing.T) {
	student := &model.User{FirstName: "Аня"}
	lesson := &model.Lesson{Title: "Урок"}
	sub := &model.HomeworkSubmission{AnswerText: "ответ"}

	text := formatHomeworkMessage(student, nil, lesson, sub)

	assert.NotContains(t, text, "Модуль")
	assert.Contains(t, text, "Урок")
}
