package callbacks

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"school-bot/internal/controller/handlers"
	"school-bot/internal/controller/keyboard"
	"school-bot/internal/controller/state"
	"school-bot/internal/model"
	"school-bot/internal/service"
)

// handleBackToCourse возвращает пользователя к обзору курса
func (h *Handler) handleBackToCourse(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery) {
	user, ok := h.callbackUser(ctx, b, callback)
	if !ok {
		return
	}

	view, err := h.progressService.GetCourseView(ctx, user.ID)
	if err != nil {
		h.logger.Error("Failed to build course view", zap.Int64("user_id", user.ID), zap.Error(err))
		h.answerAlert(ctx, b, callback.ID, "❌ Не удалось загрузить курс.")
		return
	}

	if len(view.Modules) == 0 {
		h.answerAlert(ctx, b, callback.ID, "📭 Пока нет доступных модулей.")
		return
	}

	text, kb := handlers.CourseOverview(view)
	h.showScreen(ctx, b, callback, text, kb)
	h.answerCallback(ctx, b, callback.ID, "")
}

// handleViewModule показывает уроки модуля
func (h *Handler) handleViewModule(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery) {
	moduleID, err := parseUUID(callback.Data)
	if err != nil {
		h.logger.Error("Failed to parse module ID", zap.String("data", callback.Data), zap.Error(err))
		h.answerAlert(ctx, b, callback.ID, "❌ Неверный формат")
		return
	}

	user, ok := h.callbackUser(ctx, b, callback)
	if !ok {
		return
	}

	view, err := h.progressService.GetCourseView(ctx, user.ID)
	if err != nil {
		h.logger.Error("Failed to build course view", zap.Int64("user_id", user.ID), zap.Error(err))
		h.answerAlert(ctx, b, callback.ID, "❌ Не удалось загрузить курс.")
		return
	}

	moduleIdx := -1
	for i, m := range view.Modules {
		if m.ID == moduleID {
			moduleIdx = i
			break
		}
	}
	if moduleIdx == -1 {
		h.answerAlert(ctx, b, callback.ID, "❌ Модуль не найден или недоступен на вашем тарифе.")
		return
	}

	module := view.Modules[moduleIdx]
	lessons := view.Lessons[module.ID]

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("📁 Модуль %d. %s\n", moduleIdx+1, module.Title))
	if module.Description != "" {
		sb.WriteString(module.Description + "\n")
	}
	sb.WriteString("\n")

	kb := keyboard.NewBuilder()

	for j, lesson := range lessons {
		icon := lessonIcon(lesson, view)
		sb.WriteString(fmt.Sprintf("%s %d.%d %s\n", icon, moduleIdx+1, j+1, lesson.Title))

		// Кнопки только у открытых уроков: закрытые видны в списке, но недоступны
		if view.IsUnlocked(lesson.ID) {
			kb.Row(keyboard.Button(
				fmt.Sprintf("%s %d.%d %s", icon, moduleIdx+1, j+1, lesson.Title),
				ViewLesson+lesson.ID.String(),
			))
		}
	}

	sb.WriteString("\n🔒 - урок откроется после сдачи ДЗ предыдущих уроков")
	kb.Row(keyboard.Button("⬅️ К курсу", BackToCourse))

	h.showScreen(ctx, b, callback, sb.String(), kb.Build())
	h.answerCallback(ctx, b, callback.ID, "")
}

// handleViewLesson показывает содержимое урока
func (h *Handler) handleViewLesson(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery) {
	lessonID, err := parseUUID(callback.Data)
	if err != nil {
		h.logger.Error("Failed to parse lesson ID", zap.String("data", callback.Data), zap.Error(err))
		h.answerAlert(ctx, b, callback.ID, "❌ Неверный формат")
		return
	}

	user, ok := h.callbackUser(ctx, b, callback)
	if !ok {
		return
	}

	view, err := h.progressService.GetCourseView(ctx, user.ID)
	if err != nil {
		h.logger.Error("Failed to build course view", zap.Int64("user_id", user.ID), zap.Error(err))
		h.answerAlert(ctx, b, callback.ID, "❌ Не удалось загрузить курс.")
		return
	}

	lesson, moduleID := findLesson(view, lessonID)
	if lesson == nil {
		h.answerAlert(ctx, b, callback.ID, "❌ Урок не найден.")
		return
	}

	if !view.IsUnlocked(lesson.ID) {
		h.answerAlert(ctx, b, callback.ID, "🔒 Урок пока недоступен. Сдайте ДЗ предыдущих уроков.")
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("📖 %s\n\n", lesson.Title))
	if lesson.Description != "" {
		sb.WriteString(lesson.Description + "\n\n")
	}
	if lesson.VideoURL != "" {
		sb.WriteString("🎬 Видео: " + lesson.VideoURL + "\n\n")
	}

	kb := keyboard.NewBuilder()

	if lesson.HasHomework {
		sb.WriteString("📝 Домашнее задание")
		if lesson.HomeworkTitle != "" {
			sb.WriteString(": " + lesson.HomeworkTitle)
		}
		sb.WriteString("\n")
		if lesson.HomeworkDescription != "" {
			sb.WriteString(lesson.HomeworkDescription + "\n")
		}

		switch view.Statuses[lesson.ID] {
		case model.SubmissionStatusApproved:
			sb.WriteString("\n✅ ДЗ принято куратором")
		case model.SubmissionStatusPending:
			sb.WriteString("\n🕐 ДЗ на проверке у куратора")
		case model.SubmissionStatusRejected:
			sb.WriteString("\n❌ ДЗ отклонено, нужна пересдача")
			if sub, err := h.homeworkService.GetForLesson(ctx, user.ID, lesson.ID); err == nil &&
				sub != nil && sub.CuratorComment != nil {
				sb.WriteString("\n💬 Комментарий куратора: " + *sub.CuratorComment)
			}
			kb.Row(keyboard.Button("📝 Пересдать ДЗ", SubmitHomework+lesson.ID.String()))
		default:
			kb.Row(keyboard.Button("📝 Сдать ДЗ", SubmitHomework+lesson.ID.String()))
		}
	}

	kb.Row(keyboard.Button("⬅️ К модулю", ViewModule+moduleID.String()))

	h.showScreen(ctx, b, callback, sb.String(), kb.Build())
	h.answerCallback(ctx, b, callback.ID, "")
}

// handleSubmitHomework запускает диалог сдачи ДЗ
func (h *Handler) handleSubmitHomework(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery) {
	lessonID, err := parseUUID(callback.Data)
	if err != nil {
		h.logger.Error("Failed to parse lesson ID", zap.String("data", callback.Data), zap.Error(err))
		h.answerAlert(ctx, b, callback.ID, "❌ Неверный формат")
		return
	}

	user, ok := h.callbackUser(ctx, b, callback)
	if !ok {
		return
	}

	// Проверяем доступ до запуска диалога; финальная проверка всё равно
	// произойдёт при сдаче
	unlocked, err := h.progressService.IsLessonUnlocked(ctx, user.ID, lessonID)
	if err != nil {
		h.logger.Error("Failed to check lesson access", zap.Int64("user_id", user.ID), zap.Error(err))
		h.answerAlert(ctx, b, callback.ID, "❌ Произошла ошибка. Попробуйте позже.")
		return
	}
	if !unlocked {
		h.answerAlert(ctx, b, callback.ID, "🔒 Урок пока недоступен.")
		return
	}

	h.stateManager.SetState(callback.From.ID, state.StateAwaitingHomeworkAnswer)
	h.stateManager.SetData(callback.From.ID, state.DataLessonID, lessonID.String())

	msg := callback.Message.Message
	if msg != nil {
		_, err = b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: msg.Chat.ID,
			Text: "📝 Отправьте ответ на домашнее задание одним сообщением.\n\n" +
				"Отменить: /cancel",
		})
		if err != nil {
			h.logger.Error("Failed to send homework prompt", zap.Error(err))
		}
	}

	h.answerCallback(ctx, b, callback.ID, "")
}

// lessonIcon подбирает эмодзи состояния урока для списков
func lessonIcon(lesson model.Lesson, view *service.CourseView) string {
	switch view.Statuses[lesson.ID] {
	case model.SubmissionStatusApproved:
		return "✅"
	case model.SubmissionStatusPending:
		return "🕐"
	case model.SubmissionStatusRejected:
		return "❌"
	}
	if view.IsUnlocked(lesson.ID) {
		return "📖"
	}
	return "🔒"
}

// findLesson ищет урок в снимке курса и возвращает его вместе с ID модуля
func findLesson(view *service.CourseView, lessonID uuid.UUID) (*model.Lesson, uuid.UUID) {
	for moduleID, lessons := range view.Lessons {
		for i := range lessons {
			if lessons[i].ID == lessonID {
				return &lessons[i], moduleID
			}
		}
	}
	return nil, uuid.Nil
}
