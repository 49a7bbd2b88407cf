package handlers

import (
	"context"
	"errors"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"school-bot/internal/controller/state"
	"school-bot/internal/model"
	"school-bot/internal/service"
)

// HandleTextMessage обрабатывает текстовые сообщения в зависимости от состояния пользователя
func (h *Handlers) HandleTextMessage(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.Text == "" {
		return
	}

	telegramID := update.Message.From.ID
	currentState := h.stateManager.GetState(telegramID)

	// Команды обрабатываются своими handlers. Исключение — /skip: внутри
	// диалога отклонения это легальный ввод "отклонить без комментария"
	if strings.HasPrefix(update.Message.Text, "/") {
		skipInRejectDialog := currentState == state.StateAwaitingRejectComment &&
			strings.TrimSpace(update.Message.Text) == "/skip"
		if !skipInRejectDialog {
			return
		}
	}

	// Если нет активного состояния, игнорируем
	if currentState == state.StateNone {
		return
	}

	h.logger.Info("Handling dialog step",
		zap.Int64("telegram_id", telegramID),
		zap.String("state", string(currentState)))

	switch currentState {
	case state.StateAwaitingHomeworkAnswer:
		h.handleHomeworkAnswerStep(ctx, b, update)
	case state.StateAwaitingRejectComment:
		h.handleRejectCommentStep(ctx, b, update)
	default:
		h.logger.Warn("Unknown state", zap.String("state", string(currentState)))
		h.stateManager.ClearState(telegramID)
	}
}

// handleHomeworkAnswerStep принимает текст ответа на ДЗ
func (h *Handlers) handleHomeworkAnswerStep(ctx context.Context, b *bot.Bot, update *models.Update) {
	telegramID := update.Message.From.ID
	answerText := strings.TrimSpace(update.Message.Text)

	lessonID, ok := h.uuidFromState(ctx, b, update, state.DataLessonID)
	if !ok {
		return
	}

	user, ok := h.requireUser(ctx, b, update)
	if !ok {
		h.stateManager.ClearState(telegramID)
		return
	}

	sub, err := h.homeworkService.Submit(ctx, user, lessonID, answerText, nil)

	// Состояние очищаем в любом случае: диалог завершён
	h.stateManager.ClearState(telegramID)

	switch {
	case errors.Is(err, service.ErrAlreadySubmitted):
		h.sendMessage(ctx, b, update.Message.Chat.ID,
			"ℹ️ По этому уроку уже есть сдача на проверке или она принята.")
		return
	case errors.Is(err, service.ErrLessonLocked):
		h.sendMessage(ctx, b, update.Message.Chat.ID,
			"🔒 Урок пока недоступен. Сдайте ДЗ предыдущих уроков через /course.")
		return
	case errors.Is(err, service.ErrNoHomework):
		h.sendMessage(ctx, b, update.Message.Chat.ID, "ℹ️ В этом уроке нет домашнего задания.")
		return
	case errors.Is(err, service.ErrNotFound):
		h.sendError(ctx, b, update.Message.Chat.ID, "❌ Урок не найден. Начните заново через /course.")
		return
	case err != nil:
		h.logger.Error("Failed to submit homework",
			zap.Int64("user_id", user.ID),
			zap.String("lesson_id", lessonID.String()),
			zap.Error(err),
		)
		h.sendError(ctx, b, update.Message.Chat.ID, "❌ Не удалось отправить ответ. Попробуйте позже.")
		return
	}

	h.logger.Info("Homework answer accepted",
		zap.Int64("user_id", user.ID),
		zap.String("submission_id", sub.ID.String()),
	)

	h.sendMessage(ctx, b, update.Message.Chat.ID,
		"✅ Ответ отправлен на проверку!\n\n"+
			"Куратор проверит его и даст обратную связь. "+
			"Загляните в /course — возможно, следующий урок уже открылся.")
}

// handleRejectCommentStep принимает комментарий куратора к отклоняемой сдаче
func (h *Handlers) handleRejectCommentStep(ctx context.Context, b *bot.Bot, update *models.Update) {
	telegramID := update.Message.From.ID
	commentText := strings.TrimSpace(update.Message.Text)

	submissionID, ok := h.uuidFromState(ctx, b, update, state.DataSubmissionID)
	if !ok {
		return
	}

	// "/skip" оставляет отклонение без комментария
	if commentText == "/skip" {
		commentText = ""
	}

	_, err := h.homeworkService.Review(ctx, submissionID, model.SubmissionStatusRejected, commentText)

	h.stateManager.ClearState(telegramID)

	switch {
	case errors.Is(err, service.ErrInvalidTransition):
		h.sendMessage(ctx, b, update.Message.Chat.ID,
			"ℹ️ Эта сдача уже проверена (возможно, другим куратором).")
		return
	case errors.Is(err, service.ErrNotFound):
		h.sendError(ctx, b, update.Message.Chat.ID, "❌ Сдача не найдена.")
		return
	case err != nil:
		h.logger.Error("Failed to reject submission",
			zap.String("submission_id", submissionID.String()),
			zap.Error(err),
		)
		h.sendError(ctx, b, update.Message.Chat.ID, "❌ Не удалось отклонить сдачу. Попробуйте позже.")
		return
	}

	text := "❌ Сдача отклонена, ученик сможет пересдать."
	if commentText != "" {
		text += "\n📝 Комментарий: " + commentText
	}
	h.sendMessage(ctx, b, update.Message.Chat.ID, text)
}

// uuidFromState достаёт UUID из данных диалога; при ошибке завершает диалог
func (h *Handlers) uuidFromState(ctx context.Context, b *bot.Bot, update *models.Update, key string) (uuid.UUID, bool) {
	telegramID := update.Message.From.ID

	raw, ok := h.stateManager.GetData(telegramID, key)
	if !ok {
		h.logger.Error("Missing dialog data", zap.Int64("telegram_id", telegramID), zap.String("key", key))
		h.sendError(ctx, b, update.Message.Chat.ID, "❌ Данные диалога потерялись. Начните заново.")
		h.stateManager.ClearState(telegramID)
		return uuid.Nil, false
	}

	str, ok := raw.(string)
	if !ok {
		h.logger.Error("Invalid dialog data type", zap.Any("data", raw))
		h.sendError(ctx, b, update.Message.Chat.ID, "❌ Ошибка: неверный формат данных.")
		h.stateManager.ClearState(telegramID)
		return uuid.Nil, false
	}

	id, err := uuid.Parse(str)
	if err != nil {
		h.logger.Error("Invalid dialog UUID", zap.String("value", str), zap.Error(err))
		h.sendError(ctx, b, update.Message.Chat.ID, "❌ Ошибка: неверный формат данных.")
		h.stateManager.ClearState(telegramID)
		return uuid.Nil, false
	}

	return id, true
}
