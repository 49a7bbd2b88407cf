package callbacks

import (
	"context"
	"errors"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"

	"school-bot/internal/controller/state"
	"school-bot/internal/model"
	"school-bot/internal/service"
)

// handleReviewApprove принимает сдачу ДЗ
func (h *Handler) handleReviewApprove(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery) {
	user, ok := h.callbackUser(ctx, b, callback)
	if !ok {
		return
	}
	if !user.IsCurator && !user.IsAdmin {
		h.answerAlert(ctx, b, callback.ID, "❌ Проверка ДЗ доступна только кураторам.")
		return
	}

	submissionID, err := parseUUID(callback.Data)
	if err != nil {
		h.logger.Error("Failed to parse submission ID", zap.String("data", callback.Data), zap.Error(err))
		h.answerAlert(ctx, b, callback.ID, "❌ Неверный формат")
		return
	}

	_, err = h.homeworkService.Review(ctx, submissionID, model.SubmissionStatusApproved, "")
	switch {
	case errors.Is(err, service.ErrInvalidTransition):
		h.answerAlert(ctx, b, callback.ID, "ℹ️ Эта сдача уже проверена.")
		return
	case errors.Is(err, service.ErrNotFound):
		h.answerAlert(ctx, b, callback.ID, "❌ Сдача не найдена.")
		return
	case err != nil:
		h.logger.Error("Failed to approve submission",
			zap.String("submission_id", submissionID.String()),
			zap.Error(err))
		h.answerAlert(ctx, b, callback.ID, "❌ Не удалось принять сдачу.")
		return
	}

	h.markReviewed(ctx, b, callback, "✅ Принято")
	h.answerCallback(ctx, b, callback.ID, "✅ Принято")
}

// handleReviewReject запускает диалог отклонения сдачи с комментарием
func (h *Handler) handleReviewReject(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery) {
	user, ok := h.callbackUser(ctx, b, callback)
	if !ok {
		return
	}
	if !user.IsCurator && !user.IsAdmin {
		h.answerAlert(ctx, b, callback.ID, "❌ Проверка ДЗ доступна только кураторам.")
		return
	}

	submissionID, err := parseUUID(callback.Data)
	if err != nil {
		h.logger.Error("Failed to parse submission ID", zap.String("data", callback.Data), zap.Error(err))
		h.answerAlert(ctx, b, callback.ID, "❌ Неверный формат")
		return
	}

	h.stateManager.SetState(callback.From.ID, state.StateAwaitingRejectComment)
	h.stateManager.SetData(callback.From.ID, state.DataSubmissionID, submissionID.String())

	if msg := callback.Message.Message; msg != nil {
		_, err = b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: msg.Chat.ID,
			Text: "📝 Введите комментарий для ученика (почему сдача отклонена).\n\n" +
				"Без комментария: /skip\nОтменить: /cancel",
		})
		if err != nil {
			h.logger.Error("Failed to send reject prompt", zap.Error(err))
		}
	}

	h.answerCallback(ctx, b, callback.ID, "")
}

// markReviewed дописывает вердикт в карточку сдачи и убирает кнопки
func (h *Handler) markReviewed(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, verdict string) {
	msg := callback.Message.Message
	if msg == nil || msg.Text == "" {
		return
	}

	_, err := b.EditMessageText(ctx, &bot.EditMessageTextParams{
		ChatID:    msg.Chat.ID,
		MessageID: msg.ID,
		Text:      msg.Text + "\n\n" + verdict,
	})
	if err != nil {
		h.logger.Warn("Failed to mark review card", zap.Error(err))
	}
}
