package callbacks

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"school-bot/internal/model"
)

// answerCallback подтверждает callback query коротким уведомлением
func (h *Handler) answerCallback(ctx context.Context, b *bot.Bot, callbackID, text string) {
	_, err := b.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
		CallbackQueryID: callbackID,
		Text:            text,
	})
	if err != nil {
		h.logger.Error("Failed to answer callback", zap.Error(err))
	}
}

// answerAlert показывает пользователю всплывающее окно с текстом
func (h *Handler) answerAlert(ctx context.Context, b *bot.Bot, callbackID, text string) {
	_, err := b.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
		CallbackQueryID: callbackID,
		Text:            text,
		ShowAlert:       true,
	})
	if err != nil {
		h.logger.Error("Failed to answer callback alert", zap.Error(err))
	}
}

// parseUUID достаёт UUID из callback data вида "prefix:<uuid>"
func parseUUID(data string) (uuid.UUID, error) {
	idx := strings.LastIndex(data, ":")
	if idx < 0 || idx == len(data)-1 {
		return uuid.Nil, fmt.Errorf("no id in callback data: %q", data)
	}
	return uuid.Parse(data[idx+1:])
}

// callbackUser резолвит отправителя callback в зарегистрированного пользователя
func (h *Handler) callbackUser(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery) (*model.User, bool) {
	user, err := h.userService.GetByTelegramID(ctx, callback.From.ID)
	if err != nil {
		h.logger.Error("Failed to get user for callback",
			zap.Int64("telegram_id", callback.From.ID),
			zap.Error(err))
		h.answerAlert(ctx, b, callback.ID, "❌ Произошла ошибка. Попробуйте позже.")
		return nil, false
	}
	if user == nil {
		h.answerAlert(ctx, b, callback.ID, "❌ Вы не зарегистрированы. Используйте /start")
		return nil, false
	}
	return user, true
}

// showScreen показывает экран навигации: редактирует текстовое сообщение,
// а если исходное сообщение без текста (например, фото-карточка) - шлёт новое
func (h *Handler) showScreen(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, text string, kb *models.InlineKeyboardMarkup) {
	msg := callback.Message.Message
	if msg == nil {
		// Сообщение недоступно (слишком старое)
		h.answerAlert(ctx, b, callback.ID, "❌ Сообщение устарело, вызовите /course заново.")
		return
	}

	if msg.Text != "" {
		_, err := b.EditMessageText(ctx, &bot.EditMessageTextParams{
			ChatID:      msg.Chat.ID,
			MessageID:   msg.ID,
			Text:        text,
			ReplyMarkup: kb,
		})
		if err == nil {
			return
		}
		h.logger.Warn("Failed to edit message, sending new one", zap.Error(err))
	}

	_, err := b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:      msg.Chat.ID,
		Text:        text,
		ReplyMarkup: kb,
	})
	if err != nil {
		h.logger.Error("Failed to send screen message", zap.Error(err))
	}
}
