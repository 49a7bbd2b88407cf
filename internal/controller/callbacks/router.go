package callbacks

import (
	"context"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// ========================
// Callback Data Patterns
// ========================

// Навигация по курсу
const (
	BackToCourse   = "back_to_course"
	ViewModule     = "view_module:"     // view_module:<module_id>
	ViewLesson     = "view_lesson:"     // view_lesson:<lesson_id>
	SubmitHomework = "submit_homework:" // submit_homework:<lesson_id>
)

// Проверка ДЗ куратором
const (
	ReviewApprove = "review_approve:" // review_approve:<submission_id>
	ReviewReject  = "review_reject:"  // review_reject:<submission_id>
)

// route распределяет callback query по соответствующим обработчикам
func (h *Handler) route(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery) {
	data := callback.Data

	switch {
	// ===== Навигация по курсу =====
	case data == BackToCourse:
		h.handleBackToCourse(ctx, b, callback)
	case strings.HasPrefix(data, ViewModule):
		h.handleViewModule(ctx, b, callback)
	case strings.HasPrefix(data, ViewLesson):
		h.handleViewLesson(ctx, b, callback)
	case strings.HasPrefix(data, SubmitHomework):
		h.handleSubmitHomework(ctx, b, callback)

	// ===== Проверка ДЗ =====
	case strings.HasPrefix(data, ReviewApprove):
		h.handleReviewApprove(ctx, b, callback)
	case strings.HasPrefix(data, ReviewReject):
		h.handleReviewReject(ctx, b, callback)

	case data == "noop":
		// No operation - просто подтверждаем callback
		h.answerCallback(ctx, b, callback.ID, "")

	default:
		h.logger.Warn("Unknown callback",
			zap.String("data", data),
			zap.Int64("telegram_id", callback.From.ID))
		h.answerCallback(ctx, b, callback.ID, "❌ Неизвестная команда")
	}
}
