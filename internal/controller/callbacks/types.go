package callbacks

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"

	"school-bot/internal/controller/state"
	"school-bot/internal/service"
)

// Handler обрабатывает нажатия inline кнопок
type Handler struct {
	userService     *service.UserService
	progressService *service.ProgressService
	homeworkService *service.HomeworkService
	stateManager    *state.Manager
	logger          *zap.Logger
}

// NewHandler создаёт новый обработчик callbacks с зависимостями
func NewHandler(
	userService *service.UserService,
	progressService *service.ProgressService,
	homeworkService *service.HomeworkService,
	stateManager *state.Manager,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		userService:     userService,
		progressService: progressService,
		homeworkService: homeworkService,
		stateManager:    stateManager,
		logger:          logger,
	}
}

// HandleCallbackQuery - главный обработчик callback queries
func (h *Handler) HandleCallbackQuery(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.CallbackQuery == nil {
		return
	}

	callback := update.CallbackQuery

	h.logger.Info("Callback received",
		zap.String("data", callback.Data),
		zap.Int64("telegram_id", callback.From.ID),
	)

	h.route(ctx, b, callback)
}
