package handlers

import (
	"context"

	"go.uber.org/zap"

	"school-bot/internal/controller/state"
	"school-bot/internal/model"
	"school-bot/internal/service"
)

// UserResolver — срез UserService, нужный обработчикам
type UserResolver interface {
	RegisterUser(ctx context.Context, telegramID int64, username, firstName, lastName, languageCode string) (*model.User, error)
	GetByTelegramID(ctx context.Context, telegramID int64) (*model.User, error)
	GetByID(ctx context.Context, id int64) (*model.User, error)
}

// Handlers содержит все зависимости для обработки команд
type Handlers struct {
	userService     UserResolver
	progressService *service.ProgressService
	homeworkService *service.HomeworkService
	overrideService *service.OverrideService
	stateManager    *state.Manager
	logger          *zap.Logger
}

// NewHandlers создаёт новый обработчик команд
func NewHandlers(
	userService UserResolver,
	progressService *service.ProgressService,
	homeworkService *service.HomeworkService,
	overrideService *service.OverrideService,
	stateManager *state.Manager,
	logger *zap.Logger,
) *Handlers {
	return &Handlers{
		userService:     userService,
		progressService: progressService,
		homeworkService: homeworkService,
		overrideService: overrideService,
		stateManager:    stateManager,
		logger:          logger,
	}
}
