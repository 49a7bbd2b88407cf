package controller

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"

	"school-bot/internal/controller/callbacks"
	"school-bot/internal/controller/handlers"
	"school-bot/internal/controller/state"
	"school-bot/internal/service"
)

type BotController struct {
	bot             *bot.Bot
	handlers        *handlers.Handlers
	callbackHandler *callbacks.Handler
	logger          *zap.Logger
}

func NewBotController(
	botInstance *bot.Bot,
	userService *service.UserService,
	progressService *service.ProgressService,
	homeworkService *service.HomeworkService,
	overrideService *service.OverrideService,
	logger *zap.Logger,
) *BotController {
	// Создаём менеджер состояний
	stateManager := state.NewManager()

	// Создаём обработчики команд
	cmdHandlers := handlers.NewHandlers(
		userService,
		progressService,
		homeworkService,
		overrideService,
		stateManager,
		logger,
	)

	// Создаём callback handler с зависимостями
	callbackHandler := callbacks.NewHandler(
		userService,
		progressService,
		homeworkService,
		stateManager,
		logger,
	)

	return &BotController{
		bot:             botInstance,
		handlers:        cmdHandlers,
		callbackHandler: callbackHandler,
		logger:          logger,
	}
}

// RegisterHandlers регистрирует все обработчики команд
func (c *BotController) RegisterHandlers(ctx context.Context) error {
	// Регистрируем команды
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/start", bot.MatchTypeExact, c.handlers.HandleStart)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/help", bot.MatchTypeExact, c.handlers.HandleHelp)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/course", bot.MatchTypeExact, c.handlers.HandleCourse)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/cancel", bot.MatchTypeExact, c.handlers.HandleCancel)

	// Команды для кураторов
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/review", bot.MatchTypeExact, c.handlers.HandleReview)

	// Админские команды с аргументами (префикс с пробелом, чтобы не
	// перехватывать соседние команды: "/lock " не матчит "/lockmodule")
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/lock ", bot.MatchTypePrefix, c.handlers.HandleLock)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/unlock ", bot.MatchTypePrefix, c.handlers.HandleUnlock)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/clearlock ", bot.MatchTypePrefix, c.handlers.HandleClearLock)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/lockmodule ", bot.MatchTypePrefix, c.handlers.HandleLockModule)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/unlockmodule ", bot.MatchTypePrefix, c.handlers.HandleUnlockModule)

	// Обработчик текстовых сообщений (для диалогов с состояниями)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "", bot.MatchTypePrefix, c.handlers.HandleTextMessage)

	// Обработчик нажатий на inline кнопки
	c.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, "", bot.MatchTypePrefix, c.callbackHandler.HandleCallbackQuery)

	// Устанавливаем меню команд
	return c.setCommands(ctx)
}

// setCommands устанавливает список команд в меню бота
func (c *BotController) setCommands(ctx context.Context) error {
	commands := []models.BotCommand{
		{Command: "start", Description: "🚀 Начать работу с ботом"},
		{Command: "course", Description: "📚 Мой курс и прогресс"},
		{Command: "review", Description: "📝 Очередь проверки ДЗ (куратор)"},
		{Command: "cancel", Description: "↩️ Отменить текущую операцию"},
		{Command: "help", Description: "❓ Справка по командам"},
	}

	_, err := c.bot.SetMyCommands(ctx, &bot.SetMyCommandsParams{
		Commands: commands,
	})

	if err != nil {
		c.logger.Error("Failed to set bot commands", zap.Error(err))
		return err
	}

	c.logger.Info("✅ Bot commands menu set")
	return nil
}

// Start запускает бота
func (c *BotController) Start(ctx context.Context) error {
	c.logger.Info("Starting bot...")
	c.bot.Start(ctx)
	return nil
}
