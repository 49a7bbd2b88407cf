package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-telegram/bot"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"school-bot/internal/app"
	"school-bot/internal/config"
	"school-bot/internal/controller"
	"school-bot/internal/repository"
	"school-bot/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := app.NewLogger(cfg.Environment)
	defer logger.Sync()

	logger.Info("Starting school bot",
		zap.String("environment", cfg.Environment),
		zap.Bool("strict_approval", cfg.HomeworkStrictApproval),
	)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Подключаемся к PostgreSQL
	pool, err := pgxpool.New(ctx, cfg.DBDSN)
	if err != nil {
		logger.Fatal("Failed to create connection pool", zap.Error(err))
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		logger.Fatal("Failed to ping database", zap.Error(err))
	}
	logger.Info("✅ Connected to database")

	// Применяем миграции
	migrator, err := app.NewMigrator(pool, cfg.MigrationsPath, logger)
	if err != nil {
		logger.Fatal("Failed to create migrator", zap.Error(err))
	}
	if err := migrator.Run(ctx); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}
	migrator.Close()

	// Репозитории
	userRepo := repository.NewUserRepository(pool)
	moduleRepo := repository.NewModuleRepository(pool)
	lessonRepo := repository.NewLessonRepository(pool)
	submissionRepo := repository.NewSubmissionRepository(pool)
	overrideRepo := repository.NewOverrideRepository(pool)
	tariffRepo := repository.NewTariffRepository(pool)

	// Telegram bot
	b, err := bot.New(cfg.TelegramToken)
	if err != nil {
		logger.Fatal("Failed to create bot", zap.Error(err))
	}

	// Фоновый нотификатор кураторов
	var notifier *app.Notifier
	if cfg.AdminChatID != 0 {
		notifier = app.NewNotifier(b, cfg.AdminChatID, logger)
		notifier.Start(ctx)
		defer notifier.Stop()
	} else {
		logger.Warn("ADMIN_CHAT_ID is not set, homework notifications are disabled")
	}

	// Сервисы
	userService := service.NewUserService(userRepo, logger)
	progressService := service.NewProgressService(
		moduleRepo, lessonRepo, submissionRepo, overrideRepo, tariffRepo,
		cfg.HomeworkStrictApproval, logger,
	)

	// Интерфейсное nil-значение вместо типизированного nil *app.Notifier
	var homeworkNotifier service.HomeworkNotifier
	if notifier != nil {
		homeworkNotifier = notifier
	}
	homeworkService := service.NewHomeworkService(
		submissionRepo, lessonRepo, moduleRepo, userRepo,
		progressService, homeworkNotifier, logger,
	)
	overrideService := service.NewOverrideService(overrideRepo, lessonRepo, logger)

	// Контроллер
	botController := controller.NewBotController(
		b,
		userService,
		progressService,
		homeworkService,
		overrideService,
		logger,
	)

	if err := botController.RegisterHandlers(ctx); err != nil {
		logger.Fatal("Failed to register handlers", zap.Error(err))
	}

	logger.Info("🚀 Bot is running, press Ctrl+C to stop")
	if err := botController.Start(ctx); err != nil {
		logger.Fatal("Bot stopped with error", zap.Error(err))
	}

	logger.Info("Bot stopped")
}
