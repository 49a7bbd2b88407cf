package handlers

import (
	"bytes"
	"context"
	"fmt"
	"html"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"

	"school-bot/internal/controller/keyboard"
	"school-bot/internal/controller/render"
	"school-bot/internal/controller/state"
	"school-bot/internal/service"
)

// HandleStart обрабатывает команду /start
func (h *Handlers) HandleStart(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}

	user := update.Message.From

	// Регистрируем пользователя
	registeredUser, err := h.userService.RegisterUser(
		ctx,
		user.ID,
		user.Username,
		user.FirstName,
		user.LastName,
		user.LanguageCode,
	)

	if err != nil {
		h.logger.Error("Failed to register user", zap.Error(err))
		h.sendError(ctx, b, update.Message.Chat.ID, "❌ Произошла ошибка при регистрации. Попробуйте позже.")
		return
	}

	welcomeText := fmt.Sprintf(
		"👋 Привет, %s!\n\n"+
			"Это бот онлайн-школы: здесь ты смотришь уроки и сдаёшь домашние задания.\n\n"+
			"Доступные команды:\n"+
			"/course - Мой курс и прогресс\n"+
			"/help - Справка\n\n"+
			"Уроки открываются по порядку: сдай ДЗ текущего урока, и откроется следующий.",
		registeredUser.FirstName,
	)

	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: update.Message.Chat.ID,
		Text:   welcomeText,
	})
}

// HandleHelp обрабатывает команду /help
func (h *Handlers) HandleHelp(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}

	helpText := "📚 Справка по командам:\n\n" +
		"Для учеников:\n" +
		"/start - Начать работу с ботом\n" +
		"/course - Мой курс: модули, уроки, прогресс\n" +
		"/cancel - Отменить текущую операцию\n" +
		"/help - Показать эту справку\n\n" +
		"Для кураторов:\n" +
		"/review - Очередь проверки домашних заданий\n\n" +
		"Чтобы сдать ДЗ, откройте урок через /course и нажмите «Сдать ДЗ»."

	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: update.Message.Chat.ID,
		Text:   helpText,
	})
}

// HandleCancel обрабатывает команду /cancel - отмена текущего диалога
func (h *Handlers) HandleCancel(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}

	telegramID := update.Message.From.ID
	currentState := h.stateManager.GetState(telegramID)

	if currentState == state.StateNone {
		h.sendMessage(ctx, b, update.Message.Chat.ID, "❌ Нет активных операций для отмены.")
		return
	}

	// Очищаем состояние
	h.stateManager.ClearState(telegramID)

	h.sendMessage(ctx, b, update.Message.Chat.ID, "✅ Операция отменена.\n\nИспользуйте /help для просмотра доступных команд.")
}

// HandleCourse обрабатывает команду /course - обзор курса с карточкой прогресса
func (h *Handlers) HandleCourse(ctx context.Context, b *bot.Bot, update *models.Update) {
	user, ok := h.requireUser(ctx, b, update)
	if !ok {
		return
	}

	view, err := h.progressService.GetCourseView(ctx, user.ID)
	if err != nil {
		h.logger.Error("Failed to build course view", zap.Int64("user_id", user.ID), zap.Error(err))
		h.sendError(ctx, b, update.Message.Chat.ID, "❌ Не удалось загрузить курс. Попробуйте позже.")
		return
	}

	if len(view.Modules) == 0 {
		h.sendMessage(ctx, b, update.Message.Chat.ID,
			"📭 Пока нет доступных модулей.\n\nВозможно, у вас нет активного тарифа — обратитесь к администратору.")
		return
	}

	caption, kb := CourseOverview(view)

	imageData, err := render.ProgressCard(&render.ProgressView{
		Modules:  view.Modules,
		Lessons:  view.Lessons,
		Unlocked: view.Unlocked,
		Statuses: view.Statuses,
	})
	if err != nil {
		// Карточка не критична: откатываемся на текстовый обзор
		h.logger.Error("Failed to render progress card", zap.Int64("user_id", user.ID), zap.Error(err))
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID:      update.Message.Chat.ID,
			Text:        caption,
			ReplyMarkup: kb,
		})
		return
	}

	_, err = b.SendPhoto(ctx, &bot.SendPhotoParams{
		ChatID: update.Message.Chat.ID,
		Photo: &models.InputFileUpload{
			Filename: "progress.png",
			Data:     bytes.NewReader(imageData),
		},
		Caption:     caption,
		ReplyMarkup: kb,
	})
	if err != nil {
		h.logger.Error("Failed to send progress card", zap.Int64("user_id", user.ID), zap.Error(err))
		h.sendError(ctx, b, update.Message.Chat.ID, "❌ Не удалось отправить карточку прогресса.")
	}
}

// HandleReview обрабатывает команду /review - очередь проверки ДЗ для куратора
func (h *Handlers) HandleReview(ctx context.Context, b *bot.Bot, update *models.Update) {
	_, ok := h.requireCurator(ctx, b, update)
	if !ok {
		return
	}

	items, err := h.homeworkService.GetReviewQueue(ctx, 5)
	if err != nil {
		h.logger.Error("Failed to get review queue", zap.Error(err))
		h.sendError(ctx, b, update.Message.Chat.ID, "❌ Не удалось загрузить очередь проверки.")
		return
	}

	if len(items) == 0 {
		h.sendMessage(ctx, b, update.Message.Chat.ID, "🎉 Очередь проверки пуста. Все домашние задания проверены!")
		return
	}

	for _, item := range items {
		h.sendReviewCard(ctx, b, update.Message.Chat.ID, item)
	}
}

// sendReviewCard отправляет куратору одну сдачу с кнопками принять/отклонить
func (h *Handlers) sendReviewCard(ctx context.Context, b *bot.Bot, chatID int64, item service.ReviewItem) {
	sub := item.Submission

	studentName := fmt.Sprintf("id %d", sub.UserID)
	if student, err := h.userService.GetByID(ctx, sub.UserID); err == nil && student != nil {
		studentName = student.DisplayName()
	}

	kb := keyboard.NewBuilder().
		Row(
			keyboard.Button("✅ Принять", "review_approve:"+sub.ID.String()),
			keyboard.Button("❌ Отклонить", "review_reject:"+sub.ID.String()),
		).
		Build()

	_, err := b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:      chatID,
		Text:        reviewCardText(studentName, item),
		ParseMode:   models.ParseModeHTML,
		ReplyMarkup: kb,
	})
	if err != nil {
		h.logger.Error("Failed to send review card",
			zap.String("submission_id", sub.ID.String()),
			zap.Error(err),
		)
	}
}

// reviewCardText строит HTML-текст карточки сдачи. Ответ и имена пишет
// ученик, поэтому всё пользовательское экранируется — иначе Telegram
// отклонит сообщение из-за сломанной разметки
func reviewCardText(studentName string, item service.ReviewItem) string {
	sub := item.Submission

	var sb strings.Builder
	sb.WriteString("📝 <b>Домашнее задание на проверке</b>\n\n")
	sb.WriteString(fmt.Sprintf("👤 Ученик: %s\n", html.EscapeString(studentName)))
	if item.Module != nil {
		sb.WriteString(fmt.Sprintf("📁 Модуль: %s\n", html.EscapeString(item.Module.Title)))
	}
	if item.Lesson != nil {
		sb.WriteString(fmt.Sprintf("📖 Урок: %s\n", html.EscapeString(item.Lesson.Title)))
	}
	sb.WriteString(fmt.Sprintf("🕐 Сдано: %s\n", sub.CreatedAt.Format("02.01.2006 15:04")))
	if sub.AnswerText != "" {
		sb.WriteString(fmt.Sprintf("\n💬 Ответ:\n%s\n", html.EscapeString(sub.AnswerText)))
	}

	return sb.String()
}

// CourseOverview строит текст обзора курса и клавиатуру модулей.
// Используется и командой /course, и callback'ом возврата к курсу.
func CourseOverview(view *service.CourseView) (string, *models.InlineKeyboardMarkup) {
	var sb strings.Builder
	sb.WriteString("📚 Ваш курс:\n\n")

	kb := keyboard.NewBuilder()

	for i, m := range view.Modules {
		lessons := view.Lessons[m.ID]
		open := 0
		for _, l := range lessons {
			if view.IsUnlocked(l.ID) {
				open++
			}
		}

		icon := "📁"
		if open == 0 {
			icon = "🔒"
		}
		sb.WriteString(fmt.Sprintf("%s Модуль %d. %s — открыто %d из %d\n", icon, i+1, m.Title, open, len(lessons)))

		if open > 0 {
			kb.Row(keyboard.Button(
				fmt.Sprintf("📁 Модуль %d. %s", i+1, m.Title),
				"view_module:"+m.ID.String(),
			))
		}
	}

	sb.WriteString("\nВыберите модуль, чтобы посмотреть уроки.")
	return sb.String(), kb.Build()
}
