package app

import (
	"context"
	"fmt"
	"html"
	"sort"
	"strings"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/sethvargo/go-retry"
	"go.uber.org/zap"

	"school-bot/internal/model"
)

// Notifier асинхронно шлёт кураторам уведомления о новых сдачах ДЗ.
// Сдача не ждёт доставки: сообщение ставится в очередь, фоновый воркер
// отправляет его с ретраями.
type Notifier struct {
	bot         *bot.Bot
	adminChatID int64
	logger      *zap.Logger
	queue       chan string
	stopChan    chan struct{}
}

const notifierQueueSize = 64

func NewNotifier(botInstance *bot.Bot, adminChatID int64, logger *zap.Logger) *Notifier {
	return &Notifier{
		bot:         botInstance,
		adminChatID: adminChatID,
		logger:      logger,
		queue:       make(chan string, notifierQueueSize),
		stopChan:    make(chan struct{}),
	}
}

// Start запускает фонового воркера отправки
func (n *Notifier) Start(ctx context.Context) {
	n.logger.Info("Starting homework notifier", zap.Int64("admin_chat_id", n.adminChatID))
	go n.run(ctx)
}

// Stop останавливает воркера
func (n *Notifier) Stop() {
	close(n.stopChan)
}

// NotifyNewHomework ставит уведомление о сдаче в очередь.
// Не блокирует: при переполненной очереди уведомление теряется с записью в лог.
func (n *Notifier) NotifyNewHomework(student *model.User, module *model.Module, lesson *model.Lesson, sub *model.HomeworkSubmission) {
	text := formatHomeworkMessage(student, module, lesson, sub)

	select {
	case n.queue <- text:
	default:
		n.logger.Warn("Notification queue is full, dropping message",
			zap.Int64("user_id", student.ID),
			zap.String("lesson_id", lesson.ID.String()),
		)
	}
}

func (n *Notifier) run(ctx context.Context) {
	for {
		select {
		case text := <-n.queue:
			n.send(ctx, text)
		case <-n.stopChan:
			n.logger.Info("Homework notifier stopped")
			return
		case <-ctx.Done():
			n.logger.Info("Homework notifier cancelled")
			return
		}
	}
}

// send отправляет сообщение с экспоненциальными ретраями
func (n *Notifier) send(ctx context.Context, text string) {
	backoff := retry.WithMaxRetries(3, retry.NewExponential(500*time.Millisecond))

	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		_, err := n.bot.SendMessage(ctx, &bot.SendMessageParams{
			ChatID:    n.adminChatID,
			Text:      text,
			ParseMode: models.ParseModeHTML,
		})
		if err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})

	if err != nil {
		n.logger.Error("Failed to deliver homework notification", zap.Error(err))
	}
}

var moscowTZ = func() *time.Location {
	loc, err := time.LoadLocation("Europe/Moscow")
	if err != nil {
		return time.UTC
	}
	return loc
}()

// Сообщение уходит с ParseMode HTML, а имя и ответ пишет ученик,
// поэтому всё пользовательское экранируется
func formatHomeworkMessage(student *model.User, module *model.Module, lesson *model.Lesson, sub *model.HomeworkSubmission) string {
	var b strings.Builder

	b.WriteString("📚 <b>Новое домашнее задание!</b>\n\n")
	b.WriteString("👤 <b>Ученик:</b> " + html.EscapeString(student.DisplayName()) + "\n")
	if module != nil {
		b.WriteString("📁 <b>Модуль:</b> " + html.EscapeString(module.Title) + "\n")
	}
	b.WriteString("📖 <b>Урок:</b> " + html.EscapeString(lesson.Title))

	if sub.AnswerText != "" {
		b.WriteString("\n📝 <b>Ответ:</b>\n" + html.EscapeString(sub.AnswerText))
	}

	if len(sub.QuizAnswers) > 0 {
		b.WriteString("\n📋 <b>Тест:</b>")
		keys := make([]string, 0, len(sub.QuizAnswers))
		for k := range sub.QuizAnswers {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			b.WriteString("\n• " + html.EscapeString(fmt.Sprintf("%v", sub.QuizAnswers[k])))
		}
	}

	b.WriteString("\n\n🕐 " + time.Now().In(moscowTZ).Format("02.01.2006 15:04") + " МСК")

	return b.String()
}
