package handlers

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"school-bot/internal/access"
	"school-bot/internal/model"
	"school-bot/internal/service"
)

// Админские команды управления исключениями:
//
//	/lock <telegram_id> <lesson_id>         - принудительно закрыть урок
//	/unlock <telegram_id> <lesson_id>       - принудительно открыть урок
//	/clearlock <telegram_id> <lesson_id>    - убрать исключение
//	/lockmodule <telegram_id> <module_id>   - закрыть все уроки модуля
//	/unlockmodule <telegram_id> <module_id> - открыть все уроки модуля

// HandleLock обрабатывает команду /lock
func (h *Handlers) HandleLock(ctx context.Context, b *bot.Bot, update *models.Update) {
	h.handleLessonOverride(ctx, b, update, access.ForceLocked,
		"🔒 Урок принудительно закрыт для ученика %s.")
}

// HandleUnlock обрабатывает команду /unlock
func (h *Handlers) HandleUnlock(ctx context.Context, b *bot.Bot, update *models.Update) {
	h.handleLessonOverride(ctx, b, update, access.ForceUnlocked,
		"🔓 Урок принудительно открыт для ученика %s.")
}

// HandleClearLock обрабатывает команду /clearlock
func (h *Handlers) HandleClearLock(ctx context.Context, b *bot.Bot, update *models.Update) {
	_, ok := h.requireAdmin(ctx, b, update)
	if !ok {
		return
	}

	target, lessonID, ok := h.parseOverrideArgs(ctx, b, update)
	if !ok {
		return
	}

	err := h.overrideService.Clear(ctx, target.ID, lessonID)
	if errors.Is(err, service.ErrNotFound) {
		h.sendMessage(ctx, b, update.Message.Chat.ID, "ℹ️ Для этого урока нет исключения.")
		return
	}
	if err != nil {
		h.logger.Error("Failed to clear override", zap.Error(err))
		h.sendError(ctx, b, update.Message.Chat.ID, "❌ Не удалось убрать исключение.")
		return
	}

	h.sendMessage(ctx, b, update.Message.Chat.ID,
		fmt.Sprintf("✅ Исключение снято, урок снова управляется цепочкой (ученик %s).", target.DisplayName()))
}

// HandleLockModule обрабатывает команду /lockmodule
func (h *Handlers) HandleLockModule(ctx context.Context, b *bot.Bot, update *models.Update) {
	h.handleModuleOverride(ctx, b, update, access.ForceLocked,
		"🔒 Все уроки модуля закрыты для ученика %s (%d шт).")
}

// HandleUnlockModule обрабатывает команду /unlockmodule
func (h *Handlers) HandleUnlockModule(ctx context.Context, b *bot.Bot, update *models.Update) {
	h.handleModuleOverride(ctx, b, update, access.ForceUnlocked,
		"🔓 Все уроки модуля открыты для ученика %s (%d шт).")
}

func (h *Handlers) handleLessonOverride(ctx context.Context, b *bot.Bot, update *models.Update, mode access.OverrideState, successFmt string) {
	_, ok := h.requireAdmin(ctx, b, update)
	if !ok {
		return
	}

	target, lessonID, ok := h.parseOverrideArgs(ctx, b, update)
	if !ok {
		return
	}

	err := h.overrideService.Set(ctx, target.ID, lessonID, mode)
	if errors.Is(err, service.ErrNotFound) {
		h.sendError(ctx, b, update.Message.Chat.ID, "❌ Урок с таким ID не найден.")
		return
	}
	if err != nil {
		h.logger.Error("Failed to set override", zap.Error(err))
		h.sendError(ctx, b, update.Message.Chat.ID, "❌ Не удалось применить исключение.")
		return
	}

	h.sendMessage(ctx, b, update.Message.Chat.ID, fmt.Sprintf(successFmt, target.DisplayName()))
}

func (h *Handlers) handleModuleOverride(ctx context.Context, b *bot.Bot, update *models.Update, mode access.OverrideState, successFmt string) {
	_, ok := h.requireAdmin(ctx, b, update)
	if !ok {
		return
	}

	target, moduleID, ok := h.parseOverrideArgs(ctx, b, update)
	if !ok {
		return
	}

	applied, failures, err := h.overrideService.SetModule(ctx, target.ID, moduleID, mode)
	if errors.Is(err, service.ErrNotFound) {
		h.sendError(ctx, b, update.Message.Chat.ID, "❌ Модуль с таким ID не найден или в нём нет уроков.")
		return
	}
	if err != nil {
		h.logger.Error("Failed to set module override", zap.Error(err))
		h.sendError(ctx, b, update.Message.Chat.ID, "❌ Не удалось применить исключение к модулю.")
		return
	}

	text := fmt.Sprintf(successFmt, target.DisplayName(), applied)
	if len(failures) > 0 {
		text += fmt.Sprintf("\n⚠️ Не применилось к %d урокам:", len(failures))
		for _, f := range failures {
			text += fmt.Sprintf("\n  %s: %v", f.LessonID, f.Err)
		}
	}

	h.sendMessage(ctx, b, update.Message.Chat.ID, text)
}

// parseOverrideArgs разбирает аргументы вида "<telegram_id> <uuid>" после команды
// и резолвит telegram_id в зарегистрированного пользователя
func (h *Handlers) parseOverrideArgs(ctx context.Context, b *bot.Bot, update *models.Update) (*model.User, uuid.UUID, bool) {
	parts := strings.Fields(update.Message.Text)
	if len(parts) != 3 {
		h.sendError(ctx, b, update.Message.Chat.ID,
			fmt.Sprintf("❌ Неверный формат.\n\nИспользуйте: %s <telegram_id> <id>", parts[0]))
		return nil, uuid.Nil, false
	}

	telegramID, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		h.sendError(ctx, b, update.Message.Chat.ID, "❌ telegram_id должен быть числом.")
		return nil, uuid.Nil, false
	}

	id, err := uuid.Parse(parts[2])
	if err != nil {
		h.sendError(ctx, b, update.Message.Chat.ID, "❌ Неверный формат ID (ожидается UUID).")
		return nil, uuid.Nil, false
	}

	target, err := h.userService.GetByTelegramID(ctx, telegramID)
	if err != nil {
		h.logger.Error("Failed to resolve target user", zap.Int64("telegram_id", telegramID), zap.Error(err))
		h.sendError(ctx, b, update.Message.Chat.ID, "❌ Не удалось найти пользователя.")
		return nil, uuid.Nil, false
	}
	if target == nil {
		h.sendError(ctx, b, update.Message.Chat.ID, "❌ Ученик с таким telegram_id не зарегистрирован в боте.")
		return nil, uuid.Nil, false
	}

	return target, id, true
}
