package access

import "github.com/google/uuid"

// OverrideState — состояние ручного исключения для урока
type OverrideState int

const (
	OverrideNone OverrideState = iota // Нет исключения, работает цепочка
	ForceLocked                       // Урок принудительно закрыт админом
	ForceUnlocked                     // Урок принудительно открыт админом
)

// Overrides — исключения пользователя, два непересекающихся множества уроков
type Overrides struct {
	locked   map[uuid.UUID]struct{}
	unlocked map[uuid.UUID]struct{}
}

// NewOverrides создаёт Overrides из множеств принудительно закрытых и открытых уроков
func NewOverrides(locked, unlocked map[uuid.UUID]struct{}) Overrides {
	return Overrides{locked: locked, unlocked: unlocked}
}

// NoOverrides возвращает пустой набор исключений
func NoOverrides() Overrides {
	return Overrides{}
}

// State возвращает состояние исключения для урока.
// Закрытие имеет приоритет, если урок каким-то образом попал в оба множества.
func (o Overrides) State(lessonID uuid.UUID) OverrideState {
	if _, ok := o.locked[lessonID]; ok {
		return ForceLocked
	}
	if _, ok := o.unlocked[lessonID]; ok {
		return ForceUnlocked
	}
	return OverrideNone
}
