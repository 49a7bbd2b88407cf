package service

import "errors"

// Доменные ошибки. Транзиентные ошибки хранилища пробрасываются наверх как есть.
var (
	// ErrNotFound — урок/модуль/сдача/исключение не существует
	ErrNotFound = errors.New("not found")

	// ErrLessonLocked — урок закрыт для пользователя по вычисленной цепочке.
	// Проверяется на сервере даже если клиент считает урок открытым.
	ErrLessonLocked = errors.New("lesson is locked")

	// ErrAlreadySubmitted — сдача уже существует в статусе pending или approved.
	// Для вызывающего это не фатальная ошибка, а no-op
	ErrAlreadySubmitted = errors.New("homework already submitted")

	// ErrInvalidTransition — ревью сдачи не в статусе pending
	// (кто-то уже проверил её)
	ErrInvalidTransition = errors.New("invalid submission transition")

	// ErrNoHomework — попытка сдать ДЗ по уроку без ДЗ
	ErrNoHomework = errors.New("lesson has no homework")
)
