package state

// UserState представляет текущее состояние пользователя в диалоге
type UserState string

const (
	StateNone UserState = "" // Нет активного состояния

	// Ученик вводит ответ на ДЗ (в Data лежит "lesson_id")
	StateAwaitingHomeworkAnswer UserState = "awaiting_homework_answer"

	// Куратор вводит комментарий к отклоняемой сдаче (в Data лежит "submission_id")
	StateAwaitingRejectComment UserState = "awaiting_reject_comment"
)

// Ключи временных данных диалога
const (
	DataLessonID     = "lesson_id"
	DataSubmissionID = "submission_id"
)

// UserData хранит временные данные пользователя во время диалога
type UserData struct {
	State UserState
	Data  map[string]interface{} // Временные данные для текущего диалога
}
