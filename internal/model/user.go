package model

import "time"

type User struct {
	ID               int64      `json:"id"`
	TelegramID       int64      `json:"telegram_id"`
	Username         string     `json:"username"`
	FirstName        string     `json:"first_name"`
	LastName         string     `json:"last_name"`
	LanguageCode     string     `json:"language_code"`
	IsCurator        bool       `json:"is_curator"`
	IsAdmin          bool       `json:"is_admin"`
	CuratorEngagedAt *time.Time `json:"curator_engaged_at"` // Момент первой сдачи ДЗ (работа с куратором началась)
	CreatedAt        time.Time  `json:"created_at"`
}

// DisplayName возвращает имя для уведомлений куратору
func (u *User) DisplayName() string {
	name := u.FirstName
	if u.LastName != "" {
		if name != "" {
			name += " "
		}
		name += u.LastName
	}
	if name == "" {
		return "@" + u.Username
	}
	if u.Username != "" {
		name += " (@" + u.Username + ")"
	}
	return name
}
