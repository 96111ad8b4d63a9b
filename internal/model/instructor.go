package model

import "time"

type Instructor struct {
	ID                  int64     `json:"id"`
	Name                string    `json:"name"`
	TelegramChatID      *int64    `json:"telegram_chat_id"` // nil = без уведомлений
	WorkingHoursVersion int64     `json:"working_hours_version"`
	CreatedAt           time.Time `json:"created_at"`
}
