package model

import "time"

type Role string

const (
	RoleAdmin      Role = "admin"
	RoleInstructor Role = "instructor"
)

// Valid проверяет что роль известна
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleInstructor
}

// Staff - сотрудник автошколы (администратор или инструктор)
type Staff struct {
	ID         int64     `json:"id"`
	TelegramID *int64    `json:"telegram_id"` // nil - бот не привязан
	FullName   string    `json:"full_name"`
	Role       Role      `json:"role"`
	IsActive   bool      `json:"is_active"`
	CreatedAt  time.Time `json:"created_at"`
}

// IsAdmin проверяет права администратора
func (s *Staff) IsAdmin() bool {
	return s.Role == RoleAdmin
}
