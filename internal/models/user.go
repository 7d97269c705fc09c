// Package models содержит доменную модель пользователя системы,
// включающую учётные данные, статус аккаунта и счётчики неудачных
// попыток входа. Структура используется в бизнес-логике и при работе с хранилищем.
package models

import "time"

// Статусы учётной записи. Записи никогда не удаляются физически,
// меняется только статус.
const (
	StatusActive    = "active"
	StatusInactive  = "inactive"
	StatusSuspended = "suspended"
	StatusPending   = "pending"
)

// Роли пользователей системы.
const (
	RoleAdmin  = "admin"
	RoleEditor = "editor"
	RoleAuthor = "author"
	RoleReader = "reader"
)

// User представляет учётную запись пользователя системы.
type User struct {
	UID             string     // Уникальный идентификатор пользователя
	Email           string     // Электронная почта (уникальная)
	Username        string     // Имя пользователя (уникальное)
	PasswordHash    string     // bcrypt-хэш пароля
	Role            string     // Роль: admin, editor, author или reader
	Status          string     // Статус: active, inactive, suspended или pending
	FailedAttempts  int        // Количество неудачных попыток входа подряд
	LockedUntil     *time.Time // Время окончания блокировки (nil — не заблокирован)
	MFAEnabled      bool       // Включена ли двухфакторная аутентификация
	EmailVerifiedAt *time.Time // Время подтверждения почты (nil — не подтверждена)
	LastLoginAt     *time.Time // Время последнего успешного входа
	CreatedAt       time.Time  // Время создания записи
}

// IsLocked сообщает, заблокирована ли учётная запись на момент now.
func (u *User) IsLocked(now time.Time) bool {
	return u.LockedUntil != nil && now.Before(*u.LockedUntil)
}

// DummyUserUpdate используется для приёма данных администрирования
// учётной записи из JSON-запроса.
type DummyUserUpdate struct {
	Role   string `json:"role" validate:"omitempty,oneof=admin editor author reader"`
	Status string `json:"status" validate:"omitempty,oneof=active inactive suspended pending"`
}
