package models

import "time"

// Назначения одноразовых кодов.
const (
	TokenEmailVerification = "email_verification"
	TokenMFACode           = "mfa_code"
)

// VerificationToken представляет одноразовый код, отправляемый пользователю
// по почте: подтверждение адреса или код MFA.
type VerificationToken struct {
	Token     string    // Значение кода (uuid или короткий цифровой код)
	UserUID   string    // UID пользователя
	Purpose   string    // email_verification или mfa_code
	ExpiresAt time.Time // Время истечения
	CreatedAt time.Time // Время выпуска
}

// Session представляет выданный refresh-токен.
// Хранится только SHA-256 отпечаток токена; при logout строка удаляется.
type Session struct {
	ID        string    // Идентификатор сессии
	UserUID   string    // UID пользователя
	TokenHash string    // SHA-256 отпечаток refresh-токена
	ExpiresAt time.Time // Время истечения
	CreatedAt time.Time // Время выдачи
}

// EmailMessage — сообщение для очереди отправки писем.
type EmailMessage struct {
	Email    string `json:"email"`    // Адрес получателя
	Username string `json:"username"` // Имя пользователя
	Purpose  string `json:"purpose"`  // Назначение письма
	Code     string `json:"code"`     // Код подтверждения или MFA
	Subject  string `json:"subject"`  // Тема (для уведомлений о публикации)
	Body     string `json:"body"`     // Текст (для уведомлений о публикации)
}
