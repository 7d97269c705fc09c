// Package services содержит логику бизнес-уровня для работы с пользователями
// и аутентификацией: регистрация, вход с блокировкой после серии неудач,
// выпуск и проверка токенов, подтверждение почты, MFA и вход через
// внешних провайдеров.
package services

import (
	"errors"
	"fmt"
	"time"
)

// Терминальные исходы операций аутентификации. Все они сообщаются
// вызывающему коду как значения, никогда как паники.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountLocked      = errors.New("account locked")
	ErrAccountNotActive   = errors.New("account is not active")
	ErrMfaRequired        = errors.New("mfa code required")
	ErrInvalidMfaCode     = errors.New("invalid mfa code")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenInvalid       = errors.New("token invalid")
	ErrAlreadyVerified    = errors.New("email already verified")
	ErrUserExists         = errors.New("user already exists")
)

// AccountLockedError несёт время окончания блокировки.
// errors.Is(err, ErrAccountLocked) возвращает true.
type AccountLockedError struct {
	Until time.Time
}

func (e *AccountLockedError) Error() string {
	return fmt.Sprintf("account locked until %s", e.Until.Format(time.RFC3339))
}

// Is позволяет сравнивать ошибку с сентинелом ErrAccountLocked.
func (e *AccountLockedError) Is(target error) bool {
	return target == ErrAccountLocked
}

// RetryAfter возвращает оставшуюся длительность блокировки на момент now.
func (e *AccountLockedError) RetryAfter(now time.Time) time.Duration {
	if d := e.Until.Sub(now); d > 0 {
		return d
	}
	return 0
}
