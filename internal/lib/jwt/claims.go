// Package jwt реализует генерацию и парсинг JWT токенов с пользовательскими claim полями.
//
// Maker определяет интерфейс для создания и проверки access- и refresh-токенов
// с username, ролью и UID пользователя.
// MakerImpl — конкретная реализация с использованием секретного ключа
// и отдельных сроков жизни для access- и refresh-токенов.
package jwt

import (
	"time"
)

// Типы выпускаемых токенов, хранятся в claim token_type.
const (
	TypeAccess  = "access"
	TypeRefresh = "refresh"
)

// Maker описывает интерфейс для генерации и парсинга JWT токенов.
type Maker interface {
	// GenerateAccessToken выпускает короткоживущий access-токен.
	GenerateAccessToken(username, role, userUID string) (string, error)
	// GenerateRefreshToken выпускает долгоживущий refresh-токен.
	GenerateRefreshToken(username, role, userUID string) (string, error)
	// ParseToken возвращает *CustomClaims, если токен подписан и не истёк.
	ParseToken(tokenStr string) (*CustomClaims, error)
}

// MakerImpl реализует интерфейс Maker с использованием секретного ключа
// и времени жизни токенов (TTL).
type MakerImpl struct {
	secretKey  string        // Секретный ключ для подписи токенов
	accessTTL  time.Duration // Время жизни access-токена
	refreshTTL time.Duration // Время жизни refresh-токена
}

// NewJWTMaker создаёт новый экземпляр MakerImpl на основе секретного ключа и TTL.
func NewJWTMaker(secretKey string, accessTTL, refreshTTL time.Duration) *MakerImpl {
	return &MakerImpl{
		secretKey:  secretKey,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}
