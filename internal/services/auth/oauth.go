package services

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/magabrotheeeer/newsroom-backend/internal/models"
)

// OAuthProfile — профиль пользователя, полученный от внешнего провайдера.
type OAuthProfile struct {
	Provider  string // google или github
	AccountID string // Идентификатор у провайдера
	Email     string
	Name      string
}

// OAuthAdapter описывает контракт хранилища для входа через провайдеров.
type OAuthAdapter interface {
	GetUserByProviderAccount(ctx context.Context, provider, accountID string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	RegisterUser(ctx context.Context, user models.User) (string, error)
	LinkAccount(ctx context.Context, userUID, provider, accountID string) error
}

// LoginWithProvider завершает вход через внешнего провайдера.
//
// Порядок разрешения учётной записи: сначала по связке провайдер+аккаунт,
// затем по адресу почты с привязкой аккаунта, иначе создаётся новый
// пользователь. Почта от провайдера считается подтверждённой, поэтому
// новая запись сразу активна. Политика блокировки здесь не участвует:
// пароль не проверяется.
func (s *AuthService) LoginWithProvider(ctx context.Context, profile OAuthProfile) (*LoginResult, error) {
	const op = "auth.LoginWithProvider"

	adapter := s.oauth
	now := time.Now()
	user, err := adapter.GetUserByProviderAccount(ctx, profile.Provider, profile.AccountID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if user == nil {
		user, err = adapter.GetUserByEmail(ctx, profile.Email)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if user == nil {
			user, err = s.registerFromProfile(ctx, adapter, profile, now)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", op, err)
			}
		}
		if err = adapter.LinkAccount(ctx, user.UID, profile.Provider, profile.AccountID); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}

	if user.Status == models.StatusSuspended || user.Status == models.StatusInactive {
		return nil, ErrAccountNotActive
	}

	return s.completeLogin(ctx, user, now)
}

func (s *AuthService) registerFromProfile(ctx context.Context, adapter OAuthAdapter,
	profile OAuthProfile, now time.Time) (*models.User, error) {
	// Пароль такой записи никогда не используется для входа,
	// в хранилище попадает случайное значение.
	filler := make([]byte, 32)
	if _, err := rand.Read(filler); err != nil {
		return nil, err
	}
	user := models.User{
		Email:        profile.Email,
		Username:     usernameFromProfile(profile),
		PasswordHash: hex.EncodeToString(filler),
		Role:         models.RoleReader,
		Status:       models.StatusActive,
	}
	uid, err := adapter.RegisterUser(ctx, user)
	if err != nil {
		return nil, err
	}
	user.UID = uid
	user.EmailVerifiedAt = &now
	return &user, nil
}

// usernameFromProfile выводит имя пользователя из профиля провайдера.
func usernameFromProfile(profile OAuthProfile) string {
	name := strings.TrimSpace(profile.Name)
	if name == "" {
		if at := strings.Index(profile.Email, "@"); at > 0 {
			name = profile.Email[:at]
		}
	}
	name = strings.ToLower(strings.ReplaceAll(name, " ", "_"))
	if name == "" {
		name = profile.Provider + "_user"
	}
	// Суффикс от идентификатора провайдера защищает от коллизий имён.
	suffix := profile.AccountID
	if len(suffix) > 6 {
		suffix = suffix[len(suffix)-6:]
	}
	return name + "_" + suffix
}
