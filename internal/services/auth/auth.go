package services

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/newsroom-backend/internal/lib/jwt"
	"github.com/magabrotheeeer/newsroom-backend/internal/lib/password"
	"github.com/magabrotheeeer/newsroom-backend/internal/lib/sl"
	"github.com/magabrotheeeer/newsroom-backend/internal/metrics"
	"github.com/magabrotheeeer/newsroom-backend/internal/models"
	"github.com/magabrotheeeer/newsroom-backend/internal/rabbitmq"
)

// UserRepository описывает контракт для работы с пользователями в базе данных.
type UserRepository interface {
	// RegisterUser сохраняет нового пользователя и возвращает его UID.
	RegisterUser(ctx context.Context, user models.User) (string, error)

	// GetUserByUsername возвращает пользователя по имени или ошибку, если не найден.
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)

	// GetUserByEmail возвращает пользователя по адресу почты.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	// RegisterFailedAttempt атомарно увеличивает счётчик неудачных попыток
	// и при достижении порога выставляет блокировку до lockUntil.
	// Истёкшая блокировка начинает отсчёт заново со счётчика 1.
	// Возвращает новый счётчик и актуальное время блокировки.
	RegisterFailedAttempt(ctx context.Context, userUID string, maxAttempts int, lockUntil, now time.Time) (int, *time.Time, error)

	// ResetLoginState сбрасывает счётчик, снимает блокировку и записывает
	// время последнего входа.
	ResetLoginState(ctx context.Context, userUID string, lastLoginAt time.Time) error

	// ActivateUser переводит запись из pending в active.
	ActivateUser(ctx context.Context, userUID string, verifiedAt time.Time) error
}

// TokenRepository описывает контракт для одноразовых кодов и refresh-сессий.
type TokenRepository interface {
	CreateVerificationToken(ctx context.Context, token models.VerificationToken) error
	GetVerificationToken(ctx context.Context, token, purpose string) (*models.VerificationToken, error)
	DeleteVerificationToken(ctx context.Context, token string) error

	CreateSession(ctx context.Context, userUID, tokenHash string, expiresAt time.Time) error
	RotateSession(ctx context.Context, oldHash, newHash string, expiresAt, now time.Time) (string, error)
	DeleteSession(ctx context.Context, tokenHash string) error
}

// EmailPublisher публикует сообщения почтовой очереди.
type EmailPublisher interface {
	Publish(routingKey string, message any) error
}

// LockoutPolicy задаёт порог и длительность блокировки учётной записи.
type LockoutPolicy struct {
	MaxAttempts  int
	LockDuration time.Duration
}

// LoginResult — результат успешного входа.
type LoginResult struct {
	AccessToken  string
	RefreshToken string
	Username     string
	Role         string
	UserUID      string
}

// AuthService отвечает за регистрацию, вход, блокировку, токены и MFA.
type AuthService struct {
	users      UserRepository
	tokens     TokenRepository
	oauth      OAuthAdapter
	jwtMaker   jwt.Maker
	publisher  EmailPublisher
	lockout    LockoutPolicy
	refreshTTL time.Duration
	verifyTTL  time.Duration
	mfaTTL     time.Duration
	log        *slog.Logger
}

// NewAuthService создает новый экземпляр AuthService.
func NewAuthService(users UserRepository, tokens TokenRepository, oauth OAuthAdapter,
	jwtMaker jwt.Maker, publisher EmailPublisher, lockout LockoutPolicy,
	refreshTTL time.Duration, log *slog.Logger) *AuthService {
	return &AuthService{
		users:      users,
		tokens:     tokens,
		oauth:      oauth,
		jwtMaker:   jwtMaker,
		publisher:  publisher,
		lockout:    lockout,
		refreshTTL: refreshTTL,
		verifyTTL:  24 * time.Hour,
		mfaTTL:     10 * time.Minute,
		log:        log,
	}
}

// Register создает нового пользователя со статусом pending, хэширует пароль
// и ставит в очередь письмо с кодом подтверждения почты.
func (s *AuthService) Register(ctx context.Context, email, username, rawPassword string) (string, error) {
	const op = "auth.Register"

	if u, err := s.users.GetUserByUsername(ctx, username); err == nil && u != nil {
		return "", ErrUserExists
	}
	if u, err := s.users.GetUserByEmail(ctx, email); err == nil && u != nil {
		return "", ErrUserExists
	}

	hashed, err := password.GetHash(rawPassword)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	user := models.User{
		Email:        email,
		Username:     username,
		PasswordHash: hashed,
		Role:         models.RoleReader, // дефолтная роль при регистрации
		Status:       models.StatusPending,
	}
	uid, err := s.users.RegisterUser(ctx, user)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	if err := s.sendVerification(ctx, uid, email, username); err != nil {
		// Пользователь уже создан, письмо можно перезапросить.
		s.log.Error("failed to send verification email", sl.Err(err))
	}
	return uid, nil
}

func (s *AuthService) sendVerification(ctx context.Context, userUID, email, username string) error {
	token := uuid.New().String()
	vt := models.VerificationToken{
		Token:     token,
		UserUID:   userUID,
		Purpose:   models.TokenEmailVerification,
		ExpiresAt: time.Now().Add(s.verifyTTL),
	}
	if err := s.tokens.CreateVerificationToken(ctx, vt); err != nil {
		return err
	}
	return s.publisher.Publish(rabbitmq.RoutingKeyVerification, models.EmailMessage{
		Email:    email,
		Username: username,
		Purpose:  models.TokenEmailVerification,
		Code:     token,
	})
}

// Login проверяет пароль пользователя с учётом политики блокировки
// и при успехе выпускает пару токенов.
//
// Порядок проверок фиксирован: статус учётной записи, затем действующая
// блокировка, затем пароль. Правильный пароль во время блокировки вход
// не разблокирует и счётчик не меняет.
func (s *AuthService) Login(ctx context.Context, username, rawPassword string) (*LoginResult, error) {
	const op = "auth.Login"

	user, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			metrics.LoginAttempts.WithLabelValues("invalid_credentials").Inc()
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if user.Status != models.StatusActive {
		metrics.LoginAttempts.WithLabelValues("not_active").Inc()
		return nil, ErrAccountNotActive
	}

	now := time.Now()
	if user.IsLocked(now) {
		metrics.LoginAttempts.WithLabelValues("locked").Inc()
		return nil, &AccountLockedError{Until: *user.LockedUntil}
	}

	if err := password.CompareHash(user.PasswordHash, rawPassword); err != nil {
		failed, lockedUntil, regErr := s.users.RegisterFailedAttempt(ctx, user.UID,
			s.lockout.MaxAttempts, now.Add(s.lockout.LockDuration), now)
		if regErr != nil {
			return nil, fmt.Errorf("%s: %w", op, regErr)
		}
		if lockedUntil != nil && now.Before(*lockedUntil) {
			s.log.Warn("account locked after repeated failures",
				slog.String("username", username), slog.Int("failed_attempts", failed))
			metrics.LoginAttempts.WithLabelValues("locked").Inc()
			metrics.LockoutsTriggered.Inc()
			return nil, &AccountLockedError{Until: *lockedUntil}
		}
		metrics.LoginAttempts.WithLabelValues("invalid_credentials").Inc()
		return nil, ErrInvalidCredentials
	}

	if user.MFAEnabled {
		if err := s.sendMfaCode(ctx, user); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		metrics.LoginAttempts.WithLabelValues("mfa_required").Inc()
		return nil, ErrMfaRequired
	}

	return s.completeLogin(ctx, user, now)
}

// completeLogin сбрасывает счётчики и выпускает пару токенов.
// Каждая ветка входа проходит через эту точку только после всех проверок.
func (s *AuthService) completeLogin(ctx context.Context, user *models.User, now time.Time) (*LoginResult, error) {
	const op = "auth.completeLogin"

	if err := s.users.ResetLoginState(ctx, user.UID, now); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	access, err := s.jwtMaker.GenerateAccessToken(user.Username, user.Role, user.UID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	refresh, err := s.jwtMaker.GenerateRefreshToken(user.Username, user.Role, user.UID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := s.tokens.CreateSession(ctx, user.UID, hashToken(refresh), now.Add(s.refreshTTL)); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	metrics.LoginAttempts.WithLabelValues("success").Inc()
	return &LoginResult{
		AccessToken:  access,
		RefreshToken: refresh,
		Username:     user.Username,
		Role:         user.Role,
		UserUID:      user.UID,
	}, nil
}

func (s *AuthService) sendMfaCode(ctx context.Context, user *models.User) error {
	code, err := generateMfaCode()
	if err != nil {
		return err
	}
	vt := models.VerificationToken{
		Token:     code,
		UserUID:   user.UID,
		Purpose:   models.TokenMFACode,
		ExpiresAt: time.Now().Add(s.mfaTTL),
	}
	if err := s.tokens.CreateVerificationToken(ctx, vt); err != nil {
		return err
	}
	return s.publisher.Publish(rabbitmq.RoutingKeyMFA, models.EmailMessage{
		Email:    user.Email,
		Username: user.Username,
		Purpose:  models.TokenMFACode,
		Code:     code,
	})
}

// ConfirmMfa завершает вход пользователя с включённой MFA по коду из письма.
// Статус и блокировка перепроверяются: учётная запись, заблокированная или
// отключённая за время жизни кода, вход не завершает.
func (s *AuthService) ConfirmMfa(ctx context.Context, username, code string) (*LoginResult, error) {
	const op = "auth.ConfirmMfa"

	user, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrInvalidMfaCode
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if user.Status != models.StatusActive {
		return nil, ErrAccountNotActive
	}
	now := time.Now()
	if user.IsLocked(now) {
		return nil, &AccountLockedError{Until: *user.LockedUntil}
	}

	vt, err := s.tokens.GetVerificationToken(ctx, code, models.TokenMFACode)
	if err != nil || vt.UserUID != user.UID {
		return nil, ErrInvalidMfaCode
	}
	if time.Now().After(vt.ExpiresAt) {
		_ = s.tokens.DeleteVerificationToken(ctx, vt.Token)
		return nil, ErrInvalidMfaCode
	}
	if err := s.tokens.DeleteVerificationToken(ctx, vt.Token); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return s.completeLogin(ctx, user, now)
}

// VerifyEmail подтверждает адрес почты по одноразовому коду
// и активирует учётную запись.
func (s *AuthService) VerifyEmail(ctx context.Context, token string) error {
	const op = "auth.VerifyEmail"

	vt, err := s.tokens.GetVerificationToken(ctx, token, models.TokenEmailVerification)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrTokenInvalid
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	if time.Now().After(vt.ExpiresAt) {
		_ = s.tokens.DeleteVerificationToken(ctx, vt.Token)
		return ErrTokenExpired
	}

	if err := s.users.ActivateUser(ctx, vt.UserUID, time.Now()); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrAlreadyVerified
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := s.tokens.DeleteVerificationToken(ctx, vt.Token); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// ResendVerification повторно выпускает код подтверждения почты.
func (s *AuthService) ResendVerification(ctx context.Context, email string) error {
	const op = "auth.ResendVerification"

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// Не раскрываем, существует ли адрес.
			return nil
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	if user.Status != models.StatusPending {
		return ErrAlreadyVerified
	}
	if err := s.sendVerification(ctx, user.UID, user.Email, user.Username); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Refresh обменивает действующий refresh-токен на новую пару токенов.
// Старая сессия атомарно заменяется новой (ротация).
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*LoginResult, error) {
	const op = "auth.Refresh"

	claims, err := s.jwtMaker.ParseToken(refreshToken)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}
	if claims.TokenType != jwt.TypeRefresh {
		return nil, ErrTokenInvalid
	}

	now := time.Now()
	newRefresh, err := s.jwtMaker.GenerateRefreshToken(claims.Username, claims.Role, claims.UserUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	userUID, err := s.tokens.RotateSession(ctx, hashToken(refreshToken), hashToken(newRefresh),
		now.Add(s.refreshTTL), now)
	if err != nil {
		// Сессия отозвана или уже ротирована.
		return nil, ErrTokenInvalid
	}

	access, err := s.jwtMaker.GenerateAccessToken(claims.Username, claims.Role, claims.UserUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &LoginResult{
		AccessToken:  access,
		RefreshToken: newRefresh,
		Username:     claims.Username,
		Role:         claims.Role,
		UserUID:      userUID,
	}, nil
}

// Logout отзывает refresh-токен, удаляя его сессию.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	const op = "auth.Logout"
	if err := s.tokens.DeleteSession(ctx, hashToken(refreshToken)); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// ValidateToken проверяет access-токен и возвращает его claims.
// Любой некорректный или истёкший токен отклоняется.
func (s *AuthService) ValidateToken(_ context.Context, token string) (*jwt.CustomClaims, error) {
	claims, err := s.jwtMaker.ParseToken(token)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}
	if claims.TokenType != jwt.TypeAccess {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// generateMfaCode возвращает шестизначный цифровой код.
func generateMfaCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
