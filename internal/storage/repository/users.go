package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/magabrotheeeer/newsroom-backend/internal/models"
)

const userColumns = `uid, email, username, password_hash, role, status,
			      failed_attempts, locked_until, mfa_enabled, email_verified_at,
			      last_login_at, created_at`

func scanUser(row interface{ Scan(...any) error }) (*models.User, error) {
	u := &models.User{}
	var lockedUntil, emailVerifiedAt, lastLoginAt sql.NullTime
	if err := row.Scan(&u.UID, &u.Email, &u.Username, &u.PasswordHash,
		&u.Role, &u.Status, &u.FailedAttempts, &lockedUntil, &u.MFAEnabled,
		&emailVerifiedAt, &lastLoginAt, &u.CreatedAt); err != nil {
		return nil, err
	}
	if lockedUntil.Valid {
		u.LockedUntil = &lockedUntil.Time
	}
	if emailVerifiedAt.Valid {
		u.EmailVerifiedAt = &emailVerifiedAt.Time
	}
	if lastLoginAt.Valid {
		u.LastLoginAt = &lastLoginAt.Time
	}
	return u, nil
}

// RegisterUser сохраняет нового пользователя в базу данных и возвращает его UID.
func (s *Storage) RegisterUser(ctx context.Context, user models.User) (string, error) {
	const op = "storage.RegisterUser"
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var newUID string
	query := `INSERT INTO users (email, username, password_hash, role, status,
			      mfa_enabled, email_verified_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7)
			  RETURNING uid;`
	if err := s.DB.QueryRowContext(ctx, query,
		user.Email, user.Username, user.PasswordHash, user.Role, user.Status,
		user.MFAEnabled, user.EmailVerifiedAt).Scan(&newUID); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return newUID, nil
}

// GetUserByUsername возвращает пользователя по его username.
func (s *Storage) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	const op = "storage.GetUserByUsername"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + userColumns + `
			  FROM users
			  WHERE username = $1`
	u, err := scanUser(s.DB.QueryRowContext(ctx, query, username))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

// GetUserByEmail возвращает пользователя по адресу почты.
func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	const op = "storage.GetUserByEmail"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + userColumns + `
			  FROM users
			  WHERE email = $1`
	u, err := scanUser(s.DB.QueryRowContext(ctx, query, email))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

// GetUser возвращает пользователя по его UID.
func (s *Storage) GetUser(ctx context.Context, userUID string) (*models.User, error) {
	const op = "storage.GetUser"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + userColumns + `
			  FROM users
			  WHERE uid = $1`
	u, err := scanUser(s.DB.QueryRowContext(ctx, query, userUID))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

// RegisterFailedAttempt атомарно увеличивает счётчик неудачных попыток входа
// и, при достижении порога, выставляет locked_until = lockUntil.
// Если предыдущая блокировка уже истекла, отсчёт начинается заново:
// счётчик становится равным 1, устаревшая блокировка снимается.
// Инкремент, сброс и проверка порога выполняются одним UPDATE, поэтому две
// конкурирующие неудачные попытки не теряют обновлений.
// Возвращает новое значение счётчика и актуальное время блокировки.
func (s *Storage) RegisterFailedAttempt(ctx context.Context, userUID string, maxAttempts int, lockUntil, now time.Time) (int, *time.Time, error) {
	const op = "storage.RegisterFailedAttempt"
	select {
	case <-ctx.Done():
		return 0, nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users
			  SET failed_attempts = CASE
			          WHEN locked_until IS NOT NULL AND locked_until <= $4 THEN 1
			          ELSE failed_attempts + 1
			      END,
			      locked_until = CASE
			          WHEN locked_until IS NOT NULL AND locked_until <= $4 THEN NULL
			          WHEN failed_attempts + 1 >= $2 THEN $3
			          ELSE locked_until
			      END
			  WHERE uid = $1
			  RETURNING failed_attempts, locked_until;`
	var failed int
	var locked sql.NullTime
	if err := s.DB.QueryRowContext(ctx, query, userUID, maxAttempts, lockUntil, now).
		Scan(&failed, &locked); err != nil {
		return 0, nil, fmt.Errorf("%s: %w", op, err)
	}
	if locked.Valid {
		t := locked.Time
		return failed, &t, nil
	}
	return failed, nil, nil
}

// ResetLoginState сбрасывает счётчик неудачных попыток, снимает блокировку
// и записывает время последнего успешного входа.
func (s *Storage) ResetLoginState(ctx context.Context, userUID string, lastLoginAt time.Time) error {
	const op = "storage.ResetLoginState"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users
			  SET failed_attempts = 0,
			      locked_until = NULL,
			      last_login_at = $2
			  WHERE uid = $1`
	if _, err := s.DB.ExecContext(ctx, query, userUID, lastLoginAt); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// ActivateUser переводит учётную запись из pending в active и
// фиксирует время подтверждения почты.
func (s *Storage) ActivateUser(ctx context.Context, userUID string, verifiedAt time.Time) error {
	const op = "storage.ActivateUser"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users
			  SET status = $2,
			      email_verified_at = $3
			  WHERE uid = $1 AND status = $4`
	res, err := s.DB.ExecContext(ctx, query, userUID, models.StatusActive, verifiedAt, models.StatusPending)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%s: %w", op, sql.ErrNoRows)
	}
	return nil
}

// UpdateUserAdmin меняет роль и/или статус учётной записи.
// Пустые значения оставляют поле без изменений.
func (s *Storage) UpdateUserAdmin(ctx context.Context, userUID, role, status string) error {
	const op = "storage.UpdateUserAdmin"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users
			  SET role = COALESCE(NULLIF($2, ''), role),
			      status = COALESCE(NULLIF($3, ''), status)
			  WHERE uid = $1`
	res, err := s.DB.ExecContext(ctx, query, userUID, role, status)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%s: %w", op, sql.ErrNoRows)
	}
	return nil
}

// ListUsers возвращает страницу учётных записей, новые — первыми.
func (s *Storage) ListUsers(ctx context.Context, limit, offset int) ([]*models.User, error) {
	const op = "storage.ListUsers"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + userColumns + `
			  FROM users
			  ORDER BY created_at DESC
			  LIMIT $1 OFFSET $2`
	rows, err := s.DB.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()
	var result []*models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, u)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// ListSubscriberEmails возвращает адреса активных пользователей
// для рассылки уведомлений о новых публикациях.
func (s *Storage) ListSubscriberEmails(ctx context.Context) ([]string, error) {
	const op = "storage.ListSubscriberEmails"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	rows, err := s.DB.QueryContext(ctx,
		`SELECT email FROM users WHERE status = $1`, models.StatusActive)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()
	var result []string
	for rows.Next() {
		var email string
		if err = rows.Scan(&email); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, email)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
