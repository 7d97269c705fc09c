package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/magabrotheeeer/newsroom-backend/internal/models"
)

// CreateVerificationToken сохраняет одноразовый код подтверждения.
// Предыдущие коды того же назначения для пользователя удаляются.
func (s *Storage) CreateVerificationToken(ctx context.Context, token models.VerificationToken) error {
	const op = "storage.CreateVerificationToken"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err = tx.ExecContext(ctx,
		`DELETE FROM verification_tokens WHERE user_uid = $1 AND purpose = $2`,
		token.UserUID, token.Purpose); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if _, err = tx.ExecContext(ctx,
		`INSERT INTO verification_tokens (token, user_uid, purpose, expires_at)
		 VALUES ($1, $2, $3, $4)`,
		token.Token, token.UserUID, token.Purpose, token.ExpiresAt); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// GetVerificationToken возвращает код подтверждения по значению и назначению.
func (s *Storage) GetVerificationToken(ctx context.Context, token, purpose string) (*models.VerificationToken, error) {
	const op = "storage.GetVerificationToken"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT token, user_uid, purpose, expires_at, created_at
			  FROM verification_tokens
			  WHERE token = $1 AND purpose = $2`
	vt := &models.VerificationToken{}
	if err := s.DB.QueryRowContext(ctx, query, token, purpose).
		Scan(&vt.Token, &vt.UserUID, &vt.Purpose, &vt.ExpiresAt, &vt.CreatedAt); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return vt, nil
}

// DeleteVerificationToken удаляет использованный или истёкший код.
func (s *Storage) DeleteVerificationToken(ctx context.Context, token string) error {
	const op = "storage.DeleteVerificationToken"
	if _, err := s.DB.ExecContext(ctx,
		`DELETE FROM verification_tokens WHERE token = $1`, token); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// CreateSession сохраняет отпечаток выданного refresh-токена.
func (s *Storage) CreateSession(ctx context.Context, userUID, tokenHash string, expiresAt time.Time) error {
	const op = "storage.CreateSession"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO sessions (user_uid, token_hash, expires_at)
			  VALUES ($1, $2, $3)`
	if _, err := s.DB.ExecContext(ctx, query, userUID, tokenHash, expiresAt); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// RotateSession атомарно заменяет отпечаток refresh-токена на новый.
// Возвращает UID владельца сессии; отсутствующая или истёкшая сессия — ошибка.
func (s *Storage) RotateSession(ctx context.Context, oldHash, newHash string, expiresAt, now time.Time) (string, error) {
	const op = "storage.RotateSession"
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE sessions
			  SET token_hash = $2, expires_at = $3
			  WHERE token_hash = $1 AND expires_at > $4
			  RETURNING user_uid;`
	var userUID string
	if err := s.DB.QueryRowContext(ctx, query, oldHash, newHash, expiresAt, now).
		Scan(&userUID); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return userUID, nil
}

// DeleteSession удаляет сессию по отпечатку refresh-токена (logout).
func (s *Storage) DeleteSession(ctx context.Context, tokenHash string) error {
	const op = "storage.DeleteSession"
	if _, err := s.DB.ExecContext(ctx,
		`DELETE FROM sessions WHERE token_hash = $1`, tokenHash); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
