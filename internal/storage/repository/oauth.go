package repository

import (
	"context"
	"fmt"

	"github.com/magabrotheeeer/newsroom-backend/internal/models"
)

// GetUserByProviderAccount возвращает пользователя, привязанного к внешней
// учётной записи провайдера.
func (s *Storage) GetUserByProviderAccount(ctx context.Context, provider, providerAccountID string) (*models.User, error) {
	const op = "storage.GetUserByProviderAccount"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + userColumns + `
			  FROM users
			  WHERE uid = (SELECT user_uid FROM oauth_accounts
			               WHERE provider = $1 AND provider_account_id = $2)`
	u, err := scanUser(s.DB.QueryRowContext(ctx, query, provider, providerAccountID))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

// LinkAccount привязывает внешнюю учётную запись провайдера к пользователю.
// Повторная привязка той же пары provider/provider_account_id игнорируется.
func (s *Storage) LinkAccount(ctx context.Context, userUID, provider, providerAccountID string) error {
	const op = "storage.LinkAccount"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO oauth_accounts (user_uid, provider, provider_account_id)
			  VALUES ($1, $2, $3)
			  ON CONFLICT (provider, provider_account_id) DO NOTHING`
	if _, err := s.DB.ExecContext(ctx, query, userUID, provider, providerAccountID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
