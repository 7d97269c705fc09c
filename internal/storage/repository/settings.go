package repository

import (
	"context"
	"fmt"

	"github.com/magabrotheeeer/newsroom-backend/internal/models"
)

// ListSettings возвращает все настройки сайта.
func (s *Storage) ListSettings(ctx context.Context) ([]*models.Setting, error) {
	const op = "storage.ListSettings"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	rows, err := s.DB.QueryContext(ctx,
		`SELECT key, value, updated_at FROM settings ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()
	var result []*models.Setting
	for rows.Next() {
		st := &models.Setting{}
		if err = rows.Scan(&st.Key, &st.Value, &st.UpdatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, st)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// UpsertSettings сохраняет набор настроек одной транзакцией.
func (s *Storage) UpsertSettings(ctx context.Context, settings map[string]string) error {
	const op = "storage.UpsertSettings"
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

	for key, value := range settings {
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO settings (key, value, updated_at)
			 VALUES ($1, $2, now())
			 ON CONFLICT (key)
			 DO UPDATE SET value = EXCLUDED.value, updated_at = now()`,
			key, value); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
