package repository

import (
	"context"
	"fmt"

	"github.com/magabrotheeeer/newsroom-backend/internal/models"
)

// CreateMedia сохраняет метаданные загруженного файла и возвращает ID записи.
func (s *Storage) CreateMedia(ctx context.Context, media models.Media) (int, error) {
	const op = "storage.CreateMedia"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var id int
	query := `INSERT INTO media (file_name, mime_type, size_bytes, url, uploader_uid)
			  VALUES ($1, $2, $3, $4, $5)
			  RETURNING id;`
	if err := s.DB.QueryRowContext(ctx, query,
		media.FileName, media.MimeType, media.SizeBytes, media.URL,
		media.UploaderUID).Scan(&id); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return id, nil
}

// ListMedia возвращает страницу записей медиатеки, новые — первыми.
func (s *Storage) ListMedia(ctx context.Context, limit, offset int) ([]*models.Media, error) {
	const op = "storage.ListMedia"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, file_name, mime_type, size_bytes, url, uploader_uid, created_at
			  FROM media
			  ORDER BY created_at DESC
			  LIMIT $1 OFFSET $2`
	rows, err := s.DB.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()
	var result []*models.Media
	for rows.Next() {
		m := &models.Media{}
		if err = rows.Scan(&m.ID, &m.FileName, &m.MimeType, &m.SizeBytes,
			&m.URL, &m.UploaderUID, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, m)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// RemoveMedia удаляет запись медиатеки, возвращает количество удалённых записей.
func (s *Storage) RemoveMedia(ctx context.Context, id int) (int, error) {
	const op = "storage.RemoveMedia"
	res, err := s.DB.ExecContext(ctx, `DELETE FROM media WHERE id = $1`, id)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	count, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(count), nil
}
