package repository

import (
	"context"
	"fmt"

	"github.com/magabrotheeeer/newsroom-backend/internal/models"
)

// CreateCategory добавляет рубрику и возвращает её ID.
func (s *Storage) CreateCategory(ctx context.Context, category models.Category) (int, error) {
	const op = "storage.CreateCategory"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var id int
	query := `INSERT INTO categories (name, slug, description)
			  VALUES ($1, $2, $3)
			  RETURNING id;`
	if err := s.DB.QueryRowContext(ctx, query,
		category.Name, category.Slug, category.Description).Scan(&id); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return id, nil
}

// ListCategories возвращает все рубрики по алфавиту.
func (s *Storage) ListCategories(ctx context.Context) ([]*models.Category, error) {
	const op = "storage.ListCategories"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	rows, err := s.DB.QueryContext(ctx,
		`SELECT id, name, slug, description, created_at
		 FROM categories
		 ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()
	var result []*models.Category
	for rows.Next() {
		c := &models.Category{}
		if err = rows.Scan(&c.ID, &c.Name, &c.Slug, &c.Description, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, c)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// UpdateCategory обновляет рубрику, возвращает количество обновлённых записей.
func (s *Storage) UpdateCategory(ctx context.Context, category models.Category, id int) (int, error) {
	const op = "storage.UpdateCategory"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE categories
			  SET name = $1, slug = $2, description = $3
			  WHERE id = $4`
	res, err := s.DB.ExecContext(ctx, query, category.Name, category.Slug, category.Description, id)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	count, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(count), nil
}

// CountArticlesInCategory возвращает число статей в рубрике.
// Рубрика с привязанными статьями не может быть удалена.
func (s *Storage) CountArticlesInCategory(ctx context.Context, id int) (int, error) {
	const op = "storage.CountArticlesInCategory"
	var count int
	if err := s.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM articles WHERE category_id = $1`, id).Scan(&count); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return count, nil
}

// RemoveCategory удаляет рубрику, возвращает количество удалённых записей.
func (s *Storage) RemoveCategory(ctx context.Context, id int) (int, error) {
	const op = "storage.RemoveCategory"
	res, err := s.DB.ExecContext(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	count, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(count), nil
}

// CreateTag добавляет тег и возвращает его ID. Существующий тег с тем же
// именем возвращает свой ID без изменений.
func (s *Storage) CreateTag(ctx context.Context, tag models.Tag) (int, error) {
	const op = "storage.CreateTag"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var id int
	query := `INSERT INTO tags (name, slug)
			  VALUES ($1, $2)
			  ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
			  RETURNING id;`
	if err := s.DB.QueryRowContext(ctx, query, tag.Name, tag.Slug).Scan(&id); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return id, nil
}

// ListTags возвращает все теги по алфавиту.
func (s *Storage) ListTags(ctx context.Context) ([]*models.Tag, error) {
	const op = "storage.ListTags"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	rows, err := s.DB.QueryContext(ctx,
		`SELECT id, name, slug, created_at
		 FROM tags
		 ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()
	var result []*models.Tag
	for rows.Next() {
		t := &models.Tag{}
		if err = rows.Scan(&t.ID, &t.Name, &t.Slug, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, t)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// RemoveTag удаляет тег; привязки к статьям удаляются каскадно.
func (s *Storage) RemoveTag(ctx context.Context, id int) (int, error) {
	const op = "storage.RemoveTag"
	res, err := s.DB.ExecContext(ctx, `DELETE FROM tags WHERE id = $1`, id)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	count, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(count), nil
}

// EnsureTags приводит список имён тегов к списку их ID,
// создавая отсутствующие теги.
func (s *Storage) EnsureTags(ctx context.Context, tags []models.Tag) ([]int, error) {
	const op = "storage.EnsureTags"
	ids := make([]int, 0, len(tags))
	for _, tag := range tags {
		id, err := s.CreateTag(ctx, tag)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
