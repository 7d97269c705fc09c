package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/magabrotheeeer/newsroom-backend/internal/models"
)

// CreateArticle добавляет новую статью вместе с привязкой тегов
// и возвращает её ID.
func (s *Storage) CreateArticle(ctx context.Context, article models.Article, tagIDs []int) (int, error) {
	const op = "storage.CreateArticle"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var id int
	query := `INSERT INTO articles (title, slug, summary, body, status, author_uid, category_id)
			  VALUES ($1, $2, $3, $4, $5, $6, $7)
			  RETURNING id;`
	if err = tx.QueryRowContext(ctx, query,
		article.Title, article.Slug, article.Summary, article.Body,
		article.Status, article.AuthorUID, article.CategoryID).Scan(&id); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	if err = replaceArticleTags(ctx, tx, id, tagIDs); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return id, nil
}

// UpdateArticle обновляет статью и заменяет набор её тегов.
// Возвращает количество обновлённых записей.
func (s *Storage) UpdateArticle(ctx context.Context, article models.Article, id int, tagIDs []int) (int, error) {
	const op = "storage.UpdateArticle"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := `UPDATE articles
			  SET title = $1, slug = $2, summary = $3, body = $4,
			      category_id = $5, updated_at = now()
			  WHERE id = $6`
	res, err := tx.ExecContext(ctx, query,
		article.Title, article.Slug, article.Summary, article.Body,
		article.CategoryID, id)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	count, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	if count == 0 {
		_ = tx.Commit()
		return 0, nil
	}

	if err = replaceArticleTags(ctx, tx, id, tagIDs); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(count), nil
}

// replaceArticleTags заменяет привязки тегов статьи в рамках транзакции.
func replaceArticleTags(ctx context.Context, tx *sql.Tx, articleID int, tagIDs []int) error {
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM article_tags WHERE article_id = $1`, articleID); err != nil {
		return err
	}
	for _, tagID := range tagIDs {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO article_tags (article_id, tag_id) VALUES ($1, $2)
			 ON CONFLICT DO NOTHING`, articleID, tagID); err != nil {
			return err
		}
	}
	return nil
}

const articleColumns = `a.id, a.title, a.slug, a.summary, a.body, a.status,
			      a.author_uid, a.category_id, a.views, a.published_at,
			      a.created_at, a.updated_at`

func scanArticle(row interface{ Scan(...any) error }) (*models.Article, error) {
	a := &models.Article{}
	var publishedAt sql.NullTime
	if err := row.Scan(&a.ID, &a.Title, &a.Slug, &a.Summary, &a.Body, &a.Status,
		&a.AuthorUID, &a.CategoryID, &a.Views, &publishedAt,
		&a.CreatedAt, &a.UpdatedAt); err != nil {
		return nil, err
	}
	if publishedAt.Valid {
		a.PublishedAt = &publishedAt.Time
	}
	return a, nil
}

// ReadArticle возвращает статью по ID вместе с именами тегов.
func (s *Storage) ReadArticle(ctx context.Context, id int) (*models.Article, error) {
	const op = "storage.ReadArticle"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + articleColumns + ` FROM articles a WHERE a.id = $1`
	a, err := scanArticle(s.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if a.Tags, err = s.articleTagNames(ctx, a.ID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return a, nil
}

// ReadArticleBySlug возвращает статью по слагу вместе с именами тегов.
func (s *Storage) ReadArticleBySlug(ctx context.Context, slug string) (*models.Article, error) {
	const op = "storage.ReadArticleBySlug"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + articleColumns + ` FROM articles a WHERE a.slug = $1`
	a, err := scanArticle(s.DB.QueryRowContext(ctx, query, slug))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if a.Tags, err = s.articleTagNames(ctx, a.ID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return a, nil
}

func (s *Storage) articleTagNames(ctx context.Context, articleID int) ([]string, error) {
	rows, err := s.DB.QueryContext(ctx,
		`SELECT t.name FROM tags t
		 JOIN article_tags at ON at.tag_id = t.id
		 WHERE at.article_id = $1
		 ORDER BY t.name`, articleID)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = rows.Close()
	}()
	var names []string
	for rows.Next() {
		var name string
		if err = rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// RemoveArticle удаляет статью по ID и возвращает количество удалённых записей.
func (s *Storage) RemoveArticle(ctx context.Context, id int) (int, error) {
	const op = "storage.RemoveArticle"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	res, err := s.DB.ExecContext(ctx, `DELETE FROM articles WHERE id = $1`, id)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	count, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(count), nil
}

// ListArticles возвращает страницу статей по фильтру, новые — первыми.
func (s *Storage) ListArticles(ctx context.Context, filter models.ArticleFilter) ([]*models.Article, error) {
	const op = "storage.ListArticles"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT DISTINCT ` + articleColumns + `
			  FROM articles a
			  LEFT JOIN article_tags at ON at.article_id = a.id
			  LEFT JOIN tags t ON t.id = at.tag_id
			  WHERE ($1 = '' OR a.status = $1)
			    AND ($2::INT IS NULL OR a.category_id = $2)
			    AND ($3::TEXT IS NULL OR t.slug = $3)
			    AND ($4::UUID IS NULL OR a.author_uid = $4)
			  ORDER BY a.created_at DESC
			  LIMIT $5 OFFSET $6`
	rows, err := s.DB.QueryContext(ctx, query,
		filter.Status, filter.CategoryID, filter.Tag, filter.AuthorUID,
		filter.Limit, filter.Offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()
	var result []*models.Article
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, a)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// PublishArticle переводит статью в published и выставляет published_at.
// Возвращает количество обновлённых записей (0 — статья не найдена
// или уже опубликована).
func (s *Storage) PublishArticle(ctx context.Context, id int, publishedAt time.Time) (int, error) {
	const op = "storage.PublishArticle"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE articles
			  SET status = $2, published_at = $3, updated_at = now()
			  WHERE id = $1 AND status <> $2`
	res, err := s.DB.ExecContext(ctx, query, id, models.ArticlePublished, publishedAt)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	count, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(count), nil
}

// AddArticleViews прибавляет к счётчику просмотров статьи delta.
// Используется при периодическом сбросе счётчиков из Redis.
func (s *Storage) AddArticleViews(ctx context.Context, id int, delta int64) error {
	const op = "storage.AddArticleViews"
	if _, err := s.DB.ExecContext(ctx,
		`UPDATE articles SET views = views + $2 WHERE id = $1`, id, delta); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// TopArticles возвращает опубликованные статьи с наибольшим числом просмотров.
func (s *Storage) TopArticles(ctx context.Context, limit int) ([]*models.Article, error) {
	const op = "storage.TopArticles"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + articleColumns + `
			  FROM articles a
			  WHERE a.status = $1
			  ORDER BY a.views DESC, a.published_at DESC
			  LIMIT $2`
	rows, err := s.DB.QueryContext(ctx, query, models.ArticlePublished, limit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()
	var result []*models.Article
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, a)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
