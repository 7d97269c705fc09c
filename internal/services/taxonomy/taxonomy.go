// Package taxonomy реализует бизнес-логику рубрик и тегов.
package taxonomy

import (
	"context"
	"errors"
	"fmt"

	"github.com/magabrotheeeer/newsroom-backend/internal/lib/slug"
	"github.com/magabrotheeeer/newsroom-backend/internal/models"
)

// Ошибки уровня бизнес-логики таксономии.
var (
	ErrCategoryNotFound = errors.New("category not found")
	ErrCategoryInUse    = errors.New("category has articles attached")
	ErrTagNotFound      = errors.New("tag not found")
)

// Repository описывает контракт хранилища рубрик и тегов.
type Repository interface {
	CreateCategory(ctx context.Context, category models.Category) (int, error)
	ListCategories(ctx context.Context) ([]*models.Category, error)
	UpdateCategory(ctx context.Context, category models.Category, id int) (int, error)
	CountArticlesInCategory(ctx context.Context, id int) (int, error)
	RemoveCategory(ctx context.Context, id int) (int, error)
	CreateTag(ctx context.Context, tag models.Tag) (int, error)
	ListTags(ctx context.Context) ([]*models.Tag, error)
	RemoveTag(ctx context.Context, id int) (int, error)
}

// Service инкапсулирует бизнес-логику рубрик и тегов.
type Service struct {
	repo Repository
}

// New создает новый экземпляр Service.
func New(repo Repository) *Service {
	return &Service{repo: repo}
}

// CreateCategory добавляет рубрику, выводя слаг из названия.
func (s *Service) CreateCategory(ctx context.Context, dummy models.DummyCategory) (int, error) {
	const op = "taxonomy.CreateCategory"
	id, err := s.repo.CreateCategory(ctx, models.Category{
		Name:        dummy.Name,
		Slug:        slug.Make(dummy.Name),
		Description: dummy.Description,
	})
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return id, nil
}

// ListCategories возвращает все рубрики.
func (s *Service) ListCategories(ctx context.Context) ([]*models.Category, error) {
	const op = "taxonomy.ListCategories"
	result, err := s.repo.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// UpdateCategory обновляет рубрику по ID.
func (s *Service) UpdateCategory(ctx context.Context, id int, dummy models.DummyCategory) error {
	const op = "taxonomy.UpdateCategory"
	count, err := s.repo.UpdateCategory(ctx, models.Category{
		Name:        dummy.Name,
		Slug:        slug.Make(dummy.Name),
		Description: dummy.Description,
	}, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if count == 0 {
		return ErrCategoryNotFound
	}
	return nil
}

// RemoveCategory удаляет рубрику. Рубрика с привязанными статьями
// удалению не подлежит.
func (s *Service) RemoveCategory(ctx context.Context, id int) error {
	const op = "taxonomy.RemoveCategory"

	attached, err := s.repo.CountArticlesInCategory(ctx, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if attached > 0 {
		return ErrCategoryInUse
	}
	count, err := s.repo.RemoveCategory(ctx, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if count == 0 {
		return ErrCategoryNotFound
	}
	return nil
}

// CreateTag добавляет тег; существующий тег возвращает свой ID.
func (s *Service) CreateTag(ctx context.Context, dummy models.DummyTag) (int, error) {
	const op = "taxonomy.CreateTag"
	id, err := s.repo.CreateTag(ctx, models.Tag{
		Name: dummy.Name,
		Slug: slug.Make(dummy.Name),
	})
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return id, nil
}

// ListTags возвращает все теги.
func (s *Service) ListTags(ctx context.Context) ([]*models.Tag, error) {
	const op = "taxonomy.ListTags"
	result, err := s.repo.ListTags(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// RemoveTag удаляет тег вместе с привязками к статьям.
func (s *Service) RemoveTag(ctx context.Context, id int) error {
	const op = "taxonomy.RemoveTag"
	count, err := s.repo.RemoveTag(ctx, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if count == 0 {
		return ErrTagNotFound
	}
	return nil
}
