// Package settings реализует хранение настроек сайта в виде пар ключ-значение.
package settings

import (
	"context"
	"fmt"

	"github.com/magabrotheeeer/newsroom-backend/internal/models"
)

// Repository описывает контракт хранилища настроек.
type Repository interface {
	ListSettings(ctx context.Context) ([]*models.Setting, error)
	UpsertSettings(ctx context.Context, settings map[string]string) error
}

// Service инкапсулирует бизнес-логику настроек сайта.
type Service struct {
	repo Repository
}

// New создает новый экземпляр Service.
func New(repo Repository) *Service {
	return &Service{repo: repo}
}

// List возвращает все настройки.
func (s *Service) List(ctx context.Context) ([]*models.Setting, error) {
	const op = "settings.List"
	result, err := s.repo.ListSettings(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// Update сохраняет набор настроек одной операцией.
func (s *Service) Update(ctx context.Context, values map[string]string) error {
	const op = "settings.Update"
	if err := s.repo.UpsertSettings(ctx, values); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
