// Package user реализует административные операции над учётными записями:
// просмотр списка, смену роли и статуса.
package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/magabrotheeeer/newsroom-backend/internal/models"
)

// ErrUserNotFound возвращается, когда учётная запись не найдена.
var ErrUserNotFound = errors.New("user not found")

// ErrSelfDemotion возвращается при попытке администратора понизить
// или заблокировать собственную учётную запись.
var ErrSelfDemotion = errors.New("cannot change own role or status")

// Repository описывает контракт хранилища учётных записей
// для административных операций.
type Repository interface {
	ListUsers(ctx context.Context, limit, offset int) ([]*models.User, error)
	GetUser(ctx context.Context, userUID string) (*models.User, error)
	UpdateUserAdmin(ctx context.Context, userUID, role, status string) error
}

// Service инкапсулирует административную логику учётных записей.
type Service struct {
	repo Repository
}

// New создает новый экземпляр Service.
func New(repo Repository) *Service {
	return &Service{repo: repo}
}

// List возвращает страницу учётных записей.
func (s *Service) List(ctx context.Context, limit, offset int) ([]*models.User, error) {
	const op = "user.List"
	result, err := s.repo.ListUsers(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// Update меняет роль и/или статус учётной записи. Администратор
// не может менять собственную запись, чтобы не остаться без доступа.
func (s *Service) Update(ctx context.Context, userUID, actorUID string, update models.DummyUserUpdate) error {
	const op = "user.Update"

	if userUID == actorUID {
		return ErrSelfDemotion
	}
	if _, err := s.repo.GetUser(ctx, userUID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrUserNotFound
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := s.repo.UpdateUserAdmin(ctx, userUID, update.Role, update.Status); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrUserNotFound
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
