// Package media реализует учёт файлов медиатеки.
package media

import (
	"context"
	"errors"
	"fmt"

	"github.com/magabrotheeeer/newsroom-backend/internal/models"
)

// ErrMediaNotFound возвращается, когда запись медиатеки не найдена.
var ErrMediaNotFound = errors.New("media not found")

// Repository описывает контракт хранилища медиатеки.
type Repository interface {
	CreateMedia(ctx context.Context, media models.Media) (int, error)
	ListMedia(ctx context.Context, limit, offset int) ([]*models.Media, error)
	RemoveMedia(ctx context.Context, id int) (int, error)
}

// Service инкапсулирует бизнес-логику медиатеки.
type Service struct {
	repo Repository
}

// New создает новый экземпляр Service.
func New(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create регистрирует загруженный файл и возвращает ID записи.
func (s *Service) Create(ctx context.Context, dummy models.DummyMedia, uploaderUID string) (int, error) {
	const op = "media.Create"
	id, err := s.repo.CreateMedia(ctx, models.Media{
		FileName:    dummy.FileName,
		MimeType:    dummy.MimeType,
		SizeBytes:   dummy.SizeBytes,
		URL:         dummy.URL,
		UploaderUID: uploaderUID,
	})
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return id, nil
}

// List возвращает страницу записей медиатеки.
func (s *Service) List(ctx context.Context, limit, offset int) ([]*models.Media, error) {
	const op = "media.List"
	result, err := s.repo.ListMedia(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// Remove удаляет запись медиатеки.
func (s *Service) Remove(ctx context.Context, id int) error {
	const op = "media.Remove"
	count, err := s.repo.RemoveMedia(ctx, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if count == 0 {
		return ErrMediaNotFound
	}
	return nil
}
