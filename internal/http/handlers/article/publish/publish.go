// Package publish реализует HTTP-обработчик публикации статьи.
//
// Публикация переводит статью в статус published, сбрасывает кеш
// и ставит в очередь уведомление подписчикам.
package publish

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/newsroom-backend/internal/http/middlewarectx"
	"github.com/magabrotheeeer/newsroom-backend/internal/http/response"
	"github.com/magabrotheeeer/newsroom-backend/internal/lib/sl"
	articlesvc "github.com/magabrotheeeer/newsroom-backend/internal/services/article"
)

// Service описывает интерфейс бизнес-логики публикации статьи.
type Service interface {
	Publish(ctx context.Context, id int, actorUID, actorRole string) error
}

// Handler обрабатывает HTTP-запросы публикации статьи.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Публикация статьи
// @Description Переводит статью в статус published и уведомляет подписчиков.
// @Tags Articles
// @Security BearerAuth
// @Produce  json
// @Param id path int true "ID статьи"
// @Success 200 {object} response.Response "Статья опубликована"
// @Failure 400 {object} response.ErrorResponse "Некорректный запрос"
// @Failure 403 {object} response.ErrorResponse "Нет прав на публикацию"
// @Failure 404 {object} response.ErrorResponse "Статья не найдена"
// @Failure 409 {object} response.ErrorResponse "Статья уже опубликована"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /articles/{id}/publish [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.article.publish"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		log.Error("failed to decode id from url", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("failed to decode id from url"))
		return
	}

	actorUID, _ := r.Context().Value(middlewarectx.UserUID).(string)
	actorRole, _ := r.Context().Value(middlewarectx.Role).(string)

	if err := h.service.Publish(r.Context(), id, actorUID, actorRole); err != nil {
		switch {
		case errors.Is(err, articlesvc.ErrArticleNotFound):
			log.Warn("article not found", slog.Int("id", id))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("article not found"))
		case errors.Is(err, articlesvc.ErrAlreadyPublished):
			log.Warn("article already published", slog.Int("id", id))
			w.WriteHeader(http.StatusConflict)
			render.JSON(w, r, response.Error("article already published"))
		case errors.Is(err, articlesvc.ErrNotAuthor):
			log.Warn("access denied", slog.Int("id", id))
			w.WriteHeader(http.StatusForbidden)
			render.JSON(w, r, response.Error("access denied"))
		default:
			log.Error("failed to publish article", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not publish article"))
		}
		return
	}

	log.Info("article published", slog.Int("id", id))
	render.JSON(w, r, response.OK("article published"))
}
