// Package remove реализует HTTP-обработчик удаления рубрики.
//
// Рубрика с привязанными статьями удалению не подлежит.
package remove

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/newsroom-backend/internal/http/response"
	"github.com/magabrotheeeer/newsroom-backend/internal/lib/sl"
	taxonomysvc "github.com/magabrotheeeer/newsroom-backend/internal/services/taxonomy"
)

// Service описывает интерфейс бизнес-логики удаления рубрики.
type Service interface {
	RemoveCategory(ctx context.Context, id int) error
}

// Handler обрабатывает HTTP-запросы удаления рубрики.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Удаление рубрики
// @Description Удаляет рубрику без привязанных статей.
// @Tags Taxonomy
// @Security BearerAuth
// @Produce  json
// @Param id path int true "ID рубрики"
// @Success 200 {object} response.Response "Рубрика удалена"
// @Failure 400 {object} response.ErrorResponse "Некорректный запрос"
// @Failure 404 {object} response.ErrorResponse "Рубрика не найдена"
// @Failure 409 {object} response.ErrorResponse "К рубрике привязаны статьи"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /categories/{id} [delete]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.category.remove"

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

	if err := h.service.RemoveCategory(r.Context(), id); err != nil {
		switch {
		case errors.Is(err, taxonomysvc.ErrCategoryNotFound):
			log.Warn("category not found", slog.Int("id", id))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("category not found"))
		case errors.Is(err, taxonomysvc.ErrCategoryInUse):
			log.Warn("category has articles attached", slog.Int("id", id))
			w.WriteHeader(http.StatusConflict)
			render.JSON(w, r, response.Error("category has articles attached"))
		default:
			log.Error("failed to remove category", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not remove category"))
		}
		return
	}

	log.Info("category removed", slog.Int("id", id))
	render.JSON(w, r, response.OK("category removed"))
}
