// Package remove реализует HTTP-обработчик удаления тега.
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

// Service описывает интерфейс бизнес-логики удаления тега.
type Service interface {
	RemoveTag(ctx context.Context, id int) error
}

// Handler обрабатывает HTTP-запросы удаления тега.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Удаление тега
// @Description Удаляет тег; привязки к статьям удаляются каскадно.
// @Tags Taxonomy
// @Security BearerAuth
// @Produce  json
// @Param id path int true "ID тега"
// @Success 200 {object} response.Response "Тег удалён"
// @Failure 400 {object} response.ErrorResponse "Некорректный запрос"
// @Failure 404 {object} response.ErrorResponse "Тег не найден"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /tags/{id} [delete]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.tag.remove"

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

	if err := h.service.RemoveTag(r.Context(), id); err != nil {
		if errors.Is(err, taxonomysvc.ErrTagNotFound) {
			log.Warn("tag not found", slog.Int("id", id))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("tag not found"))
			return
		}
		log.Error("failed to remove tag", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not remove tag"))
		return
	}

	log.Info("tag removed", slog.Int("id", id))
	render.JSON(w, r, response.OK("tag removed"))
}
