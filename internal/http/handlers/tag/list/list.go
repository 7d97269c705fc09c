// Package list реализует HTTP-обработчик списка тегов.
package list

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/newsroom-backend/internal/http/response"
	"github.com/magabrotheeeer/newsroom-backend/internal/lib/sl"
	"github.com/magabrotheeeer/newsroom-backend/internal/models"
)

// Service описывает интерфейс бизнес-логики списка тегов.
type Service interface {
	ListTags(ctx context.Context) ([]*models.Tag, error)
}

// Handler обрабатывает HTTP-запросы списка тегов.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Список тегов
// @Description Возвращает все теги по алфавиту.
// @Tags Taxonomy
// @Produce  json
// @Success 200 {object} response.Response "Список тегов"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /tags [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.tag.list"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	res, err := h.service.ListTags(r.Context())
	if err != nil {
		log.Error("failed to list tags", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not list tags"))
		return
	}

	log.Info("tags listed", slog.Int("count", len(res)))
	render.JSON(w, r, response.OKWithData("tags", map[string]any{
		"count": len(res),
		"tags":  res,
	}))
}
