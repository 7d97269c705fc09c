// Package list реализует HTTP-обработчик списка рубрик.
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

// Service описывает интерфейс бизнес-логики списка рубрик.
type Service interface {
	ListCategories(ctx context.Context) ([]*models.Category, error)
}

// Handler обрабатывает HTTP-запросы списка рубрик.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Список рубрик
// @Description Возвращает все рубрики по алфавиту.
// @Tags Taxonomy
// @Produce  json
// @Success 200 {object} response.Response "Список рубрик"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /categories [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.category.list"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	res, err := h.service.ListCategories(r.Context())
	if err != nil {
		log.Error("failed to list categories", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not list categories"))
		return
	}

	log.Info("categories listed", slog.Int("count", len(res)))
	render.JSON(w, r, response.OKWithData("categories", map[string]any{
		"count":      len(res),
		"categories": res,
	}))
}
