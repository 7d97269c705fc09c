// Package top реализует HTTP-обработчик выборки самых читаемых статей.
package top

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/newsroom-backend/internal/http/response"
	"github.com/magabrotheeeer/newsroom-backend/internal/lib/sl"
	"github.com/magabrotheeeer/newsroom-backend/internal/models"
)

// Service описывает интерфейс бизнес-логики выборки топа статей.
type Service interface {
	Top(ctx context.Context, limit int) ([]*models.Article, error)
}

// Handler обрабатывает HTTP-запросы выборки топа статей.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Самые читаемые статьи
// @Description Возвращает опубликованные статьи с наибольшим числом просмотров.
// @Tags Analytics
// @Produce  json
// @Param limit query int false "Количество статей"
// @Success 200 {object} response.Response "Топ статей"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /analytics/top [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.analytics.top"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit <= 0 || limit > 50 {
		limit = 10
	}

	res, err := h.service.Top(r.Context(), limit)
	if err != nil {
		log.Error("failed to read top articles", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not read top articles"))
		return
	}

	log.Info("top articles read", slog.Int("count", len(res)))
	render.JSON(w, r, response.OKWithData("top articles", map[string]any{
		"count":    len(res),
		"articles": res,
	}))
}
