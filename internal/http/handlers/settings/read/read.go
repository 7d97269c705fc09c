// Package read реализует HTTP-обработчик чтения настроек сайта.
package read

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

// Service описывает интерфейс бизнес-логики чтения настроек.
type Service interface {
	List(ctx context.Context) ([]*models.Setting, error)
}

// Handler обрабатывает HTTP-запросы чтения настроек.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Настройки сайта
// @Description Возвращает все настройки сайта.
// @Tags Settings
// @Security BearerAuth
// @Produce  json
// @Success 200 {object} response.Response "Настройки"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /settings [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.settings.read"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	res, err := h.service.List(r.Context())
	if err != nil {
		log.Error("failed to read settings", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not read settings"))
		return
	}

	log.Info("settings read", slog.Int("count", len(res)))
	render.JSON(w, r, response.OKWithData("settings", map[string]any{
		"settings": res,
	}))
}
