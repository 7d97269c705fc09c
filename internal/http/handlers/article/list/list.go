// Package list реализует HTTP-обработчик выборки статей с фильтрами.
//
// Публичная ручка всегда ограничена статусом published; полная выборка
// по любому статусу доступна редакции.
package list

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

// Service описывает интерфейс бизнес-логики выборки статей.
type Service interface {
	List(ctx context.Context, filter models.ArticleFilter) ([]*models.Article, error)
}

// Handler обрабатывает HTTP-запросы выборки статей.
type Handler struct {
	log     *slog.Logger
	service Service

	// publicOnly принудительно ограничивает выборку опубликованными статьями.
	publicOnly bool
}

// New создает новый экземпляр Handler для редакционной выборки.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// NewPublic создает Handler публичной ленты: только published.
func NewPublic(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service, publicOnly: true}
}

// ServeHTTP godoc
// @Summary Список статей
// @Description Возвращает страницу статей по фильтрам статуса, рубрики, тега и автора.
// @Tags Articles
// @Produce  json
// @Param status query string false "Статус статьи"
// @Param category_id query int false "ID рубрики"
// @Param tag query string false "Слаг тега"
// @Param author query string false "UID автора"
// @Param limit query int false "Размер страницы"
// @Param offset query int false "Смещение"
// @Success 200 {object} response.Response "Список статей"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /articles [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.article.list"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	filter := h.buildFilter(r)
	res, err := h.service.List(r.Context(), filter)
	if err != nil {
		log.Error("failed to list articles", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not list articles"))
		return
	}

	log.Info("articles listed", slog.Int("count", len(res)))
	render.JSON(w, r, response.OKWithData("articles", map[string]any{
		"count":    len(res),
		"articles": res,
	}))
}

func (h *Handler) buildFilter(r *http.Request) models.ArticleFilter {
	q := r.URL.Query()

	limit, err := strconv.Atoi(q.Get("limit"))
	if err != nil || limit <= 0 || limit > 100 {
		limit = 10
	}
	offset, err := strconv.Atoi(q.Get("offset"))
	if err != nil || offset < 0 {
		offset = 0
	}

	filter := models.ArticleFilter{
		Status: q.Get("status"),
		Limit:  limit,
		Offset: offset,
	}
	if h.publicOnly {
		filter.Status = models.ArticlePublished
	}
	if raw := q.Get("category_id"); raw != "" {
		if id, err := strconv.Atoi(raw); err == nil {
			filter.CategoryID = &id
		}
	}
	if tag := q.Get("tag"); tag != "" {
		filter.Tag = &tag
	}
	if author := q.Get("author"); author != "" {
		filter.AuthorUID = &author
	}
	return filter
}
