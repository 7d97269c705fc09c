// Package read реализует HTTP-обработчик публичного чтения статьи.
//
// Статья запрашивается по числовому ID или по слагу; публично видны
// только опубликованные статьи, чтение идёт через кеш с учётом просмотра.
package read

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
	"github.com/magabrotheeeer/newsroom-backend/internal/models"
	articlesvc "github.com/magabrotheeeer/newsroom-backend/internal/services/article"
)

// Service описывает интерфейс бизнес-логики чтения статьи.
type Service interface {
	Read(ctx context.Context, id int) (*models.Article, error)
	ReadBySlug(ctx context.Context, slug string) (*models.Article, error)
}

// Handler обрабатывает HTTP-запросы чтения статьи.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Чтение статьи
// @Description Возвращает опубликованную статью по ID или слагу. Черновики публично недоступны. Просмотр учитывается.
// @Tags Articles
// @Produce  json
// @Param key path string true "ID или слаг статьи"
// @Success 200 {object} response.Response "Статья"
// @Failure 404 {object} response.ErrorResponse "Статья не найдена"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /articles/{key} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.article.read"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	key := chi.URLParam(r, "key")

	var res *models.Article
	var err error
	if id, convErr := strconv.Atoi(key); convErr == nil {
		res, err = h.service.Read(r.Context(), id)
	} else {
		res, err = h.service.ReadBySlug(r.Context(), key)
	}
	if err != nil {
		if errors.Is(err, articlesvc.ErrArticleNotFound) {
			log.Warn("article not found", slog.String("key", key))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("article not found"))
			return
		}
		log.Error("failed to read article", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not read article"))
		return
	}

	log.Info("article read", slog.Int("id", res.ID))
	render.JSON(w, r, response.OKWithData("article", map[string]any{
		"article": res,
	}))
}
