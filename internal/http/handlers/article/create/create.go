// Package create реализует HTTP-обработчик создания статьи.
//
// Handler декодирует JSON, валидирует поля и делегирует операцию
// бизнес-логике. Новая статья создаётся в статусе draft от имени
// аутентифицированного пользователя.
package create

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/newsroom-backend/internal/http/middlewarectx"
	"github.com/magabrotheeeer/newsroom-backend/internal/http/response"
	"github.com/magabrotheeeer/newsroom-backend/internal/lib/sl"
	"github.com/magabrotheeeer/newsroom-backend/internal/models"
)

// Service описывает интерфейс бизнес-логики создания статьи.
type Service interface {
	Create(ctx context.Context, dummy models.DummyArticle, authorUID string) (int, error)
}

// Handler обрабатывает HTTP-запросы создания статьи.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Создание статьи
// @Description Создаёт статью в статусе draft. Слаг выводится из заголовка.
// @Tags Articles
// @Security BearerAuth
// @Accept  json
// @Produce  json
// @Param request body models.DummyArticle true "Данные статьи"
// @Success 201 {object} response.Response "Статья создана"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} response.ErrorResponse "Не авторизован"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /articles [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.article.create"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.DummyArticle
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	authorUID, ok := r.Context().Value(middlewarectx.UserUID).(string)
	if !ok || authorUID == "" {
		log.Error("user uid not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	id, err := h.service.Create(r.Context(), req, authorUID)
	if err != nil {
		log.Error("failed to create article", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not create article"))
		return
	}

	log.Info("article created", slog.Int("id", id))
	w.WriteHeader(http.StatusCreated)
	render.JSON(w, r, response.OKWithData("article created", map[string]any{
		"id": id,
	}))
}
