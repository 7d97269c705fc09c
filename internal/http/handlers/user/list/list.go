// Package list реализует HTTP-обработчик списка учётных записей
// для администраторов.
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

// Service описывает интерфейс бизнес-логики списка учётных записей.
type Service interface {
	List(ctx context.Context, limit, offset int) ([]*models.User, error)
}

// Handler обрабатывает HTTP-запросы списка учётных записей.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// userView — представление учётной записи в ответе администратору.
// Хэш пароля наружу не отдаётся.
type userView struct {
	UID         string `json:"uid"`
	Email       string `json:"email"`
	Username    string `json:"username"`
	Role        string `json:"role"`
	Status      string `json:"status"`
	MFAEnabled  bool   `json:"mfa_enabled"`
	LastLoginAt any    `json:"last_login_at"`
	CreatedAt   any    `json:"created_at"`
}

// ServeHTTP godoc
// @Summary Список учётных записей
// @Description Возвращает страницу учётных записей, новые — первыми.
// @Tags Users
// @Security BearerAuth
// @Produce  json
// @Param limit query int false "Размер страницы"
// @Param offset query int false "Смещение"
// @Success 200 {object} response.Response "Список учётных записей"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /users [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.user.list"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit <= 0 || limit > 100 {
		limit = 20
	}
	offset, err := strconv.Atoi(r.URL.Query().Get("offset"))
	if err != nil || offset < 0 {
		offset = 0
	}

	res, err := h.service.List(r.Context(), limit, offset)
	if err != nil {
		log.Error("failed to list users", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not list users"))
		return
	}

	views := make([]userView, 0, len(res))
	for _, u := range res {
		views = append(views, userView{
			UID:         u.UID,
			Email:       u.Email,
			Username:    u.Username,
			Role:        u.Role,
			Status:      u.Status,
			MFAEnabled:  u.MFAEnabled,
			LastLoginAt: u.LastLoginAt,
			CreatedAt:   u.CreatedAt,
		})
	}

	log.Info("users listed", slog.Int("count", len(views)))
	render.JSON(w, r, response.OKWithData("users", map[string]any{
		"count": len(views),
		"users": views,
	}))
}
