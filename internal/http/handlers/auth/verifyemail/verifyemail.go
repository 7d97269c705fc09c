// Package verifyemail реализует HTTP-обработчик подтверждения адреса почты
// по одноразовому коду из письма.
package verifyemail

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/newsroom-backend/internal/http/response"
	"github.com/magabrotheeeer/newsroom-backend/internal/lib/sl"
	services "github.com/magabrotheeeer/newsroom-backend/internal/services/auth"
)

// Request — структура входных данных для подтверждения почты.
type Request struct {
	Token string `json:"token" validate:"required"`
}

// Service описывает интерфейс бизнес-логики подтверждения почты.
type Service interface {
	VerifyEmail(ctx context.Context, token string) error
}

// Handler обрабатывает HTTP-запросы подтверждения почты.
type Handler struct {
	log         *slog.Logger
	authService Service
	validate    *validator.Validate
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, authService Service) *Handler {
	return &Handler{
		log:         log,
		authService: authService,
		validate:    validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Подтверждение адреса почты
// @Description Активирует учётную запись по коду из письма.
// @Tags Auth
// @Accept  json
// @Produce  json
// @Param request body Request true "Код подтверждения"
// @Success 200 {object} response.Response "Почта подтверждена"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 409 {object} response.ErrorResponse "Почта уже подтверждена"
// @Failure 410 {object} response.ErrorResponse "Код истёк"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /auth/verify-email [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.verifyemail"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req Request
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

	if err := h.authService.VerifyEmail(r.Context(), req.Token); err != nil {
		switch {
		case errors.Is(err, services.ErrTokenExpired):
			log.Warn("verification token expired")
			w.WriteHeader(http.StatusGone)
			render.JSON(w, r, response.Error("verification code expired"))
		case errors.Is(err, services.ErrTokenInvalid):
			log.Warn("verification token invalid")
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("invalid verification code"))
		case errors.Is(err, services.ErrAlreadyVerified):
			log.Warn("email already verified")
			w.WriteHeader(http.StatusConflict)
			render.JSON(w, r, response.Error("email already verified"))
		default:
			log.Error("email verification failed", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("internal error"))
		}
		return
	}

	log.Info("email verified")
	render.JSON(w, r, response.OK("email verified, account activated"))
}
