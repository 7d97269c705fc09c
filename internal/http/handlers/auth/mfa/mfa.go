// Package mfa реализует HTTP-обработчик подтверждения входа одноразовым кодом.
package mfa

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

// Request — структура входных данных для подтверждения MFA.
type Request struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Code     string `json:"code" validate:"required,numeric,len=6"`
}

// Service описывает интерфейс бизнес-логики подтверждения MFA.
type Service interface {
	ConfirmMfa(ctx context.Context, username, code string) (*services.LoginResult, error)
}

// Handler обрабатывает HTTP-запросы подтверждения MFA.
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
// @Summary Подтверждение входа кодом MFA
// @Description Завершает вход пользователя с включённой MFA по коду из письма.
// @Tags Auth
// @Accept  json
// @Produce  json
// @Param request body Request true "Имя пользователя и код"
// @Success 200 {object} response.Response "Успешная авторизация"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} response.ErrorResponse "Неверный или истёкший код"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /auth/mfa [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.mfa"

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

	result, err := h.authService.ConfirmMfa(r.Context(), req.Username, req.Code)
	if err != nil {
		if errors.Is(err, services.ErrInvalidMfaCode) {
			log.Warn("invalid mfa code", slog.String("username", req.Username))
			w.WriteHeader(http.StatusUnauthorized)
			render.JSON(w, r, response.Error("invalid or expired mfa code"))
			return
		}
		log.Error("mfa confirmation failed", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal error"))
		return
	}

	log.Info("mfa confirmed", slog.String("username", req.Username))
	render.JSON(w, r, response.OKWithData("login successful", map[string]any{
		"token":         result.AccessToken,
		"refresh_token": result.RefreshToken,
		"role":          result.Role,
		"username":      result.Username,
	}))
}
