// Package oauthcallback реализует HTTP-обработчик завершения входа через
// внешнего провайдера: код обменивается на профиль, пользователь получает
// пару токенов.
package oauthcallback

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/newsroom-backend/internal/http/response"
	"github.com/magabrotheeeer/newsroom-backend/internal/lib/sl"
	services "github.com/magabrotheeeer/newsroom-backend/internal/services/auth"
	"github.com/magabrotheeeer/newsroom-backend/internal/services/oauth"
)

// Exchanger обменивает authorization code на профиль пользователя.
type Exchanger interface {
	Exchange(ctx context.Context, provider, code string) (services.OAuthProfile, error)
}

// Service описывает интерфейс бизнес-логики входа через провайдера.
type Service interface {
	LoginWithProvider(ctx context.Context, profile services.OAuthProfile) (*services.LoginResult, error)
}

// Handler обрабатывает HTTP-запросы завершения входа через провайдера.
type Handler struct {
	log         *slog.Logger
	exchanger   Exchanger
	authService Service
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, exchanger Exchanger, authService Service) *Handler {
	return &Handler{
		log:         log,
		exchanger:   exchanger,
		authService: authService,
	}
}

// ServeHTTP godoc
// @Summary Завершение входа через внешнего провайдера
// @Description Обменивает код провайдера на профиль и выпускает пару токенов.
// @Tags Auth
// @Produce  json
// @Param provider path string true "Провайдер: google или github"
// @Param code query string true "Authorization code"
// @Param state query string true "Параметр state"
// @Success 200 {object} response.Response "Успешная авторизация"
// @Failure 400 {object} response.ErrorResponse "Некорректный запрос"
// @Failure 403 {object} response.ErrorResponse "Учётная запись не активна"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /auth/oauth/{provider}/callback [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.oauthcallback"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	provider := chi.URLParam(r, "provider")
	code := r.URL.Query().Get("code")
	state := r.URL.Query().Get("state")
	if code == "" || state == "" {
		log.Error("missing code or state")
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("missing code or state"))
		return
	}

	cookie, err := r.Cookie("oauth_state")
	if err != nil || cookie.Value != state {
		log.Error("state mismatch")
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("state mismatch"))
		return
	}

	profile, err := h.exchanger.Exchange(r.Context(), provider, code)
	if err != nil {
		if errors.Is(err, oauth.ErrUnknownProvider) {
			log.Warn("unknown oauth provider", slog.String("provider", provider))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("unknown oauth provider"))
			return
		}
		log.Error("code exchange failed", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("failed to exchange authorization code"))
		return
	}

	result, err := h.authService.LoginWithProvider(r.Context(), profile)
	if err != nil {
		if errors.Is(err, services.ErrAccountNotActive) {
			log.Warn("account is not active", slog.String("provider", provider))
			w.WriteHeader(http.StatusForbidden)
			render.JSON(w, r, response.Error("account is not active"))
			return
		}
		log.Error("oauth login failed", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal error"))
		return
	}

	log.Info("oauth login success",
		slog.String("provider", provider), slog.String("username", result.Username))
	render.JSON(w, r, response.OKWithData("login successful", map[string]any{
		"token":         result.AccessToken,
		"refresh_token": result.RefreshToken,
		"role":          result.Role,
		"username":      result.Username,
	}))
}
