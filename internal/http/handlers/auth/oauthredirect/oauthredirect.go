// Package oauthredirect реализует HTTP-обработчик, перенаправляющий
// пользователя на страницу согласия внешнего провайдера.
package oauthredirect

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/newsroom-backend/internal/http/response"
	"github.com/magabrotheeeer/newsroom-backend/internal/lib/sl"
	"github.com/magabrotheeeer/newsroom-backend/internal/services/oauth"
)

// Exchanger описывает интерфейс построения ссылки на страницу согласия.
type Exchanger interface {
	AuthURL(provider, state string) (string, error)
}

// Handler обрабатывает HTTP-запросы начала входа через провайдера.
type Handler struct {
	log       *slog.Logger
	exchanger Exchanger
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, exchanger Exchanger) *Handler {
	return &Handler{log: log, exchanger: exchanger}
}

// ServeHTTP godoc
// @Summary Вход через внешнего провайдера
// @Description Перенаправляет на страницу согласия Google или GitHub.
// @Tags Auth
// @Produce  json
// @Param provider path string true "Провайдер: google или github"
// @Success 307 "Перенаправление на провайдера"
// @Failure 400 {object} response.ErrorResponse "Неизвестный провайдер"
// @Router /auth/oauth/{provider} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.oauthredirect"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	provider := chi.URLParam(r, "provider")
	state, err := newState()
	if err != nil {
		log.Error("failed to generate state", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal error"))
		return
	}

	url, err := h.exchanger.AuthURL(provider, state)
	if err != nil {
		if errors.Is(err, oauth.ErrUnknownProvider) {
			log.Warn("unknown oauth provider", slog.String("provider", provider))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("unknown oauth provider"))
			return
		}
		log.Error("failed to build auth url", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal error"))
		return
	}

	// State уходит в cookie и сверяется в callback-обработчике.
	http.SetCookie(w, &http.Cookie{
		Name:     "oauth_state",
		Value:    state,
		Path:     "/",
		Expires:  time.Now().Add(10 * time.Minute),
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, url, http.StatusTemporaryRedirect)
}

func newState() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
