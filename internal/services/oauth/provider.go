// Package oauth реализует обмен authorization code на профиль пользователя
// у внешних провайдеров (Google, GitHub) через протокол OAuth 2.0.
package oauth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"golang.org/x/oauth2"

	"github.com/magabrotheeeer/newsroom-backend/internal/config"
	services "github.com/magabrotheeeer/newsroom-backend/internal/services/auth"
)

// Поддерживаемые провайдеры.
const (
	ProviderGoogle = "google"
	ProviderGithub = "github"
)

// ErrUnknownProvider возвращается для провайдера, который не настроен.
var ErrUnknownProvider = errors.New("unknown oauth provider")

var googleEndpoint = oauth2.Endpoint{
	AuthURL:  "https://accounts.google.com/o/oauth2/auth",
	TokenURL: "https://oauth2.googleapis.com/token",
}

var githubEndpoint = oauth2.Endpoint{
	AuthURL:  "https://github.com/login/oauth/authorize",
	TokenURL: "https://github.com/login/oauth/access_token",
}

// Exchanger обменивает код провайдера на профиль пользователя.
type Exchanger struct {
	configs map[string]*oauth2.Config
}

// NewExchanger собирает конфигурации провайдеров из настроек приложения.
func NewExchanger(cfg config.OAuth) *Exchanger {
	return &Exchanger{
		configs: map[string]*oauth2.Config{
			ProviderGoogle: {
				ClientID:     cfg.GoogleClientID,
				ClientSecret: cfg.GoogleClientSecret,
				RedirectURL:  cfg.RedirectBaseURL + "/auth/oauth/google/callback",
				Scopes:       []string{"openid", "email", "profile"},
				Endpoint:     googleEndpoint,
			},
			ProviderGithub: {
				ClientID:     cfg.GithubClientID,
				ClientSecret: cfg.GithubClientSecret,
				RedirectURL:  cfg.RedirectBaseURL + "/auth/oauth/github/callback",
				Scopes:       []string{"read:user", "user:email"},
				Endpoint:     githubEndpoint,
			},
		},
	}
}

// AuthURL возвращает адрес страницы согласия провайдера.
func (e *Exchanger) AuthURL(provider, state string) (string, error) {
	conf, ok := e.configs[provider]
	if !ok {
		return "", ErrUnknownProvider
	}
	return conf.AuthCodeURL(state), nil
}

// Exchange обменивает authorization code на токен провайдера
// и запрашивает профиль пользователя.
func (e *Exchanger) Exchange(ctx context.Context, provider, code string) (services.OAuthProfile, error) {
	const op = "oauth.Exchange"

	conf, ok := e.configs[provider]
	if !ok {
		return services.OAuthProfile{}, ErrUnknownProvider
	}
	token, err := conf.Exchange(ctx, code)
	if err != nil {
		return services.OAuthProfile{}, fmt.Errorf("%s: %w", op, err)
	}

	client := conf.Client(ctx, token)
	switch provider {
	case ProviderGoogle:
		return fetchGoogleProfile(ctx, client)
	case ProviderGithub:
		return fetchGithubProfile(ctx, client)
	}
	return services.OAuthProfile{}, ErrUnknownProvider
}

func fetchGoogleProfile(ctx context.Context, client *http.Client) (services.OAuthProfile, error) {
	const op = "oauth.fetchGoogleProfile"

	var payload struct {
		Sub   string `json:"sub"`
		Email string `json:"email"`
		Name  string `json:"name"`
	}
	if err := getJSON(ctx, client, "https://www.googleapis.com/oauth2/v3/userinfo", &payload); err != nil {
		return services.OAuthProfile{}, fmt.Errorf("%s: %w", op, err)
	}
	return services.OAuthProfile{
		Provider:  ProviderGoogle,
		AccountID: payload.Sub,
		Email:     payload.Email,
		Name:      payload.Name,
	}, nil
}

func fetchGithubProfile(ctx context.Context, client *http.Client) (services.OAuthProfile, error) {
	const op = "oauth.fetchGithubProfile"

	var payload struct {
		ID    int64  `json:"id"`
		Login string `json:"login"`
		Name  string `json:"name"`
		Email string `json:"email"`
	}
	if err := getJSON(ctx, client, "https://api.github.com/user", &payload); err != nil {
		return services.OAuthProfile{}, fmt.Errorf("%s: %w", op, err)
	}
	name := payload.Name
	if name == "" {
		name = payload.Login
	}
	email := payload.Email
	if email == "" {
		// GitHub не отдаёт скрытый адрес в профиле, нужен отдельный запрос.
		email, _ = fetchGithubPrimaryEmail(ctx, client)
	}
	return services.OAuthProfile{
		Provider:  ProviderGithub,
		AccountID: strconv.FormatInt(payload.ID, 10),
		Email:     email,
		Name:      name,
	}, nil
}

func fetchGithubPrimaryEmail(ctx context.Context, client *http.Client) (string, error) {
	var emails []struct {
		Email   string `json:"email"`
		Primary bool   `json:"primary"`
	}
	if err := getJSON(ctx, client, "https://api.github.com/user/emails", &emails); err != nil {
		return "", err
	}
	for _, e := range emails {
		if e.Primary {
			return e.Email, nil
		}
	}
	if len(emails) > 0 {
		return emails[0].Email, nil
	}
	return "", errors.New("no email in github profile")
}

func getJSON(ctx context.Context, client *http.Client, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d from %s", resp.StatusCode, url)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
