// Package newsroom предоставляет маршруты HTTP-приложения.
package newsroom

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
	"golang.org/x/time/rate"

	analyticstop "github.com/magabrotheeeer/newsroom-backend/internal/http/handlers/analytics/top"
	articlecreate "github.com/magabrotheeeer/newsroom-backend/internal/http/handlers/article/create"
	articlelist "github.com/magabrotheeeer/newsroom-backend/internal/http/handlers/article/list"
	articlepublish "github.com/magabrotheeeer/newsroom-backend/internal/http/handlers/article/publish"
	articleread "github.com/magabrotheeeer/newsroom-backend/internal/http/handlers/article/read"
	articleremove "github.com/magabrotheeeer/newsroom-backend/internal/http/handlers/article/remove"
	articleupdate "github.com/magabrotheeeer/newsroom-backend/internal/http/handlers/article/update"
	"github.com/magabrotheeeer/newsroom-backend/internal/http/handlers/auth/login"
	"github.com/magabrotheeeer/newsroom-backend/internal/http/handlers/auth/logout"
	"github.com/magabrotheeeer/newsroom-backend/internal/http/handlers/auth/mfa"
	"github.com/magabrotheeeer/newsroom-backend/internal/http/handlers/auth/oauthcallback"
	"github.com/magabrotheeeer/newsroom-backend/internal/http/handlers/auth/oauthredirect"
	"github.com/magabrotheeeer/newsroom-backend/internal/http/handlers/auth/refresh"
	"github.com/magabrotheeeer/newsroom-backend/internal/http/handlers/auth/register"
	"github.com/magabrotheeeer/newsroom-backend/internal/http/handlers/auth/resendverification"
	"github.com/magabrotheeeer/newsroom-backend/internal/http/handlers/auth/verifyemail"
	categorycreate "github.com/magabrotheeeer/newsroom-backend/internal/http/handlers/category/create"
	categorylist "github.com/magabrotheeeer/newsroom-backend/internal/http/handlers/category/list"
	categoryremove "github.com/magabrotheeeer/newsroom-backend/internal/http/handlers/category/remove"
	categoryupdate "github.com/magabrotheeeer/newsroom-backend/internal/http/handlers/category/update"
	"github.com/magabrotheeeer/newsroom-backend/internal/http/handlers/health"
	mediacreate "github.com/magabrotheeeer/newsroom-backend/internal/http/handlers/media/create"
	medialist "github.com/magabrotheeeer/newsroom-backend/internal/http/handlers/media/list"
	mediaremove "github.com/magabrotheeeer/newsroom-backend/internal/http/handlers/media/remove"
	settingsread "github.com/magabrotheeeer/newsroom-backend/internal/http/handlers/settings/read"
	settingsupdate "github.com/magabrotheeeer/newsroom-backend/internal/http/handlers/settings/update"
	tagcreate "github.com/magabrotheeeer/newsroom-backend/internal/http/handlers/tag/create"
	taglist "github.com/magabrotheeeer/newsroom-backend/internal/http/handlers/tag/list"
	tagremove "github.com/magabrotheeeer/newsroom-backend/internal/http/handlers/tag/remove"
	userlist "github.com/magabrotheeeer/newsroom-backend/internal/http/handlers/user/list"
	userupdate "github.com/magabrotheeeer/newsroom-backend/internal/http/handlers/user/update"
	"github.com/magabrotheeeer/newsroom-backend/internal/http/middlewarectx"
	"github.com/magabrotheeeer/newsroom-backend/internal/models"
	articlesvc "github.com/magabrotheeeer/newsroom-backend/internal/services/article"
	authsvc "github.com/magabrotheeeer/newsroom-backend/internal/services/auth"
	mediasvc "github.com/magabrotheeeer/newsroom-backend/internal/services/media"
	oauthsvc "github.com/magabrotheeeer/newsroom-backend/internal/services/oauth"
	settingssvc "github.com/magabrotheeeer/newsroom-backend/internal/services/settings"
	taxonomysvc "github.com/magabrotheeeer/newsroom-backend/internal/services/taxonomy"
	usersvc "github.com/magabrotheeeer/newsroom-backend/internal/services/user"
)

// Services — набор бизнес-сервисов, которые используют маршруты.
type Services struct {
	Auth     *authsvc.AuthService
	OAuth    *oauthsvc.Exchanger
	Article  *articlesvc.Service
	Taxonomy *taxonomysvc.Service
	Media    *mediasvc.Service
	Settings *settingssvc.Service
	User     *usersvc.Service
	Health   health.Checker
}

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, s *Services) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)

	loginLimiter := rate.NewLimiter(1, 3)

	r.Route("/api/v1", func(r chi.Router) {
		// Открытые конечные точки
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.RateLimitMiddleware(logger, loginLimiter))
			r.Post("/auth/register", register.New(logger, s.Auth).ServeHTTP)
			r.Post("/auth/login", login.New(logger, s.Auth).ServeHTTP)
			r.Post("/auth/mfa", mfa.New(logger, s.Auth).ServeHTTP)
		})
		r.Post("/auth/refresh", refresh.New(logger, s.Auth).ServeHTTP)
		r.Post("/auth/logout", logout.New(logger, s.Auth).ServeHTTP)
		r.Post("/auth/verify-email", verifyemail.New(logger, s.Auth).ServeHTTP)
		r.Post("/auth/resend-verification", resendverification.New(logger, s.Auth).ServeHTTP)
		r.Get("/auth/oauth/{provider}", oauthredirect.New(logger, s.OAuth).ServeHTTP)
		r.Get("/auth/oauth/{provider}/callback", oauthcallback.New(logger, s.OAuth, s.Auth).ServeHTTP)

		// Публичное чтение
		r.Get("/articles", articlelist.NewPublic(logger, s.Article).ServeHTTP)
		r.Get("/articles/{key}", articleread.New(logger, s.Article).ServeHTTP)
		r.Get("/categories", categorylist.New(logger, s.Taxonomy).ServeHTTP)
		r.Get("/tags", taglist.New(logger, s.Taxonomy).ServeHTTP)
		r.Get("/analytics/top", analyticstop.New(logger, s.Article).ServeHTTP)

		// Редакция: авторы, редакторы и администраторы
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(s.Auth, logger))
			r.Use(middlewarectx.RequireRole(logger,
				models.RoleAdmin, models.RoleEditor, models.RoleAuthor))
			r.Post("/articles", articlecreate.New(logger, s.Article).ServeHTTP)
			r.Put("/articles/{id}", articleupdate.New(logger, s.Article).ServeHTTP)
			r.Delete("/articles/{id}", articleremove.New(logger, s.Article).ServeHTTP)
			r.Post("/articles/{id}/publish", articlepublish.New(logger, s.Article).ServeHTTP)
			r.Get("/editorial/articles", articlelist.New(logger, s.Article).ServeHTTP)
			r.Post("/media", mediacreate.New(logger, s.Media).ServeHTTP)
			r.Get("/media", medialist.New(logger, s.Media).ServeHTTP)
			r.Delete("/media/{id}", mediaremove.New(logger, s.Media).ServeHTTP)
		})

		// Управление таксономией: редакторы и администраторы
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(s.Auth, logger))
			r.Use(middlewarectx.RequireRole(logger, models.RoleAdmin, models.RoleEditor))
			r.Post("/categories", categorycreate.New(logger, s.Taxonomy).ServeHTTP)
			r.Put("/categories/{id}", categoryupdate.New(logger, s.Taxonomy).ServeHTTP)
			r.Delete("/categories/{id}", categoryremove.New(logger, s.Taxonomy).ServeHTTP)
			r.Post("/tags", tagcreate.New(logger, s.Taxonomy).ServeHTTP)
			r.Delete("/tags/{id}", tagremove.New(logger, s.Taxonomy).ServeHTTP)
		})

		// Администрирование
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(s.Auth, logger))
			r.Use(middlewarectx.RequireRole(logger, models.RoleAdmin))
			r.Get("/users", userlist.New(logger, s.User).ServeHTTP)
			r.Put("/users/{uid}", userupdate.New(logger, s.User).ServeHTTP)
			r.Get("/settings", settingsread.New(logger, s.Settings).ServeHTTP)
			r.Put("/settings", settingsupdate.New(logger, s.Settings).ServeHTTP)
		})

		r.Get("/health", health.New(logger, s.Health).ServeHTTP)
	})

	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
