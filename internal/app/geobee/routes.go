// Package geobee собирает HTTP-приложение: маршруты, middleware и зависимости.
package geobee

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/geobee/geobee/internal/config"
	"github.com/geobee/geobee/internal/http/handlers/auth/login"
	"github.com/geobee/geobee/internal/http/handlers/auth/register"
	"github.com/geobee/geobee/internal/http/handlers/country/compare"
	countrylist "github.com/geobee/geobee/internal/http/handlers/country/list"
	"github.com/geobee/geobee/internal/http/handlers/country/read"
	"github.com/geobee/geobee/internal/http/handlers/favorite/create"
	favoritelist "github.com/geobee/geobee/internal/http/handlers/favorite/list"
	"github.com/geobee/geobee/internal/http/handlers/favorite/remove"
	"github.com/geobee/geobee/internal/http/handlers/favorite/update"
	"github.com/geobee/geobee/internal/http/handlers/health"
	"github.com/geobee/geobee/internal/http/middlewarectx"
	"github.com/geobee/geobee/internal/http/response"
	"github.com/geobee/geobee/internal/metrics"
	authservice "github.com/geobee/geobee/internal/services/auth"
	countryservice "github.com/geobee/geobee/internal/services/country"
	favoriteservice "github.com/geobee/geobee/internal/services/favorite"
)

// Services — зависимости обработчиков.
type Services struct {
	Auth      *authservice.AuthService
	Countries *countryservice.Service
	Favorites *favoriteservice.FavoriteService
	Tokens    middlewarectx.TokenParser
}

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, httpCfg config.HTTPServer, limit config.RateLimit, svc Services) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middlewarectx.Logger(logger),
		middlewarectx.Recoverer(logger),
		middlewarectx.SecureHeaders,
		metrics.Middleware,
		cors.Handler(cors.Options{
			AllowedOrigins:   []string{httpCfg.ClientOrigin},
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
			AllowedHeaders:   []string{"Authorization", "Content-Type"},
			AllowCredentials: false,
			MaxAge:           300,
		}),
	)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		response.ErrorJSON(w, r, http.StatusNotFound, "Not Found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		response.ErrorJSON(w, r, http.StatusMethodNotAllowed, "Method Not Allowed")
	})

	r.Route("/api", func(r chi.Router) {
		// Открытые конечные точки
		r.Get("/health", health.New(logger).ServeHTTP)

		r.Route("/auth", func(r chi.Router) {
			r.Use(middlewarectx.RateLimitMiddleware(logger, limit.RPS, limit.Burst))
			r.Post("/register", register.New(logger, svc.Auth).ServeHTTP)
			r.Post("/login", login.New(logger, svc.Auth).ServeHTTP)
		})

		// Группа с JWT аутентификацией
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(svc.Tokens, logger))

			r.Get("/countries", countrylist.New(logger, svc.Countries).ServeHTTP)
			r.Get("/country/{code}", read.New(logger, svc.Countries).ServeHTTP)
			r.Get("/compare", compare.New(logger, svc.Countries).ServeHTTP)

			r.Post("/favorites", create.New(logger, svc.Favorites).ServeHTTP)
			r.Get("/favorites", favoritelist.New(logger, svc.Favorites).ServeHTTP)
			r.Patch("/favorites/{id}", update.New(logger, svc.Favorites).ServeHTTP)
			r.Delete("/favorites/{id}", remove.New(logger, svc.Favorites).ServeHTTP)
		})
	})

	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.With(middlewarectx.DocsHeaders).Get("/docs/*", httpSwagger.WrapHandler)
}
