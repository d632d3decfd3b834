package geobee

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"

	"github.com/geobee/geobee/internal/cache"
	"github.com/geobee/geobee/internal/config"
	"github.com/geobee/geobee/internal/lib/jwt"
	"github.com/geobee/geobee/internal/lib/rabbitmq"
	"github.com/geobee/geobee/internal/lib/sl"
	"github.com/geobee/geobee/internal/metrics"
	"github.com/geobee/geobee/internal/migrations"
	"github.com/geobee/geobee/internal/restcountries"
	authservice "github.com/geobee/geobee/internal/services/auth"
	countryservice "github.com/geobee/geobee/internal/services/country"
	favoriteservice "github.com/geobee/geobee/internal/services/favorite"
	"github.com/geobee/geobee/internal/storage/repository"
)

const shutdownTimeout = 15 * time.Second

type App struct {
	server  *http.Server
	logger  *slog.Logger
	db      *repository.Storage
	closers []io.Closer
}

func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := repository.New(ctx, cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		_ = db.Close()
		return nil, err
	}

	app := &App{
		logger: logger,
		db:     db,
	}

	countryOpts := []countryservice.Option{
		countryservice.WithObserver(metrics.Cache{}),
		countryservice.WithFetchTimeout(cfg.RestCountries.Timeout),
	}
	if cfg.RedisConnection.AddressRedis != "" {
		cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
		if err != nil {
			app.closeAll()
			return nil, err
		}
		app.closers = append(app.closers, cacheRedis)
		countryOpts = append(countryOpts, countryservice.WithStore(cacheRedis))
		logger.Info("shared country cache enabled", slog.String("address", cfg.RedisConnection.AddressRedis))
	}

	upstream := restcountries.NewClient(cfg.RestCountries.BaseURL, cfg.RestCountries.Timeout)
	countries := countryservice.New(logger, upstream, cfg.CountryCache.TTL(), countryOpts...)
	if cfg.CountryCache.WarmOnStart {
		warm := countries.Warm
		if cfg.CountryCache.RefreshOnStart {
			warm = countries.Refresh
		}
		if err := warm(ctx); err != nil {
			logger.Warn("country cache warm-up failed", sl.Err(err))
		}
	}

	var publisher favoriteservice.EventPublisher = rabbitmq.NopPublisher{}
	if cfg.RabbitMQ.URL != "" {
		p, err := rabbitmq.Dial(ctx, cfg.RabbitMQ.URL, cfg.RabbitMQ.Exchange, cfg.RabbitMQ.ConnectRetries, cfg.RabbitMQ.RetryDelay)
		if err != nil {
			app.closeAll()
			return nil, err
		}
		app.closers = append(app.closers, p)
		publisher = p
		logger.Info("favorite events enabled", slog.String("exchange", cfg.RabbitMQ.Exchange))
	}

	jwtMaker := jwt.NewJWTMaker(cfg.JWTToken.JWTSecretKey, cfg.JWTToken.TokenTTL)

	services := Services{
		Auth:      authservice.NewAuthService(logger, db, jwtMaker),
		Countries: countries,
		Favorites: favoriteservice.NewFavoriteService(logger, db, publisher, metrics.Events{}),
		Tokens:    jwtMaker,
	}

	router := chi.NewRouter()
	RegisterRoutes(router, logger, cfg.HTTPServer, cfg.RateLimit, services)

	app.server = &http.Server{
		Addr:         cfg.HTTPServer.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.HTTPServer.Timeout,
		WriteTimeout: cfg.HTTPServer.Timeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	return app, nil
}

func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		a.closeAll()
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		a.closeAll()
		return err
	}
}

func (a *App) closeAll() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			a.logger.Warn("failed to close resource", sl.Err(err))
		}
	}
	a.closers = nil
	if err := a.db.Close(); err != nil {
		a.logger.Warn("failed to close database", sl.Err(err))
	}
}
