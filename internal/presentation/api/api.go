package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/kinosync/kinosync/internal/infrastructure/auth"
	"github.com/kinosync/kinosync/internal/infrastructure/configs"
	"github.com/kinosync/kinosync/internal/infrastructure/metrics"
	"github.com/kinosync/kinosync/internal/infrastructure/ratelimiter"
	healthHandler "github.com/kinosync/kinosync/internal/presentation/handler/health"
	roomsHandler "github.com/kinosync/kinosync/internal/presentation/handler/rooms"
	streamHandler "github.com/kinosync/kinosync/internal/presentation/handler/stream"
	syncHandler "github.com/kinosync/kinosync/internal/presentation/handler/sync"
)

type Application struct {
	config        configs.Config
	roomsHandler  *roomsHandler.Handler
	streamHandler *streamHandler.Handler
	syncHandler   *syncHandler.Handler
	healthHandler *healthHandler.Handler
	verifier      *auth.Verifier
	logger        *zap.SugaredLogger
	ratelimiter   ratelimiter.Limiter
}

func NewApplication(
	config configs.Config,
	roomsHandler *roomsHandler.Handler,
	streamHandler *streamHandler.Handler,
	syncHandler *syncHandler.Handler,
	healthHandler *healthHandler.Handler,
	verifier *auth.Verifier,
	logger *zap.SugaredLogger,
	ratelimiter ratelimiter.Limiter,
) *Application {
	return &Application{
		config:        config,
		roomsHandler:  roomsHandler,
		streamHandler: streamHandler,
		syncHandler:   syncHandler,
		healthHandler: healthHandler,
		verifier:      verifier,
		logger:        logger,
		ratelimiter:   ratelimiter,
	}
}

func (app *Application) Mount() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Use(app.requestLogger)
	r.Use(app.identityMiddleware)

	r.Route("/api", func(r chi.Router) {
		// Video fetches fire many small range requests per minute and the
		// socket is a single long-lived connection. Neither goes through
		// the fixed-window limiter or the request timeout; both would cut
		// long-lived transfers short.
		r.Get("/stream/{movieId}", app.streamHandler.StreamMovie)
		r.Get("/ws", app.syncHandler.ServeWS)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(60 * time.Second))
			r.Use(app.rateLimiterMiddleware)
			r.Use(app.enableCors)

			r.Route("/rooms", func(r chi.Router) {
				r.Post("/", app.roomsHandler.CreateRoomHandler)
				r.Get("/{roomId}", app.roomsHandler.GetRoomHandler)
				r.Get("/token/{token}", app.roomsHandler.GetRoomByTokenHandler)
				r.Get("/code/{code}", app.roomsHandler.GetRoomByCodeHandler)
			})

			r.Get("/health", app.healthHandler.GetHealth)
			r.Get("/healthz", app.healthHandler.GetHealth)
			r.Get("/ready", app.healthHandler.GetHealth)
			r.Get("/live", app.healthHandler.GetHealth)
		})
	})

	r.Handle("/metrics", metrics.Handler())

	if app.config.Tracing.Enabled {
		return otelhttp.NewHandler(r, "kinosync.http")
	}
	return r
}

func (app *Application) Run(mux http.Handler) error {
	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", app.config.HTTP.Host, app.config.HTTP.Port),
		Handler:      mux,
		WriteTimeout: app.config.HTTP.WriteTimeout,
		ReadTimeout:  app.config.HTTP.ReadTimeout,
		IdleTimeout:  time.Minute,
	}

	shutdown := make(chan error)

	go func() {
		quit := make(chan os.Signal, 1)

		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		s := <-quit

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		app.logger.Infow("signal caught", "signal", s.String())

		shutdown <- srv.Shutdown(ctx)
	}()

	app.logger.Infow("server has started", "addr", srv.Addr)

	err := srv.ListenAndServe()
	if !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	err = <-shutdown
	if err != nil {
		return err
	}

	app.logger.Infow("server has stopped", "addr", srv.Addr)

	return nil
}
