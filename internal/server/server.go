package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/postboard/apiserver/config"
	"github.com/postboard/apiserver/internal/auth"
	"github.com/postboard/apiserver/internal/db"
	"github.com/postboard/apiserver/internal/handlers"
	"github.com/postboard/apiserver/internal/logutil"
	"github.com/postboard/apiserver/internal/mq"
	"github.com/postboard/apiserver/internal/services"
	"github.com/postboard/apiserver/internal/store"
	"github.com/postboard/apiserver/internal/views"
	"github.com/rs/zerolog"
)

const (
	shutdownTimeout = 30 * time.Second
	// handlerTimeout must stay below writeTimeout so the 503 from
	// middleware.Timeout still reaches the client.
	handlerTimeout = 10 * time.Second
	writeTimeout   = handlerTimeout + 5*time.Second
)

// Server wraps the HTTP server, router and the resources they hold open.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	closers    []func() error
}

// New wires stores, services and routes from cfg. The logger is taken from
// ctx.
func New(ctx context.Context, cfg config.Config) (srv *Server, err error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logger := logutil.GetOrDefault(ctx)

	s := &Server{}
	defer func() {
		if err != nil {
			_ = s.close()
		}
	}()

	userRepo, postRepo, err := s.openStores(ctx, cfg)
	if err != nil {
		return nil, err
	}

	var tokenOpts []auth.TokenOption
	if cfg.Auth.Revocation {
		denylist, err := auth.NewCacheDenylist(ctx, cfg.Auth.TokenTTL)
		if err != nil {
			return nil, fmt.Errorf("token denylist: %w", err)
		}
		s.closers = append(s.closers, denylist.Close)
		tokenOpts = append(tokenOpts, auth.WithDenylist(denylist))
	}
	tokens, err := auth.NewTokenService(auth.TokenConfig{
		Secret: []byte(cfg.Auth.JWTSecret),
		TTL:    cfg.Auth.TokenTTL,
		Issuer: cfg.Auth.JWTIssuer,
	}, tokenOpts...)
	if err != nil {
		return nil, err
	}

	users := services.NewUserService(userRepo, auth.NewHasher(cfg.Auth.BcryptCost))
	posts := services.NewPostService(postRepo)

	bus, err := mq.Open(ctx, cfg.MQ)
	if err != nil {
		return nil, fmt.Errorf("message queue: %w", err)
	}
	if bus != nil {
		s.closers = append(s.closers, bus.Close)
		posts.PublishEvents(bus, cfg.MQ.PostEventsChannel)
		logger.Info().Str("backend", cfg.MQ.Backend).Str("channel", cfg.MQ.PostEventsChannel).Msg("publishing post events")
	}

	renderer, err := views.NewTemplateRenderer()
	if err != nil {
		return nil, err
	}

	s.router = NewRouter(logger, handlers.Deps{
		Users:        users,
		Sessions:     services.NewSessionService(users, tokens),
		Posts:        posts,
		Views:        renderer,
		CookieSecure: cfg.Auth.CookieSecure,
	})

	port := cfg.ServerPort
	if port == 0 {
		port = 8080
	}
	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           s.router,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       60 * time.Second,
	}
	return s, nil
}

// NewRouter builds the chi router with middleware and all routes.
func NewRouter(logger zerolog.Logger, deps handlers.Deps) *chi.Mux {
	router := chi.NewRouter()
	router.Use(
		middleware.RequestID,
		middleware.RealIP,
		logutil.RequestLogger(logger),
		middleware.Recoverer,
		middleware.Timeout(handlerTimeout),
	)
	router.Get("/healthz", handlers.Healthz)
	handlers.AuthRouter(router, deps)
	router.Route("/posts", func(r chi.Router) {
		handlers.PostRouter(r, deps)
	})
	return router
}

func (s *Server) openStores(ctx context.Context, cfg config.Config) (services.UserRepository, services.PostRepository, error) {
	if cfg.Database.Driver == config.DriverMemory {
		return store.NewMemoryUserRepository(), store.NewMemoryPostRepository(), nil
	}

	if cfg.Database.AutoMigrate {
		if err := db.MigrateUp(cfg.Database); err != nil {
			return nil, nil, err
		}
	}
	dbConn, err := db.Open(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	s.closers = append(s.closers, dbConn.Close)
	return store.NewUserRepository(dbConn), store.NewPostRepository(dbConn, cfg.Database.Driver), nil
}

// Router exposes the chi router for route registration.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Run serves until ctx is cancelled, then shuts down gracefully and
// releases the server's resources.
func (s *Server) Run(ctx context.Context) error {
	log := logutil.GetOrDefault(ctx).With().Str("server.addr", s.httpServer.Addr).Logger()

	serveErr := make(chan error, 1)
	go func() {
		log.Info().Msg("starting HTTP server")
		serveErr <- s.httpServer.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		_ = s.close()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		log.Info().Msg("initiating shutdown")
		err := s.Shutdown()
		log.Info().Msg("shutdown completed")
		return err
	}
}

// Shutdown stops accepting requests, waits for in-flight ones and closes
// stores and brokers.
func (s *Server) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	var errs []error
	if s.httpServer != nil {
		errs = append(errs, s.httpServer.Shutdown(ctx))
	}
	errs = append(errs, s.close())
	return errors.Join(errs...)
}

func (s *Server) close() error {
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		errs = append(errs, s.closers[i]())
	}
	s.closers = nil
	return errors.Join(errs...)
}
