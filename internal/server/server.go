package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/pasc-cca/ccadash/internal/auth"
	"github.com/pasc-cca/ccadash/internal/client"
	"github.com/pasc-cca/ccadash/internal/config"
	"github.com/pasc-cca/ccadash/internal/handlers"
	"github.com/pasc-cca/ccadash/internal/logger"
	"github.com/pasc-cca/ccadash/internal/metrics"
	"github.com/pasc-cca/ccadash/internal/middleware"
	"github.com/pasc-cca/ccadash/internal/routes"
)

const requestTimeout = 60 * time.Second

type Server struct {
	router      *chi.Mux
	config      *config.Config
	logger      *slog.Logger
	authService *auth.AuthService
}

// NewServer creates the dashboard web server. apiClient is the shared client; each browser request gets a copy bound to its session cookies.
func NewServer(cfg *config.Config, logger *slog.Logger, apiClient *client.Client, m *metrics.Metrics, gatherer prometheus.Gatherer) (*Server, error) {
	corsMiddleware, err := config.NewCORSMiddleware(cfg)
	if err != nil {
		return nil, err
	}

	s := &Server{
		router:      chi.NewRouter(),
		config:      cfg,
		logger:      logger,
		authService: auth.NewAuthService(apiClient, cfg.Environment),
	}

	s.setupMiddleware()

	routes.RegisterRoutes(s.router, routes.Dependencies{
		Config: cfg,
		Handlers: &handlers.HandlerService{
			ErrorMode:   cfg.Mode(),
			Metrics:     m,
			Environment: cfg.Environment,
		},
		AuthService:    s.authService,
		CORS:           corsMiddleware,
		MetricsHandler: metrics.Handler(gatherer),
	})
	return s, nil
}

func (s *Server) setupMiddleware() {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(logger.RequestLogging(s.logger))
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(chimiddleware.Timeout(requestTimeout))
	s.router.Use(middleware.SecurityHeaders(s.config.Environment))
}

// ServeHTTP makes the server usable with httptest
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Start runs the server until ctx is cancelled, then shuts down gracefully
func (s *Server) Start(ctx context.Context) error {
	defer s.authService.Close()

	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	server := &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  s.config.IdleTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		s.logger.Info("Dashboard server listening",
			slog.String("address", addr),
			slog.String("environment", s.config.Environment),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		return fmt.Errorf("server failed to start: %w", err)
	case <-ctx.Done():
		s.logger.Info("Shutting down dashboard server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ServerShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("Server forced to shutdown", slog.String("error", err.Error()))
			return err
		}
	}

	return nil
}
