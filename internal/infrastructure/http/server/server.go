package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/tradezone/marketplace/internal/infrastructure/http/handlers"
	"github.com/tradezone/marketplace/internal/pkg/logger"
)

type Server struct {
	server          *http.Server
	logger          *logger.Logger
	healthHandler   *handlers.HealthHandler
	cartHandler     *handlers.CartHandler
	checkoutHandler *handlers.CheckoutHandler
	salesHandler    *handlers.SalesHandler
	adminHandler    *handlers.AdminHandler
}

// Deps carries the wired handlers; construction of repositories and use
// cases happens in main.
type Deps struct {
	Health   *handlers.HealthHandler
	Cart     *handlers.CartHandler
	Checkout *handlers.CheckoutHandler
	Sales    *handlers.SalesHandler
	Admin    *handlers.AdminHandler
}

func NewServer(host string, port int, deps Deps, log *logger.Logger) *Server {
	httpServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", host, port),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	return &Server{
		server:          httpServer,
		logger:          log,
		healthHandler:   deps.Health,
		cartHandler:     deps.Cart,
		checkoutHandler: deps.Checkout,
		salesHandler:    deps.Sales,
		adminHandler:    deps.Admin,
	}
}

func (s *Server) ListenAndServe() error {
	s.server.Handler = s.setupRoutes()

	s.logger.Info("Starting HTTP server", "address", s.server.Addr)

	return s.server.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}
