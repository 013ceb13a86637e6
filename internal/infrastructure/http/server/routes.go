package server

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tradezone/marketplace/internal/infrastructure/http/middleware"
	"github.com/tradezone/marketplace/internal/infrastructure/monitoring"
)

func (s *Server) setupRoutes() http.Handler {
	mux := http.NewServeMux()

	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("GET /health", s.healthHandler.HandleHealth)

	mux.HandleFunc("POST /carts", s.cartHandler.HandleCreateCart)
	mux.HandleFunc("GET /carts", s.cartHandler.HandleListCarts)
	mux.HandleFunc("GET /carts/active", s.cartHandler.HandleGetActiveCart)
	mux.HandleFunc("GET /carts/{id}", s.cartHandler.HandleGetCart)
	mux.HandleFunc("DELETE /carts/{id}/lines", s.cartHandler.HandleEmptyCart)
	mux.HandleFunc("POST /carts/{id}/products/{productId}", s.cartHandler.HandleAddProduct)
	mux.HandleFunc("DELETE /carts/{id}/products/{productId}", s.cartHandler.HandleRemoveProduct)
	mux.HandleFunc("PUT /carts/{id}/products/{productId}/quantity", s.cartHandler.HandleUpdateQuantity)

	mux.HandleFunc("POST /carts/{id}/checkout", s.checkoutHandler.HandleCheckout)
	mux.HandleFunc("GET /carts/{id}/checkout/success", s.checkoutHandler.HandleCheckoutSuccess)
	mux.HandleFunc("GET /carts/{id}/checkout/cancel", s.checkoutHandler.HandleCheckoutCancel)

	mux.HandleFunc("GET /sales", s.salesHandler.HandleListSales)
	mux.HandleFunc("GET /sales/earnings", s.salesHandler.HandleTotalEarnings)
	mux.HandleFunc("GET /sales/{cartId}/{productId}", s.salesHandler.HandleGetSaleLine)
	mux.HandleFunc("DELETE /sales/{cartId}/{productId}", s.salesHandler.HandleCancelSale)

	mux.HandleFunc("PUT /admin/carts/{id}/products/{productId}/quantity", s.cartHandler.HandleForceUpdateQuantity)
	mux.HandleFunc("PUT /admin/carts/{id}/products/{productId}/status", s.cartHandler.HandleUpdateLineStatus)
	mux.HandleFunc("POST /admin/carts/{id}/restore-stock", s.adminHandler.HandleRestoreStock)
	mux.HandleFunc("POST /admin/cleanup", s.adminHandler.HandleCleanup)

	handler := middleware.NewRecoveryMiddleware(s.logger)(mux)
	handler = middleware.NewLoggingMiddleware(s.logger)(handler)
	handler = monitoring.WrapHandler(handler)
	handler = s.corsMiddleware(handler)
	handler = s.timeoutMiddleware(handler)

	return handler
}

func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Accept, Authorization, Content-Type, X-User-ID, X-User-Role")
		w.Header().Set("Access-Control-Max-Age", "300")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) timeoutMiddleware(next http.Handler) http.Handler {
	return http.TimeoutHandler(next, 60*time.Second, "Request timeout")
}
