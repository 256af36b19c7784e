package httpserver

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"order-manager/internal/auth"
	"order-manager/internal/catalog"
	"order-manager/internal/metrics"
	"order-manager/internal/nairobi"
	"order-manager/internal/orders"
	"order-manager/internal/repo"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Dependencies exposes core dependencies to handlers.
type Dependencies struct {
	Store    repo.Store
	Orders   *orders.Service
	Nairobi  *nairobi.Service
	Resolver *catalog.Resolver
	Users    *auth.Directory
	Tokens   *auth.TokenStrategy
}

// Server wraps an http.Server with the API routes.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
	metrics    *metrics.Metrics
	deps       Dependencies
	auth       *auth.Middleware
	basePath   string
}

// New creates an HTTP server listening on addr.
func New(addr string, logger *slog.Logger, metricRegistry *metrics.Metrics, deps Dependencies, basePath string) *Server {
	server := &Server{
		logger:   logger.With("component", "http"),
		metrics:  metricRegistry,
		deps:     deps,
		auth:     auth.NewMiddleware(deps.Tokens),
		basePath: normaliseBasePath(basePath),
	}

	handler := mountWithBasePath(server.basePath, server.routes())

	server.httpServer = &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	if server.basePath != "" {
		server.logger.Info("http server configured with base path", "base_path", server.basePath)
	}

	return server
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", healthHandler)
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("POST /api/webhook/{webhook_key}", s.handleWebhook)
	mux.HandleFunc("POST /api/auth/login", s.handleLogin)

	staff := func(h http.HandlerFunc) http.Handler {
		return s.auth.Require(h, auth.RoleAdmin, auth.RoleUser)
	}
	admin := func(h http.HandlerFunc) http.Handler {
		return s.auth.Require(h, auth.RoleAdmin)
	}
	open := func(h http.HandlerFunc) http.Handler {
		return s.auth.Optional(h, auth.RoleAdmin, auth.RoleUser)
	}

	mux.Handle("GET /api/orders", staff(s.handleListOrders))
	mux.Handle("POST /api/orders", staff(s.handleCreateOrder))
	mux.Handle("GET /api/orders/stats", staff(s.handleOrderStats))
	mux.Handle("GET /api/orders/rescheduled", staff(s.handleRescheduledOrders))
	mux.Handle("GET /api/orders/{id}", staff(s.handleGetOrder))
	mux.Handle("PATCH /api/orders/{id}", staff(s.handleUpdateOrder))
	mux.Handle("PUT /api/orders/{id}", staff(s.handleReplaceOrder))

	mux.Handle("GET /api/performance/monthly", staff(s.handleMonthlyPerformance))

	mux.Handle("GET /api/websites", admin(s.handleListWebsites))
	mux.Handle("POST /api/websites", admin(s.handleCreateWebsite))
	mux.Handle("PATCH /api/websites/{id}/toggle", admin(s.handleToggleWebsite))

	mux.Handle("GET /api/products", staff(s.handleListProducts))
	mux.Handle("POST /api/products", admin(s.handleCreateProduct))
	mux.Handle("PUT /api/products/{id}", admin(s.handleUpdateProduct))
	mux.Handle("DELETE /api/products/{id}", admin(s.handleDeleteProduct))

	mux.Handle("GET /api/stock-purchases", admin(s.handleListStockPurchases))
	mux.Handle("POST /api/stock-purchases", admin(s.handleCreateStockPurchase))
	mux.Handle("GET /api/expense-categories", admin(s.handleListExpenseCategories))
	mux.Handle("GET /api/expenses", admin(s.handleListExpenses))
	mux.Handle("POST /api/expenses", admin(s.handleCreateExpense))

	// Claim and status links are shared with riders over WhatsApp, so these
	// stay reachable without a token.
	mux.Handle("POST /api/nairobi-orders", admin(s.handleCreateNairobiOrder))
	mux.Handle("GET /api/nairobi-orders", open(s.handleListNairobiOrders))
	mux.Handle("GET /api/nairobi-orders/{id}", open(s.handleGetNairobiOrder))
	mux.Handle("POST /api/nairobi-orders/{id}/assign", open(s.handleAssignNairobiOrder))
	mux.Handle("PATCH /api/nairobi-orders/{id}/status", open(s.handleNairobiOrderStatus))

	mux.Handle("GET /api/riders", admin(s.handleListRiders))
	mux.Handle("POST /api/riders", admin(s.handleCreateRider))
	mux.Handle("PATCH /api/riders/{id}/toggle", admin(s.handleToggleRider))
	mux.Handle("DELETE /api/riders/{id}", admin(s.handleDeleteRider))

	return s.instrument(mux)
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

// instrument counts requests and latency per registered route pattern, so
// parameterised paths stay low-cardinality.
func (s *Server) instrument(mux *http.ServeMux) http.Handler {
	if s.metrics == nil {
		return mux
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, pattern := mux.Handler(r)
		if pattern == "" {
			pattern = "unmatched"
		}
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		mux.ServeHTTP(sw, r)
		s.metrics.HTTPRequests.WithLabelValues(pattern, strconv.Itoa(sw.status/100*100)).Inc()
		s.metrics.HTTPLatency.WithLabelValues(pattern).Observe(time.Since(start).Seconds())
	})
}

// Start begins listening for incoming HTTP requests.
func (s *Server) Start() error {
	s.logger.Info("http server listening", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server listen: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.httpServer.Shutdown(ctx)
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func mountWithBasePath(basePath string, handler http.Handler) http.Handler {
	if basePath == "" {
		return handler
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, basePath) {
			http.NotFound(w, r)
			return
		}
		if len(r.URL.Path) > len(basePath) && r.URL.Path[len(basePath)] != '/' {
			http.NotFound(w, r)
			return
		}
		trimmed := strings.TrimPrefix(r.URL.Path, basePath)
		if trimmed == "" {
			trimmed = "/"
		}
		r.URL.Path = trimmed
		if r.URL.RawPath != "" {
			rawTrimmed := strings.TrimPrefix(r.URL.RawPath, basePath)
			if rawTrimmed == "" {
				rawTrimmed = "/"
			}
			r.URL.RawPath = rawTrimmed
		}
		handler.ServeHTTP(w, r)
	})
}

func normaliseBasePath(base string) string {
	base = strings.TrimSpace(base)
	if base == "" || base == "/" {
		return ""
	}
	if !strings.HasPrefix(base, "/") {
		base = "/" + base
	}
	return strings.TrimSuffix(base, "/")
}
