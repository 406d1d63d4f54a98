package main

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/diewo77/invoice-desk/httpx"
)

// App is the main application handler that sets up all routes.
type App struct {
	mux       *http.ServeMux
	routerCfg *RouterConfig
	log       *zap.Logger
}

// NewApp creates a new application with all routes configured.
func NewApp(routerCfg *RouterConfig, log *zap.Logger) *App {
	app := &App{
		mux:       http.NewServeMux(),
		routerCfg: routerCfg,
		log:       log,
	}
	app.setupRoutes()
	return app
}

// ServeHTTP implements http.Handler.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	handler := a.withLogging(a.withRecover(a.routerCfg.Sessions.Middleware(a.mux)))
	handler.ServeHTTP(w, r)
}

// setupRoutes configures all application routes.
func (a *App) setupRoutes() {
	// ─────────────────────────────────────────────────────────────────────────
	// Public routes (no auth required)
	// ─────────────────────────────────────────────────────────────────────────
	ah := a.routerCfg.AuthHandler

	a.mux.HandleFunc("GET /health", a.health)
	a.mux.HandleFunc("GET /healthz", a.healthz)
	a.mux.HandleFunc("POST /api/auth/signup", ah.Signup)
	a.mux.HandleFunc("POST /api/auth/login", ah.Login)
	a.mux.HandleFunc("POST /api/auth/logout", ah.Logout)

	// ─────────────────────────────────────────────────────────────────────────
	// Authenticated routes (require logged-in user)
	// ─────────────────────────────────────────────────────────────────────────
	ch := a.routerCfg.ClientHandler
	ih := a.routerCfg.InvoiceHandler
	bh := a.routerCfg.BulkHandler
	dh := a.routerCfg.DashboardHandler

	a.handleAuth("GET /api/clients", ch.List)
	a.handleAuth("POST /api/clients", ch.Create)
	a.handleAuth("POST /api/clients/bulk", bh.Clients)
	a.handleAuth("DELETE /api/clients/{id}", ch.Delete)

	a.handleAuth("GET /api/invoices", ih.List)
	a.handleAuth("POST /api/invoices", ih.Create)
	a.handleAuth("POST /api/invoices/bulk", bh.Invoices)
	a.handleAuth("GET /api/invoices/{id}", ih.Get)
	a.handleAuth("PATCH /api/invoices/{id}/status", ih.UpdateStatus)
	a.handleAuth("DELETE /api/invoices/{id}", ih.Delete)

	a.handleAuth("GET /api/dashboard/metrics", dh.Metrics)
	a.handleAuth("GET /api/dashboard/revenue", dh.Revenue)

	a.mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		httpx.JSONError(w, http.StatusNotFound, "Not found", nil)
	})
}

func (a *App) handleAuth(pattern string, h http.HandlerFunc) {
	a.mux.Handle(pattern, a.routerCfg.Sessions.RequireAuth(h))
}

//revive:disable:unused-parameter simple handlers intentionally ignore *http.Request
func (a *App) health(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// healthz also checks the database.
func (a *App) healthz(w http.ResponseWriter, r *http.Request) {
	if err := a.routerCfg.Store.Ping(r.Context()); err != nil {
		a.log.Warn("health check failed", zap.Error(err))
		httpx.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ─────────────────────────────────────────────────────────────────────────────
// Middleware
// ─────────────────────────────────────────────────────────────────────────────

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// withLogging logs one line per request.
func (a *App) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		a.log.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

func (a *App) withRecover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				a.log.Error("panic", zap.Any("panic", rec), zap.String("path", r.URL.Path), zap.Stack("stack"))
				httpx.JSONError(w, http.StatusInternalServerError, "Internal server error", nil)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
