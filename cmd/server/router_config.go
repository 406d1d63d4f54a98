package main

import (
	"context"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/diewo77/invoice-desk/auth"
	"github.com/diewo77/invoice-desk/internal/analytics"
	"github.com/diewo77/invoice-desk/internal/apperr"
	"github.com/diewo77/invoice-desk/internal/bulk"
	"github.com/diewo77/invoice-desk/internal/handlers"
	"github.com/diewo77/invoice-desk/internal/models"
	"github.com/diewo77/invoice-desk/internal/store"
)

// RouterConfig holds the configured handlers and middleware for the application.
type RouterConfig struct {
	Sessions *auth.Sessions
	Store    *store.Store

	AuthHandler      *handlers.AuthHandler
	ClientHandler    *handlers.ClientHandler
	InvoiceHandler   *handlers.InvoiceHandler
	BulkHandler      *handlers.BulkHandler
	DashboardHandler *handlers.DashboardHandler
}

// NewRouterConfig wires the store, the bulk gates and the aggregation engine
// into the HTTP handlers.
func NewRouterConfig(db *gorm.DB, sessionSecret string, log *zap.Logger) *RouterConfig {
	// Sessions whose user no longer exists are rejected.
	sessions := auth.NewSessions(sessionSecret, func(ctx context.Context, uid uint) (bool, error) {
		var count int64
		if err := db.WithContext(ctx).Model(&models.User{}).Where("id = ?", uid).Limit(1).Count(&count).Error; err != nil {
			return false, apperr.DataAccess(err, "verify session user")
		}
		return count > 0, nil
	}, log)

	st := store.New(db)
	return &RouterConfig{
		Sessions:         sessions,
		Store:            st,
		AuthHandler:      handlers.NewAuthHandler(db, sessions, log),
		ClientHandler:    handlers.NewClientHandler(st, log),
		InvoiceHandler:   handlers.NewInvoiceHandler(st, log),
		BulkHandler:      handlers.NewBulkHandler(bulk.NewInvoiceGate(st), bulk.NewClientGate(st), log),
		DashboardHandler: handlers.NewDashboardHandler(analytics.NewEngine(st), log),
	}
}
