package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/diewo77/invoice-desk/httpx"
	"github.com/diewo77/invoice-desk/internal/analytics"
)

type metricsResponse struct {
	TotalInvoices   int         `json:"totalInvoices"`
	PaidInvoices    int         `json:"paidInvoices"`
	PendingInvoices int         `json:"pendingInvoices"`
	TotalRevenue    json.Number `json:"totalRevenue"`
}

type revenuePoint struct {
	Period  string      `json:"period"`
	Revenue json.Number `json:"revenue"`
}

type revenueResponse struct {
	ChartData []revenuePoint `json:"chartData"`
}

// DashboardHandler exposes the aggregation engine.
type DashboardHandler struct {
	engine *analytics.Engine
	log    *zap.Logger
}

func NewDashboardHandler(engine *analytics.Engine, log *zap.Logger) *DashboardHandler {
	return &DashboardHandler{engine: engine, log: log}
}

// Metrics serves GET /api/dashboard/metrics.
func (h *DashboardHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	uid := owner(r)
	if uid == 0 {
		httpx.JSONError(w, http.StatusUnauthorized, "Unauthorized", nil)
		return
	}
	m, err := h.engine.Metrics(r.Context(), uid)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, metricsResponse{
		TotalInvoices:   m.TotalInvoices,
		PaidInvoices:    m.PaidInvoices,
		PendingInvoices: m.PendingInvoices,
		TotalRevenue:    number(m.TotalRevenue),
	})
}

// Revenue serves GET /api/dashboard/revenue?period=monthly|yearly.
func (h *DashboardHandler) Revenue(w http.ResponseWriter, r *http.Request) {
	uid := owner(r)
	if uid == 0 {
		httpx.JSONError(w, http.StatusUnauthorized, "Unauthorized", nil)
		return
	}
	period, err := analytics.ParsePeriod(r.URL.Query().Get("period"))
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	series, err := h.engine.RevenueSeries(r.Context(), uid, period)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, revenueResponse{
		ChartData: lo.Map(series, func(b analytics.RevenueBucket, _ int) revenuePoint {
			return revenuePoint{Period: b.Period, Revenue: number(b.Revenue)}
		}),
	})
}

// number renders an exact decimal as a bare JSON number.
func number(d decimal.Decimal) json.Number {
	return json.Number(d.String())
}
