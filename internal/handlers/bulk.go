package handlers

import (
	"context"
	"io"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/diewo77/invoice-desk/httpx"
	"github.com/diewo77/invoice-desk/internal/bulk"
)

type executor interface {
	Execute(ctx context.Context, owner uint, op bulk.Operation) (bulk.Result, error)
}

type bulkResponse struct {
	Message     string      `json:"message"`
	Affected    int         `json:"affected"`
	AffectedIDs []uuid.UUID `json:"affectedIds"`
}

// BulkHandler serves POST /api/invoices/bulk and POST /api/clients/bulk.
type BulkHandler struct {
	invoices executor
	clients  executor
	log      *zap.Logger
}

func NewBulkHandler(invoices *bulk.InvoiceGate, clients *bulk.ClientGate, log *zap.Logger) *BulkHandler {
	return &BulkHandler{invoices: invoices, clients: clients, log: log}
}

func (h *BulkHandler) Invoices(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, h.invoices, "invoice", bulk.ParseInvoiceRequest)
}

func (h *BulkHandler) Clients(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, h.clients, "client", bulk.ParseClientRequest)
}

func (h *BulkHandler) serve(w http.ResponseWriter, r *http.Request, gate executor, noun string, parse func(io.Reader) (bulk.Operation, error)) {
	uid := owner(r)
	if uid == 0 {
		httpx.JSONError(w, http.StatusUnauthorized, "Unauthorized", nil)
		return
	}
	op, err := parse(r.Body)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	res, err := gate.Execute(r.Context(), uid, op)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	h.log.Info("bulk operation",
		zap.Uint("user_id", uid),
		zap.String("resource", noun),
		zap.Int("requested", len(op.Targets())),
		zap.Int("affected", res.Affected),
	)
	httpx.JSON(w, http.StatusOK, bulkResponse{
		Message:     bulk.Message(op, noun, res),
		Affected:    res.Affected,
		AffectedIDs: res.IDs,
	})
}
