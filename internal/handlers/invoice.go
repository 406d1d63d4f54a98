package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/diewo77/invoice-desk/httpx"
	"github.com/diewo77/invoice-desk/internal/apperr"
	"github.com/diewo77/invoice-desk/internal/models"
	"github.com/diewo77/invoice-desk/internal/store"
	"github.com/diewo77/invoice-desk/validation"
)

const dateLayout = "2006-01-02"

// maxAmount is the largest value a decimal(12,2) amount column holds.
var maxAmount = decimal.RequireFromString("9999999999.99")

// InvoiceStore is the data access used by InvoiceHandler.
type InvoiceStore interface {
	ListInvoices(ctx context.Context, owner uint, f store.InvoiceFilter) ([]models.Invoice, error)
	GetInvoice(ctx context.Context, owner uint, id uuid.UUID) (*models.Invoice, error)
	CreateInvoice(ctx context.Context, inv *models.Invoice) error
	DeleteInvoices(ctx context.Context, owner uint, ids []uuid.UUID) ([]uuid.UUID, error)
	SetInvoiceStatus(ctx context.Context, owner uint, ids []uuid.UUID, status models.InvoiceStatus) ([]uuid.UUID, error)
	GetClient(ctx context.Context, owner uint, id uuid.UUID) (*models.Client, error)
}

type InvoiceHandler struct {
	store InvoiceStore
	log   *zap.Logger
}

func NewInvoiceHandler(s InvoiceStore, log *zap.Logger) *InvoiceHandler {
	return &InvoiceHandler{store: s, log: log}
}

type createInvoiceRequest struct {
	Number    string  `json:"number" validate:"max=50"`
	ClientID  *string `json:"clientId" validate:"omitempty,uuid"`
	IssueDate string  `json:"issueDate" validate:"required,datetime=2006-01-02"`
	DueDate   *string `json:"dueDate" validate:"omitempty,datetime=2006-01-02"`
	Status    *string `json:"status" validate:"omitempty,oneof=draft sent paid overdue cancelled"`

	// Accepts a JSON number or a numeric string.
	TotalAmount json.Number `json:"totalAmount" validate:"required,numeric"`
	Notes       string      `json:"notes"`
}

type statusRequest struct {
	Status string `json:"status" validate:"required,oneof=draft sent paid overdue cancelled"`
}

// List serves GET /api/invoices. ?status= accepts a comma separated list.
func (h *InvoiceHandler) List(w http.ResponseWriter, r *http.Request) {
	uid := owner(r)
	if uid == 0 {
		httpx.JSONError(w, http.StatusUnauthorized, "Unauthorized", nil)
		return
	}
	filter, err := parseStatusFilter(r.URL.Query()["status"])
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	invoices, err := h.store.ListInvoices(r.Context(), uid, filter)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, invoices)
}

// Create serves POST /api/invoices.
func (h *InvoiceHandler) Create(w http.ResponseWriter, r *http.Request) {
	uid := owner(r)
	if uid == 0 {
		httpx.JSONError(w, http.StatusUnauthorized, "Unauthorized", nil)
		return
	}
	var req createInvoiceRequest
	if err := httpx.Decode(r.Body, &req); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	inv, err := h.buildInvoice(r.Context(), uid, req)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	if err := h.store.CreateInvoice(r.Context(), inv); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, inv)
}

func (h *InvoiceHandler) buildInvoice(ctx context.Context, uid uint, req createInvoiceRequest) (*models.Invoice, error) {
	v := validation.Struct(req, nil)
	amount, err := decimal.NewFromString(req.TotalAmount.String())
	if err == nil {
		switch {
		case amount.IsNegative():
			v.Add("totalAmount", "Must be greater than or equal to 0")
		case amount.GreaterThan(maxAmount):
			v.Add("totalAmount", "Must be less than or equal to "+maxAmount.StringFixed(2))
		case !amount.Equal(amount.Truncate(2)):
			v.Add("totalAmount", "At most 2 decimal places allowed")
		}
	}
	if !v.Empty() {
		return nil, apperr.Invalid(v)
	}

	issued, _ := time.Parse(dateLayout, req.IssueDate)
	inv := &models.Invoice{
		UserID:      uid,
		Number:      req.Number,
		IssueDate:   datatypes.Date(issued),
		TotalAmount: amount,
		Notes:       req.Notes,
	}
	if req.DueDate != nil {
		due, _ := time.Parse(dateLayout, *req.DueDate)
		d := datatypes.Date(due)
		inv.DueDate = &d
	}
	if req.Status != nil {
		inv.Status = models.InvoiceStatus(*req.Status)
	}
	if req.ClientID != nil {
		cid := uuid.MustParse(*req.ClientID)
		if _, err := h.store.GetClient(ctx, uid, cid); err != nil {
			if errors.Is(err, apperr.ErrNotFound) {
				return nil, apperr.InvalidField("clientId", "Unknown client")
			}
			return nil, err
		}
		inv.ClientID = &cid
	}
	return inv, nil
}

// Get serves GET /api/invoices/{id}.
func (h *InvoiceHandler) Get(w http.ResponseWriter, r *http.Request) {
	uid := owner(r)
	if uid == 0 {
		httpx.JSONError(w, http.StatusUnauthorized, "Unauthorized", nil)
		return
	}
	id, ok := pathID(r)
	if !ok {
		writeError(w, r, h.log, apperr.ErrNotFound)
		return
	}
	inv, err := h.store.GetInvoice(r.Context(), uid, id)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, inv)
}

// UpdateStatus serves PATCH /api/invoices/{id}/status.
func (h *InvoiceHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	uid := owner(r)
	if uid == 0 {
		httpx.JSONError(w, http.StatusUnauthorized, "Unauthorized", nil)
		return
	}
	id, ok := pathID(r)
	if !ok {
		writeError(w, r, h.log, apperr.ErrNotFound)
		return
	}
	var req statusRequest
	if err := httpx.Decode(r.Body, &req); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	if v := validation.Struct(req, nil); !v.Empty() {
		writeError(w, r, h.log, apperr.Invalid(v))
		return
	}
	updated, err := h.store.SetInvoiceStatus(r.Context(), uid, []uuid.UUID{id}, models.InvoiceStatus(req.Status))
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	if len(updated) == 0 {
		writeError(w, r, h.log, apperr.ErrNotFound)
		return
	}
	inv, err := h.store.GetInvoice(r.Context(), uid, id)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, inv)
}

// Delete serves DELETE /api/invoices/{id}.
func (h *InvoiceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	uid := owner(r)
	if uid == 0 {
		httpx.JSONError(w, http.StatusUnauthorized, "Unauthorized", nil)
		return
	}
	id, ok := pathID(r)
	if !ok {
		writeError(w, r, h.log, apperr.ErrNotFound)
		return
	}
	deleted, err := h.store.DeleteInvoices(r.Context(), uid, []uuid.UUID{id})
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	if len(deleted) == 0 {
		writeError(w, r, h.log, apperr.ErrNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func parseStatusFilter(raw []string) (store.InvoiceFilter, error) {
	var f store.InvoiceFilter
	for _, part := range raw {
		for _, s := range strings.Split(part, ",") {
			s = strings.TrimSpace(s)
			if s == "" {
				continue
			}
			st := models.InvoiceStatus(s)
			if !st.Valid() {
				return f, apperr.InvalidField("status", "Must be one of: draft, sent, paid, overdue, cancelled")
			}
			f.Statuses = append(f.Statuses, st)
		}
	}
	return f, nil
}

// pathID parses the {id} path value. Malformed ids are treated as missing
// records.
func pathID(r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	return id, err == nil
}
