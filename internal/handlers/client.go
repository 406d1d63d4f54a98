package handlers

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/diewo77/invoice-desk/httpx"
	"github.com/diewo77/invoice-desk/internal/apperr"
	"github.com/diewo77/invoice-desk/internal/models"
	"github.com/diewo77/invoice-desk/validation"
)

// ClientStore is the data access used by ClientHandler.
type ClientStore interface {
	ListClients(ctx context.Context, owner uint) ([]models.Client, error)
	CreateClient(ctx context.Context, c *models.Client) error
	DeleteClients(ctx context.Context, owner uint, ids []uuid.UUID) ([]uuid.UUID, error)
}

type ClientHandler struct {
	store ClientStore
	log   *zap.Logger
}

func NewClientHandler(s ClientStore, log *zap.Logger) *ClientHandler {
	return &ClientHandler{store: s, log: log}
}

type createClientRequest struct {
	Name       string `json:"name" validate:"required,max=255"`
	Email      string `json:"email" validate:"omitempty,email,max=255"`
	Phone      string `json:"phone" validate:"max=50"`
	Company    string `json:"company" validate:"max=255"`
	Address    string `json:"address" validate:"max=500"`
	City       string `json:"city" validate:"max=100"`
	PostalCode string `json:"postalCode" validate:"max=20"`
	Country    string `json:"country" validate:"max=100"`
}

func (h *ClientHandler) List(w http.ResponseWriter, r *http.Request) {
	uid := owner(r)
	if uid == 0 {
		httpx.JSONError(w, http.StatusUnauthorized, "Unauthorized", nil)
		return
	}
	clients, err := h.store.ListClients(r.Context(), uid)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, clients)
}

func (h *ClientHandler) Create(w http.ResponseWriter, r *http.Request) {
	uid := owner(r)
	if uid == 0 {
		httpx.JSONError(w, http.StatusUnauthorized, "Unauthorized", nil)
		return
	}
	var req createClientRequest
	if err := httpx.Decode(r.Body, &req); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	v := validation.Struct(req, map[string]string{"max": "Too long"})
	if !v.Empty() {
		writeError(w, r, h.log, apperr.Invalid(v))
		return
	}
	c := &models.Client{
		UserID:     uid,
		Name:       req.Name,
		Email:      req.Email,
		Phone:      req.Phone,
		Company:    req.Company,
		Address:    req.Address,
		City:       req.City,
		PostalCode: req.PostalCode,
		Country:    req.Country,
	}
	if err := h.store.CreateClient(r.Context(), c); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, c)
}

// Delete serves DELETE /api/clients/{id}.
func (h *ClientHandler) Delete(w http.ResponseWriter, r *http.Request) {
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
	deleted, err := h.store.DeleteClients(r.Context(), uid, []uuid.UUID{id})
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
