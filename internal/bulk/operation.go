// Package bulk validates bulk mutation requests and dispatches them to the
// data-access layer, scoped to the requesting user.
package bulk

import (
	"io"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/diewo77/invoice-desk/httpx"
	"github.com/diewo77/invoice-desk/internal/apperr"
	"github.com/diewo77/invoice-desk/internal/models"
	"github.com/diewo77/invoice-desk/validation"
)

// MaxTargets is the largest number of ids a single bulk request may carry.
const MaxTargets = 50

// Action tags accepted in a bulk request.
const (
	ActionDelete    = "delete"
	ActionSetStatus = "set_status"
)

// Operation is a validated bulk mutation. It is either Delete or SetStatus.
type Operation interface {
	Targets() []uuid.UUID
	isOperation()
}

// Delete removes every owned record among IDs.
type Delete struct {
	IDs []uuid.UUID
}

// SetStatus moves every owned invoice among IDs to Status.
type SetStatus struct {
	IDs    []uuid.UUID
	Status models.InvoiceStatus
}

func (o Delete) Targets() []uuid.UUID    { return o.IDs }
func (o SetStatus) Targets() []uuid.UUID { return o.IDs }
func (Delete) isOperation()              {}
func (SetStatus) isOperation()           {}

// invoiceRequest is the wire shape of POST /api/invoices/bulk.
type invoiceRequest struct {
	Action    string   `json:"action" validate:"required,oneof=delete set_status"`
	TargetIDs []string `json:"targetIds" validate:"required,min=1,max=50,dive,uuid"`
	NewStatus *string  `json:"newStatus" validate:"omitempty,oneof=draft sent paid overdue cancelled"`
}

// clientRequest is the wire shape of POST /api/clients/bulk.
type clientRequest struct {
	Action    string   `json:"action" validate:"required,oneof=delete"`
	TargetIDs []string `json:"targetIds" validate:"required,min=1,max=50,dive,uuid"`
}

var messages = map[string]string{
	"targetIds.required": "At least one id is required",
	"targetIds.min":      "At least one id is required",
	"targetIds.max":      "Maximum 50 items allowed",
	"action.oneof":       "Unsupported action",
}

// ParseInvoiceRequest decodes and validates an invoice bulk request.
//
// Structural rules (shape, cardinality, id syntax, enum values) are checked
// first; the newStatus requirement of set_status is only evaluated once the
// structure is known to be valid.
func ParseInvoiceRequest(r io.Reader) (Operation, error) {
	var req invoiceRequest
	if err := httpx.Decode(r, &req); err != nil {
		return nil, err
	}
	if v := validation.Struct(req, messages); !v.Empty() {
		return nil, apperr.Invalid(v)
	}
	ids := parseIDs(req.TargetIDs)

	switch req.Action {
	case ActionSetStatus:
		if req.NewStatus == nil {
			return nil, apperr.InvalidField("newStatus", "Status is required for set_status")
		}
		return SetStatus{IDs: ids, Status: models.InvoiceStatus(*req.NewStatus)}, nil
	default:
		return Delete{IDs: ids}, nil
	}
}

// ParseClientRequest decodes and validates a client bulk request. Clients
// only support delete.
func ParseClientRequest(r io.Reader) (Operation, error) {
	var req clientRequest
	if err := httpx.Decode(r, &req); err != nil {
		return nil, err
	}
	if v := validation.Struct(req, messages); !v.Empty() {
		return nil, apperr.Invalid(v)
	}
	return Delete{IDs: parseIDs(req.TargetIDs)}, nil
}

// parseIDs converts ids that already passed the uuid rule.
func parseIDs(raw []string) []uuid.UUID {
	return lo.Map(raw, func(s string, _ int) uuid.UUID {
		return uuid.MustParse(s)
	})
}
