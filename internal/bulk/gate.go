package bulk

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/diewo77/invoice-desk/internal/apperr"
	"github.com/diewo77/invoice-desk/internal/models"
)

// InvoiceMutator is the part of the data-access layer the invoice gate needs.
// Each method is one batched, owner-scoped mutation returning the ids it hit.
type InvoiceMutator interface {
	DeleteInvoices(ctx context.Context, owner uint, ids []uuid.UUID) ([]uuid.UUID, error)
	SetInvoiceStatus(ctx context.Context, owner uint, ids []uuid.UUID, status models.InvoiceStatus) ([]uuid.UUID, error)
}

// ClientMutator is the part of the data-access layer the client gate needs.
type ClientMutator interface {
	DeleteClients(ctx context.Context, owner uint, ids []uuid.UUID) ([]uuid.UUID, error)
}

// Result reports what a bulk operation actually changed.
type Result struct {
	Affected int
	IDs      []uuid.UUID
}

// InvoiceGate dispatches validated operations over invoices.
type InvoiceGate struct {
	store InvoiceMutator
}

func NewInvoiceGate(store InvoiceMutator) *InvoiceGate {
	return &InvoiceGate{store: store}
}

// Execute applies op to the invoices of owner. Ids that do not exist or
// belong to someone else are skipped silently and only lower Affected.
// Status transitions are not checked: any status may move to any other.
func (g *InvoiceGate) Execute(ctx context.Context, owner uint, op Operation) (Result, error) {
	if owner == 0 {
		return Result{}, apperr.ErrUnauthenticated
	}
	if err := checkTargets(op); err != nil {
		return Result{}, err
	}

	var (
		ids []uuid.UUID
		err error
	)
	switch o := op.(type) {
	case Delete:
		ids, err = g.store.DeleteInvoices(ctx, owner, o.IDs)
	case SetStatus:
		if !o.Status.Valid() {
			return Result{}, apperr.InvalidField("newStatus", "Invalid status")
		}
		ids, err = g.store.SetInvoiceStatus(ctx, owner, o.IDs, o.Status)
	default:
		return Result{}, apperr.InvalidField("action", "Unsupported action")
	}
	if err != nil {
		return Result{}, err
	}
	return newResult(ids), nil
}

// ClientGate dispatches validated operations over clients.
type ClientGate struct {
	store ClientMutator
}

func NewClientGate(store ClientMutator) *ClientGate {
	return &ClientGate{store: store}
}

// Execute deletes the owned clients targeted by op.
func (g *ClientGate) Execute(ctx context.Context, owner uint, op Operation) (Result, error) {
	if owner == 0 {
		return Result{}, apperr.ErrUnauthenticated
	}
	if err := checkTargets(op); err != nil {
		return Result{}, err
	}
	d, ok := op.(Delete)
	if !ok {
		return Result{}, apperr.InvalidField("action", "Unsupported action")
	}
	ids, err := g.store.DeleteClients(ctx, owner, d.IDs)
	if err != nil {
		return Result{}, err
	}
	return newResult(ids), nil
}

// Message renders the human readable summary of a bulk result.
func Message(op Operation, noun string, res Result) string {
	switch o := op.(type) {
	case SetStatus:
		return fmt.Sprintf("Updated %d %s(s) to %s", res.Affected, noun, o.Status)
	default:
		return fmt.Sprintf("Deleted %d %s(s)", res.Affected, noun)
	}
}

// checkTargets guards operations built without the parsers.
func checkTargets(op Operation) error {
	if op == nil {
		return apperr.InvalidField("action", "Required")
	}
	switch n := len(op.Targets()); {
	case n == 0:
		return apperr.InvalidField("targetIds", "At least one id is required")
	case n > MaxTargets:
		return apperr.InvalidField("targetIds", fmt.Sprintf("Maximum %d items allowed", MaxTargets))
	}
	return nil
}

func newResult(ids []uuid.UUID) Result {
	if ids == nil {
		ids = []uuid.UUID{}
	}
	return Result{Affected: len(ids), IDs: ids}
}
