// Package store is the data-access layer. Every query it runs is scoped to
// the owning user: callers pass the owner explicitly and records of other
// users are indistinguishable from missing ones.
package store

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/samber/lo"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/diewo77/invoice-desk/internal/apperr"
	"github.com/diewo77/invoice-desk/internal/models"
)

// InvoiceFilter narrows ListInvoices. Zero value lists everything owned.
type InvoiceFilter struct {
	Statuses []models.InvoiceStatus
}

// Store implements the data-access collaborator on top of GORM.
//
// Batched mutations run the owner/id predicate and the write inside one
// transaction, so a batch is either fully applied or not at all.
type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// ─────────────────────────────────────────────────────────────────────────────
// Invoices
// ─────────────────────────────────────────────────────────────────────────────

// ListInvoices returns the invoices owned by owner, newest issue date first.
func (s *Store) ListInvoices(ctx context.Context, owner uint, f InvoiceFilter) ([]models.Invoice, error) {
	q := s.db.WithContext(ctx).Where("user_id = ?", owner)
	if len(f.Statuses) > 0 {
		q = q.Where("status IN ?", f.Statuses)
	}
	var invoices []models.Invoice
	if err := q.Order("issue_date DESC").Order("id").Find(&invoices).Error; err != nil {
		return nil, apperr.DataAccess(err, "list invoices")
	}
	return invoices, nil
}

// GetInvoice loads a single owned invoice.
func (s *Store) GetInvoice(ctx context.Context, owner uint, id uuid.UUID) (*models.Invoice, error) {
	var inv models.Invoice
	err := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, owner).First(&inv).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, apperr.DataAccess(err, "get invoice")
	}
	return &inv, nil
}

// CreateInvoice persists inv. The caller sets UserID.
func (s *Store) CreateInvoice(ctx context.Context, inv *models.Invoice) error {
	return apperr.DataAccess(s.db.WithContext(ctx).Create(inv).Error, "create invoice")
}

// DeleteInvoices soft-deletes the invoices among ids owned by owner and
// returns the ids actually deleted.
func (s *Store) DeleteInvoices(ctx context.Context, owner uint, ids []uuid.UUID) ([]uuid.UUID, error) {
	affected, err := s.mutateOwned(ctx, &models.Invoice{}, owner, ids, func(tx *gorm.DB) *gorm.DB {
		return tx.Delete(&models.Invoice{})
	})
	if err != nil {
		return nil, apperr.DataAccess(err, "delete invoices")
	}
	return affected, nil
}

// SetInvoiceStatus moves the owned invoices among ids to status and returns
// the ids updated. Rows already in status still count as updated.
func (s *Store) SetInvoiceStatus(ctx context.Context, owner uint, ids []uuid.UUID, status models.InvoiceStatus) ([]uuid.UUID, error) {
	affected, err := s.mutateOwned(ctx, &models.Invoice{}, owner, ids, func(tx *gorm.DB) *gorm.DB {
		return tx.Model(&models.Invoice{}).Update("status", status)
	})
	if err != nil {
		return nil, apperr.DataAccess(err, "set invoice status")
	}
	return affected, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Clients
// ─────────────────────────────────────────────────────────────────────────────

// ListClients returns the clients owned by owner ordered by name.
func (s *Store) ListClients(ctx context.Context, owner uint) ([]models.Client, error) {
	var clients []models.Client
	if err := s.db.WithContext(ctx).Where("user_id = ?", owner).Order("name").Order("id").Find(&clients).Error; err != nil {
		return nil, apperr.DataAccess(err, "list clients")
	}
	return clients, nil
}

// GetClient loads a single owned client.
func (s *Store) GetClient(ctx context.Context, owner uint, id uuid.UUID) (*models.Client, error) {
	var c models.Client
	err := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, owner).First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, apperr.DataAccess(err, "get client")
	}
	return &c, nil
}

// CreateClient persists c. The caller sets UserID.
func (s *Store) CreateClient(ctx context.Context, c *models.Client) error {
	return apperr.DataAccess(s.db.WithContext(ctx).Create(c).Error, "create client")
}

// DeleteClients soft-deletes the owned clients among ids.
func (s *Store) DeleteClients(ctx context.Context, owner uint, ids []uuid.UUID) ([]uuid.UUID, error) {
	affected, err := s.mutateOwned(ctx, &models.Client{}, owner, ids, func(tx *gorm.DB) *gorm.DB {
		return tx.Delete(&models.Client{})
	})
	if err != nil {
		return nil, apperr.DataAccess(err, "delete clients")
	}
	return affected, nil
}

// Ping checks the database connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.WithContext(ctx).Exec("SELECT 1").Error
}

// mutateOwned resolves the rows matching `user_id = owner AND id IN ids`,
// locks them where the dialect supports it, and applies mutate to exactly
// that row set in a single statement.
func (s *Store) mutateOwned(ctx context.Context, model any, owner uint, ids []uuid.UUID, mutate func(tx *gorm.DB) *gorm.DB) ([]uuid.UUID, error) {
	ids = lo.Uniq(ids)
	if len(ids) == 0 {
		return []uuid.UUID{}, nil
	}
	affected := []uuid.UUID{}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		sel := tx.Model(model).Where("user_id = ? AND id IN ?", owner, ids)
		if tx.Dialector.Name() == "postgres" {
			sel = sel.Clauses(clause.Locking{Strength: "UPDATE"})
		}
		if err := sel.Order("id").Pluck("id", &affected).Error; err != nil {
			return err
		}
		if len(affected) == 0 {
			return nil
		}
		res := mutate(tx.Where("user_id = ? AND id IN ?", owner, affected))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected != int64(len(affected)) {
			return errors.Newf("batch mutated %d rows, expected %d", res.RowsAffected, len(affected))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return affected, nil
}
