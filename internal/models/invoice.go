package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// InvoiceStatus represents the status of an invoice.
type InvoiceStatus string

const (
	InvoiceStatusDraft     InvoiceStatus = "draft"
	InvoiceStatusSent      InvoiceStatus = "sent"
	InvoiceStatusPaid      InvoiceStatus = "paid"
	InvoiceStatusOverdue   InvoiceStatus = "overdue"
	InvoiceStatusCancelled InvoiceStatus = "cancelled"
)

// InvoiceStatuses lists every valid status, in lifecycle order.
var InvoiceStatuses = []InvoiceStatus{
	InvoiceStatusDraft,
	InvoiceStatusSent,
	InvoiceStatusPaid,
	InvoiceStatusOverdue,
	InvoiceStatusCancelled,
}

// Valid reports whether s is one of the known statuses.
func (s InvoiceStatus) Valid() bool {
	for _, known := range InvoiceStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// IsPending is true for invoices that were issued but not settled yet.
func (s InvoiceStatus) IsPending() bool {
	return s == InvoiceStatusSent || s == InvoiceStatusOverdue
}

// Invoice represents a billing invoice.
type Invoice struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// UserID is the owner of this invoice (for multi-tenant isolation)
	UserID uint `gorm:"index;not null" json:"-"`
	User   User `gorm:"foreignKey:UserID" json:"-"`

	Number string `gorm:"size:50" json:"number,omitempty"`

	// Optional client reference
	ClientID *uuid.UUID `gorm:"type:uuid;index" json:"client_id,omitempty"`
	Client   *Client    `gorm:"foreignKey:ClientID" json:"client,omitempty"`

	// IssueDate is a calendar date; its components are used as stored.
	IssueDate datatypes.Date  `gorm:"not null" json:"issue_date"`
	DueDate   *datatypes.Date `json:"due_date,omitempty"`

	Status      InvoiceStatus   `gorm:"size:20;not null;default:'draft';index" json:"status"`
	TotalAmount decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"total_amount"`

	Notes string `gorm:"type:text" json:"notes,omitempty"`
}

// BeforeCreate assigns the invoice id and the default status.
func (i *Invoice) BeforeCreate(_ *gorm.DB) error {
	newID(&i.ID)
	if i.Status == "" {
		i.Status = InvoiceStatusDraft
	}
	return nil
}

// GetUserID returns the owning user id.
func (i *Invoice) GetUserID() uint {
	return i.UserID
}

// IsPaid returns true if the invoice has been settled.
func (i *Invoice) IsPaid() bool {
	return i.Status == InvoiceStatusPaid
}

// Issued returns the issue date as a time.Time in its stored location.
func (i *Invoice) Issued() time.Time {
	return time.Time(i.IssueDate)
}
