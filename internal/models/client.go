package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Client represents a customer of the owning user.
type Client struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// UserID is the owner of this client (for multi-tenant isolation)
	UserID uint `gorm:"index;not null" json:"-"`
	User   User `gorm:"foreignKey:UserID" json:"-"`

	Name    string `gorm:"size:255;not null" json:"name"`
	Email   string `gorm:"size:255" json:"email,omitempty"`
	Phone   string `gorm:"size:50" json:"phone,omitempty"`
	Company string `gorm:"size:255" json:"company,omitempty"`

	Address    string `gorm:"size:500" json:"address,omitempty"`
	City       string `gorm:"size:100" json:"city,omitempty"`
	PostalCode string `gorm:"size:20" json:"postal_code,omitempty"`
	Country    string `gorm:"size:100" json:"country,omitempty"`
}

// BeforeCreate assigns the client id.
func (c *Client) BeforeCreate(_ *gorm.DB) error {
	newID(&c.ID)
	return nil
}

// GetUserID returns the owning user id.
func (c *Client) GetUserID() uint {
	return c.UserID
}
