// Package models holds the GORM entities persisted by the invoicing backend.
package models

import "github.com/google/uuid"

// newID assigns a random UUID when the primary key is still zero.
func newID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}

// All returns the entities handled by AutoMigrate, in dependency order.
func All() []any {
	return []any{&User{}, &Client{}, &Invoice{}}
}
