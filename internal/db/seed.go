package db

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/diewo77/invoice-desk/internal/models"
)

// DemoEmail is the account created by Seed.
const DemoEmail = "demo@invoices.local"

// Seed creates a demo user with a few clients and invoices. It does nothing
// when the demo user already exists.
func Seed(db *gorm.DB, password string) error {
	var existing models.User
	err := db.Where("email = ?", DemoEmail).First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	return db.Transaction(func(tx *gorm.DB) error {
		user := models.User{Email: DemoEmail, Name: "Demo", Password: string(hash)}
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		clients := []models.Client{
			{UserID: user.ID, Name: "Acme Corp", Email: "billing@acme.test", City: "Paris", Country: "France"},
			{UserID: user.ID, Name: "Globex", Email: "ap@globex.test", City: "Lyon", Country: "France"},
		}
		if err := tx.Create(&clients).Error; err != nil {
			return err
		}
		day := func(s string) datatypes.Date {
			t, _ := time.Parse("2006-01-02", s)
			return datatypes.Date(t)
		}
		invoices := []models.Invoice{
			{UserID: user.ID, ClientID: &clients[0].ID, Number: "INV-2024-0001", IssueDate: day("2024-01-15"), Status: models.InvoiceStatusPaid, TotalAmount: decimal.NewFromInt(100)},
			{UserID: user.ID, ClientID: &clients[0].ID, Number: "INV-2024-0002", IssueDate: day("2024-01-20"), Status: models.InvoiceStatusPaid, TotalAmount: decimal.NewFromInt(50)},
			{UserID: user.ID, ClientID: &clients[1].ID, Number: "INV-2024-0003", IssueDate: day("2024-02-01"), Status: models.InvoiceStatusPaid, TotalAmount: decimal.NewFromInt(75)},
			{UserID: user.ID, ClientID: &clients[1].ID, Number: "INV-2024-0004", IssueDate: day("2024-03-05"), Status: models.InvoiceStatusSent, TotalAmount: decimal.RequireFromString("240.50")},
			{UserID: user.ID, Number: "INV-2024-0005", IssueDate: day("2024-03-12"), Status: models.InvoiceStatusDraft, TotalAmount: decimal.RequireFromString("80.00")},
		}
		return tx.Create(&invoices).Error
	})
}
