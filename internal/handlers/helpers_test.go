package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/diewo77/invoice-desk/auth"
	"github.com/diewo77/invoice-desk/internal/models"
	"github.com/diewo77/invoice-desk/internal/store"
)

func setupTestDB(t *testing.T) (*gorm.DB, *store.Store) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(models.All()...))
	return db, store.New(db)
}

func createUser(t *testing.T, db *gorm.DB, email string) models.User {
	t.Helper()
	u := models.User{Email: email, Password: "x"}
	require.NoError(t, db.Create(&u).Error)
	return u
}

func createInvoice(t *testing.T, s *store.Store, owner uint, status models.InvoiceStatus, day, amount string) models.Invoice {
	t.Helper()
	d, err := time.Parse("2006-01-02", day)
	require.NoError(t, err)
	inv := models.Invoice{
		UserID:      owner,
		Status:      status,
		IssueDate:   datatypes.Date(d),
		TotalAmount: decimal.RequireFromString(amount),
	}
	require.NoError(t, s.CreateInvoice(context.Background(), &inv))
	return inv
}

// request builds a request carrying uid as the authenticated user (0 means
// anonymous).
func request(method, target, body string, uid uint) *http.Request {
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, rd)
	req.Header.Set("Content-Type", "application/json")
	if uid != 0 {
		req = req.WithContext(auth.WithUserID(req.Context(), uid))
	}
	return req
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder, dst any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), dst), "body: %s", rr.Body.String())
}

type errorBody struct {
	Error   string `json:"error"`
	Details []struct {
		Field   string `json:"field"`
		Message string `json:"message"`
	} `json:"details"`
}

func (e errorBody) fields() []string {
	out := make([]string, 0, len(e.Details))
	for _, d := range e.Details {
		out = append(out, d.Field)
	}
	return out
}

var nopLog = zap.NewNop()
