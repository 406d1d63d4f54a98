package handlers

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diewo77/invoice-desk/internal/bulk"
	"github.com/diewo77/invoice-desk/internal/models"
)

type bulkBody struct {
	Message     string      `json:"message"`
	Affected    int         `json:"affected"`
	AffectedIDs []uuid.UUID `json:"affectedIds"`
}

func idsJSON(ids ...uuid.UUID) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = `"` + id.String() + `"`
	}
	return "[" + strings.Join(parts, ",") + "]"
}

func TestBulkInvoicesDeleteOnlyOwned(t *testing.T) {
	db, s := setupTestDB(t)
	alice := createUser(t, db, "alice@test")
	bob := createUser(t, db, "bob@test")
	a1 := createInvoice(t, s, alice.ID, models.InvoiceStatusDraft, "2024-01-01", "10")
	a2 := createInvoice(t, s, alice.ID, models.InvoiceStatusSent, "2024-01-02", "20")
	b1 := createInvoice(t, s, bob.ID, models.InvoiceStatusDraft, "2024-01-03", "30")

	h := NewBulkHandler(bulk.NewInvoiceGate(s), bulk.NewClientGate(s), nopLog)
	rr := httptest.NewRecorder()
	body := `{"action":"delete","targetIds":` + idsJSON(a1.ID, a2.ID, b1.ID) + `}`
	h.Invoices(rr, request(http.MethodPost, "/api/invoices/bulk", body, alice.ID))

	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var got bulkBody
	decodeBody(t, rr, &got)
	assert.Equal(t, 2, got.Affected)
	assert.ElementsMatch(t, []uuid.UUID{a1.ID, a2.ID}, got.AffectedIDs)
	assert.Equal(t, "Deleted 2 invoice(s)", got.Message)

	var left int64
	db.Model(&models.Invoice{}).Where("user_id = ?", bob.ID).Count(&left)
	assert.EqualValues(t, 1, left)
}

func TestBulkInvoicesSetStatus(t *testing.T) {
	db, s := setupTestDB(t)
	alice := createUser(t, db, "alice@test")
	a1 := createInvoice(t, s, alice.ID, models.InvoiceStatusDraft, "2024-01-01", "10")
	a2 := createInvoice(t, s, alice.ID, models.InvoiceStatusSent, "2024-01-02", "20")
	h := NewBulkHandler(bulk.NewInvoiceGate(s), bulk.NewClientGate(s), nopLog)
	body := `{"action":"set_status","newStatus":"paid","targetIds":` + idsJSON(a1.ID, a2.ID, uuid.New()) + `}`

	for range 2 {
		rr := httptest.NewRecorder()
		h.Invoices(rr, request(http.MethodPost, "/api/invoices/bulk", body, alice.ID))
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
		var got bulkBody
		decodeBody(t, rr, &got)
		assert.Equal(t, 2, got.Affected)
		assert.Equal(t, "Updated 2 invoice(s) to paid", got.Message)
	}

	var paid int64
	db.Model(&models.Invoice{}).Where("status = ?", models.InvoiceStatusPaid).Count(&paid)
	assert.EqualValues(t, 2, paid)
}

func TestBulkRejections(t *testing.T) {
	db, s := setupTestDB(t)
	alice := createUser(t, db, "alice@test")
	h := NewBulkHandler(bulk.NewInvoiceGate(s), bulk.NewClientGate(s), nopLog)

	many := make([]uuid.UUID, 51)
	for i := range many {
		many[i] = uuid.New()
	}

	tests := []struct {
		name    string
		clients bool
		body    string
		uid     uint
		status  int
		field   string
		message string
	}{
		{name: "anonymous", body: `{"action":"delete","targetIds":` + idsJSON(uuid.New()) + `}`, status: http.StatusUnauthorized},
		{name: "set_status without newStatus", body: `{"action":"set_status","targetIds":` + idsJSON(uuid.New()) + `}`, uid: alice.ID, status: http.StatusBadRequest, field: "newStatus"},
		{name: "no ids", body: `{"action":"delete","targetIds":[]}`, uid: alice.ID, status: http.StatusBadRequest, field: "targetIds"},
		{name: "too many ids", body: `{"action":"delete","targetIds":` + idsJSON(many...) + `}`, uid: alice.ID, status: http.StatusBadRequest, field: "targetIds", message: "Maximum 50 items allowed"},
		{name: "unknown action", body: `{"action":"archive","targetIds":` + idsJSON(uuid.New()) + `}`, uid: alice.ID, status: http.StatusBadRequest, field: "action"},
		{name: "bad status", body: `{"action":"set_status","newStatus":"lost","targetIds":` + idsJSON(uuid.New()) + `}`, uid: alice.ID, status: http.StatusBadRequest, field: "newStatus"},
		{name: "clients cannot set status", clients: true, body: `{"action":"set_status","newStatus":"paid","targetIds":` + idsJSON(uuid.New()) + `}`, uid: alice.ID, status: http.StatusBadRequest, field: "action"},
		{name: "malformed", body: `{`, uid: alice.ID, status: http.StatusBadRequest, field: "body"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			req := request(http.MethodPost, "/bulk", tt.body, tt.uid)
			if tt.clients {
				h.Clients(rr, req)
			} else {
				h.Invoices(rr, req)
			}
			require.Equal(t, tt.status, rr.Code, rr.Body.String())
			var got errorBody
			decodeBody(t, rr, &got)
			if tt.status == http.StatusUnauthorized {
				assert.Equal(t, "Unauthorized", got.Error)
				return
			}
			assert.Equal(t, "Invalid input", got.Error)
			assert.Contains(t, got.fields(), tt.field)
			if tt.message != "" {
				assert.Contains(t, rr.Body.String(), tt.message)
			}
		})
	}
}

func TestBulkClientsDelete(t *testing.T) {
	db, s := setupTestDB(t)
	alice := createUser(t, db, "alice@test")
	c := models.Client{UserID: alice.ID, Name: "Acme"}
	require.NoError(t, db.Create(&c).Error)
	h := NewBulkHandler(bulk.NewInvoiceGate(s), bulk.NewClientGate(s), nopLog)

	rr := httptest.NewRecorder()
	body := fmt.Sprintf(`{"action":"delete","targetIds":["%s","%s"]}`, c.ID, c.ID)
	h.Clients(rr, request(http.MethodPost, "/api/clients/bulk", body, alice.ID))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var got bulkBody
	decodeBody(t, rr, &got)
	assert.Equal(t, 1, got.Affected)
	assert.Equal(t, "Deleted 1 client(s)", got.Message)
}

func TestBulkStorageFailureIsOpaque(t *testing.T) {
	db, s := setupTestDB(t)
	alice := createUser(t, db, "alice@test")
	require.NoError(t, db.Migrator().DropTable(&models.Invoice{}))
	h := NewBulkHandler(bulk.NewInvoiceGate(s), bulk.NewClientGate(s), nopLog)

	rr := httptest.NewRecorder()
	h.Invoices(rr, request(http.MethodPost, "/api/invoices/bulk", `{"action":"delete","targetIds":`+idsJSON(uuid.New())+`}`, alice.ID))
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.JSONEq(t, `{"error":"Internal server error"}`, rr.Body.String())
}
