package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/diewo77/invoice-desk/internal/db"
)

func setupE2E(t *testing.T) (*App, *gorm.DB) {
	t.Helper()
	dbi, err := gorm.Open(sqlite.Open("file:e2e_"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.Migrate(dbi); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if err := db.Seed(dbi, "demo-password"); err != nil {
		t.Fatalf("seed: %v", err)
	}
	return NewApp(NewRouterConfig(dbi, "e2e-secret", zap.NewNop()), zap.NewNop()), dbi
}

func do(app *App, method, target, body string, cookie *http.Cookie) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rr := httptest.NewRecorder()
	app.ServeHTTP(rr, req)
	return rr
}

func login(t *testing.T, app *App) *http.Cookie {
	t.Helper()
	rr := do(app, http.MethodPost, "/api/auth/login", `{"email":"`+db.DemoEmail+`","password":"demo-password"}`, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("login: %d %s", rr.Code, rr.Body.String())
	}
	for _, c := range rr.Result().Cookies() {
		if c.Name == "session" {
			return c
		}
	}
	t.Fatal("no session cookie")
	return nil
}

func TestHealthE2E(t *testing.T) {
	app, _ := setupE2E(t)
	for _, path := range []string{"/health", "/healthz"} {
		rr := do(app, http.MethodGet, path, "", nil)
		if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), `"ok"`) {
			t.Fatalf("%s: %d %s", path, rr.Code, rr.Body.String())
		}
	}
}

func TestProtectedRoutesRequireSession(t *testing.T) {
	app, _ := setupE2E(t)
	routes := []struct{ method, path string }{
		{http.MethodGet, "/api/clients"},
		{http.MethodGet, "/api/invoices"},
		{http.MethodPost, "/api/invoices/bulk"},
		{http.MethodPost, "/api/clients/bulk"},
		{http.MethodGet, "/api/dashboard/metrics"},
		{http.MethodGet, "/api/dashboard/revenue"},
	}
	for _, rt := range routes {
		rr := do(app, rt.method, rt.path, "", nil)
		if rr.Code != http.StatusUnauthorized {
			t.Fatalf("%s %s: expected 401 got %d", rt.method, rt.path, rr.Code)
		}
		if rr.Body.String() != `{"error":"Unauthorized"}` {
			t.Fatalf("%s %s: unexpected body %s", rt.method, rt.path, rr.Body.String())
		}
	}
}

func TestDashboardAndBulkE2E(t *testing.T) {
	app, _ := setupE2E(t)
	sess := login(t, app)

	rr := do(app, http.MethodGet, "/api/dashboard/revenue?period=monthly", "", sess)
	if rr.Code != http.StatusOK {
		t.Fatalf("revenue: %d %s", rr.Code, rr.Body.String())
	}
	want := `{"chartData":[{"period":"2024-01","revenue":150},{"period":"2024-02","revenue":75}]}`
	if rr.Body.String() != want {
		t.Fatalf("revenue body = %s, want %s", rr.Body.String(), want)
	}

	rr = do(app, http.MethodGet, "/api/dashboard/metrics", "", sess)
	if rr.Body.String() != `{"totalInvoices":5,"paidInvoices":3,"pendingInvoices":1,"totalRevenue":225}` {
		t.Fatalf("metrics body = %s", rr.Body.String())
	}

	rr = do(app, http.MethodGet, "/api/invoices?status=sent,draft", "", sess)
	var open []struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &open); err != nil || len(open) != 2 {
		t.Fatalf("list: %d %s", rr.Code, rr.Body.String())
	}

	body := `{"action":"set_status","newStatus":"paid","targetIds":["` + open[0].ID + `","` + open[1].ID + `"]}`
	rr = do(app, http.MethodPost, "/api/invoices/bulk", body, sess)
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), `"affected":2`) {
		t.Fatalf("bulk: %d %s", rr.Code, rr.Body.String())
	}

	rr = do(app, http.MethodGet, "/api/dashboard/metrics", "", sess)
	if rr.Body.String() != `{"totalInvoices":5,"paidInvoices":5,"pendingInvoices":0,"totalRevenue":545.5}` {
		t.Fatalf("metrics after bulk = %s", rr.Body.String())
	}

	rr = do(app, http.MethodGet, "/api/dashboard/revenue?period=yearly", "", sess)
	if rr.Body.String() != `{"chartData":[{"period":"2024","revenue":545.5}]}` {
		t.Fatalf("yearly after bulk = %s", rr.Body.String())
	}
}

func TestUnknownRouteE2E(t *testing.T) {
	app, _ := setupE2E(t)
	rr := do(app, http.MethodGet, "/nope", "", nil)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", rr.Code)
	}
}

func TestSessionSurvivesDatabaseOutageE2E(t *testing.T) {
	app, dbi := setupE2E(t)
	sess := login(t, app)

	sqlDB, err := dbi.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	if err := sqlDB.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	rr := do(app, http.MethodGet, "/api/dashboard/metrics", "", sess)
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 got %d body=%s", rr.Code, rr.Body.String())
	}
	if rr.Body.String() != `{"error":"Internal server error"}` {
		t.Fatalf("unexpected body %s", rr.Body.String())
	}
	if sc := rr.Header().Get("Set-Cookie"); sc != "" {
		t.Fatalf("session cookie cleared on storage failure: %q", sc)
	}
}
