// Package integration provides end-to-end tests for the Sales Tracker API.
// The full stack (router, handlers, services, repositories) runs against
// an in-memory SQLite database; only the network listener is test-local.
package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/prn-tf/salestracker/internal/auth"
	"github.com/prn-tf/salestracker/internal/handler"
	"github.com/prn-tf/salestracker/internal/repository/sqlite"
	"github.com/prn-tf/salestracker/internal/service"
)

// testServer bundles the HTTP test server with the services behind it,
// so tests can reach past the API where needed (e.g. deactivating users).
type testServer struct {
	srv   *httptest.Server
	users *service.UserService
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	ctx := context.Background()
	logger := zerolog.Nop()

	db, err := sqlite.NewDB(ctx, sqlite.DefaultConfig(":memory:"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, db.Migrate(ctx))

	userRepo := sqlite.NewUserRepository(db)
	tokenService := service.NewTokenService(service.TokenServiceConfig{
		Secret:     "integration-test-secret-key-000000000001",
		Issuer:     "salestracker-test",
		AccessTTL:  time.Minute,
		RefreshTTL: time.Hour,
	}, userRepo, logger)
	userService := service.NewUserService(userRepo, service.PasswordPolicy{MinLength: 8}, 4, logger)
	saleService := service.NewSaleService(sqlite.NewSaleRepository(db), logger)

	router := handler.NewRouter(handler.RouterConfig{
		AuthHandler:    handler.NewAuthHandler(userService, tokenService, logger),
		SaleHandler:    handler.NewSaleHandler(saleService, userService, logger),
		AuthMiddleware: auth.Middleware(tokenService, logger),
		DB:             db,
		MaxBodySize:    1 << 20,
		Logger:         logger,
	})

	srv := httptest.NewServer(router.Handler())
	t.Cleanup(srv.Close)

	return &testServer{srv: srv, users: userService}
}

// do sends a JSON request and decodes the JSON response into a generic map.
func (ts *testServer) do(t *testing.T, method, path, token string, body any) (int, map[string]any) {
	t.Helper()

	var reqBody io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reqBody = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, ts.srv.URL+path, reqBody)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := ts.srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var decoded map[string]any
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &decoded), "response body: %s", raw)
	}
	return resp.StatusCode, decoded
}

// register creates a user through the API and returns the access and
// refresh tokens.
func (ts *testServer) register(t *testing.T, email, username string) (access, refresh string) {
	t.Helper()

	status, body := ts.do(t, http.MethodPost, "/api/auth/register/", "", map[string]any{
		"email":            email,
		"username":         username,
		"password":         "s3cret-pass",
		"confirm_password": "s3cret-pass",
	})
	require.Equal(t, http.StatusCreated, status, "register response: %v", body)

	tokens, ok := body["tokens"].(map[string]any)
	require.True(t, ok, "expected tokens in register response")
	return tokens["access"].(string), tokens["refresh"].(string)
}

// createSale creates a sale through the API and returns its ID.
func (ts *testServer) createSale(t *testing.T, token string, sale map[string]any) int64 {
	t.Helper()

	status, body := ts.do(t, http.MethodPost, "/api/sales/create/", token, sale)
	require.Equal(t, http.StatusCreated, status, "create sale response: %v", body)

	created, ok := body["sale"].(map[string]any)
	require.True(t, ok, "expected sale in create response")
	return int64(created["id"].(float64))
}

// =============================================================================
// Registration and login
// =============================================================================

func TestRegister(t *testing.T) {
	ts := newTestServer(t)

	status, body := ts.do(t, http.MethodPost, "/api/auth/register/", "", map[string]any{
		"email":            "alice@example.com",
		"username":         "alice",
		"password":         "s3cret-pass",
		"confirm_password": "s3cret-pass",
		"company":          "Acme Inc",
		"plan_type":        "premium",
	})

	require.Equal(t, http.StatusCreated, status)
	require.Equal(t, "User created successfully", body["message"])

	user := body["user"].(map[string]any)
	require.Equal(t, "alice@example.com", user["email"])
	require.Equal(t, "alice", user["username"])
	require.Equal(t, "Acme Inc", user["company"])
	require.Equal(t, "premium", user["plan_type"])

	// Password material must never appear in any response.
	raw, _ := json.Marshal(body)
	require.NotContains(t, strings.ToLower(string(raw)), "password")

	tokens := body["tokens"].(map[string]any)
	require.NotEmpty(t, tokens["access"])
	require.NotEmpty(t, tokens["refresh"])
}

func TestRegister_Validation(t *testing.T) {
	ts := newTestServer(t)
	ts.register(t, "taken@example.com", "taken")

	tests := []struct {
		name      string
		body      map[string]any
		wantField string
	}{
		{
			name: "duplicate email",
			body: map[string]any{
				"email": "taken@example.com", "username": "fresh",
				"password": "s3cret-pass", "confirm_password": "s3cret-pass",
			},
			wantField: "email",
		},
		{
			name: "duplicate username",
			body: map[string]any{
				"email": "fresh@example.com", "username": "taken",
				"password": "s3cret-pass", "confirm_password": "s3cret-pass",
			},
			wantField: "username",
		},
		{
			name: "password mismatch",
			body: map[string]any{
				"email": "fresh@example.com", "username": "fresh",
				"password": "s3cret-pass", "confirm_password": "different",
			},
			wantField: "password",
		},
		{
			name: "weak password",
			body: map[string]any{
				"email": "fresh@example.com", "username": "fresh",
				"password": "short", "confirm_password": "short",
			},
			wantField: "password",
		},
		{
			name: "invalid email",
			body: map[string]any{
				"email": "not-an-email", "username": "fresh",
				"password": "s3cret-pass", "confirm_password": "s3cret-pass",
			},
			wantField: "email",
		},
		{
			name:      "missing fields",
			body:      map[string]any{},
			wantField: "email",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := ts.do(t, http.MethodPost, "/api/auth/register/", "", tt.body)
			require.Equal(t, http.StatusBadRequest, status)
			require.Contains(t, body, tt.wantField)
		})
	}
}

func TestLogin(t *testing.T) {
	ts := newTestServer(t)
	ts.register(t, "alice@example.com", "alice")

	status, body := ts.do(t, http.MethodPost, "/api/auth/login/", "", map[string]any{
		"email":    "alice@example.com",
		"password": "s3cret-pass",
	})

	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "Login successful", body["message"])
	require.NotEmpty(t, body["tokens"].(map[string]any)["access"])
}

func TestLogin_FailuresAreIndistinguishable(t *testing.T) {
	ts := newTestServer(t)
	ts.register(t, "alice@example.com", "alice")
	ts.register(t, "carol@example.com", "carol")

	// Deactivate carol directly; the API has no deactivation endpoint.
	carol, err := ts.users.Authenticate(context.Background(), "carol@example.com", "s3cret-pass")
	require.NoError(t, err)
	require.NoError(t, ts.users.SetActive(context.Background(), carol.ID, false))

	cases := []map[string]any{
		{"email": "nobody@example.com", "password": "s3cret-pass"}, // unknown email
		{"email": "alice@example.com", "password": "wrong-pass12"}, // wrong password
		{"email": "carol@example.com", "password": "s3cret-pass"},  // inactive account
	}

	var bodies []map[string]any
	for _, c := range cases {
		status, body := ts.do(t, http.MethodPost, "/api/auth/login/", "", c)
		require.Equal(t, http.StatusUnauthorized, status)
		bodies = append(bodies, body)
	}

	for _, body := range bodies {
		require.Equal(t, bodies[0], body, "all login failures must share one response shape")
	}
	require.Equal(t, "Invalid credentials", bodies[0]["error"])
}

// =============================================================================
// Tokens
// =============================================================================

func TestTokenVerifyAndProfile(t *testing.T) {
	ts := newTestServer(t)
	access, _ := ts.register(t, "alice@example.com", "alice")

	status, body := ts.do(t, http.MethodPost, "/api/auth/verify/", access, nil)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "Token is valid", body["message"])

	status, body = ts.do(t, http.MethodGet, "/api/auth/profile/", access, nil)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "alice@example.com", body["email"])

	raw, _ := json.Marshal(body)
	require.NotContains(t, strings.ToLower(string(raw)), "password")
}

func TestTokenRefresh(t *testing.T) {
	ts := newTestServer(t)
	access, refresh := ts.register(t, "alice@example.com", "alice")

	status, body := ts.do(t, http.MethodPost, "/api/auth/refresh/", "", map[string]any{
		"refresh": refresh,
	})
	require.Equal(t, http.StatusOK, status)

	newAccess, _ := body["access"].(string)
	require.NotEmpty(t, newAccess)
	require.NotEmpty(t, body["refresh"])

	status, _ = ts.do(t, http.MethodGet, "/api/auth/profile/", newAccess, nil)
	require.Equal(t, http.StatusOK, status)

	// A refresh token must not authorize API calls.
	status, body = ts.do(t, http.MethodGet, "/api/auth/profile/", refresh, nil)
	require.Equal(t, http.StatusUnauthorized, status)
	require.Equal(t, "Token is invalid", body["error"])

	// An access token must not be accepted for refresh.
	status, _ = ts.do(t, http.MethodPost, "/api/auth/refresh/", "", map[string]any{
		"refresh": access,
	})
	require.Equal(t, http.StatusUnauthorized, status)
}

func TestTokenRefresh_AfterDeactivation(t *testing.T) {
	ts := newTestServer(t)
	_, refresh := ts.register(t, "carol@example.com", "carol")

	carol, err := ts.users.Authenticate(context.Background(), "carol@example.com", "s3cret-pass")
	require.NoError(t, err)
	require.NoError(t, ts.users.SetActive(context.Background(), carol.ID, false))

	// A deactivated account must not be able to mint new tokens.
	status, body := ts.do(t, http.MethodPost, "/api/auth/refresh/", "", map[string]any{
		"refresh": refresh,
	})
	require.Equal(t, http.StatusUnauthorized, status)
	require.Equal(t, "Token is invalid", body["error"])

	// Reactivation restores the refresh flow.
	require.NoError(t, ts.users.SetActive(context.Background(), carol.ID, true))
	status, body = ts.do(t, http.MethodPost, "/api/auth/refresh/", "", map[string]any{
		"refresh": refresh,
	})
	require.Equal(t, http.StatusOK, status)
	require.NotEmpty(t, body["access"])
}

func TestProtectedEndpointsRequireAuth(t *testing.T) {
	ts := newTestServer(t)

	paths := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/sales/"},
		{http.MethodPost, "/api/sales/create/"},
		{http.MethodGet, "/api/sales/1/"},
		{http.MethodGet, "/api/sales/statistics/"},
		{http.MethodGet, "/api/auth/profile/"},
	}

	for _, p := range paths {
		status, body := ts.do(t, p.method, p.path, "", nil)
		require.Equal(t, http.StatusUnauthorized, status, "%s %s", p.method, p.path)
		require.Equal(t, "Authentication credentials were not provided", body["error"])
	}
}

// =============================================================================
// Sales CRUD
// =============================================================================

func TestSaleCreate(t *testing.T) {
	ts := newTestServer(t)
	access, _ := ts.register(t, "alice@example.com", "alice")

	status, body := ts.do(t, http.MethodPost, "/api/sales/create/", access, map[string]any{
		"title":          "Gaming Laptop",
		"description":    "High-end model",
		"price":          1234.5,
		"customer_name":  "Bob Buyer",
		"customer_email": "bob@example.com",
	})

	require.Equal(t, http.StatusCreated, status)
	require.Equal(t, "Sale created successfully", body["message"])

	sale := body["sale"].(map[string]any)
	require.Equal(t, "Gaming Laptop", sale["title"])
	require.Equal(t, "pending", sale["status"], "status must default to pending")
	require.Equal(t, "$1,234.50", sale["formatted_price"])
	require.Equal(t, "warning", sale["status_badge_class"])
	require.Equal(t, "alice@example.com", sale["user_email"])
}

func TestSaleCreate_Validation(t *testing.T) {
	ts := newTestServer(t)
	access, _ := ts.register(t, "alice@example.com", "alice")

	tests := []struct {
		name      string
		body      map[string]any
		wantField string
	}{
		{name: "missing title", body: map[string]any{"price": 10}, wantField: "title"},
		{name: "missing price", body: map[string]any{"title": "Laptop"}, wantField: "price"},
		{name: "zero price", body: map[string]any{"title": "Laptop", "price": 0}, wantField: "price"},
		{name: "negative price", body: map[string]any{"title": "Laptop", "price": -5}, wantField: "price"},
		{name: "invalid status", body: map[string]any{"title": "Laptop", "price": 10, "status": "shipped"}, wantField: "status"},
		{name: "title too long", body: map[string]any{"title": strings.Repeat("x", 201), "price": 10}, wantField: "title"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := ts.do(t, http.MethodPost, "/api/sales/create/", access, tt.body)
			require.Equal(t, http.StatusBadRequest, status)
			require.Contains(t, body, tt.wantField)
		})
	}
}

func TestSaleGet_CrossTenantIndistinguishable(t *testing.T) {
	ts := newTestServer(t)
	aliceToken, _ := ts.register(t, "alice@example.com", "alice")
	malloryToken, _ := ts.register(t, "mallory@example.com", "mallory")

	saleID := ts.createSale(t, aliceToken, map[string]any{"title": "Laptop", "price": 999.99})

	status, _ := ts.do(t, http.MethodGet, fmt.Sprintf("/api/sales/%d/", saleID), aliceToken, nil)
	require.Equal(t, http.StatusOK, status)

	// Mallory probing alice's sale gets the same 404 as for an absent ID.
	foreignStatus, foreignBody := ts.do(t, http.MethodGet, fmt.Sprintf("/api/sales/%d/", saleID), malloryToken, nil)
	missingStatus, missingBody := ts.do(t, http.MethodGet, "/api/sales/999999/", malloryToken, nil)

	require.Equal(t, http.StatusNotFound, foreignStatus)
	require.Equal(t, http.StatusNotFound, missingStatus)
	require.Equal(t, missingBody, foreignBody, "foreign and missing sales must be indistinguishable")
}

func TestSaleUpdate(t *testing.T) {
	ts := newTestServer(t)
	access, _ := ts.register(t, "alice@example.com", "alice")
	saleID := ts.createSale(t, access, map[string]any{
		"title":       "Laptop",
		"description": "Original description",
		"price":       999.99,
	})
	path := fmt.Sprintf("/api/sales/%d/update/", saleID)

	// PATCH changes only the supplied fields.
	status, body := ts.do(t, http.MethodPatch, path, access, map[string]any{"status": "completed"})
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "Sale updated successfully", body["message"])

	sale := body["sale"].(map[string]any)
	require.Equal(t, "completed", sale["status"])
	require.Equal(t, "Laptop", sale["title"])
	require.Equal(t, "Original description", sale["description"])
	require.Equal(t, "success", sale["status_badge_class"])

	// PUT requires the required fields.
	status, body = ts.do(t, http.MethodPut, path, access, map[string]any{"status": "pending"})
	require.Equal(t, http.StatusBadRequest, status)
	require.Contains(t, body, "title")
	require.Contains(t, body, "price")

	status, body = ts.do(t, http.MethodPut, path, access, map[string]any{
		"title": "Desktop",
		"price": 1499.5,
	})
	require.Equal(t, http.StatusOK, status)
	sale = body["sale"].(map[string]any)
	require.Equal(t, "Desktop", sale["title"])
	require.Equal(t, "$1,499.50", sale["formatted_price"])
}

func TestSaleUpdate_CrossTenant(t *testing.T) {
	ts := newTestServer(t)
	aliceToken, _ := ts.register(t, "alice@example.com", "alice")
	malloryToken, _ := ts.register(t, "mallory@example.com", "mallory")

	saleID := ts.createSale(t, aliceToken, map[string]any{"title": "Laptop", "price": 999.99})
	path := fmt.Sprintf("/api/sales/%d/update/", saleID)

	status, _ := ts.do(t, http.MethodPatch, path, malloryToken, map[string]any{"status": "cancelled"})
	require.Equal(t, http.StatusNotFound, status)

	// The sale must be untouched.
	status, body := ts.do(t, http.MethodGet, fmt.Sprintf("/api/sales/%d/", saleID), aliceToken, nil)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "pending", body["status"])
}

func TestSaleDelete(t *testing.T) {
	ts := newTestServer(t)
	aliceToken, _ := ts.register(t, "alice@example.com", "alice")
	malloryToken, _ := ts.register(t, "mallory@example.com", "mallory")

	saleID := ts.createSale(t, aliceToken, map[string]any{"title": "Laptop", "price": 999.99})
	path := fmt.Sprintf("/api/sales/%d/delete/", saleID)

	status, _ := ts.do(t, http.MethodDelete, path, malloryToken, nil)
	require.Equal(t, http.StatusNotFound, status, "cross-tenant delete must look like a missing sale")

	status, body := ts.do(t, http.MethodDelete, path, aliceToken, nil)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "Sale deleted successfully", body["message"])

	status, _ = ts.do(t, http.MethodGet, fmt.Sprintf("/api/sales/%d/", saleID), aliceToken, nil)
	require.Equal(t, http.StatusNotFound, status)
}

// =============================================================================
// Listing and statistics
// =============================================================================

func TestSaleList(t *testing.T) {
	ts := newTestServer(t)
	aliceToken, _ := ts.register(t, "alice@example.com", "alice")
	malloryToken, _ := ts.register(t, "mallory@example.com", "mallory")

	ts.createSale(t, aliceToken, map[string]any{"title": "Gaming Laptop", "price": 999.99, "status": "pending"})
	ts.createSale(t, aliceToken, map[string]any{"title": "Office Chair", "price": 150, "status": "completed", "customer_name": "Laptop Larry"})
	ts.createSale(t, aliceToken, map[string]any{"title": "Monitor", "price": 300, "status": "completed"})
	ts.createSale(t, aliceToken, map[string]any{"title": "100% wool blanket", "price": 80})
	ts.createSale(t, malloryToken, map[string]any{"title": "Laptop", "price": 500})

	tests := []struct {
		name       string
		query      string
		wantTitles int
	}{
		{name: "all owned sales", query: "", wantTitles: 4},
		{name: "status filter", query: "?status=completed", wantTitles: 2},
		{name: "search matches title and customer name", query: "?search=laptop", wantTitles: 2},
		{name: "search and status combined", query: "?status=completed&search=laptop", wantTitles: 1},
		{name: "search case insensitive", query: "?search=LAPTOP", wantTitles: 2},
		{name: "search matches wildcards literally", query: "?search=100%25", wantTitles: 1},
		{name: "invalid status matches nothing", query: "?status=shipped", wantTitles: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := ts.do(t, http.MethodGet, "/api/sales/"+tt.query, aliceToken, nil)
			require.Equal(t, http.StatusOK, status)

			require.Equal(t, float64(tt.wantTitles), body["total_count"])
			sales, _ := body["sales"].([]any)
			require.Len(t, sales, tt.wantTitles)
			for _, s := range sales {
				require.NotEqual(t, float64(500), s.(map[string]any)["price"], "listing leaked another user's sale")
			}
		})
	}
}

func TestSaleList_NewestFirst(t *testing.T) {
	ts := newTestServer(t)
	access, _ := ts.register(t, "alice@example.com", "alice")

	first := ts.createSale(t, access, map[string]any{"title": "First", "price": 1})
	second := ts.createSale(t, access, map[string]any{"title": "Second", "price": 2})

	status, body := ts.do(t, http.MethodGet, "/api/sales/", access, nil)
	require.Equal(t, http.StatusOK, status)

	sales := body["sales"].([]any)
	require.Len(t, sales, 2)
	require.Equal(t, float64(second), sales[0].(map[string]any)["id"])
	require.Equal(t, float64(first), sales[1].(map[string]any)["id"])
}

func TestSaleStatistics(t *testing.T) {
	ts := newTestServer(t)
	aliceToken, _ := ts.register(t, "alice@example.com", "alice")
	malloryToken, _ := ts.register(t, "mallory@example.com", "mallory")

	ts.createSale(t, aliceToken, map[string]any{"title": "A", "price": 100, "status": "completed"})
	ts.createSale(t, aliceToken, map[string]any{"title": "B", "price": 250.5, "status": "completed"})
	ts.createSale(t, aliceToken, map[string]any{"title": "C", "price": 999, "status": "pending"})
	ts.createSale(t, aliceToken, map[string]any{"title": "D", "price": 42, "status": "cancelled"})
	ts.createSale(t, malloryToken, map[string]any{"title": "E", "price": 5000, "status": "completed"})

	status, body := ts.do(t, http.MethodGet, "/api/sales/statistics/", aliceToken, nil)
	require.Equal(t, http.StatusOK, status)

	require.Equal(t, float64(4), body["total_sales"])
	require.Equal(t, 350.5, body["total_revenue"], "revenue must sum completed sales only")
	require.Equal(t, float64(1), body["pending_sales"])
	require.Equal(t, float64(2), body["completed_sales"])
	require.Equal(t, float64(1), body["cancelled_sales"])
}

func TestSaleStatistics_Empty(t *testing.T) {
	ts := newTestServer(t)
	access, _ := ts.register(t, "alice@example.com", "alice")

	status, body := ts.do(t, http.MethodGet, "/api/sales/statistics/", access, nil)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, float64(0), body["total_sales"])
	require.Equal(t, float64(0), body["total_revenue"])
}

// =============================================================================
// Health
// =============================================================================

func TestHealth(t *testing.T) {
	ts := newTestServer(t)

	status, body := ts.do(t, http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "healthy", body["status"])
}
