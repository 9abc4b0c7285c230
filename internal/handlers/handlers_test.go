package handlers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"kosh/internal/handlers"
	"kosh/internal/middleware"
	"kosh/internal/repositories"
	"kosh/internal/routes"
	"kosh/internal/services/auth"
	"kosh/internal/services/moneyrequest"
	"kosh/internal/services/pin"
	"kosh/internal/services/transfer"
	"kosh/internal/services/user"
	"kosh/internal/services/wallet"
	"kosh/internal/testutil"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type harness struct {
	t   *testing.T
	app *fiber.App
}

func newHarness(t *testing.T) *harness {
	db := testutil.NewDB(t)
	store := repositories.NewStore(db)

	pins := pin.NewService(store, nil, pin.WithBcryptCost(bcrypt.MinCost))
	wallets := wallet.NewService(store, nil, nil)
	authService := auth.NewService(store.Users, "test-secret", time.Hour, nil)

	app := fiber.New()
	mw := middleware.NewAuthMiddleware(authService, handlers.AccessTokenCookie, nil)
	routes.SetupRoutes(app, routes.Handlers{
		Auth:          handlers.NewAuthHandler(authService, time.Hour, nil),
		Users:         handlers.NewUserHandler(user.NewService(store, nil, user.WithBcryptCost(bcrypt.MinCost)), wallets, pins, nil, nil),
		Wallet:        handlers.NewWalletHandler(transfer.NewService(store, pins, nil, nil, nil), nil),
		MoneyRequests: handlers.NewMoneyRequestHandler(moneyrequest.NewService(store, pins, nil), nil),
		Transactions:  handlers.NewTransactionHandler(wallets, nil),
		Health:        handlers.NewHealthHandler(db, nil),
	}, mw.Handler)

	return &harness{t: t, app: app}
}

func (h *harness) call(method, path, token string, body interface{}) (int, []byte) {
	h.t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(h.t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := h.app.Test(req, -1)
	require.NoError(h.t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(h.t, err)
	return resp.StatusCode, raw
}

func (h *harness) object(method, path, token string, body interface{}) (int, map[string]interface{}) {
	h.t.Helper()
	status, raw := h.call(method, path, token, body)
	var out map[string]interface{}
	require.NoError(h.t, json.Unmarshal(raw, &out), string(raw))
	return status, out
}

func (h *harness) list(path, token string) []interface{} {
	h.t.Helper()
	status, raw := h.call("GET", path, token, nil)
	require.Equal(h.t, fiber.StatusOK, status, string(raw))
	var out []interface{}
	require.NoError(h.t, json.Unmarshal(raw, &out), string(raw))
	return out
}

type account struct {
	token    string
	walletID string
}

// signup registers and logs in a user with PIN 1234.
func (h *harness) signup(email string) account {
	h.t.Helper()

	status, body := h.object("POST", "/api/users/signup", "", map[string]string{
		"email":      email,
		"first_name": "Test",
		"last_name":  "User",
		"password":   "correct-horse",
	})
	require.Equal(h.t, fiber.StatusCreated, status, body)
	walletID := body["user"].(map[string]interface{})["wallet_id"].(string)

	status, body = h.object("POST", "/api/users/login", "", map[string]string{
		"email":    email,
		"password": "correct-horse",
	})
	require.Equal(h.t, fiber.StatusOK, status, body)
	token := body["access_token"].(string)

	status, body = h.object("POST", "/api/users/set-pin", token, map[string]string{"pin": "1234"})
	require.Equal(h.t, fiber.StatusCreated, status, body)

	return account{token: token, walletID: walletID}
}

func (h *harness) credit(a account, amount int64, key string) {
	h.t.Helper()
	status, body := h.object("POST", "/api/wallet/credit", a.token, map[string]interface{}{
		"amount":          amount,
		"idempotency_key": key,
	})
	require.Equal(h.t, fiber.StatusCreated, status, body)
}

func TestWalletFlow(t *testing.T) {
	h := newHarness(t)
	alice := h.signup("alice@example.com")
	bob := h.signup("bob@example.com")

	credit := map[string]interface{}{"amount": 10000, "idempotency_key": "c1"}
	status, body := h.object("POST", "/api/wallet/credit", alice.token, credit)
	require.Equal(t, fiber.StatusCreated, status, body)
	assert.Equal(t, "100.00", body["balance"])
	firstTxn := body["transaction_id"]

	status, body = h.object("POST", "/api/wallet/credit", alice.token, credit)
	require.Equal(t, fiber.StatusOK, status, body)
	assert.Equal(t, true, body["replayed"])
	assert.Equal(t, firstTxn, body["transaction_id"])
	assert.Equal(t, "100.00", body["balance"])

	send := map[string]interface{}{
		"to":              "bob@example.com",
		"amount":          2500,
		"pin":             "1234",
		"idempotency_key": "t1",
	}
	status, body = h.object("POST", "/api/wallet/transfer", alice.token, send)
	require.Equal(t, fiber.StatusCreated, status, body)
	assert.NotEmpty(t, body["reference_id"])
	assert.Equal(t, "75.00", body["balance"])
	reference := body["reference_id"]

	status, body = h.object("POST", "/api/wallet/transfer", alice.token, send)
	require.Equal(t, fiber.StatusOK, status, body)
	assert.Equal(t, true, body["replayed"])
	assert.Equal(t, reference, body["reference_id"])

	entries := h.list("/api/wallet/transactions", alice.token)
	require.Len(t, entries, 2)
	latest := entries[0].(map[string]interface{})
	assert.Equal(t, "DEBIT", latest["type"])
	assert.Equal(t, "25.00", latest["amount"])
	assert.Equal(t, "bob@example.com", latest["counterparty_email"])
	assert.Equal(t, bob.walletID, latest["counterparty_wallet_id"])
	assert.Regexp(t, `^REF-[0-9A-F]{8}$`, latest["reference"])

	status, body = h.object("GET", "/api/wallet/transactions?page=1&limit=1", bob.token, nil)
	require.Equal(t, fiber.StatusOK, status, body)
	assert.Len(t, body["transactions"], 1)
	assert.Equal(t, float64(1), body["pagination"].(map[string]interface{})["total"])

	status, body = h.object("GET", "/api/users/balance", alice.token, nil)
	require.Equal(t, fiber.StatusOK, status, body)
	assert.Equal(t, "75.00", body["balance"])
	assert.Equal(t, alice.walletID, body["walletId"])
	assert.Equal(t, true, body["has_pin"])
}

func TestTransfer_Errors(t *testing.T) {
	h := newHarness(t)
	alice := h.signup("alice@example.com")
	h.signup("bob@example.com")
	h.credit(alice, 1000, "seed")

	tests := []struct {
		name   string
		body   map[string]interface{}
		status int
		code   string
	}{
		{"wrong pin", map[string]interface{}{"to": "bob@example.com", "amount": 100, "pin": "9999", "idempotency_key": "a"}, fiber.StatusBadRequest, "PIN_INVALID"},
		{"unknown recipient", map[string]interface{}{"to": "nobody@example.com", "amount": 100, "pin": "1234", "idempotency_key": "b"}, fiber.StatusNotFound, "RECIPIENT_NOT_FOUND"},
		{"self", map[string]interface{}{"to": "alice@example.com", "amount": 100, "pin": "1234", "idempotency_key": "c"}, fiber.StatusBadRequest, "SELF_TRANSFER_NOT_ALLOWED"},
		{"insufficient", map[string]interface{}{"to": "bob@example.com", "amount": 5000, "pin": "1234", "idempotency_key": "d"}, fiber.StatusBadRequest, "INSUFFICIENT_FUNDS"},
		{"non-positive amount", map[string]interface{}{"to": "bob@example.com", "amount": 0, "pin": "1234", "idempotency_key": "e"}, fiber.StatusBadRequest, "VALIDATION_ERROR"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := h.object("POST", "/api/wallet/transfer", alice.token, tt.body)
			assert.Equal(t, tt.status, status, body)
			assert.Equal(t, tt.code, body["code"])
			assert.NotEmpty(t, body["error"])
		})
	}

	status, body := h.object("POST", "/api/wallet/transfer", alice.token, map[string]interface{}{
		"to": "bob@example.com", "amount": 100, "pin": "0000", "idempotency_key": "f",
	})
	require.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, float64(2), body["remaining_attempts"])

	status, raw := h.call("POST", "/api/wallet/transfer", alice.token, nil)
	assert.Equal(t, fiber.StatusBadRequest, status, string(raw))
}

func TestMoneyRequestFlow(t *testing.T) {
	h := newHarness(t)
	alice := h.signup("alice@example.com")
	bob := h.signup("bob@example.com")
	h.credit(alice, 5000, "seed")

	status, body := h.object("POST", "/api/wallet/requests", bob.token, map[string]interface{}{
		"to":     alice.walletID,
		"amount": 1000,
		"note":   "lunch",
	})
	require.Equal(t, fiber.StatusCreated, status, body)
	requestID := body["request_id"].(string)

	status, body = h.object("GET", "/api/wallet/requests", alice.token, nil)
	require.Equal(t, fiber.StatusOK, status, body)
	incoming := body["incoming"].([]interface{})
	require.Len(t, incoming, 1)
	item := incoming[0].(map[string]interface{})
	assert.Equal(t, requestID, item["request_id"])
	assert.Equal(t, bob.walletID, item["from"])
	assert.Equal(t, "10.00", item["amount"])
	assert.Empty(t, body["outgoing"])

	path := "/api/wallet/requests/" + requestID + "/respond"

	status, body = h.object("POST", path, alice.token, map[string]string{"action": "MAYBE"})
	assert.Equal(t, fiber.StatusBadRequest, status, body)

	status, body = h.object("POST", path, bob.token, map[string]string{"action": "ACCEPT", "pin": "1234"})
	assert.Equal(t, fiber.StatusNotFound, status, body)

	status, body = h.object("POST", path, alice.token, map[string]string{"action": "accept", "pin": "1234"})
	require.Equal(t, fiber.StatusOK, status, body)
	assert.Equal(t, "ACCEPTED", body["status"])

	status, body = h.object("POST", path, alice.token, map[string]string{"action": "REJECT"})
	assert.Equal(t, fiber.StatusNotFound, status, body)
	assert.Equal(t, "INVALID_REQUEST", body["code"])

	status, body = h.object("GET", "/api/users/balance", bob.token, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "10.00", body["balance"])
}

func TestAuthentication(t *testing.T) {
	h := newHarness(t)
	alice := h.signup("alice@example.com")

	status, _ := h.call("GET", "/api/users/balance", "", nil)
	assert.Equal(t, fiber.StatusUnauthorized, status)

	status, _ = h.call("GET", "/api/users/balance", "garbage", nil)
	assert.Equal(t, fiber.StatusUnauthorized, status)

	status, body := h.object("POST", "/api/users/login", "", map[string]string{
		"email": "alice@example.com", "password": "wrong-password",
	})
	assert.Equal(t, fiber.StatusUnauthorized, status, body)

	status, body = h.object("POST", "/api/users/logout", alice.token, nil)
	require.Equal(t, fiber.StatusOK, status, body)

	status, _ = h.call("GET", "/api/users/balance", alice.token, nil)
	assert.Equal(t, fiber.StatusUnauthorized, status)
}

func TestSignup_Errors(t *testing.T) {
	h := newHarness(t)
	h.signup("alice@example.com")

	status, body := h.object("POST", "/api/users/signup", "", map[string]string{
		"email": "Alice@example.com", "first_name": "A", "last_name": "B", "password": "correct-horse",
	})
	assert.Equal(t, fiber.StatusConflict, status, body)
	assert.Equal(t, "EMAIL_TAKEN", body["code"])

	status, body = h.object("POST", "/api/users/signup", "", map[string]string{
		"email": "carol@example.com", "first_name": "C", "last_name": "D", "password": "123",
	})
	assert.Equal(t, fiber.StatusBadRequest, status, body)
	assert.Equal(t, "VALIDATION_ERROR", body["code"])
}

func TestSetPin_RejectsBadFormat(t *testing.T) {
	h := newHarness(t)
	alice := h.signup("alice@example.com")

	status, body := h.object("POST", "/api/users/set-pin", alice.token, map[string]string{"pin": "12ab"})
	assert.Equal(t, fiber.StatusBadRequest, status, body)
}

func TestSearch(t *testing.T) {
	h := newHarness(t)
	alice := h.signup("alice@example.com")
	h.signup("alicia@example.com")

	results := h.list("/api/users/search?q=ALI", alice.token)
	require.Len(t, results, 1)
	assert.Equal(t, "alicia@example.com", results[0].(map[string]interface{})["email"])

	assert.Empty(t, h.list("/api/users/search", alice.token))
}

func TestHealth(t *testing.T) {
	h := newHarness(t)

	status, body := h.object("GET", "/health", "", nil)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "ok", body["status"])
}
