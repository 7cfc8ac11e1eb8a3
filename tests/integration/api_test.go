package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	httpHandler "subsidy-wallet-service/internal/adapter/http/handler"
	"subsidy-wallet-service/internal/adapter/storage/memory"
	redisStorage "subsidy-wallet-service/internal/adapter/storage/redis"
	"subsidy-wallet-service/internal/adapter/ws"
	"subsidy-wallet-service/internal/core/domain"
	"subsidy-wallet-service/internal/core/ports"
	"subsidy-wallet-service/internal/service"
	"subsidy-wallet-service/pkg/clock"
	"subsidy-wallet-service/pkg/logger"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testApp builds the full application stack: real HTTP layer, middleware,
// handlers, services, and Redis stores over miniredis. Simulator delays are
// shortened so the flows settle within the test timeout.

type testApp struct {
	server *httptest.Server
	redis  *miniredis.Miniredis
	store  *memory.LedgerStore
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	outcomeCache := redisStorage.NewOutcomeCache(rdb)
	redisHealth := redisStorage.NewHealthCheck(rdb)

	store := memory.NewLedgerStore([]domain.Subsidy{
		{ID: "bkk", Name: "Bantuan Keluarga Malaysia (BKK)", Amount: 600, Status: domain.SubsidyStatusAvailable},
		{ID: "mykasih", Name: "MyKasih Food Aid", Amount: 50, Status: domain.SubsidyStatusAvailable},
		{ID: "student", Name: "Student Book Voucher", Amount: 100, Status: domain.SubsidyStatusClaimed},
	})

	log := logger.New("error", false)
	clk := clock.Real{}
	hub := ws.NewHub(log)
	t.Cleanup(hub.Close)

	tokenSvc := service.NewJWTTokenService("test-jwt-secret-key", time.Hour, "test-issuer")
	identitySvc := service.NewMockIdentityService(clk, time.Millisecond, log)
	merchantDir := service.NewStaticMerchantDirectory(clk, time.Millisecond, []domain.Merchant{
		{Code: "nsk-kl", Name: "NSK Trade City", Location: "Kuala Lumpur", AcceptedSubsidies: []string{"bkk", "mykasih"}},
	})
	sessionSvc := service.NewSessionService(store, identitySvc, tokenSvc, log)
	transactionSvc := service.NewTransactionService(
		store,
		service.NewDenylistPolicy([]string{"mykasih"}),
		merchantDir,
		hub,
		outcomeCache,
		clk,
		service.Timings{
			EligibilityCheck: 5 * time.Millisecond,
			Settlement:       5 * time.Millisecond,
			Spend:            5 * time.Millisecond,
			OutcomeTTL:       time.Hour,
		},
		log,
	)

	router := httpHandler.SetupRouter(httpHandler.RouterDeps{
		SessionSvc:     sessionSvc,
		IdentitySvc:    identitySvc,
		TransactionSvc: transactionSvc,
		MerchantDir:    merchantDir,
		LedgerStore:    store,
		TokenSvc:       tokenSvc,
		Hub:            hub,
		HealthCheckers: []ports.HealthChecker{redisHealth},
		Logger:         log,
	})

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	return &testApp{server: server, redis: mr, store: store}
}

func (a *testApp) do(t *testing.T, method, path, token string, body interface{}) (*http.Response, map[string]interface{}) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, a.server.URL+path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var envelope map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	return resp, envelope
}

// login runs the verify flow and returns a session token.
func (a *testApp) login(t *testing.T) string {
	t.Helper()

	resp, envelope := a.do(t, http.MethodPost, "/api/v1/auth/verify", "", map[string]interface{}{
		"card_number": "901234-10-5678",
		"name":        "AHMAD IBRAHIM",
		"birth_date":  "12-03-1990",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	data := envelope["data"].(map[string]interface{})
	token := data["token"].(string)
	require.NotEmpty(t, token)
	return token
}

// waitTerminal polls the transaction until a terminal phase is reached.
func (a *testApp) waitTerminal(t *testing.T, token, txID string) map[string]interface{} {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		resp, envelope := a.do(t, http.MethodGet, "/api/v1/transactions/"+txID, token, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		data := envelope["data"].(map[string]interface{})
		phase := data["phase"].(string)
		switch phase {
		case "SUCCESS", "FAILED", "CANCELLED":
			return data
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatal("transaction never reached a terminal phase")
	return nil
}

func TestIntegration_HealthCheck(t *testing.T) {
	app := newTestApp(t)

	resp, err := http.Get(app.server.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestIntegration_Metrics(t *testing.T) {
	app := newTestApp(t)

	resp, err := http.Get(app.server.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestIntegration_SessionGate(t *testing.T) {
	app := newTestApp(t)

	// No token: rejected.
	resp, envelope := app.do(t, http.MethodGet, "/api/v1/ledger", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "AUTH_003", envelope["error_code"])

	// Verified: ledger accessible.
	token := app.login(t)
	resp, envelope = app.do(t, http.MethodGet, "/api/v1/ledger", token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	data := envelope["data"].(map[string]interface{})
	assert.Equal(t, float64(100), data["total_balance"], "seed ledger counts only the claimed student voucher")

	// Logout closes the gate even for a still-valid token.
	resp, _ = app.do(t, http.MethodPost, "/api/v1/auth/logout", token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, envelope = app.do(t, http.MethodGet, "/api/v1/ledger", token, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "AUTH_003", envelope["error_code"])
}

func TestIntegration_VerifyRejectsBadCard(t *testing.T) {
	app := newTestApp(t)

	resp, envelope := app.do(t, http.MethodPost, "/api/v1/auth/verify", "", map[string]interface{}{
		"card_number": "not-a-card",
		"name":        "AHMAD IBRAHIM",
		"birth_date":  "12-03-1990",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "AUTH_001", envelope["error_code"])
}

func TestIntegration_ClaimFlow(t *testing.T) {
	app := newTestApp(t)
	token := app.login(t)

	resp, envelope := app.do(t, http.MethodPost, "/api/v1/transactions/claims", token, map[string]interface{}{
		"subsidy_id": "bkk",
	})
	require.Equal(t, http.StatusAccepted, resp.StatusCode)
	txID := envelope["data"].(map[string]interface{})["id"].(string)

	final := app.waitTerminal(t, token, txID)
	assert.Equal(t, "SUCCESS", final["phase"])
	assert.Contains(t, final["message"], "claimed successfully")
	assert.Regexp(t, `^0x[0-9a-f]{12}$`, final["reference"])

	// Balance now includes the claimed program.
	resp, envelope = app.do(t, http.MethodGet, "/api/v1/ledger", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(700), envelope["data"].(map[string]interface{})["total_balance"])
}

func TestIntegration_ClaimDeniedProgram(t *testing.T) {
	app := newTestApp(t)
	token := app.login(t)

	before := app.store.Snapshot()

	resp, envelope := app.do(t, http.MethodPost, "/api/v1/transactions/claims", token, map[string]interface{}{
		"subsidy_id": "mykasih",
	})
	require.Equal(t, http.StatusAccepted, resp.StatusCode)
	txID := envelope["data"].(map[string]interface{})["id"].(string)

	final := app.waitTerminal(t, token, txID)
	assert.Equal(t, "FAILED", final["phase"])
	assert.Equal(t, "LGR_003", final["failure_code"])

	assert.Equal(t, before, app.store.Snapshot(), "failed claim must not mutate the ledger")
}

func TestIntegration_SpendFlow(t *testing.T) {
	app := newTestApp(t)
	token := app.login(t)

	// student is seeded claimed but the merchant does not accept it.
	resp, envelope := app.do(t, http.MethodPost, "/api/v1/transactions/spends", token, map[string]interface{}{
		"subsidy_id":    "student",
		"amount":        10,
		"merchant_code": "nsk-kl",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, "MCH_002", envelope["error_code"])

	// Claim bkk, then spend part of it.
	resp, envelope = app.do(t, http.MethodPost, "/api/v1/transactions/claims", token, map[string]interface{}{
		"subsidy_id": "bkk",
	})
	require.Equal(t, http.StatusAccepted, resp.StatusCode)
	app.waitTerminal(t, token, envelope["data"].(map[string]interface{})["id"].(string))

	resp, envelope = app.do(t, http.MethodPost, "/api/v1/transactions/spends", token, map[string]interface{}{
		"subsidy_id":    "bkk",
		"amount":        50,
		"merchant_code": "nsk-kl",
	})
	require.Equal(t, http.StatusAccepted, resp.StatusCode)
	final := app.waitTerminal(t, token, envelope["data"].(map[string]interface{})["id"].(string))

	assert.Equal(t, "SUCCESS", final["phase"])
	assert.Equal(t, "Paid RM50 to NSK Trade City", final["message"])

	resp, envelope = app.do(t, http.MethodGet, "/api/v1/ledger", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	data := envelope["data"].(map[string]interface{})
	assert.Equal(t, float64(650), data["total_balance"])

	for _, p := range data["programs"].([]interface{}) {
		program := p.(map[string]interface{})
		if program["id"] == "bkk" {
			assert.Equal(t, float64(550), program["remaining"])
		}
	}
}

func TestIntegration_SpendValidation(t *testing.T) {
	app := newTestApp(t)
	token := app.login(t)

	tests := []struct {
		name       string
		body       map[string]interface{}
		wantStatus int
		wantCode   string
	}{
		{
			"overspend unclaimed",
			map[string]interface{}{"subsidy_id": "bkk", "amount": 10, "merchant_code": "nsk-kl"},
			http.StatusUnprocessableEntity, "LGR_004",
		},
		{
			"unknown program",
			map[string]interface{}{"subsidy_id": "petrol", "amount": 10, "merchant_code": "nsk-kl"},
			http.StatusNotFound, "LGR_001",
		},
		{
			"unknown merchant",
			map[string]interface{}{"subsidy_id": "student", "amount": 10, "merchant_code": "bogus"},
			http.StatusNotFound, "MCH_001",
		},
		{
			"negative amount",
			map[string]interface{}{"subsidy_id": "student", "amount": -5, "merchant_code": "nsk-kl"},
			http.StatusBadRequest, "LGR_002",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, envelope := app.do(t, http.MethodPost, "/api/v1/transactions/spends", token, tt.body)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			assert.Equal(t, tt.wantCode, envelope["error_code"])
		})
	}
}

func TestIntegration_CancelTransaction(t *testing.T) {
	app := newTestApp(t)
	token := app.login(t)

	before := app.store.Snapshot()

	resp, envelope := app.do(t, http.MethodPost, "/api/v1/transactions/claims", token, map[string]interface{}{
		"subsidy_id": "bkk",
	})
	require.Equal(t, http.StatusAccepted, resp.StatusCode)
	txID := envelope["data"].(map[string]interface{})["id"].(string)

	// Cancel immediately, before the eligibility delay elapses. If the flow
	// already finished the cancel races to a 409, which is also correct;
	// only the 200 path asserts the untouched ledger.
	resp, envelope = app.do(t, http.MethodPost, fmt.Sprintf("/api/v1/transactions/%s/cancel", txID), token, nil)
	if resp.StatusCode == http.StatusOK {
		assert.Equal(t, "CANCELLED", envelope["data"].(map[string]interface{})["phase"])

		time.Sleep(30 * time.Millisecond)
		assert.Equal(t, before, app.store.Snapshot(), "cancelled claim must not mutate the ledger")
	} else {
		assert.Equal(t, http.StatusConflict, resp.StatusCode)
	}
}

func TestIntegration_DismissAndRefetchFromOutcomeCache(t *testing.T) {
	app := newTestApp(t)
	token := app.login(t)

	resp, envelope := app.do(t, http.MethodPost, "/api/v1/transactions/claims", token, map[string]interface{}{
		"subsidy_id": "bkk",
	})
	require.Equal(t, http.StatusAccepted, resp.StatusCode)
	txID := envelope["data"].(map[string]interface{})["id"].(string)
	app.waitTerminal(t, token, txID)

	resp, _ = app.do(t, http.MethodDelete, "/api/v1/transactions/"+txID, token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// The outcome is still fetchable from the cache after dismissal.
	resp, envelope = app.do(t, http.MethodGet, "/api/v1/transactions/"+txID, token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "SUCCESS", envelope["data"].(map[string]interface{})["phase"])
}

func TestIntegration_MerchantScan(t *testing.T) {
	app := newTestApp(t)
	token := app.login(t)

	resp, envelope := app.do(t, http.MethodGet, "/api/v1/merchants/scan?code=nsk-kl", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	data := envelope["data"].(map[string]interface{})
	assert.Equal(t, "NSK Trade City", data["name"])
	assert.Equal(t, "Kuala Lumpur", data["location"])

	resp, envelope = app.do(t, http.MethodGet, "/api/v1/merchants/scan?code=bogus", token, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "MCH_001", envelope["error_code"])
}

func TestIntegration_IdentityScan(t *testing.T) {
	app := newTestApp(t)

	resp, envelope := app.do(t, http.MethodGet, "/api/v1/auth/scan", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	data := envelope["data"].(map[string]interface{})
	assert.Regexp(t, `^\d{6}-\d{2}-\d{4}$`, data["card_number"])
	assert.NotEmpty(t, data["name"])
}
