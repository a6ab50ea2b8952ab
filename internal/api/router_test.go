package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/stamprally/backend/internal/auth"
	"github.com/stamprally/backend/internal/config"
	"github.com/stamprally/backend/internal/repository/memory"
	"github.com/stamprally/backend/internal/services"
	"github.com/stamprally/backend/internal/worker"
)

const (
	testLat = 35.0
	testLng = 135.0
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	repos := memory.NewRepositories()
	wp := worker.NewPool(1)
	t.Cleanup(wp.Stop)

	tm := auth.NewTokenManager("access-secret", "refresh-secret", "test-issuer", time.Minute, time.Hour)
	accountSvc := services.NewAccountService(repos.Accounts, tm)
	require.NoError(t, accountSvc.EnsureAdmin(context.Background(), "admin", "admin123"))

	h := NewRouter(RouterDeps{
		Cfg:      config.Config{RateRPS: 1000},
		TM:       tm,
		Accounts: accountSvc,
		Scans:    services.NewScanService(repos.Tokens, repos.Tx, 100, 24*time.Hour),
		Redeems:  services.NewRedeemService(repos.Prizes, repos.Tx),
		Tokens:   services.NewTokenService(repos.Tokens, repos.AuditLogs, wp),
		Prizes:   services.NewPrizeService(repos.Prizes, repos.AuditLogs, wp),
		Reports:  services.NewReportingService(repos.Accounts, repos.Ledger),
	})
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return srv
}

func doJSON(t *testing.T, method, url, bearer string, body any) (int, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return resp.StatusCode, out
}

func login(t *testing.T, srv *httptest.Server, username, password string) string {
	t.Helper()
	status, body := doJSON(t, http.MethodPost, srv.URL+"/api/v1/auth/login", "", map[string]string{
		"username": username, "password": password,
	})
	require.Equal(t, http.StatusOK, status)
	tokens := body["tokens"].(map[string]any)
	return tokens["access_token"].(string)
}

func TestFullScanRedeemFlow(t *testing.T) {
	srv := newTestServer(t)
	adminTok := login(t, srv, "admin", "admin123")

	// Admin places a 10 point token.
	status, body := doJSON(t, http.MethodPost, srv.URL+"/api/v1/tokens", adminTok, map[string]any{
		"label": "Entrance", "points": 10, "lat": testLat, "lng": testLng,
	})
	require.Equal(t, http.StatusCreated, status)
	qrToken := body["token"].(map[string]any)
	code := qrToken["code"].(string)
	require.NotEmpty(t, code)
	require.Contains(t, qrToken["qr_image"].(string), "data:image/png;base64,")

	// Admin stocks a prize worth the same 10 points.
	status, body = doJSON(t, http.MethodPost, srv.URL+"/api/v1/prizes", adminTok, map[string]any{
		"name": "Sticker", "points_required": 10, "stock": 1,
	})
	require.Equal(t, http.StatusCreated, status)
	prizeID := body["prize"].(map[string]any)["id"].(string)

	// A participant signs up and scans at the token's location.
	status, body = doJSON(t, http.MethodPost, srv.URL+"/api/v1/auth/register", "", map[string]string{
		"username": "alice", "display_name": "Alice", "password": "secret1",
	})
	require.Equal(t, http.StatusCreated, status)
	userTok := body["tokens"].(map[string]any)["access_token"].(string)

	status, body = doJSON(t, http.MethodPost, srv.URL+"/api/v1/points/scan", userTok, map[string]any{
		"qr_code": code, "lat": testLat, "lng": testLng,
	})
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, float64(10), body["result"].(map[string]any)["balance"])

	// An immediate replay is refused with the next eligible time.
	status, body = doJSON(t, http.MethodPost, srv.URL+"/api/v1/points/scan", userTok, map[string]any{
		"qr_code": code, "lat": testLat, "lng": testLng,
	})
	require.Equal(t, http.StatusForbidden, status)
	require.Equal(t, "already_scanned", body["code"])
	require.NotEmpty(t, body["details"].(map[string]any)["next_eligible_at"])

	// The earned points buy the prize.
	status, body = doJSON(t, http.MethodPost, srv.URL+"/api/v1/points/redeem/"+prizeID, userTok, nil)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, float64(0), body["result"].(map[string]any)["balance"])

	// A second redemption hits empty stock.
	status, body = doJSON(t, http.MethodPost, srv.URL+"/api/v1/points/redeem/"+prizeID, userTok, nil)
	require.Equal(t, http.StatusBadRequest, status)
	require.Equal(t, "out_of_stock", body["code"])

	// History shows both ledger entries, newest first.
	status, body = doJSON(t, http.MethodGet, srv.URL+"/api/v1/points/history", userTok, nil)
	require.Equal(t, http.StatusOK, status)
	history := body["history"].([]any)
	require.Len(t, history, 2)
	require.Equal(t, "spend", history[0].(map[string]any)["kind"])
	require.Equal(t, "earn", history[1].(map[string]any)["kind"])

	// Admin stats reflect the committed flow.
	status, body = doJSON(t, http.MethodGet, srv.URL+"/api/v1/admin/stats", adminTok, nil)
	require.Equal(t, http.StatusOK, status)
	stats := body["stats"].(map[string]any)
	require.Equal(t, float64(10), stats["total_points_earned"])
	require.Equal(t, float64(10), stats["total_points_spent"])
	require.Equal(t, float64(0), stats["total_points_held"])
	require.Equal(t, float64(1), stats["total_users"])
}

func TestScanErrorStatuses(t *testing.T) {
	srv := newTestServer(t)
	adminTok := login(t, srv, "admin", "admin123")

	status, body := doJSON(t, http.MethodPost, srv.URL+"/api/v1/tokens", adminTok, map[string]any{
		"points": 10, "lat": testLat, "lng": testLng,
	})
	require.Equal(t, http.StatusCreated, status)
	code := body["token"].(map[string]any)["code"].(string)

	status, body = doJSON(t, http.MethodPost, srv.URL+"/api/v1/auth/register", "", map[string]string{
		"username": "alice", "display_name": "Alice", "password": "secret1",
	})
	require.Equal(t, http.StatusCreated, status)
	userTok := body["tokens"].(map[string]any)["access_token"].(string)

	// Unknown code.
	status, body = doJSON(t, http.MethodPost, srv.URL+"/api/v1/points/scan", userTok, map[string]any{
		"qr_code": "nope", "lat": testLat, "lng": testLng,
	})
	require.Equal(t, http.StatusNotFound, status)
	require.Equal(t, "token_not_found", body["code"])

	// Roughly 150m away from the anchor.
	status, body = doJSON(t, http.MethodPost, srv.URL+"/api/v1/points/scan", userTok, map[string]any{
		"qr_code": code, "lat": testLat + 0.00134899, "lng": testLng,
	})
	require.Equal(t, http.StatusForbidden, status)
	require.Equal(t, "out_of_range", body["code"])
	details := body["details"].(map[string]any)
	require.Equal(t, float64(150), details["distance_m"])
	require.Equal(t, float64(100), details["radius_m"])

	// Out-of-range coordinates fail validation before anything else.
	status, body = doJSON(t, http.MethodPost, srv.URL+"/api/v1/points/scan", userTok, map[string]any{
		"qr_code": code, "lat": 91.0, "lng": testLng,
	})
	require.Equal(t, http.StatusBadRequest, status)
	require.Equal(t, "validation", body["code"])
}

func TestAuthGates(t *testing.T) {
	srv := newTestServer(t)

	// No bearer token.
	status, _ := doJSON(t, http.MethodPost, srv.URL+"/api/v1/points/scan", "", map[string]any{
		"qr_code": "x", "lat": testLat, "lng": testLng,
	})
	require.Equal(t, http.StatusUnauthorized, status)

	// Garbage bearer token.
	status, _ = doJSON(t, http.MethodGet, srv.URL+"/api/v1/auth/me", "garbage", nil)
	require.Equal(t, http.StatusUnauthorized, status)

	// A plain user cannot reach the admin surface.
	status, body := doJSON(t, http.MethodPost, srv.URL+"/api/v1/auth/register", "", map[string]string{
		"username": "alice", "display_name": "Alice", "password": "secret1",
	})
	require.Equal(t, http.StatusCreated, status)
	userTok := body["tokens"].(map[string]any)["access_token"].(string)

	for _, path := range []string{"/api/v1/admin/stats", "/api/v1/admin/users", "/api/v1/tokens"} {
		status, _ = doJSON(t, http.MethodGet, srv.URL+path, userTok, nil)
		require.Equal(t, http.StatusForbidden, status, path)
	}
}

func TestRegisterConflictAndLoginFailure(t *testing.T) {
	srv := newTestServer(t)

	status, _ := doJSON(t, http.MethodPost, srv.URL+"/api/v1/auth/register", "", map[string]string{
		"username": "alice", "display_name": "Alice", "password": "secret1",
	})
	require.Equal(t, http.StatusCreated, status)

	status, body := doJSON(t, http.MethodPost, srv.URL+"/api/v1/auth/register", "", map[string]string{
		"username": "alice", "display_name": "Alice Again", "password": "secret2",
	})
	require.Equal(t, http.StatusBadRequest, status)
	require.Equal(t, "username_taken", body["code"])

	status, body = doJSON(t, http.MethodPost, srv.URL+"/api/v1/auth/login", "", map[string]string{
		"username": "alice", "password": "wrong",
	})
	require.Equal(t, http.StatusUnauthorized, status)
	require.Equal(t, "invalid_credentials", body["code"])
}

func TestRedeemInsufficientPointsStatus(t *testing.T) {
	srv := newTestServer(t)
	adminTok := login(t, srv, "admin", "admin123")

	status, body := doJSON(t, http.MethodPost, srv.URL+"/api/v1/prizes", adminTok, map[string]any{
		"name": "Hoodie", "points_required": 500, "stock": 3,
	})
	require.Equal(t, http.StatusCreated, status)
	prizeID := body["prize"].(map[string]any)["id"].(string)

	status, body = doJSON(t, http.MethodPost, srv.URL+"/api/v1/auth/register", "", map[string]string{
		"username": "alice", "display_name": "Alice", "password": "secret1",
	})
	require.Equal(t, http.StatusCreated, status)
	userTok := body["tokens"].(map[string]any)["access_token"].(string)

	status, body = doJSON(t, http.MethodPost, srv.URL+"/api/v1/points/redeem/"+prizeID, userTok, nil)
	require.Equal(t, http.StatusBadRequest, status)
	require.Equal(t, "insufficient_points", body["code"])
	details := body["details"].(map[string]any)
	require.Equal(t, float64(500), details["required"])
	require.Equal(t, float64(0), details["available"])

	status, body = doJSON(t, http.MethodPost, srv.URL+"/api/v1/points/redeem/no-such-prize", userTok, nil)
	require.Equal(t, http.StatusNotFound, status)
	require.Equal(t, "prize_not_found", body["code"])
}

func TestHealthAndRequestID(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotEmpty(t, resp.Header.Get("X-Request-Id"))
}

func TestPublicPrizeListing(t *testing.T) {
	srv := newTestServer(t)
	adminTok := login(t, srv, "admin", "admin123")

	for i, stock := range []int64{1, 0} {
		status, _ := doJSON(t, http.MethodPost, srv.URL+"/api/v1/prizes", adminTok, map[string]any{
			"name": fmt.Sprintf("Prize %d", i), "points_required": 10, "stock": stock,
		})
		require.Equal(t, http.StatusCreated, status)
	}

	status, body := doJSON(t, http.MethodGet, srv.URL+"/api/v1/prizes", adminTok, nil)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, body["prizes"].([]any), 2)
}
