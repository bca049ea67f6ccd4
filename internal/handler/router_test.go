package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/alexiscpa/legal-consultant/internal/middleware"
	authservice "github.com/alexiscpa/legal-consultant/internal/service/auth"
	"github.com/alexiscpa/legal-consultant/internal/storage/sqlite"
	"github.com/alexiscpa/legal-consultant/internal/token"
)

const (
	adminEmail    = "admin@x.com"
	adminPassword = "admin-secret"
)

type env struct {
	router  http.Handler
	authSvc *authservice.Service
}

func newEnv(t *testing.T) *env {
	t.Helper()

	store, err := sqlite.New(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	codec := token.NewCodec("test-secret", time.Minute)
	authSvc := authservice.NewService(log, store, codec, bcrypt.MinCost)
	require.NoError(t, authSvc.SeedAdmin(context.Background(), adminEmail, adminPassword, "Root Admin"))

	gate := middleware.NewGate(log, codec, store)
	return &env{
		router:  NewRouter(log, gate, authSvc, nil, store),
		authSvc: authSvc,
	}
}

func (e *env) do(t *testing.T, method, path, bearer, body string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp := httptest.NewRecorder()
	e.router.ServeHTTP(resp, req)
	return resp
}

func decodeBody(t *testing.T, resp *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

func (e *env) login(t *testing.T, email, password string) (string, map[string]any) {
	t.Helper()

	resp := e.do(t, http.MethodPost, "/api/auth/login", "",
		fmt.Sprintf(`{"email":%q,"password":%q}`, email, password))
	require.Equal(t, http.StatusOK, resp.Code, "login failed: %s", resp.Body.String())

	body := decodeBody(t, resp)
	bearer, _ := body["token"].(string)
	require.NotEmpty(t, bearer)
	acc, _ := body["account"].(map[string]any)
	require.NotNil(t, acc)
	return bearer, acc
}

func (e *env) register(t *testing.T, email, password, name string) map[string]any {
	t.Helper()

	resp := e.do(t, http.MethodPost, "/api/auth/register", "",
		fmt.Sprintf(`{"email":%q,"password":%q,"name":%q}`, email, password, name))
	require.Equal(t, http.StatusCreated, resp.Code, "register failed: %s", resp.Body.String())

	acc, _ := decodeBody(t, resp)["account"].(map[string]any)
	require.NotNil(t, acc)
	return acc
}

func TestHealth(t *testing.T) {
	e := newEnv(t)

	resp := e.do(t, http.MethodGet, "/api/health", "", "")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "ok", decodeBody(t, resp)["status"])
}

func TestFullApprovalLifecycle(t *testing.T) {
	e := newEnv(t)

	acc := e.register(t, "user@x.com", "secret1", "New User")
	assert.Equal(t, "pending", acc["status"])
	assert.Equal(t, "user", acc["role"])
	assert.NotContains(t, acc, "password_hash")

	// Login works while pending so the client can poll /auth/me.
	userToken, _ := e.login(t, "user@x.com", "secret1")

	resp := e.do(t, http.MethodGet, "/api/auth/me", userToken, "")
	require.Equal(t, http.StatusOK, resp.Code)
	me, _ := decodeBody(t, resp)["account"].(map[string]any)
	assert.Equal(t, "pending", me["status"])

	// Data routes stay shut until approval, and say why.
	resp = e.do(t, http.MethodGet, "/api/ai/status", userToken, "")
	require.Equal(t, http.StatusForbidden, resp.Code)
	assert.Equal(t, "pending", decodeBody(t, resp)["status"])

	adminToken, _ := e.login(t, adminEmail, adminPassword)

	resp = e.do(t, http.MethodGet, "/api/users/pending", adminToken, "")
	require.Equal(t, http.StatusOK, resp.Code)
	pending, _ := decodeBody(t, resp)["accounts"].([]any)
	require.Len(t, pending, 1)

	userID, _ := acc["id"].(string)
	resp = e.do(t, http.MethodPatch, "/api/users/"+userID+"/approve", adminToken, "")
	require.Equal(t, http.StatusOK, resp.Code)
	approved, _ := decodeBody(t, resp)["account"].(map[string]any)
	assert.Equal(t, "approved", approved["status"])

	resp = e.do(t, http.MethodGet, "/api/auth/me", userToken, "")
	require.Equal(t, http.StatusOK, resp.Code)
	me, _ = decodeBody(t, resp)["account"].(map[string]any)
	assert.Equal(t, "approved", me["status"])

	// Gateway is not configured in tests, so status reports unavailable but
	// the route itself is now reachable.
	resp = e.do(t, http.MethodGet, "/api/ai/status", userToken, "")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, false, decodeBody(t, resp)["available"])
}

func TestRegisterDuplicateEmail(t *testing.T) {
	e := newEnv(t)
	e.register(t, "user@x.com", "secret1", "First")

	resp := e.do(t, http.MethodPost, "/api/auth/register", "",
		`{"email":"USER@x.com","password":"secret2","name":"Second"}`)
	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Equal(t, "email already registered", decodeBody(t, resp)["error"])
}

func TestApproveOnlyOnce(t *testing.T) {
	e := newEnv(t)
	acc := e.register(t, "user@x.com", "secret1", "User")
	adminToken, _ := e.login(t, adminEmail, adminPassword)
	userID, _ := acc["id"].(string)

	resp := e.do(t, http.MethodPatch, "/api/users/"+userID+"/approve", adminToken, "")
	require.Equal(t, http.StatusOK, resp.Code)

	resp = e.do(t, http.MethodPatch, "/api/users/"+userID+"/approve", adminToken, "")
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestRejectIsTerminal(t *testing.T) {
	e := newEnv(t)
	acc := e.register(t, "user@x.com", "secret1", "User")
	adminToken, _ := e.login(t, adminEmail, adminPassword)
	userID, _ := acc["id"].(string)

	resp := e.do(t, http.MethodPatch, "/api/users/"+userID+"/reject", adminToken, "")
	require.Equal(t, http.StatusOK, resp.Code)

	resp = e.do(t, http.MethodPatch, "/api/users/"+userID+"/approve", adminToken, "")
	assert.Equal(t, http.StatusBadRequest, resp.Code)

	// A rejected account can still log in and learn its status.
	userToken, _ := e.login(t, "user@x.com", "secret1")
	resp = e.do(t, http.MethodGet, "/api/ai/status", userToken, "")
	require.Equal(t, http.StatusForbidden, resp.Code)
	assert.Equal(t, "rejected", decodeBody(t, resp)["status"])
}

func TestAdminRoutesRequireAdminRole(t *testing.T) {
	e := newEnv(t)
	acc := e.register(t, "user@x.com", "secret1", "User")
	adminToken, _ := e.login(t, adminEmail, adminPassword)
	userID, _ := acc["id"].(string)

	resp := e.do(t, http.MethodPatch, "/api/users/"+userID+"/approve", adminToken, "")
	require.Equal(t, http.StatusOK, resp.Code)

	userToken, _ := e.login(t, "user@x.com", "secret1")
	resp = e.do(t, http.MethodGet, "/api/users", userToken, "")
	assert.Equal(t, http.StatusForbidden, resp.Code)
}

func TestDeleteGuards(t *testing.T) {
	e := newEnv(t)
	require.NoError(t, e.authSvc.SeedAdmin(context.Background(), "second@x.com", "admin-two", "Second Admin"))

	adminToken, adminAcc := e.login(t, adminEmail, adminPassword)
	adminID, _ := adminAcc["id"].(string)

	resp := e.do(t, http.MethodDelete, "/api/users/"+adminID, adminToken, "")
	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Equal(t, "cannot delete your own account", decodeBody(t, resp)["error"])

	_, secondAcc := e.login(t, "second@x.com", "admin-two")
	secondID, _ := secondAcc["id"].(string)

	resp = e.do(t, http.MethodDelete, "/api/users/"+secondID, adminToken, "")
	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Equal(t, "cannot delete admin accounts", decodeBody(t, resp)["error"])
}

func TestDeleteUserAccount(t *testing.T) {
	e := newEnv(t)
	acc := e.register(t, "user@x.com", "secret1", "User")
	adminToken, _ := e.login(t, adminEmail, adminPassword)
	userID, _ := acc["id"].(string)

	resp := e.do(t, http.MethodDelete, "/api/users/"+userID, adminToken, "")
	require.Equal(t, http.StatusOK, resp.Code)

	resp = e.do(t, http.MethodPost, "/api/auth/login", "",
		`{"email":"user@x.com","password":"secret1"}`)
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestDataRoutesRequireToken(t *testing.T) {
	e := newEnv(t)

	resp := e.do(t, http.MethodGet, "/api/contracts", "", "")
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestRecordsThroughRouter(t *testing.T) {
	e := newEnv(t)
	acc := e.register(t, "user@x.com", "secret1", "User")
	adminToken, _ := e.login(t, adminEmail, adminPassword)
	userID, _ := acc["id"].(string)
	resp := e.do(t, http.MethodPatch, "/api/users/"+userID+"/approve", adminToken, "")
	require.Equal(t, http.StatusOK, resp.Code)

	userToken, _ := e.login(t, "user@x.com", "secret1")

	resp = e.do(t, http.MethodPost, "/api/contracts", userToken,
		`{"title":"Vendor agreement","content":"body","result":{"summary":"ok","risks":[],"compliance":[],"recommendations":[]}}`)
	require.Equal(t, http.StatusCreated, resp.Code)
	created := decodeBody(t, resp)
	contractID, _ := created["id"].(string)
	require.NotEmpty(t, contractID)

	resp = e.do(t, http.MethodGet, "/api/contracts", userToken, "")
	require.Equal(t, http.StatusOK, resp.Code)
	var contracts []map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&contracts))
	require.Len(t, contracts, 1)
	assert.Equal(t, "Vendor agreement", contracts[0]["title"])

	resp = e.do(t, http.MethodDelete, "/api/contracts/"+contractID, userToken, "")
	require.Equal(t, http.StatusOK, resp.Code)

	resp = e.do(t, http.MethodPost, "/api/chats", userToken,
		`{"role":"user","text":"What is the notice period?"}`)
	require.Equal(t, http.StatusCreated, resp.Code)

	resp = e.do(t, http.MethodPost, "/api/chats", userToken, `{"role":"assistant","text":"nope"}`)
	assert.Equal(t, http.StatusBadRequest, resp.Code)

	resp = e.do(t, http.MethodDelete, "/api/chats", userToken, "")
	require.Equal(t, http.StatusOK, resp.Code)

	resp = e.do(t, http.MethodGet, "/api/chats", userToken, "")
	require.Equal(t, http.StatusOK, resp.Code)
	var turns []map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&turns))
	assert.Empty(t, turns)
}
