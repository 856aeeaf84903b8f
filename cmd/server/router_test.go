package main

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ctlabs/taskrouter/internal/api"
	"github.com/ctlabs/taskrouter/internal/config"
	"github.com/ctlabs/taskrouter/internal/mocks"
	"github.com/ctlabs/taskrouter/internal/platform/logger"
	"github.com/ctlabs/taskrouter/internal/testutils"
)

type routerFixture struct {
	redis    *miniredis.Miniredis
	provider *mocks.MockIdentityProvider
	app      *application
}

const (
	adminToken   = "admin-token"
	serviceToken = "service-token"
	siteToken    = "site-token"
)

func newRouterFixture(t *testing.T) (*routerFixture, func(method, path, authHeader string, body interface{}) *http.Response) {
	t.Helper()

	mr, client := testutils.NewMiniRedis(t)
	log, _ := logger.GetTestLogger(t)

	provider := &mocks.MockIdentityProvider{
		Tokens: map[string]map[string]string{
			adminToken:   {"client_id": "ops", "role": "admin"},
			serviceToken: {"client_id": "svc-1", "role": "service"},
			siteToken:    {"client_id": "site-7", "role": "copytrust_site"},
			"no-role":    {"client_id": "orphan"},
		},
		Users: map[mocks.Credential]map[string]string{
			{Username: "alice", Password: "s3cret"}: {"client_id": "alice", "role": "admin"},
		},
	}

	cfg := &config.Config{
		Server: config.ServerConfig{Port: 8000, LogLevel: "debug"},
		Task:   config.TaskConfig{TTLSeconds: 3600},
	}

	app, err := newApplicationWithDeps(cfg, log, client, provider)
	require.NoError(t, err)

	server := testutils.CreateTestServer(t, app.setupRouter())
	do := func(method, path, authHeader string, body interface{}) *http.Response {
		return testutils.DoRequest(t, server, method, path, authHeader, body)
	}

	return &routerFixture{redis: mr, provider: provider, app: app}, do
}

func bearer(token string) string {
	return testutils.BearerAuthHeader(token)
}

func TestRouter_SubmitAndTaskInfo(t *testing.T) {
	fx, do := newRouterFixture(t)

	resp := do(http.MethodPost, "/submit", bearer(adminToken), map[string]any{
		"type":        "calc_hash",
		"external_id": "ext-1",
		"upload":      map[string]any{"filename": "a.txt"},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var receipt api.TaskReceipt
	testutils.DecodeJSONResponse(t, resp, &receipt)
	assert.Equal(t, "calc_hash", receipt.Type)
	require.NotNil(t, receipt.ExternalID)
	assert.Equal(t, "ext-1", *receipt.ExternalID)
	id, err := uuid.Parse(receipt.UUID)
	require.NoError(t, err)

	assert.True(t, fx.redis.Exists("task:"+id.String()))
	assert.Equal(t, 3600*time.Second, fx.redis.TTL("task:"+id.String()))
	queued, err := fx.redis.List("calc_hash_INPUT")
	require.NoError(t, err)
	assert.Equal(t, []string{id.String()}, queued)

	resp = do(http.MethodGet, "/taskinfo?taskid="+id.String(), bearer(adminToken), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var info api.TaskInfoResponse
	testutils.DecodeJSONResponse(t, resp, &info)
	assert.Equal(t, id.String(), info.UUID)
	assert.Equal(t, "created", info.Status)
	assert.Equal(t, "calc_hash", info.Type)
	assert.Nil(t, info.Processed)
	assert.Nil(t, info.Code)
	assert.Nil(t, info.Result)
}

func TestRouter_BasicAuth(t *testing.T) {
	_, do := newRouterFixture(t)

	resp := do(http.MethodPost, "/submit/resize_image", testutils.BasicAuthHeader("alice", "s3cret"),
		map[string]any{"upload": map[string]any{"w": 100}})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = do(http.MethodPost, "/submit/resize_image", testutils.BasicAuthHeader("alice", "wrong"),
		map[string]any{"upload": map[string]any{"w": 100}})
	testutils.AssertErrorResponse(t, resp, http.StatusUnauthorized, api.MsgAuthFailed)
}

func TestRouter_RolePermissions(t *testing.T) {
	tests := []struct {
		name   string
		token  string
		path   string
		status int
	}{
		{"admin submits any type", adminToken, "/submit/water_marks", http.StatusOK},
		{"service submits calc_hash", serviceToken, "/submit/calc_hash", http.StatusOK},
		{"service submits water_marks", serviceToken, "/submit/water_marks", http.StatusOK},
		{"service cannot resize", serviceToken, "/submit/resize_image", http.StatusForbidden},
		{"service cannot use generic submit", serviceToken, "/submit", http.StatusForbidden},
		{"site submits calc_hash", siteToken, "/submit/calc_hash", http.StatusOK},
		{"site cannot watermark", siteToken, "/submit/water_marks", http.StatusForbidden},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, do := newRouterFixture(t)
			body := map[string]any{"upload": map[string]any{}}
			if tc.path == "/submit" {
				body["type"] = "calc_hash"
			}

			resp := do(http.MethodPost, tc.path, bearer(tc.token), body)
			if tc.status == http.StatusForbidden {
				testutils.AssertErrorResponse(t, resp, http.StatusForbidden, api.MsgNotAllowed)
				return
			}
			assert.Equal(t, tc.status, resp.StatusCode)
		})
	}
}

func TestRouter_AuthFailures(t *testing.T) {
	fx, do := newRouterFixture(t)
	body := map[string]any{"type": "calc_hash", "upload": map[string]any{}}

	resp := do(http.MethodPost, "/submit", "", body)
	testutils.AssertErrorResponse(t, resp, http.StatusUnauthorized, api.MsgMissingCredentials)

	resp = do(http.MethodPost, "/submit", "Token abc", body)
	testutils.AssertErrorResponse(t, resp, http.StatusUnauthorized, api.MsgMissingCredentials)

	resp = do(http.MethodPost, "/submit", bearer("unknown"), body)
	testutils.AssertErrorResponse(t, resp, http.StatusUnauthorized, api.MsgAuthFailed)

	resp = do(http.MethodPost, "/submit", bearer("no-role"), body)
	testutils.AssertErrorResponse(t, resp, http.StatusBadRequest, api.MsgMetadataMissing)

	resp = do(http.MethodGet, "/taskinfo?taskid="+uuid.NewString(), "", nil)
	testutils.AssertErrorResponse(t, resp, http.StatusUnauthorized, api.MsgMissingCredentials)

	assert.Empty(t, fx.redis.Keys(), "rejected requests must not write to the store")
}

func TestRouter_InvalidRequests(t *testing.T) {
	_, do := newRouterFixture(t)

	resp := do(http.MethodPost, "/submit", bearer(adminToken),
		map[string]any{"type": "unknown_task_type", "upload": map[string]any{}})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = do(http.MethodPost, "/submit", bearer(adminToken), "{not json")
	testutils.AssertErrorResponse(t, resp, http.StatusBadRequest, api.MsgInvalidRequest)

	resp = do(http.MethodGet, "/taskinfo?taskid=not-a-uuid", bearer(adminToken), nil)
	testutils.AssertErrorResponse(t, resp, http.StatusBadRequest, api.MsgInvalidTaskID)

	resp = do(http.MethodGet, "/taskinfo?taskid="+uuid.NewString(), bearer(adminToken), nil)
	testutils.AssertErrorResponse(t, resp, http.StatusBadRequest, api.MsgInvalidTaskID)
}

func TestRouter_ExpiredTask(t *testing.T) {
	fx, do := newRouterFixture(t)

	resp := do(http.MethodPost, "/submit/calc_hash", bearer(adminToken),
		map[string]any{"upload": map[string]any{}})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var receipt api.TaskReceipt
	testutils.DecodeJSONResponse(t, resp, &receipt)

	fx.redis.FastForward(3601 * time.Second)

	resp = do(http.MethodGet, "/taskinfo?taskid="+receipt.UUID, bearer(adminToken), nil)
	testutils.AssertErrorResponse(t, resp, http.StatusBadRequest, api.MsgInvalidTaskID)
}

func TestRouter_TaskInfoUnknownStoredType(t *testing.T) {
	fx, do := newRouterFixture(t)

	id := uuid.New()
	key := "task:" + id.String()
	fx.redis.HSet(key, "uuid", `"`+id.String()+`"`)
	fx.redis.HSet(key, "type", `"unknown_task_type"`)
	fx.redis.HSet(key, "status", `"created"`)

	resp := do(http.MethodGet, "/taskinfo?taskid="+id.String(), bearer(adminToken), nil)
	testutils.AssertErrorResponse(t, resp, http.StatusBadRequest, api.MsgInvalidTaskType)
}

func TestRouter_Health(t *testing.T) {
	fx, do := newRouterFixture(t)

	resp := do(http.MethodPost, "/health", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var health api.HealthResponse
	testutils.DecodeJSONResponse(t, resp, &health)
	assert.Equal(t, 1, health.Code)
	assert.Equal(t, "All right", health.Message)
	assert.Zero(t, fx.provider.Calls(), "health does not authenticate")

	resp = do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestApplication_Cleanup(t *testing.T) {
	fx, _ := newRouterFixture(t)

	fx.app.cleanup()
	assert.Error(t, fx.app.redisClient.Ping(context.Background()).Err(), "client is closed after cleanup")
}
