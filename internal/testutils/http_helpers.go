package testutils

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ctlabs/taskrouter/internal/api/shared"
)

// CreateTestServer starts an httptest server for handler, closed when the
// test ends.
func CreateTestServer(t *testing.T, handler http.Handler) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return server
}

// DoRequest sends a request to server with an optional Authorization header
// and a JSON body when body is non-nil. A string body is sent verbatim.
func DoRequest(t *testing.T, server *httptest.Server, method, path, authHeader string, body interface{}) *http.Response {
	t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err, "failed to marshal request body")
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, server.URL+path, reader)
	require.NoError(t, err, "failed to build request")
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}

	resp, err := server.Client().Do(req)
	require.NoError(t, err, "request failed")
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

// DecodeJSONResponse decodes the response body into v.
func DecodeJSONResponse(t *testing.T, resp *http.Response, v interface{}) {
	t.Helper()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v), "failed to decode response body")
}

// AssertErrorResponse checks the status code and error body of resp.
func AssertErrorResponse(t *testing.T, resp *http.Response, expectedStatus int, expectedMessage string) {
	t.Helper()

	assert.Equal(t, expectedStatus, resp.StatusCode, "unexpected status code")

	var body shared.ErrorResponse
	DecodeJSONResponse(t, resp, &body)
	assert.Equal(t, expectedStatus, body.Code, "error body code should repeat the status")
	assert.Equal(t, expectedMessage, body.Message)
}
