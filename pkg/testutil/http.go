// Package testutil holds helpers shared by handler tests.
package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// NewJSONRequest builds a request with a JSON body. A string body is sent
// verbatim so tests can post malformed documents; anything else is marshaled.
func NewJSONRequest(t *testing.T, method, path string, body any) *http.Request {
	t.Helper()
	var r io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		r = strings.NewReader(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err, "marshal request body")
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func NewRequest(t *testing.T, method, path string) *http.Request {
	t.Helper()
	return httptest.NewRequest(method, path, nil)
}

// DoRequest serves req through handler, normally a chi router so URL
// parameters resolve.
func DoRequest(handler http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr
}

// decode reads the body without draining the recorder, so several
// assertions can inspect one response.
func decode(t *testing.T, rr *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), v), "decode response body: %s", rr.Body.String())
}

func UnmarshalResponse[T any](t *testing.T, rr *httptest.ResponseRecorder) *T {
	t.Helper()
	var out T
	decode(t, rr, &out)
	return &out
}

func AssertStatus(t *testing.T, rr *httptest.ResponseRecorder, expected int) {
	t.Helper()
	assert.Equal(t, expected, rr.Code, "unexpected status; body: %s", rr.Body.String())
}

// AssertStatusAndError checks the status and the "error" code of an error
// body. A description must accompany every code except internal_error.
func AssertStatusAndError(t *testing.T, rr *httptest.ResponseRecorder, expectedStatus int, expectedCode string) {
	t.Helper()
	AssertStatus(t, rr, expectedStatus)
	var body struct {
		Error       string `json:"error"`
		Description string `json:"error_description"`
	}
	decode(t, rr, &body)
	assert.Equal(t, expectedCode, body.Error, "unexpected error code")
	if expectedCode != "internal_error" {
		assert.NotEmpty(t, body.Description, "error without description")
	}
}

func AssertJSONContains(t *testing.T, rr *httptest.ResponseRecorder, key string, expected any) {
	t.Helper()
	AssertJSONPath(t, rr, expected, key)
}

// AssertJSONPath asserts a nested value, e.g.
// AssertJSONPath(t, rr, 2.0, "history", "total_pages"). Numbers decode as
// float64.
func AssertJSONPath(t *testing.T, rr *httptest.ResponseRecorder, expected any, path ...string) {
	t.Helper()
	var cur any
	decode(t, rr, &cur)
	for _, key := range path {
		obj, ok := cur.(map[string]any)
		require.True(t, ok, "path %v: %q is not inside an object", path, key)
		cur, ok = obj[key]
		require.True(t, ok, "path %v: key %q missing", path, key)
	}
	assert.Equal(t, expected, cur, "unexpected value at %v", path)
}
