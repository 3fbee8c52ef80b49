package restapi

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRequestLoggingMiddleware(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	handler := NewRequestLoggingMiddleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/tracker/progression.json?key=TEST", nil)
	req.Header.Set("User-Agent", "tracker-test")
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	logged := buf.String()
	assert.Contains(t, logged, "/api/tracker/progression.json")
	assert.Contains(t, logged, `"status":404`)
	assert.Contains(t, logged, "tracker-test")
	assert.NotContains(t, logged, "key=TEST", "query parameters should not be logged")
}

func TestRequestLoggingDefaultsToOK(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	handler := NewRequestLoggingMiddleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/tracker/eta.json", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Contains(t, buf.String(), `"status":200`)
}
