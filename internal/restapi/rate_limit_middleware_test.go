package restapi

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestRateLimitAllowsWithinBudget(t *testing.T) {
	middleware := NewRateLimitMiddleware(5, time.Second)
	handler := middleware(okHandler())

	for i := 0; i < 5; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/tracker/eta.json?key=TEST", nil)
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusOK, rr.Code, "request %d should be allowed", i+1)
	}
}

func TestRateLimitRejectsBurstOverBudget(t *testing.T) {
	middleware := NewRateLimitMiddleware(2, time.Second)
	handler := middleware(okHandler())

	statuses := make([]int, 3)
	for i := range statuses {
		req := httptest.NewRequest(http.MethodGet, "/api/tracker/eta.json?key=TEST", nil)
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		statuses[i] = rr.Code
	}

	assert.Equal(t, http.StatusOK, statuses[0])
	assert.Equal(t, http.StatusOK, statuses[1])
	assert.Equal(t, http.StatusTooManyRequests, statuses[2])
}

func TestRateLimitTracksKeysIndependently(t *testing.T) {
	middleware := NewRateLimitMiddleware(1, time.Second)
	handler := middleware(okHandler())

	first := httptest.NewRequest(http.MethodGet, "/api/tracker/eta.json?key=ONE", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, first)
	assert.Equal(t, http.StatusOK, rr.Code)

	// The first key is exhausted but a different key still has budget.
	second := httptest.NewRequest(http.MethodGet, "/api/tracker/eta.json?key=TWO", nil)
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, second)
	assert.Equal(t, http.StatusOK, rr.Code)

	repeat := httptest.NewRequest(http.MethodGet, "/api/tracker/eta.json?key=ONE", nil)
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, repeat)
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
}

func TestNegativeRateDisablesLimiting(t *testing.T) {
	middleware := NewRateLimitMiddleware(-1, time.Second)
	handler := middleware(okHandler())

	for i := 0; i < 50; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/tracker/eta.json?key=TEST", nil)
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusOK, rr.Code)
	}
}
