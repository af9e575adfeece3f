package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeTestHandler(l *RateLimiter) http.Handler {
	return l.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
}

func doRequest(h http.Handler, remoteAddr string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/tournaments/7/select", nil)
	req.RemoteAddr = remoteAddr
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestRateLimiter_AllowsInitialBurst(t *testing.T) {
	h := makeTestHandler(NewRateLimiter(time.Hour, 3, time.Minute))

	for i := 0; i < 3; i++ {
		w := doRequest(h, "10.0.0.1:5000")
		require.Equal(t, http.StatusOK, w.Code, "request %d", i+1)
	}

	w := doRequest(h, "10.0.0.1:5001")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), "Too many requests")
}

func TestRateLimiter_SeparatesClients(t *testing.T) {
	h := makeTestHandler(NewRateLimiter(time.Hour, 1, time.Minute))

	assert.Equal(t, http.StatusOK, doRequest(h, "10.0.0.1:1").Code)
	assert.Equal(t, http.StatusTooManyRequests, doRequest(h, "10.0.0.1:2").Code)
	assert.Equal(t, http.StatusOK, doRequest(h, "10.0.0.2:1").Code)
}

func TestRateLimiter_EvictsIdleVisitors(t *testing.T) {
	l := NewRateLimiter(time.Hour, 1, time.Minute)
	h := makeTestHandler(l)

	require.Equal(t, http.StatusOK, doRequest(h, "10.0.0.1:1").Code)
	require.Equal(t, http.StatusTooManyRequests, doRequest(h, "10.0.0.1:1").Code)

	l.evict(time.Now().Add(2 * time.Minute))

	assert.Equal(t, http.StatusOK, doRequest(h, "10.0.0.1:1").Code)
}
