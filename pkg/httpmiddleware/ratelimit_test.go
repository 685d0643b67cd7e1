package httpmiddleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// hit sends a GET through the wrapped handler pretending to come from addr.
func hit(handler http.Handler, addr string, header http.Header) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/api/products", nil)
	req.RemoteAddr = addr
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	return w
}

func limited(max int, keyFunc func(*http.Request) string) http.Handler {
	mw := RateLimit(RateLimitConfig{Max: max, Window: time.Minute, KeyFunc: keyFunc})
	return mw(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
}

func TestRateLimit_AllowsUpToMax(t *testing.T) {
	handler := limited(5, nil)

	for i := 0; i < 5; i++ {
		w := hit(handler, "192.0.2.10:41000", nil)
		require.Equal(t, http.StatusOK, w.Code, "request %d", i+1)
		assert.Equal(t, "5", w.Header().Get("X-RateLimit-Limit"))
		assert.NotEmpty(t, w.Header().Get("X-RateLimit-Remaining"))
		assert.NotEmpty(t, w.Header().Get("X-RateLimit-Reset"))
	}

	w := hit(handler, "192.0.2.10:41001", nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var body struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.Equal(t, http.StatusTooManyRequests, body.Code)
	assert.Equal(t, "rate limit exceeded", body.Message)
}

func TestRateLimit_BucketsPerClientIP(t *testing.T) {
	handler := limited(1, nil)

	assert.Equal(t, http.StatusOK, hit(handler, "192.0.2.1:1000", nil).Code)
	// A second client has its own bucket.
	assert.Equal(t, http.StatusOK, hit(handler, "192.0.2.2:1000", nil).Code)
	// The first client is out of budget, regardless of source port.
	assert.Equal(t, http.StatusTooManyRequests, hit(handler, "192.0.2.1:2000", nil).Code)
}

func TestRateLimit_CustomKey(t *testing.T) {
	handler := limited(1, func(r *http.Request) string {
		return r.Header.Get("Authorization")
	})

	alice := http.Header{"Authorization": []string{"Bearer alice"}}
	bob := http.Header{"Authorization": []string{"Bearer bob"}}

	assert.Equal(t, http.StatusOK, hit(handler, "192.0.2.1:1000", alice).Code)
	assert.Equal(t, http.StatusTooManyRequests, hit(handler, "192.0.2.9:1000", alice).Code)
	assert.Equal(t, http.StatusOK, hit(handler, "192.0.2.1:1000", bob).Code)
}

func TestRateLimit_TrustsForwardedFor(t *testing.T) {
	handler := limited(1, nil)
	fwd := http.Header{"X-Forwarded-For": []string{"203.0.113.50, 70.41.3.18"}}

	assert.Equal(t, http.StatusOK, hit(handler, "10.0.0.1:1000", fwd).Code)
	// Same originating client behind a different proxy hop is still limited.
	assert.Equal(t, http.StatusTooManyRequests, hit(handler, "10.0.0.2:1000", fwd).Code)
}

func TestRateLimitWithCleanup(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	mw := RateLimitWithCleanup(ctx, RateLimitConfig{Max: 2, Window: time.Minute})
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	assert.Equal(t, http.StatusOK, hit(handler, "192.0.2.77:1000", nil).Code)
	assert.Equal(t, http.StatusOK, hit(handler, "192.0.2.77:1001", nil).Code)
	assert.Equal(t, http.StatusTooManyRequests, hit(handler, "192.0.2.77:1002", nil).Code)
}
