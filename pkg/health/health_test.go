package health

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pass(_ context.Context) error { return nil }

func fail(msg string) CheckFunc {
	return func(_ context.Context) error { return errors.New(msg) }
}

// serve drives one probe endpoint and decodes the JSON status body.
func serve(t *testing.T, endpoint http.HandlerFunc, path string) (int, statusResponse) {
	t.Helper()

	w := httptest.NewRecorder()
	endpoint(w, httptest.NewRequest(http.MethodGet, path, nil))

	var body statusResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	return w.Code, body
}

func TestLiveness_StartsHealthy(t *testing.T) {
	h := New()
	h.AddLivenessCheck("goroutines", time.Second, pass)
	h.AddLivenessCheck("gc", time.Second, pass)

	code, body := serve(t, h.LiveEndpoint, "/livez")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", body.Status)
}

func TestLiveness_FlipsAfterFailureThreshold(t *testing.T) {
	h := New()
	h.AddLivenessCheck("goroutines", time.Second, fail("too many"))
	c := h.livenessChecks[0]
	ctx := context.Background()

	// Two failures stay under the threshold of three.
	c.run(ctx)
	c.run(ctx)
	code, _ := serve(t, h.LiveEndpoint, "/livez")
	assert.Equal(t, http.StatusOK, code)

	c.run(ctx)
	code, body := serve(t, h.LiveEndpoint, "/livez")
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, "unhealthy", body.Status)
	assert.Equal(t, "too many", body.Checks["goroutines"])
}

func TestLiveness_RecoversOnFirstSuccess(t *testing.T) {
	down := true
	h := New()
	h.AddLivenessCheck("postgres", time.Second, func(_ context.Context) error {
		if down {
			return errors.New("connection refused")
		}
		return nil
	})
	c := h.livenessChecks[0]
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		c.run(ctx)
	}
	require.False(t, c.isHealthy())

	down = false
	c.run(ctx)
	assert.True(t, c.isHealthy())
}

func TestReadiness_GatedOnSetReady(t *testing.T) {
	h := New()
	h.AddReadinessCheck("postgres", time.Second, pass)

	// Not ready until the app flips the switch, even with passing checks.
	code, body := serve(t, h.ReadyEndpoint, "/readyz")
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Contains(t, body.Checks, "_readiness")
	assert.False(t, h.IsReady())

	h.SetReady(true)
	code, body = serve(t, h.ReadyEndpoint, "/readyz")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", body.Status)
	assert.True(t, h.IsReady())

	// Shutdown drains by flipping back.
	h.SetReady(false)
	code, _ = serve(t, h.ReadyEndpoint, "/readyz")
	assert.Equal(t, http.StatusServiceUnavailable, code)
}

func TestReadiness_ReportsOnlyFailingChecks(t *testing.T) {
	h := New()
	h.AddReadinessCheck("postgres", time.Second, pass)
	h.AddReadinessCheck("redis", time.Second, fail("broker down"))
	h.SetReady(true)

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		h.readinessChecks[1].run(ctx)
	}

	code, body := serve(t, h.ReadyEndpoint, "/readyz")
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Contains(t, body.Checks, "redis")
	assert.NotContains(t, body.Checks, "postgres")
}

func TestNoChecksRegistered(t *testing.T) {
	h := New()
	h.SetReady(true)

	code, _ := serve(t, h.LiveEndpoint, "/livez")
	assert.Equal(t, http.StatusOK, code)
	code, _ = serve(t, h.ReadyEndpoint, "/readyz")
	assert.Equal(t, http.StatusOK, code)
}

func TestLastErrorStored(t *testing.T) {
	h := New()
	h.AddLivenessCheck("postgres", time.Second, fail("timeout"))
	c := h.livenessChecks[0]

	assert.Nil(t, c.getLastError())
	c.run(context.Background())
	assert.EqualError(t, c.getLastError(), "timeout")
}

func TestStopIsIdempotent(t *testing.T) {
	h := New()
	h.AddLivenessCheck("goroutines", time.Second, pass)

	h.Start(context.Background(), 100*time.Millisecond)
	time.Sleep(50 * time.Millisecond)

	h.Stop()
	h.Stop()
}

func TestConcurrentProbes(t *testing.T) {
	h := New()
	h.AddLivenessCheck("flaky", time.Second, fail("err"))
	h.AddReadinessCheck("postgres", time.Second, pass)
	h.SetReady(true)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	h.Start(ctx, 10*time.Millisecond)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				h.IsReady()
				serve(t, h.LiveEndpoint, "/livez")
				serve(t, h.ReadyEndpoint, "/readyz")
			}
		}()
	}
	wg.Wait()
	h.Stop()
}

type fakePinger struct{ err error }

func (p fakePinger) Ping(context.Context) error { return p.err }

func TestPingCheck(t *testing.T) {
	assert.NoError(t, PingCheck(fakePinger{})(context.Background()))

	err := PingCheck(fakePinger{err: errors.New("refused")})(context.Background())
	assert.ErrorContains(t, err, "refused")
}

func TestGoroutineCountCheck(t *testing.T) {
	assert.NoError(t, GoroutineCountCheck(100000)(context.Background()))

	err := GoroutineCountCheck(0)(context.Background())
	assert.ErrorContains(t, err, "exceeds threshold")
}

func TestGCMaxPauseCheck(t *testing.T) {
	assert.NoError(t, GCMaxPauseCheck(time.Hour)(context.Background()))
}
