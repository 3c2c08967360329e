package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/stockwise-ai/stockwise-backend/pkg/config"
	"github.com/stockwise-ai/stockwise-backend/pkg/metrics"
)

type fakeWindowStore struct {
	counts map[string]int64
	err    error
}

func (f *fakeWindowStore) SlidingWindowAllow(_ context.Context, scope string, limit int64, _ time.Duration) (bool, int64, error) {
	if f.err != nil {
		return false, 0, f.err
	}
	if f.counts == nil {
		f.counts = map[string]int64{}
	}
	if f.counts[scope] >= limit {
		return false, f.counts[scope], nil
	}
	f.counts[scope]++
	return true, f.counts[scope], nil
}

func limitedHandler(store windowStore) http.Handler {
	cfg := config.RateLimitConfig{Window: time.Minute, Requests: 2}
	m := metrics.NewPipelineMetrics(prometheus.NewRegistry())
	return RateLimit(cfg, store, m, nil)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
}

func TestRateLimit_EnforcesPerScope(t *testing.T) {
	handler := limitedHandler(&fakeWindowStore{})

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req.RemoteAddr = "10.1.1.1:4000"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d: status = %d, want 200", i, rec.Code)
		}
	}

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.RemoteAddr = "10.1.1.1:4000"
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", rec.Code)
	}

	// A different caller still has budget.
	other := httptest.NewRequest(http.MethodPost, "/", nil)
	other.RemoteAddr = "10.2.2.2:4000"
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, other)
	if rec.Code != http.StatusOK {
		t.Fatalf("independent scope blocked: %d", rec.Code)
	}
}

func TestRateLimit_PrefersClientIdentity(t *testing.T) {
	store := &fakeWindowStore{}
	handler := limitedHandler(store)

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req = req.WithContext(WithClientID(req.Context(), "dashboard"))
	req.RemoteAddr = "10.1.1.1:4000"
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if store.counts["dashboard"] != 1 {
		t.Fatalf("expected scope keyed by client id, got %+v", store.counts)
	}
}

func TestRateLimit_StoreErrorRejects(t *testing.T) {
	handler := limitedHandler(&fakeWindowStore{err: errors.New("redis down")})

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
}

func TestRateLimit_DisabledWithoutStore(t *testing.T) {
	cfg := config.RateLimitConfig{Window: time.Minute, Requests: 2}
	handler := RateLimit(cfg, nil, nil, nil)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}
