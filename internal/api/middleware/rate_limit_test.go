package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestRateLimiter_Allow(t *testing.T) {
	now := time.Unix(1700000000, 0)
	rl := NewRateLimiter(2)
	rl.now = func() time.Time { return now }

	if !rl.Allow("1.2.3.4") || !rl.Allow("1.2.3.4") {
		t.Fatal("Expected first two requests to pass")
	}
	if rl.Allow("1.2.3.4") {
		t.Error("Expected third request to be limited")
	}
	if !rl.Allow("5.6.7.8") {
		t.Error("Expected other clients to have their own bucket")
	}

	now = now.Add(30 * time.Second)
	if !rl.Allow("1.2.3.4") {
		t.Error("Expected bucket to refill after 30s")
	}

	now = now.Add(20 * time.Minute)
	rl.Cleanup(10 * time.Minute)
	count := 0
	rl.store.Range(func(_, _ interface{}) bool { count++; return true })
	if count != 0 {
		t.Errorf("Expected idle buckets to be removed, got %d", count)
	}
}

func TestRateLimiter_Handle(t *testing.T) {
	rl := NewRateLimiter(1)
	handler := rl.Handle(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	for i, want := range []int{http.StatusOK, http.StatusTooManyRequests} {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/token", nil)
		req.RemoteAddr = "10.0.0.1:5555"
		rr := httptest.NewRecorder()
		handler(rr, req)

		if rr.Code != want {
			t.Errorf("request %d: got %d, want %d", i, rr.Code, want)
		}
	}
}
