package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestAllowWithinLimit(t *testing.T) {
	rl := NewLimiter(Config{RequestsPerMinute: 3})
	defer rl.Stop()

	for i := 0; i < 3; i++ {
		if !rl.Allow("1.2.3.4") {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}
	if rl.Allow("1.2.3.4") {
		t.Fatal("fourth request should be rejected")
	}
	// Other clients have their own window.
	if !rl.Allow("5.6.7.8") {
		t.Fatal("different client should be allowed")
	}
}

func TestMiddlewareOnlyLimitsMutations(t *testing.T) {
	rl := NewLimiter(Config{RequestsPerMinute: 1})
	defer rl.Stop()

	var handler http.Handler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler = rl.Middleware(nil)(handler)

	post := func() int {
		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/add_month", nil)
		req.RemoteAddr = "9.9.9.9:1000"
		handler.ServeHTTP(rr, req)
		return rr.Code
	}

	if code := post(); code != http.StatusOK {
		t.Fatalf("first POST status=%d", code)
	}
	if code := post(); code != http.StatusTooManyRequests {
		t.Fatalf("second POST status=%d, want 429", code)
	}

	// GETs always pass, even from the throttled client.
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/months", nil)
	req.RemoteAddr = "9.9.9.9:1000"
	handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("GET status=%d", rr.Code)
	}
}

func TestTooManyRequestsResponse(t *testing.T) {
	rl := NewLimiter(Config{RequestsPerMinute: 1})
	defer rl.Stop()

	handler := rl.Middleware(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	for i := 0; i < 2; i++ {
		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodDelete, "/delete_bill/1", nil)
		req.RemoteAddr = "8.8.8.8:1000"
		handler.ServeHTTP(rr, req)
		if i == 1 {
			if rr.Code != http.StatusTooManyRequests {
				t.Fatalf("status=%d", rr.Code)
			}
			if rr.Header().Get("Retry-After") != "60" {
				t.Fatalf("missing Retry-After header")
			}
		}
	}
}
