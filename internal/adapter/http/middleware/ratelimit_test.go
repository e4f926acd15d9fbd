package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestGetIP(t *testing.T) {
	testCases := []struct {
		name       string
		forwarded  string
		realIP     string
		remoteAddr string
		expected   string
	}{
		{name: "first forwarded entry", forwarded: "10.0.0.1, 172.16.0.1", remoteAddr: "1.1.1.1:80", expected: "10.0.0.1"},
		{name: "real ip header", realIP: "10.0.0.2", remoteAddr: "1.1.1.1:80", expected: "10.0.0.2"},
		{name: "remote addr without port", remoteAddr: "192.168.1.5:5555", expected: "192.168.1.5"},
		{name: "remote addr without port suffix", remoteAddr: "192.168.1.6", expected: "192.168.1.6"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tc.remoteAddr
			if tc.forwarded != "" {
				req.Header.Set("X-Forwarded-For", tc.forwarded)
			}
			if tc.realIP != "" {
				req.Header.Set("X-Real-IP", tc.realIP)
			}

			if got := getIP(req); got != tc.expected {
				t.Fatalf("getIP() = %q, expected %q", got, tc.expected)
			}
		})
	}
}

func TestRateLimiter_PerClient(t *testing.T) {
	rl := NewRateLimiter(1, 1)
	handler := rl.Limit(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	send := func(addr string) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = addr
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		return rr.Code
	}

	if code := send("1.2.3.4:1000"); code != http.StatusOK {
		t.Fatalf("expected first request to pass, got %d", code)
	}
	// Same client on another port shares the budget.
	if code := send("1.2.3.4:2000"); code != http.StatusTooManyRequests {
		t.Fatalf("expected second request to be throttled, got %d", code)
	}
	if code := send("5.6.7.8:1000"); code != http.StatusOK {
		t.Fatalf("expected other client to pass, got %d", code)
	}

	if rl.Size() != 2 {
		t.Fatalf("expected 2 tracked clients, got %d", rl.Size())
	}
	rl.CleanupLimiters()
	if rl.Size() != 0 {
		t.Fatalf("expected cleanup to drop limiters")
	}
	if code := send("1.2.3.4:1000"); code != http.StatusOK {
		t.Fatalf("expected fresh budget after cleanup, got %d", code)
	}
}
