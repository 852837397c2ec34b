package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"perfeval/internal/domain/auth"
)

func noContent() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
}

func TestRateLimitUsesUserKeyBeforeIPFallback(t *testing.T) {
	limited := RateLimit(1, time.Minute, UserOrIPKey)(noContent())
	userCtx := WithUser(httptest.NewRequest(http.MethodGet, "/", nil).Context(), auth.UserContext{UserID: "user-1"})

	first := httptest.NewRequest(http.MethodGet, "/api/v1/evaluation/periods/p1/dashboard", nil).WithContext(userCtx)
	first.RemoteAddr = "198.51.100.11:2222"
	firstRec := httptest.NewRecorder()
	limited.ServeHTTP(firstRec, first)
	if firstRec.Code != http.StatusNoContent {
		t.Fatalf("expected first request to pass, got %d", firstRec.Code)
	}

	second := httptest.NewRequest(http.MethodGet, "/api/v1/evaluation/periods/p1/dashboard", nil).WithContext(userCtx)
	second.RemoteAddr = "198.51.100.12:3333"
	secondRec := httptest.NewRecorder()
	limited.ServeHTTP(secondRec, second)
	if secondRec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected second request to be throttled by user key, got %d", secondRec.Code)
	}
	if secondRec.Header().Get("Retry-After") == "" {
		t.Fatal("expected Retry-After header")
	}
}

func TestRateLimitDisabled(t *testing.T) {
	limited := RateLimit(0, time.Minute, nil)(noContent())
	for i := 0; i < 5; i++ {
		rec := httptest.NewRecorder()
		limited.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		if rec.Code != http.StatusNoContent {
			t.Fatalf("expected disabled limiter to pass, got %d", rec.Code)
		}
	}
}

func TestLoginRateLimitByEmailAcrossIPs(t *testing.T) {
	limited := LoginRateLimit(1, time.Minute)(noContent())

	send := func(email, addr string) int {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewBufferString(`{"email":"`+email+`"}`))
		req.Header.Set("Content-Type", "application/json")
		req.RemoteAddr = addr
		rec := httptest.NewRecorder()
		limited.ServeHTTP(rec, req)
		return rec.Code
	}

	if code := send("a@example.com", "203.0.113.10:4444"); code != http.StatusNoContent {
		t.Fatalf("expected first login to pass, got %d", code)
	}
	if code := send("A@example.com", "203.0.113.11:5555"); code != http.StatusTooManyRequests {
		t.Fatalf("expected same email from another ip to be throttled, got %d", code)
	}
	if code := send("b@example.com", "203.0.113.10:6666"); code != http.StatusTooManyRequests {
		t.Fatalf("expected same ip with another email to be throttled, got %d", code)
	}
}

func TestLoginRateLimitPreservesBody(t *testing.T) {
	limited := LoginRateLimit(5, time.Minute)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		buf := new(bytes.Buffer)
		if _, err := buf.ReadFrom(r.Body); err != nil {
			t.Fatalf("read body: %v", err)
		}
		if buf.String() != `{"email":"a@example.com"}` {
			t.Fatalf("expected body to be replayed, got %q", buf.String())
		}
	}))
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewBufferString(`{"email":"a@example.com"}`))
	req.Header.Set("Content-Type", "application/json")
	limited.ServeHTTP(httptest.NewRecorder(), req)
}

func TestRateLimitWindowResets(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	rl := newRateLimiter(1, time.Minute, ClientIPKey)
	rl.now = func() time.Time { return now }

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if !rl.enforce(httptest.NewRecorder(), req) {
		t.Fatal("expected first request to pass")
	}
	if rl.enforce(httptest.NewRecorder(), req) {
		t.Fatal("expected second request to be throttled")
	}
	now = now.Add(2 * time.Minute)
	if !rl.enforce(httptest.NewRecorder(), req) {
		t.Fatal("expected request after window to pass")
	}
}

func TestClientIPKey(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.1:1234"
	if got := ClientIPKey(req); got != "192.0.2.1" {
		t.Fatalf("expected remote host, got %q", got)
	}
	req.Header.Set("X-Forwarded-For", "198.51.100.7, 10.0.0.1")
	if got := ClientIPKey(req); got != "198.51.100.7" {
		t.Fatalf("expected first forwarded address, got %q", got)
	}
}
