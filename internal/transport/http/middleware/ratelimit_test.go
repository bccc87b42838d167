package middleware

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"shiftdesk/internal/domain/auth"
)

func TestRateLimitUsesActorKeyBeforeIPFallback(t *testing.T) {
	limited := RateLimit(1, time.Minute)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	userCtx := WithActor(context.Background(), auth.Actor{EmployeeID: "emp-1", Role: auth.RoleEmployee})

	first := httptest.NewRequest(http.MethodPost, "/api/v1/swaps/o1/approve", nil).WithContext(userCtx)
	first.RemoteAddr = "198.51.100.11:2222"
	firstRec := httptest.NewRecorder()
	limited.ServeHTTP(firstRec, first)
	if firstRec.Code != http.StatusNoContent {
		t.Fatalf("expected first request to pass, got %d", firstRec.Code)
	}

	second := httptest.NewRequest(http.MethodPost, "/api/v1/swaps/o1/approve", nil).WithContext(userCtx)
	second.RemoteAddr = "198.51.100.12:3333"
	secondRec := httptest.NewRecorder()
	limited.ServeHTTP(secondRec, second)
	if secondRec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected second request to be throttled by actor key, got %d", secondRec.Code)
	}
}

func TestRateLimitFallsBackToIP(t *testing.T) {
	limited := RateLimit(1, time.Minute)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	first := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewBufferString(`{"email":"a@example.com"}`))
	first.Header.Set("Content-Type", "application/json")
	first.RemoteAddr = "203.0.113.10:4444"
	firstRec := httptest.NewRecorder()
	limited.ServeHTTP(firstRec, first)
	if firstRec.Code != http.StatusNoContent {
		t.Fatalf("expected first request to pass, got %d", firstRec.Code)
	}

	second := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewBufferString(`{"email":"b@example.com"}`))
	second.Header.Set("Content-Type", "application/json")
	second.RemoteAddr = "203.0.113.10:5555"
	secondRec := httptest.NewRecorder()
	limited.ServeHTTP(secondRec, second)
	if secondRec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected second request to be throttled by ip key, got %d", secondRec.Code)
	}
}

func TestRateLimitWindowReset(t *testing.T) {
	limited := RateLimit(1, 40*time.Millisecond)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	req1 := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewBufferString(`{"email":"a@example.com"}`))
	req1.Header.Set("Content-Type", "application/json")
	req1.RemoteAddr = "192.0.2.20:1111"
	rec1 := httptest.NewRecorder()
	limited.ServeHTTP(rec1, req1)
	if rec1.Code != http.StatusNoContent {
		t.Fatalf("expected first request to pass, got %d", rec1.Code)
	}

	req2 := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewBufferString(`{"email":"a@example.com"}`))
	req2.Header.Set("Content-Type", "application/json")
	req2.RemoteAddr = "192.0.2.20:1111"
	rec2 := httptest.NewRecorder()
	limited.ServeHTTP(rec2, req2)
	if rec2.Code != http.StatusTooManyRequests {
		t.Fatalf("expected second request to be throttled, got %d", rec2.Code)
	}

	time.Sleep(50 * time.Millisecond)

	req3 := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewBufferString(`{"email":"a@example.com"}`))
	req3.Header.Set("Content-Type", "application/json")
	req3.RemoteAddr = "192.0.2.20:1111"
	rec3 := httptest.NewRecorder()
	limited.ServeHTTP(rec3, req3)
	if rec3.Code != http.StatusNoContent {
		t.Fatalf("expected third request after window reset to pass, got %d", rec3.Code)
	}
}

func TestRateLimitReturnsRetryMetadata(t *testing.T) {
	limited := RateLimit(1, time.Minute)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	req1 := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewBufferString(`{"email":"a@example.com"}`))
	req1.Header.Set("Content-Type", "application/json")
	req1.RemoteAddr = "192.0.2.30:1234"
	limited.ServeHTTP(httptest.NewRecorder(), req1)

	req2 := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewBufferString(`{"email":"a@example.com"}`))
	req2.Header.Set("Content-Type", "application/json")
	req2.RemoteAddr = "192.0.2.30:1234"
	rec := httptest.NewRecorder()
	limited.ServeHTTP(rec, req2)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected throttled response, got %d", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Fatal("expected Retry-After header")
	}
	if rec.Header().Get("X-RateLimit-Reset") == "" {
		t.Fatal("expected X-RateLimit-Reset header")
	}
}

func TestSensitiveMutationRateLimitScope(t *testing.T) {
	limited := SensitiveMutationRateLimit(4, time.Minute)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	for i := 0; i < 6; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/roster/week", nil)
		req.RemoteAddr = "198.51.100.40:8888"
		rec := httptest.NewRecorder()
		limited.ServeHTTP(rec, req)
		if rec.Code != http.StatusNoContent {
			t.Fatalf("expected read route request %d to bypass sensitive limits, got %d", i+1, rec.Code)
		}
	}

	userCtx := WithActor(context.Background(), auth.Actor{EmployeeID: "mgr-1", Role: auth.RoleManager})
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/swaps/o1/approve", nil).WithContext(userCtx)
		req.RemoteAddr = "198.51.100.41:9999"
		rec := httptest.NewRecorder()
		limited.ServeHTTP(rec, req)
		if i < 2 && rec.Code != http.StatusNoContent {
			t.Fatalf("expected sensitive request %d to pass, got %d", i+1, rec.Code)
		}
		if i == 2 && rec.Code != http.StatusTooManyRequests {
			t.Fatalf("expected third sensitive request to be throttled, got %d", rec.Code)
		}
	}
}

func TestSensitiveRateScopeRoutes(t *testing.T) {
	tests := []struct {
		method string
		path   string
		want   sensitiveScope
	}{
		{http.MethodPost, "/api/v1/auth/login", sensitiveScopeAuth},
		{http.MethodPost, "/auth/login", sensitiveScopeAuth},
		{http.MethodGet, "/api/v1/auth/me", sensitiveScopeNone},

		{http.MethodPost, "/api/v1/swaps", sensitiveScopeActor},
		{http.MethodPost, "/api/v1/swaps/o1/claim", sensitiveScopeActor},
		{http.MethodPost, "/api/v1/swaps/o1/approve", sensitiveScopeActor},
		{http.MethodPost, "/api/v1/swaps/o1/reject/", sensitiveScopeActor},
		{http.MethodGet, "/api/v1/swaps/market", sensitiveScopeNone},
		{http.MethodGet, "/api/v1/swaps/o1/claim", sensitiveScopeNone},
		{http.MethodPost, "/api/v1/swaps//claim", sensitiveScopeNone},
		{http.MethodPost, "/api/v1/swaps/o1/claim/extra", sensitiveScopeNone},

		{http.MethodPost, "/api/v1/leave", sensitiveScopeNone},
		{http.MethodPost, "/api/v1/leave/l1/approve", sensitiveScopeActor},
		{http.MethodPost, "/api/v1/leave/l1/reject", sensitiveScopeActor},
		{http.MethodPost, "/api/v1/leave/l1/claim", sensitiveScopeNone},

		{http.MethodPost, "/api/v1/timebank/clock-in", sensitiveScopeActor},
		{http.MethodPost, "/api/v1/timebank/clock-out", sensitiveScopeActor},
		{http.MethodGet, "/api/v1/timebank/current", sensitiveScopeNone},

		{http.MethodPost, "/api/v1/staff/e1/balance-adjustments", sensitiveScopeActor},
		{http.MethodGet, "/api/v1/staff/e1/balance-adjustments", sensitiveScopeNone},
		{http.MethodPost, "/api/v1/staff", sensitiveScopeNone},

		{http.MethodPost, "/api/v1/jobs/availability-retention/run", sensitiveScopeActor},
		{http.MethodPut, "/api/v1/availability/2024-05-06", sensitiveScopeNone},
		{http.MethodPatch, "/api/v1/roster/shifts/s1", sensitiveScopeNone},
		{http.MethodDelete, "/api/v1/roster/shifts/s1", sensitiveScopeNone},
		{http.MethodGet, "/api/v1/roster/week", sensitiveScopeNone},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(tt.method, tt.path, nil)
		if got := sensitiveRateScope(req); got != tt.want {
			t.Fatalf("%s %s: expected scope %q, got %q", tt.method, tt.path, tt.want, got)
		}
	}
	if got := sensitiveRateScope(nil); got != sensitiveScopeNone {
		t.Fatalf("nil request: expected no scope, got %q", got)
	}
}
