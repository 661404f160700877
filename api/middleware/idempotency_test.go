package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tuanvle/dacsan-backend/pkg/types"
)

type fakeReplayStore struct {
	data map[string]string
}

func newFakeReplayStore() *fakeReplayStore {
	return &fakeReplayStore{data: make(map[string]string)}
}

func (f *fakeReplayStore) Get(_ context.Context, key string) (string, error) {
	if v, ok := f.data[key]; ok {
		return v, nil
	}
	return "", redis.Nil
}

func (f *fakeReplayStore) SetNX(_ context.Context, key string, value any, _ time.Duration) (bool, error) {
	if _, ok := f.data[key]; ok {
		return false, nil
	}
	str, _ := value.(string)
	f.data[key] = str
	return true, nil
}

func (f *fakeReplayStore) IdempotencyKey(scope, id string) string {
	return fmt.Sprintf("fake:%s:%s", scope, id)
}

func (f *fakeReplayStore) Del(_ context.Context, keys ...string) error {
	for _, key := range keys {
		delete(f.data, key)
	}
	return nil
}

func checkoutRequest(body, key string, userID string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", strings.NewReader(body))
	if key != "" {
		req.Header.Set("Idempotency-Key", key)
	}
	if userID != "" {
		req = req.WithContext(WithUserID(req.Context(), userID))
	}
	return req
}

func TestReplayTTLSelection(t *testing.T) {
	tests := []struct {
		name   string
		method string
		path   string
		want   time.Duration
		ok     bool
	}{
		{"checkout", http.MethodPost, "/api/v1/checkout", criticalReplayTTL, true},
		{"status transition", http.MethodPatch, "/api/v1/vendor/orders/4f1c/status", criticalReplayTTL, true},
		{"register", http.MethodPost, "/api/v1/auth/register", replayTTL, true},
		{"cart add", http.MethodPost, "/api/v1/cart/items", replayTTL, true},
		{"login not guarded", http.MethodPost, "/api/v1/auth/login", 0, false},
		{"reads not guarded", http.MethodGet, "/api/v1/checkout", 0, false},
	}

	for _, tt := range tests {
		ttl, ok := replayTTLFor(tt.method, tt.path)
		if ok != tt.ok {
			t.Fatalf("%s: expected ok=%v got %v", tt.name, tt.ok, ok)
		}
		if ok && ttl != tt.want {
			t.Fatalf("%s: expected ttl=%v got %v", tt.name, tt.want, ttl)
		}
	}
}

func TestIdempotencyRequiresHeader(t *testing.T) {
	mw := Idempotency(newFakeReplayStore(), nil)
	handlerCalled := false
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handlerCalled = true
	})

	resp := httptest.NewRecorder()
	mw(handler).ServeHTTP(resp, checkoutRequest(`{"address_id":"a"}`, "", "user-1"))

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
	if handlerCalled {
		t.Fatal("handler should not run without an idempotency key")
	}
}

func TestIdempotencyReplaysStoredResponse(t *testing.T) {
	mw := Idempotency(newFakeReplayStore(), nil)
	var calls int
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"data":{"order_number":"ORD2026090100001"}}`))
	})
	wrapped := mw(handler)

	body := `{"address_id":"a","payment_method":"COD"}`

	first := httptest.NewRecorder()
	wrapped.ServeHTTP(first, checkoutRequest(body, "retry-1", "user-1"))
	if first.Code != http.StatusCreated {
		t.Fatalf("expected first response 201 got %d", first.Code)
	}

	second := httptest.NewRecorder()
	wrapped.ServeHTTP(second, checkoutRequest(body, "retry-1", "user-1"))
	if second.Code != http.StatusCreated {
		t.Fatalf("expected replayed 201 got %d", second.Code)
	}
	if calls != 1 {
		t.Fatalf("expected handler to run once, got %d", calls)
	}
	if first.Body.String() != second.Body.String() {
		t.Fatalf("replay body %q differs from original %q", second.Body.String(), first.Body.String())
	}
	if ct := second.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("replay lost content type, got %q", ct)
	}
}

func TestIdempotencyRejectsKeyReuseWithDifferentBody(t *testing.T) {
	mw := Idempotency(newFakeReplayStore(), nil)
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	})
	wrapped := mw(handler)

	first := httptest.NewRecorder()
	wrapped.ServeHTTP(first, checkoutRequest(`{"address_id":"a"}`, "retry-1", "user-1"))

	second := httptest.NewRecorder()
	wrapped.ServeHTTP(second, checkoutRequest(`{"address_id":"b"}`, "retry-1", "user-1"))
	if second.Code != http.StatusConflict {
		t.Fatalf("expected 409 got %d", second.Code)
	}

	var envelope types.ErrorEnvelope
	if err := json.Unmarshal(second.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	if envelope.Error.Code != "IDEMPOTENCY_KEY_REUSED" {
		t.Fatalf("expected IDEMPOTENCY_KEY_REUSED got %q", envelope.Error.Code)
	}
}

func TestIdempotencyScopesCachePerUser(t *testing.T) {
	mw := Idempotency(newFakeReplayStore(), nil)
	var calls int
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusCreated)
	})
	wrapped := mw(handler)

	body := `{"address_id":"a"}`
	wrapped.ServeHTTP(httptest.NewRecorder(), checkoutRequest(body, "retry-1", "user-1"))
	wrapped.ServeHTTP(httptest.NewRecorder(), checkoutRequest(body, "retry-1", "user-2"))

	if calls != 2 {
		t.Fatalf("expected both users to reach the handler, got %d calls", calls)
	}
}

func TestIdempotencyIgnoresUnguardedRoutes(t *testing.T) {
	mw := Idempotency(newFakeReplayStore(), nil)
	var calls int
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	})
	wrapped := mw(handler)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	wrapped.ServeHTTP(httptest.NewRecorder(), req)
	wrapped.ServeHTTP(httptest.NewRecorder(), req)

	if calls != 2 {
		t.Fatalf("expected unguarded route to pass through, got %d calls", calls)
	}
}
