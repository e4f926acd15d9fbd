package middleware

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/qatledger/internal/usecase"
)

// fakeIdempotencyStore keeps keys in a map so replays can be exercised end to end.
type fakeIdempotencyStore struct {
	mu       sync.Mutex
	values   map[string][]byte
	released []string
	err      error
	lastTTL  time.Duration
}

func newFakeIdempotencyStore() *fakeIdempotencyStore {
	return &fakeIdempotencyStore{values: map[string][]byte{}}
}

func (f *fakeIdempotencyStore) CheckAndSet(_ context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return false, nil, f.err
	}
	f.lastTTL = ttl
	if v, ok := f.values[key]; ok {
		return true, v, nil
	}
	if response == nil {
		response = []byte(usecase.IdempotencyPending)
	}
	f.values[key] = response
	return false, nil, nil
}

func (f *fakeIdempotencyStore) Update(_ context.Context, key string, response []byte, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.values[key] = response
	return nil
}

func (f *fakeIdempotencyStore) Release(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.values, key)
	f.released = append(f.released, key)
	return nil
}

func newIdempotentRequest(method, path, key string) *http.Request {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(`{}`))
	req.Header.Set(IdempotencyKeyHeader, key)
	return req
}

func TestIdempotencyMiddleware_StoreErrorFailsRequest(t *testing.T) {
	store := newFakeIdempotencyStore()
	store.err = context.DeadlineExceeded
	mw := NewIdempotencyMiddleware(store, time.Minute, zerolog.Nop())

	called := false
	rr := httptest.NewRecorder()
	mw.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	})).ServeHTTP(rr, newIdempotentRequest(http.MethodPost, "/api/v1/sales", "key-err"))

	if called {
		t.Fatalf("handler should not be called when store errors")
	}
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected status 500, got %d", rr.Code)
	}
}

func TestIdempotencyMiddleware_ReplaysFirstResponse(t *testing.T) {
	store := newFakeIdempotencyStore()
	mw := NewIdempotencyMiddleware(store, time.Minute, zerolog.Nop())

	calls := 0
	handler := mw.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":"s1"}`))
	}))

	first := httptest.NewRecorder()
	handler.ServeHTTP(first, newIdempotentRequest(http.MethodPost, "/api/v1/sales", "key-1"))

	second := httptest.NewRecorder()
	handler.ServeHTTP(second, newIdempotentRequest(http.MethodPost, "/api/v1/sales", "key-1"))

	if calls != 1 {
		t.Fatalf("expected handler to run once, ran %d times", calls)
	}
	if second.Code != http.StatusCreated {
		t.Fatalf("expected replayed status 201, got %d", second.Code)
	}
	if second.Header().Get(IdempotencyReplayHeader) != "true" {
		t.Fatalf("expected replay header")
	}
	if got := second.Body.String(); got != `{"id":"s1"}` {
		t.Fatalf("unexpected replayed body: %s", got)
	}
	if store.lastTTL != time.Minute {
		t.Fatalf("expected configured ttl, got %v", store.lastTTL)
	}
}

func TestIdempotencyMiddleware_KeysAreScopedToRoute(t *testing.T) {
	store := newFakeIdempotencyStore()
	mw := NewIdempotencyMiddleware(store, time.Minute, zerolog.Nop())

	calls := 0
	handler := mw.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusCreated)
	}))

	handler.ServeHTTP(httptest.NewRecorder(), newIdempotentRequest(http.MethodPost, "/api/v1/sales", "shared"))
	handler.ServeHTTP(httptest.NewRecorder(), newIdempotentRequest(http.MethodPost, "/api/v1/purchases", "shared"))

	if calls != 2 {
		t.Fatalf("expected both routes to run, got %d calls", calls)
	}
}

func TestIdempotencyMiddleware_ReleasesKeyOnFailure(t *testing.T) {
	store := newFakeIdempotencyStore()
	mw := NewIdempotencyMiddleware(store, time.Minute, zerolog.Nop())

	rr := httptest.NewRecorder()
	mw.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	})).ServeHTTP(rr, newIdempotentRequest(http.MethodDelete, "/api/v1/vouchers/v1", "key-fail"))

	if len(store.released) != 1 || !strings.HasSuffix(store.released[0], "key-fail") {
		t.Fatalf("expected failed request to release its key, got %v", store.released)
	}
	if len(store.values) != 0 {
		t.Fatalf("expected no cached responses, got %v", store.values)
	}
}

func TestIdempotencyMiddleware_PendingKeyConflicts(t *testing.T) {
	store := newFakeIdempotencyStore()
	store.values["POST /api/v1/sales busy"] = []byte(usecase.IdempotencyPending)
	mw := NewIdempotencyMiddleware(store, time.Minute, zerolog.Nop())

	rr := httptest.NewRecorder()
	mw.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("handler should not run while the first request is pending")
	})).ServeHTTP(rr, newIdempotentRequest(http.MethodPost, "/api/v1/sales", "busy"))

	if rr.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rr.Code)
	}
}

func TestIdempotencyMiddleware_SkipsReadsAndMissingKeys(t *testing.T) {
	store := newFakeIdempotencyStore()
	mw := NewIdempotencyMiddleware(store, 0, zerolog.Nop())

	testCases := []struct {
		name string
		req  *http.Request
	}{
		{name: "get request", req: newIdempotentRequest(http.MethodGet, "/api/v1/sales", "k")},
		{name: "no key", req: httptest.NewRequest(http.MethodPost, "/api/v1/sales", nil)},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			called := false
			mw.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				called = true
			})).ServeHTTP(httptest.NewRecorder(), tc.req)

			if !called {
				t.Fatalf("expected next handler to be called")
			}
		})
	}

	if len(store.values) != 0 {
		t.Fatalf("store should be untouched, got %v", store.values)
	}
}
