package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/qatledger/internal/adapter/http/handler"
	apimiddleware "github.com/iho/qatledger/internal/adapter/http/middleware"
	"github.com/iho/qatledger/internal/adapter/repository/memory"
	"github.com/iho/qatledger/internal/domain"
	"github.com/iho/qatledger/internal/usecase"
)

type seqIDs struct {
	mu sync.Mutex
	n  int
}

func (g *seqIDs) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("id-%03d", g.n)
}

func newRouterConfig(opts ...func(*RouterConfig)) RouterConfig {
	store := memory.NewStore()
	repos := store.Repositories()
	deps := usecase.Deps{TxManager: store, IDGen: &seqIDs{}, Logger: zerolog.Nop()}

	ledger := usecase.NewLedgerUseCase(repos, deps)
	balance := usecase.NewBalanceUseCase(repos, nil, 0, zerolog.Nop())
	reports := usecase.NewReportUseCase(repos, domain.DefaultExchangeRates())

	cfg := RouterConfig{
		PartyHandler:     handler.NewPartyHandler(usecase.NewPartyUseCase(repos, deps)),
		InventoryHandler: handler.NewInventoryHandler(usecase.NewInventoryUseCase(repos, deps)),
		LedgerHandler:    handler.NewLedgerHandler(ledger, reports),
		ExpenseHandler:   handler.NewExpenseHandler(usecase.NewExpenseUseCase(repos, deps)),
		ReportHandler:    handler.NewReportHandler(balance, reports),
		AssistantHandler: handler.NewAssistantHandler(usecase.NewAssistantUseCase(nil, repos, balance, ledger)),
		HealthHandler:    handler.NewHealthHandler(),
		Logger:           zerolog.Nop(),
	}

	for _, opt := range opts {
		opt(&cfg)
	}

	return cfg
}

func do(t *testing.T, h http.Handler, method, path, body string, headers ...string) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decodeID(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	var v struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v), rr.Body.String())
	require.NotEmpty(t, v.ID)
	return v.ID
}

func TestNewRouter_HealthEndpointAvailable(t *testing.T) {
	router := NewRouter(newRouterConfig())

	rr := do(t, router, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = do(t, router, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "http_requests_total")
}

func TestNewRouter_RateLimiterBlocksExcessRequests(t *testing.T) {
	router := NewRouter(newRouterConfig(func(cfg *RouterConfig) {
		cfg.RateLimiter = apimiddleware.NewRateLimiter(1, 1)
	}))

	send := func() int {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/summary", nil)
		req.RemoteAddr = "1.2.3.4:1234"
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		return rr.Code
	}

	assert.Equal(t, http.StatusOK, send())
	assert.Equal(t, http.StatusTooManyRequests, send())

	// Health checks are outside the limited API group.
	assert.Equal(t, http.StatusOK, do(t, router, http.MethodGet, "/health", "").Code)
}

func TestNewRouter_IdempotentSaleIsRecordedOnce(t *testing.T) {
	store := &mapIdempotencyStore{values: map[string][]byte{}}
	router := NewRouter(newRouterConfig(func(cfg *RouterConfig) {
		cfg.IdempotencyStore = store
		cfg.IdempotencyTTL = time.Minute
	}))

	customerID := decodeID(t, do(t, router, http.MethodPost, "/api/v1/customers", `{"name":"Ali"}`))
	itemID := decodeID(t, do(t, router, http.MethodPost, "/api/v1/items", `{"name":"Sawti","stock":10,"unit_price":"100","currency":"YER"}`))

	body := fmt.Sprintf(`{"party_id":%q,"item_id":%q,"quantity":3,"unit_price":"250","currency":"YER","settlement":"deferred"}`, customerID, itemID)
	first := do(t, router, http.MethodPost, "/api/v1/sales", body, apimiddleware.IdempotencyKeyHeader, "sale-1")
	require.Equal(t, http.StatusCreated, first.Code, first.Body.String())

	second := do(t, router, http.MethodPost, "/api/v1/sales", body, apimiddleware.IdempotencyKeyHeader, "sale-1")
	require.Equal(t, http.StatusCreated, second.Code)
	assert.Equal(t, "true", second.Header().Get(apimiddleware.IdempotencyReplayHeader))
	assert.JSONEq(t, first.Body.String(), second.Body.String())

	rr := do(t, router, http.MethodGet, "/api/v1/items/"+itemID, "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"stock":7`)

	rr = do(t, router, http.MethodGet, "/api/v1/sales", "")
	assert.Contains(t, rr.Body.String(), `"count":1`)
}

func TestNewRouter_EndToEndScenario(t *testing.T) {
	router := NewRouter(newRouterConfig())

	customerID := decodeID(t, do(t, router, http.MethodPost, "/api/v1/customers/", `{"name":"Ali","region":"Sanaa"}`))
	supplierID := decodeID(t, do(t, router, http.MethodPost, "/api/v1/suppliers/", `{"name":"Hamdan Farms"}`))
	itemID := decodeID(t, do(t, router, http.MethodPost, "/api/v1/items", `{"name":"Sawti","stock":10,"unit_price":"100","currency":"YER"}`))

	purchase := fmt.Sprintf(`{"party_id":%q,"item_id":%q,"quantity":5,"unit_price":"80","currency":"YER","settlement":"deferred"}`, supplierID, itemID)
	purchaseID := decodeID(t, do(t, router, http.MethodPost, "/api/v1/purchases", purchase))

	sale := fmt.Sprintf(`{"party_id":%q,"item_id":%q,"quantity":2,"unit_price":"500","currency":"YER","settlement":"deferred"}`, customerID, itemID)
	saleID := decodeID(t, do(t, router, http.MethodPost, "/api/v1/sales", sale))

	rr := do(t, router, http.MethodPost, "/api/v1/sales/"+saleID+"/return", "")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	rr = do(t, router, http.MethodPost, "/api/v1/sales/"+saleID+"/return", "")
	assert.Equal(t, http.StatusConflict, rr.Code)

	rr = do(t, router, http.MethodDelete, "/api/v1/purchases/"+purchaseID, "")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	rr = do(t, router, http.MethodGet, "/api/v1/items/"+itemID, "")
	assert.Contains(t, rr.Body.String(), `"stock":10`)

	rr = do(t, router, http.MethodPatch, "/api/v1/items/"+itemID, `{"low_stock_threshold":12}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	rr = do(t, router, http.MethodGet, "/api/v1/items/low-stock", "")
	assert.Contains(t, rr.Body.String(), itemID)

	rr = do(t, router, http.MethodPut, "/api/v1/reports/rates", `{"sar_to_yer":"440","omr_to_yer":"1150"}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	rr = do(t, router, http.MethodGet, "/api/v1/customers/"+customerID+"/receivable", "")
	require.Equal(t, http.StatusOK, rr.Code)
	rr = do(t, router, http.MethodGet, "/api/v1/suppliers/"+supplierID+"/payable", "")
	require.Equal(t, http.StatusOK, rr.Code)

	rr = do(t, router, http.MethodGet, "/api/v1/reports/debts.xlsx", "")
	require.Equal(t, http.StatusOK, rr.Code)

	rr = do(t, router, http.MethodPost, "/api/v1/assistant/proposals", `{"text":"anything"}`)
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)

	rr = do(t, router, http.MethodGet, "/api/v1/activity?limit=3", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"count":3`)
}

func TestNewRouter_CORSPreflight(t *testing.T) {
	router := NewRouter(newRouterConfig(func(cfg *RouterConfig) {
		cfg.AllowedOrigins = []string{"https://ui.example.com"}
	}))

	rr := do(t, router, http.MethodOptions, "/api/v1/sales", "",
		"Origin", "https://ui.example.com",
		"Access-Control-Request-Method", http.MethodPost)

	assert.Equal(t, "https://ui.example.com", rr.Header().Get("Access-Control-Allow-Origin"))
}

func TestNewRouter_RegistersKeyRoutes(t *testing.T) {
	router := NewRouter(newRouterConfig())

	chiRoutes, ok := router.(chi.Routes)
	require.True(t, ok, "router does not implement chi.Routes")

	seen := map[string]bool{}
	require.NoError(t, chi.Walk(chiRoutes, func(method string, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		seen[method+" "+route] = true
		return nil
	}))

	expected := []string{
		"GET /health",
		"GET /ready",
		"GET /metrics",
		"POST /api/v1/customers/",
		"GET /api/v1/customers/{id}/receivable",
		"GET /api/v1/suppliers/{id}/payable",
		"GET /api/v1/items/low-stock",
		"POST /api/v1/sales/{id}/return",
		"DELETE /api/v1/purchases/{id}",
		"POST /api/v1/opening-balances",
		"PATCH /api/v1/vouchers/{id}",
		"DELETE /api/v1/vouchers/{id}",
		"POST /api/v1/waste/",
		"POST /api/v1/expenses/",
		"GET /api/v1/summary",
		"GET /api/v1/reports/performance",
		"GET /api/v1/reports/debts",
		"GET /api/v1/reports/debts.xlsx",
		"GET /api/v1/reports/convert",
		"GET /api/v1/activity",
		"POST /api/v1/assistant/proposals",
		"POST /api/v1/assistant/execute",
	}

	for _, route := range expected {
		assert.True(t, seen[route], "expected route %s to be registered", route)
	}
}

// mapIdempotencyStore is an in-process usecase.IdempotencyStore.
type mapIdempotencyStore struct {
	mu     sync.Mutex
	values map[string][]byte
}

func (s *mapIdempotencyStore) CheckAndSet(_ context.Context, key string, response []byte, _ time.Duration) (bool, []byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v, ok := s.values[key]; ok {
		return true, v, nil
	}
	if response == nil {
		response = []byte(usecase.IdempotencyPending)
	}
	s.values[key] = response
	return false, nil, nil
}

func (s *mapIdempotencyStore) Update(_ context.Context, key string, response []byte, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = response
	return nil
}

func (s *mapIdempotencyStore) Release(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
	return nil
}
