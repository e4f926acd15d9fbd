package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/iho/qatledger/internal/adapter/http/handler"
	"github.com/iho/qatledger/internal/adapter/http/middleware"
	"github.com/iho/qatledger/internal/domain"
	"github.com/iho/qatledger/internal/usecase"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	PartyHandler     *handler.PartyHandler
	InventoryHandler *handler.InventoryHandler
	LedgerHandler    *handler.LedgerHandler
	ExpenseHandler   *handler.ExpenseHandler
	ReportHandler    *handler.ReportHandler
	AssistantHandler *handler.AssistantHandler
	HealthHandler    *handler.HealthHandler

	Logger           zerolog.Logger
	IdempotencyStore usecase.IdempotencyStore
	IdempotencyTTL   time.Duration
	RateLimiter      *middleware.RateLimiter
	AllowedOrigins   []string
	// MetricsHandler serves /metrics; promhttp.Handler() when nil.
	MetricsHandler http.Handler
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewLoggingMiddleware(cfg.Logger).Wrap)
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.Metrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins(cfg.AllowedOrigins),
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", middleware.IdempotencyKeyHeader},
		ExposedHeaders:   []string{"Content-Disposition", middleware.IdempotencyReplayHeader},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Health endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)

	metricsHandler := cfg.MetricsHandler
	if metricsHandler == nil {
		metricsHandler = promhttp.Handler()
	}
	r.Method(http.MethodGet, "/metrics", metricsHandler)

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		if cfg.RateLimiter != nil {
			r.Use(cfg.RateLimiter.Limit)
		}

		// Idempotency middleware for mutating requests
		if cfg.IdempotencyStore != nil {
			idempotencyMiddleware := middleware.NewIdempotencyMiddleware(cfg.IdempotencyStore, cfg.IdempotencyTTL, cfg.Logger)
			r.Use(idempotencyMiddleware.Wrap)
		}

		// Parties
		for _, party := range []struct {
			path        string
			partyType   domain.PartyType
			balancePath string
			balance     http.HandlerFunc
		}{
			{"/customers", domain.PartyCustomer, "/{id}/receivable", cfg.ReportHandler.Receivable},
			{"/suppliers", domain.PartySupplier, "/{id}/payable", cfg.ReportHandler.Payable},
		} {
			r.Route(party.path, func(r chi.Router) {
				r.Post("/", cfg.PartyHandler.Create(party.partyType))
				r.Get("/", cfg.PartyHandler.List(party.partyType))
				r.Get("/{id}", cfg.PartyHandler.Get(party.partyType))
				r.Delete("/{id}", cfg.PartyHandler.Delete(party.partyType))
				r.Get(party.balancePath, party.balance)
			})
		}

		// Inventory
		r.Route("/items", func(r chi.Router) {
			r.Post("/", cfg.InventoryHandler.Create)
			r.Get("/", cfg.InventoryHandler.List)
			r.Get("/low-stock", cfg.InventoryHandler.LowStock)
			r.Get("/{id}", cfg.InventoryHandler.Get)
			r.Patch("/{id}", cfg.InventoryHandler.Update)
			r.Delete("/{id}", cfg.InventoryHandler.Delete)
		})

		// Sales and purchases
		for path, kind := range map[string]domain.TransactionKind{
			"/sales":     domain.KindSale,
			"/purchases": domain.KindPurchase,
		} {
			r.Route(path, func(r chi.Router) {
				r.Post("/", cfg.LedgerHandler.CreateTransaction(kind))
				r.Get("/", cfg.LedgerHandler.ListTransactions(kind))
				r.Get("/{id}", cfg.LedgerHandler.GetTransaction(kind))
				r.Post("/{id}/return", cfg.LedgerHandler.ReturnTransaction(kind))
				r.Delete("/{id}", cfg.LedgerHandler.DeleteTransaction(kind))
			})
		}

		r.Post("/opening-balances", cfg.LedgerHandler.CreateOpeningBalance)

		// Vouchers
		r.Route("/vouchers", func(r chi.Router) {
			r.Post("/", cfg.LedgerHandler.CreateVoucher)
			r.Get("/", cfg.LedgerHandler.ListVouchers)
			r.Get("/{id}", cfg.LedgerHandler.GetVoucher)
			r.Patch("/{id}", cfg.LedgerHandler.EditVoucher)
			r.Delete("/{id}", cfg.LedgerHandler.DeleteVoucher)
		})

		// Waste
		r.Route("/waste", func(r chi.Router) {
			r.Post("/", cfg.LedgerHandler.CreateWaste)
			r.Get("/", cfg.LedgerHandler.ListWaste)
			r.Delete("/{id}", cfg.LedgerHandler.DeleteWaste)
		})

		// Expenses
		r.Route("/expenses", func(r chi.Router) {
			r.Post("/", cfg.ExpenseHandler.Create)
			r.Get("/", cfg.ExpenseHandler.List)
			r.Patch("/{id}", cfg.ExpenseHandler.Update)
			r.Delete("/{id}", cfg.ExpenseHandler.Delete)
		})

		// Reports
		r.Get("/summary", cfg.ReportHandler.Summary)
		r.Get("/activity", cfg.ReportHandler.Activity)
		r.Route("/reports", func(r chi.Router) {
			r.Get("/performance", cfg.ReportHandler.Performance)
			r.Get("/debts", cfg.ReportHandler.Debts)
			r.Get("/debts.xlsx", cfg.ReportHandler.DebtsXLSX)
			r.Get("/convert", cfg.ReportHandler.Convert)
			r.Get("/rates", cfg.ReportHandler.Rates)
			r.Put("/rates", cfg.ReportHandler.UpdateRates)
		})

		// Assistant
		if cfg.AssistantHandler != nil {
			r.Route("/assistant", func(r chi.Router) {
				r.Post("/proposals", cfg.AssistantHandler.Propose)
				r.Post("/execute", cfg.AssistantHandler.Execute)
			})
		}
	})

	return r
}

func allowedOrigins(origins []string) []string {
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}
