// Package api exposes the balance engine over HTTP.
//
// Read endpoints are tolerant by design: a missing or invalid token does
// not fail the request, it just yields the zero-valued default shape. The
// one exception is the single-group ledger, which returns explicit
// 401/403/404 responses. Mutation endpoints always require a valid token.
package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/splitr-app/splitr/internal/auth"
	"github.com/splitr-app/splitr/internal/middleware"
	"github.com/splitr-app/splitr/internal/service"
	"github.com/splitr-app/splitr/internal/storage"
)

// Server is the HTTP API server.
type Server struct {
	store    storage.Store
	jwt      *auth.JWTManager
	authn    *auth.PasswordAuthenticator
	resolver *auth.Resolver

	balances *service.BalanceService
	groups   *service.GroupService
	stats    *service.StatsService
	contacts *service.ContactsService
}

// NewServer wires the services around the given store. storeTimeout bounds
// each aggregation's store access.
func NewServer(store storage.Store, jwtManager *auth.JWTManager, storeTimeout time.Duration) *Server {
	return &Server{
		store:    store,
		jwt:      jwtManager,
		authn:    auth.NewPasswordAuthenticator(store),
		resolver: auth.NewResolver(store),
		balances: service.NewBalanceService(store, storeTimeout),
		groups:   service.NewGroupService(store, storeTimeout),
		stats:    service.NewStatsService(store, storeTimeout),
		contacts: service.NewContactsService(store, storeTimeout),
	}
}

// Handler returns the chi router with all routes mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(corsMiddleware)
	r.Use(middleware.Metrics)
	// OptionalAuth runs before Logging so access logs carry user_id.
	r.Use(middleware.OptionalAuth(s.jwt))
	r.Use(middleware.Logging)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", s.handleRegister)
			r.Post("/login", s.handleLogin)
			r.With(middleware.RequireAuth(s.jwt)).Get("/me", s.handleMe)
		})

		r.Get("/balances", s.handleBalances)
		r.Get("/groups", s.handleGroupBalances)
		r.Get("/groups/{groupID}", s.handleGroupLedger)
		r.Get("/spending/total", s.handleTotalSpent)
		r.Get("/spending/monthly", s.handleMonthlySpending)
		r.Get("/contacts", s.handleContacts)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth(s.jwt))
			r.Post("/expenses", s.handleCreateExpense)
			r.Post("/settlements", s.handleCreateSettlement)
			r.Post("/groups", s.handleCreateGroup)
		})
	})

	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// corsMiddleware adds CORS headers for browser clients.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}
