/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. RequestID:     Unique ID per request for tracing
  2. RequestLogger: Structured access log (logrus)
  3. Recoverer:     Panic recovery (500 instead of crash)
  4. CORS:          Cross-origin requests for frontend

ROUTE GROUPS:
  /api/auth/*       Login and identity (login is the only public write)
  /api/employees/*  Employee management - admin/hr write, managers read
  /api/leave/*      Balance adjustments - admin/hr only
  /api/health       Liveness, unauthenticated

SEE ALSO:
  - handlers.go: Handler implementations
  - middleware.go: Authenticate / RequireRole / RequestLogger
  - cmd/server/main.go: Server startup
*/
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/waqtek/hr-ledger/ledger"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler, corsOrigins []string) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(RequestLogger(h.Log))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   corsOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", h.Health)

		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", h.Login)

			r.Group(func(r chi.Router) {
				r.Use(h.Authenticate)
				r.Get("/me", h.Me)
			})
		})

		r.Route("/employees", func(r chi.Router) {
			r.Use(h.Authenticate)

			r.Group(func(r chi.Router) {
				r.Use(RequireRole(ledger.RoleAdmin, ledger.RoleHR, ledger.RoleManager))
				r.Get("/", h.ListEmployees)
				r.Get("/{id}", h.GetEmployee)
			})

			r.Group(func(r chi.Router) {
				r.Use(RequireRole(ledger.RoleAdmin, ledger.RoleHR))
				r.Post("/", h.CreateEmployee)
				r.Get("/{id}/adjustments", h.ListAdjustments)
			})
		})

		r.Route("/leave", func(r chi.Router) {
			r.Use(h.Authenticate)
			r.Use(RequireRole(ledger.RoleAdmin, ledger.RoleHR))
			r.Post("/adjust/{employeeID}", h.AdjustLeave)
		})
	})

	return r
}
