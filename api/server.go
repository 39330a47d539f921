/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

ROUTER: chi
  Chi was chosen for:
  - Lightweight and fast
  - Context-based
  - Middleware support
  - RESTful route patterns

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for frontend

ROUTE GROUPS:
  /api/login, /api/register          Public
  /api/*                             Session required
  /api/leaves/pending|all|{id}/...   Manager role required

SEE ALSO:
  - handlers.go: Handler implementations
  - middleware.go: Session and role middleware
  - cmd/server/main.go: Server startup
*/
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler, allowedOrigins []string) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Route("/api", func(r chi.Router) {
		// Public routes
		r.Post("/login", h.Login)
		r.Post("/register", h.Register)

		// Authenticated routes
		r.Group(func(r chi.Router) {
			r.Use(h.RequireSession)

			r.Post("/logout", h.Logout)
			r.Get("/user/profile", h.Profile)
			r.Get("/managers/department", h.DepartmentManagers)
			r.Get("/calendar/leaves", h.Calendar)
			r.Get("/events", h.Events)

			r.Route("/leaves", func(r chi.Router) {
				r.Post("/submit", h.SubmitLeave)
				r.Get("/my-requests", h.MyRequests)

				// Manager-only routes
				r.Group(func(r chi.Router) {
					r.Use(h.RequireManager)

					r.Get("/pending", h.PendingLeaves)
					r.Get("/all", h.AllLeaves)
					r.Post("/{id}/approve", h.ApproveLeave)
					r.Post("/{id}/reject", h.RejectLeave)
				})
			})
		})
	})

	return r
}
