package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/pagemark/pagemark/internal/httpserver/deps"
	"github.com/pagemark/pagemark/internal/httpserver/handlers"
)

func init() { Register(registerHealth) }

// Health endpoints stay unauthenticated so probes work without the token.
func registerHealth(r chi.Router, d deps.Deps) {
	r.Get("/healthz", handlers.Healthz(d))
	r.Get("/readyz", handlers.Readyz(d))
}
