package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/pagemark/pagemark/internal/httpserver/deps"
	"github.com/pagemark/pagemark/internal/httpserver/handlers"
	"github.com/pagemark/pagemark/internal/httpserver/mw"
)

func init() { Register(registerPosition) }

func registerPosition(r chi.Router, d deps.Deps) {
	sub := r.With(mw.Auth(d.AuthToken))
	sub.Post("/api/position/capture", handlers.CapturePosition(d))
	sub.Post("/api/position/restore", handlers.RestorePosition(d))
}
