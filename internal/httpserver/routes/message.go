package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/pagemark/pagemark/internal/httpserver/deps"
	"github.com/pagemark/pagemark/internal/httpserver/handlers"
	"github.com/pagemark/pagemark/internal/httpserver/mw"
)

func init() { Register(registerMessage) }

func registerMessage(r chi.Router, d deps.Deps) {
	r.With(mw.Auth(d.AuthToken)).Post("/api/message", handlers.Message(d))
}
