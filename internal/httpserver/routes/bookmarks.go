package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/pagemark/pagemark/internal/httpserver/deps"
	"github.com/pagemark/pagemark/internal/httpserver/handlers"
	"github.com/pagemark/pagemark/internal/httpserver/mw"
)

func init() { Register(registerBookmarks) }

func registerBookmarks(r chi.Router, d deps.Deps) {
	sub := r.With(mw.Auth(d.AuthToken))
	sub.Get("/api/bookmarks", handlers.ListBookmarks(d))
	sub.Post("/api/bookmarks", handlers.CreateBookmark(d))
	sub.Delete("/api/bookmarks/{id}", handlers.DeleteBookmark(d))
}
