package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pagemark/pagemark/internal/domain"
	"github.com/pagemark/pagemark/internal/httpserver/deps"
	"github.com/pagemark/pagemark/internal/logger"
)

// The REST endpoints mirror the protocol actions for tooling and curl use.
// Unlike the protocol, they answer with real HTTP status codes.

type bookmarkListResponse struct {
	Bookmarks []domain.Bookmark `json:"bookmarks"`
}

type createBookmarkRequest struct {
	URL            string `json:"url"`
	Name           string `json:"name"`
	ScrollPosition int    `json:"scrollPosition"`
}

func ListBookmarks(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		url := r.URL.Query().Get("url")
		if url == "" {
			respondJSON(w, http.StatusBadRequest, errorResponse{Error: "missing url parameter"})
			return
		}

		list, err := d.Store.List(r.Context(), url)
		if err != nil {
			d.Logger.Error("list bookmarks failed", logger.Error(err))
			respondJSON(w, http.StatusInternalServerError, errorResponse{Error: "storage unavailable"})
			return
		}
		respondJSON(w, http.StatusOK, bookmarkListResponse{Bookmarks: list})
	}
}

func CreateBookmark(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createBookmarkRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
			return
		}
		if req.URL == "" {
			respondJSON(w, http.StatusBadRequest, errorResponse{Error: "missing url"})
			return
		}

		bookmark, err := d.Store.Save(r.Context(), req.URL, req.Name, req.ScrollPosition)
		if err != nil {
			d.Logger.Error("create bookmark failed", logger.Error(err))
			respondJSON(w, http.StatusInternalServerError, errorResponse{Error: "storage unavailable"})
			return
		}
		respondJSON(w, http.StatusCreated, bookmark)
	}
}

func DeleteBookmark(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		url := r.URL.Query().Get("url")
		if url == "" {
			respondJSON(w, http.StatusBadRequest, errorResponse{Error: "missing url parameter"})
			return
		}

		if err := d.Store.Delete(r.Context(), url, id); err != nil {
			d.Logger.Error("delete bookmark failed", logger.Error(err))
			respondJSON(w, http.StatusInternalServerError, errorResponse{Error: "storage unavailable"})
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
